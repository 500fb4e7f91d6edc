package domain

// Action is the kind of move a player makes on their turn.
type Action string

const (
	ActionPass Action = "PASS"
	ActionFire Action = "FIRE"
)

// TurnRequest is one player's action on the current turn.
type TurnRequest struct {
	PlayerID    string
	Action      Action
	Munition    MunitionKind
	Target      *Coord
	Orientation Orientation
	// AutoPass marks a PASS issued on the player's behalf (idle timeout).
	AutoPass bool
}

// Income is the start-of-turn powder credited to the active player.
type Income struct {
	Powder int
	Camps  []string
}

// Shot is the resolved effect of a FIRE action.
type Shot struct {
	Munition    MunitionKind
	Cost        int
	Target      Coord
	Orientation Orientation
	Shape       []Coord
	Impacts     []Coord
	DomeBlocked bool
	// DestroyedCamps are copies of camps removed by this shot.
	DestroyedCamps    []Camp
	AttackerDestroyed int
	DefenderDestroyed int
}

// TurnResult describes one resolved turn.
type TurnResult struct {
	Turn     int
	PlayerID string
	Action   Action
	AutoPass bool
	Income   Income
	Shot     *Shot
	Outcome  Outcome
}

// pendingIncome computes, without applying, the turn-start income for p.
// It is zero when p is not active or the current turn was already credited.
func (g *Game) pendingIncome(p *Player) (Income, bool) {
	m := g.Match
	if m.Phase != PhaseInProgress || m.ActivePlayerID != p.ID || p.LastIncomeTurn == m.Turn {
		return Income{}, false
	}
	income := Income{}
	for _, c := range g.AliveCamps(p.ID) {
		income.Powder += c.Type.Yield()
		income.Camps = append(income.Camps, c.ID)
	}
	return income, true
}

// StartTurn applies turn-start income and cooldown for p once per turn number.
func (g *Game) StartTurn(p *Player) Income {
	income, due := g.pendingIncome(p)
	if !due {
		return Income{}
	}
	p.Powder += income.Powder
	if p.SupplyCooldown > 0 {
		p.SupplyCooldown--
	}
	p.LastIncomeTurn = g.Match.Turn
	return income
}

type firePlan struct {
	munition Munition
	target   Coord
	o        Orientation
	shape    []Coord
}

func (g *Game) planFire(p *Player, req TurnRequest, credit int) (*firePlan, error) {
	if req.Munition == "" {
		return nil, ErrInvalidMunition
	}
	m, ok := LookupMunition(req.Munition)
	if !ok {
		return nil, ErrInvalidMunition
	}
	if p.Powder+credit < m.Cost {
		return nil, ErrInsufficientPowder
	}
	if req.Target == nil {
		return nil, ErrMissingTarget
	}
	if !req.Target.Valid() {
		return nil, ErrInvalidCoordinate
	}
	if !m.AcceptsOrientation(req.Orientation) {
		return nil, ErrInvalidOrientation
	}
	shape, err := Shape(m.Kind, *req.Target, req.Orientation)
	if err != nil {
		return nil, err
	}
	if len(shape) == 0 {
		return nil, ErrEmptyShape
	}
	for _, c := range shape {
		if !p.Side.Targets(c) {
			return nil, ErrShapeOutsideEnemy
		}
	}
	return &firePlan{munition: m, target: *req.Target, o: req.Orientation, shape: shape}, nil
}

// fire applies a validated plan. A shot touching the defender's dome is absorbed whole.
func (g *Game) fire(attacker, defender *Player, plan *firePlan) *Shot {
	shot := &Shot{
		Munition:    plan.munition.Kind,
		Cost:        plan.munition.Cost,
		Target:      plan.target,
		Orientation: plan.o,
		Shape:       plan.shape,
		Impacts:     []Coord{},
	}
	if defender.Dome.Intercepts(plan.shape) {
		defender.Dome = Dome{}
		shot.DomeBlocked = true
	} else {
		for _, c := range plan.shape {
			cell := g.Board.Cell(c)
			if cell == nil || cell.Destroyed {
				continue
			}
			cell.Destroyed = true
			shot.Impacts = append(shot.Impacts, c)
			if camp := g.CampAt(c); camp != nil {
				shot.DestroyedCamps = append(shot.DestroyedCamps, *camp)
				g.removeCamp(camp.ID)
			}
		}
	}
	attacker.DestroyedReported = g.Board.DestroyedIn(defender.Side)
	defender.DestroyedOwn = g.Board.DestroyedIn(defender.Side)
	shot.AttackerDestroyed = attacker.DestroyedReported
	shot.DefenderDestroyed = defender.DestroyedOwn
	return shot
}

// ExecuteTurn validates and resolves one PASS or FIRE for the active player.
// Nothing on g is modified when an error is returned.
func (e *Engine) ExecuteTurn(g *Game, req TurnRequest) (*TurnResult, error) {
	m := g.Match
	if m.Phase != PhaseInProgress {
		return nil, ErrMatchNotInPlay
	}
	player := g.Player(req.PlayerID)
	if player == nil {
		return nil, ErrPlayerNotInMatch
	}
	if m.ActivePlayerID != player.ID {
		return nil, ErrNotActivePlayer
	}
	rival := g.Opponent(player.ID)
	if rival == nil {
		return nil, ErrMissingOpponent
	}

	var plan *firePlan
	switch req.Action {
	case ActionPass:
	case ActionFire:
		income, _ := g.pendingIncome(player)
		var err error
		if plan, err = g.planFire(player, req, income.Powder); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidAction
	}

	result := &TurnResult{
		Turn:     m.Turn,
		PlayerID: player.ID,
		Action:   req.Action,
		AutoPass: req.Action == ActionPass && req.AutoPass,
		Income:   g.StartTurn(player),
	}
	responding := m.ResponseActive

	switch req.Action {
	case ActionPass:
		if req.AutoPass {
			player.Inactivity++
		} else {
			player.Inactivity = 0
		}
		result.Outcome = Outcome{State: OutcomeContinue}
	case ActionFire:
		player.Powder -= plan.munition.Cost
		player.Inactivity = 0
		result.Shot = g.fire(player, rival, plan)
		switch {
		case responding:
			result.Outcome = g.resolveResponse()
		case result.Shot.DomeBlocked:
			result.Outcome = Outcome{State: OutcomeContinue}
		default:
			result.Outcome = g.checkVictory(player, rival)
		}
	}

	if player.Inactivity >= e.rules.InactivityLimit {
		g.finish(rival.ID, false, FinishReasonInactivity)
		result.Outcome = Outcome{State: OutcomeFinished, WinnerID: rival.ID, Reason: FinishReasonInactivity}
	}
	if req.Action == ActionPass && m.ResponseActive {
		result.Outcome = g.resolveResponse()
	}

	player.LastPlayedTurn = result.Turn
	g.advance(player)
	return result, nil
}
