package domain

// SupplyEffect is the payload of a successful emergency supply.
type SupplyEffect string

const (
	SupplyBoost SupplyEffect = "BOOST"
	SupplyDome  SupplyEffect = "DOME"
	SupplyReloc SupplyEffect = "RELOC"
)

var supplyEffects = []SupplyEffect{SupplyBoost, SupplyDome, SupplyReloc}

// Valid reports whether s is a known effect.
func (s SupplyEffect) Valid() bool {
	for _, e := range supplyEffects {
		if e == s {
			return true
		}
	}
	return false
}

// Relocation asks to move one camp to an adjacent cell.
type Relocation struct {
	CampID string
	To     *Coord
}

// SupplyRequest asks for an emergency supply roll.
type SupplyRequest struct {
	PlayerID   string
	Preference SupplyEffect
	DomeCenter *Coord
	Relocation *Relocation
	// ForceSuccess fixes the roll when set.
	ForceSuccess *bool
	// ForceOutcome fixes the effect when set, overriding Preference.
	ForceOutcome SupplyEffect
}

// SupplyResult is the resolved supply request.
type SupplyResult struct {
	Turn     int
	PlayerID string
	Success  bool
	Effect   SupplyEffect
	Boost    int
	Dome     *Dome
	Camp     *Camp
	From     Coord
}

// SupplyEligibility returns nil when playerID may request a supply now.
func (e *Engine) SupplyEligibility(g *Game, playerID string) error {
	if g.Match.Phase != PhaseInProgress {
		return ErrMatchNotInPlay
	}
	player := g.Player(playerID)
	if player == nil {
		return ErrPlayerNotInMatch
	}
	rival := g.Opponent(player.ID)
	if rival == nil {
		return ErrMissingOpponent
	}
	if player.SupplyUses >= e.rules.SupplyMaxUses || player.SupplyCooldown > 0 {
		return ErrSupplyIneligible
	}
	deficit := g.Board.DestroyedIn(rival.Side) - g.Board.DestroyedIn(player.Side)
	lost := CampsPerPlayer - len(g.AliveCamps(player.ID))
	if lost < 0 {
		lost = 0
	}
	if deficit >= e.rules.SupplyDeficit || lost >= e.rules.SupplyCampsLost {
		return nil
	}
	return ErrSupplyIneligible
}

// RequestSupply rolls an emergency supply for an eligible player and applies the effect.
// The cooldown is set whether or not the roll succeeds. Nothing on g changes on error.
func (e *Engine) RequestSupply(g *Game, req SupplyRequest) (*SupplyResult, error) {
	if err := e.SupplyEligibility(g, req.PlayerID); err != nil {
		return nil, err
	}
	player := g.Player(req.PlayerID)
	m := g.Match

	var success bool
	if req.ForceSuccess != nil {
		success = *req.ForceSuccess
	} else {
		success = e.rng.Float64() <= e.rules.SupplyProbability
	}
	result := &SupplyResult{Turn: m.Turn, PlayerID: player.ID, Success: success}
	if !success {
		player.SupplyCooldown = e.rules.SupplyCooldown
		return result, nil
	}

	effect, err := e.pickEffect(req)
	if err != nil {
		return nil, err
	}
	result.Effect = effect

	var apply func()
	switch effect {
	case SupplyBoost:
		apply = func() {
			player.Powder += e.rules.SupplyBoost
			result.Boost = e.rules.SupplyBoost
		}
	case SupplyDome:
		center, err := validateDome(player, req.DomeCenter)
		if err != nil {
			return nil, err
		}
		apply = func() {
			player.Dome = Dome{Active: true, Center: center, ActivatedTurn: m.Turn}
			dome := player.Dome
			result.Dome = &dome
		}
	case SupplyReloc:
		camp, to, err := g.validateRelocation(player, req.Relocation)
		if err != nil {
			return nil, err
		}
		apply = func() {
			result.From = camp.Cell
			camp.Cell = to
			camp.LastRelocTurn = m.Turn
			moved := *camp
			result.Camp = &moved
		}
	}

	player.SupplyCooldown = e.rules.SupplyCooldown
	apply()
	player.SupplyUses++
	if player.SupplyUsesLeft > 0 {
		player.SupplyUsesLeft--
	}
	return result, nil
}

func (e *Engine) pickEffect(req SupplyRequest) (SupplyEffect, error) {
	if req.ForceOutcome != "" {
		if !req.ForceOutcome.Valid() {
			return "", ErrInvalidSupply
		}
		return req.ForceOutcome, nil
	}
	if req.Preference.Valid() {
		return req.Preference, nil
	}
	return supplyEffects[e.rng.Intn(len(supplyEffects))], nil
}

func validateDome(player *Player, center *Coord) (Coord, error) {
	if center == nil {
		return Coord{}, ErrMissingTarget
	}
	if !center.Valid() {
		return Coord{}, ErrInvalidCoordinate
	}
	if !player.Side.Owns(*center) {
		return Coord{}, ErrNotOwnHalf
	}
	return *center, nil
}

func (g *Game) validateRelocation(player *Player, reloc *Relocation) (*Camp, Coord, error) {
	if reloc == nil || reloc.CampID == "" || reloc.To == nil {
		return nil, Coord{}, ErrMissingRelocation
	}
	camp := g.Camp(reloc.CampID)
	if camp == nil {
		return nil, Coord{}, ErrCampNotFound
	}
	if camp.PlayerID != player.ID {
		return nil, Coord{}, ErrCampNotOwned
	}
	if camp.LastRelocTurn > 0 && camp.LastRelocTurn == g.Match.Turn-1 {
		return nil, Coord{}, ErrRelocCooldown
	}
	to := *reloc.To
	if !to.Valid() {
		return nil, Coord{}, ErrInvalidCoordinate
	}
	if !player.Side.Owns(to) {
		return nil, Coord{}, ErrNotOwnHalf
	}
	if g.Board.Destroyed(to) {
		return nil, Coord{}, cellError(ErrCellDestroyed, to)
	}
	if g.CampAt(to) != nil {
		return nil, Coord{}, cellError(ErrCellOccupied, to)
	}
	if !camp.Cell.Adjacent(to) {
		return nil, Coord{}, ErrRelocNotAdjacent
	}
	return camp, to, nil
}
