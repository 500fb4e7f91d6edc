package domain

// OutcomeState summarizes where a match stands after an action.
type OutcomeState string

const (
	OutcomeContinue OutcomeState = "CONTINUE"
	OutcomeResponse OutcomeState = "RESPONSE"
	OutcomeFinished OutcomeState = "FINISHED"
)

// Outcome is the match-level result of one turn.
type Outcome struct {
	State    OutcomeState
	WinnerID string
	Draw     bool
	Reason   string
	// AwaitingPlayerID is the defender owed a response turn.
	AwaitingPlayerID string
}

// checkVictory runs after a landed shot outside the response window.
func (g *Game) checkVictory(attacker, defender *Player) Outcome {
	if !g.Board.HalfDestroyed(defender.Side) {
		return Outcome{State: OutcomeContinue}
	}
	m := g.Match
	if attacker.ID == m.InitiatorID {
		m.ResponseActive = true
		m.PendingResponseID = defender.ID
		m.Subphase = SubphaseResponse
		m.ActivePlayerID = defender.ID
		return Outcome{State: OutcomeResponse, AwaitingPlayerID: defender.ID}
	}
	g.finish(attacker.ID, false, FinishReasonDestruction)
	return Outcome{State: OutcomeFinished, WinnerID: attacker.ID, Reason: FinishReasonDestruction}
}

// resolveResponse closes the response window after the defender's single action.
// Both halves destroyed is a draw; anything else goes to the initiator.
func (g *Game) resolveResponse() Outcome {
	if g.Board.HalfDestroyed(SideLeft) && g.Board.HalfDestroyed(SideRight) {
		g.finish("", true, FinishReasonResponse)
		return Outcome{State: OutcomeFinished, Draw: true, Reason: FinishReasonResponse}
	}
	winner := g.Match.InitiatorID
	g.finish(winner, false, FinishReasonResponse)
	return Outcome{State: OutcomeFinished, WinnerID: winner, Reason: FinishReasonResponse}
}

func (g *Game) finish(winnerID string, draw bool, reason string) {
	m := g.Match
	m.Phase = PhaseFinished
	m.Subphase = SubphaseNone
	m.ActivePlayerID = ""
	m.ResponseActive = false
	m.PendingResponseID = ""
	m.WinnerID = winnerID
	m.Draw = draw
	m.FinishReason = reason
}

// advance hands the turn to the next player unless the match is over.
func (g *Game) advance(current *Player) {
	m := g.Match
	if m.Phase == PhaseFinished {
		return
	}
	m.Turn++
	if m.ResponseActive {
		if g.Player(m.PendingResponseID) != nil {
			m.ActivePlayerID = m.PendingResponseID
		}
		return
	}
	if rival := g.Opponent(current.ID); rival != nil {
		m.ActivePlayerID = rival.ID
	}
}
