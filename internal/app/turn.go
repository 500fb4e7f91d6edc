package app

import (
	"context"

	"castlebattle/internal/domain"
	"castlebattle/internal/ports"
)

// TurnInput is one PASS or FIRE for a match.
type TurnInput struct {
	MatchID string
	// UserID, when set, must control Request.PlayerID.
	UserID  string
	Request domain.TurnRequest
}

// TurnOutcome is the resolved turn, its log id and the match after it.
type TurnOutcome struct {
	TurnID string
	Result *domain.TurnResult
	Game   *domain.Game
}

// ExecuteTurn resolves one action for the active player, logs it and closes the room when the match ends.
func (s *Service) ExecuteTurn(ctx context.Context, in TurnInput) (out *TurnOutcome, events []Event, err error) {
	ctx, span := s.startSpan(ctx, "ExecuteTurn", in.MatchID, in.Request.PlayerID)
	defer func() { endSpan(span, err) }()

	err = s.store.Atomically(ctx, func(tx ports.MatchTx) error {
		if err := tx.LockMatch(ctx, in.MatchID); err != nil {
			return err
		}
		g, err := tx.LoadGame(ctx, in.MatchID)
		if err != nil {
			return err
		}
		if err := authorize(g, in.Request.PlayerID, in.UserID); err != nil {
			return err
		}
		result, err := s.engine.ExecuteTurn(g, in.Request)
		if err != nil {
			return err
		}

		now := s.now()
		g.Match.UpdatedAt = now
		if err := tx.SaveGame(ctx, g); err != nil {
			return err
		}
		data, err := encodeTurnLog(NewTurnLog(result))
		if err != nil {
			return err
		}
		rec := ports.TurnRecord{
			ID:        s.newID(),
			MatchID:   g.Match.ID,
			PlayerID:  result.PlayerID,
			Number:    result.Turn,
			Action:    result.Action,
			AutoPass:  result.AutoPass,
			Result:    data,
			CreatedAt: now,
		}
		if shot := result.Shot; shot != nil {
			rec.Munition = &ports.MunitionRecord{
				ID:          s.newID(),
				Kind:        shot.Munition,
				Cost:        shot.Cost,
				Target:      shot.Target,
				Orientation: shot.Orientation,
			}
		}
		if err := tx.AppendTurn(ctx, rec); err != nil {
			return err
		}
		if err := finishRoom(ctx, tx, g, now); err != nil {
			return err
		}
		out = &TurnOutcome{TurnID: rec.ID, Result: result, Game: g}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, turnEvents(out), nil
}

func turnEvents(out *TurnOutcome) []Event {
	g := out.Game
	m := g.Match
	events := []Event{{
		Kind: EventTurnResolved,
		Payload: TurnResolvedPayload{
			MatchID:      m.ID,
			TurnID:       out.TurnID,
			NextPlayerID: m.ActivePlayerID,
			Turn:         NewTurnLog(out.Result),
		},
		Recipients: userIDs(g),
	}}
	switch out.Result.Outcome.State {
	case domain.OutcomeResponse:
		events = append(events, Event{
			Kind: EventResponseOpened,
			Payload: ResponseOpenedPayload{
				MatchID:     m.ID,
				InitiatorID: m.InitiatorID,
				ResponderID: out.Result.Outcome.AwaitingPlayerID,
			},
			Recipients: userIDs(g),
		})
	case domain.OutcomeFinished:
		events = append(events, matchFinishedEvent(g))
	}
	return events
}
