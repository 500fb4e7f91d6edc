package app

import (
	"context"

	"castlebattle/internal/domain"
	"castlebattle/internal/ports"
)

// SupplyInput is one emergency supply request.
type SupplyInput struct {
	MatchID string
	// UserID, when set, must control Request.PlayerID.
	UserID  string
	Request domain.SupplyRequest
}

// SupplyOutcome is the resolved supply and the match after it.
type SupplyOutcome struct {
	Result *domain.SupplyResult
	Game   *domain.Game
}

// RequestSupply rolls an emergency supply. A failed roll still commits the cooldown.
func (s *Service) RequestSupply(ctx context.Context, in SupplyInput) (out *SupplyOutcome, events []Event, err error) {
	ctx, span := s.startSpan(ctx, "RequestSupply", in.MatchID, in.Request.PlayerID)
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
		result, err := s.engine.RequestSupply(g, in.Request)
		if err != nil {
			return err
		}

		now := s.now()
		g.Match.UpdatedAt = now
		if err := tx.SaveGame(ctx, g); err != nil {
			return err
		}
		if err := tx.AppendSupply(ctx, ports.SupplyRecord{
			ID:        s.newID(),
			MatchID:   g.Match.ID,
			PlayerID:  result.PlayerID,
			Turn:      result.Turn,
			Success:   result.Success,
			Effect:    result.Effect,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		out = &SupplyOutcome{Result: result, Game: g}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, []Event{{
		Kind:       EventSupplyResolved,
		Payload:    NewSupplyPayload(out.Game.Match.ID, out.Result),
		Recipients: userOf(out.Game, out.Result.PlayerID),
	}}, nil
}

// NewSupplyPayload flattens a supply result for delivery to the requester.
func NewSupplyPayload(matchID string, r *domain.SupplyResult) SupplyResolvedPayload {
	payload := SupplyResolvedPayload{
		MatchID:  matchID,
		PlayerID: r.PlayerID,
		Turn:     r.Turn,
		Success:  r.Success,
		Effect:   r.Effect,
		Boost:    r.Boost,
	}
	if r.Dome != nil {
		center := r.Dome.Center
		payload.DomeCenter = &center
	}
	if r.Camp != nil {
		from, to := r.From, r.Camp.Cell
		payload.CampID = r.Camp.ID
		payload.From = &from
		payload.To = &to
	}
	return payload
}
