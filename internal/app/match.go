package app

import (
	"context"

	"castlebattle/internal/domain"
	"castlebattle/internal/ports"
)

// CreateMatchFromRoom turns a waiting two-player room into a match in deployment.
// Slot 1 plays LEFT; the room is marked started in the same transaction.
func (s *Service) CreateMatchFromRoom(ctx context.Context, roomID string) (g *domain.Game, events []Event, err error) {
	ctx, span := s.startSpan(ctx, "CreateMatchFromRoom", "", "")
	defer func() { endSpan(span, err) }()

	if roomID == "" {
		return nil, nil, domain.ErrEmptyID
	}

	var participants []ports.Participant
	err = s.store.Atomically(ctx, func(tx ports.MatchTx) error {
		if err := tx.LockRoom(ctx, roomID); err != nil {
			return err
		}
		room, err := tx.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if room.Status != ports.RoomWaiting {
			return domain.ErrRoomNotWaiting
		}
		if participants, err = tx.ListParticipants(ctx, roomID); err != nil {
			return err
		}

		var seats []domain.Seat
		for _, p := range participants {
			if p.Role == ports.RolePlayer {
				seats = append(seats, domain.Seat{PlayerID: s.newID(), UserID: p.UserID})
			}
		}
		now := s.now()
		if g, err = s.engine.NewGame(domain.NewGameParams{
			MatchID: s.newID(),
			RoomID:  roomID,
			BoardID: s.newID(),
			Seats:   seats,
			Now:     now,
		}); err != nil {
			return err
		}
		if err := tx.CreateGame(ctx, g); err != nil {
			return err
		}
		return tx.SetRoomStatus(ctx, roomID, ports.RoomStarted, now)
	})
	if err != nil {
		return nil, nil, err
	}
	span.SetAttributes(matchAttr(g.Match.ID))

	payload := MatchCreatedPayload{
		MatchID:     g.Match.ID,
		RoomID:      roomID,
		InitiatorID: g.Match.InitiatorID,
	}
	for _, p := range g.Players {
		payload.Players = append(payload.Players, SeatPayload{PlayerID: p.ID, UserID: p.UserID, Side: p.Side})
	}
	recipients := make([]string, 0, len(participants))
	for _, p := range participants {
		recipients = append(recipients, p.UserID)
	}
	return g, []Event{{Kind: EventMatchCreated, Payload: payload, Recipients: recipients}}, nil
}

// DeployInput places one camp during deployment.
type DeployInput struct {
	MatchID  string
	PlayerID string
	// UserID, when set, must control PlayerID.
	UserID   string
	CampType domain.CampType
	At       *domain.Coord
}

// DeployResult is the placed camp and the match after placement.
type DeployResult struct {
	Camp    *domain.Camp
	Started bool
	Game    *domain.Game
}

// DeployCamp places a camp and starts play once both players have all camps down.
func (s *Service) DeployCamp(ctx context.Context, in DeployInput) (res *DeployResult, events []Event, err error) {
	ctx, span := s.startSpan(ctx, "DeployCamp", in.MatchID, in.PlayerID)
	defer func() { endSpan(span, err) }()

	if !in.CampType.Valid() {
		return nil, nil, domain.ErrInvalidCampType
	}

	err = s.store.Atomically(ctx, func(tx ports.MatchTx) error {
		if err := tx.LockMatch(ctx, in.MatchID); err != nil {
			return err
		}
		g, err := tx.LoadGame(ctx, in.MatchID)
		if err != nil {
			return err
		}
		if err := authorize(g, in.PlayerID, in.UserID); err != nil {
			return err
		}
		camp, started, err := s.engine.DeployCamp(g, s.newID(), in.PlayerID, in.CampType, in.At)
		if err != nil {
			return err
		}
		g.Match.UpdatedAt = s.now()
		if err := tx.SaveGame(ctx, g); err != nil {
			return err
		}
		res = &DeployResult{Camp: camp, Started: started, Game: g}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	g := res.Game
	events = []Event{{
		Kind: EventCampDeployed,
		Payload: CampDeployedPayload{
			MatchID:  g.Match.ID,
			PlayerID: res.Camp.PlayerID,
			CampID:   res.Camp.ID,
			Type:     res.Camp.Type,
			Cell:     res.Camp.Cell,
		},
		Recipients: userOf(g, res.Camp.PlayerID),
	}}
	if res.Started {
		events = append(events, Event{
			Kind: EventMatchStarted,
			Payload: MatchStartedPayload{
				MatchID:        g.Match.ID,
				Turn:           g.Match.Turn,
				InitiatorID:    g.Match.InitiatorID,
				ActivePlayerID: g.Match.ActivePlayerID,
			},
			Recipients: userIDs(g),
		})
	}
	return res, events, nil
}

// GetMatchState returns a read-only snapshot of the match aggregate.
func (s *Service) GetMatchState(ctx context.Context, matchID string) (g *domain.Game, err error) {
	ctx, span := s.startSpan(ctx, "GetMatchState", matchID, "")
	defer func() { endSpan(span, err) }()

	if matchID == "" {
		return nil, domain.ErrEmptyID
	}
	return s.store.LoadGame(ctx, matchID)
}

// ListTurns returns the match's turn log in order.
func (s *Service) ListTurns(ctx context.Context, matchID string) (turns []ports.TurnRecord, err error) {
	ctx, span := s.startSpan(ctx, "ListTurns", matchID, "")
	defer func() { endSpan(span, err) }()

	if matchID == "" {
		return nil, domain.ErrEmptyID
	}
	return s.store.ListTurns(ctx, matchID)
}
