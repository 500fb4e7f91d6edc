package app

import (
	"context"
	"errors"
	"strings"

	"castlebattle/internal/domain"
	"castlebattle/internal/ports"
)

// MaxRoomPlayers is the number of player slots in a room.
const MaxRoomPlayers = 2

const (
	// DefaultRoomListLimit caps room listings when the caller gives no limit.
	DefaultRoomListLimit = 50
	quickJoinScan        = 10
	quickRoomName        = "Quick match"
)

// RoomView is a room with its participants, players first by slot.
type RoomView struct {
	Room         ports.Room
	Participants []ports.Participant
}

// Players returns the participants holding a player slot.
func (v RoomView) Players() []ports.Participant {
	var out []ports.Participant
	for _, p := range v.Participants {
		if p.Role == ports.RolePlayer {
			out = append(out, p)
		}
	}
	return out
}

// CreateRoom opens a waiting room with userID seated in slot 1.
func (s *Service) CreateRoom(ctx context.Context, userID, name string) (view *RoomView, err error) {
	ctx, span := s.startSpan(ctx, "CreateRoom", "", "")
	defer func() { endSpan(span, err) }()

	if userID == "" {
		return nil, domain.ErrEmptyID
	}
	now := s.now()
	room := ports.Room{
		ID:        s.newID(),
		Name:      strings.TrimSpace(name),
		Status:    ports.RoomWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	owner := ports.Participant{RoomID: room.ID, UserID: userID, Role: ports.RolePlayer, Slot: 1, JoinedAt: now}

	err = s.store.Atomically(ctx, func(tx ports.MatchTx) error {
		if err := tx.CreateRoom(ctx, room); err != nil {
			return err
		}
		return tx.AddParticipant(ctx, owner)
	})
	if err != nil {
		return nil, err
	}
	return &RoomView{Room: room, Participants: []ports.Participant{owner}}, nil
}

// JoinRoom adds userID to a waiting room as a player in the first free slot or as a spectator.
func (s *Service) JoinRoom(ctx context.Context, roomID, userID string, role ports.RoomRole) (view *RoomView, err error) {
	ctx, span := s.startSpan(ctx, "JoinRoom", "", "")
	defer func() { endSpan(span, err) }()

	if roomID == "" || userID == "" {
		return nil, domain.ErrEmptyID
	}
	if role == "" {
		role = ports.RolePlayer
	}
	if role != ports.RolePlayer && role != ports.RoleSpectator {
		return nil, domain.ErrInvalidRole
	}

	err = s.store.Atomically(ctx, func(tx ports.MatchTx) error {
		v, err := lockWaitingRoom(ctx, tx, roomID)
		if err != nil {
			return err
		}
		for _, p := range v.Participants {
			if p.UserID == userID {
				return domain.ErrAlreadyJoined
			}
		}

		joined := ports.Participant{RoomID: roomID, UserID: userID, Role: role, JoinedAt: s.now()}
		if role == ports.RolePlayer {
			if joined.Slot = freeSlot(v.Players()); joined.Slot == 0 {
				return domain.ErrRoomFull
			}
		}
		if err := tx.AddParticipant(ctx, joined); err != nil {
			return err
		}
		if v.Participants, err = tx.ListParticipants(ctx, roomID); err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// LeaveRoom removes userID from a waiting room.
func (s *Service) LeaveRoom(ctx context.Context, roomID, userID string) (view *RoomView, err error) {
	ctx, span := s.startSpan(ctx, "LeaveRoom", "", "")
	defer func() { endSpan(span, err) }()

	if roomID == "" || userID == "" {
		return nil, domain.ErrEmptyID
	}

	err = s.store.Atomically(ctx, func(tx ports.MatchTx) error {
		v, err := lockWaitingRoom(ctx, tx, roomID)
		if err != nil {
			return err
		}
		present := false
		for _, p := range v.Participants {
			if p.UserID == userID {
				present = true
				break
			}
		}
		if !present {
			return domain.ErrNotInRoom
		}
		if err := tx.RemoveParticipant(ctx, roomID, userID); err != nil {
			return err
		}
		if v.Participants, err = tx.ListParticipants(ctx, roomID); err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetRoom returns a room and its participants.
func (s *Service) GetRoom(ctx context.Context, roomID string) (view *RoomView, err error) {
	ctx, span := s.startSpan(ctx, "GetRoom", "", "")
	defer func() { endSpan(span, err) }()

	if roomID == "" {
		return nil, domain.ErrEmptyID
	}
	room, participants, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return &RoomView{Room: room, Participants: participants}, nil
}

// ListRooms returns up to limit rooms in status, newest first. An empty status lists every room.
func (s *Service) ListRooms(ctx context.Context, status ports.RoomStatus, limit int) (rooms []ports.RoomSummary, err error) {
	ctx, span := s.startSpan(ctx, "ListRooms", "", "")
	defer func() { endSpan(span, err) }()

	if limit <= 0 || limit > DefaultRoomListLimit {
		limit = DefaultRoomListLimit
	}
	return s.store.ListRooms(ctx, status, limit)
}

// QuickJoin seats userID in a waiting room with a free player slot, creating one when none is open.
// A user already seated in a waiting room gets that room back.
func (s *Service) QuickJoin(ctx context.Context, userID string) (view *RoomView, created bool, err error) {
	ctx, span := s.startSpan(ctx, "QuickJoin", "", "")
	defer func() { endSpan(span, err) }()

	if userID == "" {
		return nil, false, domain.ErrEmptyID
	}
	rooms, err := s.store.ListRooms(ctx, ports.RoomWaiting, quickJoinScan)
	if err != nil {
		return nil, false, err
	}
	for _, r := range rooms {
		view, err = s.GetRoom(ctx, r.ID)
		if errors.Is(err, domain.ErrRoomNotFound) {
			continue
		}
		if err != nil {
			return nil, false, err
		}
		for _, p := range view.Participants {
			if p.UserID == userID {
				return view, false, nil
			}
		}
	}
	for _, r := range rooms {
		if r.Players >= MaxRoomPlayers {
			continue
		}
		view, err = s.JoinRoom(ctx, r.ID, userID, ports.RolePlayer)
		switch {
		case err == nil:
			return view, false, nil
		case errors.Is(err, domain.ErrAlreadyJoined):
			view, err = s.GetRoom(ctx, r.ID)
			return view, false, err
		case errors.Is(err, domain.ErrRoomFull), errors.Is(err, domain.ErrRoomNotWaiting):
			continue
		default:
			return nil, false, err
		}
	}

	view, err = s.CreateRoom(ctx, userID, quickRoomName)
	if err != nil {
		return nil, false, err
	}
	return view, true, nil
}

func lockWaitingRoom(ctx context.Context, tx ports.MatchTx, roomID string) (*RoomView, error) {
	if err := tx.LockRoom(ctx, roomID); err != nil {
		return nil, err
	}
	room, err := tx.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status != ports.RoomWaiting {
		return nil, domain.ErrRoomNotWaiting
	}
	participants, err := tx.ListParticipants(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return &RoomView{Room: room, Participants: participants}, nil
}

// freeSlot returns the lowest unused player slot, or 0 when the room is full.
func freeSlot(players []ports.Participant) int {
	taken := make(map[int]bool, len(players))
	for _, p := range players {
		taken[p.Slot] = true
	}
	for slot := 1; slot <= MaxRoomPlayers; slot++ {
		if !taken[slot] {
			return slot
		}
	}
	return 0
}
