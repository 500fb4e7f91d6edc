package ports

import (
	"context"
	"time"
)

// RoomStatus is the lifecycle state of a room.
type RoomStatus string

const (
	RoomWaiting  RoomStatus = "WAITING"
	RoomStarted  RoomStatus = "STARTED"
	RoomFinished RoomStatus = "FINISHED"
)

// RoomRole distinguishes players from spectators.
type RoomRole string

const (
	RolePlayer    RoomRole = "PLAYER"
	RoleSpectator RoomRole = "SPECTATOR"
)

// Room is a lobby that becomes a match once two players are present.
type Room struct {
	ID        string
	Name      string
	Status    RoomStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoomSummary is a room with its current player count.
type RoomSummary struct {
	Room
	Players int
}

// Participant is a user present in a room. Slot is 1 or 2 for players and 0 for spectators.
type Participant struct {
	RoomID   string
	UserID   string
	Role     RoomRole
	Slot     int
	JoinedAt time.Time
}

// RoomDirectory manages rooms and their participants inside a transaction.
type RoomDirectory interface {
	// LockRoom takes the exclusive per-room lock, or fails with a not-found error.
	LockRoom(ctx context.Context, roomID string) error
	CreateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, roomID string) (Room, error)
	// ListParticipants returns players by slot, then spectators by join time.
	ListParticipants(ctx context.Context, roomID string) ([]Participant, error)
	AddParticipant(ctx context.Context, p Participant) error
	RemoveParticipant(ctx context.Context, roomID, userID string) error
	SetRoomStatus(ctx context.Context, roomID string, status RoomStatus, at time.Time) error
}
