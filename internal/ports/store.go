package ports

import (
	"context"
	"time"

	"castlebattle/internal/domain"
)

// TurnRecord is one immutable entry of a match's action log.
type TurnRecord struct {
	ID       string
	MatchID  string
	PlayerID string
	Number   int
	Action   domain.Action
	AutoPass bool
	// Result is the JSON-encoded turn outcome.
	Result    []byte
	Munition  *MunitionRecord
	CreatedAt time.Time
}

// MunitionRecord logs the munition fired on a FIRE turn.
type MunitionRecord struct {
	ID          string
	Kind        domain.MunitionKind
	Cost        int
	Target      domain.Coord
	Orientation domain.Orientation
}

// SupplyRecord logs one emergency supply request.
type SupplyRecord struct {
	ID        string
	MatchID   string
	PlayerID  string
	Turn      int
	Success   bool
	Effect    domain.SupplyEffect
	CreatedAt time.Time
}

// MatchStore is the transactional persistence boundary for matches and rooms.
type MatchStore interface {
	// Atomically runs fn inside one transaction. Any error from fn rolls it back.
	Atomically(ctx context.Context, fn func(tx MatchTx) error) error

	// LoadGame reads a full match aggregate outside of a transaction.
	LoadGame(ctx context.Context, matchID string) (*domain.Game, error)

	// ListTurns returns the match's action log in turn order.
	ListTurns(ctx context.Context, matchID string) ([]TurnRecord, error)

	// GetRoom reads a room and its participants outside of a transaction.
	GetRoom(ctx context.Context, roomID string) (Room, []Participant, error)

	// ListRooms returns up to limit rooms, newest first. An empty status matches every room.
	ListRooms(ctx context.Context, status RoomStatus, limit int) ([]RoomSummary, error)
}

// MatchTx is the set of operations available inside a transaction.
// Lock methods must be called before reading the state they guard.
type MatchTx interface {
	// LockMatch takes the exclusive per-match lock, or fails with a not-found error.
	LockMatch(ctx context.Context, matchID string) error
	LoadGame(ctx context.Context, matchID string) (*domain.Game, error)
	CreateGame(ctx context.Context, g *domain.Game) error
	SaveGame(ctx context.Context, g *domain.Game) error
	AppendTurn(ctx context.Context, rec TurnRecord) error
	AppendSupply(ctx context.Context, rec SupplyRecord) error

	RoomDirectory
}
