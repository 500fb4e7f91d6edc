// Package sqlite persists matches, boards and rooms in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"castlebattle/internal/domain"
	sqlitemigrate "castlebattle/internal/platform/storage/sqlitemigrate"
	"castlebattle/internal/ports"
	"castlebattle/internal/storage/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for matches and rooms.
type Store struct {
	sqlDB *sql.DB
}

var _ ports.MatchStore = (*Store)(nil)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// Open opens a match store at the provided path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// Atomically runs fn in a single transaction, committing only when fn succeeds.
func (s *Store) Atomically(ctx context.Context, fn func(tx ports.MatchTx) error) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback: %v", cause, rollbackErr)
		}
		return cause
	}

	if err := fn(&txStore{q: tx}); err != nil {
		return rollbackWith(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// snapshot runs fn in a transaction that is always rolled back, so every statement fn issues
// reads the same committed state.
func (s *Store) snapshot(ctx context.Context, fn func(q queryer) error) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	return fn(tx)
}

// LoadGame reads a match aggregate without locking.
func (s *Store) LoadGame(ctx context.Context, matchID string) (*domain.Game, error) {
	var g *domain.Game
	err := s.snapshot(ctx, func(q queryer) error {
		var err error
		g, err = loadGame(ctx, q, matchID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListTurns returns the match's turn log in order.
func (s *Store) ListTurns(ctx context.Context, matchID string) ([]ports.TurnRecord, error) {
	var turns []ports.TurnRecord
	err := s.snapshot(ctx, func(q queryer) error {
		if err := matchExists(ctx, q, matchID); err != nil {
			return err
		}
		var err error
		turns, err = listTurns(ctx, q, matchID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return turns, nil
}

// GetRoom reads a room and its participants.
func (s *Store) GetRoom(ctx context.Context, roomID string) (ports.Room, []ports.Participant, error) {
	var (
		room         ports.Room
		participants []ports.Participant
	)
	err := s.snapshot(ctx, func(q queryer) error {
		var err error
		if room, err = getRoom(ctx, q, roomID); err != nil {
			return err
		}
		participants, err = listParticipants(ctx, q, roomID)
		return err
	})
	if err != nil {
		return ports.Room{}, nil, err
	}
	return room, participants, nil
}

// ListRooms returns up to limit rooms with the given status, newest first. An empty status lists all rooms.
func (s *Store) ListRooms(ctx context.Context, status ports.RoomStatus, limit int) ([]ports.RoomSummary, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return listRooms(ctx, s.sqlDB, status, limit)
}

// txStore implements ports.MatchTx on an open transaction.
type txStore struct {
	q queryer
}

var _ ports.MatchTx = (*txStore)(nil)

func (t *txStore) LockMatch(ctx context.Context, matchID string) error {
	return lockRow(ctx, t.q, "matches", matchID, domain.ErrMatchNotFound)
}

func (t *txStore) LockRoom(ctx context.Context, roomID string) error {
	return lockRow(ctx, t.q, "rooms", roomID, domain.ErrRoomNotFound)
}

func (t *txStore) LoadGame(ctx context.Context, matchID string) (*domain.Game, error) {
	return loadGame(ctx, t.q, matchID)
}

func (t *txStore) CreateGame(ctx context.Context, g *domain.Game) error {
	return createGame(ctx, t.q, g)
}

func (t *txStore) SaveGame(ctx context.Context, g *domain.Game) error {
	return saveGame(ctx, t.q, g)
}

func (t *txStore) AppendTurn(ctx context.Context, rec ports.TurnRecord) error {
	return appendTurn(ctx, t.q, rec)
}

func (t *txStore) AppendSupply(ctx context.Context, rec ports.SupplyRecord) error {
	return appendSupply(ctx, t.q, rec)
}

func (t *txStore) CreateRoom(ctx context.Context, room ports.Room) error {
	return createRoom(ctx, t.q, room)
}

func (t *txStore) GetRoom(ctx context.Context, roomID string) (ports.Room, error) {
	return getRoom(ctx, t.q, roomID)
}

func (t *txStore) ListParticipants(ctx context.Context, roomID string) ([]ports.Participant, error) {
	return listParticipants(ctx, t.q, roomID)
}

func (t *txStore) AddParticipant(ctx context.Context, p ports.Participant) error {
	return addParticipant(ctx, t.q, p)
}

func (t *txStore) RemoveParticipant(ctx context.Context, roomID, userID string) error {
	return removeParticipant(ctx, t.q, roomID, userID)
}

func (t *txStore) SetRoomStatus(ctx context.Context, roomID string, status ports.RoomStatus, at time.Time) error {
	return setRoomStatus(ctx, t.q, roomID, status, at)
}

// lockRow bumps the row version so the transaction holds SQLite's write lock
// before any related state is read.
func lockRow(ctx context.Context, q queryer, table, id string, notFound error) error {
	res, err := q.ExecContext(ctx, "UPDATE "+table+" SET version = version + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("lock %s %s: %w", table, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("lock %s %s: %w", table, id, err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
