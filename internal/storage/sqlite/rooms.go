package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"castlebattle/internal/domain"
	"castlebattle/internal/ports"
)

func createRoom(ctx context.Context, q queryer, room ports.Room) error {
	if _, err := q.ExecContext(ctx,
		"INSERT INTO rooms (id, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		room.ID, room.Name, string(room.Status), toMillis(room.CreatedAt), toMillis(room.UpdatedAt),
	); err != nil {
		return fmt.Errorf("insert room %s: %w", room.ID, err)
	}
	return nil
}

func getRoom(ctx context.Context, q queryer, roomID string) (ports.Room, error) {
	var (
		room      ports.Room
		status    string
		createdAt int64
		updatedAt int64
	)
	err := q.QueryRowContext(ctx,
		"SELECT id, name, status, created_at, updated_at FROM rooms WHERE id = ?", roomID,
	).Scan(&room.ID, &room.Name, &status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.Room{}, domain.ErrRoomNotFound
	}
	if err != nil {
		return ports.Room{}, fmt.Errorf("get room %s: %w", roomID, err)
	}
	room.Status = ports.RoomStatus(status)
	room.CreatedAt = fromMillis(createdAt)
	room.UpdatedAt = fromMillis(updatedAt)
	return room, nil
}

func listParticipants(ctx context.Context, q queryer, roomID string) ([]ports.Participant, error) {
	rows, err := q.QueryContext(ctx, `SELECT room_id, user_id, role, slot, joined_at FROM room_participants
WHERE room_id = ?
ORDER BY CASE role WHEN 'PLAYER' THEN 0 ELSE 1 END, slot, joined_at, user_id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("list participants for room %s: %w", roomID, err)
	}
	defer rows.Close()

	var out []ports.Participant
	for rows.Next() {
		var (
			p        ports.Participant
			role     string
			joinedAt int64
		)
		if err := rows.Scan(&p.RoomID, &p.UserID, &role, &p.Slot, &joinedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		p.Role = ports.RoomRole(role)
		p.JoinedAt = fromMillis(joinedAt)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return out, nil
}

func addParticipant(ctx context.Context, q queryer, p ports.Participant) error {
	if _, err := q.ExecContext(ctx,
		"INSERT INTO room_participants (room_id, user_id, role, slot, joined_at) VALUES (?, ?, ?, ?, ?)",
		p.RoomID, p.UserID, string(p.Role), p.Slot, toMillis(p.JoinedAt),
	); err != nil {
		return fmt.Errorf("insert participant %s in room %s: %w", p.UserID, p.RoomID, err)
	}
	return nil
}

func removeParticipant(ctx context.Context, q queryer, roomID, userID string) error {
	if _, err := q.ExecContext(ctx,
		"DELETE FROM room_participants WHERE room_id = ? AND user_id = ?", roomID, userID,
	); err != nil {
		return fmt.Errorf("delete participant %s from room %s: %w", userID, roomID, err)
	}
	return nil
}

func setRoomStatus(ctx context.Context, q queryer, roomID string, status ports.RoomStatus, at time.Time) error {
	res, err := q.ExecContext(ctx,
		"UPDATE rooms SET status = ?, updated_at = ? WHERE id = ?", string(status), toMillis(at), roomID,
	)
	if err != nil {
		return fmt.Errorf("update room %s: %w", roomID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func listRooms(ctx context.Context, q queryer, status ports.RoomStatus, limit int) ([]ports.RoomSummary, error) {
	rows, err := q.QueryContext(ctx, `SELECT r.id, r.name, r.status, r.created_at, r.updated_at,
    (SELECT COUNT(*) FROM room_participants p WHERE p.room_id = r.id AND p.role = 'PLAYER')
FROM rooms r
WHERE ? = '' OR r.status = ?
ORDER BY r.created_at DESC, r.id
LIMIT ?`, string(status), string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var out []ports.RoomSummary
	for rows.Next() {
		var (
			r         ports.RoomSummary
			st        string
			createdAt int64
			updatedAt int64
		)
		if err := rows.Scan(&r.ID, &r.Name, &st, &createdAt, &updatedAt, &r.Players); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		r.Status = ports.RoomStatus(st)
		r.CreatedAt = fromMillis(createdAt)
		r.UpdatedAt = fromMillis(updatedAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}
	return out, nil
}
