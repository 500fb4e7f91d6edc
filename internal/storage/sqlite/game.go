package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"castlebattle/internal/domain"
)

const matchColumns = `id, room_id, phase, subphase, turn, initiator_id, active_player_id, pending_response_id,
    response_active, winner_id, draw, finish_reason, created_at, updated_at`

const playerColumns = `id, match_id, user_id, side, powder, supply_cooldown, supply_uses, supply_uses_left,
    inactivity, destroyed_reported, destroyed_own, dome_active, dome_x, dome_y, dome_turn,
    last_income_turn, last_played_turn`

func matchExists(ctx context.Context, q queryer, matchID string) error {
	var found int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM matches WHERE id = ?", matchID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrMatchNotFound
	}
	if err != nil {
		return fmt.Errorf("check match %s: %w", matchID, err)
	}
	return nil
}

func loadGame(ctx context.Context, q queryer, matchID string) (*domain.Game, error) {
	match, err := getMatch(ctx, q, matchID)
	if err != nil {
		return nil, err
	}
	board, err := getBoard(ctx, q, matchID)
	if err != nil {
		return nil, err
	}
	players, err := listPlayers(ctx, q, matchID)
	if err != nil {
		return nil, err
	}
	camps, err := listCamps(ctx, q, board.ID)
	if err != nil {
		return nil, err
	}
	return &domain.Game{Match: match, Board: board, Players: players, Camps: camps}, nil
}

func getMatch(ctx context.Context, q queryer, matchID string) (*domain.Match, error) {
	var (
		m              domain.Match
		phase, sub     string
		responseActive int
		draw           int
		createdAt      int64
		updatedAt      int64
	)
	err := q.QueryRowContext(ctx, "SELECT "+matchColumns+" FROM matches WHERE id = ?", matchID).Scan(
		&m.ID, &m.RoomID, &phase, &sub, &m.Turn, &m.InitiatorID, &m.ActivePlayerID, &m.PendingResponseID,
		&responseActive, &m.WinnerID, &draw, &m.FinishReason, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get match %s: %w", matchID, err)
	}
	m.Phase = domain.Phase(phase)
	m.Subphase = domain.Subphase(sub)
	m.ResponseActive = responseActive == 1
	m.Draw = draw == 1
	m.CreatedAt = fromMillis(createdAt)
	m.UpdatedAt = fromMillis(updatedAt)
	return &m, nil
}

func getBoard(ctx context.Context, q queryer, matchID string) (*domain.Board, error) {
	var boardID string
	err := q.QueryRowContext(ctx, "SELECT id FROM boards WHERE match_id = ?", matchID).Scan(&boardID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get board for match %s: %w", matchID, err)
	}

	board := domain.NewBoard(boardID)
	rows, err := q.QueryContext(ctx, "SELECT x, y FROM cells WHERE board_id = ? AND destroyed = 1", boardID)
	if err != nil {
		return nil, fmt.Errorf("list cells for board %s: %w", boardID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var c domain.Coord
		if err := rows.Scan(&c.X, &c.Y); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		if cell := board.Cell(c); cell != nil {
			cell.Destroyed = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cells: %w", err)
	}
	return board, nil
}

func listPlayers(ctx context.Context, q queryer, matchID string) ([]*domain.Player, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+playerColumns+" FROM players WHERE match_id = ? ORDER BY seat", matchID)
	if err != nil {
		return nil, fmt.Errorf("list players for match %s: %w", matchID, err)
	}
	defer rows.Close()

	var players []*domain.Player
	for rows.Next() {
		var (
			p          domain.Player
			side       string
			domeActive int
		)
		if err := rows.Scan(
			&p.ID, &p.MatchID, &p.UserID, &side, &p.Powder, &p.SupplyCooldown, &p.SupplyUses, &p.SupplyUsesLeft,
			&p.Inactivity, &p.DestroyedReported, &p.DestroyedOwn, &domeActive, &p.Dome.Center.X, &p.Dome.Center.Y,
			&p.Dome.ActivatedTurn, &p.LastIncomeTurn, &p.LastPlayedTurn,
		); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		p.Side = domain.Side(side)
		p.Dome.Active = domeActive == 1
		players = append(players, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return players, nil
}

func listCamps(ctx context.Context, q queryer, boardID string) ([]*domain.Camp, error) {
	rows, err := q.QueryContext(ctx, `SELECT c.id, c.player_id, c.type, c.x, c.y, c.last_reloc_turn
FROM camps c JOIN players p ON p.id = c.player_id
WHERE c.board_id = ? ORDER BY p.seat, c.type`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list camps for board %s: %w", boardID, err)
	}
	defer rows.Close()

	var camps []*domain.Camp
	for rows.Next() {
		var (
			c    domain.Camp
			kind string
		)
		if err := rows.Scan(&c.ID, &c.PlayerID, &kind, &c.Cell.X, &c.Cell.Y, &c.LastRelocTurn); err != nil {
			return nil, fmt.Errorf("scan camp: %w", err)
		}
		c.Type = domain.CampType(kind)
		camps = append(camps, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate camps: %w", err)
	}
	return camps, nil
}

func createGame(ctx context.Context, q queryer, g *domain.Game) error {
	m := g.Match
	if _, err := q.ExecContext(ctx, `INSERT INTO matches (`+matchColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.RoomID, string(m.Phase), string(m.Subphase), m.Turn, m.InitiatorID, m.ActivePlayerID,
		m.PendingResponseID, boolToInt(m.ResponseActive), m.WinnerID, boolToInt(m.Draw), m.FinishReason,
		toMillis(m.CreatedAt), toMillis(m.UpdatedAt),
	); err != nil {
		return fmt.Errorf("insert match %s: %w", m.ID, err)
	}

	if _, err := q.ExecContext(ctx, "INSERT INTO boards (id, match_id, width, height) VALUES (?, ?, ?, ?)",
		g.Board.ID, m.ID, domain.BoardWidth, domain.BoardHeight,
	); err != nil {
		return fmt.Errorf("insert board %s: %w", g.Board.ID, err)
	}
	for _, cell := range g.Board.Cells {
		if _, err := q.ExecContext(ctx, "INSERT INTO cells (board_id, x, y, destroyed) VALUES (?, ?, ?, ?)",
			g.Board.ID, cell.X, cell.Y, boolToInt(cell.Destroyed),
		); err != nil {
			return fmt.Errorf("insert cell (%d,%d): %w", cell.X, cell.Y, err)
		}
	}

	for seat, p := range g.Players {
		if _, err := q.ExecContext(ctx, `INSERT INTO players (`+playerColumns+`, seat)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			append(playerArgs(p), seat)...,
		); err != nil {
			return fmt.Errorf("insert player %s: %w", p.ID, err)
		}
	}
	return replaceCamps(ctx, q, g)
}

func playerArgs(p *domain.Player) []any {
	return []any{
		p.ID, p.MatchID, p.UserID, string(p.Side), p.Powder, p.SupplyCooldown, p.SupplyUses, p.SupplyUsesLeft,
		p.Inactivity, p.DestroyedReported, p.DestroyedOwn, boolToInt(p.Dome.Active), p.Dome.Center.X,
		p.Dome.Center.Y, p.Dome.ActivatedTurn, p.LastIncomeTurn, p.LastPlayedTurn,
	}
}

func saveGame(ctx context.Context, q queryer, g *domain.Game) error {
	m := g.Match
	res, err := q.ExecContext(ctx, `UPDATE matches SET phase = ?, subphase = ?, turn = ?, active_player_id = ?,
    pending_response_id = ?, response_active = ?, winner_id = ?, draw = ?, finish_reason = ?, updated_at = ?
WHERE id = ?`,
		string(m.Phase), string(m.Subphase), m.Turn, m.ActivePlayerID, m.PendingResponseID,
		boolToInt(m.ResponseActive), m.WinnerID, boolToInt(m.Draw), m.FinishReason, toMillis(m.UpdatedAt), m.ID,
	)
	if err != nil {
		return fmt.Errorf("update match %s: %w", m.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrMatchNotFound
	}

	for _, cell := range g.Board.Cells {
		if !cell.Destroyed {
			continue
		}
		if _, err := q.ExecContext(ctx, "UPDATE cells SET destroyed = 1 WHERE board_id = ? AND x = ? AND y = ? AND destroyed = 0",
			g.Board.ID, cell.X, cell.Y,
		); err != nil {
			return fmt.Errorf("update cell (%d,%d): %w", cell.X, cell.Y, err)
		}
	}

	for _, p := range g.Players {
		if _, err := q.ExecContext(ctx, `UPDATE players SET powder = ?, supply_cooldown = ?, supply_uses = ?,
    supply_uses_left = ?, inactivity = ?, destroyed_reported = ?, destroyed_own = ?, dome_active = ?, dome_x = ?,
    dome_y = ?, dome_turn = ?, last_income_turn = ?, last_played_turn = ?
WHERE id = ?`,
			p.Powder, p.SupplyCooldown, p.SupplyUses, p.SupplyUsesLeft, p.Inactivity, p.DestroyedReported,
			p.DestroyedOwn, boolToInt(p.Dome.Active), p.Dome.Center.X, p.Dome.Center.Y, p.Dome.ActivatedTurn,
			p.LastIncomeTurn, p.LastPlayedTurn, p.ID,
		); err != nil {
			return fmt.Errorf("update player %s: %w", p.ID, err)
		}
	}
	return replaceCamps(ctx, q, g)
}

// replaceCamps rewrites the board's camp set, dropping destroyed camps and moving relocated ones.
func replaceCamps(ctx context.Context, q queryer, g *domain.Game) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM camps WHERE board_id = ?", g.Board.ID); err != nil {
		return fmt.Errorf("clear camps: %w", err)
	}
	for _, c := range g.Camps {
		if _, err := q.ExecContext(ctx, `INSERT INTO camps (id, player_id, board_id, type, x, y, last_reloc_turn)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.PlayerID, g.Board.ID, string(c.Type), c.Cell.X, c.Cell.Y, c.LastRelocTurn,
		); err != nil {
			return fmt.Errorf("insert camp %s: %w", c.ID, err)
		}
	}
	return nil
}
