package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"castlebattle/internal/domain"
	"castlebattle/internal/ports"
)

func appendTurn(ctx context.Context, q queryer, rec ports.TurnRecord) error {
	result := rec.Result
	if len(result) == 0 {
		result = []byte("{}")
	}
	if _, err := q.ExecContext(ctx, `INSERT INTO turns (id, match_id, player_id, number, action, auto_pass, result_json, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.MatchID, rec.PlayerID, rec.Number, string(rec.Action), boolToInt(rec.AutoPass),
		string(result), toMillis(rec.CreatedAt),
	); err != nil {
		return fmt.Errorf("insert turn %s: %w", rec.ID, err)
	}
	if mun := rec.Munition; mun != nil {
		if _, err := q.ExecContext(ctx, `INSERT INTO munitions (id, turn_id, kind, cost, target_x, target_y, orientation)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			mun.ID, rec.ID, string(mun.Kind), mun.Cost, mun.Target.X, mun.Target.Y, string(mun.Orientation),
		); err != nil {
			return fmt.Errorf("insert munition for turn %s: %w", rec.ID, err)
		}
	}
	return nil
}

func listTurns(ctx context.Context, q queryer, matchID string) ([]ports.TurnRecord, error) {
	rows, err := q.QueryContext(ctx, `SELECT t.id, t.match_id, t.player_id, t.number, t.action, t.auto_pass,
    t.result_json, t.created_at, m.id, m.kind, m.cost, m.target_x, m.target_y, m.orientation
FROM turns t LEFT JOIN munitions m ON m.turn_id = t.id
WHERE t.match_id = ?
ORDER BY t.number, t.created_at`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list turns for match %s: %w", matchID, err)
	}
	defer rows.Close()

	var out []ports.TurnRecord
	for rows.Next() {
		var (
			rec       ports.TurnRecord
			action    string
			autoPass  int
			result    string
			createdAt int64
			munID     sql.NullString
			kind      sql.NullString
			cost      sql.NullInt64
			targetX   sql.NullInt64
			targetY   sql.NullInt64
			orient    sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.MatchID, &rec.PlayerID, &rec.Number, &action, &autoPass, &result,
			&createdAt, &munID, &kind, &cost, &targetX, &targetY, &orient,
		); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		rec.Action = domain.Action(action)
		rec.AutoPass = autoPass == 1
		rec.Result = []byte(result)
		rec.CreatedAt = fromMillis(createdAt)
		if munID.Valid {
			rec.Munition = &ports.MunitionRecord{
				ID:          munID.String,
				Kind:        domain.MunitionKind(kind.String),
				Cost:        int(cost.Int64),
				Target:      domain.Coord{X: int(targetX.Int64), Y: int(targetY.Int64)},
				Orientation: domain.Orientation(orient.String),
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}
	return out, nil
}

func appendSupply(ctx context.Context, q queryer, rec ports.SupplyRecord) error {
	if _, err := q.ExecContext(ctx, `INSERT INTO supplies (id, match_id, player_id, turn, success, effect, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.MatchID, rec.PlayerID, rec.Turn, boolToInt(rec.Success), string(rec.Effect), toMillis(rec.CreatedAt),
	); err != nil {
		return fmt.Errorf("insert supply %s: %w", rec.ID, err)
	}
	return nil
}
