package app

import (
	"encoding/json"
	"fmt"

	"castlebattle/internal/domain"
)

// TurnLog is the structured outcome stored with every turn record and pushed in turn events.
type TurnLog struct {
	Turn     int        `json:"turn"`
	PlayerID string     `json:"player_id"`
	Action   string     `json:"action"`
	AutoPass bool       `json:"auto_pass"`
	Income   IncomeLog  `json:"income"`
	Shot     *ShotLog   `json:"shot,omitempty"`
	Outcome  OutcomeLog `json:"outcome"`
}

type IncomeLog struct {
	Powder int      `json:"powder"`
	Camps  []string `json:"camps"`
}

type ShotLog struct {
	Munition          string         `json:"munition"`
	Cost              int            `json:"cost"`
	Target            domain.Coord   `json:"target"`
	Orientation       string         `json:"orientation,omitempty"`
	Shape             []domain.Coord `json:"shape"`
	Impacts           []domain.Coord `json:"impacts"`
	DomeBlocked       bool           `json:"dome_blocked"`
	DestroyedCamps    []CampLog      `json:"destroyed_camps"`
	AttackerDestroyed int            `json:"attacker_destroyed"`
	DefenderDestroyed int            `json:"defender_destroyed"`
}

type CampLog struct {
	ID       string       `json:"id"`
	PlayerID string       `json:"player_id"`
	Type     string       `json:"type"`
	Cell     domain.Coord `json:"cell"`
}

type OutcomeLog struct {
	State            string `json:"state"`
	WinnerID         string `json:"winner_id,omitempty"`
	Draw             bool   `json:"draw"`
	Reason           string `json:"reason,omitempty"`
	AwaitingPlayerID string `json:"awaiting_player_id,omitempty"`
}

// NewTurnLog flattens a resolved turn into its logged form.
func NewTurnLog(r *domain.TurnResult) TurnLog {
	out := TurnLog{
		Turn:     r.Turn,
		PlayerID: r.PlayerID,
		Action:   string(r.Action),
		AutoPass: r.AutoPass,
		Income: IncomeLog{
			Powder: r.Income.Powder,
			Camps:  append([]string{}, r.Income.Camps...),
		},
		Outcome: OutcomeLog{
			State:            string(r.Outcome.State),
			WinnerID:         r.Outcome.WinnerID,
			Draw:             r.Outcome.Draw,
			Reason:           r.Outcome.Reason,
			AwaitingPlayerID: r.Outcome.AwaitingPlayerID,
		},
	}
	if shot := r.Shot; shot != nil {
		sl := &ShotLog{
			Munition:          string(shot.Munition),
			Cost:              shot.Cost,
			Target:            shot.Target,
			Orientation:       string(shot.Orientation),
			Shape:             append([]domain.Coord{}, shot.Shape...),
			Impacts:           append([]domain.Coord{}, shot.Impacts...),
			DomeBlocked:       shot.DomeBlocked,
			DestroyedCamps:    []CampLog{},
			AttackerDestroyed: shot.AttackerDestroyed,
			DefenderDestroyed: shot.DefenderDestroyed,
		}
		for _, c := range shot.DestroyedCamps {
			sl.DestroyedCamps = append(sl.DestroyedCamps, CampLog{
				ID:       c.ID,
				PlayerID: c.PlayerID,
				Type:     string(c.Type),
				Cell:     c.Cell,
			})
		}
		out.Shot = sl
	}
	return out
}

func encodeTurnLog(l TurnLog) ([]byte, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal turn log: %w", err)
	}
	return data, nil
}
