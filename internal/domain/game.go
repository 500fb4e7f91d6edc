package domain

import (
	"math/rand"
	"time"
)

// Engine applies the game rules to a loaded Game. It holds no match state.
type Engine struct {
	rules Rules
	rng   Random
}

// NewEngine constructs an Engine with the provided rules and rng or a time-seeded default.
func NewEngine(rules Rules, rng Random) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rules: rules, rng: rng}
}

// Seat is one participant handed to NewGame, in slot order.
type Seat struct {
	PlayerID string
	UserID   string
}

// NewGameParams carries the identifiers for a freshly created match.
type NewGameParams struct {
	MatchID string
	RoomID  string
	BoardID string
	Seats   []Seat
	Now     time.Time
}

// NewGame builds a deployment-phase match from exactly two seats. The first seat plays LEFT.
// The initiator is drawn uniformly at random.
func (e *Engine) NewGame(params NewGameParams) (*Game, error) {
	if len(params.Seats) != 2 {
		return nil, ErrRoomPlayerCount
	}
	sides := []Side{SideLeft, SideRight}
	players := make([]*Player, 0, 2)
	for i, seat := range params.Seats {
		players = append(players, &Player{
			ID:             seat.PlayerID,
			MatchID:        params.MatchID,
			UserID:         seat.UserID,
			Side:           sides[i],
			SupplyUsesLeft: e.rules.SupplyMaxUses,
		})
	}
	match := &Match{
		ID:          params.MatchID,
		RoomID:      params.RoomID,
		Phase:       PhaseDeployment,
		InitiatorID: players[e.rng.Intn(len(players))].ID,
		CreatedAt:   params.Now,
		UpdatedAt:   params.Now,
	}
	return &Game{
		Match:   match,
		Board:   NewBoard(params.BoardID),
		Players: players,
	}, nil
}
