package app

import "castlebattle/internal/domain"

// EventKind identifies emitted match events for Nakama dispatch.
type EventKind string

const (
	EventMatchCreated   EventKind = "match_created"
	EventCampDeployed   EventKind = "camp_deployed"
	EventMatchStarted   EventKind = "match_started"
	EventTurnResolved   EventKind = "turn_resolved"
	EventResponseOpened EventKind = "response_opened"
	EventMatchFinished  EventKind = "match_finished"
	EventSupplyResolved EventKind = "supply_resolved"
)

// Event is an app event with targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs
}

type SeatPayload struct {
	PlayerID string      `json:"player_id"`
	UserID   string      `json:"user_id"`
	Side     domain.Side `json:"side"`
}

type MatchCreatedPayload struct {
	MatchID     string        `json:"match_id"`
	RoomID      string        `json:"room_id"`
	InitiatorID string        `json:"initiator_id"`
	Players     []SeatPayload `json:"players"`
}

// CampDeployedPayload is only sent to the owner; placements stay hidden from the rival.
type CampDeployedPayload struct {
	MatchID  string          `json:"match_id"`
	PlayerID string          `json:"player_id"`
	CampID   string          `json:"camp_id"`
	Type     domain.CampType `json:"type"`
	Cell     domain.Coord    `json:"cell"`
}

type MatchStartedPayload struct {
	MatchID        string `json:"match_id"`
	Turn           int    `json:"turn"`
	InitiatorID    string `json:"initiator_id"`
	ActivePlayerID string `json:"active_player_id"`
}

type TurnResolvedPayload struct {
	MatchID      string  `json:"match_id"`
	TurnID       string  `json:"turn_id"`
	NextPlayerID string  `json:"next_player_id,omitempty"`
	Turn         TurnLog `json:"turn"`
}

type ResponseOpenedPayload struct {
	MatchID     string `json:"match_id"`
	InitiatorID string `json:"initiator_id"`
	ResponderID string `json:"responder_id"`
}

type MatchFinishedPayload struct {
	MatchID  string `json:"match_id"`
	WinnerID string `json:"winner_id,omitempty"`
	Draw     bool   `json:"draw"`
	Reason   string `json:"reason"`
}

// SupplyResolvedPayload is only sent to the requester.
type SupplyResolvedPayload struct {
	MatchID    string              `json:"match_id"`
	PlayerID   string              `json:"player_id"`
	Turn       int                 `json:"turn"`
	Success    bool                `json:"success"`
	Effect     domain.SupplyEffect `json:"effect,omitempty"`
	Boost      int                 `json:"boost,omitempty"`
	DomeCenter *domain.Coord       `json:"dome_center,omitempty"`
	CampID     string              `json:"camp_id,omitempty"`
	From       *domain.Coord       `json:"from,omitempty"`
	To         *domain.Coord       `json:"to,omitempty"`
}

func matchFinishedEvent(g *domain.Game) Event {
	m := g.Match
	return Event{
		Kind: EventMatchFinished,
		Payload: MatchFinishedPayload{
			MatchID:  m.ID,
			WinnerID: m.WinnerID,
			Draw:     m.Draw,
			Reason:   m.FinishReason,
		},
		Recipients: userIDs(g),
	}
}
