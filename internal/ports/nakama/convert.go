package nakama

import (
	"encoding/json"
	"strings"

	"castlebattle/internal/app"
	"castlebattle/internal/domain"
	"castlebattle/internal/ports"
)

type roomCreateRequest struct {
	Name   string `json:"name"`
	UserID string `json:"user_id,omitempty"`
}

type roomRequest struct {
	RoomID string `json:"room_id"`
	Role   string `json:"role,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

type roomListRequest struct {
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type matchRequest struct {
	MatchID string `json:"match_id"`
}

type matchCreateRequest struct {
	RoomID string `json:"room_id"`
}

type deployRequest struct {
	MatchID  string        `json:"match_id"`
	PlayerID string        `json:"player_id"`
	CampType string        `json:"camp_type"`
	Cell     *domain.Coord `json:"cell"`
}

type turnRequest struct {
	MatchID     string        `json:"match_id"`
	PlayerID    string        `json:"player_id"`
	Action      string        `json:"action"`
	Munition    string        `json:"munition,omitempty"`
	Target      *domain.Coord `json:"target,omitempty"`
	Orientation string        `json:"orientation,omitempty"`
	AutoPass    bool          `json:"auto_pass,omitempty"`
}

func (r turnRequest) toDomain() domain.TurnRequest {
	return domain.TurnRequest{
		PlayerID:    r.PlayerID,
		Action:      domain.Action(strings.ToUpper(r.Action)),
		Munition:    domain.MunitionKind(strings.ToUpper(r.Munition)),
		Target:      r.Target,
		Orientation: domain.Orientation(strings.ToUpper(r.Orientation)),
		AutoPass:    r.AutoPass,
	}
}

type relocationRequest struct {
	CampID string        `json:"camp_id"`
	To     *domain.Coord `json:"to"`
}

type supplyRequest struct {
	MatchID      string             `json:"match_id"`
	PlayerID     string             `json:"player_id"`
	Preference   string             `json:"preference,omitempty"`
	DomeCenter   *domain.Coord      `json:"dome_center,omitempty"`
	Relocation   *relocationRequest `json:"relocation,omitempty"`
	ForceSuccess *bool              `json:"force_success,omitempty"`
	ForceOutcome string             `json:"force_outcome,omitempty"`
}

// toDomain converts the payload. The force fields only survive for server-to-server calls.
func (r supplyRequest) toDomain(trusted bool) domain.SupplyRequest {
	out := domain.SupplyRequest{
		PlayerID:   r.PlayerID,
		Preference: domain.SupplyEffect(strings.ToUpper(r.Preference)),
		DomeCenter: r.DomeCenter,
	}
	if trusted {
		out.ForceSuccess = r.ForceSuccess
		out.ForceOutcome = domain.SupplyEffect(strings.ToUpper(r.ForceOutcome))
	}
	if r.Relocation != nil {
		out.Relocation = &domain.Relocation{CampID: r.Relocation.CampID, To: r.Relocation.To}
	}
	return out
}

type participantDTO struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	Slot     int    `json:"slot,omitempty"`
	JoinedAt int64  `json:"joined_at"`
}

type roomResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Status       string           `json:"status"`
	Participants []participantDTO `json:"participants"`
}

func newRoomResponse(v *app.RoomView) roomResponse {
	out := roomResponse{
		ID:           v.Room.ID,
		Name:         v.Room.Name,
		Status:       string(v.Room.Status),
		Participants: make([]participantDTO, 0, len(v.Participants)),
	}
	for _, p := range v.Participants {
		out.Participants = append(out.Participants, participantDTO{
			UserID:   p.UserID,
			Role:     string(p.Role),
			Slot:     p.Slot,
			JoinedAt: p.JoinedAt.UnixMilli(),
		})
	}
	return out
}

type roomSummaryDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Players   int    `json:"players"`
	CreatedAt int64  `json:"created_at"`
}

type roomListResponse struct {
	Rooms []roomSummaryDTO `json:"rooms"`
}

func newRoomListResponse(rooms []ports.RoomSummary) roomListResponse {
	out := roomListResponse{Rooms: make([]roomSummaryDTO, 0, len(rooms))}
	for _, r := range rooms {
		out.Rooms = append(out.Rooms, roomSummaryDTO{
			ID:        r.ID,
			Name:      r.Name,
			Status:    string(r.Status),
			Players:   r.Players,
			CreatedAt: r.CreatedAt.UnixMilli(),
		})
	}
	return out
}

// quickJoinResponse is the payload returned to clients asking for any open room.
type quickJoinResponse struct {
	Room  roomResponse `json:"room"`
	IsNew bool         `json:"is_new"`
}

type matchDTO struct {
	ID                string `json:"id"`
	RoomID            string `json:"room_id"`
	Phase             string `json:"phase"`
	Subphase          string `json:"subphase,omitempty"`
	Turn              int    `json:"turn"`
	InitiatorID       string `json:"initiator_id"`
	ActivePlayerID    string `json:"active_player_id,omitempty"`
	PendingResponseID string `json:"pending_response_id,omitempty"`
	ResponseActive    bool   `json:"response_active"`
	WinnerID          string `json:"winner_id,omitempty"`
	Draw              bool   `json:"draw"`
	FinishReason      string `json:"finish_reason,omitempty"`
	UpdatedAt         int64  `json:"updated_at"`
}

type domeDTO struct {
	Center        domain.Coord `json:"center"`
	ActivatedTurn int          `json:"activated_turn"`
}

type playerDTO struct {
	ID                string   `json:"id"`
	UserID            string   `json:"user_id"`
	Side              string   `json:"side"`
	Powder            int      `json:"powder"`
	SupplyCooldown    int      `json:"supply_cooldown"`
	SupplyUses        int      `json:"supply_uses"`
	SupplyUsesLeft    int      `json:"supply_uses_left"`
	Inactivity        int      `json:"inactivity"`
	DestroyedReported int      `json:"destroyed_reported"`
	DestroyedOwn      int      `json:"destroyed_own"`
	Dome              *domeDTO `json:"dome,omitempty"`
}

type cellDTO struct {
	X         int  `json:"x"`
	Y         int  `json:"y"`
	Destroyed bool `json:"destroyed"`
}

type boardDTO struct {
	ID     string    `json:"id"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Cells  []cellDTO `json:"cells"`
}

type campDTO struct {
	ID            string       `json:"id"`
	PlayerID      string       `json:"player_id"`
	Type          string       `json:"type"`
	Cell          domain.Coord `json:"cell"`
	LastRelocTurn int          `json:"last_reloc_turn,omitempty"`
}

type matchStateResponse struct {
	Match   matchDTO    `json:"match"`
	Players []playerDTO `json:"players"`
	Board   boardDTO    `json:"board"`
	Camps   []campDTO   `json:"camps"`
}

func newMatchDTO(m *domain.Match) matchDTO {
	return matchDTO{
		ID:                m.ID,
		RoomID:            m.RoomID,
		Phase:             string(m.Phase),
		Subphase:          string(m.Subphase),
		Turn:              m.Turn,
		InitiatorID:       m.InitiatorID,
		ActivePlayerID:    m.ActivePlayerID,
		PendingResponseID: m.PendingResponseID,
		ResponseActive:    m.ResponseActive,
		WinnerID:          m.WinnerID,
		Draw:              m.Draw,
		FinishReason:      m.FinishReason,
		UpdatedAt:         m.UpdatedAt.UnixMilli(),
	}
}

func newPlayerDTO(p *domain.Player, reveal bool) playerDTO {
	out := playerDTO{
		ID:                p.ID,
		UserID:            p.UserID,
		Side:              string(p.Side),
		Powder:            p.Powder,
		SupplyCooldown:    p.SupplyCooldown,
		SupplyUses:        p.SupplyUses,
		SupplyUsesLeft:    p.SupplyUsesLeft,
		Inactivity:        p.Inactivity,
		DestroyedReported: p.DestroyedReported,
		DestroyedOwn:      p.DestroyedOwn,
	}
	if reveal && p.Dome.Active {
		out.Dome = &domeDTO{Center: p.Dome.Center, ActivatedTurn: p.Dome.ActivatedTurn}
	}
	return out
}

func newCampDTO(c *domain.Camp) campDTO {
	return campDTO{
		ID:            c.ID,
		PlayerID:      c.PlayerID,
		Type:          string(c.Type),
		Cell:          c.Cell,
		LastRelocTurn: c.LastRelocTurn,
	}
}

// newMatchState renders g for viewerUserID. While the match is running a seated viewer
// does not see the rival's camps or dome. An empty viewer sees everything.
func newMatchState(g *domain.Game, viewerUserID string) matchStateResponse {
	viewer := g.PlayerByUser(viewerUserID)
	hidden := func(playerID string) bool {
		return viewer != nil && playerID != viewer.ID && g.Match.Phase != domain.PhaseFinished
	}

	out := matchStateResponse{
		Match:   newMatchDTO(g.Match),
		Players: make([]playerDTO, 0, len(g.Players)),
		Board: boardDTO{
			ID:     g.Board.ID,
			Width:  domain.BoardWidth,
			Height: domain.BoardHeight,
			Cells:  make([]cellDTO, 0, len(g.Board.Cells)),
		},
		Camps: make([]campDTO, 0, len(g.Camps)),
	}
	for _, p := range g.Players {
		out.Players = append(out.Players, newPlayerDTO(p, !hidden(p.ID)))
	}
	for _, c := range g.Board.Cells {
		out.Board.Cells = append(out.Board.Cells, cellDTO{X: c.X, Y: c.Y, Destroyed: c.Destroyed})
	}
	for _, c := range g.Camps {
		if !hidden(c.PlayerID) {
			out.Camps = append(out.Camps, newCampDTO(c))
		}
	}
	return out
}

type deployResponse struct {
	Camp    campDTO  `json:"camp"`
	Started bool     `json:"started"`
	Match   matchDTO `json:"match"`
}

type turnResponse struct {
	TurnID string      `json:"turn_id"`
	Turn   app.TurnLog `json:"turn"`
	Match  matchDTO    `json:"match"`
	Player playerDTO   `json:"player"`
}

type supplyResponse struct {
	Result app.SupplyResolvedPayload `json:"result"`
	Player playerDTO                 `json:"player"`
}

type munitionDTO struct {
	Kind        string       `json:"kind"`
	Cost        int          `json:"cost"`
	Target      domain.Coord `json:"target"`
	Orientation string       `json:"orientation,omitempty"`
}

type turnRecordDTO struct {
	ID        string          `json:"id"`
	Number    int             `json:"number"`
	PlayerID  string          `json:"player_id"`
	Action    string          `json:"action"`
	AutoPass  bool            `json:"auto_pass"`
	Result    json.RawMessage `json:"result"`
	Munition  *munitionDTO    `json:"munition,omitempty"`
	CreatedAt int64           `json:"created_at"`
}

type turnsResponse struct {
	MatchID string          `json:"match_id"`
	Turns   []turnRecordDTO `json:"turns"`
}

func newTurnsResponse(matchID string, records []ports.TurnRecord) turnsResponse {
	out := turnsResponse{MatchID: matchID, Turns: make([]turnRecordDTO, 0, len(records))}
	for _, r := range records {
		dto := turnRecordDTO{
			ID:        r.ID,
			Number:    r.Number,
			PlayerID:  r.PlayerID,
			Action:    string(r.Action),
			AutoPass:  r.AutoPass,
			Result:    json.RawMessage(r.Result),
			CreatedAt: r.CreatedAt.UnixMilli(),
		}
		if m := r.Munition; m != nil {
			dto.Munition = &munitionDTO{
				Kind:        string(m.Kind),
				Cost:        m.Cost,
				Target:      m.Target,
				Orientation: string(m.Orientation),
			}
		}
		out.Turns = append(out.Turns, dto)
	}
	return out
}
