package domain

import "time"

// Phase represents the lifecycle stage of a match.
type Phase string

const (
	// PhaseDeployment is the setup stage where players place camps.
	PhaseDeployment Phase = "DEPLOYMENT"
	// PhaseInProgress is the firing stage.
	PhaseInProgress Phase = "IN_PROGRESS"
	// PhaseFinished is terminal.
	PhaseFinished Phase = "FINISHED"
)

// Subphase refines PhaseInProgress. Empty outside of play.
type Subphase string

const (
	SubphaseNone     Subphase = ""
	SubphaseNormal   Subphase = "NORMAL"
	SubphaseResponse Subphase = "RESPONSE"
)

// Finish reasons recorded on a finished match.
const (
	FinishReasonDestruction = "destruction"
	FinishReasonResponse    = "response"
	FinishReasonInactivity  = "inactivity"
)

// Match is the authoritative header of one game.
type Match struct {
	ID     string
	RoomID string
	Phase  Phase
	// Subphase is NORMAL or RESPONSE while in progress.
	Subphase Subphase
	// Turn starts at 0 and becomes 1 when deployment completes.
	Turn              int
	InitiatorID       string
	ActivePlayerID    string
	PendingResponseID string
	ResponseActive    bool
	WinnerID          string
	Draw              bool
	FinishReason      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Dome is a single-use 3x3 shield.
type Dome struct {
	Active        bool
	Center        Coord
	ActivatedTurn int
}

// DomeRadius is the Chebyshev radius of the dome around its center.
const DomeRadius = 1

// Cells returns the on-board cells the dome covers, or nil when inactive.
func (d Dome) Cells() []Coord {
	if !d.Active {
		return nil
	}
	var cells []Coord
	for dx := -DomeRadius; dx <= DomeRadius; dx++ {
		for dy := -DomeRadius; dy <= DomeRadius; dy++ {
			c := Coord{X: d.Center.X + dx, Y: d.Center.Y + dy}
			if c.Valid() {
				cells = append(cells, c)
			}
		}
	}
	return cells
}

// Intercepts reports whether any shape cell falls under the active dome.
func (d Dome) Intercepts(shape []Coord) bool {
	for _, covered := range d.Cells() {
		for _, c := range shape {
			if c == covered {
				return true
			}
		}
	}
	return false
}

// Player is one side of a match. Turn bookkeeping fields use 0 for "never".
type Player struct {
	ID                string
	MatchID           string
	UserID            string
	Side              Side
	Powder            int
	SupplyCooldown    int
	SupplyUses        int
	SupplyUsesLeft    int
	Inactivity        int
	DestroyedReported int // destroyed cells on the enemy half
	DestroyedOwn      int // destroyed cells on the own half
	Dome              Dome
	LastIncomeTurn    int
	LastPlayedTurn    int
}

// resetStats restores the starting values used when play begins.
func (p *Player) resetStats(rules Rules) {
	p.Powder = 0
	p.SupplyCooldown = 0
	p.SupplyUses = 0
	p.SupplyUsesLeft = rules.SupplyMaxUses
	p.Inactivity = 0
	p.DestroyedReported = 0
	p.DestroyedOwn = 0
	p.Dome = Dome{}
	p.LastIncomeTurn = 0
	p.LastPlayedTurn = 0
}

// Game is the aggregate loaded for one operation: a match, its board, both players and their camps.
type Game struct {
	Match   *Match
	Board   *Board
	Players []*Player
	Camps   []*Camp
}

// Player returns the match player with id, or nil.
func (g *Game) Player(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByUser returns the match player controlled by userID, or nil.
func (g *Game) PlayerByUser(userID string) *Player {
	for _, p := range g.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// Opponent returns the player that is not id, or nil.
func (g *Game) Opponent(id string) *Player {
	for _, p := range g.Players {
		if p.ID != id {
			return p
		}
	}
	return nil
}

// Camp returns the camp with id, or nil.
func (g *Game) Camp(id string) *Camp {
	for _, c := range g.Camps {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// CampAt returns the camp occupying c, or nil.
func (g *Game) CampAt(c Coord) *Camp {
	for _, camp := range g.Camps {
		if camp.Cell == c {
			return camp
		}
	}
	return nil
}

// CampsOf returns the camps owned by playerID.
func (g *Game) CampsOf(playerID string) []*Camp {
	var out []*Camp
	for _, c := range g.Camps {
		if c.PlayerID == playerID {
			out = append(out, c)
		}
	}
	return out
}

// AliveCamps returns playerID's camps standing on intact cells.
func (g *Game) AliveCamps(playerID string) []*Camp {
	var out []*Camp
	for _, c := range g.CampsOf(playerID) {
		if !g.Board.Destroyed(c.Cell) {
			out = append(out, c)
		}
	}
	return out
}

func (g *Game) removeCamp(id string) {
	for i, c := range g.Camps {
		if c.ID == id {
			g.Camps = append(g.Camps[:i], g.Camps[i+1:]...)
			return
		}
	}
}
