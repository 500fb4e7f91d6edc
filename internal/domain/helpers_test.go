package domain

import (
	"testing"
	"time"
)

// scriptedRand replays fixed values; it returns zero once a script runs out.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func newTestGame(t *testing.T, e *Engine) *Game {
	t.Helper()
	g, err := e.NewGame(NewGameParams{
		MatchID: "m1",
		RoomID:  "r1",
		BoardID: "b1",
		Seats:   []Seat{{PlayerID: "p1", UserID: "u1"}, {PlayerID: "p2", UserID: "u2"}},
		Now:     time.Unix(0, 0),
	})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

// newPlayingGame returns a game where p1 (LEFT) is the initiator and both players have deployed.
// p1 camps: C1 (0,0), C2 (1,0), C3 (2,0). p2 camps: C1 (11,9), C2 (10,9), C3 (9,9).
func newPlayingGame(t *testing.T, rng Random) (*Engine, *Game) {
	t.Helper()
	if rng == nil {
		rng = &scriptedRand{}
	}
	e := NewEngine(DefaultRules(), rng)
	g := newTestGame(t, e)
	g.Match.InitiatorID = "p1"

	placements := []struct {
		id     string
		player string
		kind   CampType
		at     Coord
	}{
		{"c11", "p1", CampC1, Coord{X: 0, Y: 0}},
		{"c12", "p1", CampC2, Coord{X: 1, Y: 0}},
		{"c13", "p1", CampC3, Coord{X: 2, Y: 0}},
		{"c21", "p2", CampC1, Coord{X: 11, Y: 9}},
		{"c22", "p2", CampC2, Coord{X: 10, Y: 9}},
		{"c23", "p2", CampC3, Coord{X: 9, Y: 9}},
	}
	for _, p := range placements {
		at := p.at
		if _, _, err := e.DeployCamp(g, p.id, p.player, p.kind, &at); err != nil {
			t.Fatalf("deploy %s: %v", p.id, err)
		}
	}
	if g.Match.Phase != PhaseInProgress {
		t.Fatalf("phase = %s, want %s", g.Match.Phase, PhaseInProgress)
	}
	return e, g
}

// destroyHalf marks every cell of side destroyed except the listed survivors.
func destroyHalf(g *Game, side Side, survivors ...Coord) {
	for i := range g.Board.Cells {
		cell := &g.Board.Cells[i]
		if !side.Owns(cell.Coord) {
			continue
		}
		keep := false
		for _, s := range survivors {
			if s == cell.Coord {
				keep = true
			}
		}
		cell.Destroyed = !keep
	}
}

func at(x, y int) *Coord {
	return &Coord{X: x, Y: y}
}

func boolPtr(v bool) *bool {
	return &v
}
