package domain

import (
	"errors"
	"testing"
)

// loseCamps destroys the cells under p1's C1 and C2 camps.
func loseCamps(g *Game) {
	g.Board.Cell(Coord{X: 0, Y: 0}).Destroyed = true
	g.Board.Cell(Coord{X: 1, Y: 0}).Destroyed = true
}

// wreckRows destroys every cell of side's half in the given rows.
func wreckRows(g *Game, side Side, rows ...int) {
	for i := range g.Board.Cells {
		cell := &g.Board.Cells[i]
		for _, y := range rows {
			if cell.Coord.Y == y && side.Owns(cell.Coord) {
				cell.Destroyed = true
			}
		}
	}
}

func TestSupplyEligibility(t *testing.T) {
	tests := []struct {
		name  string
		setup func(g *Game)
		want  error
	}{
		{name: "no hardship", want: ErrSupplyIneligible},
		{name: "lost two camps", setup: loseCamps},
		{
			name: "deficit of eight",
			setup: func(g *Game) {
				for y := 0; y < 8; y++ {
					g.Board.Cell(Coord{X: 7, Y: y}).Destroyed = true
				}
			},
		},
		{
			name: "deficit of seven",
			setup: func(g *Game) {
				for y := 0; y < 7; y++ {
					g.Board.Cell(Coord{X: 7, Y: y}).Destroyed = true
				}
			},
			want: ErrSupplyIneligible,
		},
		{
			name:  "cooldown",
			setup: func(g *Game) { loseCamps(g); g.Player("p1").SupplyCooldown = 1 },
			want:  ErrSupplyIneligible,
		},
		{
			name:  "uses exhausted",
			setup: func(g *Game) { loseCamps(g); g.Player("p1").SupplyUses = 3 },
			want:  ErrSupplyIneligible,
		},
		{
			name:  "finished match",
			setup: func(g *Game) { loseCamps(g); g.Match.Phase = PhaseFinished },
			want:  ErrMatchNotInPlay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, g := newPlayingGame(t, nil)
			if tt.setup != nil {
				tt.setup(g)
			}
			err := e.SupplyEligibility(g, "p1")
			if tt.want == nil && err != nil {
				t.Fatalf("err = %v, want eligible", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSupplyFailureSetsCooldownOnly(t *testing.T) {
	e, g := newPlayingGame(t, nil)
	loseCamps(g)

	res, err := e.RequestSupply(g, SupplyRequest{PlayerID: "p1", ForceSuccess: boolPtr(false)})
	if err != nil {
		t.Fatalf("supply error: %v", err)
	}
	p1 := g.Player("p1")
	if res.Success || res.Effect != "" {
		t.Fatalf("result = %+v, want failure", res)
	}
	if p1.SupplyCooldown != 3 || p1.SupplyUses != 0 || p1.SupplyUsesLeft != 3 {
		t.Fatalf("player = %+v, want cooldown 3 and no use consumed", p1)
	}
}

func TestSupplyBoost(t *testing.T) {
	e, g := newPlayingGame(t, nil)
	loseCamps(g)

	res, err := e.RequestSupply(g, SupplyRequest{PlayerID: "p1", ForceSuccess: boolPtr(true), ForceOutcome: SupplyBoost})
	if err != nil {
		t.Fatalf("supply error: %v", err)
	}
	p1 := g.Player("p1")
	if !res.Success || res.Effect != SupplyBoost || res.Boost != 4 {
		t.Fatalf("result = %+v, want boost of 4", res)
	}
	if p1.Powder != 4 || p1.SupplyUses != 1 || p1.SupplyUsesLeft != 2 || p1.SupplyCooldown != 3 {
		t.Fatalf("player = %+v", p1)
	}
}

func TestSupplyRollUsesRandomSource(t *testing.T) {
	rng := &scriptedRand{floats: []float64{0.35, 0.9}, ints: []int{0, 2}}
	e, g := newPlayingGame(t, rng)
	loseCamps(g)
	g.Camp("c13").Cell = Coord{X: 3, Y: 3}

	res, err := e.RequestSupply(g, SupplyRequest{
		PlayerID:   "p1",
		Preference: "SHIELD",
		Relocation: &Relocation{CampID: "c13", To: at(3, 4)},
	})
	if err != nil {
		t.Fatalf("supply error: %v", err)
	}
	if !res.Success || res.Effect != SupplyReloc {
		t.Fatalf("result = %+v, want successful random RELOC", res)
	}

	g.Player("p1").SupplyCooldown = 0
	res, err = e.RequestSupply(g, SupplyRequest{PlayerID: "p1", Preference: SupplyBoost})
	if err != nil {
		t.Fatalf("second supply error: %v", err)
	}
	if res.Success {
		t.Fatalf("roll of 0.9 should fail")
	}
}

func TestSupplyPreferenceWins(t *testing.T) {
	e, g := newPlayingGame(t, &scriptedRand{floats: []float64{0.1}, ints: []int{0}})
	loseCamps(g)

	res, err := e.RequestSupply(g, SupplyRequest{PlayerID: "p1", Preference: SupplyDome, DomeCenter: at(4, 4)})
	if err != nil {
		t.Fatalf("supply error: %v", err)
	}
	if res.Effect != SupplyDome {
		t.Fatalf("effect = %s, want %s", res.Effect, SupplyDome)
	}
	dome := g.Player("p1").Dome
	if !dome.Active || dome.Center != (Coord{X: 4, Y: 4}) || dome.ActivatedTurn != 1 {
		t.Fatalf("dome = %+v", dome)
	}
	if len(dome.Cells()) != 9 {
		t.Fatalf("dome cells = %d, want 9", len(dome.Cells()))
	}
}

func TestSupplyDomeValidation(t *testing.T) {
	tests := []struct {
		name   string
		center *Coord
		want   error
	}{
		{"missing", nil, ErrMissingTarget},
		{"off board", at(-1, 0), ErrInvalidCoordinate},
		{"enemy half", at(8, 4), ErrNotOwnHalf},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, g := newPlayingGame(t, nil)
			loseCamps(g)
			_, err := e.RequestSupply(g, SupplyRequest{PlayerID: "p1", ForceSuccess: boolPtr(true), ForceOutcome: SupplyDome, DomeCenter: tt.center})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			p1 := g.Player("p1")
			if p1.SupplyCooldown != 0 || p1.SupplyUses != 0 || p1.Dome.Active {
				t.Fatalf("player changed on rejected supply: %+v", p1)
			}
		})
	}
}

func TestSupplyRelocation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(g *Game)
		reloc *Relocation
		want  error
	}{
		{name: "moves to adjacent cell", reloc: &Relocation{CampID: "c13", To: at(2, 1)}},
		{name: "missing request", reloc: nil, want: ErrMissingRelocation},
		{name: "unknown camp", reloc: &Relocation{CampID: "nope", To: at(2, 1)}, want: ErrCampNotFound},
		{name: "rival camp", reloc: &Relocation{CampID: "c23", To: at(9, 8)}, want: ErrCampNotOwned},
		{name: "not adjacent", reloc: &Relocation{CampID: "c13", To: at(2, 2)}, want: ErrRelocNotAdjacent},
		{name: "diagonal", reloc: &Relocation{CampID: "c13", To: at(3, 1)}, want: ErrRelocNotAdjacent},
		{name: "enemy half", reloc: &Relocation{CampID: "c13", To: at(6, 0)}, want: ErrNotOwnHalf},
		{
			name:  "destroyed destination",
			setup: func(g *Game) { g.Board.Cell(Coord{X: 2, Y: 1}).Destroyed = true },
			reloc: &Relocation{CampID: "c13", To: at(2, 1)},
			want:  ErrCellDestroyed,
		},
		{
			name: "occupied destination",
			setup: func(g *Game) {
				// c12 moves off its wrecked cell, so the rival half deficit keeps p1 eligible.
				wreckRows(g, SideRight, 0, 1)
				g.Camp("c12").Cell = Coord{X: 2, Y: 1}
			},
			reloc: &Relocation{CampID: "c13", To: at(2, 1)},
			want:  ErrCellOccupied,
		},
		{
			name:  "relocated on previous turn",
			setup: func(g *Game) { g.Match.Turn = 5; g.Camp("c13").LastRelocTurn = 4 },
			reloc: &Relocation{CampID: "c13", To: at(2, 1)},
			want:  ErrRelocCooldown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, g := newPlayingGame(t, nil)
			loseCamps(g)
			if tt.setup != nil {
				tt.setup(g)
			}
			res, err := e.RequestSupply(g, SupplyRequest{PlayerID: "p1", ForceSuccess: boolPtr(true), ForceOutcome: SupplyReloc, Relocation: tt.reloc})
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Fatalf("err = %v, want %v", err, tt.want)
				}
				return
			}
			if err != nil {
				t.Fatalf("supply error: %v", err)
			}
			camp := g.Camp("c13")
			if camp.Cell != (Coord{X: 2, Y: 1}) || camp.LastRelocTurn != g.Match.Turn {
				t.Fatalf("camp = %+v", camp)
			}
			if res.From != (Coord{X: 2, Y: 0}) || res.Camp == nil || res.Camp.Cell != camp.Cell {
				t.Fatalf("result = %+v", res)
			}
		})
	}
}

func TestSupplyRelocationTwoTurnsLater(t *testing.T) {
	e, g := newPlayingGame(t, nil)
	loseCamps(g)
	g.Match.Turn = 5
	g.Camp("c13").LastRelocTurn = 3

	if _, err := e.RequestSupply(g, SupplyRequest{PlayerID: "p1", ForceSuccess: boolPtr(true), ForceOutcome: SupplyReloc, Relocation: &Relocation{CampID: "c13", To: at(2, 1)}}); err != nil {
		t.Fatalf("supply error: %v", err)
	}
}

func TestSupplyRejectsUnknownForcedOutcome(t *testing.T) {
	e, g := newPlayingGame(t, nil)
	loseCamps(g)

	_, err := e.RequestSupply(g, SupplyRequest{PlayerID: "p1", ForceSuccess: boolPtr(true), ForceOutcome: "NUKE"})
	if !errors.Is(err, ErrInvalidSupply) {
		t.Fatalf("err = %v, want %v", err, ErrInvalidSupply)
	}
}
