package domain

// Board geometry. Columns [0, HalfWidth) belong to LEFT, the rest to RIGHT.
const (
	BoardWidth  = 12
	BoardHeight = 10
	HalfWidth   = BoardWidth / 2
	HalfCells   = HalfWidth * BoardHeight
)

// Coord addresses a cell on the board.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Valid reports whether c lies on the board.
func (c Coord) Valid() bool {
	return c.X >= 0 && c.X < BoardWidth && c.Y >= 0 && c.Y < BoardHeight
}

// Adjacent reports whether o is an orthogonal neighbour of c.
func (c Coord) Adjacent(o Coord) bool {
	return abs(c.X-o.X)+abs(c.Y-o.Y) == 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Side is the half of the board a player owns.
type Side string

const (
	SideLeft  Side = "LEFT"
	SideRight Side = "RIGHT"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// Owns reports whether c is on this side's own half.
func (s Side) Owns(c Coord) bool {
	if !c.Valid() {
		return false
	}
	if s == SideLeft {
		return c.X < HalfWidth
	}
	return c.X >= HalfWidth
}

// Targets reports whether c is on this side's enemy half.
func (s Side) Targets(c Coord) bool {
	return s.Opposite().Owns(c)
}

// Cell is one board square.
type Cell struct {
	Coord
	Destroyed bool
}

// Board is the fixed 12x10 grid of a match. Cells are stored column-major.
type Board struct {
	ID    string
	Cells []Cell
}

// NewBoard creates a board with one intact cell per coordinate.
func NewBoard(id string) *Board {
	cells := make([]Cell, 0, BoardWidth*BoardHeight)
	for x := 0; x < BoardWidth; x++ {
		for y := 0; y < BoardHeight; y++ {
			cells = append(cells, Cell{Coord: Coord{X: x, Y: y}})
		}
	}
	return &Board{ID: id, Cells: cells}
}

// Cell returns the cell at c or nil when c is off the board.
func (b *Board) Cell(c Coord) *Cell {
	if !c.Valid() {
		return nil
	}
	idx := c.X*BoardHeight + c.Y
	if idx >= len(b.Cells) {
		return nil
	}
	return &b.Cells[idx]
}

// Destroyed reports whether the cell at c has been hit.
func (b *Board) Destroyed(c Coord) bool {
	cell := b.Cell(c)
	return cell != nil && cell.Destroyed
}

// DestroyedIn counts destroyed cells on side's own half.
func (b *Board) DestroyedIn(side Side) int {
	count := 0
	for _, cell := range b.Cells {
		if cell.Destroyed && side.Owns(cell.Coord) {
			count++
		}
	}
	return count
}

// HalfDestroyed reports whether every cell of side's half is destroyed.
func (b *Board) HalfDestroyed(side Side) bool {
	return b.DestroyedIn(side) >= HalfCells
}
