package domain

// CampType is one of the three powder-producing camp sizes.
type CampType string

const (
	CampC1 CampType = "C1"
	CampC2 CampType = "C2"
	CampC3 CampType = "C3"
)

// CampsPerPlayer is the number of camps each player deploys.
const CampsPerPlayer = 3

var campYield = map[CampType]int{
	CampC1: 1,
	CampC2: 2,
	CampC3: 3,
}

// Valid reports whether t is a known camp type.
func (t CampType) Valid() bool {
	_, ok := campYield[t]
	return ok
}

// Yield is the powder a surviving camp of type t produces each turn.
func (t CampType) Yield() int {
	return campYield[t]
}

// Camp is a player's structure on one cell of their half.
type Camp struct {
	ID       string
	PlayerID string
	Type     CampType
	Cell     Coord
	// LastRelocTurn is the turn the camp was last relocated, 0 when never.
	LastRelocTurn int
}
