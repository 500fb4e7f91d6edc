package domain

// MunitionKind names a shot template.
type MunitionKind string

const (
	MunitionPoint    MunitionKind = "POINT"
	MunitionL        MunitionKind = "L"
	MunitionSquare   MunitionKind = "SQUARE"
	MunitionLine     MunitionKind = "LINE"
	MunitionPiercing MunitionKind = "PIERCING"
)

// Orientation is the direction a shaped munition extends in.
type Orientation string

const (
	OrientationN  Orientation = "N"
	OrientationS  Orientation = "S"
	OrientationE  Orientation = "E"
	OrientationW  Orientation = "W"
	OrientationNE Orientation = "NE"
	OrientationNW Orientation = "NW"
	OrientationSE Orientation = "SE"
	OrientationSW Orientation = "SW"
)

// Munition describes the cost and footprint of a munition kind.
type Munition struct {
	Kind         MunitionKind
	Cost         int
	Orientations []Orientation // nil when any orientation is accepted
	pattern      func(target Coord, o Orientation) []Coord
}

var (
	cardinal = []Orientation{OrientationN, OrientationS, OrientationE, OrientationW}
	diagonal = []Orientation{OrientationNE, OrientationNW, OrientationSE, OrientationSW}
)

var munitions = map[MunitionKind]Munition{
	MunitionPoint: {
		Kind: MunitionPoint,
		Cost: 5,
		pattern: func(t Coord, _ Orientation) []Coord {
			return []Coord{t}
		},
	},
	MunitionL: {
		Kind:         MunitionL,
		Cost:         10,
		Orientations: diagonal,
		pattern: func(t Coord, o Orientation) []Coord {
			dx, dy := delta(o)
			return []Coord{t, {X: t.X + dx, Y: t.Y}, {X: t.X, Y: t.Y + dy}}
		},
	},
	MunitionSquare: {
		Kind: MunitionSquare,
		Cost: 12,
		pattern: func(t Coord, _ Orientation) []Coord {
			return []Coord{t, {X: t.X + 1, Y: t.Y}, {X: t.X, Y: t.Y + 1}, {X: t.X + 1, Y: t.Y + 1}}
		},
	},
	MunitionLine: {
		Kind:         MunitionLine,
		Cost:         9,
		Orientations: cardinal,
		pattern: func(t Coord, o Orientation) []Coord {
			return ray(t, o, 4)
		},
	},
	MunitionPiercing: {
		Kind:         MunitionPiercing,
		Cost:         20,
		Orientations: cardinal,
		pattern: func(t Coord, o Orientation) []Coord {
			return ray(t, o, 6)
		},
	},
}

// delta returns the unit step for an orientation. N decreases y.
func delta(o Orientation) (dx, dy int) {
	switch o {
	case OrientationN:
		return 0, -1
	case OrientationS:
		return 0, 1
	case OrientationE:
		return 1, 0
	case OrientationW:
		return -1, 0
	case OrientationNE:
		return 1, -1
	case OrientationNW:
		return -1, -1
	case OrientationSE:
		return 1, 1
	case OrientationSW:
		return -1, 1
	}
	return 0, 0
}

func ray(t Coord, o Orientation, length int) []Coord {
	dx, dy := delta(o)
	cells := make([]Coord, 0, length)
	for i := 0; i < length; i++ {
		cells = append(cells, Coord{X: t.X + dx*i, Y: t.Y + dy*i})
	}
	return cells
}

// LookupMunition returns the catalog entry for kind.
func LookupMunition(kind MunitionKind) (Munition, bool) {
	m, ok := munitions[kind]
	return m, ok
}

// AcceptsOrientation reports whether o is allowed for m.
func (m Munition) AcceptsOrientation(o Orientation) bool {
	if m.Orientations == nil {
		return true
	}
	for _, allowed := range m.Orientations {
		if allowed == o {
			return true
		}
	}
	return false
}

// Shape computes the cells hit by kind fired at target, dropping off-board cells.
// The target itself is always the first cell when it is on the board.
func Shape(kind MunitionKind, target Coord, o Orientation) ([]Coord, error) {
	m, ok := munitions[kind]
	if !ok {
		return nil, ErrInvalidMunition
	}
	if !m.AcceptsOrientation(o) {
		return nil, ErrInvalidOrientation
	}
	raw := m.pattern(target, o)
	cells := raw[:0]
	for _, c := range raw {
		if c.Valid() {
			cells = append(cells, c)
		}
	}
	return cells, nil
}
