package game

// Contents describes what occupies a board position.
// NotInMap is the zero value so a fresh grid is entirely off the map.
type Contents uint8

const (
	NotInMap Contents = iota // not part of the board at all
	Blocked                  // on the board but decorated, never playable
	Playable                 // can hold power
)

func (c Contents) String() string {
	switch c {
	case NotInMap:
		return "NotInMap"
	case Blocked:
		return "Blocked"
	case Playable:
		return "Playable"
	}
	return "Unknown"
}

// Index is a flat board position, row*Width + col.
type Index int

// Invalid marks a position off the board.
const Invalid Index = -1

// Valid reports whether i addresses a real cell.
func (i Index) Valid() bool {
	return i >= 0 && i < Cells
}

// Row returns the row of i. Only meaningful for valid indices.
func (i Index) Row() int { return int(i) / Width }

// Col returns the column of i. Only meaningful for valid indices.
func (i Index) Col() int { return int(i) % Width }

// Cell is one board position.
//
// Owner 0 means unowned, otherwise it is the seat number plus one.
// An unowned cell always has zero power, and only Playable cells
// may be owned.
type Cell struct {
	Contents Contents
	Owner    uint8
	Power    int
	Index    Index
}

// Empty reports whether the cell can receive a split.
func (c Cell) Empty() bool {
	return c.Contents == Playable && c.Power == 0
}
