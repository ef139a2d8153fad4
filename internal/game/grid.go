package game

import (
	"fmt"
	"math"
)

// Board dimensions. The grid is always Width x Height.
const (
	Width  = 10
	Height = 10
	Cells  = Width * Height
)

// Direction is one of the six hex directions.
type Direction int

const (
	North Direction = iota
	NorthEast
	SouthEast
	South
	SouthWest
	NorthWest
)

// Directions lists every direction in enumeration order.
var Directions = [6]Direction{North, NorthEast, SouthEast, South, SouthWest, NorthWest}

// Opposite returns the direction pointing back the way d came.
func (d Direction) Opposite() Direction {
	return (d + 3) % 6
}

func (d Direction) String() string {
	switch d {
	case North:
		return "N"
	case NorthEast:
		return "NE"
	case SouthEast:
		return "SE"
	case South:
		return "S"
	case SouthWest:
		return "SW"
	case NorthWest:
		return "NW"
	}
	return "?"
}

// offset is a (row, col) step.
type offset struct{ dr, dc int }

// Odd columns sit half a cell south of even columns, so the neighbor
// offsets depend on column parity. Indexed by Direction.
var (
	evenColOffsets = [6]offset{
		North:     {+1, 0},
		NorthEast: {+1, +1},
		SouthEast: {0, +1},
		South:     {-1, 0},
		SouthWest: {0, -1},
		NorthWest: {+1, -1},
	}
	oddColOffsets = [6]offset{
		North:     {+1, 0},
		NorthEast: {0, +1},
		SouthEast: {-1, +1},
		South:     {-1, 0},
		SouthWest: {-1, -1},
		NorthWest: {0, -1},
	}
)

// HexGrid is a fixed 10x10 board stored as a flat array. It is a plain
// value: assigning a HexGrid copies every cell.
type HexGrid struct {
	cells [Cells]Cell
}

// NewGrid returns a grid with every cell NotInMap and indices filled in.
func NewGrid() HexGrid {
	var g HexGrid
	for i := range g.cells {
		g.cells[i].Index = Index(i)
	}
	return g
}

// MapIndex converts (row, col) to a flat index, or Invalid when either
// coordinate falls outside the board.
func MapIndex(row, col int) Index {
	if row < 0 || row >= Height || col < 0 || col >= Width {
		return Invalid
	}
	return Index(row*Width + col)
}

// MoveDir returns the neighbor of i in direction d, or Invalid.
func MoveDir(i Index, d Direction) Index {
	if !i.Valid() {
		return Invalid
	}
	row, col := i.Row(), i.Col()
	off := evenColOffsets[d]
	if col%2 == 1 {
		off = oddColOffsets[d]
	}
	return MapIndex(row+off.dr, col+off.dc)
}

// WorldPos returns the layout position of i's center with unit hex size.
// Columns are 1.5 apart, rows sqrt(3) apart, odd columns shifted by half
// a row. The board center sits near the origin.
func WorldPos(i Index) (x, z float64) {
	const sqrt3 = 1.7320508075688772
	row, col := i.Row(), i.Col()
	x = (float64(col) - 4.5) * 1.5
	z = (5 - float64(row)) * sqrt3
	if col%2 == 1 {
		z += sqrt3 / 2
	}
	return x, z
}

// distFromCenter is the length of WorldPos(i).
func distFromCenter(i Index) float64 {
	x, z := WorldPos(i)
	return math.Hypot(x, z)
}

// Cell returns the cell at i. Invalid indices yield a NotInMap cell
// carrying the Invalid index.
func (g *HexGrid) Cell(i Index) Cell {
	if !i.Valid() {
		return Cell{Index: Invalid}
	}
	return g.cells[i]
}

// Set replaces the cell at i. The stored Index is always i.
func (g *HexGrid) Set(i Index, c Cell) error {
	if !i.Valid() {
		return fmt.Errorf("%w: set %d", ErrOutOfBounds, i)
	}
	c.Index = i
	g.cells[i] = c
	return nil
}

// SetContents changes only the contents of i, clearing ownership when
// the cell stops being playable.
func (g *HexGrid) SetContents(i Index, c Contents) error {
	if !i.Valid() {
		return fmt.Errorf("%w: set contents %d", ErrOutOfBounds, i)
	}
	g.cells[i].Contents = c
	if c != Playable {
		g.cells[i].Owner = 0
		g.cells[i].Power = 0
	}
	return nil
}

// playable reports whether i is on the board and Playable.
func (g *HexGrid) playable(i Index) bool {
	return i.Valid() && g.cells[i].Contents == Playable
}

// open reports whether a split could land on i.
func (g *HexGrid) open(i Index) bool {
	return g.playable(i) && g.cells[i].Power == 0
}

// SearchDir walks from i in direction d while the next cell is an empty
// Playable cell and returns the last cell reached. It returns i itself
// when the first step is already obstructed.
func (g *HexGrid) SearchDir(i Index, d Direction) Index {
	cur := i
	for {
		next := MoveDir(cur, d)
		if !g.open(next) {
			return cur
		}
		cur = next
	}
}

// Neighbors returns the cells around i in direction order. With
// validOnly set, Invalid and non-Playable neighbors are dropped;
// otherwise all six results are returned, Invalid included.
func (g *HexGrid) Neighbors(i Index, validOnly bool) []Index {
	result := make([]Index, 0, 6)
	for _, d := range Directions {
		n := MoveDir(i, d)
		if validOnly && !g.playable(n) {
			continue
		}
		result = append(result, n)
	}
	return result
}

// EdgeSpaces returns the Playable cells touching the outside of the
// board: some neighbor is Invalid or NotInMap.
func (g *HexGrid) EdgeSpaces() []Index {
	var edges []Index
	for i := Index(0); i < Cells; i++ {
		if g.isEdge(i) {
			edges = append(edges, i)
		}
	}
	return edges
}

func (g *HexGrid) isEdge(i Index) bool {
	if !g.playable(i) {
		return false
	}
	for _, n := range g.Neighbors(i, false) {
		if !n.Valid() || g.cells[n].Contents == NotInMap {
			return true
		}
	}
	return false
}

// EdgeSpacesCorners returns the sharpest edge cells: those with at most
// t Playable neighbors, for the smallest t in 1..5 that matches anything.
func (g *HexGrid) EdgeSpacesCorners() []Index {
	edges := g.EdgeSpaces()
	counts := make([]int, len(edges))
	for k, i := range edges {
		counts[k] = len(g.Neighbors(i, true))
	}
	for t := 1; t <= 5; t++ {
		var corners []Index
		for k, i := range edges {
			if counts[k] <= t {
				corners = append(corners, i)
			}
		}
		if len(corners) > 0 {
			return corners
		}
	}
	return nil
}

// CheckReachability reports whether every Playable cell can reach every
// other one through Playable neighbors. A board without Playable cells
// is trivially connected.
func (g *HexGrid) CheckReachability() bool {
	var reached [Cells]bool
	start := Invalid
	for i := Index(0); i < Cells; i++ {
		if g.playable(i) {
			start = i
			break
		}
	}
	if start == Invalid {
		return true
	}
	reached[start] = true

	// Spread until nothing changes.
	for changed := true; changed; {
		changed = false
		for i := Index(0); i < Cells; i++ {
			if reached[i] || !g.playable(i) {
				continue
			}
			for _, n := range g.Neighbors(i, true) {
				if reached[n] {
					reached[i] = true
					changed = true
					break
				}
			}
		}
	}

	for i := Index(0); i < Cells; i++ {
		if g.playable(i) && !reached[i] {
			return false
		}
	}
	return true
}

// components groups Playable cells into connected regions, in order of
// each region's lowest index.
func (g *HexGrid) components() [][]Index {
	var seen [Cells]bool
	var regions [][]Index
	for start := Index(0); start < Cells; start++ {
		if seen[start] || !g.playable(start) {
			continue
		}
		seen[start] = true
		queue := []Index{start}
		region := []Index{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, n := range g.Neighbors(cur, true) {
				if !seen[n] {
					seen[n] = true
					queue = append(queue, n)
					region = append(region, n)
				}
			}
		}
		regions = append(regions, region)
	}
	return regions
}

// PlayableCount returns the number of Playable cells.
func (g *HexGrid) PlayableCount() int {
	n := 0
	for i := range g.cells {
		if g.cells[i].Contents == Playable {
			n++
		}
	}
	return n
}

// TotalPower sums power over the whole board.
func (g *HexGrid) TotalPower() int {
	sum := 0
	for i := range g.cells {
		sum += g.cells[i].Power
	}
	return sum
}
