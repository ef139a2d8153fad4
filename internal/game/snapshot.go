package game

import "fmt"

// MaxPlayers is the number of seats a board supports.
const MaxPlayers = 4

// ActiveMask has bit p set when seat p takes part in the game.
type ActiveMask uint8

// MaskOf builds a mask from seat numbers.
func MaskOf(seats ...int) ActiveMask {
	var m ActiveMask
	for _, p := range seats {
		checkPlayer(p)
		m |= 1 << p
	}
	return m
}

// Has reports whether seat p is active.
func (m ActiveMask) Has(p int) bool {
	return p >= 0 && p < MaxPlayers && m&(1<<p) != 0
}

// Players returns the active seats in ascending order.
func (m ActiveMask) Players() []int {
	var ps []int
	for p := 0; p < MaxPlayers; p++ {
		if m.Has(p) {
			ps = append(ps, p)
		}
	}
	return ps
}

// Count returns the number of active seats.
func (m ActiveMask) Count() int {
	return len(m.Players())
}

// GameSnapshot is one complete board state. It is a value: copying it
// copies the grid, so branches never share cells.
type GameSnapshot struct {
	Grid   HexGrid
	Scores [MaxPlayers]int
}

// NewSnapshot wraps a grid and computes its scores.
func NewSnapshot(g HexGrid) GameSnapshot {
	s := GameSnapshot{Grid: g}
	s.UpdateScores()
	return s
}

// Cell returns the cell at i.
func (s *GameSnapshot) Cell(i Index) Cell {
	return s.Grid.Cell(i)
}

// Score returns the cell count of seat p.
func (s *GameSnapshot) Score(p int) int {
	checkPlayer(p)
	return s.Scores[p]
}

// Width returns the number of columns.
func (s *GameSnapshot) Width() int { return Width }

// Height returns the number of rows.
func (s *GameSnapshot) Height() int { return Height }

// UpdateScores recounts, per seat, the cells holding power.
// Call it after changing Grid directly.
func (s *GameSnapshot) UpdateScores() {
	var scores [MaxPlayers]int
	for i := range s.Grid.cells {
		c := &s.Grid.cells[i]
		if c.Power < 0 {
			panic(fmt.Sprintf("game: negative power %d at cell %d", c.Power, i))
		}
		if c.Power > 0 && c.Owner > 0 {
			scores[c.Owner-1]++
		}
	}
	s.Scores = scores
}

// checkPlayer panics on a seat number outside [0, MaxPlayers).
func checkPlayer(p int) {
	if p < 0 || p >= MaxPlayers {
		panic(fmt.Sprintf("game: player index %d out of range [0,%d)", p, MaxPlayers))
	}
}
