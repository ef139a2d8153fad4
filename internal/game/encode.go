// internal/game/encode.go
package game

const (
	PlaneCnt  = 3 // [own power, opponent power, unplayable]
	TensorLen = PlaneCnt * Cells
)

// EncodeTensor flattens s into planes seen from seat me. The power
// planes hold raw power; the last plane is 1 wherever a cell is Blocked
// or off the map.
func EncodeTensor(s *GameSnapshot, me int) [TensorLen]float32 {
	checkPlayer(me)
	own := uint8(me + 1)
	var t [TensorLen]float32
	for i := 0; i < Cells; i++ {
		c := s.Grid.cells[i]
		switch {
		case c.Contents != Playable:
			t[2*Cells+i] = 1
		case c.Owner == own:
			t[i] = float32(c.Power)
		case c.Owner != 0:
			t[Cells+i] = float32(c.Power)
		}
	}
	return t
}

// MoveIndex maps a move onto a single integer: source cell, direction,
// destination. Amount is not part of the index.
func MoveIndex(m Move) int { return (int(m.From)*6+int(m.Dir))*Cells + int(m.To) }
