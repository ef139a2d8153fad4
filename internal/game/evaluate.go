package game

// Fixed-point evaluation constants. All weights are integers scaled by
// scale so results are identical on every platform.
const (
	scale       = 10000
	blendScale  = 1_000_000_000
	safeDecay   = 9 // tenths kept per step into uncontested space
	riskyDecay  = 5 // tenths kept per step into contested space
	decayDenom  = 10
	cellWeight  = scale
	maxDistance = Width + Height
)

// Evaluate scores every seat on s. Each cell with power is worth a base
// weight; cells that can still split add a blend of their spare power
// and the empty space they could claim, where space an opponent can also
// reach counts for less.
func Evaluate(s *GameSnapshot) [MaxPlayers]int64 {
	return evaluateOrder(s, ascending[:])
}

// ascending is the default cell order.
var ascending = func() (order [Cells]Index) {
	for i := range order {
		order[i] = Index(i)
	}
	return order
}()

// evaluateOrder runs Evaluate visiting cells in the given order. The
// result does not depend on the order.
func evaluateOrder(s *GameSnapshot, order []Index) [MaxPlayers]int64 {
	g := &s.Grid
	access := accessMap(g, order)

	var scores [MaxPlayers]int64
	for _, i := range order {
		c := g.cells[i]
		if c.Power <= 0 || c.Owner == 0 {
			continue
		}
		weight := int64(cellWeight)
		if c.Power > 1 {
			movable := int64(c.Power-1) * scale
			opportunity := opportunityAt(g, &access, i, c.Owner)
			if opportunity > 0 {
				weight += blendScale / (blendScale/movable + blendScale/opportunity)
			}
		}
		scores[c.Owner-1] += weight
	}
	return scores
}

// accessMap records, for each empty cell, the seats that can split
// onto it this turn, one bit per seat.
func accessMap(g *HexGrid, order []Index) [Cells]uint8 {
	var access [Cells]uint8
	for _, i := range order {
		c := g.cells[i]
		if c.Power <= 1 || c.Owner == 0 {
			continue
		}
		for _, d := range Directions {
			to := g.SearchDir(i, d)
			if to != i && to.Valid() {
				access[to] |= 1 << (c.Owner - 1)
			}
		}
	}
	return access
}

// opportunityAt sums, over all six rays from i, a factor that decays
// with every empty cell stepped over: slowly through cells no opponent
// reaches, quickly through contested ones.
func opportunityAt(g *HexGrid, access *[Cells]uint8, i Index, owner uint8) int64 {
	opponents := ^uint8(1 << (owner - 1))
	var opportunity int64
	for _, d := range Directions {
		factor := int64(scale)
		cur := i
		for step := 0; step < maxDistance; step++ {
			next := MoveDir(cur, d)
			if !g.open(next) {
				break
			}
			if access[next]&opponents != 0 {
				factor = factor * riskyDecay / decayDenom
			} else {
				factor = factor * safeDecay / decayDenom
			}
			opportunity += factor
			cur = next
		}
	}
	return opportunity
}
