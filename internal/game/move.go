package game

import "fmt"

// Move is one split: Amount power leaves From and lands on To, the
// farthest empty cell from From in direction Dir.
type Move struct {
	From   Index
	To     Index
	Dir    Direction
	Amount int
}

func (m Move) String() string {
	return fmt.Sprintf("%d-%s->%d x%d", m.From, m.Dir, m.To, m.Amount)
}

// LegalMoves lists every split available to seat player, ordered by
// source index, then direction, then ascending amount.
func LegalMoves(s *GameSnapshot, player int) []Move {
	checkPlayer(player)
	owner := uint8(player + 1)
	var moves []Move
	for i := Index(0); i < Cells; i++ {
		c := s.Grid.cells[i]
		if c.Owner != owner || c.Power <= 1 {
			continue
		}
		for _, d := range Directions {
			to := s.Grid.SearchDir(i, d)
			if to == i || !to.Valid() {
				continue
			}
			for amt := 1; amt < c.Power; amt++ {
				moves = append(moves, Move{From: i, To: to, Dir: d, Amount: amt})
			}
		}
	}
	return moves
}

// GenerateMoves returns one new snapshot per legal move of seat player,
// in LegalMoves order. An empty result means the player must pass.
func GenerateMoves(s *GameSnapshot, player int) []GameSnapshot {
	moves := LegalMoves(s, player)
	out := make([]GameSnapshot, 0, len(moves))
	for _, m := range moves {
		out = append(out, s.apply(m))
	}
	return out
}

// Apply checks that m is a legal split on s and returns the resulting
// snapshot. s itself is left unchanged.
func (s *GameSnapshot) Apply(m Move) (GameSnapshot, error) {
	if !m.From.Valid() {
		return GameSnapshot{}, fmt.Errorf("%w: source %d off board", ErrIllegalMove, m.From)
	}
	src := s.Grid.cells[m.From]
	if src.Contents != Playable || src.Owner == 0 {
		return GameSnapshot{}, fmt.Errorf("%w: source %d not owned", ErrIllegalMove, m.From)
	}
	if m.Amount < 1 || m.Amount >= src.Power {
		return GameSnapshot{}, fmt.Errorf("%w: amount %d outside [1,%d)", ErrIllegalMove, m.Amount, src.Power)
	}
	if m.Dir < North || m.Dir > NorthWest {
		return GameSnapshot{}, fmt.Errorf("%w: bad direction %d", ErrIllegalMove, m.Dir)
	}
	to := s.Grid.SearchDir(m.From, m.Dir)
	if to == m.From || to != m.To {
		return GameSnapshot{}, fmt.Errorf("%w: %d cannot reach %d heading %s", ErrIllegalMove, m.From, m.To, m.Dir)
	}
	return s.apply(m), nil
}

// apply performs a split already known to be legal.
func (s *GameSnapshot) apply(m Move) GameSnapshot {
	next := *s
	src := &next.Grid.cells[m.From]
	dst := &next.Grid.cells[m.To]
	src.Power -= m.Amount
	dst.Power += m.Amount
	dst.Owner = src.Owner
	// The destination was empty, so its new owner gains one cell.
	next.Scores[src.Owner-1]++
	return next
}
