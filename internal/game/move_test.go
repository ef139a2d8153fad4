package game

import (
	"errors"
	"math/rand"
	"testing"
)

// centerSnapshot is a 3x3 playable block with seat 0 holding power at
// its center cell.
func centerSnapshot(power int) (GameSnapshot, Index) {
	g := blockGrid(3, 3, 3, 3)
	center := MapIndex(4, 4)
	g.cells[center].Owner = 1
	g.cells[center].Power = power
	return NewSnapshot(g), center
}

func TestGenerateMovesCenterBlock(t *testing.T) {
	s, center := centerSnapshot(3)

	moves := LegalMoves(&s, 0)
	if len(moves) != 12 {
		t.Fatalf("moves = %d, want 12 (6 directions x 2 amounts)", len(moves))
	}
	for k, m := range moves {
		wantDir := Directions[k/2]
		wantAmt := k%2 + 1
		if m.From != center || m.Dir != wantDir || m.Amount != wantAmt {
			t.Errorf("moves[%d] = %v, want %d-%s x%d", k, m, center, wantDir, wantAmt)
		}
		if want := MoveDir(center, m.Dir); m.To != want {
			t.Errorf("moves[%d].To = %d, want neighbor %d", k, m.To, want)
		}
	}

	snaps := GenerateMoves(&s, 0)
	if len(snaps) != 12 {
		t.Fatalf("snapshots = %d, want 12", len(snaps))
	}
	for k, n := range snaps {
		if got := n.Grid.TotalPower(); got != 3 {
			t.Errorf("snapshot %d total power = %d, want 3", k, got)
		}
		if got := n.Score(0); got != 2 {
			t.Errorf("snapshot %d score = %d, want 2", k, got)
		}
	}
	if s.Cell(center).Power != 3 {
		t.Fatal("generating moves changed the source snapshot")
	}
}

// Every generated snapshot differs from its parent only at the source
// and destination, and conserves power.
func TestGenerateMovesLegality(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.StartPower = 5
	for seed := int64(1); seed <= 10; seed++ {
		s, _, err := GenerateBoard(MaskOf(0, 1, 2, 3), cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		// Play a few random splits so sources and blockers vary.
		rng := rand.New(rand.NewSource(seed))
		for ply := 0; ply < 8; ply++ {
			next := GenerateMoves(&s, ply%4)
			if len(next) > 0 {
				s = next[rng.Intn(len(next))]
			}
		}

		for p := 0; p < MaxPlayers; p++ {
			moves := LegalMoves(&s, p)
			snaps := GenerateMoves(&s, p)
			if len(moves) != len(snaps) {
				t.Fatalf("seed %d player %d: %d moves but %d snapshots", seed, p, len(moves), len(snaps))
			}
			for k, m := range moves {
				checkSplit(t, &s, &snaps[k], m, p)
			}
		}
	}
}

func checkSplit(t *testing.T, before, after *GameSnapshot, m Move, p int) {
	t.Helper()
	for i := Index(0); i < Cells; i++ {
		if i == m.From || i == m.To {
			continue
		}
		if before.Cell(i) != after.Cell(i) {
			t.Fatalf("move %v changed unrelated cell %d", m, i)
		}
	}
	src0, src1 := before.Cell(m.From), after.Cell(m.From)
	dst1 := after.Cell(m.To)
	if src1.Power+m.Amount != src0.Power {
		t.Errorf("move %v: source power %d + %d != %d", m, src1.Power, m.Amount, src0.Power)
	}
	if dst1.Power != m.Amount {
		t.Errorf("move %v: destination power = %d, want %d", m, dst1.Power, m.Amount)
	}
	if int(dst1.Owner) != p+1 {
		t.Errorf("move %v: destination owner = %d, want %d", m, dst1.Owner, p+1)
	}
	if before.Grid.TotalPower() != after.Grid.TotalPower() {
		t.Errorf("move %v: total power %d -> %d", m, before.Grid.TotalPower(), after.Grid.TotalPower())
	}
	check := *after
	check.UpdateScores()
	if check.Scores != after.Scores {
		t.Errorf("move %v: scores %v, recount gives %v", m, after.Scores, check.Scores)
	}
}

func TestGenerateMovesNone(t *testing.T) {
	s, center := centerSnapshot(1)
	if got := GenerateMoves(&s, 0); len(got) != 0 {
		t.Errorf("power 1 only: %d moves, want 0", len(got))
	}
	if got := GenerateMoves(&s, 1); len(got) != 0 {
		t.Errorf("player without cells: %d moves, want 0", len(got))
	}

	// Power but no room.
	g := NewGrid()
	g.cells[center].Contents = Playable
	g.cells[center].Owner = 1
	g.cells[center].Power = 9
	for _, n := range g.Neighbors(center, false) {
		g.cells[n].Contents = Blocked
	}
	boxed := NewSnapshot(g)
	if got := GenerateMoves(&boxed, 0); len(got) != 0 {
		t.Errorf("boxed in: %d moves, want 0", len(got))
	}
}

func TestMovesNeverReinforce(t *testing.T) {
	s, center := centerSnapshot(4)
	ally := MoveDir(center, North)
	s.Grid.cells[ally].Owner = 1
	s.Grid.cells[ally].Power = 1
	s.UpdateScores()

	for _, m := range LegalMoves(&s, 0) {
		if m.To == ally {
			t.Fatalf("move %v lands on an occupied friendly cell", m)
		}
		if s.Cell(m.To).Power != 0 {
			t.Fatalf("move %v lands on occupied cell", m)
		}
	}
}

func TestApply(t *testing.T) {
	s, center := centerSnapshot(3)
	to := MoveDir(center, SouthEast)

	next, err := s.Apply(Move{From: center, To: to, Dir: SouthEast, Amount: 2})
	if err != nil {
		t.Fatalf("legal move rejected: %v", err)
	}
	if next.Cell(center).Power != 1 || next.Cell(to).Power != 2 || next.Cell(to).Owner != 1 {
		t.Errorf("after apply: source %+v destination %+v", next.Cell(center), next.Cell(to))
	}
	if s.Cell(to).Power != 0 {
		t.Error("Apply changed the receiver")
	}

	bad := []Move{
		{From: center, To: to, Dir: SouthEast, Amount: 3},
		{From: center, To: to, Dir: SouthEast, Amount: 0},
		{From: center, To: to, Dir: North, Amount: 1},
		{From: to, To: center, Dir: NorthWest, Amount: 1},
		{From: Invalid, To: to, Dir: North, Amount: 1},
		{From: center, To: to, Dir: Direction(9), Amount: 1},
	}
	for _, m := range bad {
		if _, err := s.Apply(m); !errors.Is(err, ErrIllegalMove) {
			t.Errorf("Apply(%v) error = %v, want ErrIllegalMove", m, err)
		}
	}
}

func TestGenerateMovesBadPlayerPanics(t *testing.T) {
	s, _ := centerSnapshot(3)
	defer func() {
		if recover() == nil {
			t.Fatal("player 4 should panic")
		}
	}()
	GenerateMoves(&s, 4)
}
