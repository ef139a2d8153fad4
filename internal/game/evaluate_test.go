package game

import (
	"math/rand"
	"testing"
)

// lineSnapshot makes cells 44, 54 and 64 (one column, heading north)
// the only playable cells.
func lineSnapshot() HexGrid {
	g := NewGrid()
	for _, i := range []Index{44, 54, 64} {
		g.cells[i].Contents = Playable
	}
	return g
}

func TestEvaluateSingleStone(t *testing.T) {
	g := lineSnapshot()
	g.cells[44].Owner = 1
	g.cells[44].Power = 1
	s := NewSnapshot(g)

	got := Evaluate(&s)
	want := [MaxPlayers]int64{10000, 0, 0, 0}
	if got != want {
		t.Fatalf("Evaluate = %v, want %v", got, want)
	}
}

func TestEvaluateUncontested(t *testing.T) {
	g := lineSnapshot()
	g.cells[64].Contents = NotInMap
	g.cells[44].Owner = 1
	g.cells[44].Power = 2
	s := NewSnapshot(g)

	// movable 10000, opportunity 9000:
	// 10000 + 1e9/(1e9/10000 + 1e9/9000) = 10000 + 1e9/211111 = 14736
	got := Evaluate(&s)
	want := [MaxPlayers]int64{14736, 0, 0, 0}
	if got != want {
		t.Fatalf("Evaluate = %v, want %v", got, want)
	}
}

func TestEvaluateContested(t *testing.T) {
	g := lineSnapshot()
	g.cells[44].Owner = 1
	g.cells[44].Power = 2
	g.cells[64].Owner = 2
	g.cells[64].Power = 2
	s := NewSnapshot(g)

	// Both seats reach cell 54, so each sees it at half value:
	// 10000 + 1e9/(100000 + 200000) = 13333
	got := Evaluate(&s)
	want := [MaxPlayers]int64{13333, 13333, 0, 0}
	if got != want {
		t.Fatalf("Evaluate = %v, want %v", got, want)
	}
}

func TestEvaluateBoxedIn(t *testing.T) {
	g := NewGrid()
	g.cells[44].Contents = Playable
	g.cells[44].Owner = 3
	g.cells[44].Power = 8
	s := NewSnapshot(g)

	got := Evaluate(&s)
	want := [MaxPlayers]int64{0, 0, 10000, 0}
	if got != want {
		t.Fatalf("Evaluate = %v, want %v", got, want)
	}
}

func TestEvaluateDeterministicAndOrderFree(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		rng := rand.New(rand.NewSource(seed))
		s, _, err := GenerateBoard(MaskOf(0, 1, 2), DefaultGenConfig(), rng)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		for ply := 0; ply < 9; ply++ {
			next := GenerateMoves(&s, ply%3)
			if len(next) > 0 {
				s = next[rng.Intn(len(next))]
			}
		}

		first := Evaluate(&s)
		if again := Evaluate(&s); again != first {
			t.Fatalf("seed %d: Evaluate not deterministic: %v then %v", seed, first, again)
		}

		order := ascending
		for i, j := 0, Cells-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
		if rev := evaluateOrder(&s, order[:]); rev != first {
			t.Errorf("seed %d: reversed order %v, want %v", seed, rev, first)
		}

		rng.Shuffle(Cells, func(i, j int) { order[i], order[j] = order[j], order[i] })
		if shuf := evaluateOrder(&s, order[:]); shuf != first {
			t.Errorf("seed %d: shuffled order %v, want %v", seed, shuf, first)
		}
	}
}

func TestEvaluateRewardsRoom(t *testing.T) {
	open := blockGrid(0, 0, Height, Width)
	open.cells[44].Owner = 1
	open.cells[44].Power = 6
	roomy := NewSnapshot(open)

	tight := blockGrid(3, 3, 3, 3)
	tight.cells[44].Owner = 1
	tight.cells[44].Power = 6
	cramped := NewSnapshot(tight)

	if a, b := Evaluate(&roomy)[0], Evaluate(&cramped)[0]; a <= b {
		t.Errorf("open board %d should outscore cramped board %d", a, b)
	}
}
