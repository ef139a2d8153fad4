package game

import "testing"

func TestUpdateScores(t *testing.T) {
	g := blockGrid(0, 0, 2, 5)
	g.cells[0].Owner, g.cells[0].Power = 1, 3
	g.cells[1].Owner, g.cells[1].Power = 1, 1
	g.cells[2].Owner, g.cells[2].Power = 4, 2
	s := NewSnapshot(g)

	want := [MaxPlayers]int{2, 0, 0, 1}
	if s.Scores != want {
		t.Fatalf("scores = %v, want %v", s.Scores, want)
	}

	// A host-side change is picked up by a recount.
	s.Grid.cells[5].Owner, s.Grid.cells[5].Power = 2, 4
	s.UpdateScores()
	if got := s.Score(1); got != 1 {
		t.Errorf("Score(1) after edit = %d, want 1", got)
	}
}

func TestUpdateScoresNegativePowerPanics(t *testing.T) {
	s := NewSnapshot(fullGrid())
	s.Grid.cells[3].Owner, s.Grid.cells[3].Power = 1, -1
	defer func() {
		if recover() == nil {
			t.Fatal("negative power should panic")
		}
	}()
	s.UpdateScores()
}

func TestSnapshotCopiesAreIndependent(t *testing.T) {
	a := NewSnapshot(fullGrid())
	b := a
	b.Grid.cells[10].Owner, b.Grid.cells[10].Power = 2, 5
	b.UpdateScores()

	if a.Cell(10).Power != 0 || a.Score(1) != 0 {
		t.Fatal("editing a copy leaked into the original")
	}
	if a.Width() != 10 || a.Height() != 10 {
		t.Errorf("dimensions = %dx%d, want 10x10", a.Width(), a.Height())
	}
}

func TestActiveMask(t *testing.T) {
	m := MaskOf(0, 2, 3)
	if m.Count() != 3 {
		t.Errorf("Count = %d, want 3", m.Count())
	}
	if m.Has(1) || !m.Has(2) || m.Has(7) || m.Has(-1) {
		t.Errorf("Has gives wrong answers for mask %04b", m)
	}
	got := m.Players()
	want := []int{0, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Players = %v, want %v", got, want)
	}
	for k := range want {
		if got[k] != want[k] {
			t.Errorf("Players = %v, want %v", got, want)
		}
	}
}

func TestEncodeTensor(t *testing.T) {
	g := blockGrid(0, 0, 1, 3)
	g.cells[0].Owner, g.cells[0].Power = 1, 4
	g.cells[1].Owner, g.cells[1].Power = 2, 2
	s := NewSnapshot(g)

	tt := EncodeTensor(&s, 0)
	if tt[0] != 4 || tt[Cells+1] != 2 || tt[2] != 0 || tt[Cells+2] != 0 {
		t.Errorf("power planes wrong: own[0]=%v opp[1]=%v", tt[0], tt[Cells+1])
	}
	if tt[2*Cells+2] != 0 || tt[2*Cells+3] != 1 {
		t.Errorf("unplayable plane wrong: [2]=%v [3]=%v", tt[2*Cells+2], tt[2*Cells+3])
	}

	seen := EncodeTensor(&s, 1)
	if seen[1] != 2 || seen[Cells] != 4 {
		t.Errorf("seat 1 view: own[1]=%v opp[0]=%v", seen[1], seen[Cells])
	}
}
