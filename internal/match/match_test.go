package match

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"summoning_go/internal/ai"
	"summoning_go/internal/game"
)

func newMatch(t *testing.T, seed int64, seats Seats) *Match {
	t.Helper()
	m, err := New(seats, game.DefaultGenConfig(), rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestSeatsMask(t *testing.T) {
	seats := Seats{AI, NotActive, Local, AI}
	if got, want := seats.Mask(), game.MaskOf(0, 2, 3); got != want {
		t.Fatalf("Mask = %04b, want %04b", got, want)
	}
}

func TestParsePlayerType(t *testing.T) {
	for _, pt := range []PlayerType{Local, AI, NotActive} {
		got, err := ParsePlayerType(pt.String())
		if err != nil || got != pt {
			t.Errorf("ParsePlayerType(%q) = %v, %v", pt.String(), got, err)
		}
	}
	if _, err := ParsePlayerType("robot"); err == nil {
		t.Error("unknown type should fail")
	}
}

func TestFirstTurnIsFirstActiveSeat(t *testing.T) {
	m := newMatch(t, 1, Seats{NotActive, AI, NotActive, AI})
	if m.Turn != 1 {
		t.Fatalf("Turn = %d, want 1", m.Turn)
	}
	if m.ID == "" {
		t.Error("match has no ID")
	}
	if err := m.Pass(); err != nil {
		t.Fatal(err)
	}
	if m.Turn != 3 {
		t.Fatalf("after pass Turn = %d, want 3", m.Turn)
	}
	if err := m.Pass(); err != nil {
		t.Fatal(err)
	}
	if m.Turn != 1 {
		t.Fatalf("turn should wrap to 1, got %d", m.Turn)
	}
}

func TestPlayRejectsOtherSeatsCells(t *testing.T) {
	m := newMatch(t, 2, Seats{AI, AI, NotActive, NotActive})
	theirs := game.LegalMoves(&m.Snapshot, 1)
	if len(theirs) == 0 {
		t.Fatal("seat 1 should have moves")
	}
	if err := m.Play(theirs[0]); !errors.Is(err, game.ErrIllegalMove) {
		t.Fatalf("err = %v, want ErrIllegalMove", err)
	}
	if m.Plies != 0 || m.Turn != 0 {
		t.Errorf("rejected move changed state: plies %d turn %d", m.Plies, m.Turn)
	}
}

func TestPlayToCompletion(t *testing.T) {
	m := newMatch(t, 3, Seats{AI, AI, AI, NotActive})
	start := m.Snapshot.Grid.TotalPower()
	pickers := make(map[int]*ai.Picker)
	for _, p := range m.Seats.Mask().Players() {
		pickers[p] = ai.NewPicker(ai.DefaultConfig(), nil, rand.New(rand.NewSource(int64(p))))
	}

	for guard := 0; !m.Over; guard++ {
		if guard > 2000 {
			t.Fatal("match did not end")
		}
		choice, ok, err := pickers[m.Turn].Choose(context.Background(), m.Snapshot, m.Turn)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			if err := m.Pass(); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := m.Play(choice.Move); err != nil {
			t.Fatalf("ply %d: %v", m.Plies, err)
		}
	}

	if got := m.Snapshot.Grid.TotalPower(); got != start {
		t.Errorf("total power %d at end, want %d", got, start)
	}
	if len(m.Winners) == 0 {
		t.Fatal("no winner recorded")
	}
	top := m.Snapshot.Score(m.Winners[0])
	for _, p := range m.Seats.Mask().Players() {
		if m.Snapshot.Score(p) > top {
			t.Errorf("seat %d scored %d above winner's %d", p, m.Snapshot.Score(p), top)
		}
	}
	for _, p := range m.Seats.Mask().Players() {
		if n := len(game.LegalMoves(&m.Snapshot, p)); n != 0 {
			t.Errorf("seat %d still has %d moves after game over", p, n)
		}
	}
	if err := m.Pass(); !errors.Is(err, ErrGameOver) {
		t.Errorf("Pass after end = %v, want ErrGameOver", err)
	}
	if moves := m.CurrentMoves(); moves != nil {
		t.Errorf("CurrentMoves after end = %d moves", len(moves))
	}
}

func TestSeat(t *testing.T) {
	m := newMatch(t, 4, Seats{Local, NotActive, NotActive, AI})
	if pt, err := m.Seat(0); err != nil || pt != Local {
		t.Errorf("Seat(0) = %v, %v", pt, err)
	}
	if _, err := m.Seat(1); !errors.Is(err, ErrNotActive) {
		t.Errorf("Seat(1) err = %v, want ErrNotActive", err)
	}
	if _, err := m.Seat(9); err == nil {
		t.Error("Seat(9) should fail")
	}
}

func TestNewWithoutPlayers(t *testing.T) {
	_, err := New(Seats{NotActive, NotActive, NotActive, NotActive}, game.DefaultGenConfig(), rand.New(rand.NewSource(1)))
	if !errors.Is(err, game.ErrNoActivePlayers) {
		t.Fatalf("err = %v, want ErrNoActivePlayers", err)
	}
}
