// Package match runs a game turn by turn on top of the game package:
// whose turn it is, passing, and when the game ends.
package match

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"summoning_go/internal/game"
)

// PlayerType says who controls a seat.
type PlayerType int

const (
	Local PlayerType = iota
	AI
	NotActive
)

func (t PlayerType) String() string {
	switch t {
	case Local:
		return "local"
	case AI:
		return "ai"
	case NotActive:
		return "off"
	}
	return "unknown"
}

// ParsePlayerType reads the String form.
func ParsePlayerType(s string) (PlayerType, error) {
	switch s {
	case "local", "human":
		return Local, nil
	case "ai", "bot":
		return AI, nil
	case "off", "none", "":
		return NotActive, nil
	}
	return NotActive, fmt.Errorf("unknown player type %q", s)
}

// Seats assigns a controller to every seat.
type Seats [game.MaxPlayers]PlayerType

// Mask returns the seats that take part.
func (s Seats) Mask() game.ActiveMask {
	var m game.ActiveMask
	for p, t := range s {
		if t != NotActive {
			m |= 1 << p
		}
	}
	return m
}

var (
	ErrGameOver  = errors.New("game is over")
	ErrNotActive = errors.New("seat is not active")
)

// Match holds one game in progress.
type Match struct {
	ID       string
	Seats    Seats
	Snapshot game.GameSnapshot
	Report   game.GenReport
	Turn     int  // seat to move
	Plies    int  // moves and passes played
	Over     bool // no active seat can move
	Winners  []int
}

// New generates a board for the active seats and seats the first active
// player to move.
func New(seats Seats, cfg game.GenConfig, rng game.Rand) (*Match, error) {
	snap, rep, err := game.GenerateBoard(seats.Mask(), cfg, rng)
	if err != nil {
		return nil, fmt.Errorf("generate board: %w", err)
	}
	m := &Match{
		ID:       uuid.NewString(),
		Seats:    seats,
		Snapshot: snap,
		Report:   rep,
		Turn:     seats.Mask().Players()[0],
	}
	m.checkGameOver()
	return m, nil
}

// CurrentMoves lists the legal moves of the seat to move.
func (m *Match) CurrentMoves() []game.Move {
	if m.Over {
		return nil
	}
	return game.LegalMoves(&m.Snapshot, m.Turn)
}

// Play applies mv for the seat to move and passes the turn on.
func (m *Match) Play(mv game.Move) error {
	if m.Over {
		return ErrGameOver
	}
	src := m.Snapshot.Cell(mv.From)
	if int(src.Owner) != m.Turn+1 {
		return fmt.Errorf("%w: cell %d does not belong to seat %d", game.ErrIllegalMove, mv.From, m.Turn)
	}
	next, err := m.Snapshot.Apply(mv)
	if err != nil {
		return err
	}
	m.Snapshot = next
	m.Snapshot.UpdateScores()
	m.Plies++
	m.advance()
	return nil
}

// Pass gives up the turn of the seat to move.
func (m *Match) Pass() error {
	if m.Over {
		return ErrGameOver
	}
	m.Plies++
	m.advance()
	return nil
}

// advance moves the turn to the next active seat and checks for the end.
func (m *Match) advance() {
	mask := m.Seats.Mask()
	for k := 1; k <= game.MaxPlayers; k++ {
		p := (m.Turn + k) % game.MaxPlayers
		if mask.Has(p) {
			m.Turn = p
			break
		}
	}
	m.checkGameOver()
}

// checkGameOver ends the game once no active seat has a legal move.
func (m *Match) checkGameOver() {
	if m.Over {
		return
	}
	for _, p := range m.Seats.Mask().Players() {
		if len(game.LegalMoves(&m.Snapshot, p)) > 0 {
			return
		}
	}
	m.Over = true
	m.Snapshot.UpdateScores()
	m.Winners = m.leaders()
	slog.Info("match over",
		"id", m.ID,
		"plies", m.Plies,
		"scores", m.Snapshot.Scores,
		"winners", m.Winners,
	)
}

// leaders returns the active seats sharing the highest score.
func (m *Match) leaders() []int {
	best := -1
	var seats []int
	for _, p := range m.Seats.Mask().Players() {
		switch sc := m.Snapshot.Score(p); {
		case sc > best:
			best = sc
			seats = []int{p}
		case sc == best:
			seats = append(seats, p)
		}
	}
	return seats
}

// Seat returns the controller of seat p.
func (m *Match) Seat(p int) (PlayerType, error) {
	if p < 0 || p >= game.MaxPlayers {
		return NotActive, fmt.Errorf("seat %d out of range", p)
	}
	if m.Seats[p] == NotActive {
		return NotActive, ErrNotActive
	}
	return m.Seats[p], nil
}
