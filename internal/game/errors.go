package game

import "errors"

var (
	// ErrNoStartingPosition means the generated board has fewer edge
	// cells than active players. The caller may retry with a new seed.
	ErrNoStartingPosition = errors.New("not enough edge cells for starting positions")

	// ErrNoActivePlayers means the active mask selects no seat.
	ErrNoActivePlayers = errors.New("no active players")

	// ErrOutOfBounds is returned when a write addresses a position off
	// the board. Reads report Invalid instead.
	ErrOutOfBounds = errors.New("index out of bounds")

	// ErrIllegalMove is returned when a split does not describe a legal
	// move on the snapshot it is applied to.
	ErrIllegalMove = errors.New("illegal move")
)
