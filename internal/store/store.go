// Package store keeps a SQLite ledger of finished self-play matches.
package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"summoning_go/internal/game"
)

// Result is one finished match.
type Result struct {
	MatchID  string
	Seed     int64
	Seats    string // e.g. "ai,ai,off,off"
	Plies    int
	Playable int // playable cells on the generated board
	Repaired bool
	Scores   [game.MaxPlayers]int
	Winners  []int
	Duration time.Duration
}

// DB wraps the ledger connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates the ledger at path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// one writer; workers queue on the pool
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		seats TEXT NOT NULL,
		plies INTEGER NOT NULL,
		playable INTEGER NOT NULL,
		repaired INTEGER NOT NULL,
		score0 INTEGER NOT NULL,
		score1 INTEGER NOT NULL,
		score2 INTEGER NOT NULL,
		score3 INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS winners (
		match_id TEXT NOT NULL REFERENCES matches(id),
		seat INTEGER NOT NULL,
		PRIMARY KEY (match_id, seat)
	);

	CREATE INDEX IF NOT EXISTS idx_winners_seat ON winners(seat);
	CREATE INDEX IF NOT EXISTS idx_matches_seed ON matches(seats, seed);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RecordMatch stores r and its winners in one transaction.
func (db *DB) RecordMatch(ctx context.Context, r Result) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	repaired := 0
	if r.Repaired {
		repaired = 1
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO matches
		(id, seed, seats, plies, playable, repaired, score0, score1, score2, score3, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MatchID, r.Seed, r.Seats, r.Plies, r.Playable, repaired,
		r.Scores[0], r.Scores[1], r.Scores[2], r.Scores[3], r.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", r.MatchID, err)
	}

	for _, seat := range r.Winners {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO winners (match_id, seat) VALUES (?, ?)", r.MatchID, seat,
		); err != nil {
			return fmt.Errorf("insert winner %d: %w", seat, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of recorded matches.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := db.conn.GetContext(ctx, &n, "SELECT COUNT(*) FROM matches")
	return n, err
}

// Seeds returns the seeds in [from, to] already recorded for the given
// seat layout.
func (db *DB) Seeds(ctx context.Context, seats string, from, to int64) (map[int64]bool, error) {
	var seeds []int64
	err := db.conn.SelectContext(ctx, &seeds,
		"SELECT seed FROM matches WHERE seats = ? AND seed BETWEEN ? AND ?", seats, from, to)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]bool, len(seeds))
	for _, s := range seeds {
		out[s] = true
	}
	return out, nil
}

// WinsBySeat counts wins per seat. A shared win counts for every seat in it.
func (db *DB) WinsBySeat(ctx context.Context) ([game.MaxPlayers]int, error) {
	var rows []struct {
		Seat int `db:"seat"`
		Wins int `db:"wins"`
	}
	var out [game.MaxPlayers]int
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT seat, COUNT(*) AS wins FROM winners GROUP BY seat ORDER BY seat")
	if err != nil {
		return out, err
	}
	for _, r := range rows {
		if r.Seat >= 0 && r.Seat < game.MaxPlayers {
			out[r.Seat] = r.Wins
		}
	}
	return out, nil
}

// Recent returns the newest matches, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]Result, error) {
	var rows []struct {
		ID         string `db:"id"`
		Seed       int64  `db:"seed"`
		Seats      string `db:"seats"`
		Plies      int    `db:"plies"`
		Playable   int    `db:"playable"`
		Repaired   bool   `db:"repaired"`
		Score0     int    `db:"score0"`
		Score1     int    `db:"score1"`
		Score2     int    `db:"score2"`
		Score3     int    `db:"score3"`
		DurationMS int64  `db:"duration_ms"`
		Winners    string `db:"winners"`
	}
	err := db.conn.SelectContext(ctx, &rows, `
		SELECT m.id, m.seed, m.seats, m.plies, m.playable, m.repaired,
		       m.score0, m.score1, m.score2, m.score3, m.duration_ms,
		       COALESCE((SELECT GROUP_CONCAT(w.seat) FROM winners w WHERE w.match_id = m.id), '') AS winners
		FROM matches m
		ORDER BY m.created_at DESC, m.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(rows))
	for _, r := range rows {
		res := Result{
			MatchID:  r.ID,
			Seed:     r.Seed,
			Seats:    r.Seats,
			Plies:    r.Plies,
			Playable: r.Playable,
			Repaired: r.Repaired,
			Scores:   [game.MaxPlayers]int{r.Score0, r.Score1, r.Score2, r.Score3},
			Duration: time.Duration(r.DurationMS) * time.Millisecond,
		}
		for _, s := range strings.Split(r.Winners, ",") {
			if seat, err := strconv.Atoi(s); err == nil {
				res.Winners = append(res.Winners, seat)
			}
		}
		sort.Ints(res.Winners)
		out = append(out, res)
	}
	return out, nil
}
