// Package ai picks moves for computer-controlled seats by scoring every
// candidate snapshot with game.Evaluate.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"summoning_go/internal/game"
)

// Config tunes move selection. Candidates are ranked by value and cut
// to clamp(MinKeep, n*KeepRatio, MaxKeep); the pick is then uniform over
// the kept candidates within Epsilon of the best. With a wide Epsilon
// the keep limits alone decide how many moves are in play.
type Config struct {
	Workers   int     // parallel evaluations, <= 0 means one per CPU
	KeepRatio float64 // share of ranked candidates kept
	MinKeep   int     // keep at least this many
	MaxKeep   int     // keep at most this many, 0 for no cap
	Epsilon   int64   // candidates this close to the best are equally good
}

// DefaultConfig returns a greedy picker that breaks exact ties at random.
func DefaultConfig() Config {
	return Config{
		Workers:   0,
		KeepRatio: 0.65,
		MinKeep:   8,
		MaxKeep:   32,
		Epsilon:   0,
	}
}

// Rand is the randomness a Picker needs. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Choice is one scored candidate.
type Choice struct {
	Move     game.Move
	Snapshot game.GameSnapshot
	Scores   [game.MaxPlayers]int64
	Value    int64 // own score minus the strongest opponent's
}

// Picker chooses moves for one seat at a time. A Picker is not safe for
// concurrent use; give each goroutine its own and share the Cache.
type Picker struct {
	cfg   Config
	cache *Cache
	rng   Rand
}

// NewPicker builds a picker. cache may be nil.
func NewPicker(cfg Config, cache *Cache, rng Rand) *Picker {
	return &Picker{cfg: cfg, cache: cache, rng: rng}
}

// Choose scores every legal move of player on s and returns one of the
// best kept candidates. It returns false when the player has no move and
// must pass.
func (p *Picker) Choose(ctx context.Context, s game.GameSnapshot, player int) (Choice, bool, error) {
	moves := game.LegalMoves(&s, player)
	if len(moves) == 0 {
		return Choice{}, false, nil
	}

	cands, err := p.score(ctx, &s, player, moves)
	if err != nil {
		return Choice{}, false, err
	}

	kept := rank(cands, p.cfg)
	best := kept[0].Value
	n := 1
	for n < len(kept) && kept[n].Value >= best-p.cfg.Epsilon {
		n++
	}
	pick := kept[p.rng.Intn(n)]

	slog.Debug("ai choice",
		"player", player,
		"moves", len(moves),
		"kept", len(kept),
		"tied", n,
		"move", pick.Move.String(),
		"value", pick.Value,
	)
	return pick, true, nil
}

// score evaluates every move in parallel. Each goroutine works on its
// own copy of the snapshot.
func (p *Picker) score(ctx context.Context, s *game.GameSnapshot, player int, moves []game.Move) ([]Choice, error) {
	workers := p.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	cands := make([]Choice, len(moves))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for k, m := range moves {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			next, err := s.Apply(m)
			if err != nil {
				return fmt.Errorf("apply %v: %w", m, err)
			}
			scores := p.cache.Evaluate(&next)
			cands[k] = Choice{
				Move:     m,
				Snapshot: next,
				Scores:   scores,
				Value:    Relative(scores, player),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cands, nil
}

// Relative is player's score minus the best opposing score.
func Relative(scores [game.MaxPlayers]int64, player int) int64 {
	var rival int64
	for q, v := range scores {
		if q != player && v > rival {
			rival = v
		}
	}
	return scores[player] - rival
}
