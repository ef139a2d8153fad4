package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"summoning_go/internal/ai"
	"summoning_go/internal/config"
	"summoning_go/internal/game"
	"summoning_go/internal/match"
	"summoning_go/internal/store"
)

// tensor, move index, seat, outcome, match id
const rowCols = game.TensorLen + 4

func main() {
	// ───── flags ─────
	cfgPath := flag.String("config", "summoning.yaml", "YAML config file")
	numGames := flag.Int("n", 0, "games 0..n-1 to have in the ledger for this seed and seat layout (0 = config)")
	seatsArg := flag.String("seats", "", "comma separated seats: ai or off (empty = config)")
	seed := flag.Int64("seed", 0, "base seed, game g uses seed+g (0 = config, then clock)")
	dbPath := flag.String("db", "", "SQLite match ledger (empty = config)")
	outFile := flag.String("out", "", "CSV dataset to append plies to (empty = config)")
	workers := flag.Int("workers", 0, "parallel games (0 = config)")
	flag.Parse()

	cfg, err := config.LoadEnv(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *numGames > 0 {
		cfg.SelfPlay.Games = *numGames
	}
	if *seatsArg != "" {
		cfg.SelfPlay.Seats = strings.Split(*seatsArg, ",")
	}
	if *seed != 0 {
		cfg.SelfPlay.Seed = *seed
	}
	if *dbPath != "" {
		cfg.SelfPlay.DBPath = *dbPath
	}
	if *outFile != "" {
		cfg.SelfPlay.Dataset = *outFile
	}
	if *workers > 0 {
		cfg.SelfPlay.Workers = *workers
	}
	if cfg.SelfPlay.Seed == 0 {
		cfg.SelfPlay.Seed = time.Now().UnixNano()
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(cfg); err != nil {
		slog.Error("selfplay failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	seats, err := parseSeats(cfg.SelfPlay.Seats)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// ───── ledger ─────
	if dir := filepath.Dir(cfg.SelfPlay.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := store.Open(cfg.SelfPlay.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	pending, err := pendingGames(ctx, db, seatsKey(seats), cfg.SelfPlay.Seed, cfg.SelfPlay.Games)
	if err != nil {
		return fmt.Errorf("read recorded seeds: %w", err)
	}
	if len(pending) == 0 {
		slog.Info("ledger already holds every game", "games", humanize.Comma(int64(cfg.SelfPlay.Games)))
		return nil
	}

	// ───── dataset ─────
	var ds *dataset
	if cfg.SelfPlay.Dataset != "" {
		ds, err = openDataset(cfg.SelfPlay.Dataset)
		if err != nil {
			return err
		}
		defer ds.Close()
	}

	// ───── worker pool ─────
	cache := ai.NewCache(cfg.AI.CacheSize, cfg.SelfPlay.Seed)
	n := cfg.SelfPlay.Workers
	slog.Info("starting selfplay",
		"workers", n,
		"games", len(pending),
		"already_recorded", cfg.SelfPlay.Games-len(pending),
		"seats", strings.Join(cfg.SelfPlay.Seats, ","),
	)

	var (
		plies    atomic.Int64
		finished atomic.Int64
		firstErr error
		errOnce  sync.Once
	)
	fail := func(err error) { errOnce.Do(func() { firstErr = err; stop() }) }

	start := time.Now()
	jobs := make(chan int, n*2)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := range jobs {
				gameSeed := cfg.SelfPlay.Seed + int64(g)
				res, rows, err := playOne(ctx, seats, cfg, cache, gameSeed)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						fail(fmt.Errorf("game %d: %w", g, err))
					}
					continue
				}
				if err := db.RecordMatch(context.WithoutCancel(ctx), res); err != nil {
					fail(err)
					continue
				}
				if ds != nil {
					if err := ds.Write(rows); err != nil {
						fail(err)
						continue
					}
				}
				plies.Add(int64(res.Plies))
				if k := finished.Add(1); k%100 == 0 {
					slog.Info("progress", "games", humanize.Comma(k), "elapsed", time.Since(start).Round(time.Second))
				}
			}
		}()
	}

feed:
	for _, g := range pending {
		select {
		case jobs <- g:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return summarize(db, ds, cache, finished.Load(), plies.Load(), time.Since(start))
}

func parseSeats(names []string) (match.Seats, error) {
	var seats match.Seats
	if len(names) > len(seats) {
		return seats, fmt.Errorf("at most %d seats, got %d", len(seats), len(names))
	}
	for i := range seats {
		seats[i] = match.NotActive
	}
	for i, name := range names {
		pt, err := match.ParsePlayerType(strings.TrimSpace(name))
		if err != nil {
			return seats, err
		}
		if pt == match.Local {
			return seats, fmt.Errorf("seat %d: selfplay has no local players", i)
		}
		seats[i] = pt
	}
	if seats.Mask().Count() == 0 {
		return seats, game.ErrNoActivePlayers
	}
	return seats, nil
}

// seatsKey is the seat layout as stored in the ledger, e.g. "ai,ai,off,off".
func seatsKey(seats match.Seats) string {
	names := make([]string, len(seats))
	for i, s := range seats {
		names[i] = s.String()
	}
	return strings.Join(names, ",")
}

// pendingGames returns the game numbers in [0, games) whose seed
// (base+g) has no ledger entry for this seat layout yet. Games finish
// out of order across workers, so an interrupted run can leave gaps
// anywhere in the range.
func pendingGames(ctx context.Context, db *store.DB, seats string, base int64, games int) ([]int, error) {
	if games <= 0 {
		return nil, nil
	}
	done, err := db.Seeds(ctx, seats, base, base+int64(games)-1)
	if err != nil {
		return nil, err
	}
	var pending []int
	for g := 0; g < games; g++ {
		if !done[base+int64(g)] {
			pending = append(pending, g)
		}
	}
	return pending, nil
}

// playOne plays one full game between AI seats and returns its ledger
// entry plus one dataset row per move.
func playOne(ctx context.Context, seats match.Seats, cfg *config.Config, cache *ai.Cache, seed int64) (store.Result, [][]string, error) {
	began := time.Now()
	r := rand.New(rand.NewSource(seed))
	m, err := match.New(seats, cfg.GenConfig(), r)
	if err != nil {
		return store.Result{}, nil, err
	}
	picker := ai.NewPicker(cfg.AIConfig(), cache, r)

	type ply struct {
		tensor [game.TensorLen]float32
		move   int
		seat   int
	}
	var history []ply

	for !m.Over {
		seat := m.Turn
		choice, ok, err := picker.Choose(ctx, m.Snapshot, seat)
		if err != nil {
			return store.Result{}, nil, err
		}
		if !ok {
			if err := m.Pass(); err != nil {
				return store.Result{}, nil, err
			}
			continue
		}
		history = append(history, ply{
			tensor: game.EncodeTensor(&m.Snapshot, seat),
			move:   game.MoveIndex(choice.Move),
			seat:   seat,
		})
		if err := m.Play(choice.Move); err != nil {
			return store.Result{}, nil, err
		}
	}

	rows := make([][]string, 0, len(history))
	for _, h := range history {
		row := make([]string, 0, rowCols)
		for _, v := range h.tensor {
			row = append(row, strconv.Itoa(int(v)))
		}
		row = append(row,
			strconv.Itoa(h.move),
			strconv.Itoa(h.seat),
			strconv.Itoa(outcome(m.Winners, h.seat)),
			m.ID,
		)
		rows = append(rows, row)
	}

	res := store.Result{
		MatchID:  m.ID,
		Seed:     seed,
		Seats:    seatsKey(seats),
		Plies:    m.Plies,
		Playable: m.Report.Playable,
		Repaired: m.Report.Repaired > 0,
		Scores:   m.Snapshot.Scores,
		Winners:  m.Winners,
		Duration: time.Since(began),
	}
	return res, rows, nil
}

// outcome is +1 for a sole winner, 0 for a shared win and -1 otherwise.
func outcome(winners []int, seat int) int {
	for _, w := range winners {
		if w == seat {
			if len(winners) == 1 {
				return 1
			}
			return 0
		}
	}
	return -1
}

func summarize(db *store.DB, ds *dataset, cache *ai.Cache, games, plies int64, elapsed time.Duration) error {
	ctx := context.Background()
	total, err := db.Count(ctx)
	if err != nil {
		return err
	}
	wins, err := db.WinsBySeat(ctx)
	if err != nil {
		return err
	}

	attrs := []any{
		"games", humanize.Comma(games),
		"plies", humanize.Comma(plies),
		"ledger_total", humanize.Comma(int64(total)),
		"wins_by_seat", wins,
		"elapsed", elapsed.Round(time.Millisecond),
	}
	if games > 0 {
		attrs = append(attrs, "per_game", (elapsed / time.Duration(games)).Round(time.Millisecond))
	}
	if ds != nil {
		attrs = append(attrs, "rows", humanize.Comma(ds.rows.Load()))
		if size, err := ds.Size(); err == nil {
			attrs = append(attrs, "dataset_size", humanize.Bytes(uint64(size)))
		}
	}
	slog.Info("selfplay finished", attrs...)
	slog.Info(cache.String())
	return nil
}

// ───── dataset ─────

type dataset struct {
	mu   sync.Mutex
	f    *os.File
	w    *csv.Writer
	rows atomic.Int64
}

func openDataset(path string) (*dataset, error) {
	kept, err := repairCSV(path, rowCols)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	slog.Info("dataset opened", "path", path, "existing_rows", humanize.Comma(int64(kept)))
	return &dataset{f: f, w: csv.NewWriter(f)}, nil
}

// Write appends one game's rows and flushes them together.
func (d *dataset) Write(rows [][]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.w.WriteAll(rows); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	d.rows.Add(int64(len(rows)))
	return nil
}

func (d *dataset) Size() (int64, error) {
	fi, err := d.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func (d *dataset) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.w.Flush()
	if err := d.w.Error(); err != nil {
		d.f.Close()
		return err
	}
	return d.f.Close()
}

// repairCSV drops a torn last line left by an interrupted run and
// returns the number of complete rows.
func repairCSV(path string, expectCols int) (int, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return 0, fmt.Errorf("repair open: %w", err)
	}
	defer f.Close()

	var offset int64
	rdr := bufio.NewReader(f)
	lines := 0
	torn := false
	for {
		line, err := rdr.ReadBytes('\n')
		if err == io.EOF {
			torn = len(line) > 0
			break
		} else if err != nil {
			return 0, fmt.Errorf("read csv: %w", err)
		}
		if countCSVColumns(line) != expectCols {
			torn = true
			break
		}
		offset += int64(len(line))
		lines++
	}
	if torn {
		if err := f.Truncate(offset); err != nil {
			return 0, fmt.Errorf("truncate: %w", err)
		}
		slog.Warn("dropped torn dataset tail", "offset", offset, "rows", lines)
	}
	return lines, nil
}

func countCSVColumns(b []byte) int {
	n := 1
	for _, c := range b {
		if c == ',' {
			n++
		}
	}
	return n
}
