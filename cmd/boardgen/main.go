// Command boardgen generates boards and prints them with their
// generation report. With -count above one it prints only aggregate
// statistics, which helps when tuning the generator settings.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"summoning_go/internal/config"
	"summoning_go/internal/game"
)

func main() {
	cfgPath := flag.String("config", "summoning.yaml", "YAML config file")
	seatsArg := flag.String("players", "0,1", "comma separated active seats (0-3)")
	seed := flag.Int64("seed", 0, "seed (0 = clock)")
	mode := flag.String("obstacles", "", "uniform or noise (empty = config)")
	count := flag.Int("count", 1, "boards to generate")
	flag.Parse()

	cfg, err := config.LoadEnv(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Generator.Obstacles = *mode
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	mask, err := parseMask(*seatsArg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	if *count <= 1 {
		r := rand.New(rand.NewSource(*seed))
		snap, rep, err := game.GenerateBoard(mask, cfg.GenConfig(), r)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("seed %d\n", *seed)
		render(os.Stdout, &snap)
		printReport(os.Stdout, rep, mask)
		return
	}

	st := survey(mask, cfg.GenConfig(), *seed, *count)
	st.print(os.Stdout)
}

func parseMask(s string) (game.ActiveMask, error) {
	var seats []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil || p < 0 || p >= game.MaxPlayers {
			return 0, fmt.Errorf("bad seat %q", part)
		}
		seats = append(seats, p)
	}
	if len(seats) == 0 {
		return 0, game.ErrNoActivePlayers
	}
	return game.MaskOf(seats...), nil
}

// render draws the board with north up. Odd columns sit half a line
// lower than even ones.
func render(w io.Writer, s *game.GameSnapshot) {
	lines := make([][]string, 2*game.Height)
	for l := range lines {
		lines[l] = make([]string, game.Width)
		for c := range lines[l] {
			lines[l][c] = "    "
		}
	}
	for row := 0; row < game.Height; row++ {
		for col := 0; col < game.Width; col++ {
			line := 2*(game.Height-1-row) + col%2
			lines[line][col] = cellGlyph(s.Cell(game.MapIndex(row, col)))
		}
	}
	for _, l := range lines {
		fmt.Fprintln(w, strings.TrimRight(strings.Join(l, ""), " "))
	}
}

func cellGlyph(c game.Cell) string {
	switch {
	case c.Contents == game.NotInMap:
		return "    "
	case c.Contents == game.Blocked:
		return " ## "
	case c.Owner != 0:
		return fmt.Sprintf("%c%-3d", 'A'+rune(c.Owner-1), c.Power)
	}
	return " .  "
}

func printReport(w io.Writer, rep game.GenReport, mask game.ActiveMask) {
	fmt.Fprintf(w, "playable %d (initial %d, target %d, repaired %d)\n",
		rep.Playable, rep.Initial, rep.Target, rep.Repaired)
	fmt.Fprintf(w, "erosion attempts %s", humanize.Comma(int64(rep.Attempts)))
	if rep.Exhausted {
		fmt.Fprint(w, " (exhausted)")
	}
	fmt.Fprintln(w)
	for _, p := range mask.Players() {
		i := rep.Starts[p]
		fmt.Fprintf(w, "%s seat starts at row %d col %d\n", humanize.Ordinal(p+1), i.Row(), i.Col())
	}
}

type stats struct {
	boards    int
	failed    int
	exhausted int
	repaired  int
	playable  int
	attempts  int
	elapsed   time.Duration
}

// survey generates n boards with consecutive seeds.
func survey(mask game.ActiveMask, cfg game.GenConfig, seed int64, n int) stats {
	var st stats
	start := time.Now()
	for k := 0; k < n; k++ {
		r := rand.New(rand.NewSource(seed + int64(k)))
		_, rep, err := game.GenerateBoard(mask, cfg, r)
		if err != nil {
			st.failed++
			continue
		}
		st.boards++
		st.playable += rep.Playable
		st.attempts += rep.Attempts
		if rep.Exhausted {
			st.exhausted++
		}
		if rep.Repaired > 0 {
			st.repaired++
		}
	}
	st.elapsed = time.Since(start)
	return st
}

func (st stats) print(w io.Writer) {
	fmt.Fprintf(w, "boards %s, failed %s, exhausted %s, repaired %s\n",
		humanize.Comma(int64(st.boards)), humanize.Comma(int64(st.failed)),
		humanize.Comma(int64(st.exhausted)), humanize.Comma(int64(st.repaired)))
	if st.boards > 0 {
		fmt.Fprintf(w, "mean playable %.1f, mean attempts %.1f, %s per board\n",
			float64(st.playable)/float64(st.boards),
			float64(st.attempts)/float64(st.boards),
			(st.elapsed / time.Duration(st.boards)).Round(time.Microsecond))
	}
}
