// Board generation: carve a disk, scatter obstacles, then erode the
// edges one cell at a time without ever disconnecting the board.
package game

import (
	"fmt"
	"log/slog"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// ObstacleMode selects how obstacles are scattered over the disk.
type ObstacleMode string

const (
	// ObstaclesUniform blocks each cell independently with a fixed chance.
	ObstaclesUniform ObstacleMode = "uniform"
	// ObstaclesNoise blocks cells where smooth noise runs high, giving
	// clustered obstacles.
	ObstaclesNoise ObstacleMode = "noise"
)

// Rand is the randomness a generator needs. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Int63() int64
	Shuffle(n int, swap func(i, j int))
}

// GenConfig holds board generation parameters.
type GenConfig struct {
	DiskRadius      float64      // cells whose center lies closer than this are candidates
	BlockNum        int          // obstacle chance numerator (uniform mode)
	BlockDen        int          // obstacle chance denominator (uniform mode)
	CellsPerPlayer  int          // playable cells kept per active player
	ErosionAttempts int          // erosion tries before giving up
	StartPower      int          // power on each starting cell
	Obstacles       ObstacleMode // uniform or noise
	NoiseFrequency  float64      // noise sampling frequency (noise mode)
	NoiseThreshold  float64      // normalized noise above this blocks (noise mode)
}

// DefaultGenConfig returns the standard parameters.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		DiskRadius:      8.0,
		BlockNum:        1,
		BlockDen:        8,
		CellsPerPlayer:  16,
		ErosionAttempts: 1000,
		StartPower:      16,
		Obstacles:       ObstaclesUniform,
		NoiseFrequency:  0.35,
		NoiseThreshold:  0.72,
	}
}

// GenReport describes how generation went.
type GenReport struct {
	Initial   int  // playable cells after obstacles
	Target    int  // playable cells wanted
	Playable  int  // playable cells at the end
	Attempts  int  // erosion attempts spent
	Repaired  int  // cells blocked to reconnect the initial disk
	Exhausted bool // erosion stopped before reaching Target
	Starts    [MaxPlayers]Index
}

// GenerateBoard builds a connected board sized for the active seats and
// places one starting cell per seat on its edge. All randomness comes
// from rng. An exhausted erosion budget is reported, not returned as an
// error.
func GenerateBoard(mask ActiveMask, cfg GenConfig, rng Rand) (GameSnapshot, GenReport, error) {
	var rep GenReport
	for p := range rep.Starts {
		rep.Starts[p] = Invalid
	}
	players := mask.Count()
	if players == 0 {
		return GameSnapshot{}, rep, ErrNoActivePlayers
	}

	g := NewGrid()
	count := scatter(&g, cfg, rng)
	rep.Initial = count

	// A disk split by obstacles could never pass the reachability check,
	// so keep only its largest region.
	if !g.CheckReachability() {
		rep.Repaired = keepLargestRegion(&g)
		count -= rep.Repaired
		slog.Debug("reconnected board", "blocked", rep.Repaired, "playable", count)
	}

	rep.Target = players * cfg.CellsPerPlayer
	g, count, rep.Attempts = erode(g, count, rep.Target, cfg.ErosionAttempts, rng, nil)
	rep.Playable = count
	if count > rep.Target {
		rep.Exhausted = true
		slog.Warn("board erosion ran out of attempts",
			"playable", count, "target", rep.Target, "attempts", rep.Attempts)
	}

	starts, err := placeStarts(&g, mask, cfg.StartPower, rng)
	if err != nil {
		return GameSnapshot{}, rep, err
	}
	for p, i := range starts {
		rep.Starts[p] = i
	}
	return NewSnapshot(g), rep, nil
}

// scatter marks every disk cell Playable or Blocked and returns the
// number of Playable cells.
func scatter(g *HexGrid, cfg GenConfig, rng Rand) int {
	var noise opensimplex.Noise
	if cfg.Obstacles == ObstaclesNoise {
		noise = opensimplex.NewNormalized(rng.Int63())
	}

	count := 0
	for i := Index(0); i < Cells; i++ {
		if distFromCenter(i) >= cfg.DiskRadius {
			continue
		}
		blocked := false
		switch cfg.Obstacles {
		case ObstaclesNoise:
			x, z := WorldPos(i)
			blocked = noise.Eval2(x*cfg.NoiseFrequency, z*cfg.NoiseFrequency) > cfg.NoiseThreshold
		default:
			blocked = rng.Intn(cfg.BlockDen) < cfg.BlockNum
		}
		if blocked {
			g.cells[i].Contents = Blocked
		} else {
			g.cells[i].Contents = Playable
			count++
		}
	}
	return count
}

// keepLargestRegion blocks every Playable cell outside the largest
// connected region and returns how many were blocked.
func keepLargestRegion(g *HexGrid) int {
	regions := g.components()
	sort.SliceStable(regions, func(a, b int) bool {
		return len(regions[a]) > len(regions[b])
	})
	blocked := 0
	for _, region := range regions[1:] {
		for _, i := range region {
			g.cells[i].Contents = Blocked
			blocked++
		}
	}
	return blocked
}

// erode removes corner cells until count reaches target or attempts run
// out. A removal is tried on a copy and kept only if the copy stays
// connected. onCommit, when set, sees the grid after each kept removal.
func erode(g HexGrid, count, target, attempts int, rng Rand, onCommit func(HexGrid)) (HexGrid, int, int) {
	used := 0
	for count > target && used < attempts {
		used++
		corners := g.EdgeSpacesCorners()
		if len(corners) == 0 {
			break
		}
		pick := corners[rng.Intn(len(corners))]

		trial := g
		trial.cells[pick].Contents = NotInMap
		if !trial.CheckReachability() {
			continue
		}
		g = trial
		count--
		if onCommit != nil {
			onCommit(g)
		}
	}
	return g, count, used
}

// placeStarts gives each active seat, in seat order, a random edge cell
// holding power. It fails when there are fewer edge cells than seats.
func placeStarts(g *HexGrid, mask ActiveMask, power int, rng Rand) (map[int]Index, error) {
	edges := g.EdgeSpaces()
	rng.Shuffle(len(edges), func(a, b int) {
		edges[a], edges[b] = edges[b], edges[a]
	})

	players := mask.Players()
	if len(edges) < len(players) {
		return nil, fmt.Errorf("%w: %d players, %d edge cells", ErrNoStartingPosition, len(players), len(edges))
	}

	starts := make(map[int]Index, len(players))
	for k, p := range players {
		i := edges[k]
		g.cells[i].Owner = uint8(p + 1)
		g.cells[i].Power = power
		starts[p] = i
	}
	return starts, nil
}
