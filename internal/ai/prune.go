// internal/ai/prune.go
package ai

import "sort"

// keepCount returns how many of n ranked candidates survive pruning:
// clamp(MinKeep, n*KeepRatio, MaxKeep), never more than n.
func keepCount(n int, cfg Config) int {
	keep := int(float64(n) * cfg.KeepRatio)
	if keep < cfg.MinKeep {
		keep = cfg.MinKeep
	}
	if cfg.MaxKeep > 0 && keep > cfg.MaxKeep {
		keep = cfg.MaxKeep
	}
	if keep > n {
		keep = n
	}
	if keep < 1 && n > 0 {
		keep = 1
	}
	return keep
}

// rank sorts candidates best first and drops the tail. Equal values keep
// move generation order.
func rank(cands []Choice, cfg Config) []Choice {
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].Value > cands[j].Value })
	return cands[:keepCount(len(cands), cfg)]
}
