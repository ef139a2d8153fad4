// internal/ai/cache.go
package ai

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"summoning_go/internal/game"
)

// ------------------------------------------------------------
//  Snapshot hashing: one random key per cell, mixed with its state
// ------------------------------------------------------------

// Hasher turns a snapshot into a 64-bit key. Two hashers built from the
// same seed agree on every snapshot.
type Hasher struct {
	keys [game.Cells]uint64
}

// NewHasher draws the per-cell keys from seed.
func NewHasher(seed int64) *Hasher {
	r := rand.New(rand.NewSource(seed))
	h := &Hasher{}
	for i := range h.keys {
		h.keys[i] = r.Uint64()
	}
	return h
}

// Hash combines every on-board cell's contents, owner and power.
func (h *Hasher) Hash(s *game.GameSnapshot) uint64 {
	var sum uint64
	for i := game.Index(0); i < game.Cells; i++ {
		c := s.Cell(i)
		if c.Contents == game.NotInMap {
			continue
		}
		state := uint64(c.Contents)<<56 | uint64(c.Owner)<<48 | uint64(uint32(c.Power))
		sum ^= mix(h.keys[i] ^ state)
	}
	return sum
}

// mix is the splitmix64 finalizer.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// ------------------------------------------------------------
//  Evaluation cache
// ------------------------------------------------------------

const cacheShards = 256

type shard struct {
	mu sync.Mutex
	m  map[uint64][game.MaxPlayers]int64
}

// Cache memoizes Evaluate results by snapshot hash. It is safe for
// concurrent use; each shard is cleared once it holds perShard entries.
type Cache struct {
	hasher   *Hasher
	perShard int
	shards   [cacheShards]shard

	probes atomic.Uint64
	hits   atomic.Uint64
}

// NewCache returns a cache holding roughly size entries.
func NewCache(size int, seed int64) *Cache {
	per := size / cacheShards
	if per < 1 {
		per = 1
	}
	c := &Cache{hasher: NewHasher(seed), perShard: per}
	for i := range c.shards {
		c.shards[i].m = make(map[uint64][game.MaxPlayers]int64)
	}
	return c
}

// Evaluate returns game.Evaluate(s), from the cache when possible.
// A nil cache always evaluates.
func (c *Cache) Evaluate(s *game.GameSnapshot) [game.MaxPlayers]int64 {
	if c == nil {
		return game.Evaluate(s)
	}
	key := c.hasher.Hash(s)
	sh := &c.shards[key%cacheShards]

	c.probes.Add(1)
	sh.mu.Lock()
	v, ok := sh.m[key]
	sh.mu.Unlock()
	if ok {
		c.hits.Add(1)
		return v
	}

	v = game.Evaluate(s)
	sh.mu.Lock()
	if len(sh.m) >= c.perShard {
		clear(sh.m)
	}
	sh.m[key] = v
	sh.mu.Unlock()
	return v
}

// Stats reports probe and hit counts.
func (c *Cache) Stats() (probes, hits uint64, hitRate float64) {
	probes = c.probes.Load()
	hits = c.hits.Load()
	if probes > 0 {
		hitRate = float64(hits) / float64(probes) * 100
	}
	return
}

func (c *Cache) String() string {
	probes, hits, rate := c.Stats()
	return fmt.Sprintf("cache probes: %d, hits: %d, hit rate: %.2f%%", probes, hits, rate)
}
