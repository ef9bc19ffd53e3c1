// Package chance provides seedable randomness for every probabilistic
// decision in the cult engine.
package chance

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// Roller is the source of randomness the rules draw from.
type Roller interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
}

type lockedRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a goroutine-safe Roller seeded with seed.
func New(seed int64) Roller {
	return &lockedRoller{rng: rand.New(rand.NewSource(seed))}
}

func (r *lockedRoller) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *lockedRoller) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Chance reports true with probability p.
func Chance(r Roller, p float64) bool {
	return r.Float64() < p
}

// Between returns a value in [lo, hi] inclusive.
func Between(r Roller, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Pick returns a random element of pool, or "" for an empty pool.
func Pick(r Roller, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[r.Intn(len(pool))]
}

// Fixed is a Roller that replays scripted values, for tests.
type Fixed struct {
	Ints   []int
	Floats []float64
	i, f   int
}

func (x *Fixed) Intn(n int) int {
	if len(x.Ints) == 0 {
		return 0
	}
	v := x.Ints[x.i%len(x.Ints)]
	x.i++
	if v >= n {
		v = n - 1
	}
	return v
}

func (x *Fixed) Float64() float64 {
	if len(x.Floats) == 0 {
		return 0
	}
	v := x.Floats[x.f%len(x.Floats)]
	x.f++
	return v
}
