// Package entropy provides the explicit random streams threaded through world
// generation, construction and event rolls.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// Source is the subset of *rand.Rand the simulation draws from. Every draw
// advances the stream, so call order determines replay.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// New returns a deterministic stream for the given seed. A zero seed is
// replaced with one from crypto/rand.
func New(seed int64) *mrand.Rand {
	if seed == 0 {
		seed = RandomSeed()
	}
	return mrand.New(mrand.NewSource(seed))
}

// RandomSeed returns a non-zero seed from crypto/rand.
func RandomSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen.
		return 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		return 1
	}
	return seed
}

// Counter wraps a Source and counts draws.
type Counter struct {
	Src   Source
	Draws int
}

func (c *Counter) Intn(n int) int {
	c.Draws++
	return c.Src.Intn(n)
}

func (c *Counter) Float64() float64 {
	c.Draws++
	return c.Src.Float64()
}
