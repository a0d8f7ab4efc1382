// Package seed provides the sources a sketch draws its per-row hash seeds from.
package seed

import (
	"math/rand/v2"
	"sync"
)

// Source yields seed material. *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Uint64() uint64
}

type runtimeSource struct{}

func (runtimeSource) Uint64() uint64 {
	return rand.Uint64()
}

// Random returns the non-deterministic default source backed by the
// math/rand/v2 runtime generator. Two sketches built at the same instant still
// get uncorrelated seeds.
func Random() Source {
	return runtimeSource{}
}

// New returns a deterministic PCG source. Equal values give equal sequences.
func New(value uint64) Source {
	return rand.New(rand.NewPCG(value, value^0x9e3779b97f4a7c15))
}

// Fixed hands out an explicit list of seeds in order and wraps around when exhausted.
// A sketch draws 2*depth seeds, so a shorter list repeats seeds across rows and
// degrades the estimates. Callers should pass exactly 2*depth values.
type Fixed struct {
	mu    sync.Mutex
	seeds []uint64
	pos   int
}

// NewFixed copies seeds so later changes to the caller's slice are not observed.
// An empty list yields zeros.
func NewFixed(seeds ...uint64) *Fixed {
	return &Fixed{seeds: append([]uint64(nil), seeds...)}
}

func (f *Fixed) Uint64() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.seeds) == 0 {
		return 0
	}
	v := f.seeds[f.pos%len(f.seeds)]
	f.pos++
	return v
}
