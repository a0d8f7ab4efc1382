package stream

import (
	"github.com/Borislavv/go-count-sketch/pkg/sketch"
	"sync"
)

// Applier consumes parsed records.
type Applier interface {
	Apply(rec Record)
}

type direct struct {
	sketch *sketch.CountSketch
}

// Direct applies records to s without locking. Only safe when the caller is
// the sole user of s, as the Ingestor writer is.
func Direct(s *sketch.CountSketch) Applier {
	return direct{sketch: s}
}

func (d direct) Apply(rec Record) {
	rec.ApplyTo(d.sketch)
}

// Guarded serializes writers and lets readers run in parallel.
type Guarded struct {
	mu     sync.RWMutex
	sketch *sketch.CountSketch
}

func NewGuarded(s *sketch.CountSketch) *Guarded {
	return &Guarded{sketch: s}
}

func (g *Guarded) Apply(rec Record) {
	g.mu.Lock()
	rec.ApplyTo(g.sketch)
	g.mu.Unlock()
}

func (g *Guarded) UpdateString(key string, weight int64) {
	g.mu.Lock()
	g.sketch.UpdateString(key, weight)
	g.mu.Unlock()
}

func (g *Guarded) UpdateInt(item int64, weight int64) {
	g.mu.Lock()
	g.sketch.UpdateInt(item, weight)
	g.mu.Unlock()
}

func (g *Guarded) UpdateDomain(value uint64, weight int64) {
	g.mu.Lock()
	g.sketch.UpdateDomain(value, weight)
	g.mu.Unlock()
}

func (g *Guarded) EstimateString(key string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sketch.EstimateString(key)
}

func (g *Guarded) EstimateInt(item int64) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sketch.EstimateInt(item)
}

func (g *Guarded) EstimateDomain(value uint64) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sketch.EstimateDomain(value)
}

// Sketch exposes the wrapped sketch for its immutable accessors (Depth, Width, Domain...).
// Updating it directly bypasses the lock.
func (g *Guarded) Sketch() *sketch.CountSketch {
	return g.sketch
}
