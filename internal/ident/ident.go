// Package ident supplies composition identifiers for published assets.
//
// Every publish replaces the authoring tool's 32-character composition id
// with a fresh one, so two exports of the same authoring file never share
// a composition at runtime.
package ident

import (
	"sync"

	"github.com/google/uuid"
)

// Generator produces composition identifiers.
// Identifiers must be unique with overwhelming probability across calls.
type Generator interface {
	Generate() string
}

// UUIDGenerator generates random UUIDv4 identifiers.
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// Generate returns a new hyphenated UUIDv4 string.
//
// Panics if the system random source fails.
func (UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewRandom()).String()
}

// FixedGenerator returns predetermined identifiers for tests.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
//
//	gen := NewFixedGenerator("id-1", "id-2")
//	gen.Generate() // "id-1"
//	gen.Generate() // "id-2"
//	gen.Generate() // panic: all ids exhausted
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined id.
//
// Panics once every id has been handed out; a test asked for more
// publishes than it set up.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Remaining reports how many ids have not been handed out yet.
func (g *FixedGenerator) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.ids) - g.idx
}
