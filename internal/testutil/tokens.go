package testutil

import (
	"fmt"
	"sync"
)

// FixedTokenGenerator generates the same run token every time.
//
// Thread-safety: FixedTokenGenerator is stateless and safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a generator returning token.
// If token is empty, Generate() returns "test-run-default".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-run-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed token.
//
// Implements catalog.TokenGenerator interface.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}

// SequenceTokenGenerator generates "test-run-0001", "test-run-0002", ...
//
// Unlike catalog.UUIDv7Generator, the sequence can be reset so the same
// test produces identical catalog rows on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceTokenGenerator struct {
	mu  sync.Mutex
	seq int
}

// NewSequenceTokenGenerator creates a generator whose first token is
// "test-run-0001".
func NewSequenceTokenGenerator() *SequenceTokenGenerator {
	return &SequenceTokenGenerator{}
}

// Generate returns the next token in the sequence.
func (g *SequenceTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("test-run-%04d", g.seq)
}

// Reset restarts the sequence at "test-run-0001".
func (g *SequenceTokenGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
