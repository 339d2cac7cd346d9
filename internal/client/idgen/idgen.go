// Package idgen produces opaque identifiers for CV documents and their rows.
package idgen

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator returns a new unique identifier on every call.
type Generator interface {
	NewID() string
}

// UUID generates random (version 4) UUID strings.
type UUID struct{}

func (UUID) NewID() string { return uuid.NewString() }

// Sequence yields prefix-1, prefix-2, ... and is safe for concurrent use.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}
