// Package memory is the in-process artifact registry: a bounded LRU whose
// entries also expire after a maximum age.
package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"praticai/internal/artifact"
	"praticai/pkg/platform/sentinel"
)

// DefaultSize bounds the number of tracked artifacts.
const DefaultSize = 10_000

// Store is safe for concurrent use.
type Store struct {
	entries *expirable.LRU[uuid.UUID, artifact.Artifact]
}

// New creates a registry holding at most size entries for at most ttl each.
// A zero ttl keeps entries until evicted by size.
func New(size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	return &Store{entries: expirable.NewLRU[uuid.UUID, artifact.Artifact](size, nil, ttl)}
}

func (s *Store) Register(_ context.Context, a artifact.Artifact) error {
	s.entries.Add(a.ID, a)
	return nil
}

func (s *Store) Resolve(_ context.Context, id uuid.UUID) (*artifact.Artifact, error) {
	a, ok := s.entries.Get(id)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &a, nil
}

func (s *Store) Remove(_ context.Context, id uuid.UUID) error {
	s.entries.Remove(id)
	return nil
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	return s.entries.Len()
}
