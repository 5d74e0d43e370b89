package repository

import (
	"context"
	"sync"

	"github.com/watchlog/core/internal/domain/entities"
	"github.com/watchlog/core/internal/ports"
)

// MemoryStore holds the collection in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	series []entities.Series
	writes int
}

// NewMemoryStore creates a store seeded with a copy of initial.
func NewMemoryStore(initial ...entities.Series) *MemoryStore {
	return &MemoryStore{series: clone(initial)}
}

var _ ports.SeriesStore = (*MemoryStore)(nil)

func (s *MemoryStore) ReadAll(ctx context.Context) ([]entities.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.series), nil
}

func (s *MemoryStore) WriteAll(ctx context.Context, series []entities.Series) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = clone(series)
	s.writes++
	return nil
}

// Writes reports how many times WriteAll succeeded.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *MemoryStore) Close() error {
	return nil
}

func clone(series []entities.Series) []entities.Series {
	out := make([]entities.Series, len(series))
	copy(out, series)
	return out
}
