package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/asanakit/surya/internal/domain/types"
)

// Default bound on retained summaries.
const defaultCapacity = 500

// MemoryStore implements Store with a bounded in-memory buffer.
// Oldest summaries are evicted once capacity is exceeded.
type MemoryStore struct {
	mu        sync.RWMutex
	summaries []types.SessionSummary
	capacity  int
}

// NewMemoryStore creates a memory store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save records a summary, evicting the oldest beyond capacity.
func (s *MemoryStore) Save(_ context.Context, summary types.SessionSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries = append(s.summaries, summary)
	if len(s.summaries) > s.capacity {
		s.summaries = s.summaries[1:]
	}
	return nil
}

// Recent returns up to n summaries, newest first.
func (s *MemoryStore) Recent(_ context.Context, n int) ([]types.SessionSummary, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.SessionSummary, 0, n)
	for i := len(s.summaries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.summaries[i])
	}
	return out, nil
}

// Best returns up to n summaries ordered by average alignment
// descending; ties break toward the more recent session.
func (s *MemoryStore) Best(_ context.Context, n int) ([]types.SessionSummary, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	ranked := append([]types.SessionSummary(nil), s.summaries...)
	s.mu.RUnlock()

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].AverageAlignment != ranked[j].AverageAlignment {
			return ranked[i].AverageAlignment > ranked[j].AverageAlignment
		}
		return ranked[i].EndedAt.After(ranked[j].EndedAt)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// Count returns the number of stored summaries.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.summaries)
}
