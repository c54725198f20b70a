// Package repository defines the session history store interface and
// errors.
package repository

import (
	"context"

	"github.com/asanakit/surya/internal/domain/types"
)

// Store keeps summaries of completed sessions for history queries.
// Implementations are in-memory; durable persistence of session data
// belongs to external collaborators.
type Store interface {
	// Save records a completed session summary.
	Save(ctx context.Context, summary types.SessionSummary) error

	// Recent returns up to n summaries, newest first.
	Recent(ctx context.Context, n int) ([]types.SessionSummary, error)

	// Best returns up to n summaries ordered by average alignment
	// descending.
	Best(ctx context.Context, n int) ([]types.SessionSummary, error)

	// Count returns the number of stored summaries.
	Count(ctx context.Context) int
}
