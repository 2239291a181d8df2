package repository

import (
	"context"
	"errors"

	"switchmap/internal/domain"
)

// ErrNotFound is returned when the requested run does not exist
var ErrNotFound = errors.New("run not found")

// RunStore defines the interface for discovery run persistence
type RunStore interface {
	// SaveRun persists a finished run with its hosts and links
	SaveRun(ctx context.Context, run *domain.DiscoveryRun) error
	// GetRun retrieves a single run by id, ErrNotFound if absent
	GetRun(ctx context.Context, id string) (*domain.DiscoveryRun, error)
	// LatestRun retrieves the most recently finished run, ErrNotFound when
	// no run has been stored yet
	LatestRun(ctx context.Context) (*domain.DiscoveryRun, error)
	// ListRuns returns run summaries newest first, at most limit entries
	ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)
	// PruneRuns deletes all but the keep most recent runs and reports how
	// many were removed
	PruneRuns(ctx context.Context, keep int) (int, error)

	// Close releases resources
	Close() error
}
