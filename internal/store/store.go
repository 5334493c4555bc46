// Package store persists pipeline run history behind a driver-agnostic
// interface, with SQLite and Postgres implementations.
package store

import (
	"context"

	"github.com/investor-alpha/holdings-cli/internal/model"
)

// RunFilter specifies criteria for listing pipeline runs.
type RunFilter struct {
	Fund   string          `json:"fund,omitempty"`
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
}

// Store defines the persistence interface for pipeline run history.
type Store interface {
	// RecordRun persists one per-fund pipeline iteration, filling in the
	// run's ID and CreatedAt.
	RecordRun(ctx context.Context, run *model.PipelineRun) error

	// ListRuns returns runs matching the filter, most recent first.
	ListRuns(ctx context.Context, filter RunFilter) ([]model.PipelineRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
