// Package store persists pipeline run history locally, with sqlite and
// postgres backends. History is best-effort bookkeeping: a store failure
// must never fail a pipeline run.
package store

import (
	"context"

	"github.com/flashfusion/dealflow-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the run-history persistence interface.
type Store interface {
	CreateRun(ctx context.Context, params model.RunParams) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, report *model.RunReport) error
	FailRun(ctx context.Context, runID string, reason string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
