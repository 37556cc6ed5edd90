package storage

import (
	"context"

	"github.com/slok/runcap/internal/model"
)

// Repository is the interface for run persistence. Runs are immutable once
// recorded, so there is no update operation.
type Repository interface {
	CreateRun(ctx context.Context, r model.Run) error
	GetRun(ctx context.Context, id string) (*model.Run, error)
	// GetLastRun returns the most recently recorded run.
	GetLastRun(ctx context.Context) (*model.Run, error)
	// ListRuns returns all runs, newest first.
	ListRuns(ctx context.Context) ([]model.Run, error)
	DeleteRun(ctx context.Context, id string) error
	// DeleteAllRuns removes every recorded run and returns how many were
	// removed.
	DeleteAllRuns(ctx context.Context) (int, error)
}
