package list

import (
	"context"
	"fmt"

	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/storage"
)

// ServiceConfig is the configuration for the list service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.List"})

	return nil
}

// Service lists recorded runs.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	// Engine is an optional filter to only show runs spawned by this engine.
	Engine *model.EngineType
	// Failed filters to runs that ended with a non-zero or missing exit code.
	Failed bool
	// Limit caps how many runs are returned. 0 means all.
	Limit int
}

// Run lists recorded runs, newest first, with optional filtering.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Run, error) {
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit can't be negative: %w", model.ErrNotValid)
	}

	runs, err := s.repo.ListRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}

	if req.Engine != nil {
		filtered := make([]model.Run, 0, len(runs))
		for _, r := range runs {
			if r.Engine == *req.Engine {
				filtered = append(filtered, r)
			}
		}
		runs = filtered
	}

	if req.Failed {
		filtered := make([]model.Run, 0, len(runs))
		for _, r := range runs {
			if r.Record.ExitCode == nil || *r.Record.ExitCode != 0 {
				filtered = append(filtered, r)
			}
		}
		runs = filtered
	}

	if req.Limit > 0 && len(runs) > req.Limit {
		runs = runs[:req.Limit]
	}

	s.logger.Debugf("Found %d runs", len(runs))
	return runs, nil
}
