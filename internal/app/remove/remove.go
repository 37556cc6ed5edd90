package remove

import (
	"context"
	"fmt"

	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/storage"
)

// ServiceConfig is the configuration for the remove service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Remove"})

	return nil
}

// Service removes runs from history.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new remove service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the remove request parameters.
type Request struct {
	// ID is the run to remove.
	ID string
	// All removes every recorded run instead of a single one.
	All bool
}

// Run removes a single run by ID, or the whole history when All is set.
// It returns how many runs were removed.
func (s *Service) Run(ctx context.Context, req Request) (int, error) {
	if req.All {
		if req.ID != "" {
			return 0, fmt.Errorf("can't remove by ID and all at once: %w", model.ErrNotValid)
		}

		removed, err := s.repo.DeleteAllRuns(ctx)
		if err != nil {
			return 0, fmt.Errorf("could not remove runs: %w", err)
		}

		s.logger.Infof("Removed %d runs from history", removed)
		return removed, nil
	}

	if req.ID == "" {
		return 0, fmt.Errorf("a run ID is required: %w", model.ErrNotValid)
	}

	if err := s.repo.DeleteRun(ctx, req.ID); err != nil {
		return 0, fmt.Errorf("could not remove run: %w", err)
	}

	s.logger.Infof("Removed run %s from history", req.ID)
	return 1, nil
}
