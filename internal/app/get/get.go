package get

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/storage"
)

// runIDLen is the length of an encoded run ULID.
const runIDLen = 26

// ServiceConfig is the configuration for the get service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Get"})

	return nil
}

// Service retrieves recorded runs from history.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new get service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the get request parameters.
type Request struct {
	// ID is the run to retrieve, a full ID or a unique ID prefix. Empty
	// means the most recent run.
	ID string
}

// Run retrieves a single run, by ID, unique ID prefix, or the most recent one.
func (s *Service) Run(ctx context.Context, req Request) (*model.Run, error) {
	if req.ID == "" {
		s.logger.Debugf("Getting last run")

		gotRun, err := s.repo.GetLastRun(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not get last run: %w", err)
		}
		return gotRun, nil
	}

	s.logger.Debugf("Getting run %s", req.ID)

	gotRun, err := s.repo.GetRun(ctx, req.ID)
	if err == nil {
		return gotRun, nil
	}
	if !errors.Is(err, model.ErrNotFound) || len(req.ID) >= runIDLen {
		return nil, fmt.Errorf("could not get run: %w", err)
	}

	return s.getByPrefix(ctx, req.ID)
}

// getByPrefix resolves a short ID against the recorded runs. It fails when
// the prefix matches more than one run.
func (s *Service) getByPrefix(ctx context.Context, prefix string) (*model.Run, error) {
	runs, err := s.repo.ListRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list runs: %w", err)
	}

	var match *model.Run
	for i := range runs {
		if !strings.HasPrefix(runs[i].ID, prefix) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("run ID prefix %q is ambiguous: %w", prefix, model.ErrNotValid)
		}
		match = &runs[i]
	}

	if match == nil {
		return nil, fmt.Errorf("no run with ID prefix %q: %w", prefix, model.ErrNotFound)
	}

	return match, nil
}
