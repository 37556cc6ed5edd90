package run

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/runcap/internal/capture"
	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/spawn"
	"github.com/slok/runcap/internal/storage"
)

// ServiceConfig is the configuration for the run service.
type ServiceConfig struct {
	Spawner    spawn.Spawner
	Repository storage.Repository
	// Capturer collects the spawned process channels. If missing a default
	// one is created.
	Capturer *capture.Service
	// Engine labels the recorded runs with the engine that spawned them.
	Engine model.EngineType
	// HistoryMaxRuns caps how many runs are kept in history, oldest runs
	// are pruned first. 0 means unlimited.
	HistoryMaxRuns int
	Logger         log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Spawner == nil {
		return fmt.Errorf("spawner is required")
	}

	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}

	if c.Engine == "" {
		c.Engine = model.EngineLocal
	}

	if c.HistoryMaxRuns < 0 {
		return fmt.Errorf("history max runs can't be negative")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Run"})

	if c.Capturer == nil {
		capturer, err := capture.NewService(capture.ServiceConfig{Logger: c.Logger})
		if err != nil {
			return fmt.Errorf("could not create capture service: %w", err)
		}
		c.Capturer = capturer
	}

	return nil
}

// Service spawns commands and records their completion in history.
type Service struct {
	spawner        spawn.Spawner
	capturer       *capture.Service
	repo           storage.Repository
	engine         model.EngineType
	historyMaxRuns int
	logger         log.Logger
}

// NewService creates a new run service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		spawner:        cfg.Spawner,
		capturer:       cfg.Capturer,
		repo:           cfg.Repository,
		engine:         cfg.Engine,
		historyMaxRuns: cfg.HistoryMaxRuns,
		logger:         cfg.Logger,
	}, nil
}

// Request represents the run request parameters.
type Request struct {
	// Spec is the command to spawn and capture.
	Spec model.CommandSpec
	// NoStore skips recording the run in history.
	NoStore bool
}

// Run spawns the command, waits for it to finish and records the captured
// output and exit code as a new run in history.
func (s *Service) Run(ctx context.Context, req Request) (*model.Run, error) {
	// 1. Validate the command.
	if err := req.Spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command: %w", err)
	}

	s.logger.Debugf("Spawning command: %v", req.Spec.Command)

	// 2. Spawn the process.
	start := time.Now()
	handle, err := s.spawner.Spawn(ctx, req.Spec)
	if err != nil {
		return nil, fmt.Errorf("could not spawn command: %w", err)
	}

	// 3. Drain its channels into a completion record.
	record, err := s.capturer.Capture(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("could not capture command output: %w", err)
	}

	run := model.Run{
		// Monotonic ULIDs keep runs created in the same instant sortable.
		ID:        ulid.Make().String(),
		Command:   req.Spec.Command,
		Engine:    s.engine,
		Record:    *record,
		CreatedAt: start.UTC(),
		Duration:  time.Since(start),
	}

	// 4. Record the run in history.
	if !req.NoStore {
		if err := s.repo.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("could not record run: %w", err)
		}
		s.pruneHistory(ctx)
	}

	s.logger.Debugf("Command finished in %s", run.Duration)

	return &run, nil
}

// pruneHistory removes the oldest runs over the configured history cap.
// Pruning is best effort, failures are logged and never fail the run.
func (s *Service) pruneHistory(ctx context.Context) {
	if s.historyMaxRuns <= 0 {
		return
	}

	runs, err := s.repo.ListRuns(ctx)
	if err != nil {
		s.logger.Warningf("Could not list runs to prune history: %v", err)
		return
	}

	if len(runs) <= s.historyMaxRuns {
		return
	}

	// ListRuns returns newest first, everything past the cap goes.
	for _, old := range runs[s.historyMaxRuns:] {
		if err := s.repo.DeleteRun(ctx, old.ID); err != nil {
			s.logger.Warningf("Could not prune run %s: %v", old.ID, err)
			continue
		}
		s.logger.Debugf("Pruned run %s from history", old.ID)
	}
}
