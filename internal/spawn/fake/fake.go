package fake

import (
	"context"
	"fmt"
	"strings"

	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/model"
)

// EngineConfig is the configuration for the fake engine.
type EngineConfig struct {
	Logger log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "engine.Fake"})
	return nil
}

// Engine is a fake implementation of the spawn.Spawner interface.
// It fabricates process output without starting real processes, so it can be
// used in tests and demos that must not touch the host.
type Engine struct {
	logger log.Logger
}

// NewEngine creates a new fake engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		logger: cfg.Logger,
	}, nil
}

// Spawn fabricates a finished process. Stdout carries a fake output line for
// the command, stderr is empty and the exit status is always 0.
func (e *Engine) Spawn(ctx context.Context, spec model.CommandSpec) (model.ProcessHandle, error) {
	if err := spec.Validate(); err != nil {
		return model.ProcessHandle{}, fmt.Errorf("invalid command spec: %w", err)
	}

	cmdLine := spec.String()
	stdout := fmt.Sprintf("fake output for: %s\n", cmdLine)

	exitC := make(chan int, 1)
	exitC <- 0
	close(exitC)

	e.logger.Debugf("Spawned fake command %q", cmdLine)

	handle := model.ProcessHandle{
		Stdout: &model.ByteStream{
			Reader: strings.NewReader(stdout),
			Origin: model.Origin{Stream: model.StreamStdout, Command: cmdLine},
		},
		Exit: exitC,
	}

	// A terminal merges both streams, without one the handle carries an empty
	// stderr channel like a silent process would.
	if !spec.Tty {
		handle.Stderr = &model.ByteStream{
			Reader: strings.NewReader(""),
			Origin: model.Origin{Stream: model.StreamStderr, Command: cmdLine},
		}
	}

	return handle, nil
}

// Check performs preflight checks for the fake engine, it is always ready.
func (e *Engine) Check(ctx context.Context) []model.CheckResult {
	return []model.CheckResult{
		{
			ID:      "fake_engine",
			Message: "Fake engine is always ready",
			Status:  model.CheckStatusOK,
		},
	}
}
