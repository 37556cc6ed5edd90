package lib

import (
	"context"
	"fmt"
	"os/exec"

	apprun "github.com/slok/runcap/internal/app/run"
	"github.com/slok/runcap/internal/capture"
	"github.com/slok/runcap/internal/spawn/local"
)

// Run spawns a command with the configured engine, captures its complete
// output and records the run in history.
//
// The command must be non-empty. Use opts to configure working directory,
// environment variables, stdin and TTY allocation. Pass nil opts for
// defaults.
//
// The returned [Run] carries the full [CompletionRecord]: whole stdout,
// whole stderr and the exit code. A non-zero exit code is not an error,
// the error return covers spawn and capture failures only.
//
// Returns [ErrNotValid] if the command is empty or has empty arguments.
func (c *Client) Run(ctx context.Context, command []string, opts *RunOpts) (*Run, error) {
	spawner, err := c.newSpawner()
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create engine: %w", err))
	}

	svc, err := apprun.NewService(apprun.ServiceConfig{
		Spawner:        spawner,
		Repository:     c.repo,
		Engine:         c.engineType.internal(),
		HistoryMaxRuns: c.historyMaxRuns,
		Logger:         c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	result, err := svc.Run(ctx, apprun.Request{
		Spec:    toInternalSpec(command, opts, c.image),
		NoStore: opts != nil && opts.NoStore,
	})
	if err != nil {
		return nil, mapError(err)
	}

	run := fromInternalRun(*result)
	return &run, nil
}

// Capture drains the output channels of an already spawned process into a
// [CompletionRecord], without spawning anything itself.
//
// Every channel present on the handle is consumed exactly once: stdout and
// stderr until end of stream, the exit channel until closed (the last value
// wins when there is more than one). Capture blocks until every present
// channel is settled, a process that never terminates must be handled by
// the caller, for example by closing its output pipes.
//
// A nil handle field simply produces no entry in the record. The run is not
// stored in history.
//
// Returns [ErrNotProcessOutput] if the handle carries no channels at all.
func (c *Client) Capture(ctx context.Context, handle ProcessHandle) (*CompletionRecord, error) {
	svc, err := capture.NewService(capture.ServiceConfig{
		Logger: c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	record, err := svc.Capture(ctx, toInternalHandle(handle))
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalRecord(*record)
	return &result, nil
}

// CaptureCommand starts a caller-prepared command and captures its complete
// output, bypassing the configured engine.
//
// This is the bridge for processes the SDK did not build: set up the
// [exec.Cmd] with whatever the host needs (credentials, process attributes,
// extra files) and hand it over. The command must not be started yet nor
// have its Stdout or Stderr assigned, CaptureCommand wires those itself.
//
// The run is not stored in history.
//
// Returns [ErrNotValid] if the command is nil, already started or has its
// output streams assigned.
func (c *Client) CaptureCommand(ctx context.Context, cmd *exec.Cmd) (*CompletionRecord, error) {
	handle, err := local.Wrap(cmd)
	if err != nil {
		return nil, mapError(err)
	}

	svc, err := capture.NewService(capture.ServiceConfig{
		Logger: c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	record, err := svc.Capture(ctx, handle)
	if err != nil {
		return nil, mapError(err)
	}

	result := fromInternalRecord(*record)
	return &result, nil
}
