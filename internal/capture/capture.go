package capture

import (
	"context"
	"fmt"

	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/model"
)

// ServiceConfig is the configuration of the capture service.
type ServiceConfig struct {
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "capture.Service"})

	return nil
}

// Service drains the output channels of an already spawned process into a
// single completion record.
//
// A child that writes past the OS pipe buffer on stdout and stderr at the
// same time deadlocks against any reader that drains the pipes one after
// the other: the child blocks writing the unread pipe while the reader
// blocks waiting for the other one to end. The service avoids that by
// draining stderr on a dedicated goroutine while the calling goroutine
// drains stdout, so both pipes always have a reader.
type Service struct {
	logger log.Logger
}

// NewService returns a new capture service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		logger: cfg.Logger,
	}, nil
}

// stderrOutcome is what the stderr worker reports back over its channel:
// a classified value, a read error, or an abnormal termination diagnostic.
type stderrOutcome struct {
	value   model.CapturedValue
	readErr error
	failure string
}

// Capture drains every channel present on the handle to completion and
// assembles the completion record.
//
// Each channel is consumed exactly once. Both stream drains buffer the whole
// stream in memory, so output size translates directly into memory use. The
// context is used for logging only: once started the call cannot be
// cancelled and blocks until every present channel reaches end of stream,
// so a child that never terminates must be dealt with at a higher layer.
//
// There is no partial result: the caller gets either a complete record or a
// single error.
func (s *Service) Capture(ctx context.Context, handle model.ProcessHandle) (*model.CompletionRecord, error) {
	logger := s.logger.WithCtxValues(ctx)

	if handle.Empty() {
		return nil, fmt.Errorf("the value has no process channels, only the output of a spawned command can be captured: %w", model.ErrNotProcessOutput)
	}

	// Give stderr its reader before we block on stdout.
	var outcomeC chan stderrOutcome
	if handle.Stderr != nil {
		outcomeC = make(chan stderrOutcome, 1)
		go drainStderr(*handle.Stderr, outcomeC)
		logger.Debugf("Stderr worker started")
	}

	var stdout *model.CapturedValue
	var stdoutErr error
	if handle.Stdout != nil {
		v, err := drainStream(*handle.Stdout)
		if err != nil {
			// The worker still has to be joined, keep the error for later.
			stdoutErr = err
		} else {
			stdout = &v
			logger.Debugf("Stdout drained (%d bytes, %s)", len(v.Raw()), v.Kind)
		}
	}

	// Join the worker. Every path goes through here so the worker can't
	// outlive the call.
	var stderr *model.CapturedValue
	if outcomeC != nil {
		outcome := <-outcomeC
		switch {
		case stdoutErr != nil:
			// The caller side already failed, the worker outcome is discarded.
		case outcome.failure != "":
			return nil, fmt.Errorf("stderr worker terminated abnormally on %s: %s: %w", handle.Stderr.Origin, outcome.failure, model.ErrWorkerFailed)
		case outcome.readErr != nil:
			return nil, outcome.readErr
		default:
			v := outcome.value
			stderr = &v
			logger.Debugf("Stderr drained (%d bytes, %s)", len(v.Raw()), v.Kind)
		}
	}

	if stdoutErr != nil {
		return nil, stdoutErr
	}

	// Drain every exit status reading, keeping only the last one. A channel
	// that closes without producing values adds no exit code.
	var exitCode *int
	if handle.Exit != nil {
		for code := range handle.Exit {
			code := code
			exitCode = &code
		}
		logger.Debugf("Exit status resolved")
	}

	record := assembleRecord(stdout, stderr, exitCode)

	return &record, nil
}

// drainStderr runs on the worker goroutine. It always reports exactly one
// outcome on outcomeC, turning a panic into an abnormal termination outcome
// instead of unwinding, so the join never hangs and never crashes the caller.
func drainStderr(stream model.ByteStream, outcomeC chan<- stderrOutcome) {
	sent := false
	defer func() {
		if r := recover(); r != nil && !sent {
			outcomeC <- stderrOutcome{failure: fmt.Sprintf("%v", r)}
		}
	}()

	value, err := drainStream(stream)
	sent = true
	outcomeC <- stderrOutcome{value: value, readErr: err}
}

// assembleRecord builds the completion record from whichever channel values
// are present. Key order is fixed (stdout, stderr, exit_code) regardless of
// the order the channels completed in.
func assembleRecord(stdout, stderr *model.CapturedValue, exitCode *int) model.CompletionRecord {
	return model.CompletionRecord{
		Stdout:   stdout,
		Stderr:   stderr,
		ExitCode: exitCode,
	}
}
