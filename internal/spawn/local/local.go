package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/model"
)

// EngineConfig is the configuration for the local engine.
type EngineConfig struct {
	Logger log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "engine.Local"})
	return nil
}

// Engine spawns commands as regular host processes.
type Engine struct {
	logger log.Logger
}

// NewEngine creates a new local engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		logger: cfg.Logger,
	}, nil
}

// Spawn starts the command as a child process with both output pipes and the
// exit status channel wired on the returned handle.
//
// The output pipes are created by hand instead of through exec.Cmd StdoutPipe
// so the exit status can be waited for independently of the pipe drains: Wait
// only reaps the process, and end of stream on each pipe arrives once the
// child closes its side.
func (e *Engine) Spawn(ctx context.Context, spec model.CommandSpec) (model.ProcessHandle, error) {
	if err := spec.Validate(); err != nil {
		return model.ProcessHandle{}, fmt.Errorf("invalid command spec: %w", err)
	}

	cmd := exec.CommandContext(ctx, spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.WorkingDir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), envSlice(spec.Env)...)
	}
	if spec.Input != nil {
		cmd.Stdin = bytes.NewReader(spec.Input)
	}

	if spec.Tty {
		return e.spawnTty(cmd, spec)
	}

	handle, err := startWithPipes(cmd, spec.String(), e.logger)
	if err != nil {
		return model.ProcessHandle{}, err
	}

	e.logger.Debugf("Spawned %q (pid %d)", spec.String(), handle.Stdout.Origin.PID)

	return handle, nil
}

// Wrap starts a caller-prepared command and returns its process handle, for
// commands built outside the engine. The command must not be started yet nor
// have its output streams assigned.
func Wrap(cmd *exec.Cmd) (model.ProcessHandle, error) {
	if cmd == nil {
		return model.ProcessHandle{}, fmt.Errorf("command is required: %w", model.ErrNotValid)
	}
	if cmd.Process != nil {
		return model.ProcessHandle{}, fmt.Errorf("command has already been started: %w", model.ErrNotValid)
	}
	if cmd.Stdout != nil || cmd.Stderr != nil {
		return model.ProcessHandle{}, fmt.Errorf("command output streams are already assigned: %w", model.ErrNotValid)
	}

	return startWithPipes(cmd, cmd.String(), log.Noop)
}

func startWithPipes(cmd *exec.Cmd, cmdLine string, logger log.Logger) (model.ProcessHandle, error) {
	outR, outW, err := os.Pipe()
	if err != nil {
		return model.ProcessHandle{}, fmt.Errorf("could not create stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return model.ProcessHandle{}, fmt.Errorf("could not create stderr pipe: %w", err)
	}

	cmd.Stdout = outW
	cmd.Stderr = errW

	if err := cmd.Start(); err != nil {
		outR.Close()
		outW.Close()
		errR.Close()
		errW.Close()
		return model.ProcessHandle{}, fmt.Errorf("could not start command: %w", err)
	}

	// The child holds its own copies of the write ends now, ours must go so
	// the readers see end of stream when the child is done writing.
	outW.Close()
	errW.Close()

	pid := cmd.Process.Pid
	exitC := make(chan int, 1)
	go func() {
		defer close(exitC)
		code, ok := exitCode(cmd.Wait())
		if !ok {
			logger.Errorf("Could not resolve exit status of %q", cmdLine)
			return
		}
		exitC <- code
	}()

	return model.ProcessHandle{
		Stdout: &model.ByteStream{
			Reader: outR,
			Origin: model.Origin{Stream: model.StreamStdout, Command: cmdLine, PID: pid},
		},
		Stderr: &model.ByteStream{
			Reader: errR,
			Origin: model.Origin{Stream: model.StreamStderr, Command: cmdLine, PID: pid},
		},
		Exit: exitC,
	}, nil
}

// Check performs preflight checks for the local engine.
func (e *Engine) Check(ctx context.Context) []model.CheckResult {
	var results []model.CheckResult

	// Check 1: a shell is resolvable.
	results = append(results, e.checkShell())

	// Check 2: the working directory is accessible.
	results = append(results, e.checkWorkDir())

	// Check 3: pty allocation.
	results = append(results, e.checkPty())

	return results
}

func (e *Engine) checkShell() model.CheckResult {
	for _, sh := range []string{"sh", "bash"} {
		if p, err := exec.LookPath(sh); err == nil {
			return model.CheckResult{
				ID:      "shell_available",
				Message: fmt.Sprintf("Shell found at %s", p),
				Status:  model.CheckStatusOK,
			}
		}
	}

	return model.CheckResult{
		ID:      "shell_available",
		Message: "No sh or bash found in PATH",
		Status:  model.CheckStatusWarning,
	}
}

func (e *Engine) checkWorkDir() model.CheckResult {
	wd, err := os.Getwd()
	if err != nil {
		return model.CheckResult{
			ID:      "workdir_accessible",
			Message: fmt.Sprintf("Cannot resolve the working directory: %v", err),
			Status:  model.CheckStatusError,
		}
	}

	return model.CheckResult{
		ID:      "workdir_accessible",
		Message: fmt.Sprintf("Working directory is %s", wd),
		Status:  model.CheckStatusOK,
	}
}

// exitCode maps the error of an exec.Cmd Wait to the conventional shell exit
// status. Processes killed by a signal map to 128 plus the signal number.
func exitCode(err error) (int, bool) {
	if err == nil {
		return 0, true
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, false
	}

	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), true
	}

	return exitErr.ExitCode(), true
}

func envSlice(env map[string]string) []string {
	var vars []string
	for k, v := range env {
		vars = append(vars, fmt.Sprintf("%s=%s", k, v))
	}
	return vars
}
