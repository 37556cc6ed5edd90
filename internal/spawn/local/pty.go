package local

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"

	"github.com/slok/runcap/internal/model"
)

// spawnTty starts the command on a pseudo terminal. The terminal merges
// stdout and stderr into a single stream, so the handle only carries the
// stdout channel plus the exit status.
func (e *Engine) spawnTty(cmd *exec.Cmd, spec model.CommandSpec) (model.ProcessHandle, error) {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return model.ProcessHandle{}, fmt.Errorf("could not start command on a pty: %w", err)
	}

	if spec.Input != nil {
		input := spec.Input
		go func() { _, _ = ptmx.Write(input) }()
	}

	pid := cmd.Process.Pid
	exitC := make(chan int, 1)
	go func() {
		defer close(exitC)
		code, ok := exitCode(cmd.Wait())
		if !ok {
			e.logger.Errorf("Could not resolve exit status of %q", spec.String())
			return
		}
		exitC <- code
	}()

	e.logger.Debugf("Spawned %q on a pty (pid %d)", spec.String(), pid)

	return model.ProcessHandle{
		Stdout: &model.ByteStream{
			Reader: &ptyStream{f: ptmx},
			Origin: model.Origin{Stream: model.StreamStdout, Command: spec.String(), PID: pid},
		},
		Exit: exitC,
	}, nil
}

// ptyStream reads the pty master and turns the EIO the kernel reports once
// the child is gone into a normal end of stream, closing the master.
type ptyStream struct {
	f *os.File
}

func (s *ptyStream) Read(p []byte) (int, error) {
	n, err := s.f.Read(p)
	if err != nil {
		_ = s.f.Close()
		if errors.Is(err, syscall.EIO) {
			return n, io.EOF
		}
	}
	return n, err
}

// checkPty verifies that pseudo terminal allocation works on this host.
func (e *Engine) checkPty() model.CheckResult {
	ptmx, tty, err := pty.Open()
	if err != nil {
		return model.CheckResult{
			ID:      "pty_allocatable",
			Message: fmt.Sprintf("Cannot allocate a pseudo terminal: %v", err),
			Status:  model.CheckStatusWarning,
		}
	}
	ptmx.Close()
	tty.Close()

	return model.CheckResult{
		ID:      "pty_allocatable",
		Message: "Pseudo terminal allocation works",
		Status:  model.CheckStatusOK,
	}
}
