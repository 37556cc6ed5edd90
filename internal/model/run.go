package model

import (
	"fmt"
	"strings"
	"time"
)

// EngineType identifies the spawner engine used to run a command.
type EngineType string

const (
	// EngineLocal runs commands as host processes.
	EngineLocal EngineType = "local"
	// EngineDocker runs commands inside a Docker container.
	EngineDocker EngineType = "docker"
	// EngineFake simulates command runs in memory.
	EngineFake EngineType = "fake"
)

// CommandSpec describes the command handed to a spawner engine.
type CommandSpec struct {
	Command    []string
	WorkingDir string
	Env        map[string]string
	// Input is a one-shot buffer written to the child's standard input by
	// the spawner before capture starts. Nil means no input channel.
	Input []byte
	// Tty allocates a terminal for the child, which merges stdout and stderr
	// into a single stream.
	Tty bool
	// Image is the container image to run in. Docker engine only.
	Image string
}

// Validate validates the command spec.
func (s *CommandSpec) Validate() error {
	if len(s.Command) == 0 {
		return fmt.Errorf("command is required: %w", ErrNotValid)
	}

	for _, c := range s.Command {
		if c == "" {
			return fmt.Errorf("command arguments can't be empty strings: %w", ErrNotValid)
		}
	}

	return nil
}

// String returns the command as a single shell-like line, used for display
// and error attribution.
func (s CommandSpec) String() string {
	return strings.Join(s.Command, " ")
}

// Run represents a single captured command execution.
type Run struct {
	ID        string
	Command   []string
	Engine    EngineType
	Record    CompletionRecord
	CreatedAt time.Time
	Duration  time.Duration
}
