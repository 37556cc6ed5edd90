package runcap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/runcap/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "runcap"
	}

	// If the path is already absolute, just check it exists.
	// If relative, the caller should pass an absolute path via the env var,
	// because go test changes the CWD to the test package directory.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("RUNCAP_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("runcap binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "RUNCAP_INTEGRATION"
		envBinary     = "RUNCAP_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary: os.Getenv(envBinary),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// DockerEnabled reports whether Docker engine integration tests are enabled.
// They need a reachable Docker daemon, so they have their own activation
// env var on top of the general one.
func DockerEnabled() bool {
	return os.Getenv("RUNCAP_INTEGRATION_DOCKER") == "true"
}

// RunRuncapCmd runs a runcap command with the given arguments and a specific db path.
// It suppresses logging output for cleaner test output.
func RunRuncapCmd(ctx context.Context, config Config, dbPath, cmdArgs string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("--no-log --db-path %s %s", dbPath, cmdArgs)
	return testutils.RunRuncap(ctx, nil, config.Binary, args, true)
}

// RunRun runs a command through `runcap run`.
// Uses -- separator and passes args as []string to preserve arguments with
// spaces (e.g., sh -c "echo hello; exit 3").
func RunRun(ctx context.Context, config Config, dbPath string, flags []string, command []string) (stdout, stderr []byte, err error) {
	args := []string{"--no-log", "--db-path", dbPath, "run"}
	args = append(args, flags...)
	args = append(args, "--")
	args = append(args, command...)

	return testutils.RunRuncapArgs(ctx, nil, config.Binary, args, true)
}

// RunGet retrieves a run in JSON format. An empty id means the last run.
func RunGet(ctx context.Context, config Config, dbPath, id string) (stdout, stderr []byte, err error) {
	args := "get --format json"
	if id != "" {
		args = fmt.Sprintf("get %s --format json", id)
	}
	return RunRuncapCmd(ctx, config, dbPath, args)
}

// RunList lists runs in JSON format.
func RunList(ctx context.Context, config Config, dbPath string) (stdout, stderr []byte, err error) {
	return RunRuncapCmd(ctx, config, dbPath, "list --format json")
}

// RunRm removes a single run from history.
func RunRm(ctx context.Context, config Config, dbPath, id string) (stdout, stderr []byte, err error) {
	return RunRuncapCmd(ctx, config, dbPath, fmt.Sprintf("rm %s", id))
}

// RunRmAll removes every run from history.
func RunRmAll(ctx context.Context, config Config, dbPath string) (stdout, stderr []byte, err error) {
	return RunRuncapCmd(ctx, config, dbPath, "rm --all")
}

// RunDoctor runs the preflight checks for the given engine.
func RunDoctor(ctx context.Context, config Config, dbPath, engine string) (stdout, stderr []byte, err error) {
	return RunRuncapCmd(ctx, config, dbPath, fmt.Sprintf("doctor --engine %s", engine))
}
