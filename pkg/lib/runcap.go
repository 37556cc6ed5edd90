package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/spawn"
	"github.com/slok/runcap/internal/spawn/docker"
	"github.com/slok/runcap/internal/spawn/fake"
	"github.com/slok/runcap/internal/spawn/local"
	"github.com/slok/runcap/internal/storage"
	"github.com/slok/runcap/internal/storage/sqlite"
)

const (
	defaultDataDir     = ".runcap"
	defaultDBFile      = "runcap.db"
	defaultDockerImage = "alpine:3.22"
)

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults. At minimum, an empty
// Config{} will use ~/.runcap/runcap.db for storage and the local engine.
type Config struct {
	// DBPath is the SQLite database path for the run history.
	// Default: ~/.runcap/runcap.db.
	DBPath string

	// DataDir is the base directory for runcap data.
	// Default: ~/.runcap.
	DataDir string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger

	// Engine selects how commands are spawned.
	// Default: [EngineLocal] (host processes).
	//
	// Set this to [EngineFake] for testing without touching the host.
	Engine EngineType

	// Image is the container image commands run in.
	// Default: "alpine:3.22". Only used when Engine is [EngineDocker].
	Image string

	// HistoryMaxRuns caps how many runs are kept in history, oldest runs
	// are pruned first. Default: 0 (unlimited).
	HistoryMaxRuns int
}

func (c *Config) defaults() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DataDir = filepath.Join(home, defaultDataDir)
	}

	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, defaultDBFile)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	if c.Engine == "" {
		c.Engine = EngineLocal
	}

	if c.Image == "" {
		c.Image = defaultDockerImage
	}

	if c.HistoryMaxRuns < 0 {
		return fmt.Errorf("history max runs can't be negative: %w", ErrNotValid)
	}

	return nil
}

// Client is the main SDK entry point for running commands with full output
// capture and browsing the recorded history.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	repo           storage.Repository
	logger         log.Logger
	engineType     EngineType
	image          string
	historyMaxRuns int
	closeFn        func() error
}

// New creates a new SDK client backed by a SQLite database.
//
// The caller must call [Client.Close] when done to release the database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	return &Client{
		repo:           repo,
		logger:         cfg.Logger,
		engineType:     cfg.Engine,
		image:          cfg.Image,
		historyMaxRuns: cfg.HistoryMaxRuns,
		closeFn:        repo.Close,
	}, nil
}

// Close releases resources held by the client, including the database
// connection. After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}

// newSpawner creates the engine that spawns commands for this client.
func (c *Client) newSpawner() (spawn.Spawner, error) {
	switch c.engineType {
	case EngineLocal:
		return local.NewEngine(local.EngineConfig{
			Logger: c.logger,
		})
	case EngineDocker:
		return docker.NewEngine(docker.EngineConfig{
			Logger: c.logger,
		})
	case EngineFake:
		return fake.NewEngine(fake.EngineConfig{
			Logger: c.logger,
		})
	default:
		return nil, fmt.Errorf("unsupported engine type: %s: %w", c.engineType, ErrNotValid)
	}
}

// Doctor runs preflight health checks for the configured engine.
//
// For [EngineLocal] this checks the shell and the working directory, for
// [EngineDocker] it checks that the Docker daemon is reachable.
// [EngineFake] is always ready.
//
// Returns a slice of [CheckResult] describing each check's outcome.
func (c *Client) Doctor(ctx context.Context) ([]CheckResult, error) {
	eng, err := c.newSpawner()
	if err != nil {
		return nil, mapError(fmt.Errorf("could not create engine: %w", err))
	}

	results := eng.Check(ctx)
	return fromInternalCheckResults(results), nil
}
