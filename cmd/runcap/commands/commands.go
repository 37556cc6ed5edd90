package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/runcap/internal/conventions"
	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/storage"
	storageio "github.com/slok/runcap/internal/storage/io"
	"github.com/slok/runcap/internal/storage/memory"
	"github.com/slok/runcap/internal/storage/sqlite"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	DBPath     string
	NoDB       bool
	ConfigPath string

	// Global instances.
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  log.Logger
	Version string
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	dataDir := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	app.Flag("db-path", "Path to the SQLite database file.").Envar("RUNCAP_DB_PATH").Default(conventions.DBPath(dataDir)).StringVar(&c.DBPath)
	app.Flag("no-db", "Do not touch the run history database, keep runs in memory only.").BoolVar(&c.NoDB)
	app.Flag("config", "Path to the tool configuration file.").Envar("RUNCAP_CONFIG").Default(conventions.ConfigPath(dataDir)).StringVar(&c.ConfigPath)

	return c
}

// Repository opens the run history store. With --no-db runs live in memory
// and are discarded when the process ends.
func (c *RootCommand) Repository(ctx context.Context) (storage.Repository, func() error, error) {
	if c.NoDB {
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: c.Logger})
		if err != nil {
			return nil, nil, fmt.Errorf("could not create repository: %w", err)
		}
		return repo, func() error { return nil }, nil
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.DBPath,
		Logger: c.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create repository: %w", err)
	}

	return repo, repo.Close, nil
}

// ToolConfig loads the optional configuration file. A missing file is not an
// error, it yields an empty configuration.
func (c *RootCommand) ToolConfig(ctx context.Context) (model.ToolConfig, error) {
	if _, err := os.Stat(c.ConfigPath); os.IsNotExist(err) {
		return model.ToolConfig{}, nil
	}

	repo := storageio.NewConfigYAMLRepository(os.DirFS(filepath.Dir(c.ConfigPath)))
	cfg, err := repo.GetConfig(ctx, filepath.Base(c.ConfigPath))
	if err != nil {
		return model.ToolConfig{}, fmt.Errorf("could not load config file: %w", err)
	}

	return cfg, nil
}
