package model

import "fmt"

// ToolConfig is the user level configuration of the tool, usually loaded
// from the config file in the tool home.
type ToolConfig struct {
	// Engine is the default spawner engine for new runs.
	Engine EngineType
	// Image is the default container image for the Docker engine.
	Image string
	// Env is applied to every run on top of the per-run environment.
	Env map[string]string
	// HistoryMaxRuns caps how many runs are kept in history, oldest removed
	// first. 0 means unlimited.
	HistoryMaxRuns int
}

// Validate validates the tool configuration.
func (c *ToolConfig) Validate() error {
	switch c.Engine {
	case "", EngineLocal, EngineDocker, EngineFake:
	default:
		return fmt.Errorf("unknown engine %q: %w", c.Engine, ErrNotValid)
	}

	if c.HistoryMaxRuns < 0 {
		return fmt.Errorf("history max runs can't be negative: %w", ErrNotValid)
	}

	return nil
}
