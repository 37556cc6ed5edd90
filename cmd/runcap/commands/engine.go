package commands

import (
	"fmt"

	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/spawn"
	"github.com/slok/runcap/internal/spawn/docker"
	"github.com/slok/runcap/internal/spawn/fake"
	"github.com/slok/runcap/internal/spawn/local"
)

// newEngineFromType creates a spawner engine from its type.
func newEngineFromType(engine model.EngineType, logger log.Logger) (spawn.Spawner, error) {
	switch engine {
	case model.EngineLocal:
		return local.NewEngine(local.EngineConfig{Logger: logger})
	case model.EngineDocker:
		return docker.NewEngine(docker.EngineConfig{Logger: logger})
	case model.EngineFake:
		return fake.NewEngine(fake.EngineConfig{Logger: logger})
	default:
		return nil, fmt.Errorf("unknown engine type: %s", engine)
	}
}

// resolveEngine picks the engine type from the flag, the configuration file
// or the local default, in that order.
func resolveEngine(flagValue string, cfg model.ToolConfig) model.EngineType {
	if flagValue != "" {
		return model.EngineType(flagValue)
	}

	if cfg.Engine != "" {
		return cfg.Engine
	}

	return model.EngineLocal
}
