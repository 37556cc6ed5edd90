package io

import (
	"context"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/slok/runcap/internal/model"
)

// ConfigYAMLRepository loads tool configuration from YAML files.
type ConfigYAMLRepository struct {
	fs fs.FS
}

// NewConfigYAMLRepository creates a new YAML config repository.
func NewConfigYAMLRepository(filesystem fs.FS) *ConfigYAMLRepository {
	return &ConfigYAMLRepository{fs: filesystem}
}

// GetConfig loads the tool configuration from a YAML file and returns a
// validated domain model.
func (r *ConfigYAMLRepository) GetConfig(ctx context.Context, path string) (model.ToolConfig, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.ToolConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.ToolConfig{}, ctx.Err()
	}

	var cfg ToolConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.ToolConfig{}, fmt.Errorf("parsing YAML: %w", err)
	}

	mCfg := cfg.toModel()
	if err := mCfg.Validate(); err != nil {
		return model.ToolConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return mCfg, nil
}

// ToolConfig represents the YAML structure for the tool configuration.
type ToolConfig struct {
	Engine  string            `yaml:"engine"`
	Docker  *DockerConfig     `yaml:"docker,omitempty"`
	Env     map[string]string `yaml:"env"`
	History *HistoryConfig    `yaml:"history,omitempty"`
}

// DockerConfig represents the YAML structure for Docker engine defaults.
type DockerConfig struct {
	Image string `yaml:"image"`
}

// HistoryConfig represents the YAML structure for run history settings.
type HistoryConfig struct {
	MaxRuns int `yaml:"max_runs"`
}

func (c ToolConfig) toModel() model.ToolConfig {
	cfg := model.ToolConfig{
		Engine: model.EngineType(c.Engine),
		Env:    c.Env,
	}

	if c.Docker != nil {
		cfg.Image = c.Docker.Image
	}
	if c.History != nil {
		cfg.HistoryMaxRuns = c.History.MaxRuns
	}

	return cfg
}
