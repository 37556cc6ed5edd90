package io

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/runcap/internal/model"
)

func TestConfigYAMLRepositoryGetConfig(t *testing.T) {
	tests := map[string]struct {
		fs     fstest.MapFS
		path   string
		expCfg model.ToolConfig
		expErr bool
		errMsg string
	}{
		"A full config should load successfully": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`engine: docker
docker:
  image: ubuntu:24.04
env:
  CI: "true"
history:
  max_runs: 100
`),
				},
			},
			path: "config.yaml",
			expCfg: model.ToolConfig{
				Engine:         model.EngineDocker,
				Image:          "ubuntu:24.04",
				Env:            map[string]string{"CI": "true"},
				HistoryMaxRuns: 100,
			},
		},

		"An empty config should load with defaults": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`---
`),
				},
			},
			path:   "config.yaml",
			expCfg: model.ToolConfig{},
		},

		"A config with only the engine should load successfully": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`engine: local
`),
				},
			},
			path:   "config.yaml",
			expCfg: model.ToolConfig{Engine: model.EngineLocal},
		},

		"An unknown engine should return an error": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`engine: podman
`),
				},
			},
			path:   "config.yaml",
			expErr: true,
			errMsg: "invalid configuration",
		},

		"A negative history limit should return an error": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`history:
  max_runs: -1
`),
				},
			},
			path:   "config.yaml",
			expErr: true,
			errMsg: "invalid configuration",
		},

		"A missing file should return an error": {
			fs:     fstest.MapFS{},
			path:   "nonexistent.yaml",
			expErr: true,
			errMsg: "reading config file",
		},

		"Invalid YAML should return an error": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{
					Data: []byte(`invalid: yaml: content: {}`),
				},
			},
			path:   "config.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewConfigYAMLRepository(tc.fs)
			cfg, err := repo.GetConfig(context.Background(), tc.path)

			if tc.expErr {
				require.Error(t, err)
				if tc.errMsg != "" {
					assert.Contains(t, err.Error(), tc.errMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expCfg, cfg)
		})
	}
}
