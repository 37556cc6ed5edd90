package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/runcap/internal/model"
)

func TestToolConfigValidate(t *testing.T) {
	tests := map[string]struct {
		cfg    model.ToolConfig
		expErr bool
	}{
		"An empty config should not fail": {
			cfg: model.ToolConfig{},
		},

		"A known engine should not fail": {
			cfg: model.ToolConfig{Engine: model.EngineDocker},
		},

		"An unknown engine should fail": {
			cfg:    model.ToolConfig{Engine: "podman"},
			expErr: true,
		},

		"A negative history limit should fail": {
			cfg:    model.ToolConfig{HistoryMaxRuns: -1},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			err := test.cfg.Validate()

			if test.expErr {
				assert.ErrorIs(err, model.ErrNotValid)
			} else {
				assert.NoError(err)
			}
		})
	}
}
