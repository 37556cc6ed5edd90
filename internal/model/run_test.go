package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/runcap/internal/model"
)

func TestCommandSpecValidate(t *testing.T) {
	tests := map[string]struct {
		spec   model.CommandSpec
		expErr bool
	}{
		"A valid spec should not fail": {
			spec: model.CommandSpec{
				Command: []string{"echo", "hello"},
			},
			expErr: false,
		},

		"Missing command should fail": {
			spec:   model.CommandSpec{},
			expErr: true,
		},

		"Empty command argument should fail": {
			spec: model.CommandSpec{
				Command: []string{"echo", ""},
			},
			expErr: true,
		},

		"A spec with optional fields should not fail": {
			spec: model.CommandSpec{
				Command:    []string{"sh", "-c", "pwd"},
				WorkingDir: "/tmp",
				Env:        map[string]string{"EDITOR": "vim"},
				Input:      []byte("data"),
			},
			expErr: false,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			err := test.spec.Validate()

			if test.expErr {
				assert.Error(err)
				assert.True(errors.Is(err, model.ErrNotValid))
			} else {
				assert.NoError(err)
			}
		})
	}
}

func TestCommandSpecString(t *testing.T) {
	tests := map[string]struct {
		spec model.CommandSpec
		exp  string
	}{
		"A single binary should render as is": {
			spec: model.CommandSpec{Command: []string{"ls"}},
			exp:  "ls",
		},

		"A command with arguments should be space joined": {
			spec: model.CommandSpec{Command: []string{"sh", "-c", "echo hi"}},
			exp:  "sh -c echo hi",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, test.spec.String())
		})
	}
}
