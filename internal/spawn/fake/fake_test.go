package fake_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/spawn/fake"
)

func TestEngineSpawn(t *testing.T) {
	tests := map[string]struct {
		spec      model.CommandSpec
		expStdout string
		expStderr *string
		expErr    bool
	}{
		"Spawning a command should fabricate its output and a zero exit": {
			spec:      model.CommandSpec{Command: []string{"echo", "hello"}},
			expStdout: "fake output for: echo hello\n",
			expStderr: strPtr(""),
		},

		"A terminal spawn should carry a single merged stream": {
			spec:      model.CommandSpec{Command: []string{"top"}, Tty: true},
			expStdout: "fake output for: top\n",
			expStderr: nil,
		},

		"An empty command should fail": {
			spec:   model.CommandSpec{},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			eng, err := fake.NewEngine(fake.EngineConfig{})
			require.NoError(err)

			handle, err := eng.Spawn(context.TODO(), test.spec)

			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)

			require.NotNil(handle.Stdout)
			stdout, err := io.ReadAll(handle.Stdout.Reader)
			require.NoError(err)
			assert.Equal(test.expStdout, string(stdout))

			if test.expStderr == nil {
				assert.Nil(handle.Stderr)
			} else {
				require.NotNil(handle.Stderr)
				stderr, err := io.ReadAll(handle.Stderr.Reader)
				require.NoError(err)
				assert.Equal(*test.expStderr, string(stderr))
			}

			code, ok := <-handle.Exit
			require.True(ok)
			assert.Equal(0, code)
		})
	}
}

func TestEngineCheck(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	eng, err := fake.NewEngine(fake.EngineConfig{})
	require.NoError(err)

	results := eng.Check(context.TODO())

	require.Len(results, 1)
	assert.Equal("fake_engine", results[0].ID)
	assert.Equal(model.CheckStatusOK, results[0].Status)
}

func strPtr(s string) *string { return &s }
