package local_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/spawn/local"
)

// drain reads both output channels concurrently and then the exit status,
// the way a handle consumer is expected to.
func drain(t *testing.T, h model.ProcessHandle) (stdout, stderr string, code int, ok bool) {
	t.Helper()

	stderrC := make(chan string, 1)
	if h.Stderr != nil {
		go func() {
			data, _ := io.ReadAll(h.Stderr.Reader)
			stderrC <- string(data)
		}()
	} else {
		stderrC <- ""
	}

	var out []byte
	if h.Stdout != nil {
		out, _ = io.ReadAll(h.Stdout.Reader)
	}

	stderr = <-stderrC
	code, ok = <-h.Exit

	return string(out), stderr, code, ok
}

func TestEngineSpawn(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker"), []byte("from marker"), 0o600))

	tests := map[string]struct {
		spec      model.CommandSpec
		expStdout string
		expStderr string
		expCode   int
		expErr    bool
	}{
		"A command writing to both streams should expose both with its exit status": {
			spec:      model.CommandSpec{Command: []string{"sh", "-c", "printf out; printf err >&2; exit 7"}},
			expStdout: "out",
			expStderr: "err",
			expCode:   7,
		},

		"A successful command should report a zero exit status": {
			spec:      model.CommandSpec{Command: []string{"sh", "-c", "printf fine"}},
			expStdout: "fine",
			expCode:   0,
		},

		"Environment variables should reach the child": {
			spec: model.CommandSpec{
				Command: []string{"sh", "-c", `printf "$GREETING"`},
				Env:     map[string]string{"GREETING": "hello"},
			},
			expStdout: "hello",
		},

		"The working directory should apply to the child": {
			spec: model.CommandSpec{
				Command:    []string{"sh", "-c", "cat marker"},
				WorkingDir: dir,
			},
			expStdout: "from marker",
		},

		"Input should be fed to the child's stdin": {
			spec: model.CommandSpec{
				Command: []string{"sh", "-c", "cat"},
				Input:   []byte("hello stdin"),
			},
			expStdout: "hello stdin",
		},

		"An empty command should fail": {
			spec:   model.CommandSpec{},
			expErr: true,
		},

		"A nonexistent binary should fail to start": {
			spec:   model.CommandSpec{Command: []string{"/definitely/not/a/binary"}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			eng, err := local.NewEngine(local.EngineConfig{})
			require.NoError(err)

			handle, err := eng.Spawn(context.TODO(), test.spec)

			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)

			require.NotNil(handle.Stdout)
			require.NotNil(handle.Stderr)
			assert.Equal(model.StreamStdout, handle.Stdout.Origin.Stream)
			assert.Equal(model.StreamStderr, handle.Stderr.Origin.Stream)
			assert.NotZero(handle.Stdout.Origin.PID)

			stdout, stderr, code, ok := drain(t, handle)
			require.True(ok)
			assert.Equal(test.expStdout, stdout)
			assert.Equal(test.expStderr, stderr)
			assert.Equal(test.expCode, code)
		})
	}
}

func TestEngineSpawnSignal(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	eng, err := local.NewEngine(local.EngineConfig{})
	require.NoError(err)

	// The child terminates itself with SIGTERM (15).
	handle, err := eng.Spawn(context.TODO(), model.CommandSpec{
		Command: []string{"sh", "-c", "kill -TERM $$"},
	})
	require.NoError(err)

	_, _, code, ok := drain(t, handle)
	require.True(ok)
	assert.Equal(143, code)
}

func TestEngineSpawnTty(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	eng, err := local.NewEngine(local.EngineConfig{})
	require.NoError(err)

	handle, err := eng.Spawn(context.TODO(), model.CommandSpec{
		Command: []string{"sh", "-c", "printf hello"},
		Tty:     true,
	})
	if err != nil {
		t.Skipf("pty not available: %v", err)
	}

	require.NotNil(handle.Stdout)
	assert.Nil(handle.Stderr)

	stdout, _, code, ok := drain(t, handle)
	require.True(ok)
	assert.Contains(stdout, "hello")
	assert.Equal(0, code)
}

func TestWrap(t *testing.T) {
	tests := map[string]struct {
		cmd       func() *exec.Cmd
		expStdout string
		expCode   int
		expErr    bool
	}{
		"A prepared command should be started and exposed on a handle": {
			cmd: func() *exec.Cmd {
				return exec.Command("sh", "-c", "printf wrapped; exit 3")
			},
			expStdout: "wrapped",
			expCode:   3,
		},

		"A nil command should fail": {
			cmd:    func() *exec.Cmd { return nil },
			expErr: true,
		},

		"An already started command should fail": {
			cmd: func() *exec.Cmd {
				cmd := exec.Command("true")
				_ = cmd.Start()
				_ = cmd.Wait()
				return cmd
			},
			expErr: true,
		},

		"A command with assigned output streams should fail": {
			cmd: func() *exec.Cmd {
				cmd := exec.Command("true")
				cmd.Stdout = &bytes.Buffer{}
				return cmd
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			handle, err := local.Wrap(test.cmd())

			if test.expErr {
				assert.Error(err)
				return
			}
			require.NoError(err)

			stdout, _, code, ok := drain(t, handle)
			require.True(ok)
			assert.Equal(test.expStdout, stdout)
			assert.Equal(test.expCode, code)
		})
	}
}

func TestEngineCheck(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	eng, err := local.NewEngine(local.EngineConfig{})
	require.NoError(err)

	results := eng.Check(context.TODO())

	require.Len(results, 3)
	assert.Equal("shell_available", results[0].ID)
	assert.Equal(model.CheckStatusOK, results[0].Status)
	assert.Equal("workdir_accessible", results[1].ID)
	assert.Equal(model.CheckStatusOK, results[1].Status)
	assert.Equal("pty_allocatable", results[2].ID)
}
