package docker_test

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/model"
	"github.com/slok/runcap/internal/spawn/docker"
	"github.com/slok/runcap/internal/spawn/docker/dockermock"
)

// muxFrames builds a multiplexed attach payload the way the daemon frames
// container output without a terminal.
func muxFrames(stdout, stderr string) []byte {
	var b bytes.Buffer
	if stdout != "" {
		_, _ = stdcopy.NewStdWriter(&b, stdcopy.Stdout).Write([]byte(stdout))
	}
	if stderr != "" {
		_, _ = stdcopy.NewStdWriter(&b, stdcopy.Stderr).Write([]byte(stderr))
	}
	return b.Bytes()
}

// attachOver builds an attach response that streams the given payload and
// then ends.
func attachOver(payload []byte) types.HijackedResponse {
	conn, _ := net.Pipe()
	return types.HijackedResponse{Conn: conn, Reader: bufio.NewReader(bytes.NewReader(payload))}
}

func expectPull(m *dockermock.MockDockerClient, image string) {
	m.On("ImagePull", mock.Anything, image, mock.Anything).Once().Return(io.NopCloser(strings.NewReader("")), nil)
}

func expectWait(m *dockermock.MockDockerClient, containerID string, res ...container.WaitResponse) {
	waitC := make(chan container.WaitResponse, len(res))
	for _, r := range res {
		waitC <- r
	}
	m.On("ContainerWait", mock.Anything, containerID, container.WaitConditionNextExit).Once().
		Return((<-chan container.WaitResponse)(waitC), (<-chan error)(make(chan error)))
}

func TestNewEngine(t *testing.T) {
	tests := map[string]struct {
		cfg docker.EngineConfig
	}{
		"Valid configuration should create the engine": {
			cfg: docker.EngineConfig{Client: &dockermock.MockDockerClient{}, Logger: log.Noop},
		},

		"Missing logger should use the noop logger": {
			cfg: docker.EngineConfig{Client: &dockermock.MockDockerClient{}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			eng, err := docker.NewEngine(test.cfg)

			assert.NoError(err)
			assert.NotNil(eng)
		})
	}
}

func TestEngineSpawn(t *testing.T) {
	tests := map[string]struct {
		spec   model.CommandSpec
		setup  func(t *testing.T, m *dockermock.MockDockerClient) func(t *testing.T, h model.ProcessHandle)
		expErr bool
	}{
		"Spawning a command should stream both channels and the exit status": {
			spec: model.CommandSpec{
				Command: []string{"sh", "-c", "echo hello; echo oops >&2; exit 3"},
				Image:   "busybox",
			},
			setup: func(t *testing.T, m *dockermock.MockDockerClient) func(t *testing.T, h model.ProcessHandle) {
				expectPull(m, "busybox")
				m.On("ContainerCreate", mock.Anything, mock.MatchedBy(func(cfg *container.Config) bool {
					return cfg.Image == "busybox" && len(cfg.Cmd) == 3 && cfg.Cmd[0] == "sh" && !cfg.Tty
				}), mock.Anything, mock.Anything, mock.Anything, mock.Anything).Once().
					Return(container.CreateResponse{ID: "cid123"}, nil)
				m.On("ContainerAttach", mock.Anything, "cid123", mock.Anything).Once().
					Return(attachOver(muxFrames("hello\n", "oops\n")), nil)
				expectWait(m, "cid123", container.WaitResponse{StatusCode: 3})
				m.On("ContainerStart", mock.Anything, "cid123", mock.Anything).Once().Return(nil)
				m.On("ContainerRemove", mock.Anything, "cid123", mock.Anything).Once().Return(nil)

				return func(t *testing.T, h model.ProcessHandle) {
					assert := assert.New(t)
					require := require.New(t)

					require.NotNil(h.Stdout)
					require.NotNil(h.Stderr)

					stderrC := make(chan string, 1)
					go func() {
						data, _ := io.ReadAll(h.Stderr.Reader)
						stderrC <- string(data)
					}()

					stdout, err := io.ReadAll(h.Stdout.Reader)
					require.NoError(err)
					assert.Equal("hello\n", string(stdout))
					assert.Equal("oops\n", <-stderrC)

					code, ok := <-h.Exit
					require.True(ok)
					assert.Equal(3, code)
				}
			},
		},

		"A terminal spawn should carry a single merged stream": {
			spec: model.CommandSpec{
				Command: []string{"top"},
				Image:   "busybox",
				Tty:     true,
			},
			setup: func(t *testing.T, m *dockermock.MockDockerClient) func(t *testing.T, h model.ProcessHandle) {
				expectPull(m, "busybox")
				m.On("ContainerCreate", mock.Anything, mock.MatchedBy(func(cfg *container.Config) bool {
					return cfg.Tty
				}), mock.Anything, mock.Anything, mock.Anything, mock.Anything).Once().
					Return(container.CreateResponse{ID: "cid123"}, nil)
				m.On("ContainerAttach", mock.Anything, "cid123", mock.Anything).Once().
					Return(attachOver([]byte("merged output\n")), nil)
				expectWait(m, "cid123", container.WaitResponse{StatusCode: 0})
				m.On("ContainerStart", mock.Anything, "cid123", mock.Anything).Once().Return(nil)
				m.On("ContainerRemove", mock.Anything, "cid123", mock.Anything).Once().Return(nil)

				return func(t *testing.T, h model.ProcessHandle) {
					assert := assert.New(t)
					require := require.New(t)

					require.NotNil(h.Stdout)
					assert.Nil(h.Stderr)

					stdout, err := io.ReadAll(h.Stdout.Reader)
					require.NoError(err)
					assert.Equal("merged output\n", string(stdout))

					code, ok := <-h.Exit
					require.True(ok)
					assert.Equal(0, code)
				}
			},
		},

		"Input should be written to the attach connection": {
			spec: model.CommandSpec{
				Command: []string{"tr", "a-z", "A-Z"},
				Image:   "busybox",
				Input:   []byte("hello"),
			},
			setup: func(t *testing.T, m *dockermock.MockDockerClient) func(t *testing.T, h model.ProcessHandle) {
				server, client := net.Pipe()
				gotInput := make(chan string, 1)
				go func() {
					buf := make([]byte, 5)
					_, _ = io.ReadFull(server, buf)
					gotInput <- string(buf)
					_, _ = stdcopy.NewStdWriter(server, stdcopy.Stdout).Write([]byte("HELLO"))
					server.Close()
				}()

				expectPull(m, "busybox")
				m.On("ContainerCreate", mock.Anything, mock.MatchedBy(func(cfg *container.Config) bool {
					return cfg.AttachStdin && cfg.OpenStdin && cfg.StdinOnce
				}), mock.Anything, mock.Anything, mock.Anything, mock.Anything).Once().
					Return(container.CreateResponse{ID: "cid123"}, nil)
				m.On("ContainerAttach", mock.Anything, "cid123", mock.MatchedBy(func(opts container.AttachOptions) bool {
					return opts.Stdin
				})).Once().
					Return(types.HijackedResponse{Conn: client, Reader: bufio.NewReader(client)}, nil)
				expectWait(m, "cid123", container.WaitResponse{StatusCode: 0})
				m.On("ContainerStart", mock.Anything, "cid123", mock.Anything).Once().Return(nil)
				m.On("ContainerRemove", mock.Anything, "cid123", mock.Anything).Once().Return(nil)

				return func(t *testing.T, h model.ProcessHandle) {
					assert := assert.New(t)
					require := require.New(t)

					stderrC := make(chan string, 1)
					go func() {
						data, _ := io.ReadAll(h.Stderr.Reader)
						stderrC <- string(data)
					}()

					stdout, err := io.ReadAll(h.Stdout.Reader)
					require.NoError(err)
					assert.Equal("HELLO", string(stdout))
					assert.Empty(<-stderrC)
					assert.Equal("hello", <-gotInput)

					code, ok := <-h.Exit
					require.True(ok)
					assert.Equal(0, code)
				}
			},
		},

		"A wait failure should close the exit channel without a value": {
			spec: model.CommandSpec{
				Command: []string{"true"},
				Image:   "busybox",
			},
			setup: func(t *testing.T, m *dockermock.MockDockerClient) func(t *testing.T, h model.ProcessHandle) {
				expectPull(m, "busybox")
				m.On("ContainerCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Once().
					Return(container.CreateResponse{ID: "cid123"}, nil)
				m.On("ContainerAttach", mock.Anything, "cid123", mock.Anything).Once().
					Return(attachOver(nil), nil)

				waitErrC := make(chan error, 1)
				waitErrC <- fmt.Errorf("daemon gone")
				m.On("ContainerWait", mock.Anything, "cid123", container.WaitConditionNextExit).Once().
					Return((<-chan container.WaitResponse)(make(chan container.WaitResponse)), (<-chan error)(waitErrC))

				m.On("ContainerStart", mock.Anything, "cid123", mock.Anything).Once().Return(nil)
				m.On("ContainerRemove", mock.Anything, "cid123", mock.Anything).Once().Return(nil)

				return func(t *testing.T, h model.ProcessHandle) {
					assert := assert.New(t)

					stdout, err := io.ReadAll(h.Stdout.Reader)
					assert.NoError(err)
					assert.Empty(stdout)

					stderr, err := io.ReadAll(h.Stderr.Reader)
					assert.NoError(err)
					assert.Empty(stderr)

					_, ok := <-h.Exit
					assert.False(ok)
				}
			},
		},

		"A failed image pull should fail the spawn": {
			spec: model.CommandSpec{
				Command: []string{"true"},
				Image:   "busybox",
			},
			setup: func(t *testing.T, m *dockermock.MockDockerClient) func(t *testing.T, h model.ProcessHandle) {
				m.On("ImagePull", mock.Anything, "busybox", mock.Anything).Once().
					Return(nil, fmt.Errorf("no such image"))
				return nil
			},
			expErr: true,
		},

		"A failed container create should fail the spawn": {
			spec: model.CommandSpec{
				Command: []string{"true"},
				Image:   "busybox",
			},
			setup: func(t *testing.T, m *dockermock.MockDockerClient) func(t *testing.T, h model.ProcessHandle) {
				expectPull(m, "busybox")
				m.On("ContainerCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Once().
					Return(container.CreateResponse{}, fmt.Errorf("boom"))
				return nil
			},
			expErr: true,
		},

		"A failed start should remove the container": {
			spec: model.CommandSpec{
				Command: []string{"true"},
				Image:   "busybox",
			},
			setup: func(t *testing.T, m *dockermock.MockDockerClient) func(t *testing.T, h model.ProcessHandle) {
				expectPull(m, "busybox")
				m.On("ContainerCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Once().
					Return(container.CreateResponse{ID: "cid123"}, nil)
				m.On("ContainerAttach", mock.Anything, "cid123", mock.Anything).Once().
					Return(attachOver(nil), nil)
				expectWait(m, "cid123")
				m.On("ContainerStart", mock.Anything, "cid123", mock.Anything).Once().
					Return(fmt.Errorf("boom"))
				m.On("ContainerRemove", mock.Anything, "cid123", mock.Anything).Once().Return(nil)
				return nil
			},
			expErr: true,
		},

		"Missing image should fail": {
			spec: model.CommandSpec{
				Command: []string{"true"},
			},
			setup: func(t *testing.T, m *dockermock.MockDockerClient) func(t *testing.T, h model.ProcessHandle) {
				return nil
			},
			expErr: true,
		},

		"An empty command should fail": {
			spec: model.CommandSpec{
				Image: "busybox",
			},
			setup: func(t *testing.T, m *dockermock.MockDockerClient) func(t *testing.T, h model.ProcessHandle) {
				return nil
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mClient := &dockermock.MockDockerClient{}
			verify := test.setup(t, mClient)

			eng, err := docker.NewEngine(docker.EngineConfig{Client: mClient, Logger: log.Noop})
			require.NoError(err)

			handle, err := eng.Spawn(context.TODO(), test.spec)

			if test.expErr {
				assert.Error(err)
			} else {
				require.NoError(err)
				verify(t, handle)
			}

			mClient.AssertExpectations(t)
		})
	}
}

func TestEngineCheck(t *testing.T) {
	tests := map[string]struct {
		mock      func(m *dockermock.MockDockerClient)
		expStatus model.CheckStatus
	}{
		"A reachable daemon should report ok": {
			mock: func(m *dockermock.MockDockerClient) {
				m.On("Ping", mock.Anything).Once().Return(types.Ping{APIVersion: "1.47"}, nil)
			},
			expStatus: model.CheckStatusOK,
		},

		"An unreachable daemon should report an error": {
			mock: func(m *dockermock.MockDockerClient) {
				m.On("Ping", mock.Anything).Once().Return(types.Ping{}, fmt.Errorf("cannot connect to the Docker daemon"))
			},
			expStatus: model.CheckStatusError,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			mClient := &dockermock.MockDockerClient{}
			test.mock(mClient)

			eng, err := docker.NewEngine(docker.EngineConfig{Client: mClient, Logger: log.Noop})
			require.NoError(err)

			results := eng.Check(context.TODO())

			require.Len(results, 1)
			assert.Equal("docker_reachable", results[0].ID)
			assert.Equal(test.expStatus, results[0].Status)

			mClient.AssertExpectations(t)
		})
	}
}
