package docker

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/oklog/ulid/v2"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/slok/runcap/internal/log"
	"github.com/slok/runcap/internal/model"
)

// DockerClient is the interface for Docker operations that we use.
// This allows us to mock the Docker client for testing.
type DockerClient interface {
	Ping(ctx context.Context) (types.Ping, error)
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerAttach(ctx context.Context, containerID string, options container.AttachOptions) (types.HijackedResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
}

// EngineConfig is the configuration for the Docker engine.
type EngineConfig struct {
	Client DockerClient
	Logger log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.Client == nil {
		// Create a default Docker client
		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			return fmt.Errorf("could not create Docker client: %w", err)
		}
		c.Client = cli
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "engine.Docker"})
	return nil
}

// Engine spawns commands inside one-shot Docker containers.
type Engine struct {
	client DockerClient
	logger log.Logger
}

// NewEngine creates a new Docker engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		client: cfg.Client,
		logger: cfg.Logger,
	}, nil
}

// Spawn runs the command in a fresh container and returns a handle on its
// output channels. The attach and the exit wait are both registered before
// the container starts so neither output nor the exit status can be missed.
// The container is removed once it has exited and its output has streamed
// out.
func (e *Engine) Spawn(ctx context.Context, spec model.CommandSpec) (model.ProcessHandle, error) {
	if err := spec.Validate(); err != nil {
		return model.ProcessHandle{}, fmt.Errorf("invalid command spec: %w", err)
	}
	if spec.Image == "" {
		return model.ProcessHandle{}, fmt.Errorf("container image is required: %w", model.ErrNotValid)
	}

	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	containerName := fmt.Sprintf("runcap-%s", strings.ToLower(id))

	// Step 1: Pull the image.
	e.logger.Infof("[1/3] Pulling image: %s", spec.Image)
	pullResp, err := e.client.ImagePull(ctx, spec.Image, image.PullOptions{})
	if err != nil {
		return model.ProcessHandle{}, fmt.Errorf("could not pull image %s: %w", spec.Image, err)
	}
	// Consume the pull response to ensure it completes
	_, _ = io.Copy(io.Discard, pullResp)
	pullResp.Close()

	// Step 2: Create the container.
	e.logger.Infof("[2/3] Creating container: %s", containerName)

	var envVars []string
	for k, v := range spec.Env {
		envVars = append(envVars, fmt.Sprintf("%s=%s", k, v))
	}

	containerConfig := &container.Config{
		Image:        spec.Image,
		Cmd:          spec.Command,
		Env:          envVars,
		WorkingDir:   spec.WorkingDir,
		Tty:          spec.Tty,
		AttachStdout: true,
		AttachStderr: true,
	}
	if spec.Input != nil {
		containerConfig.AttachStdin = true
		containerConfig.OpenStdin = true
		containerConfig.StdinOnce = true
	}

	createResp, err := e.client.ContainerCreate(ctx, containerConfig, nil, nil, nil, containerName)
	if err != nil {
		return model.ProcessHandle{}, fmt.Errorf("could not create container: %w", err)
	}
	containerID := createResp.ID

	// Attach before starting so no output is missed.
	attachResp, err := e.client.ContainerAttach(ctx, containerID, container.AttachOptions{
		Stream: true,
		Stdin:  spec.Input != nil,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		e.removeContainer(containerID)
		return model.ProcessHandle{}, fmt.Errorf("could not attach to container: %w", err)
	}

	// Register the exit wait before starting for the same reason.
	waitC, waitErrC := e.client.ContainerWait(ctx, containerID, container.WaitConditionNextExit)

	// Step 3: Start the container.
	e.logger.Infof("[3/3] Starting container: %s", containerName)
	if err := e.client.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		attachResp.Close()
		e.removeContainer(containerID)
		return model.ProcessHandle{}, fmt.Errorf("could not start container: %w", err)
	}

	if spec.Input != nil {
		input := spec.Input
		go func() {
			_, _ = attachResp.Conn.Write(input)
			_ = attachResp.CloseWrite()
		}()
	}

	handle, drainedC := e.streamOutput(spec, attachResp)
	handle.Exit = e.watchExit(containerID, waitC, waitErrC, drainedC)

	return handle, nil
}

// streamOutput wires the attach connection into the handle streams. Without
// a terminal the daemon multiplexes stdout and stderr over the single attach
// connection, so they are demultiplexed into a pipe per stream. With a
// terminal the daemon sends one raw stream and the handle only carries the
// stdout channel.
func (e *Engine) streamOutput(spec model.CommandSpec, attachResp types.HijackedResponse) (model.ProcessHandle, <-chan struct{}) {
	drainedC := make(chan struct{})
	cmdLine := spec.String()

	if spec.Tty {
		outR, outW := io.Pipe()
		go func() {
			defer close(drainedC)
			_, err := io.Copy(outW, attachResp.Reader)
			outW.CloseWithError(err)
			attachResp.Close()
		}()

		return model.ProcessHandle{
			Stdout: &model.ByteStream{
				Reader: outR,
				Origin: model.Origin{Stream: model.StreamStdout, Command: cmdLine},
			},
		}, drainedC
	}

	outR, outW := io.Pipe()
	errR, errW := io.Pipe()
	go func() {
		defer close(drainedC)
		_, err := stdcopy.StdCopy(outW, errW, attachResp.Reader)
		outW.CloseWithError(err)
		errW.CloseWithError(err)
		attachResp.Close()
	}()

	return model.ProcessHandle{
		Stdout: &model.ByteStream{
			Reader: outR,
			Origin: model.Origin{Stream: model.StreamStdout, Command: cmdLine},
		},
		Stderr: &model.ByteStream{
			Reader: errR,
			Origin: model.Origin{Stream: model.StreamStderr, Command: cmdLine},
		},
	}, drainedC
}

// watchExit turns the container wait channels into the handle exit channel
// and removes the container once it has exited and its output has fully
// streamed out. A failed wait closes the channel without a value.
func (e *Engine) watchExit(containerID string, waitC <-chan container.WaitResponse, waitErrC <-chan error, drainedC <-chan struct{}) <-chan int {
	exitC := make(chan int, 1)
	go func() {
		defer close(exitC)

		code, ok := e.waitExit(containerID, waitC, waitErrC)

		// Hold the removal until the output has streamed out, removing the
		// container also tears down its attach connection.
		<-drainedC
		e.removeContainer(containerID)

		if ok {
			exitC <- code
		}
	}()

	return exitC
}

func (e *Engine) waitExit(containerID string, waitC <-chan container.WaitResponse, waitErrC <-chan error) (int, bool) {
	select {
	case res := <-waitC:
		if res.Error != nil {
			e.logger.Errorf("Container %s wait returned an error: %s", containerID, res.Error.Message)
			return 0, false
		}
		return int(res.StatusCode), true
	case err := <-waitErrC:
		e.logger.Errorf("Could not wait for container %s: %v", containerID, err)
		return 0, false
	}
}

// removeContainer removes the container on a fresh context so cleanup still
// happens when the spawn context is already gone.
func (e *Engine) removeContainer(containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := e.client.ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force: true, // Force removal even if running
	})
	if err != nil && !strings.Contains(err.Error(), "No such container") {
		e.logger.Warningf("Could not remove container %s: %v", containerID, err)
	}
}

// Check performs preflight checks for the Docker engine.
func (e *Engine) Check(ctx context.Context) []model.CheckResult {
	var results []model.CheckResult

	// Check 1: Docker daemon reachable.
	results = append(results, e.checkDaemon(ctx))

	return results
}

func (e *Engine) checkDaemon(ctx context.Context) model.CheckResult {
	ping, err := e.client.Ping(ctx)
	if err != nil {
		return model.CheckResult{
			ID:      "docker_reachable",
			Message: fmt.Sprintf("Cannot reach the Docker daemon: %v", err),
			Status:  model.CheckStatusError,
		}
	}

	return model.CheckResult{
		ID:      "docker_reachable",
		Message: fmt.Sprintf("Docker daemon is reachable (API %s)", ping.APIVersion),
		Status:  model.CheckStatusOK,
	}
}
