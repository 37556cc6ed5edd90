package spawn

import (
	"context"

	"github.com/slok/runcap/internal/model"
)

// Spawner launches external commands and hands back the output side of the
// spawned process, ready to be captured.
type Spawner interface {
	// Check performs preflight checks and returns the results.
	// Checks verify that the engine has all required dependencies and permissions.
	Check(ctx context.Context) []model.CheckResult

	// Spawn starts the command described by the spec and returns its process
	// handle. The engine keeps feeding the handle channels until the process
	// ends, the caller must consume each of them exactly once.
	Spawn(ctx context.Context, spec model.CommandSpec) (model.ProcessHandle, error)
}
