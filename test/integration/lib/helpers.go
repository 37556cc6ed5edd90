package lib

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	sdklib "github.com/slok/runcap/pkg/lib"
)

// NewConfig checks the integration test activation environment variable.
// If it is not set, the test is skipped. The SDK tests run commands with
// the local engine, so beyond a shell nothing else is required on the host.
func NewConfig(t *testing.T) {
	t.Helper()

	const envActivation = "RUNCAP_INTEGRATION"

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}
}

// NewTestClient creates an SDK client with a temp SQLite DB for test
// isolation. The client uses the local engine and spawns real processes.
func NewTestClient(t *testing.T) *sdklib.Client {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	client, err := sdklib.New(ctx, sdklib.Config{
		DBPath:  dbPath,
		DataDir: t.TempDir(),
		Engine:  sdklib.EngineLocal,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}
