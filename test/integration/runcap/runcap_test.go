package runcap_test

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intruncap "github.com/slok/runcap/test/integration/runcap"
)

// newTestDB creates a temp directory with a fresh SQLite database path for test isolation.
func newTestDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "test-runcap.db")
}

// recordOutput matches the JSON output of `runcap run --format json`.
// Stream values are raw because binary streams render as an object.
type recordOutput struct {
	Stdout   json.RawMessage `json:"stdout"`
	Stderr   json.RawMessage `json:"stderr"`
	ExitCode *int            `json:"exit_code"`
}

// runOutput matches the JSON output of `runcap get --format json`.
type runOutput struct {
	ID         string       `json:"id"`
	Command    []string     `json:"command"`
	Engine     string       `json:"engine"`
	CreatedAt  string       `json:"created_at"`
	DurationMS int64        `json:"duration_ms"`
	Record     recordOutput `json:"record"`
}

// listItem matches the JSON output of `runcap list --format json`.
type listItem struct {
	ID        string `json:"id"`
	Command   string `json:"command"`
	Engine    string `json:"engine"`
	ExitCode  *int   `json:"exit_code"`
	CreatedAt string `json:"created_at"`
}

func parseRecord(t *testing.T, data []byte) recordOutput {
	t.Helper()
	var record recordOutput
	require.NoError(t, json.Unmarshal(data, &record), "invalid record JSON: %s", data)
	return record
}

func parseRunList(t *testing.T, data []byte) []listItem {
	t.Helper()
	var items []listItem
	require.NoError(t, json.Unmarshal(data, &items), "invalid list JSON: %s", data)
	return items
}

// textValue decodes a stream value that is expected to be plain text.
func textValue(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	require.NoError(t, json.Unmarshal(raw, &s), "stream value is not text: %s", raw)
	return s
}

// cmdExitCode extracts the exit status from a binary invocation error.
func cmdExitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected an exit error, got: %v", err)
	return exitErr.ExitCode()
}

func TestRunCapturesBothStreamsAndExitCode(t *testing.T) {
	config := intruncap.NewConfig(t)
	dbPath := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stdout, stderr, err := intruncap.RunRun(ctx, config, dbPath,
		[]string{"--format", "json"},
		[]string{"sh", "-c", "printf out; printf err >&2"},
	)
	require.NoError(t, err, "run failed: stdout=%s stderr=%s", stdout, stderr)

	record := parseRecord(t, stdout)
	assert.Equal(t, "out", textValue(t, record.Stdout))
	assert.Equal(t, "err", textValue(t, record.Stderr))
	require.NotNil(t, record.ExitCode)
	assert.Equal(t, 0, *record.ExitCode)
}

func TestRunPropagatesExitCode(t *testing.T) {
	config := intruncap.NewConfig(t)
	dbPath := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stdout, _, err := intruncap.RunRun(ctx, config, dbPath,
		[]string{"--format", "json"},
		[]string{"sh", "-c", "echo boom >&2; exit 7"},
	)

	// The binary exits with the command's exit code, the record is still printed.
	require.Error(t, err)
	assert.Equal(t, 7, cmdExitCode(t, err))

	record := parseRecord(t, stdout)
	require.NotNil(t, record.ExitCode)
	assert.Equal(t, 7, *record.ExitCode)
	assert.Equal(t, "boom\n", textValue(t, record.Stderr))
}

func TestRunBinaryOutput(t *testing.T) {
	config := intruncap.NewConfig(t)
	dbPath := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stdout, stderr, err := intruncap.RunRun(ctx, config, dbPath,
		[]string{"--format", "json"},
		[]string{"sh", "-c", `printf '\377\376'`},
	)
	require.NoError(t, err, "run failed: stdout=%s stderr=%s", stdout, stderr)

	// Non UTF-8 output renders as an object with the bytes in base64.
	record := parseRecord(t, stdout)
	var binary struct {
		Binary []byte `json:"binary"`
	}
	require.NoError(t, json.Unmarshal(record.Stdout, &binary))
	assert.Equal(t, []byte{0xff, 0xfe}, binary.Binary)
}

func TestRunEnvAndWorkdir(t *testing.T) {
	config := intruncap.NewConfig(t)
	dbPath := newTestDB(t)
	dir := t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stdout, stderr, err := intruncap.RunRun(ctx, config, dbPath,
		[]string{"--format", "json", "-e", "GREETING=hello", "-w", dir},
		[]string{"sh", "-c", `echo "$GREETING from $PWD"`},
	)
	require.NoError(t, err, "run failed: stdout=%s stderr=%s", stdout, stderr)

	record := parseRecord(t, stdout)
	assert.Equal(t, "hello from "+dir+"\n", textValue(t, record.Stdout))
}

func TestRunHistoryFlow(t *testing.T) {
	config := intruncap.NewConfig(t)
	dbPath := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// 1. Record two runs.
	_, stderr, err := intruncap.RunRun(ctx, config, dbPath, nil, []string{"echo", "first"})
	require.NoError(t, err, "run failed: stderr=%s", stderr)
	_, stderr, err = intruncap.RunRun(ctx, config, dbPath, nil, []string{"echo", "second"})
	require.NoError(t, err, "run failed: stderr=%s", stderr)

	// 2. List shows both, newest first.
	stdout, stderr, err := intruncap.RunList(ctx, config, dbPath)
	require.NoError(t, err, "list failed: stderr=%s", stderr)
	items := parseRunList(t, stdout)
	require.Len(t, items, 2)
	assert.Equal(t, "echo second", items[0].Command)
	assert.Equal(t, "echo first", items[1].Command)
	assert.Equal(t, "local", items[0].Engine)

	// 3. Get without an ID returns the last run with its full record.
	stdout, stderr, err = intruncap.RunGet(ctx, config, dbPath, "")
	require.NoError(t, err, "get failed: stderr=%s", stderr)
	var last runOutput
	require.NoError(t, json.Unmarshal(stdout, &last))
	assert.Equal(t, items[0].ID, last.ID)
	assert.Equal(t, []string{"echo", "second"}, last.Command)
	assert.Equal(t, "second\n", textValue(t, last.Record.Stdout))

	// 4. Get by ID returns the older run.
	stdout, stderr, err = intruncap.RunGet(ctx, config, dbPath, items[1].ID)
	require.NoError(t, err, "get failed: stderr=%s", stderr)
	var first runOutput
	require.NoError(t, json.Unmarshal(stdout, &first))
	assert.Equal(t, []string{"echo", "first"}, first.Command)

	// 5. Remove one run.
	_, stderr, err = intruncap.RunRm(ctx, config, dbPath, items[1].ID)
	require.NoError(t, err, "rm failed: stderr=%s", stderr)

	stdout, _, err = intruncap.RunList(ctx, config, dbPath)
	require.NoError(t, err)
	items = parseRunList(t, stdout)
	require.Len(t, items, 1)

	// 6. Remove everything.
	_, stderr, err = intruncap.RunRmAll(ctx, config, dbPath)
	require.NoError(t, err, "rm --all failed: stderr=%s", stderr)

	stdout, _, err = intruncap.RunList(ctx, config, dbPath)
	require.NoError(t, err)
	assert.Empty(t, parseRunList(t, stdout))
}

func TestRunNoStore(t *testing.T) {
	config := intruncap.NewConfig(t)
	dbPath := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	_, stderr, err := intruncap.RunRun(ctx, config, dbPath,
		[]string{"--no-store"},
		[]string{"echo", "ephemeral"},
	)
	require.NoError(t, err, "run failed: stderr=%s", stderr)

	stdout, _, err := intruncap.RunList(ctx, config, dbPath)
	require.NoError(t, err)
	assert.Empty(t, parseRunList(t, stdout))
}

func TestDoctorFakeEngine(t *testing.T) {
	config := intruncap.NewConfig(t)
	dbPath := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stdout, stderr, err := intruncap.RunDoctor(ctx, config, dbPath, "fake")
	require.NoError(t, err, "doctor failed: stdout=%s stderr=%s", stdout, stderr)
	assert.Contains(t, string(stdout), "fake_engine")
	assert.Contains(t, string(stdout), "Fake engine is always ready")
}

func TestDockerRun(t *testing.T) {
	config := intruncap.NewConfig(t)
	if !intruncap.DockerEnabled() {
		t.Skip("Skipping Docker integration test: RUNCAP_INTEGRATION_DOCKER is not set to 'true'")
	}
	dbPath := newTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stdout, _, err := intruncap.RunRun(ctx, config, dbPath,
		[]string{"--format", "json", "--engine", "docker", "--image", "alpine:3.22"},
		[]string{"sh", "-c", "printf containerized; exit 5"},
	)

	require.Error(t, err)
	assert.Equal(t, 5, cmdExitCode(t, err))

	record := parseRecord(t, stdout)
	assert.Equal(t, "containerized", textValue(t, record.Stdout))
	require.NotNil(t, record.ExitCode)
	assert.Equal(t, 5, *record.ExitCode)

	// The run is recorded with the docker engine label.
	listOut, stderr2, err := intruncap.RunList(ctx, config, dbPath)
	require.NoError(t, err, "list failed: stderr=%s", stderr2)
	items := parseRunList(t, listOut)
	require.Len(t, items, 1)
	assert.Equal(t, "docker", items[0].Engine)
}
