package lib

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/slok/runcap/internal/model"
)

// Sentinel errors returned by the SDK. Check them with [errors.Is].
var (
	// ErrNotFound is returned when a run does not exist in history.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned on invalid input, like an empty command or an
	// unsupported engine type.
	ErrNotValid = errors.New("not valid")
	// ErrNotProcessOutput is returned by [Client.Capture] when the handle
	// carries no process channels at all.
	ErrNotProcessOutput = errors.New("not the output of a spawned process")
)

// EngineType identifies the engine that spawns commands.
type EngineType string

const (
	// EngineLocal runs commands as host processes. This is the default.
	EngineLocal EngineType = "local"

	// EngineDocker runs commands inside a Docker container.
	// Requires a reachable Docker daemon.
	EngineDocker EngineType = "docker"

	// EngineFake fabricates command output without spawning anything.
	// Use this for unit testing without touching the host.
	EngineFake EngineType = "fake"
)

func (e EngineType) internal() model.EngineType { return model.EngineType(e) }

// ValueKind tells how the captured bytes of a stream must be interpreted.
type ValueKind string

const (
	// ValueKindText means the whole stream was valid UTF-8.
	ValueKindText ValueKind = "text"
	// ValueKindBinary means the stream was not valid UTF-8 and is kept as
	// opaque bytes.
	ValueKindBinary ValueKind = "binary"
)

// CapturedValue is the classified contents of one fully drained stream.
//
// Exactly one of Text or Bytes is populated depending on Kind. Use [CapturedValue.Raw]
// to get the original bytes regardless of the kind.
type CapturedValue struct {
	// Kind is text when the whole stream was valid UTF-8, binary otherwise.
	Kind ValueKind
	// Text holds the stream contents when Kind is [ValueKindText].
	Text string
	// Bytes holds the exact stream bytes when Kind is [ValueKindBinary].
	Bytes []byte
}

// Raw returns the exact original bytes of the value whatever its kind.
func (v CapturedValue) Raw() []byte {
	if v.Kind == ValueKindBinary {
		return v.Bytes
	}
	return []byte(v.Text)
}

// MarshalJSON renders text values as plain JSON strings and binary values as
// an object with the bytes in base64, so text output stays readable and
// binary output stays lossless.
func (v CapturedValue) MarshalJSON() ([]byte, error) {
	if v.Kind == ValueKindBinary {
		return json.Marshal(struct {
			Binary []byte `json:"binary"`
		}{Binary: v.Bytes})
	}
	return json.Marshal(v.Text)
}

// CompletionRecord is the complete captured result of one command: whole
// stdout, whole stderr and the exit code.
//
// A nil field means the corresponding channel was absent, like stderr under
// a TTY (the terminal merges it into stdout). JSON marshalling keeps the
// stdout, stderr, exit_code key order and omits absent fields.
type CompletionRecord struct {
	// Stdout is the complete standard output. Nil if the channel was absent.
	Stdout *CapturedValue `json:"stdout,omitempty"`
	// Stderr is the complete standard error. Nil if the channel was absent.
	Stderr *CapturedValue `json:"stderr,omitempty"`
	// ExitCode is the process exit status. Nil if the exit channel was
	// absent or yielded no value.
	ExitCode *int `json:"exit_code,omitempty"`
}

// Run represents a single recorded command execution.
//
// This is a read-only snapshot of the run as stored in history.
type Run struct {
	// ID is the unique identifier (ULID) assigned when the run was recorded.
	ID string
	// Command is the executed command and its arguments.
	Command []string
	// Engine is the engine that spawned the command.
	Engine EngineType
	// Record is the captured output and exit code.
	Record CompletionRecord
	// CreatedAt is when the command was spawned.
	CreatedAt time.Time
	// Duration is how long the command took from spawn to full capture.
	Duration time.Duration
}

// RunOpts configures a command execution.
//
// Pass nil to [Client.Run] to use defaults (inherited working dir, no extra
// env, no input, run stored in history).
type RunOpts struct {
	// WorkingDir sets the working directory for the command.
	WorkingDir string
	// Env contains additional environment variables for this run only.
	Env map[string]string
	// Input is a one-shot buffer written to the command's standard input
	// before capture starts. Nil means no input.
	Input []byte
	// Tty allocates a terminal for the command, which merges stdout and
	// stderr into a single stream.
	Tty bool
	// Image is the container image to run in. Only used with [EngineDocker],
	// defaults to [Config].Image.
	Image string
	// NoStore skips recording the run in history.
	NoStore bool
}

// ListRunsOpts configures run listing.
//
// Pass nil to [Client.ListRuns] to list all runs.
type ListRunsOpts struct {
	// Engine filters runs by the engine that spawned them. Nil means all.
	Engine *EngineType
	// Failed filters to runs that ended with a non-zero or missing exit code.
	Failed bool
	// Limit caps how many runs are returned. 0 means all.
	Limit int
}

// --- Process handle types ---

// StreamName identifies one of the byte channels of a spawned process.
type StreamName string

const (
	// StreamStdout is the standard output channel.
	StreamStdout StreamName = "stdout"
	// StreamStderr is the standard error channel.
	StreamStderr StreamName = "stderr"
)

// Origin tags a byte stream with the channel and command it came from, so
// capture failures can be attributed to the exact source.
type Origin struct {
	// Stream names the process channel.
	Stream StreamName
	// Command is the command line the stream belongs to. Optional.
	Command string
	// PID is the process ID. Optional.
	PID int
}

// ByteStream is a finite byte sequence produced by one process channel.
// It is consumed exactly once during capture.
type ByteStream struct {
	// Reader yields the channel's bytes until end of stream.
	Reader io.Reader
	// Origin attributes the stream to its source.
	Origin Origin
}

// ProcessHandle is the output side of an already spawned process: up to
// three independent optional channels. A nil field means that channel is not
// wired and produces no entry in the capture record.
type ProcessHandle struct {
	// Stdout is the standard output channel.
	Stdout *ByteStream
	// Stderr is the standard error channel.
	Stderr *ByteStream
	// Exit yields the process exit status, possibly preceded by earlier
	// readings. The producer must close it once no more values will be sent.
	Exit <-chan int
}

// --- Doctor types ---

// CheckStatus represents the status of a preflight check.
type CheckStatus string

const (
	// CheckStatusOK indicates the check passed.
	CheckStatusOK CheckStatus = "ok"
	// CheckStatusWarning indicates the check passed with a warning.
	CheckStatusWarning CheckStatus = "warning"
	// CheckStatusError indicates the check failed.
	CheckStatusError CheckStatus = "error"
)

// CheckResult represents the result of a single preflight check.
type CheckResult struct {
	// ID is a unique identifier for the check (e.g. "docker_reachable").
	ID string
	// Message is a human-readable description of the result.
	Message string
	// Status is the check status.
	Status CheckStatus
}

// --- Internal conversion helpers ---

func toInternalSpec(command []string, opts *RunOpts, defaultImage string) model.CommandSpec {
	spec := model.CommandSpec{Command: command}

	if opts != nil {
		spec.WorkingDir = opts.WorkingDir
		spec.Env = opts.Env
		spec.Input = opts.Input
		spec.Tty = opts.Tty
		spec.Image = opts.Image
	}

	if spec.Image == "" {
		spec.Image = defaultImage
	}

	return spec
}

func toInternalHandle(h ProcessHandle) model.ProcessHandle {
	result := model.ProcessHandle{Exit: h.Exit}

	if h.Stdout != nil {
		result.Stdout = &model.ByteStream{
			Reader: h.Stdout.Reader,
			Origin: toInternalOrigin(h.Stdout.Origin, model.StreamStdout),
		}
	}

	if h.Stderr != nil {
		result.Stderr = &model.ByteStream{
			Reader: h.Stderr.Reader,
			Origin: toInternalOrigin(h.Stderr.Origin, model.StreamStderr),
		}
	}

	return result
}

func toInternalOrigin(o Origin, fallback model.StreamName) model.Origin {
	stream := model.StreamName(o.Stream)
	if o.Stream == "" {
		stream = fallback
	}

	return model.Origin{
		Stream:  stream,
		Command: o.Command,
		PID:     o.PID,
	}
}

func toInternalEngineFilter(opts *ListRunsOpts) *model.EngineType {
	if opts == nil || opts.Engine == nil {
		return nil
	}
	e := model.EngineType(*opts.Engine)
	return &e
}

func fromInternalRun(r model.Run) Run {
	return Run{
		ID:        r.ID,
		Command:   r.Command,
		Engine:    EngineType(r.Engine),
		Record:    fromInternalRecord(r.Record),
		CreatedAt: r.CreatedAt,
		Duration:  r.Duration,
	}
}

func fromInternalRunList(rs []model.Run) []Run {
	result := make([]Run, len(rs))
	for i, r := range rs {
		result[i] = fromInternalRun(r)
	}
	return result
}

func fromInternalRecord(r model.CompletionRecord) CompletionRecord {
	return CompletionRecord{
		Stdout:   fromInternalValue(r.Stdout),
		Stderr:   fromInternalValue(r.Stderr),
		ExitCode: r.ExitCode,
	}
}

func fromInternalValue(v *model.CapturedValue) *CapturedValue {
	if v == nil {
		return nil
	}

	return &CapturedValue{
		Kind:  ValueKind(v.Kind),
		Text:  v.Text,
		Bytes: v.Bytes,
	}
}

func fromInternalCheckResults(results []model.CheckResult) []CheckResult {
	out := make([]CheckResult, len(results))
	for i, r := range results {
		out[i] = CheckResult{
			ID:      r.ID,
			Message: r.Message,
			Status:  CheckStatus(r.Status),
		}
	}
	return out
}

// mapError attaches the public sentinel matching the internal error cause,
// keeping the original message and chain intact.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return &sentinelError{err: err, sentinel: ErrNotFound}
	case errors.Is(err, model.ErrNotValid):
		return &sentinelError{err: err, sentinel: ErrNotValid}
	case errors.Is(err, model.ErrNotProcessOutput):
		return &sentinelError{err: err, sentinel: ErrNotProcessOutput}
	default:
		return err
	}
}

type sentinelError struct {
	err      error
	sentinel error
}

func (e *sentinelError) Error() string { return e.err.Error() }

func (e *sentinelError) Is(target error) bool { return target == e.sentinel }

func (e *sentinelError) Unwrap() error { return e.err }
