// Package lib provides a Go SDK for running commands with complete output
// capture.
//
// This package allows applications to spawn commands, get their whole
// stdout, stderr and exit code as one record, and browse the recorded run
// history, without shelling out to the runcap CLI binary. It is useful for
// scripting, automation, and building tools on top of runcap.
//
// # Quick Start
//
// Create a client, run a command, and inspect the captured record:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	run, err := client.Run(ctx, []string{"sh", "-c", "echo out; echo err >&2"}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(run.Record.Stdout.Text)  // "out\n"
//	fmt.Println(run.Record.Stderr.Text)  // "err\n"
//	fmt.Println(*run.Record.ExitCode)    // 0
//
// A non-zero exit code is part of the record, not an error. The error
// return covers spawn and capture failures only.
//
// # Engines
//
// The SDK supports three engine types:
//
//   - [EngineLocal]: Commands run as host processes. This is the default.
//   - [EngineDocker]: Commands run inside a Docker container. Requires a
//     reachable Docker daemon. Set [Config].Image to pick the image.
//   - [EngineFake]: Fabricated output, nothing is spawned. Set
//     [Config].Engine to [EngineFake] for unit testing.
//
// # Capturing Existing Processes
//
// Processes the SDK did not spawn can still be captured. For a
// caller-prepared [os/exec.Cmd] use [Client.CaptureCommand]:
//
//	cmd := exec.Command("git", "status")
//	cmd.Dir = "/some/repo"
//	record, err := client.CaptureCommand(ctx, cmd)
//
// For anything else, wire the process output into a [ProcessHandle] and use
// [Client.Capture]. Channels missing from the handle simply produce no
// entry in the record.
//
// # Run History
//
// Every run is recorded in a local SQLite database (unless [RunOpts].NoStore
// is set). Browse and prune it with the history methods:
//
//	last, _ := client.LastRun(ctx)
//	runs, _ := client.ListRuns(ctx, &lib.ListRunsOpts{Failed: true})
//	client.RemoveRun(ctx, last.ID)
//	client.RemoveAllRuns(ctx)
//
// Set [Config].HistoryMaxRuns to cap the history size, oldest runs are
// pruned first.
//
// # JSON Output
//
// A [CompletionRecord] marshals to JSON with a fixed stdout, stderr,
// exit_code key order, absent channels produce no key, and binary stream
// contents are rendered as an object with the bytes in base64:
//
//	{"stdout":"out\n","stderr":"err\n","exit_code":0}
//
// # Health Checks
//
// Run preflight checks to verify the engine environment:
//
//	results, _ := client.Doctor(ctx)
//	for _, r := range results {
//	    fmt.Printf("%s: %s (%s)\n", r.ID, r.Message, r.Status)
//	}
//
// # Error Handling
//
// All methods return errors that can be inspected with [errors.Is]:
//
//   - [ErrNotFound]: The run does not exist in history.
//   - [ErrNotValid]: Invalid input (e.g. an empty command).
//   - [ErrNotProcessOutput]: The captured value has no process channels.
//
// # Testing
//
// Use [EngineFake] and a temporary database path to write tests without
// touching the host:
//
//	client, _ := lib.New(ctx, lib.Config{
//	    DBPath: filepath.Join(t.TempDir(), "test.db"),
//	    Engine: lib.EngineFake,
//	})
//	defer client.Close()
//
// # Thread Safety
//
// A [Client] is safe for concurrent use from multiple goroutines. The
// underlying storage uses SQLite with WAL mode, and engines are created
// per-operation.
package lib
