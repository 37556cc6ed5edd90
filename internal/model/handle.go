package model

import (
	"fmt"
	"io"
)

// StreamName identifies one of the byte channels of a spawned process.
type StreamName string

const (
	// StreamStdout is the standard output channel.
	StreamStdout StreamName = "stdout"
	// StreamStderr is the standard error channel.
	StreamStderr StreamName = "stderr"
)

// Origin tags a byte stream with the channel and command it came from, so
// read and worker failures can be attributed to the exact source.
type Origin struct {
	Stream  StreamName
	Command string
	PID     int
}

func (o Origin) String() string {
	switch {
	case o.Command == "":
		return string(o.Stream)
	case o.PID == 0:
		return fmt.Sprintf("%s of %q", o.Stream, o.Command)
	default:
		return fmt.Sprintf("%s of %q (pid %d)", o.Stream, o.Command, o.PID)
	}
}

// ByteStream is a finite, ordered sequence of bytes produced by one process
// channel. It can be consumed only once and is not restartable.
type ByteStream struct {
	Reader io.Reader
	Origin Origin
}

// ProcessHandle is the output side of an already spawned external process:
// up to three independent optional channels. A nil field means that channel
// was not wired by the spawner. Each channel can be consumed exactly once.
//
// Exit conventionally yields the terminating status code of the process,
// possibly preceded by earlier readings, and is closed by the spawner when
// no more values will be produced.
type ProcessHandle struct {
	Stdout *ByteStream
	Stderr *ByteStream
	Exit   <-chan int
}

// Empty returns true when the handle carries no process channels at all.
func (h ProcessHandle) Empty() bool {
	return h.Stdout == nil && h.Stderr == nil && h.Exit == nil
}
