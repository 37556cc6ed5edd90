package model

import (
	"encoding/json"
	"unicode/utf8"
)

// ValueKind tells how the captured bytes of a stream must be interpreted.
type ValueKind string

const (
	// ValueKindText means the whole buffer was valid UTF-8.
	ValueKindText ValueKind = "text"
	// ValueKindBinary means the buffer was not valid UTF-8 and is kept as
	// opaque bytes.
	ValueKindBinary ValueKind = "binary"
)

// CapturedValue is the classified contents of one fully drained stream:
// text when the entire buffer is valid UTF-8, binary otherwise. Binary
// values keep the exact original bytes.
type CapturedValue struct {
	Kind  ValueKind
	Text  string
	Bytes []byte
}

// NewCapturedValue classifies a drained buffer. The classification is exact
// and lossless: text values decode to exactly the original byte sequence and
// binary values round trip byte for byte.
func NewCapturedValue(data []byte) CapturedValue {
	if utf8.Valid(data) {
		return CapturedValue{Kind: ValueKindText, Text: string(data)}
	}
	return CapturedValue{Kind: ValueKindBinary, Bytes: data}
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

// CompletionRecord is the final result of capturing a process handle: an
// ordered mapping with at most three keys, in fixed order stdout, stderr,
// exit_code. A field is nil iff the corresponding channel was absent on the
// handle (for ExitCode, also when the exit channel yielded no values).
type CompletionRecord struct {
	Stdout   *CapturedValue `json:"stdout,omitempty"`
	Stderr   *CapturedValue `json:"stderr,omitempty"`
	ExitCode *int           `json:"exit_code,omitempty"`
}
