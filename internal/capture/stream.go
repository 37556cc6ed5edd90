package capture

import (
	"fmt"
	"io"

	"github.com/slok/runcap/internal/model"
)

// rawCapture is the fully drained contents of one byte stream plus the
// provenance it was read from.
type rawCapture struct {
	data   []byte
	origin model.Origin
}

// readAll blocks until the stream reaches end of stream and returns every
// byte it produced, in order. A transport fault surfaces as a stream read
// error attributed to the stream's origin, it is not retried.
func readAll(stream model.ByteStream) (rawCapture, error) {
	data, err := io.ReadAll(stream.Reader)
	if err != nil {
		return rawCapture{}, fmt.Errorf("could not read %s: %v: %w", stream.Origin, err, model.ErrStreamRead)
	}

	return rawCapture{data: data, origin: stream.Origin}, nil
}

// drainStream reads one stream to the end and classifies the captured bytes
// as text or binary. Only the read can fail, classification never does.
func drainStream(stream model.ByteStream) (model.CapturedValue, error) {
	raw, err := readAll(stream)
	if err != nil {
		return model.CapturedValue{}, err
	}

	return model.NewCapturedValue(raw.data), nil
}
