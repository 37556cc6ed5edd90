package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/runcap/internal/model"
)

func TestNewCapturedValue(t *testing.T) {
	tests := map[string]struct {
		data []byte
		exp  model.CapturedValue
	}{
		"Valid UTF-8 bytes should classify as text with the exact decoded string": {
			data: []byte("hello\n"),
			exp:  model.CapturedValue{Kind: model.ValueKindText, Text: "hello\n"},
		},

		"An empty buffer should classify as empty text": {
			data: []byte{},
			exp:  model.CapturedValue{Kind: model.ValueKindText, Text: ""},
		},

		"Multibyte UTF-8 sequences should classify as text": {
			data: []byte("héllo 世界 🚀"),
			exp:  model.CapturedValue{Kind: model.ValueKindText, Text: "héllo 世界 🚀"},
		},

		"Invalid UTF-8 bytes should classify as binary keeping the exact bytes": {
			data: []byte{0xFF, 0xFE},
			exp:  model.CapturedValue{Kind: model.ValueKindBinary, Bytes: []byte{0xFF, 0xFE}},
		},

		"A single invalid byte in the middle should make the whole buffer binary": {
			data: []byte{'o', 'k', 0xC0, 'o', 'k'},
			exp:  model.CapturedValue{Kind: model.ValueKindBinary, Bytes: []byte{'o', 'k', 0xC0, 'o', 'k'}},
		},

		"A truncated multibyte sequence at the end should classify as binary": {
			data: append([]byte("héllo"), 0xE4, 0xB8),
			exp:  model.CapturedValue{Kind: model.ValueKindBinary, Bytes: append([]byte("héllo"), 0xE4, 0xB8)},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			got := model.NewCapturedValue(test.data)

			assert.Equal(test.exp, got)

			// Classification must be lossless whatever the kind.
			assert.Equal(test.data, got.Raw())

			// Classifying the same buffer again must give the same result.
			assert.Equal(got, model.NewCapturedValue(test.data))
		})
	}
}

func TestCapturedValueMarshalJSON(t *testing.T) {
	tests := map[string]struct {
		value model.CapturedValue
		exp   string
	}{
		"Text values should marshal as plain JSON strings": {
			value: model.NewCapturedValue([]byte("hello\n")),
			exp:   `"hello\n"`,
		},

		"Binary values should marshal as a base64 tagged object": {
			value: model.NewCapturedValue([]byte{0xFF, 0xFE}),
			exp:   `{"binary":"//4="}`,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			got, err := test.value.MarshalJSON()

			assert.NoError(err)
			assert.Equal(test.exp, string(got))
		})
	}
}
