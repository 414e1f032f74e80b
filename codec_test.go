package libee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codecsUnderTest() map[string]Codec {
	return map[string]Codec{
		"msgpack": MsgpackCodec{},
		"json":    JSONCodec{},
	}
}

func TestCodecRoundTrip(t *testing.T) {
	for name, codec := range codecsUnderTest() {
		t.Run(name, func(t *testing.T) {
			want := date{Month: "January", Day: "Tuesday"}

			payload, err := codec.Encode(want)
			require.NoError(t, err)

			var got date
			require.NoError(t, codec.Decode(payload, &got))
			assert.Equal(t, want, got)
		})
	}
}

func TestCodecScalarRoundTrip(t *testing.T) {
	for name, codec := range codecsUnderTest() {
		t.Run(name, func(t *testing.T) {
			payload, err := codec.Encode(5.0)
			require.NoError(t, err)

			var got float64
			require.NoError(t, codec.Decode(payload, &got))
			assert.Equal(t, 5.0, got)
		})
	}
}

func TestCodecEncodeUnsupported(t *testing.T) {
	for name, codec := range codecsUnderTest() {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Encode(func() {})
			assert.Error(t, err)
		})
	}
}

func TestCodecDecodeMismatch(t *testing.T) {
	for name, codec := range codecsUnderTest() {
		t.Run(name, func(t *testing.T) {
			payload, err := codec.Encode(5.0)
			require.NoError(t, err)

			var got date
			assert.Error(t, codec.Decode(payload, &got))
		})
	}
}

func TestFrameRoundTrip(t *testing.T) {
	for name, codec := range codecsUnderTest() {
		t.Run(name, func(t *testing.T) {
			payload, err := codec.Encode(42)
			require.NoError(t, err)

			want := NewFrame("tick", payload)

			wire, err := EncodeFrame(codec, want)
			require.NoError(t, err)

			got, err := DecodeFrame(codec, wire)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}
