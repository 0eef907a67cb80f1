package dle_test

import (
	"bytes"
	"testing"

	"github.com/robamu-org/dle-encoder-go/dle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// payloadByte draws the reserved control bytes far more often than a uniform
// byte generator would, so the escape paths are actually exercised.
var payloadByte = rapid.OneOf(
	rapid.Byte(),
	rapid.SampledFrom([]byte{dle.Stx, dle.Etx, dle.Dle, dle.Cr}),
)

var payload = rapid.SliceOf(payloadByte)

var payloadString = rapid.Custom(func(t *rapid.T) string {
	return string(payload.Draw(t, "bytes").([]byte))
})

func drawCodec(t *rapid.T) dle.Codec {
	return dle.Codec{
		EscapeStxEtx: rapid.Bool().Draw(t, "escapeStxEtx").(bool),
		EscapeCr:     rapid.Bool().Draw(t, "escapeCr").(bool),
		AddStxEtx:    true,
	}
}

func TestRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		codec := drawCodec(t)
		input := payload.Draw(t, "input").([]byte)

		encoded := make([]byte, codec.EncodedLen(input))
		n, err := codec.Encode(encoded, input)
		require.NoError(t, err)
		require.Equal(t, len(encoded), n)

		decoded := make([]byte, len(input))
		n, consumed, err := codec.Decode(decoded, encoded)
		require.NoError(t, err)
		assert.Equal(t, len(encoded), consumed)
		assert.Equal(t, input, decoded[:n])
	})
}

func TestNoEmbeddedDelimiters(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		codec := dle.NewCodec()
		codec.EscapeCr = rapid.Bool().Draw(t, "escapeCr").(bool)
		input := payload.Draw(t, "input").([]byte)

		encoded := make([]byte, codec.EncodedLen(input))
		_, err := codec.Encode(encoded, input)
		require.NoError(t, err)

		assert.Equal(t, dle.Stx, encoded[0])
		assert.Equal(t, dle.Etx, encoded[len(encoded)-1])
		interior := encoded[1 : len(encoded)-1]
		assert.Equal(t, -1, bytes.IndexByte(interior, dle.Stx))
		assert.Equal(t, -1, bytes.IndexByte(interior, dle.Etx))
	})
}

func TestRoundTripRandomLists(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		codec := drawCodec(t)
		inputList := rapid.SliceOf(payloadString).Draw(t, "inputList").([]string)
		checkListRoundTrip(t, codec, inputList)
	})
}
