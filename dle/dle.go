package dle

import (
	"errors"
)

// Wire constants.  These are fixed protocol values, not configurable.
const (
	// Stx marks the start of a frame.
	Stx byte = 0x02
	// Etx marks the end of a frame.
	Etx byte = 0x03
	// Dle is the escape byte.
	Dle byte = 0x10
	// Cr is the carriage return byte, escaped only when Codec.EscapeCr is set.
	Cr byte = 0x0D
)

// Escaped control bytes are stored shifted by 0x40.  The shift keeps the
// escaped byte from colliding with another control byte, so a reader polling
// an encoded stream can stop at the first ETX it sees, and it cannot overflow
// a byte for any of the control values.
const escapeShift = 0x40

var (
	// StreamTooShort is the error that is returned when the destination
	// buffer cannot hold the result of an encode or decode call.
	StreamTooShort = errors.New("Destination stream too short")

	// DecodingError is the error that is returned when the input bytes do not
	// form a valid encoded frame under the configured mode.  The consumed
	// count returned alongside it reports how many leading bytes were
	// examined, so the caller can discard a malformed prefix or wait for more
	// input.
	DecodingError = errors.New("Invalid DLE encoded stream")
)

// Codec holds the configuration of the encoding.  The zero value disables
// everything; use NewCodec for the canonical defaults.  A Codec carries no
// mutable state, so a single value may be shared freely between goroutines as
// long as each call supplies its own buffers.
type Codec struct {
	// EscapeStxEtx selects the escaped variant: frames are delimited by bare
	// STX/ETX bytes and any STX, ETX or (with EscapeCr) CR in the payload is
	// escaped as DLE followed by the byte plus 0x40.  When false, the
	// non-escaped variant is used: frames are delimited by the two-byte
	// sequences DLE STX and DLE ETX, control bytes pass through unescaped and
	// only DLE itself is doubled.
	EscapeStxEtx bool

	// EscapeCr additionally escapes carriage returns in the escaped variant,
	// for transports that would otherwise interpret them.
	EscapeCr bool

	// AddStxEtx emits the frame markers when encoding.  Decoding always
	// expects them; disable this only when a caller frames the output itself.
	AddStxEtx bool
}

// NewCodec returns a Codec with the default configuration: escaped variant,
// no CR escaping, frame markers added.
func NewCodec() Codec {
	return Codec{EscapeStxEtx: true, AddStxEtx: true}
}

// Encode encodes src into dst and returns the number of bytes written.  A
// frame is only ever produced whole: if dst cannot hold the complete encoding
// including any trailing marker, Encode returns StreamTooShort and the
// content of dst is unspecified.  EncodedLen reports the exact size required.
func (c Codec) Encode(dst, src []byte) (int, error) {
	if c.EscapeStxEtx {
		return c.encodeEscaped(dst, src)
	}
	return c.encodeNonEscaped(dst, src)
}

func (c Codec) encodeEscaped(dst, src []byte) (int, error) {
	n := 0
	if c.AddStxEtx {
		if len(dst) < 1 {
			return 0, StreamTooShort
		}
		dst[n] = Stx
		n++
	}
	for _, b := range src {
		switch {
		case b == Stx || b == Etx || (c.EscapeCr && b == Cr):
			if len(dst)-n < 2 {
				return 0, StreamTooShort
			}
			dst[n] = Dle
			dst[n+1] = b + escapeShift
			n += 2
		case b == Dle:
			if len(dst)-n < 2 {
				return 0, StreamTooShort
			}
			dst[n] = Dle
			dst[n+1] = Dle
			n += 2
		default:
			if n == len(dst) {
				return 0, StreamTooShort
			}
			dst[n] = b
			n++
		}
	}
	if c.AddStxEtx {
		if n == len(dst) {
			return 0, StreamTooShort
		}
		dst[n] = Etx
		n++
	}
	return n, nil
}

func (c Codec) encodeNonEscaped(dst, src []byte) (int, error) {
	n := 0
	if c.AddStxEtx {
		if len(dst) < 2 {
			return 0, StreamTooShort
		}
		dst[n] = Dle
		dst[n+1] = Stx
		n += 2
	}
	for _, b := range src {
		if b == Dle {
			if len(dst)-n < 2 {
				return 0, StreamTooShort
			}
			dst[n] = Dle
			dst[n+1] = Dle
			n += 2
		} else {
			if n == len(dst) {
				return 0, StreamTooShort
			}
			dst[n] = b
			n++
		}
	}
	if c.AddStxEtx {
		if len(dst)-n < 2 {
			return 0, StreamTooShort
		}
		dst[n] = Dle
		dst[n+1] = Etx
		n += 2
	}
	return n, nil
}

// EncodedLen returns the exact number of bytes that Encode produces for src
// under this configuration.
func (c Codec) EncodedLen(src []byte) int {
	n := len(src)
	if c.EscapeStxEtx {
		for _, b := range src {
			if b == Stx || b == Etx || b == Dle || (c.EscapeCr && b == Cr) {
				n++
			}
		}
		if c.AddStxEtx {
			n += 2
		}
	} else {
		for _, b := range src {
			if b == Dle {
				n++
			}
		}
		if c.AddStxEtx {
			n += 4
		}
	}
	return n
}

// Decode decodes one complete frame from the head of src into dst.  It
// returns the number of payload bytes written and the number of leading bytes
// of src that the frame occupied, so a caller holding a multi-frame buffer
// can advance its cursor past the frame.  Decoding always expects the frame
// markers of the configured variant, regardless of AddStxEtx.
//
// On DecodingError the consumed count reports how many leading bytes were
// examined: the caller may discard exactly that prefix and resynchronize.  A
// consumed count equal to len(src) means the frame is incomplete and more
// input is needed.  On StreamTooShort consumed is zero; the caller should
// retry with a larger dst without discarding input.
func (c Codec) Decode(dst, src []byte) (n, consumed int, err error) {
	if c.EscapeStxEtx {
		return c.decodeEscaped(dst, src)
	}
	return c.decodeNonEscaped(dst, src)
}

func (c Codec) decodeEscaped(dst, src []byte) (int, int, error) {
	if len(src) == 0 {
		return 0, 0, DecodingError
	}
	if src[0] != Stx {
		return 0, 0, DecodingError
	}
	n := 0
	i := 1
	for i < len(src) {
		b := src[i]
		if b == Etx {
			return n, i + 1, nil
		}
		if b == Stx {
			// A second STX means the current frame was truncated.  It is not
			// consumed, so the caller can re-present it as the start of the
			// next frame.
			return 0, i, DecodingError
		}
		if b == Dle {
			if i+1 == len(src) {
				return 0, len(src), DecodingError
			}
			next := src[i+1]
			switch {
			case next == Dle:
				b = Dle
			case next == Stx+escapeShift || next == Etx+escapeShift ||
				(c.EscapeCr && next == Cr+escapeShift):
				b = next - escapeShift
			default:
				return 0, i + 2, DecodingError
			}
			i++
		}
		if n == len(dst) {
			return 0, 0, StreamTooShort
		}
		dst[n] = b
		n++
		i++
	}
	// Ran out of input without a terminating ETX.  Nothing can be discarded;
	// more bytes must arrive.
	return 0, len(src), DecodingError
}

func (c Codec) decodeNonEscaped(dst, src []byte) (int, int, error) {
	if len(src) == 0 || src[0] != Dle {
		return 0, 0, DecodingError
	}
	if len(src) < 2 {
		return 0, 0, DecodingError
	}
	if src[1] != Stx {
		return 0, 1, DecodingError
	}
	n := 0
	i := 2
	for i < len(src) {
		b := src[i]
		if b == Dle {
			if i+1 == len(src) {
				// Lone DLE at the end of the input.  Leave it unconsumed: it
				// could be the first half of the next frame marker.
				return 0, i, DecodingError
			}
			switch src[i+1] {
			case Stx:
				// Start of a new frame colliding with this unterminated one.
				// The DLE STX pair is preserved for the caller.
				return 0, i, DecodingError
			case Etx:
				return n, i + 2, nil
			case Dle:
				b = Dle
				i++
			default:
				return 0, i, DecodingError
			}
		}
		if n == len(dst) {
			return 0, 0, StreamTooShort
		}
		dst[n] = b
		n++
		i++
	}
	return 0, len(src), DecodingError
}
