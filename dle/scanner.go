package dle

import (
	"bytes"
)

// Scanner iterates over the complete frames in a buffer that may contain
// several encoded frames back to back, possibly with noise or truncated
// frames in between.  Next skips ahead to the next plausible frame start, so
// a malformed frame costs the scanner nothing more than the bytes it covers.
// A trailing incomplete frame is preserved: once Next returns false, Rest
// returns the unscanned tail, which a streaming caller can prepend to the
// next chunk of input before calling Reset again.
type Scanner struct {
	codec Codec
	buf   []byte
	pos   int
	frame []byte
}

// Reset prepares the scanner to iterate over the frames in buf using the
// given codec configuration.  Configurations with AddStxEtx disabled produce
// no markers, so there is nothing for a scanner to find.
func (s *Scanner) Reset(c Codec, buf []byte) {
	s.codec = c
	s.buf = buf
	s.pos = 0
	s.frame = nil
}

// Next advances the scanner to the next complete frame, reporting whether one
// was found.
func (s *Scanner) Next() bool {
	if s.codec.EscapeStxEtx {
		return s.nextEscaped()
	}
	return s.nextNonEscaped()
}

// nextEscaped can scan for the markers directly because the encoding
// guarantees that no unescaped STX or ETX appears inside a frame.  A second
// STX before the ETX abandons the truncated frame and restarts there.
func (s *Scanner) nextEscaped() bool {
	start := -1
	for i := s.pos; i < len(s.buf); i++ {
		switch s.buf[i] {
		case Stx:
			start = i
		case Etx:
			if start >= 0 {
				s.frame = s.buf[start : i+1]
				s.pos = i + 1
				return true
			}
			// ETX with no open frame is inter-frame noise.
		}
	}
	if start >= 0 {
		s.pos = start
	} else {
		s.pos = len(s.buf)
	}
	s.frame = nil
	return false
}

// nextNonEscaped walks the buffer DLE pair by DLE pair, since bare STX and
// ETX bytes are legal payload in this variant.
func (s *Scanner) nextNonEscaped() bool {
	start := -1
	i := s.pos
	for i < len(s.buf) {
		if s.buf[i] != Dle {
			i++
			continue
		}
		if i+1 == len(s.buf) {
			// Possibly half of the next frame marker.
			break
		}
		switch s.buf[i+1] {
		case Stx:
			start = i
		case Etx:
			if start >= 0 {
				s.frame = s.buf[start : i+2]
				s.pos = i + 2
				return true
			}
		}
		i += 2
	}
	if start >= 0 {
		s.pos = start
	} else {
		s.pos = i
	}
	s.frame = nil
	return false
}

// Frame returns the current encoded frame, markers included.  It is only
// valid after a call to Next that returned true, and only until the next call
// to Next or Reset.
func (s *Scanner) Frame() []byte {
	return s.frame
}

// Decode decodes the current frame and appends the payload to buf.
func (s *Scanner) Decode(buf *bytes.Buffer) error {
	// The payload is never longer than the encoded frame.
	buf.Grow(len(s.frame))
	dst := buf.AvailableBuffer()[:buf.Available()]
	n, _, err := s.codec.Decode(dst, s.frame)
	if err != nil {
		return err
	}
	buf.Write(dst[:n])
	return nil
}

// Rest returns the unscanned tail of the buffer.  After Next has returned
// false this is the trailing incomplete frame, or an empty slice if the
// buffer ended cleanly.
func (s *Scanner) Rest() []byte {
	return s.buf[s.pos:]
}
