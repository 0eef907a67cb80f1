package dle

import (
	"bytes"
)

// FrameBuilder makes it easier to build up the payloads of individual frames,
// which are then encoded back to back into a buffer.  To build up the payload
// of an individual frame, just use the FrameBuilder as a bytes.Buffer.  Once
// a frame is done, call FinishFrame.  Once you are done with all frames, call
// Encode to get the encoded representation of everything.
type FrameBuilder struct {
	bytes.Buffer
	start        int
	frameIndices []index
}

type index struct {
	start, end int
}

// FinishFrame indicates that you have finished constructing an individual
// frame payload.  We don't actually encode the frame until you call Encode,
// when we encode _all_ of the frames that you add to the builder.
func (fb *FrameBuilder) FinishFrame() {
	end := fb.Len()
	fb.frameIndices = append(fb.frameIndices, index{fb.start, end})
	fb.start = end
}

// Encode encodes all of the frames in this builder into an output buffer,
// using the given codec configuration.
func (fb *FrameBuilder) Encode(c Codec, dest *bytes.Buffer) error {
	payloads := fb.Bytes()
	for _, index := range fb.frameIndices {
		payload := payloads[index.start:index.end]
		need := c.EncodedLen(payload)
		dest.Grow(need)
		dst := dest.AvailableBuffer()[:need]
		n, err := c.Encode(dst, payload)
		if err != nil {
			return err
		}
		dest.Write(dst[:n])
	}
	return nil
}
