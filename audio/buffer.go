// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// Buffer is fully decoded interleaved PCM. It must not be modified once
// built, which lets any number of readers share it.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the buffer length in frames.
func (b *Buffer) Frames() int64 {
	if b.Channels == 0 {
		return 0
	}
	return int64(len(b.Samples) / b.Channels)
}

// Duration returns the playing time at the native rate.
func (b *Buffer) Duration() time.Duration {
	return FramesToDuration(b.Frames(), b.SampleRate)
}

// FramesToDuration converts a frame count at rate to a duration.
func FramesToDuration(frames int64, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(rate)
}

// DurationToFrames converts a duration to a frame offset at rate.
func DurationToFrames(d time.Duration, rate int) int64 {
	if d <= 0 {
		return 0
	}
	return int64(d.Seconds() * float64(rate))
}

// maxIdleReads bounds how many empty reads DecodeAll tolerates in a row.
const maxIdleReads = 64

// DecodeAll drains src into a Buffer. src is not closed.
func DecodeAll(src Source) (*Buffer, error) {
	channels := src.Channels()
	if channels < 1 {
		return nil, ErrInvalidChannels
	}

	chunk := src.BufSize()
	if chunk < channels {
		chunk = 4096
	}
	chunk -= chunk % channels

	buf := make([]float32, chunk)
	samples := make([]float32, 0, chunk*4)
	idle := 0

	for {
		n, err := src.ReadSamples(buf)
		samples = append(samples, buf[:n]...)

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !errors.Is(err, ErrWouldBlock) {
			return nil, fmt.Errorf("%w", err)
		}
		if n == 0 {
			idle++
			if idle > maxIdleReads {
				break
			}
			continue
		}
		idle = 0
	}

	samples = samples[:len(samples)-len(samples)%channels]
	if len(samples) == 0 {
		return nil, ErrEmptySource
	}

	return &Buffer{
		Samples:    samples,
		SampleRate: src.SampleRate(),
		Channels:   channels,
	}, nil
}

// RepeatForever makes a BufferReader loop until stopped.
const RepeatForever = math.MaxInt

// BufferReader plays a shared Buffer as a Source. A repeat count of n plays
// the content n+1 times; looping rewinds the read position and reuses the
// same memory.
type BufferReader struct {
	buf    *Buffer
	pos    int
	repeat int
	passes int
}

func NewBufferReader(buf *Buffer, repeat int) *BufferReader {
	if repeat < 0 {
		repeat = 0
	}
	return &BufferReader{buf: buf, repeat: repeat}
}

func (r *BufferReader) SampleRate() int { return r.buf.SampleRate }
func (r *BufferReader) Channels() int   { return r.buf.Channels }
func (r *BufferReader) BufSize() int    { return 4096 }
func (r *BufferReader) Close() error    { return nil }

// Passes returns how many times the reader wrapped back to the start.
func (r *BufferReader) Passes() int { return r.passes }

// Frame returns the current read position in frames.
func (r *BufferReader) Frame() int64 { return int64(r.pos / r.buf.Channels) }

// SeekFrame moves the read position, clamping to the buffer bounds.
func (r *BufferReader) SeekFrame(frame int64) error {
	frames := r.buf.Frames()
	switch {
	case frame < 0:
		frame = 0
	case frame > frames:
		frame = frames
	}
	r.pos = int(frame) * r.buf.Channels
	return nil
}

func (r *BufferReader) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.buf.Channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(r.buf.Samples) == 0 {
		return 0, io.EOF
	}

	n := 0
	for n < len(dst) {
		if r.pos >= len(r.buf.Samples) {
			if r.repeat == 0 {
				return n, io.EOF
			}
			if r.repeat != RepeatForever {
				r.repeat--
			}
			r.pos = 0
			r.passes++
		}
		c := copy(dst[n:], r.buf.Samples[r.pos:])
		r.pos += c
		n += c
	}

	return n, nil
}
