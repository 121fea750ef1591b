// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audplay/utils"
)

// Writer streams interleaved samples into a PCM 16-bit WAV file. The header
// sizes are patched on Close, which is why the destination must seek.
type Writer struct {
	enc      *gowav.Encoder
	buf      *goaudio.IntBuffer
	channels int
	frames   int64
	closed   bool
}

func NewWriter(w io.WriteSeeker, sampleRate, channels int) (*Writer, error) {
	if channels < 1 {
		return nil, ErrInvalidChannels
	}

	return &Writer{
		enc: gowav.NewEncoder(w, sampleRate, 16, channels, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: 16,
		},
		channels: channels,
	}, nil
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int64 { return w.frames }

// WriteFloat32 appends normalized samples, clamping values outside [-1, 1].
// A trailing partial frame is dropped.
func (w *Writer) WriteFloat32(samples []float32) error {
	n := len(samples) - len(samples)%w.channels
	data := w.grow(n)
	for i, s := range samples[:n] {
		data[i] = int(utils.Float32ToInt16(s))
	}
	return w.flush(n)
}

// WriteInt16 appends PCM samples. A trailing partial frame is dropped.
func (w *Writer) WriteInt16(samples []int16) error {
	n := len(samples) - len(samples)%w.channels
	data := w.grow(n)
	for i, s := range samples[:n] {
		data[i] = int(s)
	}
	return w.flush(n)
}

func (w *Writer) grow(n int) []int {
	if cap(w.buf.Data) < n {
		w.buf.Data = make([]int, n)
	}
	w.buf.Data = w.buf.Data[:n]
	return w.buf.Data
}

func (w *Writer) flush(n int) error {
	if w.closed {
		return ErrWriterClosed
	}
	if n == 0 {
		return nil
	}
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("writing WAV samples: %w", err)
	}
	w.frames += int64(n / w.channels)
	return nil
}

// Close finalizes the header. It does not close the destination.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("finalizing WAV: %w", err)
	}
	return nil
}

// WriteWAV16 writes a complete PCM 16-bit WAV holding interleaved samples.
func WriteWAV16(w io.WriteSeeker, sampleRate, channels int, samples []int16) error {
	wr, err := NewWriter(w, sampleRate, channels)
	if err != nil {
		return err
	}
	if err := wr.WriteInt16(samples); err != nil {
		return err
	}
	return wr.Close()
}
