// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	channels      = 2
	bytesPerFrame = 2 * channels
)

// mp3Reader is the part of gomp3.Decoder the source uses, so tests can fake it.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec        mp3Reader
	sampleRate int
	// seekable is set when the decoder input implements io.Seeker; go-mp3
	// cannot seek otherwise.
	seekable bool
	buf      []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 } // samples, not bytes

func (s *source) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / channels
	if frames == 0 {
		return 0, nil
	}

	need := frames * bytesPerFrame
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := io.ReadFull(s.dec, s.buf)
	n -= n % bytesPerFrame

	samples := n / 2
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8))
	}

	switch {
	case err == nil:
		return samples, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return samples, io.EOF
	default:
		return samples, fmt.Errorf("decoding mp3: %w", err)
	}
}

// SeekFrame jumps to a PCM frame.
func (s *source) SeekFrame(frame int64) error {
	sk, ok := s.dec.(io.Seeker)
	if !ok || !s.seekable {
		return audio.ErrNotSeekable
	}
	if frame < 0 {
		frame = 0
	}
	if _, err := sk.Seek(frame*bytesPerFrame, io.SeekStart); err != nil {
		return fmt.Errorf("seeking mp3 to frame %d: %w", frame, err)
	}
	return nil
}

// Frames returns the stream length in frames, or -1 when unknown.
func (s *source) Frames() int64 {
	l, ok := s.dec.(interface{ Length() int64 })
	if !ok || !s.seekable {
		return -1
	}
	n := l.Length()
	if n < 0 {
		return -1
	}
	return n / bytesPerFrame
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	_, seekable := r.(io.Seeker)
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		seekable:   seekable,
		buf:        make([]byte, 8192),
	}, nil
}
