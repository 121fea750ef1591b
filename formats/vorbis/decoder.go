// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audplay/audio"
)

// oggReader is the part of oggvorbis.Reader the source uses, so tests can
// fake it. Read returns interleaved samples, not frames.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

// oggSeeker is implemented by oggvorbis.Reader; SetPosition fails unless the
// stream underneath is seekable.
type oggSeeker interface {
	SetPosition(frame int64) error
	Length() int64
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

func (s *source) ReadSamples(dst []float32) (int, error) {
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	n := 0
	for n < want {
		m, err := s.dec.Read(dst[n:want])
		n += m
		if errors.Is(err, io.EOF) {
			return n, io.EOF
		}
		if err != nil {
			return n, fmt.Errorf("decoding vorbis: %w", err)
		}
		if m == 0 {
			break
		}
	}

	return n, nil
}

func (s *source) SeekFrame(frame int64) error {
	sk, ok := s.dec.(oggSeeker)
	if !ok {
		return audio.ErrNotSeekable
	}
	frame = max(0, frame)
	if l := sk.Length(); l > 0 && frame > l {
		frame = l
	}
	if err := sk.SetPosition(frame); err != nil {
		return fmt.Errorf("%w: %w", audio.ErrNotSeekable, err)
	}
	return nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}
