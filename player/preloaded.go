// SPDX-License-Identifier: EPL-2.0

package player

import (
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/output"
)

// preloadedSource plays a fully decoded Buffer. It cannot underrun.
type preloadedSource struct {
	buf    *audio.Buffer
	reader *audio.BufferReader
	pipe   pipeline
	done   bool
	err    error
}

func newPreloadedSource(buf *audio.Buffer, f output.Format, opts FilePlaybackOptions) *preloadedSource {
	reader := audio.NewBufferReader(buf, opts.Repeat)
	if opts.StartPosition > 0 {
		_ = reader.SeekFrame(audio.DurationToFrames(opts.StartPosition, buf.SampleRate))
	}
	return &preloadedSource{
		buf:    buf,
		reader: reader,
		pipe:   newPipeline(reader, f, opts.speed()),
	}
}

func (s *preloadedSource) kind() sourceKind { return kindPreloaded }

func (s *preloadedSource) poll(dst []float32) int {
	if s.done {
		clear(dst)
		return 0
	}
	frames, eof, err := s.pipe.pull(dst)
	if err != nil {
		s.err = err
		s.done = true
	}
	if eof {
		s.done = true
	}
	return frames
}

func (s *preloadedSource) exhausted() bool { return s.done && s.err == nil }
func (s *preloadedSource) failure() error  { return s.err }

func (s *preloadedSource) position() time.Duration {
	return audio.FramesToDuration(s.reader.Frame(), s.buf.SampleRate)
}

func (s *preloadedSource) seek(pos time.Duration) bool {
	_ = s.reader.SeekFrame(audio.DurationToFrames(pos, s.buf.SampleRate))
	s.pipe.rs.Reset()
	s.done = false
	return true
}

func (s *preloadedSource) seekPending() bool { return false }
func (s *preloadedSource) stop()             {}

// release leaves the buffer alone: it may be shared through the cache.
func (s *preloadedSource) release() error { return nil }
