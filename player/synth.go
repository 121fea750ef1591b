// SPDX-License-Identifier: EPL-2.0

package player

import (
	"io"
	"math"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/output"
)

// Generator produces audio on demand for a synth source. Generate runs on
// the render thread and must neither block nor allocate. Writing fewer than
// len(dst) samples ends the source.
type Generator interface {
	SampleRate() int
	Channels() int
	Generate(dst []float32) int
}

// genSource exposes a Generator as an audio.Source.
type genSource struct {
	gen Generator
	ch  int
}

func (g *genSource) SampleRate() int { return g.gen.SampleRate() }
func (g *genSource) Channels() int   { return g.ch }
func (g *genSource) BufSize() int    { return 1024 * g.ch }
func (g *genSource) Close() error    { return nil }

func (g *genSource) ReadSamples(dst []float32) (int, error) {
	n := g.gen.Generate(dst)
	n -= n % g.ch
	if n < len(dst) {
		return n, io.EOF
	}
	return n, nil
}

type synthSource struct {
	gen    Generator
	pipe   pipeline
	rate   int
	frames int64
	done   bool
}

func newSynthSource(gen Generator, f output.Format) *synthSource {
	g := &genSource{gen: gen, ch: gen.Channels()}
	return &synthSource{
		gen:  gen,
		pipe: newPipeline(g, f, 1),
		rate: f.SampleRate,
	}
}

func (s *synthSource) kind() sourceKind { return kindSynth }

func (s *synthSource) poll(dst []float32) int {
	if s.done {
		clear(dst)
		return 0
	}
	frames, eof, err := s.pipe.pull(dst)
	s.frames += int64(frames)
	if eof || err != nil {
		s.done = true
	}
	return frames
}

func (s *synthSource) exhausted() bool { return s.done }
func (s *synthSource) failure() error  { return nil }

// position is the time generated so far, measured at the sink rate.
func (s *synthSource) position() time.Duration {
	return audio.FramesToDuration(s.frames, s.rate)
}

func (s *synthSource) seek(time.Duration) bool { return true }
func (s *synthSource) seekPending() bool       { return false }
func (s *synthSource) stop()                   {}

func (s *synthSource) release() error {
	if c, ok := s.gen.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// SineGenerator is a mono sine tone, optionally bounded in length.
type SineGenerator struct {
	rate      int
	step      float64
	phase     float64
	amplitude float32
	remaining int64 // frames left, or -1 for endless
}

// NewSineGenerator returns a tone of freq Hz at the given amplitude. A
// duration of zero plays until stopped.
func NewSineGenerator(rate int, freq float64, amplitude float32, d time.Duration) *SineGenerator {
	remaining := int64(-1)
	if d > 0 {
		remaining = audio.DurationToFrames(d, rate)
	}
	return &SineGenerator{
		rate:      rate,
		step:      2 * math.Pi * freq / float64(rate),
		amplitude: amplitude,
		remaining: remaining,
	}
}

func (g *SineGenerator) SampleRate() int { return g.rate }
func (g *SineGenerator) Channels() int   { return 1 }

func (g *SineGenerator) Generate(dst []float32) int {
	n := len(dst)
	if g.remaining >= 0 && int64(n) > g.remaining {
		n = int(g.remaining)
	}
	for i := range n {
		dst[i] = g.amplitude * float32(math.Sin(g.phase))
		g.phase += g.step
		if g.phase >= 2*math.Pi {
			g.phase -= 2 * math.Pi
		}
	}
	if g.remaining >= 0 {
		g.remaining -= int64(n)
	}
	return n
}

// BeepGenerator plays a gopxl/beep streamer. beep streams stereo float64
// frames; they are converted to float32 in a scratch buffer sized at
// construction.
type BeepGenerator struct {
	s       beep.Streamer
	rate    beep.SampleRate
	scratch [][2]float64
	done    bool
}

// NewBeepGenerator wraps s, which produces audio at rate. maxFrames bounds
// the frames converted per inner call.
func NewBeepGenerator(s beep.Streamer, rate beep.SampleRate, maxFrames int) *BeepGenerator {
	if maxFrames <= 0 {
		maxFrames = 1024
	}
	return &BeepGenerator{s: s, rate: rate, scratch: make([][2]float64, maxFrames)}
}

func (g *BeepGenerator) SampleRate() int { return int(g.rate) }
func (g *BeepGenerator) Channels() int   { return 2 }

// Err returns the streamer's error, if any.
func (g *BeepGenerator) Err() error { return g.s.Err() }

func (g *BeepGenerator) Generate(dst []float32) int {
	if g.done {
		return 0
	}
	frames := len(dst) / 2
	done := 0
	for done < frames {
		want := min(len(g.scratch), frames-done)
		n, ok := g.s.Stream(g.scratch[:want])
		for i := range n {
			dst[2*(done+i)] = float32(g.scratch[i][0])
			dst[2*(done+i)+1] = float32(g.scratch[i][1])
		}
		done += n
		if !ok || n < want {
			g.done = true
			break
		}
	}
	return done * 2
}
