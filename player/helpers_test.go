// SPDX-License-Identifier: EPL-2.0

package player

import (
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/godoc/vfs/mapfs"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats"
	"github.com/ik5/audplay/internal/audiotest"
	"github.com/ik5/audplay/internal/logging"
	"github.com/ik5/audplay/output"
)

const (
	testRate   = 48000
	testPeriod = 480
)

// 30 ms at 48 kHz is exactly three periods.
const fadePeriods = 3

func testFormat() output.Config {
	return output.Config{SampleRate: testRate, Channels: 2, PeriodFrames: testPeriod}
}

func testRegistry(files map[string]string) *audio.Registry {
	reg := formats.NewRegistry()
	reg.SetFileSystem(mapfs.New(files))
	return reg
}

func newTestPlayer(tb testing.TB, files map[string]string, opts ...Option) (*Player, *output.ManualDevice) {
	tb.Helper()

	dev, err := output.NewManualDevice(testFormat())
	require.NoError(tb, err)

	opts = append([]Option{WithRegistry(testRegistry(files)), WithLogger(logging.Discard())}, opts...)
	p, err := New(dev, opts...)
	require.NoError(tb, err)
	tb.Cleanup(func() { require.NoError(tb, p.Close()) })
	return p, dev
}

// constWAV is a 48 kHz stereo file whose every sample is v/32768.
func constWAV(frames int, v int16) string {
	samples := make([]int16, frames*2)
	for i := range samples {
		samples[i] = v
	}
	return string(audiotest.WAV16(testRate, 2, samples, nil))
}

// tick renders n periods and returns the events they produced.
func tick(p *Player, dev *output.ManualDevice, n int) []Event {
	var events []Event
	for range n {
		dev.Tick()
		p.PollEvents(func(ev Event) { events = append(events, ev) })
	}
	return events
}

func stoppedEvents(events []Event) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Kind == EventStopped {
			out = append(out, ev)
		}
	}
	return out
}

// countFrames counts frames whose left sample is not silent.
func countFrames(samples []float32) int {
	n := 0
	for i := 0; i < len(samples); i += 2 {
		if samples[i] != 0 {
			n++
		}
	}
	return n
}

// constGen emits a constant mono value, forever when frames is negative.
type constGen struct {
	v      float32
	frames int
}

func (g *constGen) SampleRate() int { return testRate }
func (g *constGen) Channels() int   { return 1 }

func (g *constGen) Generate(dst []float32) int {
	n := len(dst)
	if g.frames >= 0 {
		n = min(n, g.frames)
		g.frames -= n
	}
	for i := range n {
		dst[i] = g.v
	}
	return n
}

// gateSource serves open frames, then would-block until opened, then the
// rest of total frames.
type gateSource struct {
	ch     int
	value  float32
	first  int
	total  int
	served int
	opened atomic.Bool
}

func (g *gateSource) SampleRate() int { return testRate }
func (g *gateSource) Channels() int   { return g.ch }
func (g *gateSource) BufSize() int    { return 1024 }
func (g *gateSource) Close() error    { return nil }

func (g *gateSource) ReadSamples(dst []float32) (int, error) {
	if g.served >= g.first && !g.opened.Load() {
		return 0, audio.ErrWouldBlock
	}
	limit := g.total
	if !g.opened.Load() {
		limit = g.first
	}
	frames := min(len(dst)/g.ch, limit-g.served)
	for i := range frames * g.ch {
		dst[i] = g.value
	}
	g.served += frames
	if g.served >= g.total {
		return frames * g.ch, io.EOF
	}
	return frames * g.ch, nil
}

type gateDecoder struct{ src *gateSource }

func (d gateDecoder) Decode(io.Reader) (audio.Source, error) { return d.src, nil }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 5*time.Second, time.Millisecond)
}
