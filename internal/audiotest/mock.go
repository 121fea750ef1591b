// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds sources and fixtures shared by tests. It does not
// import the audio package, so audio's own tests can use it.
package audiotest

import (
	"errors"
	"io"
	"math"
)

// errWouldBlock mirrors audio.ErrWouldBlock for gated sources. Tests compare
// against it with Is on the gated source.
var errWouldBlock = errors.New("no samples available")

// MockSource generates frames from a waveform function. It satisfies
// audio.Source and audio.Seeker.
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // frames to generate
	generated    int // frames generated so far
	waveform     func(sample int, channel int) float32

	closed int
}

// NewMockSource creates a source of totalSamples frames.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

// NewSilentSource creates a mock source that generates silence.
func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 { return 0 })
}

// NewSineSource creates a mock source that generates a full scale sine.
func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, Sine(sampleRate, frequency, 1))
}

// NewConstantSource creates a mock source with a constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 { return value })
}

// NewRampSource yields frame index i as i/totalSamples on every channel.
func NewRampSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(i, _ int) float32 {
		return float32(i) / float32(totalSamples)
	})
}

// Sine returns a waveform of the given frequency and amplitude.
func Sine(sampleRate int, frequency float64, amplitude float32) func(int, int) float32 {
	return func(sample int, _ int) float32 {
		t := float64(sample) / float64(sampleRate)
		return amplitude * float32(math.Sin(2*math.Pi*frequency*t))
	}
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.closed++
	return nil
}

// Closed reports how many times Close was called.
func (m *MockSource) Closed() int { return m.closed }

// Reset rewinds to the first frame.
func (m *MockSource) Reset() {
	m.generated = 0
}

// SeekFrame moves to frame, clamped to the content.
func (m *MockSource) SeekFrame(frame int64) error {
	m.generated = int(max(0, min(frame, int64(m.totalSamples))))
	return nil
}

// Position returns the next frame to be generated.
func (m *MockSource) Position() int { return m.generated }

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	framesToWrite := min(len(dst)/m.channels, m.totalSamples-m.generated)
	for frame := range framesToWrite {
		sampleIndex := m.generated + frame
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(sampleIndex, ch)
		}
	}

	m.generated += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if m.generated >= m.totalSamples {
		return samplesWritten, io.EOF
	}

	return samplesWritten, nil
}

// GatedSource wraps a MockSource and only releases as many frames as have
// been allowed, returning the given would-block error when the allowance is
// used up. It models a live producer that falls behind.
type GatedSource struct {
	*MockSource
	allowed    int
	wouldBlock error
}

// NewGatedSource gates src; wouldBlock is returned while starved. A nil
// wouldBlock uses a package private sentinel.
func NewGatedSource(src *MockSource, wouldBlock error) *GatedSource {
	if wouldBlock == nil {
		wouldBlock = errWouldBlock
	}
	return &GatedSource{MockSource: src, wouldBlock: wouldBlock}
}

// Allow releases n more frames.
func (g *GatedSource) Allow(n int) { g.allowed += n }

func (g *GatedSource) ReadSamples(dst []float32) (int, error) {
	frames := min(len(dst)/g.channels, g.allowed)
	if frames == 0 && g.generated < g.totalSamples {
		return 0, g.wouldBlock
	}
	n, err := g.MockSource.ReadSamples(dst[:frames*g.channels])
	g.allowed -= n / g.channels
	return n, err
}
