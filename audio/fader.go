// SPDX-License-Identifier: EPL-2.0

package audio

import "time"

// FaderState is the phase of a Fader.
type FaderState uint8

const (
	// FaderIdle applies unity gain.
	FaderIdle FaderState = iota
	// FaderFadingIn ramps from silence to unity.
	FaderFadingIn
	// FaderFadingOut ramps from unity to silence.
	FaderFadingOut
	// FaderFinished applies zero gain after a completed fade out.
	FaderFinished
)

func (s FaderState) String() string {
	switch s {
	case FaderIdle:
		return "idle"
	case FaderFadingIn:
		return "fading-in"
	case FaderFadingOut:
		return "fading-out"
	case FaderFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Fader is a per-frame linear gain ramp. A fade out of n frames yields the
// factors n/n, (n-1)/n, ..., 1/n and then zero, so the gain never rises,
// never goes negative, and steps by at most 1/n. Fading out from the middle
// of a fade in starts at the current factor.
type Fader struct {
	state FaderState
	total int
	step  int
	start float32
}

// FramesFor converts a duration to a whole number of frames at rate, never
// less than one.
func FramesFor(d time.Duration, rate int) int {
	n := int(d.Seconds() * float64(rate))
	if n < 1 {
		return 1
	}
	return n
}

func (f *Fader) State() FaderState { return f.state }

// Done reports whether a fade out has reached silence.
func (f *Fader) Done() bool { return f.state == FaderFinished }

// Gain returns the factor that the next call to Next would apply.
func (f *Fader) Gain() float32 {
	switch f.state {
	case FaderFadingIn:
		return float32(f.step) / float32(f.total)
	case FaderFadingOut:
		return f.start * (float32(f.total-f.step) / float32(f.total))
	case FaderFinished:
		return 0
	default:
		return 1
	}
}

// FadeIn starts a ramp from silence to unity over frames.
func (f *Fader) FadeIn(frames int) {
	if frames < 1 {
		f.state = FaderIdle
		return
	}
	f.state = FaderFadingIn
	f.total = frames
	f.step = 0
}

// FadeOut starts a ramp from the current factor to silence over frames.
// It is a no-op while already fading out or finished.
func (f *Fader) FadeOut(frames int) {
	if f.state == FaderFadingOut || f.state == FaderFinished {
		return
	}
	start := f.Gain()
	if frames < 1 {
		f.state = FaderFinished
		return
	}
	f.state = FaderFadingOut
	f.total = frames
	f.step = 0
	f.start = start
}

// Next returns the factor for the current frame and advances by one frame.
func (f *Fader) Next() float32 {
	g := f.Gain()
	switch f.state {
	case FaderFadingIn:
		f.step++
		if f.step >= f.total {
			f.state = FaderIdle
		}
	case FaderFadingOut:
		f.step++
		if f.step >= f.total {
			f.state = FaderFinished
		}
	}
	return g
}

// Process multiplies interleaved frames in place.
func (f *Fader) Process(buf []float32, channels int) {
	if f.state == FaderIdle {
		return
	}
	for i := 0; i+channels <= len(buf); i += channels {
		g := f.Next()
		for c := range channels {
			buf[i+c] *= g
		}
	}
}
