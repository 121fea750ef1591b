// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audplay/utils"
)

// Resampler streams from src to a target sample rate using cubic
// interpolation and an optional playback speed factor. It works on
// interleaved samples and preserves the channel count. A one-pole low-pass
// filter runs on the input when the effective ratio is above one.
//
// The interpolation window and filter survive across reads, including reads
// cut short by ErrWouldBlock, and are cleared only by Reset. A ratio of
// exactly one passes samples through untouched.
type Resampler struct {
	src      Source
	srcRate  float64
	dstRate  float64
	speed    float64
	ratio    float64 // source frames consumed per output frame
	channels int

	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames [4][]float32
	// primed counts window slots filled since the last reset.
	primed int
	// pad counts trailing window slots that duplicate the last real frame.
	pad int

	pos    float64
	srcBuf []float32
	eof    bool

	filterState []float32
	seeded      bool
	useFilter   bool
	filterAlpha float32
}

// NewResampler converts src to dstRate at normal speed.
func NewResampler(src Source, dstRate int) *Resampler {
	return NewResamplerWithSpeed(src, dstRate, 1)
}

// NewResamplerWithSpeed converts src to dstRate while playing it speed times
// faster. Speeds at or below zero are treated as one.
func NewResamplerWithSpeed(src Source, dstRate int, speed float64) *Resampler {
	if speed <= 0 {
		speed = 1
	}
	channels := src.Channels()
	ratio := float64(src.SampleRate()) * speed / float64(dstRate)

	r := &Resampler{
		src:         src,
		srcRate:     float64(src.SampleRate()),
		dstRate:     float64(dstRate),
		speed:       speed,
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, channels),
		useFilter:   ratio > 1.0,
		filterState: make([]float32, channels),
	}
	if r.useFilter {
		r.filterAlpha = 0.5
	}

	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

// Ratio reports how many source frames are consumed per output frame.
func (r *Resampler) Ratio() float64 { return r.ratio }

// Passthrough reports whether samples are forwarded without interpolation.
func (r *Resampler) Passthrough() bool { return r.ratio == 1 }

func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Reset drops the interpolation window and filter state. Call it after the
// underlying source has been repositioned.
func (r *Resampler) Reset() {
	r.primed = 0
	r.pad = 0
	r.pos = 0
	r.eof = false
	r.seeded = false
	for c := range r.filterState {
		r.filterState[c] = 0
	}
}

// readFrame pulls one frame into srcBuf. ok is false once the source is
// exhausted; err carries ErrWouldBlock or a source failure.
func (r *Resampler) readFrame() (ok bool, err error) {
	if r.eof {
		return false, nil
	}

	n, err := r.src.ReadSamples(r.srcBuf)
	if errors.Is(err, io.EOF) {
		r.eof = true
		err = nil
	}
	if err != nil {
		if n == r.channels {
			// Keep the frame; the error resurfaces on the next read.
			return true, nil
		}
		return false, err
	}
	if n < r.channels {
		if r.eof {
			return false, nil
		}
		return false, ErrWouldBlock
	}

	if r.useFilter {
		if !r.seeded {
			// Seed with the first sample to avoid a warm-up ramp.
			copy(r.filterState, r.srcBuf)
			r.seeded = true
		}
		for c := range r.channels {
			// One-pole low-pass: y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			r.srcBuf[c] = r.filterAlpha*r.srcBuf[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = r.srcBuf[c]
		}
	}
	return true, nil
}

// prime fills the window. The first real frame is also used as t-1.
func (r *Resampler) prime() error {
	for r.primed < 4 {
		ok, err := r.readFrame()
		if err != nil {
			return err
		}
		if !ok {
			if r.primed == 0 {
				return io.EOF
			}
			last := r.frames[r.primed-1]
			for j := r.primed; j < 4; j++ {
				copy(r.frames[j], last)
				r.pad++
			}
			r.primed = 4
			return nil
		}

		if r.primed == 0 {
			copy(r.frames[0], r.srcBuf)
			copy(r.frames[1], r.srcBuf)
			r.primed = 2
			continue
		}
		copy(r.frames[r.primed], r.srcBuf)
		r.primed++
	}
	return nil
}

// advance shifts the window by one frame. The window is left untouched when
// the source would block.
func (r *Resampler) advance() error {
	ok, err := r.readFrame()
	if err != nil {
		return err
	}

	f0 := r.frames[0]
	r.frames[0] = r.frames[1]
	r.frames[1] = r.frames[2]
	r.frames[2] = r.frames[3]
	r.frames[3] = f0

	if ok {
		copy(r.frames[3], r.srcBuf)
	} else {
		copy(r.frames[3], r.frames[2])
		r.pad++
	}
	return nil
}

// ReadSamples produces dst samples at the target rate. dst length must be a
// multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if r.ratio == 1 {
		return r.src.ReadSamples(dst)
	}

	if r.primed < 4 {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 && r.pad < 3 {
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
			r.pos -= 1.0
		}

		// Once t0 is itself padding the real content has been emitted.
		if r.pad >= 3 {
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(r.frames[0][c], r.frames[1][c], r.frames[2][c], r.frames[3][c], alpha)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
