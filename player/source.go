// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"io"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/output"
)

type sourceKind uint8

const (
	kindPreloaded sourceKind = iota
	kindStreamed
	kindSynth
)

func (k sourceKind) String() string {
	switch k {
	case kindPreloaded:
		return "preloaded"
	case kindStreamed:
		return "streamed"
	default:
		return "synth"
	}
}

// source is the closed set of things a voice can play. Every method except
// release runs on the render thread and must not block or allocate.
type source interface {
	kind() sourceKind
	// poll writes len(dst) samples in the sink format, zero-filling what
	// it cannot produce, and returns the number of real frames.
	poll(dst []float32) int
	exhausted() bool
	// failure is a mid-stream error that ended the source.
	failure() error
	position() time.Duration
	// seek jumps to pos. It reports false when the jump completes
	// asynchronously; seekPending tells when it has landed.
	seek(pos time.Duration) bool
	seekPending() bool
	// stop tells background work to wind down.
	stop()
	// release frees resources. It runs on a control goroutine after the
	// source has left the render thread.
	release() error
}

// pipeline converts a native-format source to the sink format: speed and
// rate through the resampler, then the channel mapper.
type pipeline struct {
	rs  *audio.Resampler
	out audio.Source
	ch  int
}

func newPipeline(src audio.Source, f output.Format, speed float64) pipeline {
	rs := audio.NewResamplerWithSpeed(src, f.SampleRate, speed)
	return pipeline{
		rs:  rs,
		out: audio.NewChannelMapper(rs, f.Channels, f.PeriodFrames),
		ch:  f.Channels,
	}
}

// pull fills dst from p. The remainder after a short read is zeroed. eof is
// set once the source has nothing more to give; a would-block read is not
// an error.
func (p pipeline) pull(dst []float32) (frames int, eof bool, err error) {
	n := 0
	for n < len(dst) {
		k, rerr := p.out.ReadSamples(dst[n:])
		n += k
		if errors.Is(rerr, io.EOF) {
			eof = true
			break
		}
		if errors.Is(rerr, audio.ErrWouldBlock) {
			break
		}
		if rerr != nil {
			err = rerr
			break
		}
		if k == 0 {
			break
		}
	}
	n -= n % p.ch
	clear(dst[n:])
	return n / p.ch, eof, err
}
