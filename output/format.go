// SPDX-License-Identifier: EPL-2.0

package output

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ik5/audplay/utils"
)

// SampleFormat is the sample encoding a device consumes.
type SampleFormat uint8

const (
	// Float32 is little-endian IEEE 754 float32 in [-1, 1].
	Float32 SampleFormat = iota
	// Int16 is little-endian signed 16-bit PCM.
	Int16
)

func (f SampleFormat) String() string {
	switch f {
	case Float32:
		return "f32"
	case Int16:
		return "s16"
	default:
		return fmt.Sprintf("SampleFormat(%d)", uint8(f))
	}
}

// BytesPerSample returns the encoded size of one sample.
func (f SampleFormat) BytesPerSample() int {
	if f == Int16 {
		return 2
	}
	return 4
}

// ParseSampleFormat accepts "f32", "float32", "s16" and "int16".
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch strings.ToLower(s) {
	case "", "f32", "float32":
		return Float32, nil
	case "s16", "int16":
		return Int16, nil
	default:
		return 0, fmt.Errorf("%w: sample format %q", ErrInvalidFormat, s)
	}
}

// Format is the negotiated output format. It is fixed for the lifetime of a
// device.
type Format struct {
	SampleRate   int
	Channels     int
	PeriodFrames int
	Sample       SampleFormat
}

func (f Format) Validate() error {
	switch {
	case f.SampleRate < 1000 || f.SampleRate > 384000:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidFormat, f.SampleRate)
	case f.Channels < 1 || f.Channels > 32:
		return fmt.Errorf("%w: %d channels", ErrInvalidFormat, f.Channels)
	case f.PeriodFrames < 16 || f.PeriodFrames > 1<<16:
		return fmt.Errorf("%w: period of %d frames", ErrInvalidFormat, f.PeriodFrames)
	case f.Sample != Float32 && f.Sample != Int16:
		return fmt.Errorf("%w: %v", ErrInvalidFormat, f.Sample)
	}
	return nil
}

// PeriodSamples is the number of interleaved samples in one period.
func (f Format) PeriodSamples() int { return f.PeriodFrames * f.Channels }

// PeriodBytes is the encoded size of one period.
func (f Format) PeriodBytes() int { return f.PeriodSamples() * f.Sample.BytesPerSample() }

// PeriodDuration is the playing time of one period.
func (f Format) PeriodDuration() time.Duration {
	return time.Duration(f.PeriodFrames) * time.Second / time.Duration(f.SampleRate)
}

func (f Format) String() string {
	return fmt.Sprintf("%d Hz, %d ch, %d frames, %v", f.SampleRate, f.Channels, f.PeriodFrames, f.Sample)
}

// Encode clamps src to [-1, 1] and writes it to dst in the given encoding.
// dst must hold len(src) samples.
func Encode(dst []byte, src []float32, sf SampleFormat) {
	switch sf {
	case Int16:
		for i, v := range src {
			binary.LittleEndian.PutUint16(dst[2*i:], uint16(utils.Float32ToInt16(v)))
		}
	default:
		for i, v := range src {
			binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(utils.Clamp(v)))
		}
	}
}

// Decode is the inverse of Encode. It returns the number of samples written.
func Decode(dst []float32, src []byte, sf SampleFormat) int {
	n := min(len(dst), len(src)/sf.BytesPerSample())
	switch sf {
	case Int16:
		for i := range n {
			dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(src[2*i:])))
		}
	default:
		for i := range n {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
		}
	}
	return n
}
