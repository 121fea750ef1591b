// SPDX-License-Identifier: EPL-2.0

package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFormat_Defaults(t *testing.T) {
	t.Parallel()

	f, err := Config{}.Format()
	require.NoError(t, err)
	assert.Equal(t, Format{SampleRate: 48000, Channels: 2, PeriodFrames: 512, Sample: Float32}, f)
	assert.Equal(t, 1024, f.PeriodSamples())
	assert.Equal(t, 4096, f.PeriodBytes())
	assert.Equal(t, 512*time.Second/48000, f.PeriodDuration())
}

func TestFormatValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		f    Format
	}{
		{"rate too low", Format{SampleRate: 10, Channels: 2, PeriodFrames: 512}},
		{"no channels", Format{SampleRate: 48000, Channels: 0, PeriodFrames: 512}},
		{"tiny period", Format{SampleRate: 48000, Channels: 2, PeriodFrames: 1}},
		{"bad encoding", Format{SampleRate: 48000, Channels: 2, PeriodFrames: 512, Sample: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, tt.f.Validate(), ErrInvalidFormat)
		})
	}
}

func TestParseSampleFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]SampleFormat{"": Float32, "f32": Float32, "FLOAT32": Float32, "s16": Int16, "int16": Int16} {
		got, err := ParseSampleFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSampleFormat("u8")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	src := []float32{0, 0.5, -0.5, 1, -1, 1.5, -2}
	want := []float32{0, 0.5, -0.5, 1, -1, 1, -1}

	t.Run("float32", func(t *testing.T) {
		t.Parallel()
		buf := make([]byte, len(src)*4)
		Encode(buf, src, Float32)
		got := make([]float32, len(src))
		require.Equal(t, len(src), Decode(got, buf, Float32))
		assert.Equal(t, want, got)
	})

	t.Run("int16", func(t *testing.T) {
		t.Parallel()
		buf := make([]byte, len(src)*2)
		Encode(buf, src, Int16)
		got := make([]float32, len(src))
		require.Equal(t, len(src), Decode(got, buf, Int16))
		assert.InDeltaSlice(t, want, got, 1.0/16384)
	})
}
