// SPDX-License-Identifier: EPL-2.0

package otosink

import (
	"testing"

	"github.com/ebitengine/oto/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audplay/output"
)

func TestOpen_NamedDevice(t *testing.T) {
	_, err := Open(output.Config{Name: "hw:1,0"})
	require.ErrorIs(t, err, output.ErrDeviceNotFound)
	assert.Nil(t, output.ActiveSession())
}

func TestOpen_InvalidFormat(t *testing.T) {
	_, err := Open(output.Config{Channels: 99})
	require.ErrorIs(t, err, output.ErrInvalidFormat)
	assert.Nil(t, output.ActiveSession())
}

func TestContextOptions(t *testing.T) {
	f := output.Format{SampleRate: 44100, Channels: 2, PeriodFrames: 441, Sample: output.Int16}
	opts, err := contextOptions(f)
	require.NoError(t, err)
	assert.Equal(t, 44100, opts.SampleRate)
	assert.Equal(t, 2, opts.ChannelCount)
	assert.Equal(t, oto.FormatSignedInt16LE, opts.Format)
	assert.Equal(t, 2*f.PeriodDuration(), opts.BufferSize)

	f.Sample = output.Float32
	opts, err = contextOptions(f)
	require.NoError(t, err)
	assert.Equal(t, oto.FormatFloat32LE, opts.Format)

	f.Sample = 7
	_, err = contextOptions(f)
	assert.ErrorIs(t, err, output.ErrInvalidFormat)
}
