// SPDX-License-Identifier: EPL-2.0

package malgosink

import (
	"testing"

	"github.com/gen2brain/malgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audplay/output"
)

func TestMatchDevice(t *testing.T) {
	devices := []DeviceInfo{
		{Index: 0, Name: "Built-in Audio Analog Stereo", ID: "alsa_output.pci"},
		{Index: 1, Name: "USB Audio", ID: "hw:1,0"},
		{Index: 2, Name: "USB Audio Pro", ID: "hw:2,0"},
	}

	tests := []struct {
		want  string
		index int
		found bool
	}{
		{"USB Audio Pro", 2, true},
		{"USB Audio", 1, true},
		{"hw:2,0", 2, true},
		{"analog", 0, true},
		{"usb", 1, true},
		{"HDMI", -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			i, ok := matchDevice(devices, tt.want)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.index, i)
		})
	}
}

func TestSampleFormat(t *testing.T) {
	f, err := sampleFormat(output.Float32)
	require.NoError(t, err)
	assert.Equal(t, malgo.FormatF32, f)

	f, err = sampleFormat(output.Int16)
	require.NoError(t, err)
	assert.Equal(t, malgo.FormatS16, f)

	_, err = sampleFormat(42)
	assert.ErrorIs(t, err, output.ErrInvalidFormat)
}

func TestOpen_InvalidFormat(t *testing.T) {
	_, err := Open(output.Config{SampleRate: 12}, Options{})
	require.ErrorIs(t, err, output.ErrInvalidFormat)
	assert.Nil(t, output.ActiveSession())
}
