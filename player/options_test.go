// SPDX-License-Identifier: EPL-2.0

package player

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilePlaybackOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		opts  FilePlaybackOptions
		valid bool
	}{
		{"zero value", FilePlaybackOptions{}, true},
		{"defaults", DefaultFilePlaybackOptions(), true},
		{"streamed forever", FilePlaybackOptions{Mode: Streamed, Repeat: RepeatForever, Speed: 2}, true},
		{"unknown mode", FilePlaybackOptions{Mode: 7}, false},
		{"nan volume", FilePlaybackOptions{VolumeDB: float32(math.NaN())}, false},
		{"negative speed", FilePlaybackOptions{Speed: -0.5}, false},
		{"infinite speed", FilePlaybackOptions{Speed: math.Inf(1)}, false},
		{"negative repeat", FilePlaybackOptions{Repeat: -1}, false},
		{"negative start", FilePlaybackOptions{StartPosition: -time.Second}, false},
		{"negative fade", FilePlaybackOptions{FadeIn: -time.Second}, false},
		{"negative interval", FilePlaybackOptions{PositionInterval: -time.Second}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.opts.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidOptions)
			}
		})
	}
}

func TestFilePlaybackOptions_ZeroSpeedIsNormal(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, FilePlaybackOptions{}.speed(), 0)
	assert.InDelta(t, 0.5, FilePlaybackOptions{Speed: 0.5}.speed(), 0)
}

func TestSynthPlaybackOptions_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, SynthPlaybackOptions{VolumeDB: -12}.Validate())
	assert.ErrorIs(t, SynthPlaybackOptions{VolumeDB: float32(math.Inf(-1))}.Validate(), ErrInvalidOptions)
	assert.ErrorIs(t, SynthPlaybackOptions{FadeIn: -1}.Validate(), ErrInvalidOptions)
}

func TestEvent_String(t *testing.T) {
	t.Parallel()

	ev := Event{Kind: EventStopped, ID: 3, Path: "a.wav", Exhausted: true}
	assert.Equal(t, "stopped id=3 path=a.wav exhausted=true", ev.String())
	assert.Equal(t, "position", EventPosition.String())
	assert.Equal(t, "streamed", Streamed.String())
}
