// SPDX-License-Identifier: EPL-2.0

package player

import (
	"time"

	"github.com/ik5/audplay/audio"
)

type voiceState uint8

const (
	statePending voiceState = iota
	stateActive
	stateSeeking
	stateFading
	stateRemoved
)

func (s voiceState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateActive:
		return "active"
	case stateSeeking:
		return "seeking"
	case stateFading:
		return "fading"
	default:
		return "removed"
	}
}

// voice is one source in the mixer. After the Add command is queued only
// the render thread touches it, until it reaches the graveyard.
type voice struct {
	id   SourceID
	path string
	src  source
	gain float32

	fader     audio.Fader
	fadeIn    int
	state     voiceState
	exhausted bool
	err       error

	// interval and sinceReport count sink frames between position events.
	interval    int64
	sinceReport int64
}

func newVoice(id SourceID, path string, src source, volumeDB float32, fadeIn int, interval int64) *voice {
	return &voice{
		id:       id,
		path:     path,
		src:      src,
		gain:     audio.DbToLinear(volumeDB),
		fadeIn:   fadeIn,
		state:    statePending,
		interval: interval,
	}
}

func (v *voice) playing() bool {
	return v.state == stateActive || v.state == stateSeeking
}

func (v *voice) stoppedEvent() Event {
	return Event{
		Kind:      EventStopped,
		ID:        v.id,
		Path:      v.path,
		Position:  v.src.position(),
		Exhausted: v.exhausted,
		Err:       v.err,
	}
}

func (v *voice) positionEvent() Event {
	return Event{Kind: EventPosition, ID: v.id, Path: v.path, Position: v.src.position()}
}

func intervalFrames(d time.Duration, rate int) int64 {
	if d <= 0 {
		return 0
	}
	return max(1, audio.DurationToFrames(d, rate))
}
