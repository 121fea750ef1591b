// SPDX-License-Identifier: EPL-2.0

package player

import (
	"fmt"
	"time"
)

// SourceID identifies a playing source. Ids are never reused within a
// process.
type SourceID uint64

// EventKind tells which fields of an Event are meaningful.
type EventKind uint8

const (
	// EventPosition reports the playback position of a source.
	EventPosition EventKind = iota + 1
	// EventStopped is sent exactly once when a source ends for any reason.
	EventStopped
	// EventDeviceError reports a failure that cost the device at least one
	// period. Playback continues.
	EventDeviceError
)

func (k EventKind) String() string {
	switch k {
	case EventPosition:
		return "position"
	case EventStopped:
		return "stopped"
	case EventDeviceError:
		return "device-error"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is a playback status notification.
type Event struct {
	Kind EventKind
	ID   SourceID
	// Path is the file path, or the label of a synth source.
	Path     string
	Position time.Duration
	// Exhausted is set on Stopped events when the source reached its end
	// rather than being stopped, replaced or failing.
	Exhausted bool
	Err       error
}

func (e Event) String() string {
	switch e.Kind {
	case EventPosition:
		return fmt.Sprintf("position id=%d path=%s pos=%s", e.ID, e.Path, e.Position)
	case EventStopped:
		if e.Err != nil {
			return fmt.Sprintf("stopped id=%d path=%s exhausted=%t err=%v", e.ID, e.Path, e.Exhausted, e.Err)
		}
		return fmt.Sprintf("stopped id=%d path=%s exhausted=%t", e.ID, e.Path, e.Exhausted)
	case EventDeviceError:
		return fmt.Sprintf("device error: %v", e.Err)
	default:
		return e.Kind.String()
	}
}
