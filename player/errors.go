// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for ids that are unknown or already finished.
	ErrNotFound = errors.New("source not found")
	// ErrBackpressure is returned when the command queue is full.
	ErrBackpressure = errors.New("command queue full")
	// ErrInvalidOptions is returned for out-of-range playback options.
	ErrInvalidOptions = errors.New("invalid playback options")
	// ErrNotSeekable is returned when seeking a synth source.
	ErrNotSeekable = errors.New("source is not seekable")
	// ErrClosed is returned by every call on a closed Player.
	ErrClosed = errors.New("player closed")
	// ErrPrepareTimeout is returned when a streamed source could not buffer
	// its first chunk in time.
	ErrPrepareTimeout = errors.New("timed out preparing stream")
	// ErrTooManySources is reported in the Stopped event of a source that
	// arrived while every voice slot was taken.
	ErrTooManySources = errors.New("too many playing sources")
)

// DecodeError is returned when a file cannot be opened or decoded while
// preparing a source.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
