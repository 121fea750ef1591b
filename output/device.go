// SPDX-License-Identifier: EPL-2.0

package output

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDeviceBusy is returned when a device is opened while another one is
	// still open in this process.
	ErrDeviceBusy = errors.New("an output device is already open")
	// ErrDeviceNotFound is returned when a named device does not exist.
	ErrDeviceNotFound = errors.New("output device not found")
	// ErrInvalidFormat is returned for unusable output formats.
	ErrInvalidFormat = errors.New("invalid output format")
	// ErrNotStarted is returned by operations that need a running device.
	ErrNotStarted = errors.New("output device not started")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("output device already started")
	// ErrClosed is returned by operations on a closed device.
	ErrClosed = errors.New("output device closed")
)

// DeviceError wraps a backend failure with the operation that hit it.
type DeviceError struct {
	Backend string
	Op      string
	Err     error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// Renderer produces audio for a device. Render fills dst with exactly one
// period in the device's encoding; it is called from the device callback
// and must not block or allocate. DeviceError reports a failure that cost
// the device one or more periods; it must not block either.
type Renderer interface {
	Render(dst []byte)
	DeviceError(err error)
}

// Device is an open output. Start hands the device its renderer and begins
// periodic rendering; Pause and Resume stop and restart callbacks without
// losing state; Close stops the device and releases the session.
type Device interface {
	Name() string
	Format() Format
	Start(r Renderer) error
	Pause() error
	Resume() error
	Close() error
}

// Config selects and shapes a device. Zero values pick the defaults.
type Config struct {
	// Name selects a named device where the backend supports it. Empty or
	// "default" selects the system default.
	Name         string
	SampleRate   int
	Channels     int
	PeriodFrames int
	Sample       SampleFormat
}

const (
	DefaultSampleRate   = 48000
	DefaultChannels     = 2
	DefaultPeriodFrames = 512
)

// Format resolves defaults and validates the requested format.
func (c Config) Format() (Format, error) {
	f := Format{
		SampleRate:   c.SampleRate,
		Channels:     c.Channels,
		PeriodFrames: c.PeriodFrames,
		Sample:       c.Sample,
	}
	if f.SampleRate == 0 {
		f.SampleRate = DefaultSampleRate
	}
	if f.Channels == 0 {
		f.Channels = DefaultChannels
	}
	if f.PeriodFrames == 0 {
		f.PeriodFrames = DefaultPeriodFrames
	}
	if err := f.Validate(); err != nil {
		return Format{}, err
	}
	return f, nil
}

// IsDefaultName reports whether name selects the system default device.
func IsDefaultName(name string) bool {
	return name == "" || name == "default"
}

// RestartDelay is how long backends wait before restarting a device that
// stopped unexpectedly.
const RestartDelay = 100 * time.Millisecond
