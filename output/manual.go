// SPDX-License-Identifier: EPL-2.0

package output

import (
	"sync"
	"sync/atomic"
)

type errBox struct{ err error }

// ManualDevice renders one period per Tick on the caller's goroutine. It is
// the clock for tests and offline rendering.
type ManualDevice struct {
	name    string
	format  Format
	session *Session

	mu       sync.Mutex // serializes Tick against Start and Close
	renderer Renderer
	started  bool
	closed   bool
	paused   atomic.Bool
	inject   atomic.Pointer[errBox]

	buf    []byte
	floats []float32
	ticks  atomic.Uint64
}

// NewManualDevice claims the device session and returns a stopped device.
func NewManualDevice(cfg Config) (*ManualDevice, error) {
	f, err := cfg.Format()
	if err != nil {
		return nil, err
	}
	name := cfg.Name
	if IsDefaultName(name) {
		name = "manual"
	}
	s, err := ClaimSession(name)
	if err != nil {
		return nil, err
	}
	return &ManualDevice{
		name:    name,
		format:  f,
		session: s,
		buf:     make([]byte, f.PeriodBytes()),
		floats:  make([]float32, f.PeriodSamples()),
	}, nil
}

func (d *ManualDevice) Name() string   { return d.name }
func (d *ManualDevice) Format() Format { return d.format }

func (d *ManualDevice) Start(r Renderer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.closed:
		return ErrClosed
	case d.started:
		return ErrAlreadyStarted
	}
	d.renderer = r
	d.started = true
	return nil
}

func (d *ManualDevice) Pause() error {
	if !d.isStarted() {
		return ErrNotStarted
	}
	d.paused.Store(true)
	return nil
}

func (d *ManualDevice) Resume() error {
	if !d.isStarted() {
		return ErrNotStarted
	}
	d.paused.Store(false)
	return nil
}

func (d *ManualDevice) isStarted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started && !d.closed
}

// InjectError makes the next Tick fail with err: the period is silent and
// the renderer is told through DeviceError.
func (d *ManualDevice) InjectError(err error) {
	d.inject.Store(&errBox{err: err})
}

// Tick renders one period and returns it. The returned slice is reused by
// the next Tick. A device that is not started, paused or closed yields
// silence.
func (d *ManualDevice) Tick() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.started || d.closed || d.paused.Load() {
		clear(d.buf)
		return d.buf
	}
	if box := d.inject.Swap(nil); box != nil {
		clear(d.buf)
		d.renderer.DeviceError(&DeviceError{Backend: "manual", Op: "write", Err: box.err})
		d.ticks.Add(1)
		return d.buf
	}
	d.renderer.Render(d.buf)
	d.ticks.Add(1)
	return d.buf
}

// TickFloat32 renders one period and returns it decoded to float32. The
// returned slice is reused by the next call.
func (d *ManualDevice) TickFloat32() []float32 {
	Decode(d.floats, d.Tick(), d.format.Sample)
	return d.floats
}

// Ticks is the number of periods rendered so far, including failed ones.
func (d *ManualDevice) Ticks() uint64 { return d.ticks.Load() }

func (d *ManualDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.renderer = nil
	d.session.Release()
	return nil
}
