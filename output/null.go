// SPDX-License-Identifier: EPL-2.0

package output

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audplay/internal/priority"
)

// NullDevice renders on a paced goroutine and discards the result. It keeps
// a player running in real time without any audio hardware.
type NullDevice struct {
	format  Format
	session *Session

	mu      sync.Mutex
	started bool
	closed  bool
	paused  atomic.Bool
	periods atomic.Uint64

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewNullDevice claims the device session and returns a stopped device.
func NewNullDevice(cfg Config) (*NullDevice, error) {
	f, err := cfg.Format()
	if err != nil {
		return nil, err
	}
	s, err := ClaimSession("null")
	if err != nil {
		return nil, err
	}
	return &NullDevice{format: f, session: s, stop: make(chan struct{})}, nil
}

func (d *NullDevice) Name() string   { return "null" }
func (d *NullDevice) Format() Format { return d.format }

// Periods is the number of periods rendered so far.
func (d *NullDevice) Periods() uint64 { return d.periods.Load() }

func (d *NullDevice) Start(r Renderer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.closed:
		return ErrClosed
	case d.started:
		return ErrAlreadyStarted
	}
	d.started = true
	d.wg.Add(1)
	go d.loop(r)
	return nil
}

func (d *NullDevice) loop(r Renderer) {
	defer d.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	_ = priority.Promote()

	buf := make([]byte, d.format.PeriodBytes())
	ticker := time.NewTicker(d.format.PeriodDuration())
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			if d.paused.Load() {
				continue
			}
			r.Render(buf)
			d.periods.Add(1)
		}
	}
}

func (d *NullDevice) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started || d.closed {
		return ErrNotStarted
	}
	d.paused.Store(true)
	return nil
}

func (d *NullDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started || d.closed {
		return ErrNotStarted
	}
	d.paused.Store(false)
	return nil
}

func (d *NullDevice) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.stop)
	d.mu.Unlock()

	d.wg.Wait()
	d.session.Release()
	return nil
}
