// SPDX-License-Identifier: EPL-2.0

// Package otosink plays through the system default device using
// ebitengine/oto. oto allows one context per process, so the context is
// created on the first Open and reused by later ones with the same format.
package otosink

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/audplay/output"
)

const backend = "oto"

// watchInterval is how often a running device checks its player for errors.
const watchInterval = 100 * time.Millisecond

var (
	ctxMu   sync.Mutex
	ctx     *oto.Context
	ctxOpts oto.NewContextOptions
)

func sampleFormat(sf output.SampleFormat) (oto.Format, error) {
	switch sf {
	case output.Float32:
		return oto.FormatFloat32LE, nil
	case output.Int16:
		return oto.FormatSignedInt16LE, nil
	default:
		return 0, fmt.Errorf("%w: %v", output.ErrInvalidFormat, sf)
	}
}

func contextOptions(f output.Format) (oto.NewContextOptions, error) {
	of, err := sampleFormat(f.Sample)
	if err != nil {
		return oto.NewContextOptions{}, err
	}
	return oto.NewContextOptions{
		SampleRate:   f.SampleRate,
		ChannelCount: f.Channels,
		Format:       of,
		BufferSize:   2 * f.PeriodDuration(),
	}, nil
}

func sharedContext(opts oto.NewContextOptions) (*oto.Context, error) {
	ctxMu.Lock()
	defer ctxMu.Unlock()

	if ctx != nil {
		if ctxOpts.SampleRate != opts.SampleRate || ctxOpts.ChannelCount != opts.ChannelCount || ctxOpts.Format != opts.Format {
			return nil, fmt.Errorf("%w: oto context already running at %d Hz, %d ch",
				output.ErrInvalidFormat, ctxOpts.SampleRate, ctxOpts.ChannelCount)
		}
		return ctx, nil
	}

	c, ready, err := oto.NewContext(&opts)
	if err != nil {
		return nil, &output.DeviceError{Backend: backend, Op: "open", Err: err}
	}
	<-ready
	ctx, ctxOpts = c, opts
	return ctx, nil
}

// Device is an output.Device backed by an oto player.
type Device struct {
	format  output.Format
	session *output.Session
	ctx     *oto.Context
	buf     *output.PeriodBuffer

	mu       sync.Mutex
	player   *oto.Player
	renderer output.Renderer
	paused   bool
	closed   bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// Open opens the default device. oto cannot address named devices, so any
// other name fails with output.ErrDeviceNotFound.
func Open(cfg output.Config) (*Device, error) {
	if !output.IsDefaultName(cfg.Name) {
		return nil, fmt.Errorf("%w: %q (oto only supports the default device)", output.ErrDeviceNotFound, cfg.Name)
	}
	f, err := cfg.Format()
	if err != nil {
		return nil, err
	}
	opts, err := contextOptions(f)
	if err != nil {
		return nil, err
	}

	s, err := output.ClaimSession(backend)
	if err != nil {
		return nil, err
	}
	c, err := sharedContext(opts)
	if err != nil {
		s.Release()
		return nil, err
	}

	return &Device{
		format:  f,
		session: s,
		ctx:     c,
		buf:     output.NewPeriodBuffer(f),
		stop:    make(chan struct{}),
	}, nil
}

func (d *Device) Name() string          { return "default" }
func (d *Device) Format() output.Format { return d.format }

func (d *Device) newPlayer() *oto.Player {
	p := d.ctx.NewPlayer(d.buf)
	p.SetBufferSize(2 * d.format.PeriodBytes())
	return p
}

func (d *Device) Start(r output.Renderer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.closed:
		return output.ErrClosed
	case d.player != nil:
		return output.ErrAlreadyStarted
	}

	if err := d.ctx.Resume(); err != nil {
		return &output.DeviceError{Backend: backend, Op: "resume", Err: err}
	}
	d.renderer = r
	d.buf.SetRenderer(r)
	d.player = d.newPlayer()
	d.player.Play()

	d.wg.Add(1)
	go d.watch()
	return nil
}

// watch replaces a failed player so playback resumes on the next period.
func (d *Device) watch() {
	defer d.wg.Done()
	t := time.NewTicker(watchInterval)
	defer t.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-t.C:
		}

		d.mu.Lock()
		if d.closed || d.player == nil {
			d.mu.Unlock()
			continue
		}
		err := d.player.Err()
		if err == nil {
			// A context error is permanent and oto allows one context
			// per process, so there is nothing left to restart.
			err = d.ctx.Err()
			if err != nil {
				d.mu.Unlock()
				d.renderer.DeviceError(&output.DeviceError{Backend: backend, Op: "context", Err: err})
				return
			}
			d.mu.Unlock()
			continue
		}

		_ = d.player.Close()
		d.buf.Discard()
		d.player = d.newPlayer()
		if !d.paused {
			d.player.Play()
		}
		r := d.renderer
		d.mu.Unlock()

		r.DeviceError(&output.DeviceError{Backend: backend, Op: "play", Err: err})
	}
}

func (d *Device) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.player == nil {
		return output.ErrNotStarted
	}
	d.player.Pause()
	d.paused = true
	return nil
}

func (d *Device) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.player == nil {
		return output.ErrNotStarted
	}
	d.player.Play()
	d.paused = false
	return nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.stop)
	p := d.player
	d.player = nil
	d.mu.Unlock()

	d.wg.Wait()

	var err error
	if p != nil {
		p.Pause()
		err = p.Close()
	}
	d.buf.SetRenderer(nil)
	_ = d.ctx.Suspend()
	d.session.Release()
	if err != nil {
		return &output.DeviceError{Backend: backend, Op: "close", Err: err}
	}
	return nil
}
