// SPDX-License-Identifier: EPL-2.0

// Package malgosink plays through miniaudio via gen2brain/malgo. It can
// address named devices and enumerate the playback devices of the host.
package malgosink

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/ik5/audplay/output"
)

const backend = "malgo"

// DeviceInfo describes a playback device.
type DeviceInfo struct {
	Index     int
	Name      string
	ID        string
	IsDefault bool
}

func initContext(log *slog.Logger) (*malgo.AllocatedContext, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		if log != nil {
			log.Debug(strings.TrimSpace(msg), "backend", backend)
		}
	})
	if err != nil {
		return nil, &output.DeviceError{Backend: backend, Op: "init context", Err: err}
	}
	return ctx, nil
}

func freeContext(ctx *malgo.AllocatedContext) {
	_ = ctx.Uninit()
	ctx.Free()
}

// Devices lists the playback devices miniaudio can see.
func Devices() ([]DeviceInfo, error) {
	ctx, err := initContext(nil)
	if err != nil {
		return nil, err
	}
	defer freeContext(ctx)

	infos, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, &output.DeviceError{Backend: backend, Op: "enumerate", Err: err}
	}
	out := make([]DeviceInfo, len(infos))
	for i, info := range infos {
		out[i] = DeviceInfo{
			Index:     i,
			Name:      info.Name(),
			ID:        info.ID.String(),
			IsDefault: info.IsDefault == 1,
		}
	}
	return out, nil
}

// matchDevice picks the device called want: an exact name or ID match wins,
// otherwise the first case-insensitive substring match of the name.
func matchDevice(devices []DeviceInfo, want string) (int, bool) {
	for i, d := range devices {
		if d.Name == want || d.ID == want {
			return i, true
		}
	}
	lw := strings.ToLower(want)
	for i, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), lw) {
			return i, true
		}
	}
	return -1, false
}

func sampleFormat(sf output.SampleFormat) (malgo.FormatType, error) {
	switch sf {
	case output.Float32:
		return malgo.FormatF32, nil
	case output.Int16:
		return malgo.FormatS16, nil
	default:
		return malgo.FormatUnknown, fmt.Errorf("%w: %v", output.ErrInvalidFormat, sf)
	}
}

// Options tune Open beyond output.Config.
type Options struct {
	// Logger receives miniaudio diagnostics and restart notices.
	Logger *slog.Logger
}

// Device is an output.Device backed by a miniaudio playback device.
type Device struct {
	name    string
	format  output.Format
	session *output.Session
	ctx     *malgo.AllocatedContext
	dev     *malgo.Device
	buf     *output.PeriodBuffer
	log     *slog.Logger

	mu       sync.Mutex
	renderer output.Renderer
	started  bool
	paused   bool
	closed   bool
	// stopping is set around intentional stops so the stop callback can
	// tell them apart from device failures.
	stopping atomic.Bool

	quit chan struct{}
	wg   sync.WaitGroup
}

// Open opens the default device or the one matching cfg.Name.
func Open(cfg output.Config, opts Options) (*Device, error) {
	f, err := cfg.Format()
	if err != nil {
		return nil, err
	}
	mf, err := sampleFormat(f.Sample)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	s, err := output.ClaimSession(backend)
	if err != nil {
		return nil, err
	}
	ctx, err := initContext(log)
	if err != nil {
		s.Release()
		return nil, err
	}
	fail := func(err error) (*Device, error) {
		freeContext(ctx)
		s.Release()
		return nil, err
	}

	dc := malgo.DefaultDeviceConfig(malgo.Playback)
	dc.Playback.Format = mf
	dc.Playback.Channels = uint32(f.Channels)
	dc.SampleRate = uint32(f.SampleRate)
	dc.PeriodSizeInFrames = uint32(f.PeriodFrames)
	dc.Periods = 2
	dc.Alsa.NoMMap = 1

	name := "default"
	if !output.IsDefaultName(cfg.Name) {
		infos, err := ctx.Devices(malgo.Playback)
		if err != nil {
			return fail(&output.DeviceError{Backend: backend, Op: "enumerate", Err: err})
		}
		list := make([]DeviceInfo, len(infos))
		for i, info := range infos {
			list[i] = DeviceInfo{Index: i, Name: info.Name(), ID: info.ID.String()}
		}
		i, ok := matchDevice(list, cfg.Name)
		if !ok {
			return fail(fmt.Errorf("%w: %q", output.ErrDeviceNotFound, cfg.Name))
		}
		dc.Playback.DeviceID = infos[i].ID.Pointer()
		name = list[i].Name
	}

	d := &Device{
		name:    name,
		format:  f,
		session: s,
		ctx:     ctx,
		buf:     output.NewPeriodBuffer(f),
		log:     log.With("backend", backend, "device", name),
		quit:    make(chan struct{}),
	}

	d.dev, err = malgo.InitDevice(ctx.Context, dc, malgo.DeviceCallbacks{
		Data: d.onData,
		Stop: d.onStop,
	})
	if err != nil {
		return fail(&output.DeviceError{Backend: backend, Op: "init device", Err: err})
	}
	return d, nil
}

func (d *Device) Name() string          { return d.name }
func (d *Device) Format() output.Format { return d.format }

func (d *Device) onData(out, _ []byte, _ uint32) {
	d.buf.Fill(out)
}

// onStop runs for every stop. Unexpected ones are reported and followed by
// a restart attempt after output.RestartDelay.
func (d *Device) onStop() {
	if d.stopping.Load() {
		return
	}
	d.mu.Lock()
	if d.closed || d.renderer == nil {
		d.mu.Unlock()
		return
	}
	r := d.renderer
	d.wg.Add(1)
	d.mu.Unlock()

	r.DeviceError(&output.DeviceError{Backend: backend, Op: "stopped", Err: fmt.Errorf("device %s stopped unexpectedly", d.name)})

	go func() {
		defer d.wg.Done()
		select {
		case <-d.quit:
			return
		case <-time.After(output.RestartDelay):
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.closed || d.paused {
			return
		}
		d.buf.Discard()
		if err := d.dev.Start(); err != nil {
			d.log.Error("restart failed", "error", err)
			r.DeviceError(&output.DeviceError{Backend: backend, Op: "restart", Err: err})
			return
		}
		d.log.Info("device restarted")
	}()
}

func (d *Device) Start(r output.Renderer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case d.closed:
		return output.ErrClosed
	case d.started:
		return output.ErrAlreadyStarted
	}
	d.renderer = r
	d.buf.SetRenderer(r)
	if err := d.dev.Start(); err != nil {
		d.buf.SetRenderer(nil)
		d.renderer = nil
		return &output.DeviceError{Backend: backend, Op: "start", Err: err}
	}
	d.started = true
	return nil
}

func (d *Device) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || !d.started {
		return output.ErrNotStarted
	}
	d.stopping.Store(true)
	err := d.dev.Stop()
	d.stopping.Store(false)
	if err != nil {
		return &output.DeviceError{Backend: backend, Op: "pause", Err: err}
	}
	d.paused = true
	return nil
}

func (d *Device) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || !d.started {
		return output.ErrNotStarted
	}
	if err := d.dev.Start(); err != nil {
		return &output.DeviceError{Backend: backend, Op: "resume", Err: err}
	}
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
	close(d.quit)
	d.mu.Unlock()

	d.wg.Wait()

	d.stopping.Store(true)
	d.dev.Uninit()
	d.buf.SetRenderer(nil)
	freeContext(d.ctx)
	d.session.Release()
	return nil
}
