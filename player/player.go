// SPDX-License-Identifier: EPL-2.0

package player

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats"
	"github.com/ik5/audplay/internal/logging"
	"github.com/ik5/audplay/output"
)

// lastID is process wide so ids stay unique across players.
var lastID atomic.Uint64

type handle struct {
	kind sourceKind
	path string
}

// Player mixes any number of sources onto one output device. All methods
// are safe for concurrent use. Sources are prepared on the calling
// goroutine and handed to the render thread through a bounded queue, so no
// call ever waits for audio to be rendered.
type Player struct {
	log    *slog.Logger
	dev    output.Device
	format output.Format
	cfg    config
	reg    *audio.Registry
	cache  *decodeCache
	mix    *mixer
	stats  counters

	mu     sync.Mutex
	live   map[SourceID]handle
	closed bool

	quit chan struct{}
	wg   sync.WaitGroup
}

// New starts dev with a new player as its renderer. The player owns dev
// from then on and closes it in Close.
func New(dev output.Device, opts ...Option) (*Player, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.registry == nil {
		cfg.registry = formats.NewRegistry()
	}

	p := &Player{
		log:    logging.WithComponent(cfg.logger, "player"),
		dev:    dev,
		format: dev.Format(),
		cfg:    cfg,
		reg:    cfg.registry,
		cache:  newDecodeCache(cfg.cacheTTL),
		live:   make(map[SourceID]handle),
		quit:   make(chan struct{}),
	}
	p.mix = newMixer(p.format, cfg, &p.stats)

	if err := dev.Start(p.mix); err != nil {
		return nil, fmt.Errorf("starting %s: %w", dev.Name(), err)
	}

	p.wg.Add(1)
	go p.reaper()
	if cfg.status != nil {
		p.wg.Add(1)
		go p.pump()
	}

	p.log.Info("player started", "device", dev.Name(), "format", p.format.String())
	return p, nil
}

// OutputSampleRate is the device rate every source is converted to.
func (p *Player) OutputSampleRate() uint32 { return uint32(p.format.SampleRate) }

func (p *Player) OutputFormat() output.Format { return p.format }

// PlayFile plays path once with default options.
func (p *Player) PlayFile(path string) (SourceID, error) {
	return p.PlayFileWithOptions(path, DefaultFilePlaybackOptions())
}

// PlayFileWithOptions prepares path and queues it for playback. A preloaded
// file is decoded completely before this returns; a streamed one has its
// first chunk buffered.
func (p *Player) PlayFileWithOptions(path string, opts FilePlaybackOptions) (SourceID, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	if p.isClosed() {
		return 0, ErrClosed
	}
	src, err := p.prepareFile(path, opts)
	if err != nil {
		return 0, err
	}
	return p.submit(cmdAdd, 0, path, src, opts.VolumeDB, opts.FadeIn, opts.PositionInterval)
}

// PlaySynth plays gen until it runs dry or is stopped. label stands in for
// the path in events.
func (p *Player) PlaySynth(gen Generator, label string) (SourceID, error) {
	return p.PlaySynthWithOptions(gen, label, SynthPlaybackOptions{})
}

func (p *Player) PlaySynthWithOptions(gen Generator, label string, opts SynthPlaybackOptions) (SourceID, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	if gen == nil || gen.Channels() < 1 || gen.SampleRate() <= 0 {
		return 0, fmt.Errorf("%w: unusable generator", ErrInvalidOptions)
	}
	if p.isClosed() {
		return 0, ErrClosed
	}
	return p.submit(cmdAdd, 0, label, newSynthSource(gen, p.format), opts.VolumeDB, opts.FadeIn, opts.PositionInterval)
}

// SeekSource moves a file source to pos. The jump is not faded.
func (p *Player) SeekSource(id SourceID, pos time.Duration) error {
	if pos < 0 {
		return fmt.Errorf("%w: position %v", ErrInvalidOptions, pos)
	}
	return p.control(command{kind: cmdSeek, id: id, pos: pos}, true)
}

// StopSource fades id out. The Stopped event follows once the fade is done.
func (p *Player) StopSource(id SourceID) error {
	return p.control(command{kind: cmdStop, id: id}, false)
}

// StopAllPlayingSources fades out everything queued before this call.
// Sources played afterwards are not affected.
func (p *Player) StopAllPlayingSources() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if !p.mix.cmds.TryPush(command{kind: cmdStopAll}) {
		return ErrBackpressure
	}
	return nil
}

// ReplaceSource fades id out and starts path in its place within the same
// period. It returns the id of the new source.
func (p *Player) ReplaceSource(id SourceID, path string, opts FilePlaybackOptions) (SourceID, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	if _, err := p.lookup(id); err != nil {
		return 0, err
	}
	src, err := p.prepareFile(path, opts)
	if err != nil {
		return 0, err
	}
	return p.submit(cmdReplace, id, path, src, opts.VolumeDB, opts.FadeIn, opts.PositionInterval)
}

// Start resumes a paused device. Sources keep their positions.
func (p *Player) Start() error {
	if p.isClosed() {
		return ErrClosed
	}
	return p.dev.Resume()
}

// Pause stops the device callbacks without dropping any source.
func (p *Player) Pause() error {
	if p.isClosed() {
		return ErrClosed
	}
	return p.dev.Pause()
}

// PollEvents hands every queued event to fn and returns how many there
// were. It returns 0 when a status channel was configured.
func (p *Player) PollEvents(fn func(Event)) int {
	if p.cfg.status != nil {
		return 0
	}
	n := 0
	for {
		ev, ok := p.mix.events.TryPop()
		if !ok {
			return n
		}
		p.observe(ev)
		if fn != nil {
			fn(ev)
		}
		n++
	}
}

// Close stops the device, releases every source and joins all goroutines
// the player started.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	err := p.dev.Close()
	close(p.quit)
	p.wg.Wait()

	// The render thread is gone; whatever the mixer holds is ours now.
	for _, v := range p.mix.voices {
		v.src.stop()
		p.release(v)
	}
	clear(p.mix.voices)
	p.mix.voices = p.mix.voices[:0]
	for _, v := range p.mix.zombies {
		p.release(v)
	}
	p.mix.zombies = p.mix.zombies[:0]
	for {
		c, ok := p.mix.cmds.TryPop()
		if !ok {
			break
		}
		if c.voice != nil {
			c.voice.src.stop()
			p.release(c.voice)
		}
	}
	p.collect()
	p.cache.flush()

	p.log.Info("player closed", "periods", p.stats.periods.Load(), "underruns", p.stats.underruns.Load())
	if err != nil {
		return fmt.Errorf("closing %s: %w", p.dev.Name(), err)
	}
	return nil
}

func (p *Player) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Player) lookup(id SourceID) (handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return handle{}, ErrClosed
	}
	h, ok := p.live[id]
	if !ok {
		return handle{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return h, nil
}

// control queues a command for a live source.
func (p *Player) control(c command, seek bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	h, ok := p.live[c.id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, c.id)
	}
	if seek && h.kind == kindSynth {
		return fmt.Errorf("%w: %s", ErrNotSeekable, h.path)
	}
	if !p.mix.cmds.TryPush(c) {
		return ErrBackpressure
	}
	return nil
}

func (p *Player) prepareFile(path string, opts FilePlaybackOptions) (source, error) {
	switch opts.Mode {
	case Streamed:
		s, err := newStreamedSource(p.reg, path, opts, streamParams{
			format:    p.format,
			buffer:    p.cfg.streamBuffer,
			timeout:   p.cfg.prepareTimeout,
			underruns: &p.stats.underruns,
			log:       p.log,
		})
		if errors.Is(err, ErrPrepareTimeout) {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		return s, nil
	default:
		buf, cached, err := p.cache.load(p.reg, path)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		p.log.Debug("file preloaded", "path", path, "cached", cached, "duration", buf.Duration())
		return newPreloadedSource(buf, p.format, opts), nil
	}
}

// submit wraps src in a voice and queues it. On failure src is released.
func (p *Player) submit(kind commandKind, target SourceID, path string, src source, volumeDB float32, fadeIn, interval time.Duration) (SourceID, error) {
	if interval == 0 {
		interval = p.cfg.positionInterval
	}
	id := SourceID(lastID.Add(1))
	var fade int
	if fadeIn > 0 {
		fade = fadeFrames(fadeIn, p.format.SampleRate)
	}
	v := newVoice(id, path, src, volumeDB, fade, intervalFrames(interval, p.format.SampleRate))

	p.mu.Lock()
	err := ErrClosed
	if !p.closed {
		p.live[id] = handle{kind: src.kind(), path: path}
		err = nil
		if !p.mix.cmds.TryPush(command{kind: kind, id: target, voice: v}) {
			delete(p.live, id)
			err = ErrBackpressure
		}
	}
	p.mu.Unlock()

	if err != nil {
		src.stop()
		if rerr := src.release(); rerr != nil {
			p.log.Warn("releasing rejected source", "path", path, "error", rerr)
		}
		return 0, err
	}
	p.log.Debug("source queued", "id", id, "path", path, "kind", src.kind().String())
	return id, nil
}

// observe keeps the liveness map in step with delivered events.
func (p *Player) observe(ev Event) {
	if ev.Kind != EventStopped {
		return
	}
	p.mu.Lock()
	delete(p.live, ev.ID)
	p.mu.Unlock()
}

func (p *Player) release(v *voice) {
	if err := v.src.release(); err != nil {
		p.log.Warn("releasing source", "id", v.id, "path", v.path, "error", err)
	}
	p.mu.Lock()
	delete(p.live, v.id)
	p.mu.Unlock()
}

// collect releases everything in the graveyard.
func (p *Player) collect() int {
	n := 0
	for {
		v, ok := p.mix.graveyard.TryPop()
		if !ok {
			return n
		}
		p.release(v)
		n++
	}
}

func (p *Player) reaper() {
	defer p.wg.Done()
	t := time.NewTicker(defaultReapInterval)
	defer t.Stop()

	for ticks := 1; ; ticks++ {
		select {
		case <-p.quit:
			return
		case <-t.C:
		}
		p.collect()
		if ticks%defaultCacheSweepTicks == 0 {
			p.cache.sweep()
		}
	}
}

// pump forwards events to the status channel.
func (p *Player) pump() {
	defer p.wg.Done()
	t := time.NewTicker(defaultReapInterval)
	defer t.Stop()

	for {
		for {
			ev, ok := p.mix.events.TryPop()
			if !ok {
				break
			}
			p.observe(ev)
			select {
			case p.cfg.status <- ev:
			case <-p.quit:
				return
			}
		}
		select {
		case <-p.quit:
			return
		case <-t.C:
		}
	}
}
