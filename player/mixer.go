// SPDX-License-Identifier: EPL-2.0

package player

import (
	"sync/atomic"
	"time"

	"github.com/ik5/audplay/internal/queue"
	"github.com/ik5/audplay/output"
)

type commandKind uint8

const (
	cmdAdd commandKind = iota + 1
	cmdSeek
	cmdStop
	cmdStopAll
	cmdReplace
)

type command struct {
	kind  commandKind
	id    SourceID
	pos   time.Duration
	voice *voice
}

type counters struct {
	periods       atomic.Uint64
	underruns     atomic.Uint64
	droppedEvents atomic.Uint64
	rejected      atomic.Uint64
	deviceErrors  atomic.Uint64
	active        atomic.Int64
}

// mixer is the output.Renderer of a Player. Render runs once per period on
// the device thread; it drains commands, polls every voice, sums them and
// encodes the result. It never allocates, locks or does I/O.
type mixer struct {
	format     output.Format
	fadeFrames int

	cmds      *queue.Ring[command]
	events    *queue.Ring[Event]
	graveyard *queue.Ring[*voice]

	voices []*voice
	// pending holds Stopped events the event queue had no room for.
	pending []Event
	// zombies holds removed voices the graveyard had no room for.
	zombies []*voice

	scratch []float32
	acc     []float32

	stats *counters
}

func newMixer(f output.Format, cfg config, stats *counters) *mixer {
	slack := cfg.maxSources + cfg.commandCapacity
	return &mixer{
		format:     f,
		fadeFrames: fadeFrames(cfg.fadeDuration, f.SampleRate),
		cmds:       queue.New[command](cfg.commandCapacity),
		events:     queue.New[Event](cfg.eventCapacity),
		graveyard:  queue.New[*voice](slack),
		voices:     make([]*voice, 0, cfg.maxSources),
		pending:    make([]Event, 0, slack),
		zombies:    make([]*voice, 0, slack),
		scratch:    make([]float32, f.PeriodSamples()),
		acc:        make([]float32, f.PeriodSamples()),
		stats:      stats,
	}
}

func fadeFrames(d time.Duration, rate int) int {
	if d <= 0 {
		return 0
	}
	return max(1, int(d.Seconds()*float64(rate)))
}

func (m *mixer) Render(dst []byte) {
	m.drainCommands()
	m.retry()

	clear(m.acc)
	ch := m.format.Channels
	period := int64(m.format.PeriodFrames)

	for _, v := range m.voices {
		v.src.poll(m.scratch)
		for i := 0; i < len(m.scratch); i += ch {
			g := v.gain * v.fader.Next()
			for c := range ch {
				m.acc[i+c] += m.scratch[i+c] * g
			}
		}

		if v.state == stateSeeking && !v.src.seekPending() {
			v.state = stateActive
		}
		if v.interval > 0 && v.playing() {
			v.sinceReport += period
			if v.sinceReport >= v.interval {
				v.sinceReport %= v.interval
				m.emit(v.positionEvent())
			}
		}
		if v.playing() {
			if err := v.src.failure(); err != nil {
				v.err = err
				m.fadeOut(v)
			} else if v.src.exhausted() {
				v.exhausted = true
				m.fadeOut(v)
			}
		}
	}

	m.reap()
	output.Encode(dst, m.acc, m.format.Sample)

	m.stats.periods.Add(1)
	m.stats.active.Store(int64(len(m.voices)))
}

func (m *mixer) DeviceError(err error) {
	m.stats.deviceErrors.Add(1)
	m.emit(Event{Kind: EventDeviceError, Err: err})
}

// drainCommands applies at most one queue's worth of commands, in order.
func (m *mixer) drainCommands() {
	for range m.cmds.Cap() {
		c, ok := m.cmds.TryPop()
		if !ok {
			return
		}
		switch c.kind {
		case cmdAdd:
			m.add(c.voice)
		case cmdSeek:
			if v := m.find(c.id); v != nil && v.playing() {
				if !v.src.seek(c.pos) {
					v.state = stateSeeking
				}
			}
		case cmdStop:
			if v := m.find(c.id); v != nil {
				m.fadeOut(v)
			}
		case cmdStopAll:
			for _, v := range m.voices {
				m.fadeOut(v)
			}
		case cmdReplace:
			if v := m.find(c.id); v != nil {
				m.fadeOut(v)
			}
			m.add(c.voice)
		}
	}
}

func (m *mixer) add(v *voice) {
	if len(m.voices) == cap(m.voices) {
		m.stats.rejected.Add(1)
		v.err = ErrTooManySources
		v.state = stateRemoved
		m.stopped(v)
		v.src.stop()
		m.bury(v)
		return
	}
	v.state = stateActive
	if v.fadeIn > 0 {
		v.fader.FadeIn(v.fadeIn)
	}
	m.voices = append(m.voices, v)
}

func (m *mixer) find(id SourceID) *voice {
	for _, v := range m.voices {
		if v.id == id {
			return v
		}
	}
	return nil
}

// fadeOut starts the stop ramp. Only playing voices can start one.
func (m *mixer) fadeOut(v *voice) {
	if !v.playing() {
		return
	}
	v.state = stateFading
	v.fader.FadeOut(m.fadeFrames)
}

// reap removes voices whose fade has finished, keeping the order of the
// rest.
func (m *mixer) reap() {
	kept := m.voices[:0]
	for _, v := range m.voices {
		if v.state == stateFading && v.fader.Done() {
			v.state = stateRemoved
			m.stopped(v)
			v.src.stop()
			m.bury(v)
			continue
		}
		kept = append(kept, v)
	}
	clear(m.voices[len(kept):])
	m.voices = kept
}

// stopped queues the one Stopped event of v. It never drops while there is
// room in pending; ordering with earlier undelivered ones is kept.
func (m *mixer) stopped(v *voice) {
	ev := v.stoppedEvent()
	if len(m.pending) == 0 && m.events.TryPush(ev) {
		return
	}
	if len(m.pending) == cap(m.pending) {
		m.stats.droppedEvents.Add(1)
		return
	}
	m.pending = append(m.pending, ev)
}

// emit sends a best-effort event. It is dropped when the queue is full.
func (m *mixer) emit(ev Event) {
	if !m.events.TryPush(ev) {
		m.stats.droppedEvents.Add(1)
	}
}

func (m *mixer) bury(v *voice) {
	if len(m.zombies) == 0 && m.graveyard.TryPush(v) {
		return
	}
	if len(m.zombies) < cap(m.zombies) {
		m.zombies = append(m.zombies, v)
	}
}

// retry delivers what earlier periods could not.
func (m *mixer) retry() {
	sent := 0
	for sent < len(m.pending) && m.events.TryPush(m.pending[sent]) {
		sent++
	}
	if sent > 0 {
		n := copy(m.pending, m.pending[sent:])
		clear(m.pending[n:])
		m.pending = m.pending[:n]
	}

	buried := 0
	for buried < len(m.zombies) && m.graveyard.TryPush(m.zombies[buried]) {
		buried++
	}
	if buried > 0 {
		n := copy(m.zombies, m.zombies[buried:])
		clear(m.zombies[n:])
		m.zombies = m.zombies[:n]
	}
}
