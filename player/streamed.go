// SPDX-License-Identifier: EPL-2.0

package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/smallnest/ringbuffer"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/internal/priority"
	"github.com/ik5/audplay/output"
)

const bytesPerSample = 4

type errBox struct{ err error }

// streamedSource decodes ahead on a worker goroutine into a byte ring. The
// render thread drains the ring through ringReader and never waits on the
// worker: an empty ring is an underrun and plays as silence.
//
// Seeks are handed to the worker through seekTarget and a pair of
// generation counters. The render thread stops reading until the worker
// has repositioned the decoder, cleared the ring and acknowledged.
type streamedSource struct {
	path       string
	reg        *audio.Registry
	rate       int
	ch         int
	frameBytes int
	ring       *ringbuffer.RingBuffer
	pipe       pipeline
	reader     *ringReader
	log        *slog.Logger

	// Owned by the worker once it runs.
	dec         audio.Source
	repeat      int
	chunk       []float32
	bytes       []byte
	pace        time.Duration
	posFrame    int64
	passWritten int64

	seekTarget atomic.Int64
	reqGen     atomic.Uint64
	ackGen     atomic.Uint64
	finished   atomic.Bool
	failed     atomic.Pointer[errBox]
	passFrames atomic.Int64
	quit       atomic.Bool
	wake       chan struct{}
	primed     chan struct{}
	primeOnce  sync.Once
	workerDone chan struct{}

	// Owned by the render thread.
	base      int64
	done      bool
	err       error
	underruns *atomic.Uint64
}

type streamParams struct {
	format    output.Format
	buffer    time.Duration
	timeout   time.Duration
	underruns *atomic.Uint64
	log       *slog.Logger
}

// newStreamedSource opens path, positions it, starts the worker and waits
// until the ring holds its first chunk or the file has ended.
func newStreamedSource(reg *audio.Registry, path string, opts FilePlaybackOptions, p streamParams) (*streamedSource, error) {
	dec, err := reg.Open(path)
	if err != nil {
		return nil, err
	}
	rate, ch := dec.SampleRate(), dec.Channels()
	if rate <= 0 || ch < 1 {
		_ = dec.Close()
		return nil, fmt.Errorf("%w: %d Hz, %d channels", audio.ErrInvalidChannels, rate, ch)
	}

	f := p.format
	chunkFrames := max(256, f.PeriodFrames)
	ringFrames := max(audio.DurationToFrames(p.buffer, rate), int64(4*chunkFrames))
	frameBytes := ch * bytesPerSample

	s := &streamedSource{
		path:       path,
		reg:        reg,
		rate:       rate,
		ch:         ch,
		frameBytes: frameBytes,
		ring:       ringbuffer.New(int(ringFrames) * frameBytes),
		log:        p.log,
		dec:        dec,
		repeat:     opts.Repeat,
		chunk:      make([]float32, chunkFrames*ch),
		bytes:      make([]byte, chunkFrames*frameBytes),
		pace:       min(10*time.Millisecond, max(time.Millisecond, f.PeriodDuration()/2)),
		wake:       make(chan struct{}, 1),
		primed:     make(chan struct{}),
		workerDone: make(chan struct{}),
		underruns:  p.underruns,
	}
	s.reader = &ringReader{s: s, buf: make([]byte, f.PeriodFrames*frameBytes)}
	s.pipe = newPipeline(s.reader, f, opts.speed())

	if opts.StartPosition > 0 {
		start := audio.DurationToFrames(opts.StartPosition, rate)
		if err := s.seekDecoder(start); err != nil {
			_ = s.dec.Close()
			return nil, err
		}
		s.base = start
	}

	go s.run()

	t := time.NewTimer(p.timeout)
	defer t.Stop()
	select {
	case <-s.primed:
	case <-t.C:
		_ = s.release()
		return nil, ErrPrepareTimeout
	}
	if fb := s.failed.Load(); fb != nil {
		_ = s.release()
		return nil, fb.err
	}
	return s, nil
}

func (s *streamedSource) kind() sourceKind { return kindStreamed }

func (s *streamedSource) poll(dst []float32) int {
	if s.done || s.seekPending() {
		clear(dst)
		return 0
	}
	frames, eof, err := s.pipe.pull(dst)
	switch {
	case err != nil:
		s.err = err
		s.done = true
	case eof:
		s.done = true
	case frames*s.pipe.ch < len(dst):
		s.underruns.Add(1)
	}
	s.nudge()
	return frames
}

func (s *streamedSource) exhausted() bool { return s.done && s.err == nil }
func (s *streamedSource) failure() error  { return s.err }

func (s *streamedSource) position() time.Duration {
	f := s.base + s.reader.consumed
	if pass := s.passFrames.Load(); pass > 0 {
		f %= pass
	}
	return audio.FramesToDuration(f, s.rate)
}

func (s *streamedSource) seek(pos time.Duration) bool {
	frame := audio.DurationToFrames(pos, s.rate)
	s.seekTarget.Store(frame)
	s.reqGen.Add(1)
	s.pipe.rs.Reset()
	s.base = frame
	s.reader.consumed = 0
	s.done = false
	s.err = nil
	s.nudge()
	return false
}

func (s *streamedSource) seekPending() bool {
	return s.reqGen.Load() != s.ackGen.Load()
}

func (s *streamedSource) stop() {
	s.quit.Store(true)
	s.nudge()
}

func (s *streamedSource) nudge() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// release stops the worker, waits for it and closes the decoder.
func (s *streamedSource) release() error {
	s.stop()
	<-s.workerDone
	return s.dec.Close()
}

func (s *streamedSource) markPrimed() {
	s.primeOnce.Do(func() { close(s.primed) })
}

func (s *streamedSource) fail(err error) {
	s.failed.Store(&errBox{err: err})
	s.finished.Store(true)
	s.markPrimed()
	if s.log != nil {
		s.log.Error("stream decode failed", "path", s.path, "error", err)
	}
}

type fillResult uint8

const (
	fillMore fillResult = iota
	fillIdle
	fillEnd
)

func (s *streamedSource) run() {
	defer close(s.workerDone)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	_ = priority.Promote()

	t := time.NewTicker(s.pace)
	defer t.Stop()

	ended := false
	for !s.quit.Load() {
		if gen := s.reqGen.Load(); gen != s.ackGen.Load() {
			ended = !s.applySeek(s.seekTarget.Load())
			s.ackGen.Store(gen)
			continue
		}

		if ended || s.ring.Free() < len(s.bytes) {
			s.markPrimed()
			select {
			case <-s.wake:
			case <-t.C:
			}
			continue
		}

		res, err := s.fill()
		switch {
		case err != nil:
			s.fail(err)
			ended = true
		case res == fillEnd:
			s.finished.Store(true)
			s.markPrimed()
			ended = true
		case res == fillIdle:
			select {
			case <-s.wake:
			case <-t.C:
			}
		}
	}
}

// fill decodes one chunk into the ring. The caller has checked that the
// ring has room for it.
func (s *streamedSource) fill() (fillResult, error) {
	n, err := s.dec.ReadSamples(s.chunk)
	n -= n % s.ch
	if n > 0 {
		for i, v := range s.chunk[:n] {
			binary.LittleEndian.PutUint32(s.bytes[i*bytesPerSample:], math.Float32bits(v))
		}
		if _, werr := s.ring.Write(s.bytes[:n*bytesPerSample]); werr != nil {
			return fillEnd, fmt.Errorf("buffering %s: %w", s.path, werr)
		}
		frames := int64(n / s.ch)
		s.posFrame += frames
		s.passWritten += frames
		s.markPrimed()
	}

	switch {
	case errors.Is(err, io.EOF):
		if s.passFrames.Load() == 0 {
			s.passFrames.Store(s.posFrame)
		}
		if s.repeat == 0 || s.passWritten == 0 {
			return fillEnd, nil
		}
		if s.repeat != RepeatForever {
			s.repeat--
		}
		if err := s.seekDecoder(0); err != nil {
			return fillEnd, err
		}
		return fillMore, nil
	case errors.Is(err, audio.ErrWouldBlock):
		return fillIdle, nil
	case err != nil:
		return fillEnd, err
	}
	if n == 0 {
		return fillIdle, nil
	}
	return fillMore, nil
}

// applySeek runs on the worker while the render thread is not reading. It
// reports whether there is more to decode.
func (s *streamedSource) applySeek(frame int64) bool {
	if s.failed.Load() != nil {
		return false
	}
	s.ring.Reset()
	s.finished.Store(false)
	if err := s.seekDecoder(frame); err != nil {
		s.fail(err)
		return false
	}
	return true
}

// seekDecoder moves the decoder to frame. Decoders that cannot seek are
// reopened and read forward.
func (s *streamedSource) seekDecoder(frame int64) error {
	s.passWritten = 0
	if sk, ok := s.dec.(audio.Seeker); ok {
		err := sk.SeekFrame(frame)
		if err == nil {
			s.posFrame = frame
			return nil
		}
		if !errors.Is(err, audio.ErrNotSeekable) {
			return err
		}
	}

	_ = s.dec.Close()
	dec, err := s.reg.Open(s.path)
	if err != nil {
		return err
	}
	s.dec = dec
	s.posFrame = 0

	for s.posFrame < frame {
		want := int(min(int64(len(s.chunk)/s.ch), frame-s.posFrame)) * s.ch
		n, err := s.dec.ReadSamples(s.chunk[:want])
		s.posFrame += int64(n / s.ch)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil && !errors.Is(err, audio.ErrWouldBlock) {
			return err
		}
		if n == 0 && s.quit.Load() {
			return nil
		}
	}
	return nil
}

// ringReader is the render-thread view of the ring as an audio.Source.
type ringReader struct {
	s        *streamedSource
	buf      []byte
	consumed int64
}

func (r *ringReader) SampleRate() int { return r.s.rate }
func (r *ringReader) Channels() int   { return r.s.ch }
func (r *ringReader) BufSize() int    { return len(r.buf) / bytesPerSample }
func (r *ringReader) Close() error    { return nil }

// ReadSamples never blocks: an empty or contended ring is ErrWouldBlock,
// an empty ring after the worker finished is the end of the stream.
func (r *ringReader) ReadSamples(dst []float32) (int, error) {
	want := min(len(dst)*bytesPerSample, len(r.buf))
	want -= want % r.s.frameBytes
	if want == 0 {
		return 0, audio.ErrInvalidDstSize
	}

	finished := r.s.finished.Load()
	n, err := r.s.ring.TryRead(r.buf[:want])
	if n == 0 {
		if finished && errors.Is(err, ringbuffer.ErrIsEmpty) {
			if fb := r.s.failed.Load(); fb != nil {
				return 0, fb.err
			}
			return 0, io.EOF
		}
		return 0, audio.ErrWouldBlock
	}

	samples := n / bytesPerSample
	for i := range samples {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(r.buf[i*bytesPerSample:]))
	}
	r.consumed += int64(samples / r.s.ch)
	return samples, nil
}
