// SPDX-License-Identifier: EPL-2.0

package player

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ik5/audplay/audio"
)

// PlaybackMode selects how a file source is fed.
type PlaybackMode uint8

const (
	// Preloaded decodes the whole file before playback starts.
	Preloaded PlaybackMode = iota
	// Streamed decodes ahead on a worker goroutine.
	Streamed
)

func (m PlaybackMode) String() string {
	switch m {
	case Preloaded:
		return "preloaded"
	case Streamed:
		return "streamed"
	default:
		return fmt.Sprintf("PlaybackMode(%d)", uint8(m))
	}
}

// RepeatForever loops a file until it is stopped.
const RepeatForever = audio.RepeatForever

// FilePlaybackOptions tune one file source. The zero value plays the file
// once, preloaded, at unity gain and normal speed.
type FilePlaybackOptions struct {
	Mode PlaybackMode
	// VolumeDB is the gain in decibels; 0 is unity.
	VolumeDB float32
	// Speed scales playback rate and pitch. Zero means 1.
	Speed float64
	// Repeat is the number of extra passes, or RepeatForever.
	Repeat int
	// StartPosition is where the first pass starts.
	StartPosition time.Duration
	// FadeIn ramps the source in from silence.
	FadeIn time.Duration
	// PositionInterval overrides the player's position event interval.
	// Zero keeps the player default.
	PositionInterval time.Duration
}

// DefaultFilePlaybackOptions returns the options PlayFile uses.
func DefaultFilePlaybackOptions() FilePlaybackOptions {
	return FilePlaybackOptions{Mode: Preloaded, Speed: 1}
}

func (o FilePlaybackOptions) Validate() error {
	switch {
	case o.Mode != Preloaded && o.Mode != Streamed:
		return fmt.Errorf("%w: mode %v", ErrInvalidOptions, o.Mode)
	case !finite(float64(o.VolumeDB)):
		return fmt.Errorf("%w: volume %v dB", ErrInvalidOptions, o.VolumeDB)
	case o.Speed < 0 || !finite(o.Speed):
		return fmt.Errorf("%w: speed %v", ErrInvalidOptions, o.Speed)
	case o.Repeat < 0:
		return fmt.Errorf("%w: repeat %d", ErrInvalidOptions, o.Repeat)
	case o.StartPosition < 0:
		return fmt.Errorf("%w: start position %v", ErrInvalidOptions, o.StartPosition)
	case o.FadeIn < 0:
		return fmt.Errorf("%w: fade in %v", ErrInvalidOptions, o.FadeIn)
	case o.PositionInterval < 0:
		return fmt.Errorf("%w: position interval %v", ErrInvalidOptions, o.PositionInterval)
	}
	return nil
}

func (o FilePlaybackOptions) speed() float64 {
	if o.Speed == 0 {
		return 1
	}
	return o.Speed
}

// SynthPlaybackOptions tune one synth source.
type SynthPlaybackOptions struct {
	VolumeDB         float32
	FadeIn           time.Duration
	PositionInterval time.Duration
}

func (o SynthPlaybackOptions) Validate() error {
	switch {
	case !finite(float64(o.VolumeDB)):
		return fmt.Errorf("%w: volume %v dB", ErrInvalidOptions, o.VolumeDB)
	case o.FadeIn < 0:
		return fmt.Errorf("%w: fade in %v", ErrInvalidOptions, o.FadeIn)
	case o.PositionInterval < 0:
		return fmt.Errorf("%w: position interval %v", ErrInvalidOptions, o.PositionInterval)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

const (
	DefaultCommandCapacity  = 256
	DefaultEventCapacity    = 1024
	DefaultMaxSources       = 64
	DefaultFadeDuration     = 30 * time.Millisecond
	DefaultPositionInterval = 500 * time.Millisecond
	DefaultPreloadCacheTTL  = 5 * time.Minute
	DefaultStreamBuffer     = 500 * time.Millisecond
	DefaultPrepareTimeout   = 5 * time.Second
	defaultReapInterval     = 10 * time.Millisecond
	defaultCacheSweepTicks  = 500
)

type config struct {
	commandCapacity  int
	eventCapacity    int
	maxSources       int
	fadeDuration     time.Duration
	positionInterval time.Duration
	cacheTTL         time.Duration
	streamBuffer     time.Duration
	prepareTimeout   time.Duration
	logger           *slog.Logger
	status           chan<- Event
	registry         *audio.Registry
}

func defaultConfig() config {
	return config{
		commandCapacity:  DefaultCommandCapacity,
		eventCapacity:    DefaultEventCapacity,
		maxSources:       DefaultMaxSources,
		fadeDuration:     DefaultFadeDuration,
		positionInterval: DefaultPositionInterval,
		cacheTTL:         DefaultPreloadCacheTTL,
		streamBuffer:     DefaultStreamBuffer,
		prepareTimeout:   DefaultPrepareTimeout,
	}
}

// Option configures a Player.
type Option func(*config)

// WithCommandCapacity sizes the command queue. It is rounded up to a power
// of two.
func WithCommandCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.commandCapacity = n
		}
	}
}

// WithEventCapacity sizes the event queue. It is rounded up to a power of
// two.
func WithEventCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.eventCapacity = n
		}
	}
}

// WithMaxSources bounds how many sources play at once.
func WithMaxSources(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxSources = n
		}
	}
}

// WithFadeDuration sets the fade-out applied on stop, replacement and
// natural end. It is the same for every source of the player.
func WithFadeDuration(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.fadeDuration = d
		}
	}
}

// WithPositionInterval sets how much audio plays between position events.
// Zero disables them unless a source asks for its own interval.
func WithPositionInterval(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.positionInterval = d
		}
	}
}

// WithPreloadCacheTTL sets how long decoded files are kept for reuse. Zero
// disables the cache.
func WithPreloadCacheTTL(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.cacheTTL = d
		}
	}
}

// WithStreamBuffer sets how much audio streamed sources decode ahead.
func WithStreamBuffer(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.streamBuffer = d
		}
	}
}

// WithPrepareTimeout bounds how long a streamed source may take to buffer
// its first chunk.
func WithPrepareTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.prepareTimeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithStatusChannel pushes every event to ch from a pump goroutine instead
// of leaving them for PollEvents. The pump blocks on a full channel; events
// then back up in the event queue.
func WithStatusChannel(ch chan<- Event) Option {
	return func(c *config) { c.status = ch }
}

// WithRegistry sets the decoder registry used to open files.
func WithRegistry(r *audio.Registry) Option {
	return func(c *config) { c.registry = r }
}
