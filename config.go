// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ik5/audplay/internal/logging"
	"github.com/ik5/audplay/output"
	"github.com/ik5/audplay/player"
)

// Output backends accepted in OutputConfig.Backend.
const (
	BackendOto   = "oto"
	BackendMalgo = "malgo"
	BackendNull  = "null"
	BackendWAV   = "wav"
)

// Config holds everything needed to open a device and build a player.
type Config struct {
	Output  OutputConfig  `mapstructure:"output"`
	Player  PlayerConfig  `mapstructure:"player"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// OutputConfig selects and configures the output device.
type OutputConfig struct {
	Backend string `mapstructure:"backend"`
	// Device is a backend specific device name. Empty selects the default.
	Device       string `mapstructure:"device"`
	Path         string `mapstructure:"path"` // wav backend only
	SampleRate   int    `mapstructure:"sample_rate"`
	Channels     int    `mapstructure:"channels"`
	PeriodFrames int    `mapstructure:"period_frames"`
	SampleFormat string `mapstructure:"sample_format"`
}

// PlayerConfig mirrors the player's functional options.
type PlayerConfig struct {
	CommandCapacity  int           `mapstructure:"command_capacity"`
	EventCapacity    int           `mapstructure:"event_capacity"`
	MaxSources       int           `mapstructure:"max_sources"`
	FadeDuration     time.Duration `mapstructure:"fade_duration"`
	PositionInterval time.Duration `mapstructure:"position_interval"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	StreamBuffer     time.Duration `mapstructure:"stream_buffer"`
	PrepareTimeout   time.Duration `mapstructure:"prepare_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

// DefaultConfig plays through oto at 48 kHz stereo.
func DefaultConfig() Config {
	return Config{
		Output: OutputConfig{
			Backend:      BackendOto,
			SampleRate:   output.DefaultSampleRate,
			Channels:     output.DefaultChannels,
			PeriodFrames: output.DefaultPeriodFrames,
			SampleFormat: output.Float32.String(),
		},
		Player: PlayerConfig{
			CommandCapacity:  player.DefaultCommandCapacity,
			EventCapacity:    player.DefaultEventCapacity,
			MaxSources:       player.DefaultMaxSources,
			FadeDuration:     player.DefaultFadeDuration,
			PositionInterval: player.DefaultPositionInterval,
			CacheTTL:         player.DefaultPreloadCacheTTL,
			StreamBuffer:     player.DefaultStreamBuffer,
			PrepareTimeout:   player.DefaultPrepareTimeout,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads audplay.yaml from the working directory or
// $HOME/.config/audplay when present, then AUDPLAY_* environment variables
// (AUDPLAY_OUTPUT_BACKEND and so on). A nil v uses a fresh viper instance.
// A config file set with v.SetConfigFile must exist.
func LoadConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v, DefaultConfig())

	v.SetConfigName("audplay")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/audplay")

	v.SetEnvPrefix("AUDPLAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Debug("no config file found, using defaults and environment")
	} else {
		slog.Debug("using config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("output.backend", d.Output.Backend)
	v.SetDefault("output.device", d.Output.Device)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.sample_rate", d.Output.SampleRate)
	v.SetDefault("output.channels", d.Output.Channels)
	v.SetDefault("output.period_frames", d.Output.PeriodFrames)
	v.SetDefault("output.sample_format", d.Output.SampleFormat)

	v.SetDefault("player.command_capacity", d.Player.CommandCapacity)
	v.SetDefault("player.event_capacity", d.Player.EventCapacity)
	v.SetDefault("player.max_sources", d.Player.MaxSources)
	v.SetDefault("player.fade_duration", d.Player.FadeDuration)
	v.SetDefault("player.position_interval", d.Player.PositionInterval)
	v.SetDefault("player.cache_ttl", d.Player.CacheTTL)
	v.SetDefault("player.stream_buffer", d.Player.StreamBuffer)
	v.SetDefault("player.prepare_timeout", d.Player.PrepareTimeout)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Validate checks the fields that would otherwise fail late, at device open
// or player construction.
func (c *Config) Validate() error {
	switch c.Output.Backend {
	case BackendOto, BackendMalgo, BackendNull:
	case BackendWAV:
		if c.Output.Path == "" {
			return &ConfigError{Field: "output.path", Message: "required by the wav backend"}
		}
	default:
		return &ConfigError{Field: "output.backend", Message: fmt.Sprintf("unknown backend %q", c.Output.Backend)}
	}

	if _, err := output.ParseSampleFormat(c.Output.SampleFormat); err != nil {
		return &ConfigError{Field: "output.sample_format", Message: err.Error()}
	}
	oc, err := c.outputConfig()
	if err != nil {
		return err
	}
	if _, err := oc.Format(); err != nil {
		return &ConfigError{Field: "output", Message: err.Error()}
	}

	if c.Player.MaxSources < 0 {
		return &ConfigError{Field: "player.max_sources", Message: "must not be negative"}
	}
	for field, d := range map[string]time.Duration{
		"player.fade_duration":     c.Player.FadeDuration,
		"player.position_interval": c.Player.PositionInterval,
		"player.cache_ttl":         c.Player.CacheTTL,
		"player.stream_buffer":     c.Player.StreamBuffer,
		"player.prepare_timeout":   c.Player.PrepareTimeout,
	} {
		if d < 0 {
			return &ConfigError{Field: field, Message: "must not be negative"}
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return &ConfigError{Field: "logging.level", Message: err.Error()}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	return nil
}

func (c *Config) outputConfig() (output.Config, error) {
	sf, err := output.ParseSampleFormat(c.Output.SampleFormat)
	if err != nil {
		return output.Config{}, err
	}
	return output.Config{
		Name:         c.Output.Device,
		SampleRate:   c.Output.SampleRate,
		Channels:     c.Output.Channels,
		PeriodFrames: c.Output.PeriodFrames,
		Sample:       sf,
	}, nil
}

// PlayerOptions turns the player section into player options. Zero values
// keep the player defaults, except PositionInterval and CacheTTL where zero
// disables the feature.
func (c *Config) PlayerOptions() []player.Option {
	pc := c.Player
	return []player.Option{
		player.WithCommandCapacity(pc.CommandCapacity),
		player.WithEventCapacity(pc.EventCapacity),
		player.WithMaxSources(pc.MaxSources),
		player.WithFadeDuration(pc.FadeDuration),
		player.WithPositionInterval(pc.PositionInterval),
		player.WithPreloadCacheTTL(pc.CacheTTL),
		player.WithStreamBuffer(pc.StreamBuffer),
		player.WithPrepareTimeout(pc.PrepareTimeout),
	}
}
