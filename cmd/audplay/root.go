// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/internal/logging"
	"github.com/ik5/audplay/output"
	"github.com/ik5/audplay/player"
)

type cli struct {
	v           *viper.Viper
	cfgFile     string
	verbose     bool
	metricsAddr string

	cfg *audplay.Config
	log *slog.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "audplay",
		Short: "Real-time audio playback",
		Long: `audplay mixes audio files and synthesized tones into an output device.

Files are decoded ahead of time or streamed, and every source can be looped,
sped up or down and faded. The render command writes the mix to a WAV file
instead of a device.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default is ./audplay.yaml)")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&c.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	pf.String("backend", audplay.BackendOto, "output backend (oto, malgo, null)")
	pf.StringP("device", "d", "", "output device name, malgo only")
	pf.Int("sample-rate", output.DefaultSampleRate, "output sample rate")
	pf.Int("channels", output.DefaultChannels, "output channels")
	pf.Int("period", output.DefaultPeriodFrames, "frames per device period")
	pf.String("sample-format", "f32", "device sample format (f32, s16)")
	pf.Duration("fade", player.DefaultFadeDuration, "fade-out applied on stop and at the end of a source")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")

	for key, name := range map[string]string{
		"output.backend":       "backend",
		"output.device":        "device",
		"output.sample_rate":   "sample-rate",
		"output.channels":      "channels",
		"output.period_frames": "period",
		"output.sample_format": "sample-format",
		"player.fade_duration": "fade",
		"logging.level":        "log-level",
		"logging.format":       "log-format",
	} {
		cobra.CheckErr(c.v.BindPFlag(key, pf.Lookup(name)))
	}

	root.AddCommand(
		c.playCommand(),
		c.toneCommand(),
		c.renderCommand(),
		c.devicesCommand(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	}
	if c.verbose {
		c.v.Set("logging.level", "debug")
	}

	cfg, err := audplay.LoadConfig(c.v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	log, err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	c.cfg = cfg
	c.log = log
	return nil
}

// openPlayer opens the configured device with events pushed to the returned
// channel. The cleanup func closes the player and the metrics server.
func (c *cli) openPlayer(ctx context.Context) (*player.Player, <-chan player.Event, func(), error) {
	events := make(chan player.Event, 64)
	p, err := audplay.Open(*c.cfg, player.WithLogger(c.log), player.WithStatusChannel(events))
	if err != nil {
		return nil, nil, nil, err
	}

	stopMetrics := func() {}
	if c.metricsAddr != "" {
		stopMetrics, err = serveMetrics(ctx, c.metricsAddr, p, c.log)
		if err != nil {
			_ = p.Close()
			return nil, nil, nil, err
		}
	}

	cleanup := func() {
		stopMetrics()
		if err := p.Close(); err != nil {
			c.log.Warn("closing player", "error", err)
		}
	}
	return p, events, cleanup, nil
}

// waitStopped consumes events until every id has stopped. On cancellation
// it stops all sources and waits one fade for their Stopped events.
func (c *cli) waitStopped(ctx context.Context, p *player.Player, events <-chan player.Event, ids []player.SourceID) error {
	pending := make(map[player.SourceID]bool, len(ids))
	for _, id := range ids {
		pending[id] = true
	}

	var firstErr error
	handle := func(ev player.Event) {
		switch ev.Kind {
		case player.EventPosition:
			c.log.Debug("position", "id", ev.ID, "path", ev.Path, "pos", ev.Position)
		case player.EventStopped:
			delete(pending, ev.ID)
			if ev.Err != nil {
				c.log.Error("source failed", "id", ev.ID, "path", ev.Path, "error", ev.Err)
				if firstErr == nil {
					firstErr = ev.Err
				}
				return
			}
			c.log.Info("source stopped", "id", ev.ID, "path", ev.Path, "exhausted", ev.Exhausted)
		case player.EventDeviceError:
			c.log.Warn("device error", "error", ev.Err)
		}
	}

	for len(pending) > 0 {
		select {
		case ev := <-events:
			handle(ev)
		case <-ctx.Done():
			c.log.Info("interrupted, stopping playback")
			if err := p.StopAllPlayingSources(); err != nil {
				return err
			}
			deadline := time.After(c.cfg.Player.FadeDuration + time.Second)
			for len(pending) > 0 {
				select {
				case ev := <-events:
					handle(ev)
				case <-deadline:
					return ctx.Err()
				}
			}
			return ctx.Err()
		}
	}
	return firstErr
}
