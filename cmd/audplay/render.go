// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/audplay"
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/output"
	"github.com/ik5/audplay/player"
)

func (c *cli) renderCommand() *cobra.Command {
	var (
		ff     fileFlags
		out    string
		maxLen time.Duration
	)

	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Mix audio files into a WAV file",
		Long: `Mix audio files into a 16-bit WAV file as fast as possible. Sources are
always preloaded; looping forever is cut off at --max.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			ff.stream = false
			opts, err := ff.options()
			if err != nil {
				return err
			}

			cfg := *c.cfg
			cfg.Output.Backend = audplay.BackendWAV
			cfg.Output.Path = out
			frames, err := c.render(cfg, args, opts, maxLen)
			if err != nil {
				return err
			}

			rate := cfg.Output.SampleRate
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames (%s) to %s\n",
				frames, time.Duration(frames)*time.Second/time.Duration(rate), out)
			return nil
		},
	}

	ff.register(cmd.Flags())
	cmd.Flags().Lookup("stream").Hidden = true
	cmd.Flags().StringVarP(&out, "out", "o", "", "output WAV file")
	cmd.Flags().DurationVar(&maxLen, "max", 10*time.Minute, "longest mix to write")
	return cmd
}

// render ticks a WAV device until every source has stopped or maxLen of
// audio has been written.
func (c *cli) render(cfg audplay.Config, paths []string, opts player.FilePlaybackOptions, maxLen time.Duration) (int64, error) {
	dev, err := audplay.OpenDevice(cfg)
	if err != nil {
		return 0, err
	}
	wd, ok := dev.(*output.WAVFileDevice)
	if !ok {
		_ = dev.Close()
		return 0, fmt.Errorf("render: unexpected device %s", dev.Name())
	}

	p, err := player.New(wd, append(cfg.PlayerOptions(), player.WithLogger(c.log))...)
	if err != nil {
		_ = wd.Close()
		return 0, err
	}

	frames, err := c.renderLoop(p, wd, paths, opts, maxLen)
	if cerr := p.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return frames, err
}

func (c *cli) renderLoop(p *player.Player, wd *output.WAVFileDevice, paths []string, opts player.FilePlaybackOptions, maxLen time.Duration) (int64, error) {
	pending := make(map[player.SourceID]bool, len(paths))
	for _, path := range paths {
		id, err := p.PlayFileWithOptions(path, opts)
		if err != nil {
			return 0, fmt.Errorf("rendering %s: %w", path, err)
		}
		pending[id] = true
	}

	limit := audio.DurationToFrames(maxLen, p.OutputFormat().SampleRate)
	var failed error
	for len(pending) > 0 {
		if limit > 0 && wd.Frames() >= limit {
			c.log.Warn("mix cut off", "max", maxLen)
			break
		}
		if _, err := wd.Tick(); err != nil {
			return wd.Frames(), err
		}
		p.PollEvents(func(ev player.Event) {
			if ev.Kind != player.EventStopped {
				return
			}
			delete(pending, ev.ID)
			if ev.Err != nil && failed == nil {
				failed = fmt.Errorf("%s: %w", ev.Path, ev.Err)
			}
		})
	}
	return wd.Frames(), failed
}
