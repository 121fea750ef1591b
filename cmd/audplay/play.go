// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ik5/audplay/player"
)

type fileFlags struct {
	stream   bool
	volumeDB float32
	speed    float64
	repeat   int
	start    time.Duration
	fadeIn   time.Duration
	interval time.Duration
}

func (f *fileFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.stream, "stream", false, "decode ahead while playing instead of preloading")
	fs.Float32Var(&f.volumeDB, "volume-db", 0, "gain in dB")
	fs.Float64Var(&f.speed, "speed", 1, "playback speed, also shifts pitch")
	fs.IntVar(&f.repeat, "repeat", 0, "extra passes after the first, -1 loops until interrupted")
	fs.DurationVar(&f.start, "start", 0, "start offset")
	fs.DurationVar(&f.fadeIn, "fade-in", 0, "fade-in duration")
	fs.DurationVar(&f.interval, "interval", 0, "position report interval, 0 uses the player default")
}

func (f *fileFlags) options() (player.FilePlaybackOptions, error) {
	opts := player.FilePlaybackOptions{
		VolumeDB:         f.volumeDB,
		Speed:            f.speed,
		Repeat:           f.repeat,
		StartPosition:    f.start,
		FadeIn:           f.fadeIn,
		PositionInterval: f.interval,
	}
	if f.stream {
		opts.Mode = player.Streamed
	}
	if f.repeat == -1 {
		opts.Repeat = player.RepeatForever
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (c *cli) playCommand() *cobra.Command {
	var ff fileFlags

	cmd := &cobra.Command{
		Use:   "play FILE...",
		Short: "Play audio files",
		Long:  "Play one or more audio files at once and wait until they all finish.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ff.options()
			if err != nil {
				return err
			}

			p, events, cleanup, err := c.openPlayer(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			ids := make([]player.SourceID, 0, len(args))
			for _, path := range args {
				id, err := p.PlayFileWithOptions(path, opts)
				if err != nil {
					return fmt.Errorf("playing %s: %w", path, err)
				}
				c.log.Info("playing", "id", id, "path", path, "mode", opts.Mode.String())
				ids = append(ids, id)
			}
			return c.waitStopped(cmd.Context(), p, events, ids)
		},
	}

	ff.register(cmd.Flags())
	return cmd
}
