// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/spf13/cobra"

	"github.com/ik5/audplay/player"
)

func (c *cli) toneCommand() *cobra.Command {
	var (
		freq     float64
		duration time.Duration
		volumeDB float32
	)

	cmd := &cobra.Command{
		Use:   "tone",
		Short: "Play a sine tone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, events, cleanup, err := c.openPlayer(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			gen, err := toneGenerator(p.OutputFormat().SampleRate, freq, duration)
			if err != nil {
				return err
			}
			id, err := p.PlaySynthWithOptions(gen, fmt.Sprintf("sine %gHz", freq), player.SynthPlaybackOptions{VolumeDB: volumeDB})
			if err != nil {
				return err
			}
			return c.waitStopped(cmd.Context(), p, events, []player.SourceID{id})
		},
	}

	cmd.Flags().Float64Var(&freq, "freq", 440, "frequency in Hz")
	cmd.Flags().DurationVar(&duration, "duration", time.Second, "tone length, 0 plays until interrupted")
	cmd.Flags().Float32Var(&volumeDB, "volume-db", -6, "gain in dB")
	return cmd
}

// toneGenerator builds a beep sine tone at the device rate.
func toneGenerator(rate int, freq float64, d time.Duration) (*player.BeepGenerator, error) {
	sr := beep.SampleRate(rate)
	tone, err := generators.SineTone(sr, freq)
	if err != nil {
		return nil, fmt.Errorf("sine tone: %w", err)
	}
	s := tone
	if d > 0 {
		s = beep.Take(sr.N(d), tone)
	}
	return player.NewBeepGenerator(s, sr, 0), nil
}
