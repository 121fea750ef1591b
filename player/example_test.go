// SPDX-License-Identifier: EPL-2.0

package player_test

import (
	"fmt"
	"time"

	"github.com/ik5/audplay/internal/logging"
	"github.com/ik5/audplay/output"
	"github.com/ik5/audplay/player"
)

func ExamplePlayer_PlaySynth() {
	dev, err := output.NewManualDevice(output.Config{SampleRate: 8000, Channels: 1, PeriodFrames: 80})
	if err != nil {
		fmt.Println(err)
		return
	}
	p, err := player.New(dev, player.WithLogger(logging.Discard()))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer p.Close()

	id, err := p.PlaySynth(player.NewSineGenerator(8000, 400, 0.5, 50*time.Millisecond), "beep")
	if err != nil {
		fmt.Println(err)
		return
	}

	// 50 ms of tone plus the 30 ms fade fit well inside 20 periods of 10 ms.
	for range 20 {
		dev.Tick()
		p.PollEvents(func(ev player.Event) {
			if ev.Kind == player.EventStopped {
				fmt.Println(ev.ID == id, ev.Exhausted)
			}
		})
	}
	// Output: true true
}
