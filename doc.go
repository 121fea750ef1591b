// SPDX-License-Identifier: EPL-2.0

// Package audplay is a real-time audio playback engine for Go programs.
//
// A Player mixes any number of sources into one output device. Sources are
// decoded files, either preloaded into memory or streamed through a
// decode-ahead ring, or synthesized audio from a Generator. Each source can be
// stopped, seeked and replaced by id, and reports its progress through
// events.
//
// # Quick Start
//
//	cfg := audplay.DefaultConfig()
//	p, err := audplay.Open(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer p.Close()
//
//	id, err := p.PlayFile("intro.ogg")
//	...
//	p.PollEvents(func(ev player.Event) {
//		if ev.Kind == player.EventStopped && ev.ID == id {
//			// done
//		}
//	})
//
// # Configuration
//
// Config is loaded with LoadConfig from an optional audplay.yaml and
// AUDPLAY_* environment variables:
//
//	output:
//	  backend: oto        # oto, malgo, null or wav
//	  device: ""          # malgo device name, empty for the default
//	  sample_rate: 48000
//	  channels: 2
//	  period_frames: 512
//	  sample_format: f32  # f32 or s16
//	player:
//	  fade_duration: 30ms
//	  position_interval: 500ms
//	  cache_ttl: 5m
//	logging:
//	  level: info
//	  format: text
//
// # Packages
//
//   - audio: sources, decoders, resampling, channel mapping and fades
//   - formats: WAV, MP3, Ogg Vorbis and AIFF decoders
//   - output: devices, the process-wide device session and test devices
//   - output/otosink, output/malgosink: hardware backends
//   - player: the mixer, sources and the control API
package audplay
