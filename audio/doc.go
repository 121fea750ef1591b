// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming building blocks used by the player.
//
// Everything is expressed as a Source: a pull-based stream of interleaved
// float32 samples in [-1, 1]. Stages wrap each other to form a pipeline:
//
//	buf, _ := audio.DecodeAll(decoded)           // preload into memory
//	r := audio.NewBufferReader(buf, 2)           // three passes
//	rs := audio.NewResamplerWithSpeed(r, 48000, 1.5)
//	out := audio.NewChannelMapper(rs, 2, 512)
//
// # Resampling
//
// Resampler converts the sample rate with Catmull-Rom interpolation and
// folds playback speed into the same ratio, so speeding up is just reading
// the input faster. Its window survives short reads; Reset clears it after
// a seek. A source already at the target rate passes through unchanged.
//
// # Channel mapping
//
// ChannelMapper duplicates mono, averages down to mono, and otherwise keeps
// the first channels, padding missing ones with silence.
//
// # Gain
//
// Fader produces per-frame linear ramps for fade in and the declick fade
// out applied when a source is stopped. DbToLinear and LinearToDb convert
// volumes, SpeedFromNote and PitchFromNote map MIDI notes.
//
// # Format registry
//
// Registry maps extensions to decoders and opens files through a
// golang.org/x/tools/godoc/vfs file system:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	src, err := registry.Open("clip.wav")
//
// # Live sources
//
// A source fed by a background producer may return ErrWouldBlock when it has
// nothing buffered. Every stage passes that through without losing state.
package audio
