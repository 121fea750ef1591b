// SPDX-License-Identifier: EPL-2.0

// Package formats wires every bundled decoder into an audio.Registry.
package formats

import (
	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/aiff"
	"github.com/ik5/audplay/formats/mp3"
	"github.com/ik5/audplay/formats/vorbis"
	"github.com/ik5/audplay/formats/wav"
)

// Extensions maps each supported file extension to its decoder.
var Extensions = map[string]audio.Decoder{
	"wav":  wav.Decoder{},
	"wave": wav.Decoder{},
	"mp3":  mp3.Decoder{},
	"ogg":  vorbis.Decoder{},
	"oga":  vorbis.Decoder{},
	"aif":  aiff.Decoder{},
	"aiff": aiff.Decoder{},
}

// Register adds all bundled decoders to r.
func Register(r *audio.Registry) {
	for ext, dec := range Extensions {
		r.Register(ext, dec)
	}
}

// NewRegistry returns a registry reading from the host file system with all
// bundled decoders registered.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	Register(r)
	return r
}
