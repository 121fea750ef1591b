// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audplay/audio"
)

func ExampleNewResamplerWithSpeed() {
	buf := &audio.Buffer{
		Samples:    make([]float32, 22050), // half a second of mono silence
		SampleRate: 44100,
		Channels:   1,
	}

	// Play twice as fast while converting to 48 kHz stereo.
	rs := audio.NewResamplerWithSpeed(audio.NewBufferReader(buf, 0), 48000, 2)
	out := audio.NewChannelMapper(rs, 2, 512)

	frames := 0
	chunk := make([]float32, 1024)
	for {
		n, err := out.ReadSamples(chunk)
		frames += n / 2
		if errors.Is(err, io.EOF) {
			break
		}
	}

	fmt.Println(frames > 11900 && frames < 12100)
	// Output: true
}

func ExampleDbToLinear() {
	fmt.Printf("%.3f %.3f %.0f\n", audio.DbToLinear(0), audio.DbToLinear(-6), audio.DbToLinear(-200))
	// Output: 1.000 0.501 0
}
