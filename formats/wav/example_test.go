// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"fmt"
	"io"
	"os"

	"github.com/ik5/audplay/formats/wav"
)

// Example_roundTrip writes a short stereo file and decodes it again.
func Example_roundTrip() {
	f, err := os.CreateTemp("", "example-*.wav")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.Remove(f.Name())
	defer f.Close()

	samples := []int16{100, -100, 200, -200, 300, -300}
	if err := wav.WriteWAV16(f, 16000, 2, samples); err != nil {
		fmt.Printf("Write error: %v\n", err)
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		fmt.Println(err)
		return
	}

	source, err := wav.Decoder{}.Decode(f)
	if err != nil {
		fmt.Printf("Decode error: %v\n", err)
		return
	}

	buf := make([]float32, 16)
	n, _ := source.ReadSamples(buf)
	fmt.Printf("Sample rate: %d Hz\n", source.SampleRate())
	fmt.Printf("Channels: %d\n", source.Channels())
	fmt.Printf("Read %d samples\n", n)
	// Output:
	// Sample rate: 16000 Hz
	// Channels: 2
	// Read 6 samples
}
