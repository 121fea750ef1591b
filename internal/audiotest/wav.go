// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"math"
)

// WAV16 builds a canonical 16-bit PCM WAV file. extraChunk, when non-empty,
// is inserted as a "LIST" chunk between "fmt " and "data".
func WAV16(sampleRate, channels int, samples []int16, extraChunk []byte) []byte {
	dataSize := len(samples) * 2
	extra := 0
	if len(extraChunk) > 0 {
		extra = 8 + len(extraChunk) + len(extraChunk)%2
	}

	out := make([]byte, 0, 44+extra+dataSize)
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(36+extra+dataSize))
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, 1)
	out = binary.LittleEndian.AppendUint16(out, uint16(channels))
	out = binary.LittleEndian.AppendUint32(out, uint32(sampleRate))
	out = binary.LittleEndian.AppendUint32(out, uint32(sampleRate*channels*2))
	out = binary.LittleEndian.AppendUint16(out, uint16(channels*2))
	out = binary.LittleEndian.AppendUint16(out, 16)

	if len(extraChunk) > 0 {
		out = append(out, "LIST"...)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(extraChunk)))
		out = append(out, extraChunk...)
		if len(extraChunk)%2 == 1 {
			out = append(out, 0)
		}
	}

	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(dataSize))
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint16(out, uint16(s))
	}
	return out
}

// SineInt16 returns frames*channels interleaved samples of a sine at the
// given amplitude, identical on every channel.
func SineInt16(sampleRate, channels, frames int, frequency float64, amplitude float64) []int16 {
	out := make([]int16, frames*channels)
	for i := range frames {
		v := int16(amplitude * 32767 * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate)))
		for c := range channels {
			out[i*channels+c] = v
		}
	}
	return out
}

// RampInt16 returns frames*channels samples where frame i holds i.
func RampInt16(channels, frames int) []int16 {
	out := make([]int16, frames*channels)
	for i := range frames {
		for c := range channels {
			out[i*channels+c] = int16(i)
		}
	}
	return out
}
