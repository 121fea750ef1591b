// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMapper converts a source to a different channel count:
// mono is duplicated into every output channel, multi-channel input mixed to
// mono is averaged, and any other M to K mapping keeps the first K channels,
// filling channels the input lacks with silence.
//
// The scratch buffer is sized once, so steady-state reads do not allocate.
type ChannelMapper struct {
	src Source
	out int
	tmp []float32
}

// NewChannelMapper maps src to outChannels. maxFrames bounds the frames
// converted per inner read; larger requests are served in chunks.
func NewChannelMapper(src Source, outChannels, maxFrames int) *ChannelMapper {
	if maxFrames <= 0 {
		maxFrames = 1024
	}
	m := &ChannelMapper{src: src, out: outChannels}
	if src.Channels() != outChannels {
		m.tmp = make([]float32, maxFrames*src.Channels())
	}
	return m
}

func (m *ChannelMapper) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMapper) Channels() int   { return m.out }
func (m *ChannelMapper) BufSize() int    { return m.src.BufSize() }
func (m *ChannelMapper) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *ChannelMapper) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.out != 0 {
		return 0, ErrInvalidDstSize
	}
	in := m.src.Channels()
	if in == m.out {
		return m.src.ReadSamples(dst)
	}

	framesNeeded := len(dst) / m.out
	chunk := len(m.tmp) / in
	done := 0

	for done < framesNeeded {
		want := min(chunk, framesNeeded-done)
		n, err := m.src.ReadSamples(m.tmp[:want*in])
		frames := n / in
		MapChannels(dst[done*m.out:], m.tmp[:frames*in], in, m.out)
		done += frames

		if err != nil {
			return done * m.out, err
		}
		if frames < want {
			break
		}
	}

	return done * m.out, nil
}

// MapChannels converts the interleaved frames in src from in to out
// channels, writing len(src)/in frames to dst.
func MapChannels(dst, src []float32, in, out int) {
	frames := len(src) / in

	switch {
	case in == out:
		copy(dst, src[:frames*in])
	case in == 1:
		for f := range frames {
			v := src[f]
			row := dst[f*out : (f+1)*out]
			for c := range row {
				row[c] = v
			}
		}
	case out == 1:
		inv := float32(1.0) / float32(in)
		if in == 2 {
			for f := range frames {
				dst[f] = (src[2*f] + src[2*f+1]) * 0.5
			}
			return
		}
		for f := range frames {
			var sum float32
			for _, v := range src[f*in : (f+1)*in] {
				sum += v
			}
			dst[f] = sum * inv
		}
	default:
		for f := range frames {
			row := dst[f*out : (f+1)*out]
			frame := src[f*in : (f+1)*in]
			for c := range row {
				if c < in {
					row[c] = frame[c]
				} else {
					row[c] = 0
				}
			}
		}
	}
}
