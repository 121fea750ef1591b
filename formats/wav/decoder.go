// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/utils"
)

// maxSkippedChunks bounds how many non-audio chunks are skipped before
// "data" must appear.
const maxSkippedChunks = 64

type wavSource struct {
	r          io.Reader
	sampleRate int
	channels   int
	// dataStart is the byte offset of the first sample when r is seekable.
	dataStart int64
	// dataLen is the size of the data chunk in bytes.
	dataLen int64
	// consumed counts data bytes read so far.
	consumed int64
	buf      []byte
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) BufSize() int    { return len(s.buf) / 2 }
func (s *wavSource) Close() error    { return nil }

// Frames returns the number of frames in the data chunk.
func (s *wavSource) Frames() int64 { return s.dataLen / int64(2*s.channels) }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	remaining := s.dataLen - s.consumed
	if remaining <= 0 {
		return 0, io.EOF
	}

	want := int64(len(dst) * 2)
	if want > remaining {
		want = remaining
	}
	if int64(len(s.buf)) < want {
		s.buf = make([]byte, want)
	}

	n, err := io.ReadFull(s.r, s.buf[:want])
	if err != nil {
		// Never hand out a partial frame from a truncated file.
		n -= n % (2 * s.channels)
	}
	n -= n % 2
	s.consumed += int64(n)

	samples := n / 2
	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(s.buf[2*i:])))
	}

	switch {
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		// Truncated file: stop at what is there.
		s.dataLen = s.consumed
		if samples == 0 {
			return 0, io.EOF
		}
		return samples, io.EOF
	case err != nil:
		return samples, fmt.Errorf("%w", err)
	}

	if s.consumed >= s.dataLen {
		return samples, io.EOF
	}
	return samples, nil
}

// SeekFrame repositions within the data chunk. It needs the reader passed to
// Decode to implement io.Seeker.
func (s *wavSource) SeekFrame(frame int64) error {
	seeker, ok := s.r.(io.Seeker)
	if !ok {
		return audio.ErrNotSeekable
	}

	frame = max(0, min(frame, s.Frames()))
	offset := frame * int64(2*s.channels)
	if _, err := seeker.Seek(s.dataStart+offset, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to frame %d: %w", frame, err)
	}
	s.consumed = offset
	return nil
}

type Decoder struct{}

// Decode parses the RIFF header, skipping unknown chunks such as LIST or
// fact until the data chunk, and returns a source over PCM 16-bit samples.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if !bytes.Equal(riff[:4], []byte("RIFF")) || !bytes.Equal(riff[8:12], []byte("WAVE")) {
		return nil, ErrNotWavFile
	}

	var (
		offset     int64 = 12
		haveFormat bool
		channels   int
		sampleRate int
	)

	for range maxSkippedChunks {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
		}
		offset += 8
		id := string(hdr[:4])
		size := int64(binary.LittleEndian.Uint32(hdr[4:]))

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, ErrUnsupportedWavLayout
			}
			body := make([]byte, size+size%2)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
			}
			offset += int64(len(body))

			audioFormat := binary.LittleEndian.Uint16(body[0:2])
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitsPerSample := binary.LittleEndian.Uint16(body[14:16])

			if audioFormat != 1 || bitsPerSample != 16 {
				return nil, ErrOnlyPCM16bitSupported
			}
			if channels < 1 || sampleRate < 1 {
				return nil, ErrUnsupportedWavLayout
			}
			haveFormat = true

		case "data":
			if !haveFormat {
				return nil, ErrUnsupportedWavLayout
			}
			return &wavSource{
				r:          r,
				sampleRate: sampleRate,
				channels:   channels,
				dataStart:  offset,
				dataLen:    size - size%int64(2*channels),
				buf:        make([]byte, 8192),
			}, nil

		default:
			skip := size + size%2
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavChunks, err)
			}
			offset += skip
		}
	}

	return nil, ErrUnsupportedWavChunks
}
