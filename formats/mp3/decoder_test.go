// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audplay/audio"
)

// fakeDecoder stands in for gomp3.Decoder, serving PCM from memory in
// uneven chunks the way the real decoder does.
type fakeDecoder struct {
	rate  int
	pcm   []byte
	pos   int64
	chunk int
	fail  error
}

func newFakeDecoder(rate int, samples []int16) *fakeDecoder {
	pcm := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		pcm = binary.LittleEndian.AppendUint16(pcm, uint16(s))
	}
	return &fakeDecoder{rate: rate, pcm: pcm, chunk: 7}
}

func (f *fakeDecoder) SampleRate() int { return f.rate }
func (f *fakeDecoder) Length() int64   { return int64(len(f.pcm)) }

func (f *fakeDecoder) Read(p []byte) (int, error) {
	if f.fail != nil {
		return 0, f.fail
	}
	if f.pos >= int64(len(f.pcm)) {
		return 0, io.EOF
	}
	n := copy(p[:min(len(p), f.chunk)], f.pcm[f.pos:])
	f.pos += int64(n)
	return n, nil
}

func (f *fakeDecoder) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart {
		return 0, errors.New("unsupported whence")
	}
	f.pos = offset
	return offset, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, in := range [][]byte{nil, []byte("This is not MP3 data")} {
		if _, err := (Decoder{}).Decode(bytes.NewReader(in)); err == nil {
			t.Errorf("Decode(%q) error = nil, want error", in)
		}
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	pcm := []int16{0, 16384, 32767, -16384, -32768, 8192, -8192, 0}
	src := &source{dec: newFakeDecoder(8000, pcm), sampleRate: 8000}

	dst := make([]float32, 6)
	n, err := src.ReadSamples(dst)
	if n != 6 || err != nil {
		t.Fatalf("ReadSamples() = %d, %v; want 6, nil", n, err)
	}
	want := []float32{0, 0.5, 32767.0 / 32768, -0.5, -1, 0.25}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	n, err = src.ReadSamples(dst)
	if n != 2 || !errors.Is(err, io.EOF) {
		t.Errorf("final ReadSamples() = %d, %v; want 2, io.EOF", n, err)
	}
}

func TestSource_ReadSamples_DropsPartialFrame(t *testing.T) {
	t.Parallel()

	src := &source{dec: newFakeDecoder(8000, []int16{1, 2, 3}), sampleRate: 8000}
	n, err := src.ReadSamples(make([]float32, 8))
	if n != 2 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() = %d, %v; want one whole frame and io.EOF", n, err)
	}
}

func TestSource_ReadSamples_DecoderError(t *testing.T) {
	t.Parallel()

	dec := newFakeDecoder(8000, []int16{1, 2})
	dec.fail = errors.New("corrupt frame")
	src := &source{dec: dec, sampleRate: 8000}

	if _, err := src.ReadSamples(make([]float32, 2)); err == nil || errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() error = %v, want a decode error", err)
	}
}

func TestSource_SeekFrame(t *testing.T) {
	t.Parallel()

	pcm := []int16{0, 0, 100, 100, 200, 200, 300, 300}
	src := &source{dec: newFakeDecoder(8000, pcm), sampleRate: 8000, seekable: true}

	if src.Frames() != 4 {
		t.Errorf("Frames() = %d, want 4", src.Frames())
	}
	if err := src.SeekFrame(2); err != nil {
		t.Fatalf("SeekFrame() error = %v", err)
	}
	dst := make([]float32, 2)
	if _, err := src.ReadSamples(dst); err != nil {
		t.Fatal(err)
	}
	if dst[0] != 200.0/32768 {
		t.Errorf("after seek read %v, want frame 2", dst[0])
	}

	src.seekable = false
	if err := src.SeekFrame(0); !errors.Is(err, audio.ErrNotSeekable) {
		t.Errorf("SeekFrame() on unseekable input error = %v, want audio.ErrNotSeekable", err)
	}
	if src.Frames() != -1 {
		t.Errorf("Frames() = %d on unseekable input, want -1", src.Frames())
	}
}
