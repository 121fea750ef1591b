// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ik5/audplay/internal/audiotest"
)

func TestDecodeAll(t *testing.T) {
	t.Parallel()

	buf, err := DecodeAll(audiotest.NewRampSource(8000, 2, 8000))
	if err != nil {
		t.Fatalf("DecodeAll() error = %v", err)
	}
	if buf.Frames() != 8000 || buf.Channels != 2 || buf.SampleRate != 8000 {
		t.Errorf("buffer = %d frames, %d ch, %d Hz; want 8000, 2, 8000", buf.Frames(), buf.Channels, buf.SampleRate)
	}
	if buf.Duration() != time.Second {
		t.Errorf("Duration() = %v, want 1s", buf.Duration())
	}
}

func TestDecodeAll_Empty(t *testing.T) {
	t.Parallel()

	if _, err := DecodeAll(audiotest.NewSilentSource(8000, 1, 0)); !errors.Is(err, ErrEmptySource) {
		t.Errorf("DecodeAll() error = %v, want ErrEmptySource", err)
	}
}

func TestDecodeAll_ToleratesStarvation(t *testing.T) {
	t.Parallel()

	gated := audiotest.NewGatedSource(audiotest.NewConstantSource(8000, 1, 10, 0.5), ErrWouldBlock)
	gated.Allow(4)
	buf, err := DecodeAll(gated)
	if err != nil {
		t.Fatalf("DecodeAll() error = %v", err)
	}
	if buf.Frames() != 4 {
		t.Errorf("Frames() = %d, want the 4 released frames", buf.Frames())
	}
}

func TestBufferReader_Repeat(t *testing.T) {
	t.Parallel()

	buf := &Buffer{Samples: []float32{1, 2, 3}, SampleRate: 8000, Channels: 1}
	r := NewBufferReader(buf, 2)

	out := make([]float32, 4)
	var got []float32
	for {
		n, err := r.ReadSamples(out)
		got = append(got, out[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}

	want := []float32{1, 2, 3, 1, 2, 3, 1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if r.Passes() != 2 {
		t.Errorf("Passes() = %d, want 2 restarts for three traversals", r.Passes())
	}
}

func TestBufferReader_RepeatForever(t *testing.T) {
	t.Parallel()

	r := NewBufferReader(&Buffer{Samples: []float32{0.1, 0.2}, SampleRate: 8000, Channels: 2}, RepeatForever)
	out := make([]float32, 2)
	for range 1000 {
		if _, err := r.ReadSamples(out); err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	if r.Passes() != 999 {
		t.Errorf("Passes() = %d, want 999", r.Passes())
	}
}

func TestBufferReader_SeekFrame(t *testing.T) {
	t.Parallel()

	buf := &Buffer{Samples: []float32{0, 0, 1, 1, 2, 2, 3, 3}, SampleRate: 8000, Channels: 2}
	r := NewBufferReader(buf, 0)

	if err := r.SeekFrame(2); err != nil {
		t.Fatal(err)
	}
	out := make([]float32, 2)
	if _, err := r.ReadSamples(out); err != nil {
		t.Fatal(err)
	}
	if out[0] != 2 || r.Frame() != 3 {
		t.Errorf("after seek read %v at frame %d, want 2 at frame 3", out[0], r.Frame())
	}

	_ = r.SeekFrame(100)
	if r.Frame() != 4 {
		t.Errorf("Frame() = %d after seeking past the end, want 4", r.Frame())
	}
	_ = r.SeekFrame(-5)
	if r.Frame() != 0 {
		t.Errorf("Frame() = %d after seeking before the start, want 0", r.Frame())
	}
}

func TestBufferReader_SharedBufferIsNotModified(t *testing.T) {
	t.Parallel()

	buf := &Buffer{Samples: []float32{0.5, 0.25}, SampleRate: 8000, Channels: 1}
	a := NewBufferReader(buf, 0)
	b := NewBufferReader(buf, 0)

	out := make([]float32, 2)
	_, _ = a.ReadSamples(out)
	out[0] = 99
	_, _ = b.ReadSamples(out)
	if buf.Samples[0] != 0.5 || out[0] != 0.5 {
		t.Error("readers share mutable state through the buffer")
	}
}
