// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriter_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewWriter(f, 22050, 2)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	in := []float32{0, 0, 0.5, -0.5, 1, -1, 2, -2, 0.25}
	if err := w.WriteFloat32(in); err != nil {
		t.Fatalf("WriteFloat32() error = %v", err)
	}
	if w.Frames() != 4 {
		t.Errorf("Frames() = %d, want 4 (partial frame dropped)", w.Frames())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.WriteFloat32(in); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("write after Close error = %v, want ErrWriterClosed", err)
	}
	_ = f.Close()

	r, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	src, err := Decoder{}.Decode(r)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.SampleRate() != 22050 || src.Channels() != 2 {
		t.Fatalf("format = %d Hz %d ch, want 22050 Hz 2 ch", src.SampleRate(), src.Channels())
	}

	got := readAll(t, src)
	want := []float32{0, 0, 0.5, -0.5, 1, -1, 1, -1}
	if len(got) != len(want) {
		t.Fatalf("read %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if d := got[i] - want[i]; d > 1.0/16384 || d < -1.0/16384 {
			t.Errorf("sample %d = %v, want ≈%v", i, got[i], want[i])
		}
	}
}

func TestWriteWAV16(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pcm.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteWAV16(f, 8000, 1, []int16{100, -100, 200}); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	src, err := Decoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got := readAll(t, src)
	if len(got) != 3 || got[0] != 100.0/32768 || got[1] != -100.0/32768 {
		t.Errorf("decoded %v", got)
	}
}

func TestNewWriter_InvalidChannels(t *testing.T) {
	t.Parallel()

	f, err := os.Create(filepath.Join(t.TempDir(), "x.wav"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := NewWriter(f, 8000, 0); !errors.Is(err, ErrInvalidChannels) {
		t.Errorf("NewWriter() error = %v, want ErrInvalidChannels", err)
	}
}
