// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"golang.org/x/tools/godoc/vfs/mapfs"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/internal/audiotest"
)

func TestNewRegistry_Formats(t *testing.T) {
	t.Parallel()

	want := []string{"aif", "aiff", "mp3", "oga", "ogg", "wav", "wave"}
	if got := NewRegistry().Formats(); !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}

func TestRegistry_OpenWAVFromDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "Tone.WAV")
	data := audiotest.WAV16(16000, 1, audiotest.SineInt16(16000, 1, 1600, 440, 0.5), nil)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	src, err := NewRegistry().Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	buf, err := audio.DecodeAll(src)
	if err != nil {
		t.Fatalf("DecodeAll() error = %v", err)
	}
	if buf.Frames() != 1600 || buf.SampleRate != 16000 {
		t.Errorf("decoded %d frames at %d Hz, want 1600 at 16000", buf.Frames(), buf.SampleRate)
	}

	if err := src.(audio.Seeker).SeekFrame(800); err != nil {
		t.Errorf("SeekFrame() on a file error = %v", err)
	}
}

func TestRegistry_OpenFromMapFS(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.SetFileSystem(mapfs.New(map[string]string{
		"sfx/click.wav": string(audiotest.WAV16(8000, 2, audiotest.RampInt16(2, 10), nil)),
		"sfx/bad.mp3":   "garbage",
	}))

	src, err := r.Open("sfx/click.wav")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_ = src.Close()

	if _, err := r.Open("sfx/bad.mp3"); err == nil {
		t.Error("Open() of a corrupt mp3 returned nil error")
	}
	if _, err := r.Open("sfx/click.flac"); !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("Open() of .flac error = %v, want audio.ErrUnsupportedFormat", err)
	}
}
