// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audplay/audio"
	"github.com/ik5/audplay/formats/wav"
	"github.com/ik5/audplay/internal/audiotest"
	"github.com/ik5/audplay/player"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCommand()
	root.SetArgs(append(args, "--log-level", "error"))
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func writeConstWAV(t *testing.T, frames int, v int16) string {
	t.Helper()

	samples := make([]int16, frames*2)
	for i := range samples {
		samples[i] = v
	}
	path := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, os.WriteFile(path, audiotest.WAV16(48000, 2, samples, nil), 0o600))
	return path
}

func readWAV(t *testing.T, path string) []float32 {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	require.NoError(t, err)
	buf, err := audio.DecodeAll(src)
	require.NoError(t, err)
	return buf.Samples
}

func TestRender(t *testing.T) {
	in := writeConstWAV(t, 4800, 8192)
	out := filepath.Join(t.TempDir(), "mix.wav")

	stdout, err := execute(t, "render", "--period", "480", "--repeat", "1", "-o", out, in, in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "to "+out)

	samples := readWAV(t, out)
	frames := len(samples) / 2
	assert.GreaterOrEqual(t, frames, 9600)
	assert.LessOrEqual(t, frames, 9600+6*480)
	assert.InDelta(t, 0.5, samples[0], 1e-3, "two files at 0.25 sum")
	assert.InDelta(t, 0.5, samples[2*9599], 1e-3)
	assert.Zero(t, samples[len(samples)-1])
}

func TestRender_Errors(t *testing.T) {
	in := writeConstWAV(t, 480, 1)

	_, err := execute(t, "render", in)
	require.ErrorContains(t, err, "--out")

	_, err = execute(t, "render", "-o", filepath.Join(t.TempDir(), "x.wav"), filepath.Join(t.TempDir(), "missing.wav"))
	require.Error(t, err)

	_, err = execute(t, "render", "--speed", "-1", "-o", filepath.Join(t.TempDir(), "x.wav"), in)
	require.ErrorIs(t, err, player.ErrInvalidOptions)

	_, err = execute(t, "play")
	require.Error(t, err)

	_, err = execute(t, "render", "--backend", "pulse", "-o", "x.wav", in)
	require.ErrorContains(t, err, "output.backend")
}

func TestFileFlags(t *testing.T) {
	t.Parallel()

	ff := fileFlags{stream: true, speed: 1, repeat: -1}
	opts, err := ff.options()
	require.NoError(t, err)
	assert.Equal(t, player.Streamed, opts.Mode)
	assert.Equal(t, player.RepeatForever, opts.Repeat)

	ff = fileFlags{speed: 1, repeat: -2}
	_, err = ff.options()
	assert.ErrorIs(t, err, player.ErrInvalidOptions)
}

func TestToneGenerator(t *testing.T) {
	t.Parallel()

	gen, err := toneGenerator(48000, 440, 10*time.Millisecond)
	require.NoError(t, err)
	buf := make([]float32, 2*1000)
	assert.Equal(t, 2*480, gen.Generate(buf))
}
