// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"testing"
	"time"
)

func TestFader_FadeOutIsMonotonicAndReachesZero(t *testing.T) {
	t.Parallel()

	const frames = 1440 // 30 ms at 48 kHz
	var f Fader
	f.FadeOut(frames)

	prev := float32(1)
	for i := range frames {
		g := f.Next()
		if g < 0 {
			t.Fatalf("gain at frame %d is negative: %v", i, g)
		}
		if g > prev {
			t.Fatalf("gain rose at frame %d: %v > %v", i, g, prev)
		}
		if prev-g > 1.0/frames+1e-6 {
			t.Fatalf("gain jumped by %v at frame %d", prev-g, i)
		}
		prev = g
	}

	if !f.Done() {
		t.Fatalf("state = %v after %d frames, want finished", f.State(), frames)
	}
	if g := f.Next(); g != 0 {
		t.Errorf("gain after fade = %v, want 0", g)
	}
}

func TestFader_FadeOutStartsAtUnity(t *testing.T) {
	t.Parallel()

	var f Fader
	f.FadeOut(10)
	if g := f.Next(); g != 1 {
		t.Errorf("first fade-out factor = %v, want 1", g)
	}
}

func TestFader_FadeOutDuringFadeInStartsFromCurrentGain(t *testing.T) {
	t.Parallel()

	var f Fader
	f.FadeIn(100)
	for range 40 {
		f.Next()
	}
	current := f.Gain()
	f.FadeOut(10)

	if g := f.Next(); g != current {
		t.Errorf("fade out started at %v, want %v", g, current)
	}
}

func TestFader_SecondFadeOutIgnored(t *testing.T) {
	t.Parallel()

	var f Fader
	f.FadeOut(4)
	f.Next()
	f.Next()
	f.FadeOut(1000)

	f.Next()
	f.Next()
	if !f.Done() {
		t.Error("restarted fade out extended the ramp")
	}
}

func TestFader_Process(t *testing.T) {
	t.Parallel()

	var f Fader
	buf := []float32{1, 1, 1, 1, 1, 1, 1, 1}
	f.Process(buf, 2) // idle
	for i, v := range buf {
		if v != 1 {
			t.Fatalf("idle fader changed sample %d to %v", i, v)
		}
	}

	f.FadeOut(4)
	f.Process(buf, 2)
	want := []float32{1, 1, 0.75, 0.75, 0.5, 0.5, 0.25, 0.25}
	for i := range want {
		if buf[i] != want[i] {
			t.Errorf("buf[%d] = %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestFramesFor(t *testing.T) {
	t.Parallel()

	if got := FramesFor(30*time.Millisecond, 48000); got != 1440 {
		t.Errorf("FramesFor(30ms, 48k) = %d, want 1440", got)
	}
	if got := FramesFor(0, 48000); got != 1 {
		t.Errorf("FramesFor(0) = %d, want 1", got)
	}
}
