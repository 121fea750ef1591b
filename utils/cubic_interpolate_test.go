// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
		tolerance      float32
	}{
		{name: "start returns y1", y0: 0, y1: 1, y2: 2, y3: 3, x: 0, want: 1, tolerance: 0},
		{name: "end approaches y2", y0: 0, y1: 1, y2: 2, y3: 3, x: 1, want: 2, tolerance: 1e-5},
		{name: "linear ramp stays linear", y0: 1, y1: 2, y2: 3, y3: 4, x: 0.25, want: 2.25, tolerance: 1e-5},
		{name: "constant stays constant", y0: 0.5, y1: 0.5, y2: 0.5, y3: 0.5, x: 0.7, want: 0.5, tolerance: 1e-6},
		{name: "negative values", y0: -1, y1: -0.5, y2: 0, y3: 0.5, x: 0.5, want: -0.25, tolerance: 1e-5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if math.Abs(float64(got-tt.want)) > float64(tt.tolerance) {
				t.Errorf("CubicInterpolate() = %v, want %v (±%v)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestCubicInterpolate_Continuity(t *testing.T) {
	t.Parallel()

	prev := CubicInterpolate(0, 0.2, 0.4, 0.1, 0)
	for i := 1; i <= 100; i++ {
		x := float32(i) / 100
		got := CubicInterpolate(0, 0.2, 0.4, 0.1, x)
		if math.Abs(float64(got-prev)) > 0.02 {
			t.Fatalf("jump of %v at x=%v", got-prev, x)
		}
		prev = got
	}
}

func BenchmarkCubicInterpolate(b *testing.B) {
	var sink float32
	for i := 0; i < b.N; i++ {
		sink += CubicInterpolate(0.1, 0.2, 0.3, 0.4, 0.5)
	}
	_ = sink
}
