// SPDX-License-Identifier: EPL-2.0

package utils

// Clamp limits x to the normalized sample range [-1, 1].
func Clamp(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// Float32ToInt16 converts a normalized sample to signed 16-bit PCM, clamping
// out of range input. -1 maps to math.MinInt16 and 1 to math.MaxInt16.
func Float32ToInt16(x float32) int16 {
	x = Clamp(x)
	if x < 0 {
		return int16(x * 32768)
	}
	return int16(x * 32767)
}

// Int16ToFloat32 converts signed 16-bit PCM to a normalized sample.
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768
}
