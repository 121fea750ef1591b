// SPDX-License-Identifier: EPL-2.0

package audio

import "math"

// MinusInfDB is the level treated as silence.
const MinusInfDB float32 = -200

const (
	linToDB = 20 / math.Ln10
	dbToLin = math.Ln10 / 20
)

// DbToLinear converts decibels to a linear gain factor. 0 dB is exactly 1
// and anything at or below MinusInfDB is 0.
func DbToLinear(db float32) float32 {
	if db == 0 {
		return 1
	}
	if db <= MinusInfDB {
		return 0
	}
	return float32(math.Exp(float64(db) * dbToLin))
}

// LinearToDb converts a linear gain factor to decibels. 1 is exactly 0 dB
// and factors too small to matter map to MinusInfDB.
func LinearToDb(v float32) float32 {
	if v == 1 {
		return 0
	}
	if v <= 1e-12 {
		return MinusInfDB
	}
	return float32(math.Log(float64(v)) * linToDB)
}

// PitchFromNote returns the equal tempered frequency of a MIDI note with
// A4 (note 69) at 440 Hz.
func PitchFromNote(note uint8) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}

// SpeedFromNote returns the playback speed that transposes a sample recorded
// at middle C (note 60) to note.
func SpeedFromNote(note uint8) float64 {
	return PitchFromNote(note) / PitchFromNote(60)
}
