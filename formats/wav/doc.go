// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes PCM 16-bit WAV files.
//
// Decoder walks the RIFF chunk list, skipping chunks such as LIST or fact,
// and returns an audio.Source. When the input also implements io.Seeker the
// source supports audio.Seeker, which the player uses to seek streamed
// files and to loop them.
//
//	src, err := wav.Decoder{}.Decode(file)
//
// Writer encodes through github.com/go-audio/wav and backs the WAV file
// output device:
//
//	w, _ := wav.NewWriter(file, 48000, 2)
//	_ = w.WriteFloat32(period)
//	_ = w.Close()
//
// Only 16-bit integer PCM is supported; other encodings are rejected with
// ErrOnlyPCM16bitSupported.
package wav
