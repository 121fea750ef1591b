// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files with github.com/hajimehoshi/go-mp3.
//
// The decoder always produces stereo 16-bit PCM, exposed as float32 samples
// in [-1, 1]. When the input implements io.Seeker the source also implements
// audio.Seeker and reports its length in frames.
//
//	src, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    return err
//	}
//	_ = src.(audio.Seeker).SeekFrame(44100) // one second in
package mp3
