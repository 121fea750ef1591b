// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
// Sources seek by frame through the reader's SetPosition, which only works
// when the input implements io.Seeker; otherwise SeekFrame reports
// audio.ErrNotSeekable and the player falls back to reopening the file.
package vorbis
