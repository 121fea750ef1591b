// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// 8, 16, 24 and 32-bit integer PCM are supported. AIFF sources cannot seek;
// the player plays them preloaded or, when streamed, restarts them by
// reopening the file.
package aiff
