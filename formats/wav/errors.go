// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile            = errors.New("not a WAV file")
	ErrUnsupportedWavLayout  = errors.New("unsupported WAV layout")
	ErrOnlyPCM16bitSupported = errors.New("only PCM 16-bit supported")
	ErrUnsupportedWavChunks  = errors.New("unsupported WAV chunks")
	// ErrInvalidChannels is returned by NewWriter for channel counts below one.
	ErrInvalidChannels = errors.New("WAV channel count must be positive")
	// ErrWriterClosed is returned when writing after Close.
	ErrWriterClosed = errors.New("WAV writer is closed")
)
