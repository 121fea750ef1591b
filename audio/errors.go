// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrUnsupportedFormat is returned when no decoder is registered for a
	// file's extension.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrNotSeekable is returned by SeekFrame on sources without random access.
	ErrNotSeekable = errors.New("source is not seekable")

	// ErrWouldBlock reports that a live source has no samples buffered yet.
	// It is not terminal: the same read may succeed later.
	ErrWouldBlock = errors.New("no samples available")

	// ErrEmptySource is returned when decoding yields no samples at all.
	ErrEmptySource = errors.New("source contains no samples")

	// ErrInvalidChannels is returned for channel counts below one.
	ErrInvalidChannels = errors.New("channel count must be positive")
)
