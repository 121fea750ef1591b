// SPDX-License-Identifier: EPL-2.0

// Package priority raises the scheduling priority of the calling OS thread
// for audio work. Elevation is best effort: callers log a failure and carry
// on at normal priority.
package priority

import "errors"

// ErrUnsupported is returned on platforms without a thread priority hook.
var ErrUnsupported = errors.New("thread priority elevation not supported on this platform")

// Nice is the niceness requested for audio threads where niceness applies.
const Nice = -11

// Promote raises the priority of the current OS thread. The caller must have
// locked its goroutine to the thread with runtime.LockOSThread, otherwise the
// change may land on an unrelated goroutine.
func Promote() error {
	return promote()
}
