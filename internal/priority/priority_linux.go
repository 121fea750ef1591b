// SPDX-License-Identifier: EPL-2.0

//go:build linux

package priority

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func promote() error {
	// On Linux PRIO_PROCESS with a thread id targets that single thread.
	if err := unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), Nice); err != nil {
		return fmt.Errorf("setpriority(%d): %w", Nice, err)
	}
	return nil
}
