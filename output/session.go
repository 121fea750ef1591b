// SPDX-License-Identifier: EPL-2.0

package output

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	sessionMu sync.Mutex
	current   *Session
)

// Session marks the single output device this process may have open.
type Session struct {
	ID     uuid.UUID
	Device string

	once sync.Once
}

// ClaimSession reserves the process-wide device session for device. It fails
// with ErrDeviceBusy while another session is held.
func ClaimSession(device string) (*Session, error) {
	sessionMu.Lock()
	defer sessionMu.Unlock()

	if current != nil {
		return nil, fmt.Errorf("%w: %s (session %s)", ErrDeviceBusy, current.Device, current.ID)
	}
	current = &Session{ID: uuid.New(), Device: device}
	return current, nil
}

// Release gives the session back. Calling it more than once is harmless.
func (s *Session) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		sessionMu.Lock()
		if current == s {
			current = nil
		}
		sessionMu.Unlock()
	})
}

// ActiveSession returns the session currently held, or nil.
func ActiveSession() *Session {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	return current
}
