// SPDX-License-Identifier: EPL-2.0

package output

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimSession(t *testing.T) {
	s, err := ClaimSession("first")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Same(t, s, ActiveSession())

	_, err = ClaimSession("second")
	assert.ErrorIs(t, err, ErrDeviceBusy)

	s.Release()
	s.Release()
	assert.Nil(t, ActiveSession())

	s2, err := ClaimSession("second")
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, s2.ID)

	// A stale release must not free someone else's session.
	s.Release()
	assert.Same(t, s2, ActiveSession())
	s2.Release()
}

func TestDevicesShareOneSession(t *testing.T) {
	m, err := NewManualDevice(Config{})
	require.NoError(t, err)

	_, err = NewNullDevice(Config{})
	assert.ErrorIs(t, err, ErrDeviceBusy)

	require.NoError(t, m.Close())

	n, err := NewNullDevice(Config{})
	require.NoError(t, err)
	require.NoError(t, n.Close())
}
