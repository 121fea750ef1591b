// SPDX-License-Identifier: EPL-2.0

package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCache(t *testing.T) {
	t.Parallel()

	reg := testRegistry(map[string]string{"a.wav": constWAV(100, 1)})
	c := newDecodeCache(time.Minute)

	first, hit, err := c.load(reg, "a.wav")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.EqualValues(t, 100, first.Frames())

	second, hit, err := c.load(reg, "a.wav")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.len())

	c.flush()
	assert.Zero(t, c.len())
}

func TestDecodeCache_Disabled(t *testing.T) {
	t.Parallel()

	reg := testRegistry(map[string]string{"a.wav": constWAV(100, 1)})
	c := newDecodeCache(0)

	a, _, err := c.load(reg, "a.wav")
	require.NoError(t, err)
	b, hit, err := c.load(reg, "a.wav")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotSame(t, a, b)
	c.sweep()
	assert.Zero(t, c.len())
}

func TestDecodeCache_Expiry(t *testing.T) {
	t.Parallel()

	reg := testRegistry(map[string]string{"a.wav": constWAV(100, 1)})
	c := newDecodeCache(time.Millisecond)

	_, _, err := c.load(reg, "a.wav")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	c.sweep()
	assert.Zero(t, c.len())
}
