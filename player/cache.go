// SPDX-License-Identifier: EPL-2.0

package player

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/ik5/audplay/audio"
)

// decodeCache shares decoded buffers between plays of the same path.
// Buffers are immutable, so handing one to several sources is safe. Expired
// entries are swept by the player's reaper; the cache runs no goroutine of
// its own.
type decodeCache struct {
	c *cache.Cache
}

func newDecodeCache(ttl time.Duration) *decodeCache {
	if ttl <= 0 {
		return &decodeCache{}
	}
	return &decodeCache{c: cache.New(ttl, 0)}
}

// load returns the decoded content of path, decoding it on a miss.
func (d *decodeCache) load(reg *audio.Registry, path string) (*audio.Buffer, bool, error) {
	if d.c != nil {
		if v, ok := d.c.Get(path); ok {
			return v.(*audio.Buffer), true, nil
		}
	}

	src, err := reg.Open(path)
	if err != nil {
		return nil, false, err
	}
	buf, err := audio.DecodeAll(src)
	cerr := src.Close()
	if err != nil {
		return nil, false, err
	}
	if cerr != nil {
		return nil, false, fmt.Errorf("closing %s: %w", path, cerr)
	}

	if d.c != nil {
		d.c.SetDefault(path, buf)
	}
	return buf, false, nil
}

func (d *decodeCache) sweep() {
	if d.c != nil {
		d.c.DeleteExpired()
	}
}

func (d *decodeCache) len() int {
	if d.c == nil {
		return 0
	}
	return d.c.ItemCount()
}

func (d *decodeCache) flush() {
	if d.c != nil {
		d.c.Flush()
	}
}
