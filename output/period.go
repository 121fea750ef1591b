// SPDX-License-Identifier: EPL-2.0

package output

import "sync/atomic"

type rendererBox struct{ r Renderer }

// PeriodBuffer adapts a Renderer, which only ever produces whole periods, to
// pull-style backends that ask for arbitrary byte counts. Leftover bytes of
// a period are handed out on the next call. It is not safe for concurrent
// Fill calls; backends call it from their single callback thread.
type PeriodBuffer struct {
	renderer atomic.Pointer[rendererBox]
	period   []byte
	off      int // start of unread bytes in period
}

func NewPeriodBuffer(f Format) *PeriodBuffer {
	b := &PeriodBuffer{period: make([]byte, f.PeriodBytes())}
	b.off = len(b.period)
	return b
}

// SetRenderer installs r. A nil renderer yields silence.
func (b *PeriodBuffer) SetRenderer(r Renderer) {
	if r == nil {
		b.renderer.Store(nil)
		return
	}
	b.renderer.Store(&rendererBox{r: r})
}

// Renderer returns the installed renderer, or nil.
func (b *PeriodBuffer) Renderer() Renderer {
	if box := b.renderer.Load(); box != nil {
		return box.r
	}
	return nil
}

func (b *PeriodBuffer) render(dst []byte) {
	box := b.renderer.Load()
	if box == nil {
		clear(dst)
		return
	}
	box.r.Render(dst)
}

// Fill writes exactly len(p) bytes. Whole periods are rendered in place when
// p has room for them.
func (b *PeriodBuffer) Fill(p []byte) {
	size := len(b.period)
	for len(p) > 0 {
		if b.off < size {
			n := copy(p, b.period[b.off:])
			b.off += n
			p = p[n:]
			continue
		}
		if len(p) >= size {
			b.render(p[:size])
			p = p[size:]
			continue
		}
		b.render(b.period)
		b.off = 0
	}
}

// Read implements io.Reader. It never fails and always fills p.
func (b *PeriodBuffer) Read(p []byte) (int, error) {
	b.Fill(p)
	return len(p), nil
}

// Pending is the number of rendered bytes not yet handed out.
func (b *PeriodBuffer) Pending() int { return len(b.period) - b.off }

// Discard drops any pending bytes, e.g. after a device restart.
func (b *PeriodBuffer) Discard() { b.off = len(b.period) }
