// SPDX-License-Identifier: EPL-2.0

// Package queue provides a bounded, lock-free multi-producer multi-consumer
// ring used to pass commands and events across the real-time boundary.
//
// Neither TryPush nor TryPop allocate or block: a full ring rejects the push,
// an empty ring rejects the pop. The algorithm is Dmitry Vyukov's bounded
// MPMC queue, where every cell carries a sequence number that tells
// producers and consumers whose turn it is.
package queue

import "sync/atomic"

const cacheLine = 64

type cell[T any] struct {
	seq atomic.Uint64
	val T
}

// Ring is a bounded lock-free queue. The zero value is not usable; create
// rings with New.
type Ring[T any] struct {
	_       [cacheLine]byte
	enqueue atomic.Uint64
	_       [cacheLine - 8]byte
	dequeue atomic.Uint64
	_       [cacheLine - 8]byte

	mask  uint64
	cells []cell[T]
}

// New returns a ring holding at least capacity elements. The capacity is
// rounded up to the next power of two; values below 2 become 2.
func New[T any](capacity int) *Ring[T] {
	size := uint64(2)
	for size < uint64(capacity) {
		size <<= 1
	}

	r := &Ring[T]{
		mask:  size - 1,
		cells: make([]cell[T], size),
	}
	for i := range r.cells {
		r.cells[i].seq.Store(uint64(i))
	}

	return r
}

// Cap returns the number of elements the ring can hold.
func (r *Ring[T]) Cap() int { return len(r.cells) }

// Len returns an approximation of the number of queued elements. It is exact
// only when no push or pop is in flight.
func (r *Ring[T]) Len() int {
	n := int64(r.enqueue.Load()) - int64(r.dequeue.Load())
	if n < 0 {
		return 0
	}
	if n > int64(len(r.cells)) {
		return len(r.cells)
	}
	return int(n)
}

// TryPush appends v and reports whether there was room for it.
func (r *Ring[T]) TryPush(v T) bool {
	pos := r.enqueue.Load()
	for {
		c := &r.cells[pos&r.mask]
		seq := c.seq.Load()

		switch dif := int64(seq) - int64(pos); {
		case dif == 0:
			if r.enqueue.CompareAndSwap(pos, pos+1) {
				c.val = v
				c.seq.Store(pos + 1)
				return true
			}
			pos = r.enqueue.Load()
		case dif < 0:
			return false
		default:
			pos = r.enqueue.Load()
		}
	}
}

// TryPop removes the oldest element. ok is false when the ring is empty.
func (r *Ring[T]) TryPop() (v T, ok bool) {
	pos := r.dequeue.Load()
	for {
		c := &r.cells[pos&r.mask]
		seq := c.seq.Load()

		switch dif := int64(seq) - int64(pos+1); {
		case dif == 0:
			if r.dequeue.CompareAndSwap(pos, pos+1) {
				v = c.val
				var zero T
				c.val = zero
				c.seq.Store(pos + r.mask + 1)
				return v, true
			}
			pos = r.dequeue.Load()
		case dif < 0:
			return v, false
		default:
			pos = r.dequeue.Load()
		}
	}
}
