// SPDX-License-Identifier: EPL-2.0

package output

import (
	"sync"
	"sync/atomic"
)

// countingRenderer fills each period with the period index modulo 256 and
// records device errors.
type countingRenderer struct {
	calls atomic.Int64

	mu   sync.Mutex
	errs []error
}

func (r *countingRenderer) Render(dst []byte) {
	v := byte(r.calls.Add(1))
	for i := range dst {
		dst[i] = v
	}
}

func (r *countingRenderer) DeviceError(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *countingRenderer) errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// constRenderer renders every sample as the same float32 value.
type constRenderer struct {
	value float32
	sf    SampleFormat
	tmp   []float32
}

func (r *constRenderer) Render(dst []byte) {
	n := len(dst) / r.sf.BytesPerSample()
	if cap(r.tmp) < n {
		r.tmp = make([]float32, n)
	}
	r.tmp = r.tmp[:n]
	for i := range r.tmp {
		r.tmp[i] = r.value
	}
	Encode(dst, r.tmp, r.sf)
}

func (r *constRenderer) DeviceError(error) {}
