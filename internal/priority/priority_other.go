// SPDX-License-Identifier: EPL-2.0

//go:build !linux

package priority

func promote() error {
	return ErrUnsupported
}
