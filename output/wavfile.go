// SPDX-License-Identifier: EPL-2.0

package output

import (
	"errors"
	"fmt"
	"os"

	"github.com/ik5/audplay/formats/wav"
)

// WAVFileDevice is a ManualDevice that appends every rendered period to a
// 16-bit PCM WAV file.
type WAVFileDevice struct {
	*ManualDevice

	path string
	file *os.File
	w    *wav.Writer
	err  error
}

// NewWAVFileDevice creates (or truncates) path and claims the device
// session.
func NewWAVFileDevice(path string, cfg Config) (*WAVFileDevice, error) {
	if cfg.Name == "" {
		cfg.Name = "wav:" + path
	}
	m, err := NewManualDevice(cfg)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		_ = m.Close()
		return nil, &DeviceError{Backend: "wav", Op: "create", Err: err}
	}
	w, err := wav.NewWriter(f, m.format.SampleRate, m.format.Channels)
	if err != nil {
		_ = f.Close()
		_ = m.Close()
		return nil, &DeviceError{Backend: "wav", Op: "open", Err: err}
	}
	return &WAVFileDevice{ManualDevice: m, path: path, file: f, w: w}, nil
}

// Path is the file being written.
func (d *WAVFileDevice) Path() string { return d.path }

// Frames is the number of frames written so far.
func (d *WAVFileDevice) Frames() int64 { return d.w.Frames() }

// Tick renders one period and appends it to the file. Write failures are
// sticky: once one happens, later ticks return the same error.
func (d *WAVFileDevice) Tick() ([]float32, error) {
	if d.err != nil {
		return nil, d.err
	}
	samples := d.ManualDevice.TickFloat32()
	if err := d.w.WriteFloat32(samples); err != nil {
		d.err = &DeviceError{Backend: "wav", Op: "write", Err: err}
		return nil, d.err
	}
	return samples, nil
}

// Close finalizes the WAV header, closes the file and releases the session.
func (d *WAVFileDevice) Close() error {
	if d.file == nil {
		return nil
	}
	var errs []error
	if err := d.w.Close(); err != nil {
		errs = append(errs, fmt.Errorf("finalize %s: %w", d.path, err))
	}
	if err := d.file.Close(); err != nil {
		errs = append(errs, err)
	}
	d.file = nil
	errs = append(errs, d.ManualDevice.Close())
	return errors.Join(errs...)
}
