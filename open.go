// SPDX-License-Identifier: EPL-2.0

package audplay

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ik5/audplay/internal/logging"
	"github.com/ik5/audplay/output"
	"github.com/ik5/audplay/output/malgosink"
	"github.com/ik5/audplay/output/otosink"
	"github.com/ik5/audplay/player"
)

// ErrUnknownBackend is returned for a backend name OpenDevice does not know.
var ErrUnknownBackend = errors.New("audplay: unknown output backend")

// OpenDevice opens the output device cfg selects. The wav backend returns an
// *output.WAVFileDevice that renders only when ticked.
func OpenDevice(cfg Config) (output.Device, error) {
	oc, err := cfg.outputConfig()
	if err != nil {
		return nil, err
	}

	switch cfg.Output.Backend {
	case "", BackendOto:
		return asDevice(otosink.Open(oc))
	case BackendMalgo:
		return asDevice(malgosink.Open(oc, malgosink.Options{Logger: logging.WithComponent(nil, "malgo")}))
	case BackendNull:
		return asDevice(output.NewNullDevice(oc))
	case BackendWAV:
		if cfg.Output.Path == "" {
			return nil, &ConfigError{Field: "output.path", Message: "required by the wav backend"}
		}
		return asDevice(output.NewWAVFileDevice(cfg.Output.Path, oc))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Output.Backend)
	}
}

// asDevice keeps a failed constructor from yielding a non-nil interface
// around a nil pointer.
func asDevice[D output.Device](d D, err error) (output.Device, error) {
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Open opens the configured device and starts a player on it. opts are
// applied after the options derived from cfg.
func Open(cfg Config, opts ...player.Option) (*player.Player, error) {
	dev, err := OpenDevice(cfg)
	if err != nil {
		return nil, err
	}

	all := append(cfg.PlayerOptions(), opts...)
	p, err := player.New(dev, all...)
	if err != nil {
		if cerr := dev.Close(); cerr != nil {
			slog.Warn("closing device after failed start", "device", dev.Name(), "error", cerr)
		}
		return nil, err
	}
	return p, nil
}
