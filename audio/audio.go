// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/tools/godoc/vfs"
)

// Source is a pull-based stream of interleaved float32 PCM.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1] and
	// returns the number of float32 values written (not frames). n == 0
	// with io.EOF means the stream is finished. ErrWouldBlock means no data
	// is available right now and the caller should retry later.
	ReadSamples(dst []float32) (n int, err error)

	// BufSize is the preferred read size in samples.
	BufSize() int

	// Close releases any resources.
	Close() error
}

// Seeker is implemented by sources that can jump to a frame offset.
type Seeker interface {
	SeekFrame(frame int64) error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Registry maps file extensions to decoders and opens files through a
// virtual file system.
type Registry struct {
	codecs map[string]Decoder
	fs     vfs.Opener
	// osRooted is set while fs is the host file system, whose paths are
	// made absolute before opening.
	osRooted bool

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs:   make(map[string]Decoder),
		fs:       vfs.OS("/"),
		osRooted: true,
		mtx:      &sync.Mutex{},
	}
}

// Register binds a decoder to a format key. Keys are extensions without the
// leading dot and are case-insensitive.
func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[normalizeFormat(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[normalizeFormat(format)]
	return d, ok
}

// Formats lists the registered format keys in sorted order.
func (r *Registry) Formats() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// SetFileSystem replaces the file system Open reads from. Paths given to
// Open are passed to fs unchanged.
func (r *Registry) SetFileSystem(fs vfs.Opener) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.fs = fs
	r.osRooted = false
}

// Open picks a decoder by the file extension of path and decodes the file.
// The returned source owns the file and closes it on Close. It implements
// Seeker; SeekFrame returns ErrNotSeekable when the decoder cannot seek.
func (r *Registry) Open(path string) (Source, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	dec, ok := r.Get(ext)
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	r.mtx.Lock()
	fs, osRooted := r.fs, r.osRooted
	r.mtx.Unlock()

	name := path
	if osRooted {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", path, err)
		}
		name = abs
	}

	f, err := fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	src, err := dec.Decode(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return &fileSource{Source: src, file: f}, nil
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(format, "."))
}

type fileSource struct {
	Source
	file io.Closer
}

func (s *fileSource) SeekFrame(frame int64) error {
	sk, ok := s.Source.(Seeker)
	if !ok {
		return ErrNotSeekable
	}
	return sk.SeekFrame(frame)
}

func (s *fileSource) Close() error {
	srcErr := s.Source.Close()
	fileErr := s.file.Close()
	if srcErr != nil {
		return fmt.Errorf("%w", srcErr)
	}
	if fileErr != nil {
		return fmt.Errorf("%w", fileErr)
	}
	return nil
}
