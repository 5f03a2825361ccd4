// Package codec compresses and decompresses recorded trace streams.
package codec

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrUnknown indicates a codec name that ByName does not recognize.
var ErrUnknown = errors.New("codec: unknown codec")

// Codec provides compression and decompression functionality.
type Codec interface {
	// Reader wraps r to decompress data read from it. Closing the returned
	// reader does not close r.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it. Closing the returned
	// writer flushes pending output but does not close w.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Extension returns the file extension without dot (e.g., "zst", "gz").
	// Returns empty string for no compression.
	Extension() string
}

// All returns every available codec, most preferred first.
func All() []Codec {
	return []Codec{Zstd(), Gzip(), Identity()}
}

// ForPath picks the codec matching the extension of name. Names without a
// known compression extension use Identity.
func ForPath(name string) Codec {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if ext == "" {
		return Identity()
	}
	for _, c := range All() {
		if c.Extension() == ext {
			return c
		}
	}
	return Identity()
}

// ByName returns the codec for a user-facing name. Both the extension and
// the long form are accepted; "none" and "" select Identity.
func ByName(name string) (Codec, error) {
	switch name {
	case "zst", "zstd":
		return Zstd(), nil
	case "gz", "gzip":
		return Gzip(), nil
	case "none", "":
		return Identity(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
}
