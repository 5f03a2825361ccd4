// Package tracestore defines the storage backend interface for recorded
// camera traces.
package tracestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/discochess/treecache/internal/codec"
	"github.com/discochess/treecache/internal/trace"
)

var (
	// ErrNotFound is returned when a trace does not exist in the store.
	ErrNotFound = errors.New("tracestore: trace not found")

	// ErrInvalidName is returned for trace names that cannot be stored.
	ErrInvalidName = errors.New("tracestore: invalid trace name")
)

// Store defines the interface for storage backends.
// Implementations handle key layout and compression internally.
type Store interface {
	// ReadTrace reads and decodes the named trace.
	ReadTrace(ctx context.Context, name string) ([]trace.Frame, error)

	// WriteTrace encodes frames and stores them under name, replacing any
	// existing trace of that name.
	WriteTrace(ctx context.Context, name string, frames []trace.Frame) error

	// List returns the names of all stored traces in lexical order.
	List(ctx context.Context) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

const baseExt = ".jsonl"

// ObjectName returns the file or object name a trace is stored under,
// e.g. "orbit.jsonl.zst".
func ObjectName(name string, c codec.Codec) string {
	obj := name + baseExt
	if ext := c.Extension(); ext != "" {
		obj += "." + ext
	}
	return obj
}

// TraceName reverses ObjectName. It reports false for objects not written
// with c.
func TraceName(object string, c codec.Codec) (string, bool) {
	suffix := ObjectName("", c)
	name, ok := strings.CutSuffix(object, suffix)
	if !ok || ValidateName(name) != nil {
		return "", false
	}
	return name, true
}

// ValidateName checks that name is non-empty and has no path separators.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Encode serializes frames with c.
func Encode(c codec.Codec, frames []trace.Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := trace.WriteAll(&buf, c, frames); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CheckContext returns ctx.Err() if ctx is already done.
func CheckContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
