// Package diskstore implements a disk-based filesystem storage backend.
package diskstore

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/discochess/treecache/internal/codec"
	"github.com/discochess/treecache/internal/trace"
	"github.com/discochess/treecache/internal/tracestore"
)

// Compile-time check that Store implements tracestore.Store.
var _ tracestore.Store = (*Store)(nil)

// Store keeps one file per trace directly under a root directory.
type Store struct {
	root  string
	codec codec.Codec
}

// New creates a new disk store rooted at the given directory.
// The directory must exist. The codec handles compression/decompression.
func New(root string, c codec.Codec) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	return &Store{
		root:  root,
		codec: c,
	}, nil
}

// ReadTrace reads and decodes the named trace.
func (s *Store) ReadTrace(ctx context.Context, name string) ([]trace.Frame, error) {
	if err := tracestore.CheckContext(ctx); err != nil {
		return nil, err
	}
	if err := tracestore.ValidateName(name); err != nil {
		return nil, err
	}

	compressed, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, tracestore.ErrNotFound
		}
		return nil, fmt.Errorf("reading trace: %w", err)
	}

	frames, err := trace.ReadAll(bytes.NewReader(compressed), s.codec)
	if err != nil {
		return nil, fmt.Errorf("decoding trace %s: %w", name, err)
	}
	return frames, nil
}

// WriteTrace writes the trace to a temporary file and renames it into
// place.
func (s *Store) WriteTrace(ctx context.Context, name string, frames []trace.Frame) error {
	if err := tracestore.CheckContext(ctx); err != nil {
		return err
	}
	if err := tracestore.ValidateName(name); err != nil {
		return err
	}

	data, err := tracestore.Encode(s.codec, frames)
	if err != nil {
		return fmt.Errorf("encoding trace %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing trace: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing trace: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming trace: %w", err)
	}
	return nil
}

// List returns the traces stored under the root directory.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := tracestore.CheckContext(ctx); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading root directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := tracestore.TraceName(entry.Name(), s.codec); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}

// path returns the filesystem path for a trace.
func (s *Store) path(name string) string {
	return filepath.Join(s.root, tracestore.ObjectName(name, s.codec))
}
