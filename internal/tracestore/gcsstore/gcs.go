// Package gcsstore implements a Google Cloud Storage backend.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/discochess/treecache/internal/codec"
	"github.com/discochess/treecache/internal/trace"
	"github.com/discochess/treecache/internal/tracestore"
)

// Compile-time check that Store implements tracestore.Store.
var _ tracestore.Store = (*Store)(nil)

// Store is a Google Cloud Storage backend.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
	codec  codec.Codec
}

// New creates a new GCS store.
// The bucket must already exist.
// The codec handles compression/decompression.
func New(ctx context.Context, bucketName string, c codec.Codec, opts ...Option) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}

	s := &Store{
		client: client,
		bucket: client.Bucket(bucketName),
		codec:  c,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = normalizePrefix(prefix)
	}
}

// ReadTrace reads and decodes the named trace.
func (s *Store) ReadTrace(ctx context.Context, name string) ([]trace.Frame, error) {
	if err := tracestore.CheckContext(ctx); err != nil {
		return nil, err
	}
	if err := tracestore.ValidateName(name); err != nil {
		return nil, err
	}

	reader, err := s.bucket.Object(s.key(name)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, tracestore.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	frames, err := trace.ReadAll(reader, s.codec)
	if err != nil {
		return nil, fmt.Errorf("decoding trace %s: %w", name, err)
	}
	return frames, nil
}

// WriteTrace uploads the encoded trace, replacing any existing object.
func (s *Store) WriteTrace(ctx context.Context, name string, frames []trace.Frame) error {
	if err := tracestore.CheckContext(ctx); err != nil {
		return err
	}
	if err := tracestore.ValidateName(name); err != nil {
		return err
	}

	writer := s.bucket.Object(s.key(name)).NewWriter(ctx)
	if err := trace.WriteAll(writer, s.codec, frames); err != nil {
		writer.Close()
		return fmt.Errorf("uploading trace %s: %w", name, err)
	}
	return writer.Close()
}

// List returns the traces stored under the prefix.
func (s *Store) List(ctx context.Context) ([]string, error) {
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: s.prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		if name, ok := s.traceName(attrs.Name); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Close releases resources.
func (s *Store) Close() error {
	return s.client.Close()
}

// key returns the full object key for a trace.
func (s *Store) key(name string) string {
	return s.prefix + tracestore.ObjectName(name, s.codec)
}

// traceName extracts a trace name from an object key directly under the
// prefix.
func (s *Store) traceName(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, s.prefix)
	if !ok {
		return "", false
	}
	return tracestore.TraceName(rest, s.codec)
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return prefix
}
