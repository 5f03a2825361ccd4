// Package urlstore opens a trace store from a location string.
package urlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/discochess/treecache/internal/codec"
	"github.com/discochess/treecache/internal/tracestore"
	"github.com/discochess/treecache/internal/tracestore/diskstore"
	"github.com/discochess/treecache/internal/tracestore/gcsstore"
	"github.com/discochess/treecache/internal/tracestore/memstore"
	"github.com/discochess/treecache/internal/tracestore/s3store"
)

// Location is a parsed store location.
type Location struct {
	Scheme string // "file", "gs", "s3" or "mem"
	Bucket string
	Path   string // directory for "file", key prefix otherwise
}

// Parse parses a store location. Accepted forms are "gs://bucket/prefix",
// "s3://bucket/prefix", "mem://" and a plain or file:// directory path.
func Parse(location string) (Location, error) {
	scheme, rest, ok := strings.Cut(location, "://")
	if !ok {
		if location == "" {
			return Location{}, fmt.Errorf("empty store location")
		}
		return Location{Scheme: "file", Path: location}, nil
	}

	switch scheme {
	case "file":
		if rest == "" {
			return Location{}, fmt.Errorf("invalid store location %q: missing path", location)
		}
		return Location{Scheme: "file", Path: rest}, nil
	case "mem":
		return Location{Scheme: "mem"}, nil
	case "gs", "s3":
		u, err := url.Parse(location)
		if err != nil {
			return Location{}, fmt.Errorf("invalid store location %q: %w", location, err)
		}
		if u.Host == "" {
			return Location{}, fmt.Errorf("invalid store location %q: missing bucket name", location)
		}
		return Location{Scheme: scheme, Bucket: u.Host, Path: strings.Trim(u.Path, "/")}, nil
	default:
		return Location{}, fmt.Errorf("unsupported store scheme %q", scheme)
	}
}

// Options holds backend-specific settings for Open.
type Options struct {
	// Region and Endpoint apply to s3:// locations.
	Region   string
	Endpoint string
}

// Open parses location and opens the matching backend, storing traces with c.
func Open(ctx context.Context, location string, c codec.Codec, opts Options) (tracestore.Store, error) {
	loc, err := Parse(location)
	if err != nil {
		return nil, err
	}

	switch loc.Scheme {
	case "mem":
		return memstore.New(), nil
	case "gs":
		return gcsstore.New(ctx, loc.Bucket, c, gcsstore.WithPrefix(loc.Path))
	case "s3":
		s3opts := []s3store.Option{s3store.WithPrefix(loc.Path)}
		if opts.Region != "" {
			s3opts = append(s3opts, s3store.WithRegion(opts.Region))
		}
		if opts.Endpoint != "" {
			s3opts = append(s3opts, s3store.WithEndpoint(opts.Endpoint))
		}
		return s3store.New(ctx, loc.Bucket, c, s3opts...)
	default:
		return diskstore.New(loc.Path, c)
	}
}
