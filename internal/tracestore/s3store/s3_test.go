package s3store

import (
	"testing"

	"github.com/discochess/treecache/internal/codec"
)

func TestOptions(t *testing.T) {
	var o settings
	for _, opt := range []Option{
		WithPrefix("traces"),
		WithRegion("eu-west-1"),
		WithEndpoint("http://localhost:9000"),
	} {
		opt(&o)
	}

	if o.prefix != "traces" || o.region != "eu-west-1" || o.endpoint != "http://localhost:9000" {
		t.Errorf("settings = %+v", o)
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"prefix", "prefix/"},
		{"prefix/", "prefix/"},
		{"a/b/c/", "a/b/c/"},
	}

	for _, tt := range tests {
		if got := normalizePrefix(tt.input); got != tt.want {
			t.Errorf("normalizePrefix(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStore_keyAndTraceName(t *testing.T) {
	s := &Store{codec: codec.Gzip(), prefix: "runs/"}

	key := s.key("orbit")
	if key != "runs/orbit.jsonl.gz" {
		t.Errorf("key() = %q, want %q", key, "runs/orbit.jsonl.gz")
	}
	if name, ok := s.traceName(key); !ok || name != "orbit" {
		t.Errorf("traceName(%q) = %q, %v", key, name, ok)
	}
	if _, ok := s.traceName("runs/orbit.jsonl.zst"); ok {
		t.Error("traceName() accepted an object written with another codec")
	}
}
