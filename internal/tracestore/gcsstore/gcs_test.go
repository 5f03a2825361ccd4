package gcsstore

import (
	"testing"

	"github.com/discochess/treecache/internal/codec"
)

func TestWithPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"prefix", "prefix/"},
		{"prefix/", "prefix/"},
		{"a/b/c", "a/b/c/"},
		{"a/b/c/", "a/b/c/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := &Store{}
			WithPrefix(tt.input)(s)
			if s.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", s.prefix, tt.want)
			}
		})
	}
}

func TestStore_key(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{"", "orbit", "orbit.jsonl.zst"},
		{"traces/", "orbit", "traces/orbit.jsonl.zst"},
		{"a/b/", "dive", "a/b/dive.jsonl.zst"},
	}

	for _, tt := range tests {
		s := &Store{codec: codec.Zstd(), prefix: tt.prefix}
		if got := s.key(tt.name); got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.name, tt.prefix, got, tt.want)
		}
	}
}

func TestStore_traceName(t *testing.T) {
	s := &Store{codec: codec.Zstd(), prefix: "traces/"}

	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"traces/orbit.jsonl.zst", "orbit", true},
		{"traces/orbit.jsonl.gz", "", false},
		{"traces/nested/orbit.jsonl.zst", "", false},
		{"other/orbit.jsonl.zst", "", false},
	}

	for _, tt := range tests {
		got, ok := s.traceName(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("traceName(%q) = %q, %v, want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}
