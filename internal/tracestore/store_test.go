package tracestore

import (
	"errors"
	"testing"

	"github.com/discochess/treecache/internal/codec"
)

func TestObjectName(t *testing.T) {
	tests := []struct {
		c    codec.Codec
		want string
	}{
		{codec.Zstd(), "orbit.jsonl.zst"},
		{codec.Gzip(), "orbit.jsonl.gz"},
		{codec.Identity(), "orbit.jsonl"},
	}
	for _, tt := range tests {
		got := ObjectName("orbit", tt.c)
		if got != tt.want {
			t.Errorf("ObjectName(%q) = %q, want %q", "orbit", got, tt.want)
		}
		name, ok := TraceName(got, tt.c)
		if !ok || name != "orbit" {
			t.Errorf("TraceName(%q) = %q, %v, want %q, true", got, name, ok, "orbit")
		}
	}
}

func TestTraceName_Rejects(t *testing.T) {
	tests := []string{
		"orbit.jsonl.gz", // wrong codec
		"orbit.txt",
		".jsonl.zst",
	}
	for _, obj := range tests {
		if name, ok := TraceName(obj, codec.Zstd()); ok {
			t.Errorf("TraceName(%q) = %q, true, want false", obj, name)
		}
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"orbit", false},
		{"zoom-in.2", false},
		{"", true},
		{"..", true},
		{"a/b", true},
		{`a\b`, true},
	}
	for _, tt := range tests {
		err := ValidateName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidName) {
			t.Errorf("ValidateName(%q) error = %v, want ErrInvalidName", tt.name, err)
		}
	}
}
