package trace

import (
	"bytes"
	"io"
	"reflect"
	"testing"

	"github.com/discochess/treecache/internal/codec"
	"github.com/discochess/treecache/internal/tile"
)

func TestWriteAll_ReadAll(t *testing.T) {
	frames := []Frame{
		{Index: 0, Visible: []tile.ID{tile.Root}},
		{Index: 1, Visible: []tile.ID{{Level: 1, X: 0, Y: 1}, {Level: 1, X: 1, Y: 1}}},
		{Index: 2},
	}

	for _, c := range codec.All() {
		t.Run(c.Extension(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteAll(&buf, c, frames); err != nil {
				t.Fatalf("WriteAll() error = %v", err)
			}

			got, err := ReadAll(&buf, c)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if len(got) != len(frames) {
				t.Fatalf("ReadAll() returned %d frames, want %d", len(got), len(frames))
			}
			for i := range frames {
				if got[i].Index != frames[i].Index || len(got[i].Visible) != len(frames[i].Visible) {
					t.Errorf("frame %d = %+v, want %+v", i, got[i], frames[i])
				}
			}
			if got[1].Visible[1] != frames[1].Visible[1] {
				t.Errorf("frame 1 tile = %v, want %v", got[1].Visible[1], frames[1].Visible[1])
			}
		})
	}
}

func TestReader_Next(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, codec.Identity())
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	w.Write(Frame{Index: 7, Visible: []tile.ID{tile.Root}})
	if w.Frames() != 1 {
		t.Errorf("Frames() = %d, want 1", w.Frames())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if want := "{\"frame\":7,\"visible\":[\"0/0/0\"]}\n"; buf.String() != want {
		t.Errorf("encoded = %q, want %q", buf.String(), want)
	}

	r, err := NewReader(&buf, codec.Identity())
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	defer r.Close()
	f, err := r.Next()
	if err != nil || f.Index != 7 {
		t.Fatalf("Next() = %+v, %v", f, err)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next() at end error = %v, want io.EOF", err)
	}
}

func TestReadAll_Malformed(t *testing.T) {
	in := bytes.NewBufferString("{\"frame\":0,\"visible\":[\"0/0/0\"]}\n{\"frame\":1,\"visible\":[\"9/9\"]}\n")
	if _, err := ReadAll(in, codec.Identity()); err == nil {
		t.Error("ReadAll() expected error for a malformed tile id")
	}
}

func TestGenerate(t *testing.T) {
	p := DefaultParams()
	p.Frames = 200

	frames := Generate(p)
	if len(frames) != p.Frames {
		t.Fatalf("Generate() returned %d frames, want %d", len(frames), p.Frames)
	}

	maxVisible := (2*p.Radius + 1) * (2*p.Radius + 1)
	for i, f := range frames {
		if f.Index != i {
			t.Errorf("frame %d has index %d", i, f.Index)
		}
		if len(f.Visible) == 0 || len(f.Visible) > maxVisible {
			t.Errorf("frame %d has %d visible tiles, want 1..%d", i, len(f.Visible), maxVisible)
		}
		for _, id := range f.Visible {
			if !id.Valid() || id.Level > p.MaxLevel {
				t.Errorf("frame %d has invalid tile %v", i, id)
			}
		}
	}

	if again := Generate(p); !reflect.DeepEqual(frames, again) {
		t.Error("Generate() is not deterministic for a fixed seed")
	}

	p.Seed++
	if other := Generate(p); reflect.DeepEqual(frames, other) {
		t.Error("different seeds produced identical traces")
	}
}

func TestClone(t *testing.T) {
	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}

	frames := []Frame{
		{Index: 0, Visible: []tile.ID{tile.Root}},
		{Index: 1, Visible: []tile.ID{{Level: 1}, {Level: 1, X: 1}}},
		{Index: 2},
	}
	got := Clone(frames)
	if !reflect.DeepEqual(got, frames) {
		t.Fatalf("Clone() = %v, want %v", got, frames)
	}

	got[1].Visible[0] = tile.ID{Level: 9}
	got[0].Index = 7
	if frames[1].Visible[0] != (tile.ID{Level: 1}) || frames[0].Index != 0 {
		t.Error("modifying the clone changed the original")
	}
}
