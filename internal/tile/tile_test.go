package tile

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestID_Parent(t *testing.T) {
	tests := []struct {
		id     ID
		want   ID
		wantOK bool
	}{
		{Root, ID{}, false},
		{ID{Level: 1, X: 1, Y: 0}, Root, true},
		{ID{Level: 3, X: 5, Y: 6}, ID{Level: 2, X: 2, Y: 3}, true},
	}
	for _, tt := range tests {
		got, ok := tt.id.Parent()
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%v.Parent() = %v, %v, want %v, %v", tt.id, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestID_ChildrenRoundTripParent(t *testing.T) {
	id := ID{Level: 4, X: 9, Y: 3}
	for _, c := range id.Children() {
		if !c.Valid() {
			t.Errorf("child %v is not valid", c)
		}
		p, ok := c.Parent()
		if !ok || p != id {
			t.Errorf("%v.Parent() = %v, want %v", c, p, id)
		}
	}
}

func TestID_Ancestors(t *testing.T) {
	id := ID{Level: 3, X: 7, Y: 2}
	got := id.Ancestors()
	want := []ID{Root, {Level: 1, X: 1, Y: 0}, {Level: 2, X: 3, Y: 1}}
	if len(got) != len(want) {
		t.Fatalf("Ancestors() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ancestors()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if len(Root.Ancestors()) != 0 {
		t.Error("root should have no ancestors")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{"0/0/0", Root, false},
		{"2/3/1", ID{Level: 2, X: 3, Y: 1}, false},
		{"2/4/1", ID{}, true}, // x out of range for level 2
		{"1/0", ID{}, true},
		{"a/0/0", ID{}, true},
		{"31/0/0", ID{}, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidID) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidID", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}

func TestID_JSON(t *testing.T) {
	ids := []ID{Root, {Level: 5, X: 17, Y: 30}}
	data, err := json.Marshal(ids)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `["0/0/0","5/17/30"]` {
		t.Errorf("Marshal() = %s", data)
	}

	var back []ID
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(back) != 2 || back[1] != ids[1] {
		t.Errorf("Unmarshal() = %v, want %v", back, ids)
	}
}
