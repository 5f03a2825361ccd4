// Package tile identifies tiles of a quadtree tile pyramid.
//
// Level 0 holds the single root tile; each tile at level L splits into four
// children at level L+1. Tiles are written as "level/x/y".
package tile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxLevel is the deepest level an ID may address.
const MaxLevel = 30

// ErrInvalidID is returned when parsing a malformed tile ID.
var ErrInvalidID = errors.New("tile: invalid id")

// ID addresses one tile. The zero value is the root tile.
type ID struct {
	Level uint8
	X, Y  uint32
}

// Root is the level-0 tile.
var Root = ID{}

// Valid reports whether the coordinates fit the level.
func (id ID) Valid() bool {
	if id.Level > MaxLevel {
		return false
	}
	n := uint64(1) << id.Level
	return uint64(id.X) < n && uint64(id.Y) < n
}

// Parent returns the tile one level up. The root has no parent.
func (id ID) Parent() (ID, bool) {
	if id.Level == 0 {
		return ID{}, false
	}
	return ID{Level: id.Level - 1, X: id.X / 2, Y: id.Y / 2}, true
}

// Children returns the four tiles one level down, in row-major order.
func (id ID) Children() [4]ID {
	l, x, y := id.Level+1, id.X*2, id.Y*2
	return [4]ID{
		{Level: l, X: x, Y: y},
		{Level: l, X: x + 1, Y: y},
		{Level: l, X: x, Y: y + 1},
		{Level: l, X: x + 1, Y: y + 1},
	}
}

// Ancestors returns the path from the root down to, but excluding, id.
func (id ID) Ancestors() []ID {
	path := make([]ID, id.Level)
	cur := id
	for i := int(id.Level) - 1; i >= 0; i-- {
		cur, _ = cur.Parent()
		path[i] = cur
	}
	return path
}

// String returns "level/x/y".
func (id ID) String() string {
	return fmt.Sprintf("%d/%d/%d", id.Level, id.X, id.Y)
}

// Parse parses "level/x/y".
func Parse(s string) (ID, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	level, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return ID{}, fmt.Errorf("%w: level in %q: %v", ErrInvalidID, s, err)
	}
	x, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return ID{}, fmt.Errorf("%w: x in %q: %v", ErrInvalidID, s, err)
	}
	y, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return ID{}, fmt.Errorf("%w: y in %q: %v", ErrInvalidID, s, err)
	}
	id := ID{Level: uint8(level), X: uint32(x), Y: uint32(y)}
	if !id.Valid() {
		return ID{}, fmt.Errorf("%w: %q out of range", ErrInvalidID, s)
	}
	return id, nil
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
