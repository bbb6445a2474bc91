// Package glyph provides the fixed glyph table and atlas bitmap used by the
// debug text overlay.
//
// The table maps every 8-bit character code to the position of its glyph in
// a 128x128 monochrome atlas. Glyphs are monospaced: every glyph advances by
// [Width] texels, only the height and vertical offset vary.
//
// # Table format
//
// A serialized table is [Count] entries of [EntrySize] bytes each:
//
//	byte 0: atlas X (texels)
//	byte 1: atlas Y (texels)
//	byte 2: height in the low 4 bits, vertical offset in the high 4 bits
//
// The shipped table and atlas are embedded in the package and returned by
// [Default] and [DefaultAtlas].
package glyph

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"
)

const (
	// Count is the number of entries in a table, one per 8-bit code.
	Count = 256

	// EntrySize is the serialized size of one table entry in bytes.
	EntrySize = 3

	// TableSize is the serialized size of a whole table in bytes.
	TableSize = Count * EntrySize

	// Width is the fixed glyph width and advance in texels.
	Width = 8

	// MaxHeight is the largest height or offset the packed byte can hold.
	MaxHeight = 0x0F
)

// Table errors.
var (
	// ErrTableSize is returned when serialized table data has the wrong length.
	ErrTableSize = errors.New("glyph: table data must be 768 bytes")

	// ErrOutOfBounds is returned when a glyph rectangle leaves the atlas.
	ErrOutOfBounds = errors.New("glyph: glyph outside atlas bounds")
)

// Metric describes where one glyph lives in the atlas.
// U and V are raw texel coordinates of the glyph's top-left corner.
type Metric struct {
	U, V    uint8
	Height  uint8
	YOffset uint8
}

// Width returns the glyph width, which is the same for every glyph.
func (Metric) Width() int { return Width }

// Empty reports whether the glyph covers no texels.
func (m Metric) Empty() bool { return m.Height == 0 }

// pack returns the serialized height/offset byte.
func (m Metric) pack() byte {
	return m.Height&MaxHeight | (m.YOffset&MaxHeight)<<4
}

// Table is a complete code-to-glyph mapping. It is immutable once built.
type Table [Count]Metric

// Lookup returns the metrics for character code c.
// Every code has an entry; codes without a drawable glyph map to an
// empty glyph in the shipped table.
func (t *Table) Lookup(c byte) Metric {
	return t[c]
}

// Validate checks that every glyph rectangle lies within an atlas of the
// given size.
func (t *Table) Validate(atlasWidth, atlasHeight int) error {
	for code, m := range t {
		if int(m.U)+Width > atlasWidth || int(m.V)+int(m.Height) > atlasHeight {
			return fmt.Errorf("%w: code %#02x at (%d,%d) height %d",
				ErrOutOfBounds, code, m.U, m.V, m.Height)
		}
	}
	return nil
}

// Decode parses a serialized table.
func Decode(data []byte) (*Table, error) {
	if len(data) != TableSize {
		return nil, fmt.Errorf("%w, got %d", ErrTableSize, len(data))
	}
	t := new(Table)
	for i := range t {
		e := data[i*EntrySize : (i+1)*EntrySize]
		t[i] = Metric{
			U:       e[0],
			V:       e[1],
			Height:  e[2] & MaxHeight,
			YOffset: e[2] >> 4,
		}
	}
	return t, nil
}

// Encode serializes t in the format accepted by [Decode].
func Encode(t *Table) []byte {
	out := make([]byte, 0, TableSize)
	for _, m := range t {
		out = append(out, m.U, m.V, m.pack())
	}
	return out
}

//go:embed data/glyphs.bin
var defaultTableData []byte

var defaultTable = sync.OnceValue(func() *Table {
	t, err := Decode(defaultTableData)
	if err != nil {
		panic(err)
	}
	return t
})

// Default returns the shipped glyph table. The returned table is shared
// and must not be modified.
func Default() *Table {
	return defaultTable()
}
