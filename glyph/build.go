package glyph

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/encoding/charmap"
)

// ErrAtlasFull is returned by [Build] when the requested glyphs do not fit
// into one atlas.
var ErrAtlasFull = errors.New("glyph: glyphs do not fit into the atlas")

// cellGap is the empty border kept right of and below every packed glyph.
const cellGap = 1

type rendered struct {
	code    byte
	yOffset int
	rows    [][]byte // trimmed coverage rows, Width bytes each
}

// Build rasterizes a fixed-width bitmap face into a table and atlas in the
// shipped format. Each code in codes is decoded to a rune through cm; codes
// that are not listed, or that the face cannot draw, get an empty glyph.
//
// The face's line height must fit the 4-bit height and offset fields, and
// glyphs wider than [Width] are clipped.
func Build(face font.Face, cm *charmap.Charmap, codes []byte) (*Table, *Atlas, error) {
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	lineHeight := metrics.Height.Ceil()
	if lineHeight > MaxHeight+1 {
		return nil, nil, fmt.Errorf("glyph: line height %d exceeds %d", lineHeight, MaxHeight+1)
	}

	scratch := image.NewAlpha(image.Rect(0, 0, Width, lineHeight))
	var glyphs []rendered
	for _, code := range codes {
		r := cm.DecodeByte(code)
		dr, mask, maskp, _, ok := face.Glyph(fixed.P(0, ascent), r)
		if !ok {
			continue
		}
		clear(scratch.Pix)
		draw.DrawMask(scratch, dr, image.Opaque, image.Point{}, mask, maskp, draw.Over)
		if g, ok := trim(code, scratch); ok {
			glyphs = append(glyphs, g)
		}
	}

	// Tallest first keeps each shelf tight.
	sort.SliceStable(glyphs, func(i, j int) bool {
		return len(glyphs[i].rows) > len(glyphs[j].rows)
	})

	t := new(Table)
	a := &Atlas{Width: AtlasWidth, Height: AtlasHeight, Texels: make([]byte, AtlasWidth*AtlasHeight)}
	x, y, shelf := 0, 0, 0
	for _, g := range glyphs {
		h := len(g.rows)
		if x+Width > AtlasWidth {
			x, y, shelf = 0, y+shelf+cellGap, 0
		}
		if y+h > AtlasHeight {
			return nil, nil, fmt.Errorf("%w: stopped at code %#02x", ErrAtlasFull, g.code)
		}
		for i, row := range g.rows {
			copy(a.Texels[(y+i)*AtlasWidth+x:], row)
		}
		t[g.code] = Metric{U: uint8(x), V: uint8(y), Height: uint8(h), YOffset: uint8(g.yOffset)}
		shelf = max(shelf, h)
		x += Width + cellGap
	}
	return t, a, nil
}

// trim cuts empty rows above and below the glyph in img.
func trim(code byte, img *image.Alpha) (rendered, bool) {
	h := img.Rect.Dy()
	first, last := -1, -1
	for y := 0; y < h; y++ {
		for _, v := range img.Pix[y*img.Stride : y*img.Stride+Width] {
			if v >= 0x80 {
				if first < 0 {
					first = y
				}
				last = y
				break
			}
		}
	}
	if first < 0 || first > MaxHeight || last-first+1 > MaxHeight {
		return rendered{}, false
	}
	g := rendered{code: code, yOffset: first}
	for y := first; y <= last; y++ {
		row := make([]byte, Width)
		for x, v := range img.Pix[y*img.Stride : y*img.Stride+Width] {
			if v >= 0x80 {
				row[x] = 0xFF
			}
		}
		g.rows = append(g.rows, row)
	}
	return g, true
}

// PrintableCodes returns the codes 0x20 through 0x7E, optionally followed by
// 0xA1 through 0xFF.
func PrintableCodes(latin bool) []byte {
	var codes []byte
	for c := 0x20; c <= 0x7E; c++ {
		codes = append(codes, byte(c))
	}
	if latin {
		for c := 0xA1; c <= 0xFF; c++ {
			codes = append(codes, byte(c))
		}
	}
	return codes
}
