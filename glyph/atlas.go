package glyph

import (
	"bytes"
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/bmp"
)

const (
	// AtlasWidth is the atlas width in texels.
	AtlasWidth = 128

	// AtlasHeight is the atlas height in texels.
	AtlasHeight = 128
)

// BMP layout written by EncodeAtlas: a BITMAPINFOHEADER and a two-entry
// palette, 14 + 40 + 8 bytes of headers before the pixel rows. bmp.Encode
// has no 1-bpp output.
const (
	bmpFileHeaderLen = 14
	bmpInfoHeaderLen = 40
	bmpPaletteLen    = 2 * 4
	bmpPixelOffset   = bmpFileHeaderLen + bmpInfoHeaderLen + bmpPaletteLen
	bmpPelsPerMeter  = 2834
)

// Atlas errors.
var (
	// ErrNotBMP is returned when atlas data lacks the BMP signature.
	ErrNotBMP = errors.New("glyph: atlas is not a BMP image")

	// ErrUnsupportedBMP is returned for BMP variants other than
	// uncompressed two-color paletted images.
	ErrUnsupportedBMP = errors.New("glyph: atlas must be an uncompressed 1-bpp BMP")

	// ErrAtlasSize is returned when the atlas is not 128x128 texels.
	ErrAtlasSize = errors.New("glyph: atlas must be 128x128 texels")
)

// Atlas is the decoded glyph bitmap: one byte per texel, 0x00 (empty) or
// 0xFF (covered), rows top to bottom.
type Atlas struct {
	Width, Height int
	Texels        []byte
}

// At returns the texel at (x, y). Coordinates wrap around the atlas edges,
// matching the sampler's addressing mode.
func (a *Atlas) At(x, y int) byte {
	x %= a.Width
	if x < 0 {
		x += a.Width
	}
	y %= a.Height
	if y < 0 {
		y += a.Height
	}
	return a.Texels[y*a.Width+x]
}

// Gray returns an image view of the atlas sharing its texels.
func (a *Atlas) Gray() *image.Gray {
	return &image.Gray{
		Pix:    a.Texels,
		Stride: a.Width,
		Rect:   image.Rect(0, 0, a.Width, a.Height),
	}
}

// DecodeAtlas parses a monochrome BMP atlas. Palette entries are reduced to
// coverage by luminance, so either palette order decodes correctly.
func DecodeAtlas(data []byte) (*Atlas, error) {
	if !bytes.HasPrefix(data, []byte("BM")) {
		return nil, ErrNotBMP
	}
	cfg, err := bmp.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedBMP, err)
	}
	if pal, ok := cfg.ColorModel.(color.Palette); !ok || len(pal) > 2 {
		return nil, ErrUnsupportedBMP
	}
	if cfg.Width != AtlasWidth || cfg.Height != AtlasHeight {
		return nil, fmt.Errorf("%w, got %dx%d", ErrAtlasSize, cfg.Width, cfg.Height)
	}

	img, err := bmp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedBMP, err)
	}
	pm, ok := img.(*image.Paletted)
	if !ok {
		return nil, ErrUnsupportedBMP
	}
	coverage := make([]byte, len(pm.Palette))
	for i, c := range pm.Palette {
		if color.GrayModel.Convert(c).(color.Gray).Y >= 0x80 {
			coverage[i] = 0xFF
		}
	}

	a := &Atlas{Width: cfg.Width, Height: cfg.Height, Texels: make([]byte, cfg.Width*cfg.Height)}
	for y := range a.Height {
		src := pm.Pix[y*pm.Stride : y*pm.Stride+a.Width]
		dst := a.Texels[y*a.Width : (y+1)*a.Width]
		for x, idx := range src {
			if int(idx) < len(coverage) {
				dst[x] = coverage[idx]
			}
		}
	}
	return a, nil
}

// EncodeAtlas writes a in the bottom-up 1-bpp BMP layout read by
// [DecodeAtlas]. Texels at or above 0x80 become palette entry 1 (white).
func EncodeAtlas(a *Atlas) []byte {
	stride := (a.Width + 31) / 32 * 4
	imageSize := stride * a.Height
	out := make([]byte, bmpPixelOffset+imageSize)

	le := binary.LittleEndian
	out[0], out[1] = 'B', 'M'
	le.PutUint32(out[2:], uint32(len(out)))
	le.PutUint32(out[10:], bmpPixelOffset)
	le.PutUint32(out[14:], bmpInfoHeaderLen)
	le.PutUint32(out[18:], uint32(a.Width))
	le.PutUint32(out[22:], uint32(a.Height))
	le.PutUint16(out[26:], 1)
	le.PutUint16(out[28:], 1)
	le.PutUint32(out[34:], uint32(imageSize))
	le.PutUint32(out[38:], bmpPelsPerMeter)
	le.PutUint32(out[42:], bmpPelsPerMeter)
	// Palette: entry 0 black, entry 1 white.
	copy(out[bmpFileHeaderLen+bmpInfoHeaderLen+4:], []byte{0xFF, 0xFF, 0xFF, 0x00})

	for row := 0; row < a.Height; row++ {
		y := a.Height - 1 - row
		dst := out[bmpPixelOffset+row*stride:]
		src := a.Texels[y*a.Width : (y+1)*a.Width]
		for x, t := range src {
			if t >= 0x80 {
				dst[x>>3] |= 0x80 >> uint(x&7)
			}
		}
	}
	return out
}

//go:embed data/atlas.bmp
var defaultAtlasData []byte

var defaultAtlas = sync.OnceValue(func() *Atlas {
	a, err := DecodeAtlas(defaultAtlasData)
	if err != nil {
		panic(err)
	}
	return a
})

// DefaultAtlas returns the shipped atlas. The returned atlas is shared and
// must not be modified.
func DefaultAtlas() *Atlas {
	return defaultAtlas()
}

// DefaultAtlasData returns the raw BMP bytes of the shipped atlas.
func DefaultAtlasData() []byte {
	out := make([]byte, len(defaultAtlasData))
	copy(out, defaultAtlasData)
	return out
}
