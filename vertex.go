package dbgtext

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"
)

const (
	// VertexStride is the size of one vertex in bytes.
	VertexStride = 16

	// VerticesPerGlyph is the number of vertices emitted per glyph: two
	// triangles, no index buffer.
	VerticesPerGlyph = 6

	// GlyphStride is the number of vertex bytes emitted per glyph.
	GlyphStride = VertexStride * VerticesPerGlyph
)

// Vertex is one decoded vertex of the glyph stream.
//
// Layout (little-endian):
//
//	offset  0: float32 X (normalized device coordinates)
//	offset  4: float32 Y
//	offset  8: uint32  texcoord, U in the low 16 bits, V in the high 16 bits
//	offset 12: uint32  color, 0xAABBGGRR
type Vertex struct {
	X, Y     float32
	TexCoord uint32
	Color    uint32
}

// Vertex attribute locations.
const (
	LocationPosition = 0
	LocationTexCoord = 1
	LocationColor    = 2
)

// InputElements returns the input layout of the glyph vertex stream.
func InputElements() []InputElement {
	return []InputElement{
		{Location: LocationPosition, Format: gputypes.VertexFormatFloat32x2, Offset: 0},
		{Location: LocationTexCoord, Format: gputypes.VertexFormatUint16x2, Offset: 8},
		{Location: LocationColor, Format: gputypes.VertexFormatUnorm8x4, Offset: 12},
	}
}

// EncodeTexCoord packs raw atlas texel coordinates as u | v<<16.
func EncodeTexCoord(u, v uint16) uint32 {
	return uint32(u) | uint32(v)<<16
}

// DecodeTexCoord splits a packed texture coordinate.
func DecodeTexCoord(tc uint32) (u, v uint16) {
	return uint16(tc), uint16(tc >> 16)
}

// PixelToNDC converts a viewport pixel position (origin top-left, Y down)
// to normalized device coordinates (origin center, Y up).
func PixelToNDC(px, py int, vp Viewport) (x, y float32) {
	x = 2*float32(px)/vp.Width - 1
	y = 1 - 2*float32(py)/vp.Height
	return x, y
}

// NDCToPixel is the inverse of PixelToNDC.
func NDCToPixel(x, y float32, vp Viewport) (px, py float32) {
	px = (x + 1) * vp.Width / 2
	py = (1 - y) * vp.Height / 2
	return px, py
}

// PutVertex writes v into the first VertexStride bytes of b.
func PutVertex(b []byte, v Vertex) {
	_ = b[VertexStride-1]
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], v.TexCoord)
	binary.LittleEndian.PutUint32(b[12:], v.Color)
}

// ReadVertex decodes the vertex stored in the first VertexStride bytes of b.
func ReadVertex(b []byte) Vertex {
	_ = b[VertexStride-1]
	return Vertex{
		X:        math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y:        math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		TexCoord: binary.LittleEndian.Uint32(b[8:]),
		Color:    binary.LittleEndian.Uint32(b[12:]),
	}
}
