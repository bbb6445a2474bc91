package dbgtext

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dbgtext/glyph"
)

// batch accumulates glyph quads in a dynamic vertex buffer.
//
// The buffer is either unmapped (mem == nil) or mapped for writing. The
// first append after an unmapped period maps it, discarding the previous
// contents and resetting the vertex count. The write cursor is always
// mem[count*VertexStride:], and count is always a multiple of
// VerticesPerGlyph no greater than capacity*VerticesPerGlyph.
type batch struct {
	dc       DeviceContext
	buf      Buffer
	table    *glyph.Table
	capacity int // glyphs
	count    int // vertices
	mem      []byte
}

// bufferSize returns the vertex buffer size for capacity glyphs.
func bufferSize(capacity int) uint64 {
	return uint64(capacity) * GlyphStride
}

func (b *batch) mapped() bool { return b.mem != nil }

// remaining returns the number of glyphs that still fit.
func (b *batch) remaining() int {
	return b.capacity - b.count/VerticesPerGlyph
}

// open maps the buffer for writing if it is not mapped yet.
func (b *batch) open() error {
	if b.mem != nil {
		return nil
	}
	b.count = 0
	mem, err := b.dc.Map(b.buf, gputypes.MapModeWrite)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMapFailed, err)
	}
	if need := bufferSize(b.capacity); uint64(len(mem)) < need {
		b.dc.Unmap(b.buf)
		return fmt.Errorf("%w: mapped %d bytes, need %d", ErrMapFailed, len(mem), need)
	}
	b.mem = mem
	return nil
}

// close unmaps the buffer. It reports whether the buffer was mapped.
func (b *batch) close() bool {
	if b.mem == nil {
		return false
	}
	b.dc.Unmap(b.buf)
	b.mem = nil
	return true
}

// add appends up to n glyphs from codes starting at pixel (x, y).
// It stops at a NUL code. The buffer must be open. It returns the number
// of glyphs written, which is less than the requested count only when the
// batch ran out of capacity.
func (b *batch) add(vp Viewport, codes []byte, x, y int, color uint32) int {
	written := 0
	for _, c := range codes {
		if c == 0 || b.remaining() == 0 {
			break
		}
		b.put(vp, b.table.Lookup(c), x, y, color)
		x += glyph.Width
		written++
	}
	return written
}

// put writes the six vertices of one glyph quad at the write cursor.
//
// Triangle A is bottom-left, top-left, top-right; triangle B is
// top-right, bottom-right, bottom-left.
func (b *batch) put(vp Viewport, m glyph.Metric, x, y int, color uint32) {
	top := y + int(m.YOffset)
	bottom := top + int(m.Height)
	left, right := x, x+glyph.Width

	l, t := PixelToNDC(left, top, vp)
	r, bt := PixelToNDC(right, bottom, vp)

	u0, v0 := uint16(m.U), uint16(m.V)
	u1, v1 := u0+glyph.Width, v0+uint16(m.Height)

	bl := Vertex{X: l, Y: bt, TexCoord: EncodeTexCoord(u0, v1), Color: color}
	tl := Vertex{X: l, Y: t, TexCoord: EncodeTexCoord(u0, v0), Color: color}
	tr := Vertex{X: r, Y: t, TexCoord: EncodeTexCoord(u1, v0), Color: color}
	br := Vertex{X: r, Y: bt, TexCoord: EncodeTexCoord(u1, v1), Color: color}

	w := b.mem[b.count*VertexStride : (b.count+VerticesPerGlyph)*VertexStride]
	for i, v := range [VerticesPerGlyph]Vertex{bl, tl, tr, tr, br, bl} {
		PutVertex(w[i*VertexStride:], v)
	}
	b.count += VerticesPerGlyph
}
