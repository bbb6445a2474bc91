package soft

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dbgtext"
	"github.com/gogpu/dbgtext/glyph"
)

// varyings are the per-vertex outputs of the glyph vertex stage.
type varyings struct {
	x, y  float32 // screen pixels
	u, v  float32 // normalized atlas coordinates
	color [4]float32
}

// pipeline is the resolved draw state.
type pipeline struct {
	layout  *inputLayout
	atlas   *texture
	sampler *sampler
	vb      *buffer
	stride  int
	offset  int
	clip    image.Rectangle
	vp      dbgtext.Viewport
	target  *image.RGBA
}

// Draw rasterizes vertexCount vertices starting at startVertex as a
// triangle list. Incomplete trailing triangles are ignored.
func (c *Context) Draw(vertexCount, startVertex uint32) error {
	p, err := c.resolve()
	if err != nil {
		return err
	}

	end := uint64(startVertex) + uint64(vertexCount)
	if vertexCount > 0 {
		need := uint64(p.offset) + (end-1)*uint64(p.stride) + p.layout.span()
		if need > uint64(len(p.vb.data)) {
			return fmt.Errorf("%w: vertices [%d, %d) need %d bytes, buffer has %d",
				ErrVertexRange, startVertex, end, need, len(p.vb.data))
		}
	}

	var tri [3]varyings
	drawn := 0
	for i := uint32(0); i+3 <= vertexCount; i += 3 {
		for k := range tri {
			tri[k] = p.vertex(int(startVertex + i + uint32(k)))
		}
		if p.triangle(&tri) {
			drawn++
		}
	}
	c.draws++

	dbgtext.Logger().Debug("soft: draw",
		"vertices", vertexCount,
		"start", startVertex,
		"triangles", drawn)
	return nil
}

// resolve checks the bound state and returns it in concrete form.
func (c *Context) resolve() (*pipeline, error) {
	if c.rt == nil {
		return nil, ErrNoRenderTarget
	}
	b := c.Bound()
	if err := b.Check(); err != nil {
		return nil, err
	}

	if _, err := owned[*vertexShader](c, b.VS); err != nil {
		return nil, err
	}
	if _, err := owned[*pixelShader](c, b.PS); err != nil {
		return nil, err
	}
	if b.Depth.State != nil {
		if _, err := owned[*depthStencil](c, b.Depth.State); err != nil {
			return nil, err
		}
	}

	p := &pipeline{
		stride: int(b.Vertices.Stride),
		offset: int(b.Vertices.Offset),
		target: c.rt.img,
	}
	var err error
	if p.layout, err = owned[*inputLayout](c, b.Layout); err != nil {
		return nil, err
	}
	if p.atlas, err = owned[*texture](c, b.View); err != nil {
		return nil, err
	}
	if p.sampler, err = owned[*sampler](c, b.Sampler); err != nil {
		return nil, err
	}
	if p.vb, err = owned[*buffer](c, b.Vertices.Buffer); err != nil {
		return nil, err
	}
	if p.vb.mapped {
		return nil, fmt.Errorf("%w: %v", ErrMapped, p.vb)
	}

	bounds := c.rt.img.Bounds()
	p.vp = dbgtext.Viewport{Width: float32(bounds.Dx()), Height: float32(bounds.Dy()), MaxDepth: 1}
	if len(b.Viewports) > 0 {
		p.vp = b.Viewports[0]
	}
	p.clip = image.Rect(
		int(math.Floor(float64(p.vp.X))),
		int(math.Floor(float64(p.vp.Y))),
		int(math.Ceil(float64(p.vp.X+p.vp.Width))),
		int(math.Ceil(float64(p.vp.Y+p.vp.Height))),
	).Intersect(bounds)

	// No sample is covered with the first sample disabled.
	if b.Blend.SampleMask&1 == 0 {
		p.clip = image.Rectangle{}
	}
	return p, nil
}

// vertex fetches vertex i and runs the glyph vertex stage on it.
func (p *pipeline) vertex(i int) varyings {
	base := p.vb.data[p.offset+i*p.stride:]

	var out varyings
	for _, e := range p.layout.elements {
		b := base[e.Offset:]
		switch e.Location {
		case dbgtext.LocationPosition:
			x := math.Float32frombits(binary.LittleEndian.Uint32(b))
			y := math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
			out.x = p.vp.X + (x+1)*p.vp.Width/2
			out.y = p.vp.Y + (1-y)*p.vp.Height/2
		case dbgtext.LocationTexCoord:
			out.u = float32(binary.LittleEndian.Uint16(b)) / glyph.AtlasWidth
			out.v = float32(binary.LittleEndian.Uint16(b[2:])) / glyph.AtlasHeight
		case dbgtext.LocationColor:
			for k := range out.color {
				out.color[k] = float32(b[k]) / 255
			}
		}
	}
	return out
}

// span returns the number of bytes one vertex reads.
func (l *inputLayout) span() uint64 {
	var n uint64
	for _, e := range l.elements {
		n = max(n, e.Offset+e.Format.Size())
	}
	return n
}

// edge returns twice the signed area of (a, b, (px, py)). It is positive
// when the point lies to the right of a->b on a Y-down screen.
func edge(a, b *varyings, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// topLeft reports whether a->b is a top or left edge of a clockwise
// triangle.
func topLeft(a, b *varyings) bool {
	return (a.y == b.y && b.x > a.x) || b.y < a.y
}

// inside applies the top-left fill rule to an edge function value.
func inside(w float32, tl bool) bool {
	return w > 0 || (w == 0 && tl)
}

// triangle rasterizes one triangle. It reports whether the triangle was
// front facing.
func (p *pipeline) triangle(t *[3]varyings) bool {
	v0, v1, v2 := &t[0], &t[1], &t[2]
	area := edge(v0, v1, v2.x, v2.y)
	if area <= 0 {
		return false
	}

	minX := int(math.Floor(float64(min(v0.x, v1.x, v2.x))))
	maxX := int(math.Ceil(float64(max(v0.x, v1.x, v2.x))))
	minY := int(math.Floor(float64(min(v0.y, v1.y, v2.y))))
	maxY := int(math.Ceil(float64(max(v0.y, v1.y, v2.y))))
	box := image.Rect(minX, minY, maxX+1, maxY+1).Intersect(p.clip)

	tl0, tl1, tl2 := topLeft(v1, v2), topLeft(v2, v0), topLeft(v0, v1)
	for py := box.Min.Y; py < box.Max.Y; py++ {
		cy := float32(py) + 0.5
		for px := box.Min.X; px < box.Max.X; px++ {
			cx := float32(px) + 0.5
			w0 := edge(v1, v2, cx, cy)
			w1 := edge(v2, v0, cx, cy)
			w2 := edge(v0, v1, cx, cy)
			if !inside(w0, tl0) || !inside(w1, tl1) || !inside(w2, tl2) {
				continue
			}
			b0, b1, b2 := w0/area, w1/area, w2/area
			u := b0*v0.u + b1*v1.u + b2*v2.u
			v := b0*v0.v + b1*v1.v + b2*v2.v
			var color [4]float32
			for k := range color {
				color[k] = b0*v0.color[k] + b1*v1.color[k] + b2*v2.color[k]
			}
			p.fragment(px, py, u, v, color)
		}
	}
	return true
}

// fragment runs the glyph pixel stage: texels below full coverage are
// discarded, the rest write coverage times the vertex color.
func (p *pipeline) fragment(px, py int, u, v float32, color [4]float32) {
	coverage := float32(p.sample(u, v)) / 255
	if coverage < 1 {
		return
	}
	i := p.target.PixOffset(px, py)
	for k := range color {
		p.target.Pix[i+k] = unorm8(coverage * color[k])
	}
}

// sample point-samples the atlas at normalized coordinates (u, v).
func (p *pipeline) sample(u, v float32) byte {
	a := p.atlas
	x := address(int(math.Floor(float64(u*float32(a.width)))), a.width, p.sampler.desc.AddressModeU)
	y := address(int(math.Floor(float64(v*float32(a.height)))), a.height, p.sampler.desc.AddressModeV)
	return a.texels[y*a.width+x]
}

// address maps texel coordinate i into [0, n).
func address(i, n int, mode gputypes.AddressMode) int {
	if mode == gputypes.AddressModeClampToEdge {
		return min(max(i, 0), n-1)
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// unorm8 converts a normalized value to 8 bits with rounding.
func unorm8(f float32) uint8 {
	switch {
	case !(f > 0):
		return 0
	case f >= 1:
		return 0xFF
	}
	return uint8(f*255 + 0.5)
}
