package dbgtext

import (
	"bytes"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dbgtext/glyph"
)

// Context batches debug text for one device context and draws it with a
// single draw call per Render.
//
// A Context is not safe for concurrent use.
type Context struct {
	dc       DeviceContext
	opts     options
	renderer batchRenderer
	batch    batch
	scratch  []byte
	stats    Stats
	closed   bool
}

// New creates a Context that can hold capacity glyphs per frame.
//
// It creates the glyph program, input layout, vertex buffer, atlas
// texture, sampler and depth-stencil state on dev. If any of them fails,
// everything created so far is released and the device error is returned
// wrapped.
func New(dev Device, dc DeviceContext, capacity int, opts ...Option) (*Context, error) {
	if dev == nil || dc == nil {
		return nil, ErrNoDevice
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidCapacity, capacity)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.table == nil {
		o.table = glyph.Default()
	}
	if o.atlas == nil {
		o.atlas = glyph.DefaultAtlas()
	}
	// Texture coordinates are normalized by the fixed atlas size in the
	// glyph program.
	if a := o.atlas; a.Width != glyph.AtlasWidth || a.Height != glyph.AtlasHeight || len(a.Texels) != a.Width*a.Height {
		return nil, fmt.Errorf("dbgtext: %w, got %dx%d with %d texels", glyph.ErrAtlasSize, a.Width, a.Height, len(a.Texels))
	}
	if err := o.table.Validate(o.atlas.Width, o.atlas.Height); err != nil {
		return nil, fmt.Errorf("dbgtext: %w", err)
	}

	c := &Context{
		dc:   dc,
		opts: o,
		batch: batch{
			dc:       dc,
			table:    o.table,
			capacity: capacity,
		},
	}
	if err := c.init(dev); err != nil {
		c.release()
		c.closed = true
		return nil, err
	}

	c.logger().Debug("dbgtext: context created",
		"capacity", capacity,
		"buffer_bytes", bufferSize(capacity),
		"overflow", o.overflow,
		"charmap", o.charmap)
	return c, nil
}

// init creates the device objects in dependency order.
func (c *Context) init(dev Device) error {
	if err := c.renderer.initShaders(dev); err != nil {
		return err
	}

	buf, err := dev.CreateBuffer(&BufferDesc{
		Label: "dbgtext_vertices",
		Size:  bufferSize(c.batch.capacity),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageMapWrite,
	})
	if err != nil {
		return fmt.Errorf("dbgtext: create vertex buffer: %w", err)
	}
	c.batch.buf = buf

	return c.renderer.initAtlas(dev, c.opts.atlas)
}

// release drops every device object in reverse creation order.
func (c *Context) release() {
	c.renderer.destroyAtlas()
	release(c.batch.buf)
	c.batch.buf = nil
	c.renderer.destroyShaders()
}

// Destroy releases all device objects. The vertex buffer is unmapped first
// if a frame is still open. Destroy is idempotent; every other method
// returns ErrNoDevice afterwards.
func (c *Context) Destroy() {
	if c.closed {
		return
	}
	c.batch.close()
	c.release()
	c.closed = true
	c.logger().Debug("dbgtext: context destroyed", "stats", c.stats)
}

func (c *Context) logger() *slog.Logger {
	if c.opts.logger != nil {
		return c.opts.logger
	}
	return Logger()
}

// Print appends text at pixel (x, y) of vp. Each rune is mapped to one
// glyph through the context's code page; runes the code page cannot
// represent print as the replacement glyph. Text ends at the first NUL.
//
// Glyphs advance by a fixed width of 8 pixels. y is the top of the line.
func (c *Context) Print(vp Viewport, text string, x, y int, color uint32) error {
	return c.PrintN(vp, -1, text, x, y, color)
}

// PrintN is like Print but appends at most maxChars glyphs. A negative
// maxChars means no limit.
func (c *Context) PrintN(vp Viewport, maxChars int, text string, x, y int, color uint32) error {
	if c.closed {
		return ErrNoDevice
	}
	return c.print(vp, c.encode(text, maxChars), x, y, color)
}

// PrintBytes appends raw glyph codes without code page mapping, stopping
// at the first NUL or after maxChars codes. A negative maxChars means no
// limit.
func (c *Context) PrintBytes(vp Viewport, maxChars int, text []byte, x, y int, color uint32) error {
	if c.closed {
		return ErrNoDevice
	}
	if i := bytes.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	if maxChars >= 0 && len(text) > maxChars {
		text = text[:maxChars]
	}
	return c.print(vp, text, x, y, color)
}

// Printf formats according to a format specifier and prints the result.
func (c *Context) Printf(vp Viewport, x, y int, color uint32, format string, args ...any) error {
	return c.Print(vp, fmt.Sprintf(format, args...), x, y, color)
}

// encode maps text to glyph codes in the scratch buffer.
func (c *Context) encode(text string, maxChars int) []byte {
	codes := c.scratch[:0]
	for _, r := range text {
		if maxChars >= 0 && len(codes) == maxChars {
			break
		}
		code, ok := c.opts.charmap.EncodeRune(r)
		if !ok || r == utf8.RuneError {
			code = c.opts.replacement
		}
		if code == 0 {
			break
		}
		codes = append(codes, code)
	}
	c.scratch = codes
	return codes
}

// print appends codes to the batch. codes holds no NUL.
func (c *Context) print(vp Viewport, codes []byte, x, y int, color uint32) error {
	if !(vp.Width > 0 && vp.Height > 0) {
		return fmt.Errorf("%w: %vx%v", ErrInvalidViewport, vp.Width, vp.Height)
	}
	if err := c.batch.open(); err != nil {
		c.stats.MapFailures++
		c.stats.GlyphsDropped += len(codes)
		c.logger().Warn("dbgtext: map vertex buffer failed", "err", err)
		return err
	}
	if c.opts.overflow == OverflowReject && len(codes) > c.batch.remaining() {
		return c.overflow(len(codes), len(codes))
	}

	n := c.batch.add(vp, codes, x, y, color)
	c.stats.GlyphsAppended += n
	if n < len(codes) {
		return c.overflow(len(codes)-n, len(codes))
	}
	return nil
}

func (c *Context) overflow(dropped, requested int) error {
	c.stats.GlyphsDropped += dropped
	c.logger().Warn("dbgtext: glyph capacity exceeded",
		"capacity", c.batch.capacity,
		"requested", requested,
		"dropped", dropped,
		"policy", c.opts.overflow)
	return fmt.Errorf("%w: %d of %d glyphs dropped", ErrCapacityExceeded, dropped, requested)
}

// Render draws every glyph appended since the batch was last opened.
//
// The vertex buffer is unmapped first, even when Render then fails because
// no render target is bound. With maintainState the device context state
// touched by drawing is captured before and restored after the draw, see
// [StateGuard]. Otherwise the glyph pipeline stays bound.
func (c *Context) Render(maintainState bool) error {
	if c.closed {
		return ErrNoDevice
	}
	c.batch.close()

	rtv := c.dc.RenderTarget()
	if rtv == nil {
		return ErrNoRenderTarget
	}
	rtv.Release()

	var guard StateGuard
	if maintainState {
		guard.Capture(c.dc)
		defer guard.Release()
	}

	c.renderer.configure(c.dc, c.batch.buf)
	err := c.renderer.draw(c.dc, c.batch.count)
	guard.Restore(c.dc)

	c.stats.Renders++
	if err != nil {
		c.logger().Warn("dbgtext: draw failed", "err", err)
		return err
	}
	c.stats.DrawCalls++
	c.stats.VerticesDrawn += c.batch.count
	c.logger().Debug("dbgtext: rendered",
		"vertices", c.batch.count,
		"maintain_state", maintainState)
	return nil
}

// Capacity returns the number of glyphs a frame can hold.
func (c *Context) Capacity() int { return c.batch.capacity }

// VertexCount returns the number of vertices in the current batch.
func (c *Context) VertexCount() int { return c.batch.count }

// Mapped reports whether the vertex buffer is currently mapped for writing.
func (c *Context) Mapped() bool { return c.batch.mapped() }

// Stats returns the work counters of the context.
func (c *Context) Stats() Stats { return c.stats }
