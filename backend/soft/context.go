package soft

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dbgtext"
	"github.com/gogpu/dbgtext/internal/binding"
)

// Context is the immediate device context of a Device. It implements
// dbgtext.DeviceContext.
type Context struct {
	binding.State

	dev   *Device
	rt    *RenderTarget
	draws int
}

func newContext(d *Device) *Context {
	c := &Context{dev: d}
	c.State.ClearState()
	return c
}

// RenderTarget returns the bound render target, or nil.
func (c *Context) RenderTarget() dbgtext.RenderTargetView {
	if c.rt == nil {
		return nil
	}
	c.rt.AddRef()
	return c.rt
}

// SetRenderTarget binds rt. A nil rt unbinds the render target.
func (c *Context) SetRenderTarget(rt *RenderTarget) {
	if rt != nil {
		rt.AddRef()
	}
	if c.rt != nil {
		c.rt.Release()
	}
	c.rt = rt
}

// ClearState unbinds every object, including the render target, and
// resets the context to its initial state.
func (c *Context) ClearState() {
	c.State.ClearState()
	c.SetRenderTarget(nil)
}

// Draws returns the number of successful Draw calls.
func (c *Context) Draws() int { return c.draws }

// owned resolves r to its concrete type and checks that it was created by
// this context's device.
func owned[T interface{ Owner() *Device }](c *Context, r dbgtext.Resource) (T, error) {
	return binding.Owned[T](r, c.dev)
}

// Map maps buf for writing. The previous contents are undefined.
func (c *Context) Map(buf dbgtext.Buffer, mode gputypes.MapMode) ([]byte, error) {
	if c.dev.failMap != nil {
		return nil, c.dev.failMap
	}
	b, err := owned[*buffer](c, buf)
	if err != nil {
		return nil, err
	}
	if mode != gputypes.MapModeWrite || b.usage&gputypes.BufferUsageMapWrite == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNotMappable, b)
	}
	if b.mapped {
		return nil, fmt.Errorf("%w: %v", ErrMapped, b)
	}
	b.mapped = true
	return b.data, nil
}

// Unmap ends the mapping of buf. Unmapping a buffer that is not mapped
// does nothing.
func (c *Context) Unmap(buf dbgtext.Buffer) {
	if b, err := owned[*buffer](c, buf); err == nil {
		b.mapped = false
	}
}
