// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dbgtext"
	"github.com/gogpu/dbgtext/internal/binding"
)

// uploadAlignment is the granularity of queue buffer writes.
const uploadAlignment = 4

// Context records the bindings of a Device and submits one render pass per
// Draw. It implements dbgtext.DeviceContext.
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

// Map returns the CPU shadow of buf for writing. The previous contents are
// undefined.
func (c *Context) Map(buf dbgtext.Buffer, mode gputypes.MapMode) ([]byte, error) {
	b, err := owned[*buffer](c, buf)
	if err != nil {
		return nil, err
	}
	if mode != gputypes.MapModeWrite || b.shadow == nil {
		return nil, fmt.Errorf("%w: %v", ErrNotMappable, b)
	}
	if b.mapped {
		return nil, fmt.Errorf("%w: %v", ErrMapped, b)
	}
	b.mapped = true
	return b.shadow, nil
}

// Unmap ends the mapping of buf and uploads the bytes of the shadow copy
// that differ from the last upload. An upload failure is reported by the
// next Draw from buf. Unmapping a buffer that is not mapped does nothing.
func (c *Context) Unmap(buf dbgtext.Buffer) {
	b, err := owned[*buffer](c, buf)
	if err != nil || !b.mapped {
		return
	}
	b.mapped = false

	lo, hi := changedRange(b.uploaded, b.shadow)
	if lo == hi {
		b.err = nil
		return
	}
	b.err = c.dev.queue.WriteBuffer(b.buf, uint64(lo), b.shadow[lo:hi])
	if b.err != nil {
		dbgtext.Logger().Warn("wgpu: upload vertex buffer failed", "buffer", b.label, "err", b.err)
		return
	}
	copy(b.uploaded[lo:hi], b.shadow[lo:hi])
}

// changedRange returns the smallest range [lo, hi) outside which prev and
// next are equal, widened to uploadAlignment. lo == hi when nothing
// changed.
func changedRange(prev, next []byte) (lo, hi int) {
	n := len(next)
	for lo < n && prev[lo] == next[lo] {
		lo++
	}
	if lo == n {
		return n, n
	}
	hi = n
	for hi > lo && prev[hi-1] == next[hi-1] {
		hi--
	}
	lo &^= uploadAlignment - 1
	hi = min((hi+uploadAlignment-1)&^(uploadAlignment-1), n)
	return lo, hi
}
