// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/dbgtext"
)

// drawState is the bound state of a Context resolved to concrete objects.
type drawState struct {
	vs, ps     *shaderModule
	layout     *inputLayout
	view       *textureView
	sampler    *sampler
	vb         *buffer
	stride     uint32
	offset     uint32
	rt         *RenderTarget
	vp         dbgtext.Viewport
	sampleMask uint32
	factor     gputypes.Color
	stencilRef uint32
}

// Draw records and submits a render pass that draws vertexCount vertices
// starting at startVertex as a triangle list. It waits for the GPU before
// returning.
func (c *Context) Draw(vertexCount, startVertex uint32) error {
	s, err := c.resolve()
	if err != nil {
		return err
	}
	if err := s.checkRange(vertexCount, startVertex); err != nil {
		return err
	}
	pipeline, err := c.dev.cache.pipeline(s)
	if err != nil {
		return err
	}
	group, err := c.dev.cache.bindGroup(s)
	if err != nil {
		return err
	}
	if err := c.submit(s, pipeline, group, vertexCount, startVertex); err != nil {
		return err
	}
	c.draws++
	dbgtext.Logger().Debug("wgpu: draw",
		"vertices", vertexCount,
		"start", startVertex)
	return nil
}

// resolve checks the bound state and returns it in concrete form.
func (c *Context) resolve() (*drawState, error) {
	if c.rt == nil {
		return nil, ErrNoRenderTarget
	}
	b := c.Bound()
	if err := b.Check(); err != nil {
		return nil, err
	}
	if b.Depth.State != nil {
		if _, err := owned[*depthStencil](c, b.Depth.State); err != nil {
			return nil, err
		}
	}

	s := &drawState{
		stride:     b.Vertices.Stride,
		offset:     b.Vertices.Offset,
		rt:         c.rt,
		sampleMask: b.Blend.SampleMask,
		factor:     b.Blend.Factor,
		stencilRef: b.Depth.StencilRef,
	}
	var err error
	if s.vs, err = owned[*shaderModule](c, b.VS); err != nil {
		return nil, err
	}
	if s.ps, err = owned[*shaderModule](c, b.PS); err != nil {
		return nil, err
	}
	if s.vs.kind != dbgtext.KindVertexShader || s.ps.kind != dbgtext.KindPixelShader {
		return nil, fmt.Errorf("%w: shader stages %v and %v", ErrUnsupported, s.vs, s.ps)
	}
	if s.layout, err = owned[*inputLayout](c, b.Layout); err != nil {
		return nil, err
	}
	if s.view, err = owned[*textureView](c, b.View); err != nil {
		return nil, err
	}
	if s.sampler, err = owned[*sampler](c, b.Sampler); err != nil {
		return nil, err
	}
	if s.vb, err = owned[*buffer](c, b.Vertices.Buffer); err != nil {
		return nil, err
	}
	if s.vb.mapped {
		return nil, fmt.Errorf("%w: %v", ErrMapped, s.vb)
	}
	if s.vb.err != nil {
		return nil, fmt.Errorf("wgpu: vertex buffer %q: %w", s.vb.label, s.vb.err)
	}

	s.vp = dbgtext.Viewport{Width: float32(c.rt.width), Height: float32(c.rt.height), MaxDepth: 1}
	if len(b.Viewports) > 0 {
		s.vp = b.Viewports[0]
	}
	return s, nil
}

// checkRange reports whether vertices [start, start+count) lie inside the
// bound vertex buffer.
func (s *drawState) checkRange(count, start uint32) error {
	if count == 0 {
		return nil
	}
	end := uint64(start) + uint64(count)
	need := uint64(s.offset) + (end-1)*uint64(s.stride) + s.layout.span()
	if need > s.vb.size {
		return fmt.Errorf("%w: vertices [%d, %d) need %d bytes, buffer has %d",
			ErrVertexRange, start, end, need, s.vb.size)
	}
	return nil
}

// submit encodes one render pass that loads and stores the render target,
// then submits it and waits for the GPU.
func (c *Context) submit(s *drawState, pipeline hal.RenderPipeline, group hal.BindGroup, vertexCount, startVertex uint32) error {
	encoder, err := c.dev.begin("dbgtext_draw")
	if err != nil {
		return err
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "dbgtext_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    s.rt.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	rp.SetPipeline(pipeline)
	rp.SetBindGroup(0, group, nil)
	rp.SetVertexBuffer(0, s.vb.buf, uint64(s.offset))
	rp.SetViewport(s.vp.X, s.vp.Y, s.vp.Width, s.vp.Height, s.vp.MinDepth, s.vp.MaxDepth)
	rp.SetBlendConstant(&s.factor)
	rp.SetStencilReference(s.stencilRef)
	rp.Draw(vertexCount, 1, startVertex, 0)
	rp.End()
	return c.dev.finish(encoder)
}
