// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/dbgtext"
	"github.com/gogpu/dbgtext/shader"
)

// pipelineKey identifies a render pipeline. Pipelines are immutable in
// WebGPU, so every binding that ends up in the descriptor is part of the
// key.
type pipelineKey struct {
	vs, ps     *object
	layout     *object
	stride     uint32
	format     gputypes.TextureFormat
	sampleMask uint32
}

type bindGroupKey struct {
	view, sampler *object
}

// pipelineCache owns the render pipelines and bind groups built for Draw.
// Entries are evicted when one of the objects in their key is destroyed.
type pipelineCache struct {
	dev *Device

	groupLayout hal.BindGroupLayout
	pipeLayout  hal.PipelineLayout

	pipelines  map[pipelineKey]hal.RenderPipeline
	bindGroups map[bindGroupKey]hal.BindGroup
}

func (c *pipelineCache) init(d *Device) {
	c.dev = d
	c.pipelines = make(map[pipelineKey]hal.RenderPipeline)
	c.bindGroups = make(map[bindGroupKey]hal.BindGroup)
}

// ensureLayouts creates the bind group and pipeline layouts of the glyph
// program:
//
//	binding 0: texture_2d<f32> (fragment)
//	binding 1: sampler (fragment)
func (c *pipelineCache) ensureLayouts() error {
	if c.pipeLayout != nil {
		return nil
	}
	d := c.dev.dev
	groupLayout, err := d.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "dbgtext_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    shader.AtlasBinding,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    shader.SamplerBinding,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	pipeLayout, err := d.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "dbgtext_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{groupLayout},
	})
	if err != nil {
		d.DestroyBindGroupLayout(groupLayout)
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	c.groupLayout, c.pipeLayout = groupLayout, pipeLayout
	return nil
}

// pipeline returns the render pipeline for the resolved state, building it
// on first use.
func (c *pipelineCache) pipeline(s *drawState) (hal.RenderPipeline, error) {
	key := pipelineKey{
		vs:         s.vs.base(),
		ps:         s.ps.base(),
		layout:     s.layout.base(),
		stride:     s.stride,
		format:     s.rt.format,
		sampleMask: s.sampleMask,
	}
	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}
	if err := c.ensureLayouts(); err != nil {
		return nil, err
	}

	p, err := c.dev.dev.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "dbgtext_pipeline",
		Layout: c.pipeLayout,
		Vertex: hal.VertexState{
			Module:     s.vs.module,
			EntryPoint: s.vs.entry,
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: uint64(s.stride),
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes:  s.layout.attributes,
			}},
		},
		Fragment: &hal.FragmentState{
			Module:     s.ps.module,
			EntryPoint: s.ps.entry,
			Targets: []gputypes.ColorTargetState{{
				Format:    s.rt.format,
				Blend:     nil,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCW,
			CullMode:  gputypes.CullModeBack,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  uint64(s.sampleMask),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create render pipeline: %w", err)
	}
	c.pipelines[key] = p
	dbgtext.Logger().Debug("wgpu: render pipeline created",
		"format", s.rt.format,
		"stride", s.stride,
		"cached", len(c.pipelines))
	return p, nil
}

// bindGroup returns the bind group for the resolved atlas view and sampler.
func (c *pipelineCache) bindGroup(s *drawState) (hal.BindGroup, error) {
	key := bindGroupKey{view: s.view.base(), sampler: s.sampler.base()}
	if g, ok := c.bindGroups[key]; ok {
		return g, nil
	}
	if err := c.ensureLayouts(); err != nil {
		return nil, err
	}
	g, err := c.dev.dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "dbgtext_bind_group",
		Layout: c.groupLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: shader.AtlasBinding, Resource: gputypes.TextureViewBinding{TextureView: s.view.view.NativeHandle()}},
			{Binding: shader.SamplerBinding, Resource: gputypes.SamplerBinding{Sampler: s.sampler.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group: %w", err)
	}
	c.bindGroups[key] = g
	return g, nil
}

// evict destroys every cached entry that refers to o.
func (c *pipelineCache) evict(o *object) {
	for k, p := range c.pipelines {
		if k.vs == o || k.ps == o || k.layout == o {
			c.dev.dev.DestroyRenderPipeline(p)
			delete(c.pipelines, k)
		}
	}
	for k, g := range c.bindGroups {
		if k.view == o || k.sampler == o {
			c.dev.dev.DestroyBindGroup(g)
			delete(c.bindGroups, k)
		}
	}
}

// destroy releases every cached HAL object in reverse creation order.
func (c *pipelineCache) destroy() {
	for k, g := range c.bindGroups {
		c.dev.dev.DestroyBindGroup(g)
		delete(c.bindGroups, k)
	}
	for k, p := range c.pipelines {
		c.dev.dev.DestroyRenderPipeline(p)
		delete(c.pipelines, k)
	}
	if c.pipeLayout != nil {
		c.dev.dev.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.groupLayout != nil {
		c.dev.dev.DestroyBindGroupLayout(c.groupLayout)
		c.groupLayout = nil
	}
}

// size returns the number of cached pipelines and bind groups.
func (c *pipelineCache) size() (pipelines, bindGroups int) {
	return len(c.pipelines), len(c.bindGroups)
}
