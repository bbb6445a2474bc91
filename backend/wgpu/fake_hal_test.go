// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

var errInjected = errors.New("injected")

// countingDevice wraps a noop HAL device, counts creations and destructions
// per object kind and can fail the creation of one kind.
type countingDevice struct {
	hal.Device
	created   map[string]int
	destroyed map[string]int
	fail      string
	passes    []*recordedPass
	sources   []hal.ShaderSource
	discards  int
}

func newCountingDevice() *countingDevice {
	return &countingDevice{
		Device:    &noop.Device{},
		created:   make(map[string]int),
		destroyed: make(map[string]int),
	}
}

func (d *countingDevice) create(kind string) error {
	if d.fail == kind {
		return errInjected
	}
	d.created[kind]++
	return nil
}

// balanced reports whether every created object has been destroyed.
func (d *countingDevice) balanced() bool {
	for k, n := range d.created {
		if d.destroyed[k] != n {
			return false
		}
	}
	return true
}

func (d *countingDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	if err := d.create("buffer"); err != nil {
		return nil, err
	}
	return d.Device.CreateBuffer(desc)
}

func (d *countingDevice) DestroyBuffer(b hal.Buffer) {
	d.destroyed["buffer"]++
	d.Device.DestroyBuffer(b)
}

func (d *countingDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	if err := d.create("texture"); err != nil {
		return nil, err
	}
	return d.Device.CreateTexture(desc)
}

func (d *countingDevice) DestroyTexture(t hal.Texture) {
	d.destroyed["texture"]++
	d.Device.DestroyTexture(t)
}

func (d *countingDevice) CreateTextureView(t hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	if err := d.create("texture_view"); err != nil {
		return nil, err
	}
	return d.Device.CreateTextureView(t, desc)
}

func (d *countingDevice) DestroyTextureView(v hal.TextureView) {
	d.destroyed["texture_view"]++
	d.Device.DestroyTextureView(v)
}

func (d *countingDevice) CreateSampler(desc *hal.SamplerDescriptor) (hal.Sampler, error) {
	if err := d.create("sampler"); err != nil {
		return nil, err
	}
	return d.Device.CreateSampler(desc)
}

func (d *countingDevice) DestroySampler(s hal.Sampler) {
	d.destroyed["sampler"]++
	d.Device.DestroySampler(s)
}

func (d *countingDevice) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	if err := d.create("shader_module"); err != nil {
		return nil, err
	}
	d.sources = append(d.sources, desc.Source)
	return d.Device.CreateShaderModule(desc)
}

func (d *countingDevice) DestroyShaderModule(m hal.ShaderModule) {
	d.destroyed["shader_module"]++
	d.Device.DestroyShaderModule(m)
}

func (d *countingDevice) CreateBindGroupLayout(desc *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	if err := d.create("bind_group_layout"); err != nil {
		return nil, err
	}
	return d.Device.CreateBindGroupLayout(desc)
}

func (d *countingDevice) DestroyBindGroupLayout(l hal.BindGroupLayout) {
	d.destroyed["bind_group_layout"]++
	d.Device.DestroyBindGroupLayout(l)
}

func (d *countingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	if err := d.create("bind_group"); err != nil {
		return nil, err
	}
	return d.Device.CreateBindGroup(desc)
}

func (d *countingDevice) DestroyBindGroup(g hal.BindGroup) {
	d.destroyed["bind_group"]++
	d.Device.DestroyBindGroup(g)
}

func (d *countingDevice) CreatePipelineLayout(desc *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	if err := d.create("pipeline_layout"); err != nil {
		return nil, err
	}
	return d.Device.CreatePipelineLayout(desc)
}

func (d *countingDevice) DestroyPipelineLayout(l hal.PipelineLayout) {
	d.destroyed["pipeline_layout"]++
	d.Device.DestroyPipelineLayout(l)
}

func (d *countingDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	if err := d.create("render_pipeline"); err != nil {
		return nil, err
	}
	return d.Device.CreateRenderPipeline(desc)
}

func (d *countingDevice) DestroyRenderPipeline(p hal.RenderPipeline) {
	d.destroyed["render_pipeline"]++
	d.Device.DestroyRenderPipeline(p)
}

func (d *countingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	if d.fail == "command_encoder" {
		return nil, errInjected
	}
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &recordingEncoder{CommandEncoder: enc, dev: d}, nil
}

// recordingEncoder records the render passes it begins.
type recordingEncoder struct {
	hal.CommandEncoder
	dev *countingDevice
}

func (e *recordingEncoder) BeginEncoding(label string) error {
	if e.dev.fail == "begin_encoding" {
		return errInjected
	}
	return e.CommandEncoder.BeginEncoding(label)
}

func (e *recordingEncoder) DiscardEncoding() {
	e.dev.discards++
	e.CommandEncoder.DiscardEncoding()
}

func (e *recordingEncoder) BeginRenderPass(desc *hal.RenderPassDescriptor) hal.RenderPassEncoder {
	p := &recordedPass{
		RenderPassEncoder: e.CommandEncoder.BeginRenderPass(desc),
		load:              desc.ColorAttachments[0].LoadOp,
		clear:             desc.ColorAttachments[0].ClearValue,
	}
	e.dev.passes = append(e.dev.passes, p)
	return p
}

// recordedPass keeps the state a render pass was recorded with.
type recordedPass struct {
	hal.RenderPassEncoder
	load     gputypes.LoadOp
	clear    gputypes.Color
	pipeline hal.RenderPipeline
	group    hal.BindGroup
	vbOffset uint64
	viewport [6]float32
	draws    [][4]uint32
	ended    bool
}

func (p *recordedPass) SetPipeline(pipeline hal.RenderPipeline) {
	p.pipeline = pipeline
	p.RenderPassEncoder.SetPipeline(pipeline)
}

func (p *recordedPass) SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32) {
	p.group = group
	p.RenderPassEncoder.SetBindGroup(index, group, offsets)
}

func (p *recordedPass) SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64) {
	p.vbOffset = offset
	p.RenderPassEncoder.SetVertexBuffer(slot, buffer, offset)
}

func (p *recordedPass) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	p.viewport = [6]float32{x, y, width, height, minDepth, maxDepth}
	p.RenderPassEncoder.SetViewport(x, y, width, height, minDepth, maxDepth)
}

func (p *recordedPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.draws = append(p.draws, [4]uint32{vertexCount, instanceCount, firstVertex, firstInstance})
	p.RenderPassEncoder.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *recordedPass) End() {
	p.ended = true
	p.RenderPassEncoder.End()
}

// countingQueue wraps a noop queue, counts submissions and can fail buffer
// writes.
type countingQueue struct {
	hal.Queue
	submits   int
	failWrite bool
	writes    [][2]uint64 // offset, length
}

func newCountingQueue() *countingQueue {
	return &countingQueue{Queue: &noop.Queue{}}
}

func (q *countingQueue) Submit(cbs []hal.CommandBuffer) (uint64, error) {
	q.submits++
	return q.Queue.Submit(cbs)
}

func (q *countingQueue) WriteBuffer(buffer hal.Buffer, offset uint64, data []byte) error {
	if q.failWrite {
		return errInjected
	}
	q.writes = append(q.writes, [2]uint64{offset, uint64(len(data))})
	return q.Queue.WriteBuffer(buffer, offset, data)
}

// newTestDevice returns a Device over a counting noop device and queue.
func newTestDevice() (*Device, *countingDevice, *countingQueue) {
	hd, hq := newCountingDevice(), newCountingQueue()
	return New(hd, hq), hd, hq
}

// fakeProvider is a gpucontext.DeviceProvider with optional HAL accessors.
type fakeProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p *fakeProvider) Device() gpucontext.Device             { return nil }
func (p *fakeProvider) Queue() gpucontext.Queue               { return nil }
func (p *fakeProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (p *fakeProvider) Adapter() gpucontext.Adapter           { return nil }
func (p *fakeProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{Name: "fake"} }

// halProvider adds the HAL accessors gogpu providers expose.
type halProvider struct{ fakeProvider }

func (p *halProvider) HalDevice() any { return p.device }
func (p *halProvider) HalQueue() any  { return p.queue }
