// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/dbgtext"
)

// Device creates dbgtext objects on a hal.Device and owns one immediate
// Context.
//
// A Device is not safe for concurrent use.
type Device struct {
	dev   hal.Device
	queue hal.Queue
	ctx   *Context
	live  int
	cache pipelineCache
}

// New creates a device on an opened HAL device and queue. The caller keeps
// ownership of dev and queue.
func New(dev hal.Device, queue hal.Queue) *Device {
	d := &Device{dev: dev, queue: queue}
	d.ctx = newContext(d)
	d.cache.init(d)
	return d
}

// NewFromProvider creates a device on the HAL objects of a gogpu device
// provider. The provider must implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHAL, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHAL, hp.HalQueue())
	}

	info := provider.AdapterInfo()
	dbgtext.Logger().Debug("wgpu: device from provider",
		"adapter", info.Name,
		"surface_format", provider.SurfaceFormat())
	return New(device, queue), nil
}

// Context returns the immediate device context.
func (d *Device) Context() *Context { return d.ctx }

// LiveObjects returns the number of objects that have not been destroyed.
func (d *Device) LiveObjects() int { return d.live }

// Destroy drops every cached pipeline and bind group. Objects created by
// the device must be released separately. The HAL device is not destroyed.
func (d *Device) Destroy() {
	d.cache.destroy()
}

// object is the reference-counted base of every device object. free
// destroys the HAL objects once the last reference is gone.
type object struct {
	dev   *Device
	kind  dbgtext.ResourceKind
	label string
	refs  int
	free  func()
}

func (o *object) Kind() dbgtext.ResourceKind { return o.kind }

func (o *object) AddRef() {
	if o.refs <= 0 {
		panic(fmt.Sprintf("wgpu: AddRef on destroyed %s %q", o.kind, o.label))
	}
	o.refs++
}

func (o *object) Release() {
	if o.refs <= 0 {
		panic(fmt.Sprintf("wgpu: Release on destroyed %s %q", o.kind, o.label))
	}
	o.refs--
	if o.refs > 0 {
		return
	}
	o.dev.cache.evict(o)
	if o.free != nil {
		o.free()
	}
	o.dev.live--
}

func (o *object) String() string { return fmt.Sprintf("%s %q", o.kind, o.label) }

// base returns o itself, which identifies the object in cache keys.
func (o *object) base() *object { return o }

// Owner returns the device that created o.
func (o *object) Owner() *Device { return o.dev }

func (d *Device) newObject(kind dbgtext.ResourceKind, label string, free func()) object {
	d.live++
	return object{dev: d, kind: kind, label: label, refs: 1, free: free}
}

type shaderModule struct {
	object
	module hal.ShaderModule
	entry  string
}

type inputLayout struct {
	object
	attributes []gputypes.VertexAttribute
}

// span returns the number of bytes one vertex reads.
func (l *inputLayout) span() uint64 {
	var n uint64
	for _, a := range l.attributes {
		n = max(n, a.Offset+a.Format.Size())
	}
	return n
}

type buffer struct {
	object
	buf      hal.Buffer
	size     uint64
	usage    gputypes.BufferUsage
	shadow   []byte
	uploaded []byte // bytes last written to buf
	mapped   bool
	err      error // last upload failure, reported by Draw
}

type textureView struct {
	object
	tex  hal.Texture
	view hal.TextureView
}

type sampler struct {
	object
	sampler hal.Sampler
}

type depthStencil struct {
	object
	desc dbgtext.DepthStencilDesc
}

// createShader creates a shader module from src. Both forms are passed
// on; each HAL backend picks the one it consumes.
func (d *Device) createShader(kind dbgtext.ResourceKind, src *dbgtext.ShaderSource) (*shaderModule, error) {
	if src == nil || (src.WGSL == "" && len(src.SPIRV) == 0) {
		return nil, fmt.Errorf("%w: empty shader source", ErrUnsupported)
	}
	desc := &hal.ShaderModuleDescriptor{
		Label:  src.Label,
		Source: hal.ShaderSource{WGSL: src.WGSL, SPIRV: src.SPIRV},
	}
	module, err := d.dev.CreateShaderModule(desc)
	if err != nil {
		return nil, fmt.Errorf("wgpu: create shader module %q: %w", src.Label, err)
	}
	return &shaderModule{
		object: d.newObject(kind, src.Label, func() { d.dev.DestroyShaderModule(module) }),
		module: module,
		entry:  src.EntryPoint,
	}, nil
}

// CreateVertexShader creates a shader module whose vertex entry point is
// src.EntryPoint.
func (d *Device) CreateVertexShader(src *dbgtext.ShaderSource) (dbgtext.VertexShader, error) {
	s, err := d.createShader(dbgtext.KindVertexShader, src)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreatePixelShader creates a shader module whose fragment entry point is
// src.EntryPoint.
func (d *Device) CreatePixelShader(src *dbgtext.ShaderSource) (dbgtext.PixelShader, error) {
	s, err := d.createShader(dbgtext.KindPixelShader, src)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateInputLayout converts elements to vertex attributes. vs is not
// inspected; mismatches with the program surface when the pipeline is
// built.
func (d *Device) CreateInputLayout(elements []dbgtext.InputElement, _ *dbgtext.ShaderSource) (dbgtext.InputLayout, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: empty input layout", ErrUnsupported)
	}
	attrs := make([]gputypes.VertexAttribute, 0, len(elements))
	for _, e := range elements {
		if e.Format.Size() == 0 {
			return nil, fmt.Errorf("%w: vertex format %v", ErrUnsupported, e.Format)
		}
		if slices.ContainsFunc(attrs, func(a gputypes.VertexAttribute) bool { return a.ShaderLocation == e.Location }) {
			return nil, fmt.Errorf("%w: location %d used twice", ErrUnsupported, e.Location)
		}
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         e.Format,
			Offset:         e.Offset,
			ShaderLocation: e.Location,
		})
	}
	return &inputLayout{
		object:     d.newObject(dbgtext.KindInputLayout, "input_layout", nil),
		attributes: attrs,
	}, nil
}

// CreateBuffer creates a vertex buffer. Write-map usage is served by a CPU
// shadow copy; the HAL buffer gets copy-destination usage instead.
func (d *Device) CreateBuffer(desc *dbgtext.BufferDesc) (dbgtext.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("%w: zero-sized buffer", ErrUnsupported)
	}
	if desc.Usage&gputypes.BufferUsageVertex == 0 {
		return nil, fmt.Errorf("%w: buffer usage %v", ErrUnsupported, desc.Usage)
	}
	usage := desc.Usage&^(gputypes.BufferUsageMapWrite|gputypes.BufferUsageMapRead) | gputypes.BufferUsageCopyDst
	buf, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create buffer %q: %w", desc.Label, err)
	}
	b := &buffer{
		object: d.newObject(dbgtext.KindBuffer, desc.Label, func() { d.dev.DestroyBuffer(buf) }),
		buf:    buf,
		size:   desc.Size,
		usage:  desc.Usage,
	}
	if desc.Usage&gputypes.BufferUsageMapWrite != 0 {
		b.shadow = make([]byte, desc.Size)
		b.uploaded = make([]byte, desc.Size)
	}
	return b, nil
}

// CreateTexture creates a single-channel texture, uploads texels and
// returns a view of it.
func (d *Device) CreateTexture(desc *dbgtext.TextureDesc, texels []byte) (dbgtext.ShaderResourceView, error) {
	if desc.Format != gputypes.TextureFormatR8Unorm {
		return nil, fmt.Errorf("%w: texture format %v", ErrUnsupported, desc.Format)
	}
	if desc.Width == 0 || desc.Height == 0 || len(texels) != int(desc.Width)*int(desc.Height) {
		return nil, fmt.Errorf("%w: %d texels for %dx%d texture", ErrUnsupported, len(texels), desc.Width, desc.Height)
	}

	size := hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1}
	tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", desc.Label, err)
	}
	err = d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		texels,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: desc.Width, RowsPerImage: desc.Height},
		&size,
	)
	if err != nil {
		d.dev.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: upload texture %q: %w", desc.Label, err)
	}
	view, err := d.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           desc.Label + "_view",
		Format:          desc.Format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		d.dev.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create texture view %q: %w", desc.Label, err)
	}
	return &textureView{
		object: d.newObject(dbgtext.KindShaderResourceView, desc.Label, func() {
			d.dev.DestroyTextureView(view)
			d.dev.DestroyTexture(tex)
		}),
		tex:  tex,
		view: view,
	}, nil
}

// CreateSamplerState creates a sampler.
func (d *Device) CreateSamplerState(desc *dbgtext.SamplerDesc) (dbgtext.SamplerState, error) {
	s, err := d.dev.CreateSampler(&hal.SamplerDescriptor{
		Label:        desc.Label,
		AddressModeU: desc.AddressModeU,
		AddressModeV: desc.AddressModeV,
		AddressModeW: desc.AddressModeW,
		MagFilter:    desc.MagFilter,
		MinFilter:    desc.MinFilter,
		MipmapFilter: desc.MipmapFilter,
		LodMinClamp:  desc.LodMinClamp,
		LodMaxClamp:  desc.LodMaxClamp,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create sampler %q: %w", desc.Label, err)
	}
	return &sampler{
		object:  d.newObject(dbgtext.KindSamplerState, desc.Label, func() { d.dev.DestroySampler(s) }),
		sampler: s,
	}, nil
}

// CreateDepthStencilState creates a depth-stencil state. Render passes have
// no depth attachment, so the state must disable depth and stencil testing.
func (d *Device) CreateDepthStencilState(desc *dbgtext.DepthStencilDesc) (dbgtext.DepthStencilState, error) {
	if desc.DepthTestEnabled || desc.DepthWriteEnabled || desc.StencilEnabled {
		return nil, fmt.Errorf("%w: depth or stencil testing", ErrUnsupported)
	}
	return &depthStencil{
		object: d.newObject(dbgtext.KindDepthStencilState, desc.Label, nil),
		desc:   *desc,
	}, nil
}

// RenderTarget is a color attachment a Context can draw into.
type RenderTarget struct {
	object
	tex    hal.Texture // nil for wrapped views
	view   hal.TextureView
	format gputypes.TextureFormat
	width  uint32
	height uint32
}

// NewRenderTarget creates an offscreen render target that can be copied
// from.
func (d *Device) NewRenderTarget(width, height uint32, format gputypes.TextureFormat) (*RenderTarget, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d render target", ErrUnsupported, width, height)
	}
	tex, err := d.dev.CreateTexture(&hal.TextureDescriptor{
		Label:         "dbgtext_render_target",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create render target: %w", err)
	}
	view, err := d.dev.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           "dbgtext_render_target_view",
		Format:          format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		d.dev.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create render target view: %w", err)
	}
	return &RenderTarget{
		object: d.newObject(dbgtext.KindRenderTargetView, "render_target", func() {
			d.dev.DestroyTextureView(view)
			d.dev.DestroyTexture(tex)
		}),
		tex:    tex,
		view:   view,
		format: format,
		width:  width,
		height: height,
	}, nil
}

// WrapRenderTarget wraps a texture view owned by the caller, such as a
// surface texture. The view is not destroyed when the render target is.
func (d *Device) WrapRenderTarget(view hal.TextureView, format gputypes.TextureFormat, width, height uint32) *RenderTarget {
	return &RenderTarget{
		object: d.newObject(dbgtext.KindRenderTargetView, "wrapped_render_target", nil),
		view:   view,
		format: format,
		width:  width,
		height: height,
	}
}

// Size returns the render target size in pixels.
func (rt *RenderTarget) Size() (width, height uint32) { return rt.width, rt.height }

// Format returns the texture format of the render target.
func (rt *RenderTarget) Format() gputypes.TextureFormat { return rt.format }
