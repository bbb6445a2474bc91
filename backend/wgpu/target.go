// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"image"
	"image/color"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/software"

	"github.com/gogpu/dbgtext"
	"github.com/gogpu/dbgtext/backend"
)

func init() {
	backend.Register(backend.BackendWGPU, Open)
}

// preferredBackends are tried in order before falling back to the software
// HAL. A backend is only found when its hal package has been imported.
var preferredBackends = []gputypes.Backend{
	gputypes.BackendVulkan,
	gputypes.BackendMetal,
	gputypes.BackendDX12,
	gputypes.BackendGL,
}

// copyPitchAlignment is the required BytesPerRow alignment of
// texture-to-buffer copies.
const copyPitchAlignment = 256

// halDevice is an opened HAL device together with the instance it came
// from, if any.
type halDevice struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string
}

func (h *halDevice) destroy() {
	h.device.Destroy()
	if h.instance != nil {
		h.instance.Destroy()
	}
}

// openHAL opens the first usable adapter of the preferred backends,
// preferring discrete and integrated GPUs, and falls back to the software
// adapter.
func openHAL() (*halDevice, error) {
	for _, variant := range preferredBackends {
		b, ok := hal.GetBackend(variant)
		if !ok {
			continue
		}
		h, err := openBackend(b)
		if err != nil {
			dbgtext.Logger().Warn("wgpu: backend unusable",
				"backend", variant,
				"err", err)
			continue
		}
		return h, nil
	}

	opened, err := (&software.Adapter{}).Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("wgpu: open software adapter: %w", err)
	}
	return &halDevice{device: opened.Device, queue: opened.Queue, name: "software"}, nil
}

func openBackend(b hal.Backend) (*halDevice, error) {
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	opened, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	return &halDevice{
		instance: instance,
		device:   opened.Device,
		queue:    opened.Queue,
		name:     selected.Info.Name,
	}, nil
}

// target is a backend.Target over a Device it opened itself.
type target struct {
	hal    *halDevice
	dev    *Device
	rt     *RenderTarget
	vp     dbgtext.Viewport
	closed bool
}

// Open opens a HAL device, creates a width x height RGBA render target and
// binds it on the device context together with a full-size viewport.
func Open(width, height int) (backend.Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w, got %dx%d", backend.ErrInvalidSize, width, height)
	}
	h, err := openHAL()
	if err != nil {
		return nil, err
	}
	dev := New(h.device, h.queue)
	rt, err := dev.NewRenderTarget(uint32(width), uint32(height), gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		h.destroy()
		return nil, err
	}
	vp := dbgtext.Viewport{Width: float32(width), Height: float32(height), MaxDepth: 1}
	dev.ctx.SetRenderTarget(rt)
	dev.ctx.SetViewports([]dbgtext.Viewport{vp})

	dbgtext.Logger().Info("wgpu: target opened",
		"adapter", h.name,
		"width", width,
		"height", height)
	return &target{hal: h, dev: dev, rt: rt, vp: vp}, nil
}

func (t *target) Name() string                   { return backend.BackendWGPU }
func (t *target) Device() dbgtext.Device         { return t.dev }
func (t *target) Context() dbgtext.DeviceContext { return t.dev.ctx }
func (t *target) Viewport() dbgtext.Viewport     { return t.vp }

func (t *target) Clear(c color.Color) error {
	if t.closed {
		return backend.ErrClosed
	}
	return t.dev.Clear(t.rt, c)
}

func (t *target) Snapshot() (*image.RGBA, error) {
	if t.closed {
		return nil, backend.ErrClosed
	}
	return t.dev.ReadPixels(t.rt)
}

// Close unbinds everything, releases the render target and the cached
// pipelines, then destroys the HAL device. It reports objects that are still
// alive.
func (t *target) Close() error {
	if t.closed {
		return backend.ErrClosed
	}
	t.closed = true
	t.dev.ctx.ClearState()
	t.rt.Release()
	t.dev.Destroy()
	n := t.dev.LiveObjects()
	t.hal.destroy()
	if n != 0 {
		return fmt.Errorf("%w: %d", ErrLeak, n)
	}
	return nil
}

// Clear fills rt with c using a render pass that clears on load.
func (d *Device) Clear(rt *RenderTarget, c color.Color) error {
	r, g, b, a := c.RGBA()
	encoder, err := d.begin("dbgtext_clear")
	if err != nil {
		return err
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "dbgtext_clear_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    rt.view,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(r) / 0xffff,
				G: float64(g) / 0xffff,
				B: float64(b) / 0xffff,
				A: float64(a) / 0xffff,
			},
		}},
	})
	rp.End()
	return d.finish(encoder)
}

// ReadPixels copies rt back to the CPU. rt must have been created by
// NewRenderTarget.
func (d *Device) ReadPixels(rt *RenderTarget) (*image.RGBA, error) {
	if rt.tex == nil {
		return nil, fmt.Errorf("%w: wrapped render target cannot be read", ErrUnsupported)
	}
	w, h := rt.width, rt.height
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := d.dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "dbgtext_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer d.dev.DestroyBuffer(staging)

	encoder, err := d.begin("dbgtext_readback")
	if err != nil {
		return nil, err
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: rt.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(rt.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: rt.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: rt.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	if err := d.finish(encoder); err != nil {
		return nil, err
	}

	mapping, err := d.dev.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("wgpu: map staging buffer: %w", err)
	}
	data := unsafe.Slice((*byte)(mapping.Ptr), size)
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for row := uint32(0); row < h; row++ {
		src := data[uint64(row)*uint64(alignedBytesPerRow):]
		copy(img.Pix[int(row)*img.Stride:int(row)*img.Stride+int(bytesPerRow)], src[:bytesPerRow])
	}
	if err := d.dev.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}

	if rt.format == gputypes.TextureFormatBGRA8Unorm || rt.format == gputypes.TextureFormatBGRA8UnormSrgb {
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+2] = img.Pix[i+2], img.Pix[i]
		}
	}
	return img, nil
}

// begin creates a command encoder and starts recording. An encoder that
// fails to start is discarded.
func (d *Device) begin(label string) (hal.CommandEncoder, error) {
	encoder, err := d.dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	return encoder, nil
}

// finish ends encoding, submits the command buffer and waits for the GPU.
func (d *Device) finish(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.dev.FreeCommandBuffer(cmdBuf)

	if _, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := d.dev.WaitIdle(); err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	return nil
}
