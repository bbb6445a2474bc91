package soft

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/dbgtext"
	"github.com/gogpu/dbgtext/backend"
)

func init() {
	backend.Register(backend.BackendSoft, Open)
}

// target is a backend.Target over a soft Device.
type target struct {
	dev    *Device
	rt     *RenderTarget
	vp     dbgtext.Viewport
	closed bool
}

// Open creates a device with a width x height render target bound on its
// context, together with a full-size viewport.
func Open(width, height int) (backend.Target, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w, got %dx%d", backend.ErrInvalidSize, width, height)
	}
	dev := New()
	rt, err := dev.NewRenderTarget(width, height)
	if err != nil {
		return nil, err
	}
	vp := dbgtext.Viewport{Width: float32(width), Height: float32(height), MaxDepth: 1}
	dev.ctx.SetRenderTarget(rt)
	dev.ctx.SetViewports([]dbgtext.Viewport{vp})
	return &target{dev: dev, rt: rt, vp: vp}, nil
}

func (t *target) Name() string                   { return backend.BackendSoft }
func (t *target) Device() dbgtext.Device         { return t.dev }
func (t *target) Context() dbgtext.DeviceContext { return t.dev.ctx }
func (t *target) Viewport() dbgtext.Viewport     { return t.vp }

func (t *target) Clear(c color.Color) error {
	if t.closed {
		return backend.ErrClosed
	}
	t.rt.Clear(c)
	return nil
}

func (t *target) Snapshot() (*image.RGBA, error) {
	if t.closed {
		return nil, backend.ErrClosed
	}
	src := t.rt.Image()
	img := image.NewRGBA(src.Bounds())
	copy(img.Pix, src.Pix)
	return img, nil
}

// Close unbinds everything from the context and releases the render
// target. It reports objects that are still alive afterwards.
func (t *target) Close() error {
	if t.closed {
		return backend.ErrClosed
	}
	t.closed = true
	t.dev.ctx.ClearState()
	t.rt.Release()
	if n := t.dev.LiveObjects(); n != 0 {
		return fmt.Errorf("%w: %d", ErrLeak, n)
	}
	return nil
}
