package soft

import (
	"errors"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dbgtext"
	"github.com/gogpu/dbgtext/backend"
	"github.com/gogpu/dbgtext/glyph"
)

func openTarget(t *testing.T, width, height int) backend.Target {
	t.Helper()
	tg, err := backend.Open(backend.BackendSoft, width, height)
	if err != nil {
		t.Fatalf("backend.Open: %v", err)
	}
	t.Cleanup(func() {
		if err := tg.Close(); err != nil && !errors.Is(err, backend.ErrClosed) {
			t.Errorf("Close: %v", err)
		}
	})
	return tg
}

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendSoft) {
		t.Fatalf("%q backend not registered", backend.BackendSoft)
	}
	tg := openTarget(t, 32, 16)
	if tg.Name() != backend.BackendSoft {
		t.Errorf("Name() = %q, want %q", tg.Name(), backend.BackendSoft)
	}
	if vp := tg.Viewport(); vp.Width != 32 || vp.Height != 16 || vp.X != 0 || vp.Y != 0 {
		t.Errorf("Viewport() = %+v, want 32x16 at the origin", vp)
	}
	rtv := tg.Context().RenderTarget()
	if rtv == nil {
		t.Fatal("no render target bound")
	}
	rtv.Release()
}

func TestOpenInvalidSize(t *testing.T) {
	if _, err := Open(0, 10); !errors.Is(err, backend.ErrInvalidSize) {
		t.Errorf("Open(0, 10) error = %v, want %v", err, backend.ErrInvalidSize)
	}
}

func TestTargetClearAndSnapshot(t *testing.T) {
	tg := openTarget(t, 4, 3)
	if err := tg.Clear(color.RGBA{R: 1, G: 2, B: 3, A: 255}); err != nil {
		t.Fatal(err)
	}
	img, err := tg.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("snapshot bounds = %v, want 4x3", img.Bounds())
	}
	if got := img.RGBAAt(3, 2); got != (color.RGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Errorf("pixel = %v, want clear color", got)
	}

	// the snapshot is a copy
	img.SetRGBA(0, 0, color.RGBA{})
	again, _ := tg.Snapshot()
	if again.RGBAAt(0, 0).A != 255 {
		t.Error("modifying a snapshot changed the frame")
	}
}

func TestTargetClose(t *testing.T) {
	tg := openTarget(t, 4, 4)
	if err := tg.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := tg.Close(); !errors.Is(err, backend.ErrClosed) {
		t.Errorf("second Close error = %v, want %v", err, backend.ErrClosed)
	}
	if err := tg.Clear(color.Black); !errors.Is(err, backend.ErrClosed) {
		t.Errorf("Clear after Close error = %v, want %v", err, backend.ErrClosed)
	}
	if _, err := tg.Snapshot(); !errors.Is(err, backend.ErrClosed) {
		t.Errorf("Snapshot after Close error = %v, want %v", err, backend.ErrClosed)
	}
}

func TestTargetCloseReportsLeaks(t *testing.T) {
	tg := openTarget(t, 4, 4)
	if _, err := tg.Device().CreateBuffer(&dbgtext.BufferDesc{Size: 16, Usage: gputypes.BufferUsageVertex}); err != nil {
		t.Fatal(err)
	}
	if err := tg.Close(); !errors.Is(err, ErrLeak) {
		t.Errorf("Close error = %v, want %v", err, ErrLeak)
	}
}

func TestRenderGlyph(t *testing.T) {
	const x, y = 8, 4
	red := color.RGBA{R: 255, A: 255}

	tg := openTarget(t, 64, 32)
	tc, err := dbgtext.New(tg.Device(), tg.Context(), 4)
	if err != nil {
		t.Fatalf("dbgtext.New: %v", err)
	}
	if err := tc.Print(tg.Viewport(), "H", x, y, dbgtext.PackColor(red)); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if err := tc.Render(true); err != nil {
		t.Fatalf("Render: %v", err)
	}
	tc.Destroy()

	img, err := tg.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	m := glyph.Default().Lookup('H')
	atlas := glyph.DefaultAtlas()
	top := y + int(m.YOffset)
	lit := 0
	checkPixels(t, img, func(px, py int) color.RGBA {
		if px < x || px >= x+glyph.Width || py < top || py >= top+int(m.Height) {
			return transparent
		}
		if atlas.At(int(m.U)+px-x, int(m.V)+py-top) != 0xFF {
			return transparent
		}
		lit++
		return red
	})
	if lit == 0 {
		t.Error("glyph 'H' has no covered texels")
	}
}

func TestRenderRestoresState(t *testing.T) {
	tg := openTarget(t, 64, 32)
	dc := tg.Context()
	tc, err := dbgtext.New(tg.Device(), dc, 16)
	if err != nil {
		t.Fatal(err)
	}
	defer tc.Destroy()

	if err := tc.Print(tg.Viewport(), "state", 0, 0, dbgtext.DefaultColor); err != nil {
		t.Fatal(err)
	}
	if err := tc.Render(true); err != nil {
		t.Fatal(err)
	}
	if vs := dc.VertexShader(); vs != nil {
		vs.Release()
		t.Error("vertex shader still bound after Render(true)")
	}
	if vb := dc.VertexBuffer(0); vb.Buffer != nil {
		vb.Buffer.Release()
		t.Error("vertex buffer still bound after Render(true)")
	}
	if got := tg.(*target).dev.ctx.Draws(); got != 1 {
		t.Errorf("Draws() = %d, want 1", got)
	}

	if err := tc.Print(tg.Viewport(), "again", 0, 10, dbgtext.DefaultColor); err != nil {
		t.Fatal(err)
	}
	if err := tc.Render(false); err != nil {
		t.Fatal(err)
	}
	vs := dc.VertexShader()
	if vs == nil {
		t.Fatal("vertex shader not bound after Render(false)")
	}
	vs.Release()
}
