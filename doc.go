// Package dbgtext draws immediate-mode debug text on top of a frame.
//
// # Overview
//
// A [Context] owns one vertex buffer with room for a fixed number of glyphs.
// Each frame the caller prints strings at pixel coordinates, and a single
// [Context.Render] call draws every glyph printed since the previous render
// in one draw call. Glyphs come from a fixed 8x(up to 15) monospaced font
// stored in a 128x128 monochrome atlas (see package glyph).
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/dbgtext"
//	    "github.com/gogpu/dbgtext/backend"
//	    _ "github.com/gogpu/dbgtext/backend/soft"
//	)
//
//	tg, err := backend.Open(backend.BackendSoft, 640, 480)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tg.Close()
//
//	tc, err := dbgtext.New(tg.Device(), tg.Context(), 1024)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tc.Destroy()
//
//	vp := tg.Viewport()
//	tc.Print(vp, "frame 42", 8, 8, dbgtext.DefaultColor)
//	tc.Printf(vp, 8, 24, dbgtext.RGBA(255, 255, 0, 255), "%.1f ms", 16.6)
//	if err := tc.Render(true); err != nil {
//	    log.Print(err)
//	}
//
// # Devices
//
// The package talks to the GPU only through the [Device] and [DeviceContext]
// interfaces, which model a stateful immediate context with reference-counted
// objects. Two implementations ship with the module:
//   - backend/soft: a CPU reference device rendering into an image.RGBA
//   - backend/wgpu: a device on top of gogpu/wgpu/hal
//
// # Frame protocol
//
// The first print of a frame maps the vertex buffer for writing. Render
// unmaps it, optionally captures the device state it is about to change
// (see [StateGuard]), draws, and restores the captured state. The next print
// maps the buffer again and starts a new batch from zero.
//
// # Coordinate System
//
// Text positions are in viewport pixels:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//
// Colors are packed as 0xAABBGGRR, see [RGBA].
//
// # Concurrency
//
// A Context is not safe for concurrent use. It is meant to be driven from
// the thread that owns the device context.
package dbgtext
