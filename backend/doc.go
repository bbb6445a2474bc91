// Package backend provides a registry of offscreen render targets for
// dbgtext devices.
//
// A backend pairs a [dbgtext.Device] and [dbgtext.DeviceContext] with a
// frame it can draw into and read back. Tools and tests use it to render
// debug text without a window.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// Import the backend packages you want to make available:
//
//	import (
//		_ "github.com/gogpu/dbgtext/backend/soft"
//		_ "github.com/gogpu/dbgtext/backend/wgpu"
//	)
//
// # Backend Selection
//
// Use OpenDefault to get the best backend that opens, or Open to request a
// specific backend by name:
//
//	t, err := backend.OpenDefault(640, 480)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer t.Close()
//
//	tc, err := dbgtext.New(t.Device(), t.Context(), 1024)
//	...
//	tc.Print(t.Viewport(), "hello", 8, 8, dbgtext.DefaultColor)
//	tc.Render(true)
//	img, err := t.Snapshot()
package backend
