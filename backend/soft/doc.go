// Package soft is a CPU reference implementation of dbgtext.Device and
// dbgtext.DeviceContext.
//
// It behaves like an immediate-mode device: objects are reference counted,
// bound objects hold a reference, and getters add one for the caller. It
// checks the map/unmap protocol and rejects draws from incomplete or
// foreign state, so it doubles as a conformance device for tests.
//
// Drawing supports exactly what the debug text pipeline needs:
//
//   - the dbgtext glyph program (other shader sources are rejected)
//   - triangle lists from one vertex buffer
//   - Float32x2, Uint16x2 and Unorm8x4 vertex attributes
//   - point sampling with repeat or clamp addressing
//   - replace blending, no depth test, no geometry stage
//
// Triangles are culled when they are counter-clockwise on screen, and pixel
// coverage follows the top-left rule, matching a default rasterizer state.
//
// The package registers itself as the "soft" backend:
//
//	import _ "github.com/gogpu/dbgtext/backend/soft"
//
// A Device and its Context are not safe for concurrent use.
package soft
