// Package binding holds the pipeline bindings shared by the device
// contexts in backend/soft and backend/wgpu.
//
// [State] implements every binding getter and setter of
// dbgtext.DeviceContext except the render target, whose concrete type
// differs per device. Getters return an extra reference the caller must
// release; setters add a reference to the new object and release the old
// one.
package binding
