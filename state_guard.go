package dbgtext

import "github.com/gogpu/gputypes"

// StateGuard saves the device context state that drawing debug text
// overwrites, so the host's own rendering is unaffected.
//
// Capture takes a reference to every bound object it records. Restore
// writes the recorded state back in capture order and drops those
// references. A guard that is never restored must be released with
// Release. The zero value is ready to use.
//
//	var g dbgtext.StateGuard
//	g.Capture(dc)
//	defer g.Release()
//	... change state and draw ...
//	g.Restore(dc)
type StateGuard struct {
	captured bool

	gs GeometryShader
	vs VertexShader
	ps PixelShader

	view    ShaderResourceView
	sampler SamplerState

	layout   InputLayout
	vertices VertexBufferBinding
	topology gputypes.PrimitiveTopology

	blend     BlendBinding
	depth     DepthStencilBinding
	raster    RasterizerState
	viewports []Viewport
}

// Captured reports whether the guard holds a capture that has not been
// restored or released.
func (g *StateGuard) Captured() bool { return g.captured }

// Capture records the current state of dc. A previous capture that was not
// restored is released first.
func (g *StateGuard) Capture(dc DeviceContext) {
	g.Release()

	g.gs = dc.GeometryShader()
	g.vs = dc.VertexShader()
	g.ps = dc.PixelShader()
	g.view = dc.ShaderResource(0)
	g.sampler = dc.Sampler(0)
	g.layout = dc.InputLayout()
	g.vertices = dc.VertexBuffer(0)
	g.topology = dc.PrimitiveTopology()
	g.blend = dc.BlendState()
	g.depth = dc.DepthStencilState()
	g.raster = dc.RasterizerState()
	g.viewports = append([]Viewport(nil), dc.Viewports()...)
	g.captured = true
}

// Restore writes the captured state back to dc and releases the guard.
// Without a capture it does nothing.
func (g *StateGuard) Restore(dc DeviceContext) {
	if !g.captured {
		return
	}

	dc.SetGeometryShader(g.gs)
	dc.SetVertexShader(g.vs)
	dc.SetPixelShader(g.ps)
	dc.SetShaderResource(0, g.view)
	dc.SetSampler(0, g.sampler)
	dc.SetInputLayout(g.layout)
	dc.SetVertexBuffer(0, g.vertices)
	dc.SetPrimitiveTopology(g.topology)
	dc.SetBlendState(g.blend)
	dc.SetDepthStencilState(g.depth)
	dc.SetRasterizerState(g.raster)
	dc.SetViewports(g.viewports)

	g.Release()
}

// Release drops every reference held by the guard without restoring.
// It is safe to call at any time.
func (g *StateGuard) Release() {
	if !g.captured {
		return
	}
	release(g.gs)
	release(g.vs)
	release(g.ps)
	release(g.view)
	release(g.sampler)
	release(g.layout)
	release(g.vertices.Buffer)
	release(g.blend.State)
	release(g.depth.State)
	release(g.raster)
	*g = StateGuard{}
}
