package binding

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dbgtext"
)

// defaultSampleMask enables every sample.
const defaultSampleMask = 0xFFFFFFFF

// Bindings is a view of the objects bound on a State. It holds no
// references; the objects stay valid until they are unbound.
type Bindings struct {
	VS        dbgtext.VertexShader
	GS        dbgtext.GeometryShader
	PS        dbgtext.PixelShader
	View      dbgtext.ShaderResourceView
	Sampler   dbgtext.SamplerState
	Layout    dbgtext.InputLayout
	Vertices  dbgtext.VertexBufferBinding
	Topology  gputypes.PrimitiveTopology
	Blend     dbgtext.BlendBinding
	Depth     dbgtext.DepthStencilBinding
	Raster    dbgtext.RasterizerState
	Viewports []dbgtext.Viewport
}

// State is the pipeline binding table of a device context. Only slot 0
// exists for shader resources, samplers and vertex buffers; other slots
// read as empty and ignore writes.
//
// The zero State is not ready for use; call ClearState first.
type State struct {
	b Bindings
}

// ref adds a reference for a getter's caller.
func ref[T dbgtext.Resource](v T) T {
	if any(v) != nil {
		v.AddRef()
	}
	return v
}

// bind replaces *dst with v, moving the State's reference.
func bind[T dbgtext.Resource](dst *T, v T) {
	if any(v) != nil {
		v.AddRef()
	}
	if any(*dst) != nil {
		(*dst).Release()
	}
	*dst = v
}

func (s *State) VertexShader() dbgtext.VertexShader           { return ref(s.b.VS) }
func (s *State) SetVertexShader(v dbgtext.VertexShader)       { bind(&s.b.VS, v) }
func (s *State) GeometryShader() dbgtext.GeometryShader       { return ref(s.b.GS) }
func (s *State) SetGeometryShader(v dbgtext.GeometryShader)   { bind(&s.b.GS, v) }
func (s *State) PixelShader() dbgtext.PixelShader             { return ref(s.b.PS) }
func (s *State) SetPixelShader(v dbgtext.PixelShader)         { bind(&s.b.PS, v) }
func (s *State) InputLayout() dbgtext.InputLayout             { return ref(s.b.Layout) }
func (s *State) SetInputLayout(v dbgtext.InputLayout)         { bind(&s.b.Layout, v) }
func (s *State) RasterizerState() dbgtext.RasterizerState     { return ref(s.b.Raster) }
func (s *State) SetRasterizerState(v dbgtext.RasterizerState) { bind(&s.b.Raster, v) }

func (s *State) ShaderResource(slot uint32) dbgtext.ShaderResourceView {
	if slot != 0 {
		return nil
	}
	return ref(s.b.View)
}

func (s *State) SetShaderResource(slot uint32, v dbgtext.ShaderResourceView) {
	if slot == 0 {
		bind(&s.b.View, v)
	}
}

func (s *State) Sampler(slot uint32) dbgtext.SamplerState {
	if slot != 0 {
		return nil
	}
	return ref(s.b.Sampler)
}

func (s *State) SetSampler(slot uint32, v dbgtext.SamplerState) {
	if slot == 0 {
		bind(&s.b.Sampler, v)
	}
}

func (s *State) VertexBuffer(slot uint32) dbgtext.VertexBufferBinding {
	if slot != 0 {
		return dbgtext.VertexBufferBinding{}
	}
	b := s.b.Vertices
	b.Buffer = ref(b.Buffer)
	return b
}

func (s *State) SetVertexBuffer(slot uint32, b dbgtext.VertexBufferBinding) {
	if slot != 0 {
		return
	}
	bind(&s.b.Vertices.Buffer, b.Buffer)
	s.b.Vertices.Stride, s.b.Vertices.Offset = b.Stride, b.Offset
}

func (s *State) PrimitiveTopology() gputypes.PrimitiveTopology { return s.b.Topology }

func (s *State) SetPrimitiveTopology(t gputypes.PrimitiveTopology) { s.b.Topology = t }

func (s *State) BlendState() dbgtext.BlendBinding {
	b := s.b.Blend
	b.State = ref(b.State)
	return b
}

func (s *State) SetBlendState(b dbgtext.BlendBinding) {
	bind(&s.b.Blend.State, b.State)
	s.b.Blend.Factor, s.b.Blend.SampleMask = b.Factor, b.SampleMask
}

func (s *State) DepthStencilState() dbgtext.DepthStencilBinding {
	b := s.b.Depth
	b.State = ref(b.State)
	return b
}

func (s *State) SetDepthStencilState(b dbgtext.DepthStencilBinding) {
	bind(&s.b.Depth.State, b.State)
	s.b.Depth.StencilRef = b.StencilRef
}

// Viewports returns a copy of the bound viewports.
func (s *State) Viewports() []dbgtext.Viewport { return slices.Clone(s.b.Viewports) }

// SetViewports binds a copy of vps.
func (s *State) SetViewports(vps []dbgtext.Viewport) { s.b.Viewports = slices.Clone(vps) }

// ClearState unbinds every object and restores the default topology and
// sample mask.
func (s *State) ClearState() {
	s.SetVertexShader(nil)
	s.SetGeometryShader(nil)
	s.SetPixelShader(nil)
	s.SetShaderResource(0, nil)
	s.SetSampler(0, nil)
	s.SetInputLayout(nil)
	s.SetVertexBuffer(0, dbgtext.VertexBufferBinding{})
	s.SetPrimitiveTopology(gputypes.PrimitiveTopologyTriangleList)
	s.SetBlendState(dbgtext.BlendBinding{SampleMask: defaultSampleMask})
	s.SetDepthStencilState(dbgtext.DepthStencilBinding{})
	s.SetRasterizerState(nil)
	s.SetViewports(nil)
}

// Bound returns the bound objects without adding references. The
// viewport slice is shared and must not be modified.
func (s *State) Bound() Bindings { return s.b }

// Check reports the first binding the glyph pipeline needs but is missing
// (ErrIncompleteState) or that neither device can honour (ErrUnsupported).
func (b *Bindings) Check() error {
	switch {
	case b.VS == nil:
		return fmt.Errorf("%w: no vertex shader", ErrIncompleteState)
	case b.PS == nil:
		return fmt.Errorf("%w: no pixel shader", ErrIncompleteState)
	case b.Layout == nil:
		return fmt.Errorf("%w: no input layout", ErrIncompleteState)
	case b.View == nil:
		return fmt.Errorf("%w: no shader resource in slot 0", ErrIncompleteState)
	case b.Sampler == nil:
		return fmt.Errorf("%w: no sampler in slot 0", ErrIncompleteState)
	case b.Vertices.Buffer == nil:
		return fmt.Errorf("%w: no vertex buffer in slot 0", ErrIncompleteState)
	case b.Vertices.Stride == 0:
		return fmt.Errorf("%w: vertex stride is zero", ErrIncompleteState)
	case b.GS != nil:
		return fmt.Errorf("%w: geometry stage", ErrUnsupported)
	case b.Topology != gputypes.PrimitiveTopologyTriangleList:
		return fmt.Errorf("%w: topology %v", ErrUnsupported, b.Topology)
	case b.Blend.State != nil:
		return fmt.Errorf("%w: blend state %v", ErrUnsupported, b.Blend.State)
	case b.Raster != nil:
		return fmt.Errorf("%w: rasterizer state %v", ErrUnsupported, b.Raster)
	}
	return nil
}

// Owned resolves r to the device's concrete object type T and checks that
// dev created it.
func Owned[T interface{ Owner() D }, D comparable](r dbgtext.Resource, dev D) (T, error) {
	var zero T
	v, ok := r.(T)
	if !ok || v.Owner() != dev {
		return zero, fmt.Errorf("%w: %v", ErrForeignObject, r)
	}
	return v, nil
}
