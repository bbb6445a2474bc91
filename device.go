package dbgtext

import "github.com/gogpu/gputypes"

// ResourceKind identifies the type of a device object.
type ResourceKind uint8

// Resource kinds.
const (
	KindVertexShader ResourceKind = iota + 1
	KindGeometryShader
	KindPixelShader
	KindInputLayout
	KindBuffer
	KindShaderResourceView
	KindSamplerState
	KindBlendState
	KindDepthStencilState
	KindRasterizerState
	KindRenderTargetView
)

var kindNames = [...]string{
	KindVertexShader:       "VertexShader",
	KindGeometryShader:     "GeometryShader",
	KindPixelShader:        "PixelShader",
	KindInputLayout:        "InputLayout",
	KindBuffer:             "Buffer",
	KindShaderResourceView: "ShaderResourceView",
	KindSamplerState:       "SamplerState",
	KindBlendState:         "BlendState",
	KindDepthStencilState:  "DepthStencilState",
	KindRasterizerState:    "RasterizerState",
	KindRenderTargetView:   "RenderTargetView",
}

// String returns the kind name.
func (k ResourceKind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}

// Resource is a reference-counted device object. A newly created object
// holds one reference owned by its creator. The object is destroyed when
// the last reference is released.
type Resource interface {
	Kind() ResourceKind
	AddRef()
	Release()
}

// Device object handles. A nil handle means "unbound" when set on a
// DeviceContext, which selects the device default where one exists.
type (
	VertexShader       interface{ Resource }
	GeometryShader     interface{ Resource }
	PixelShader        interface{ Resource }
	InputLayout        interface{ Resource }
	Buffer             interface{ Resource }
	ShaderResourceView interface{ Resource }
	SamplerState       interface{ Resource }
	BlendState         interface{ Resource }
	DepthStencilState  interface{ Resource }
	RasterizerState    interface{ Resource }
	RenderTargetView   interface{ Resource }
)

// ShaderSource is a compiled shader stage. SPIRV holds the module words;
// WGSL carries the source for devices that compile it themselves.
type ShaderSource struct {
	Label      string
	WGSL       string
	SPIRV      []uint32
	EntryPoint string
}

// InputElement describes one vertex attribute.
type InputElement struct {
	Location uint32
	Format   gputypes.VertexFormat
	Offset   uint64
}

// BufferDesc describes a buffer.
type BufferDesc struct {
	Label string
	Size  uint64
	Usage gputypes.BufferUsage
}

// TextureDesc describes a 2D texture with a single mip level.
type TextureDesc struct {
	Label  string
	Width  uint32
	Height uint32
	Format gputypes.TextureFormat
}

// SamplerDesc describes a sampler state.
type SamplerDesc struct {
	Label        string
	AddressModeU gputypes.AddressMode
	AddressModeV gputypes.AddressMode
	AddressModeW gputypes.AddressMode
	MagFilter    gputypes.FilterMode
	MinFilter    gputypes.FilterMode
	MipmapFilter gputypes.FilterMode
	LodMinClamp  float32
	LodMaxClamp  float32
}

// DepthStencilDesc describes a depth-stencil state.
type DepthStencilDesc struct {
	Label             string
	DepthTestEnabled  bool
	DepthWriteEnabled bool
	DepthCompare      gputypes.CompareFunction
	StencilEnabled    bool
	StencilReadMask   uint8
	StencilWriteMask  uint8
}

// Viewport is a render viewport in render-target pixels.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// VertexBufferBinding is the state of one vertex buffer slot.
type VertexBufferBinding struct {
	Buffer Buffer
	Stride uint32
	Offset uint32
}

// BlendBinding is the output-merger blend state. A nil State selects the
// default (blending disabled).
type BlendBinding struct {
	State      BlendState
	Factor     gputypes.Color
	SampleMask uint32
}

// DepthStencilBinding is the output-merger depth-stencil state. A nil State
// selects the device default.
type DepthStencilBinding struct {
	State      DepthStencilState
	StencilRef uint32
}

// Device creates device objects. Every returned object carries one
// reference owned by the caller.
type Device interface {
	CreateVertexShader(src *ShaderSource) (VertexShader, error)
	CreatePixelShader(src *ShaderSource) (PixelShader, error)
	CreateInputLayout(elements []InputElement, vs *ShaderSource) (InputLayout, error)
	CreateBuffer(desc *BufferDesc) (Buffer, error)
	CreateTexture(desc *TextureDesc, texels []byte) (ShaderResourceView, error)
	CreateSamplerState(desc *SamplerDesc) (SamplerState, error)
	CreateDepthStencilState(desc *DepthStencilDesc) (DepthStencilState, error)
}

// DeviceContext is an immediate context holding the current pipeline
// bindings.
//
// Getters that return objects, directly or inside a binding, add a
// reference the caller must release.
// Setters never take ownership; the context keeps its own reference for as
// long as the object stays bound.
type DeviceContext interface {
	VertexShader() VertexShader
	SetVertexShader(VertexShader)
	GeometryShader() GeometryShader
	SetGeometryShader(GeometryShader)
	PixelShader() PixelShader
	SetPixelShader(PixelShader)

	ShaderResource(slot uint32) ShaderResourceView
	SetShaderResource(slot uint32, view ShaderResourceView)
	Sampler(slot uint32) SamplerState
	SetSampler(slot uint32, sampler SamplerState)

	InputLayout() InputLayout
	SetInputLayout(InputLayout)
	VertexBuffer(slot uint32) VertexBufferBinding
	SetVertexBuffer(slot uint32, binding VertexBufferBinding)
	PrimitiveTopology() gputypes.PrimitiveTopology
	SetPrimitiveTopology(gputypes.PrimitiveTopology)

	BlendState() BlendBinding
	SetBlendState(BlendBinding)
	DepthStencilState() DepthStencilBinding
	SetDepthStencilState(DepthStencilBinding)
	RasterizerState() RasterizerState
	SetRasterizerState(RasterizerState)

	Viewports() []Viewport
	SetViewports([]Viewport)
	RenderTarget() RenderTargetView

	// Map returns the buffer contents for CPU access. Mapping with
	// MapModeWrite discards the previous contents.
	Map(buf Buffer, mode gputypes.MapMode) ([]byte, error)
	Unmap(buf Buffer)

	// Draw issues a non-indexed draw with the current bindings.
	Draw(vertexCount, startVertex uint32) error
}

// release drops one reference if r is non-nil.
func release(r Resource) {
	if r != nil {
		r.Release()
	}
}
