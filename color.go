package dbgtext

import "image/color"

// DefaultColor is opaque white.
const DefaultColor uint32 = 0xFFFFFFFF

// RGBA packs 8-bit channels into the vertex color format 0xAABBGGRR.
// In memory the bytes are R, G, B, A, which the shaders read as a
// normalized four-component vector.
func RGBA(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(g)<<8 | uint32(r)
}

// PackColor converts c to the packed vertex color format. Premultiplied
// colors are converted to straight alpha first.
func PackColor(c color.Color) uint32 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA(n.R, n.G, n.B, n.A)
}

// UnpackColor splits a packed vertex color into its channels.
func UnpackColor(c uint32) color.NRGBA {
	return color.NRGBA{
		R: uint8(c),
		G: uint8(c >> 8),
		B: uint8(c >> 16),
		A: uint8(c >> 24),
	}
}
