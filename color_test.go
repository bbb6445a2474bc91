package dbgtext

import (
	"image/color"
	"testing"
)

func TestRGBA(t *testing.T) {
	tests := []struct {
		name       string
		r, g, b, a uint8
		want       uint32
	}{
		{"white", 255, 255, 255, 255, 0xFFFFFFFF},
		{"red", 255, 0, 0, 255, 0xFF0000FF},
		{"green", 0, 255, 0, 255, 0xFF00FF00},
		{"blue", 0, 0, 255, 255, 0xFFFF0000},
		{"transparent", 0, 0, 0, 0, 0},
		{"mixed", 0x12, 0x34, 0x56, 0x78, 0x78563412},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RGBA(tt.r, tt.g, tt.b, tt.a); got != tt.want {
				t.Errorf("RGBA() = %#08x, want %#08x", got, tt.want)
			}
		})
	}
}

func TestUnpackColorRoundTrip(t *testing.T) {
	for _, c := range []uint32{0, DefaultColor, 0x78563412, 0x80FF00FF, 0x01020304} {
		n := UnpackColor(c)
		if got := RGBA(n.R, n.G, n.B, n.A); got != c {
			t.Errorf("RGBA(UnpackColor(%#08x)) = %#08x", c, got)
		}
	}
}

func TestPackColor(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want uint32
	}{
		{"nrgba", color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}, 0x40302010},
		{"opaque rgba", color.RGBA{R: 255, G: 128, B: 0, A: 255}, 0xFF0080FF},
		{"white", color.White, DefaultColor},
		{"black", color.Black, 0xFF000000},
		{"transparent", color.Transparent, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PackColor(tt.c); got != tt.want {
				t.Errorf("PackColor(%v) = %#08x, want %#08x", tt.c, got, tt.want)
			}
		})
	}
}
