package soft

import (
	"fmt"
	"image/color"
	"strings"
	"testing"

	"github.com/gogpu/dbgtext"
	"github.com/gogpu/dbgtext/backend"
)

// BenchmarkTargetClear benchmarks clearing render targets of various sizes.
func BenchmarkTargetClear(b *testing.B) {
	sizes := []struct {
		name   string
		width  int
		height int
	}{
		{"320x240", 320, 240},
		{"1280x720", 1280, 720},
		{"1920x1080", 1920, 1080},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			tg, err := backend.Open(backend.BackendSoft, size.width, size.height)
			if err != nil {
				b.Fatal(err)
			}
			defer tg.Close()
			c := color.RGBA{R: 0x20, G: 0x24, B: 0x30, A: 0xFF}
			b.ReportAllocs()
			b.SetBytes(int64(size.width * size.height * 4))
			for b.Loop() {
				if err := tg.Clear(c); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkRenderFrame benchmarks one Print-and-Render frame with the given
// number of glyphs on a 1280x720 target.
func BenchmarkRenderFrame(b *testing.B) {
	for _, glyphs := range []int{16, 256, 2048} {
		b.Run(fmt.Sprintf("%d_glyphs", glyphs), func(b *testing.B) {
			tg, err := backend.Open(backend.BackendSoft, 1280, 720)
			if err != nil {
				b.Fatal(err)
			}
			defer tg.Close()
			tc, err := dbgtext.New(tg.Device(), tg.Context(), glyphs)
			if err != nil {
				b.Fatal(err)
			}
			defer tc.Destroy()

			vp := tg.Viewport()
			line := strings.Repeat("0123456789abcdef", 8)
			b.ReportAllocs()
			for b.Loop() {
				for n, y := 0, 0; n < glyphs; n, y = n+len(line), y+16 {
					_ = tc.PrintN(vp, min(len(line), glyphs-n), line, 0, y%704, dbgtext.DefaultColor)
				}
				if err := tc.Render(false); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
