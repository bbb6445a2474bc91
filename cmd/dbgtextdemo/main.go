// Command dbgtextdemo renders a debug text overlay into a PNG file.
package main

import (
	"flag"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/gogpu/dbgtext"
	"github.com/gogpu/dbgtext/backend"
	_ "github.com/gogpu/dbgtext/backend/soft"
	_ "github.com/gogpu/dbgtext/backend/wgpu"
	"github.com/gogpu/dbgtext/glyph"
)

const lineHeight = glyph.MaxHeight + 1

func main() {
	var (
		width    = flag.Int("width", 320, "image width")
		height   = flag.Int("height", 120, "image height")
		output   = flag.String("output", "dbgtext.png", "output file")
		name     = flag.String("backend", backend.BackendSoft, "device backend (soft, wgpu)")
		capacity = flag.Int("capacity", 256, "glyphs per frame")
		verbose  = flag.Bool("v", false, "log device activity")
	)
	flag.Parse()

	if *verbose {
		dbgtext.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	tg, err := backend.Open(*name, *width, *height)
	if err != nil {
		log.Fatalf("Failed to open %s backend: %v (available: %v)", *name, err, backend.Available())
	}
	defer func() {
		if err := tg.Close(); err != nil {
			log.Printf("Close: %v", err)
		}
	}()

	if err := tg.Clear(color.RGBA{R: 0x20, G: 0x24, B: 0x30, A: 0xFF}); err != nil {
		log.Fatalf("Failed to clear: %v", err)
	}

	tc, err := dbgtext.New(tg.Device(), tg.Context(), *capacity)
	if err != nil {
		log.Fatalf("Failed to create text context: %v", err)
	}
	defer tc.Destroy()

	start := time.Now()
	drawOverlay(tc, tg.Viewport(), tg.Name())
	if err := tc.Render(true); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	elapsed := time.Since(start)

	img, err := tg.Snapshot()
	if err != nil {
		log.Fatalf("Failed to read frame: %v", err)
	}
	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *output, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Overlay saved to %s (%dx%d, %s, %v)\n", *output, *width, *height, tg.Name(), elapsed)
	log.Printf("Stats: %+v\n", tc.Stats())
}

// drawOverlay queues a few lines of frame statistics. Print errors only
// report dropped glyphs, so they are logged and the frame continues.
func drawOverlay(tc *dbgtext.Context, vp dbgtext.Viewport, backendName string) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	report := func(err error) {
		if err != nil {
			log.Printf("Overlay: %v", err)
		}
	}
	y := 4
	report(tc.Printf(vp, 4, y, dbgtext.DefaultColor, "backend %s  %dx%d", backendName, int(vp.Width), int(vp.Height)))
	y += lineHeight
	report(tc.Printf(vp, 4, y, dbgtext.RGBA(0x80, 0xFF, 0x80, 0xFF), "heap %.1f MiB  gc %d", float64(mem.HeapAlloc)/(1<<20), mem.NumGC))
	y += lineHeight
	report(tc.Printf(vp, 4, y, dbgtext.RGBA(0xFF, 0xC0, 0x40, 0xFF), "goroutines %d", runtime.NumGoroutine()))
	y += lineHeight
	report(tc.PrintN(vp, 24, "glyphs are clipped to twenty-four characters", 4, y, dbgtext.RGBA(0xFF, 0x60, 0x60, 0xFF)))
	y += lineHeight
	report(tc.Print(vp, "café © ± µs", 4, y, dbgtext.DefaultColor))
}
