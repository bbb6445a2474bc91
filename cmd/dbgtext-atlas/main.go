// Command dbgtext-atlas inspects and generates glyph atlases.
//
// Usage:
//
//	dbgtext-atlas dump [-atlas file] [-table file] [-preview out.bmp]
//	dbgtext-atlas gen [-latin] [-atlas out.bmp] [-table out.bin]
//
// dump prints the glyph table and writes an 8-bit grayscale preview of the
// atlas. Without -atlas and -table the shipped data is used. gen builds a
// compatible atlas and table from the 7x13 basic font.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"golang.org/x/image/bmp"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/text/encoding/charmap"

	"github.com/gogpu/dbgtext/glyph"
)

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage()
	}
	var err error
	switch os.Args[1] {
	case "dump":
		err = dump(os.Args[2:])
	case "gen":
		err = gen(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: dbgtext-atlas dump|gen [flags]")
	os.Exit(2)
}

func dump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	atlasFile := fs.String("atlas", "", "atlas BMP (default: shipped atlas)")
	tableFile := fs.String("table", "", "glyph table (default: shipped table)")
	preview := fs.String("preview", "atlas_preview.bmp", "8-bit preview output, empty to skip")
	_ = fs.Parse(args)

	atlas := glyph.DefaultAtlas()
	if *atlasFile != "" {
		data, err := os.ReadFile(*atlasFile)
		if err != nil {
			return err
		}
		if atlas, err = glyph.DecodeAtlas(data); err != nil {
			return fmt.Errorf("%s: %w", *atlasFile, err)
		}
	}
	table := glyph.Default()
	if *tableFile != "" {
		data, err := os.ReadFile(*tableFile)
		if err != nil {
			return err
		}
		if table, err = glyph.Decode(data); err != nil {
			return fmt.Errorf("%s: %w", *tableFile, err)
		}
	}
	if err := table.Validate(atlas.Width, atlas.Height); err != nil {
		return err
	}

	printTable(os.Stdout, table)

	if *preview == "" {
		return nil
	}
	f, err := os.Create(*preview)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, atlas.Gray()); err != nil {
		f.Close()
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("preview saved to %s (%dx%d)", *preview, atlas.Width, atlas.Height)
	return nil
}

// printTable lists every non-empty glyph with the Windows-1252 character it
// stands for.
func printTable(w io.Writer, t *glyph.Table) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "code\tchar\tu\tv\theight\tyoffset\t")
	n := 0
	for code := range glyph.Count {
		m := t.Lookup(byte(code))
		if m.Empty() {
			continue
		}
		n++
		fmt.Fprintf(tw, "0x%02X\t%q\t%d\t%d\t%d\t%d\t\n",
			code, charmap.Windows1252.DecodeByte(byte(code)), m.U, m.V, m.Height, m.YOffset)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d glyphs\n", n)
}

func gen(args []string) error {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	latin := fs.Bool("latin", true, "include Latin-1 codes 0xA1-0xFF")
	atlasFile := fs.String("atlas", "font.bmp", "atlas output")
	tableFile := fs.String("table", "glyphs.bin", "glyph table output")
	_ = fs.Parse(args)

	table, atlas, err := glyph.Build(basicfont.Face7x13, charmap.Windows1252, glyph.PrintableCodes(*latin))
	if err != nil {
		return err
	}
	if err := os.WriteFile(*atlasFile, glyph.EncodeAtlas(atlas), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(*tableFile, glyph.Encode(table), 0o644); err != nil {
		return err
	}
	log.Printf("wrote %s and %s", *atlasFile, *tableFile)
	return nil
}
