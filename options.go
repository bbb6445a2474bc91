package dbgtext

import (
	"log/slog"

	"golang.org/x/text/encoding/charmap"

	"github.com/gogpu/dbgtext/glyph"
)

// OverflowPolicy selects what a print does when the text does not fit into
// the remaining capacity of the batch.
type OverflowPolicy uint8

const (
	// OverflowPartial writes glyphs until the batch is full and then fails.
	// Glyphs written before the failure stay in the batch.
	OverflowPartial OverflowPolicy = iota

	// OverflowReject fails without writing anything when the whole text
	// does not fit.
	OverflowReject
)

// String returns the policy name.
func (p OverflowPolicy) String() string {
	switch p {
	case OverflowPartial:
		return "partial"
	case OverflowReject:
		return "reject"
	default:
		return "unknown"
	}
}

// Option configures a Context during creation.
//
// Example:
//
//	tc, err := dbgtext.New(dev, dc, 4096,
//	    dbgtext.WithOverflowPolicy(dbgtext.OverflowReject),
//	    dbgtext.WithLogger(logger))
type Option func(*options)

// options holds optional configuration for Context creation.
type options struct {
	charmap     *charmap.Charmap
	replacement byte
	overflow    OverflowPolicy
	table       *glyph.Table
	atlas       *glyph.Atlas
	logger      *slog.Logger
}

// defaultOptions returns the default context options.
func defaultOptions() options {
	return options{
		charmap:     charmap.Windows1252,
		replacement: '?',
		overflow:    OverflowPartial,
		table:       nil, // glyph.Default() if nil
		atlas:       nil, // glyph.DefaultAtlas() if nil
		logger:      nil, // package logger if nil
	}
}

// WithCharmap sets the code page used by Print and Printf to map runes to
// glyph codes. The shipped glyph table is laid out as Windows-1252, which is
// the default. A nil charmap keeps the default.
func WithCharmap(cm *charmap.Charmap) Option {
	return func(o *options) {
		if cm != nil {
			o.charmap = cm
		}
	}
}

// WithReplacement sets the glyph code printed for runes the code page
// cannot represent. The default is '?'.
func WithReplacement(code byte) Option {
	return func(o *options) {
		o.replacement = code
	}
}

// WithOverflowPolicy selects the behavior when a print exceeds the
// remaining capacity. The default is OverflowPartial.
func WithOverflowPolicy(p OverflowPolicy) Option {
	return func(o *options) {
		o.overflow = p
	}
}

// WithGlyphTable replaces the glyph table. The table must match the atlas
// in use. A nil table keeps the default.
func WithGlyphTable(t *glyph.Table) Option {
	return func(o *options) {
		if t != nil {
			o.table = t
		}
	}
}

// WithAtlas replaces the atlas bitmap. A nil atlas keeps the default.
// The atlas must be glyph.AtlasWidth x glyph.AtlasHeight texels; New
// rejects any other size with glyph.ErrAtlasSize.
//
// Example:
//
//	tbl, atlas, _ := glyph.Build(basicfont.Face7x13, charmap.Windows1252, glyph.PrintableCodes(true))
//	tc, err := dbgtext.New(dev, dc, 1024, dbgtext.WithGlyphTable(tbl), dbgtext.WithAtlas(atlas))
func WithAtlas(a *glyph.Atlas) Option {
	return func(o *options) {
		if a != nil {
			o.atlas = a
		}
	}
}

// WithLogger sets the logger for one Context, overriding the package
// logger configured with SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
