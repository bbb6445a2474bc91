package dbgtext

import "log/slog"

// Stats counts work done by a Context since it was created.
type Stats struct {
	GlyphsAppended int
	GlyphsDropped  int
	MapFailures    int
	Renders        int
	DrawCalls      int
	VerticesDrawn  int
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("glyphs_appended", s.GlyphsAppended),
		slog.Int("glyphs_dropped", s.GlyphsDropped),
		slog.Int("map_failures", s.MapFailures),
		slog.Int("renders", s.Renders),
		slog.Int("draw_calls", s.DrawCalls),
		slog.Int("vertices_drawn", s.VerticesDrawn))
}
