package treemap

import "valuemap/internal/valuation"

const (
	NoticeNoData       = "No data"
	NoticeNoValidTiles = "No valid securities (all have negative or missing cash flow)"
)

// Figure is a complete treemap ready for a rendering widget.
type Figure struct {
	Title    string   `json:"title"`
	SizeMode SizeMode `json:"size_mode"`
	Tiles    []Tile   `json:"tiles"`
	Colorbar Colorbar `json:"colorbar"`
	// Notice is set when there is nothing to draw.
	Notice string `json:"notice,omitempty"`
}

// Build encodes records into a Figure.
func (e *Encoder) Build(title string, records []valuation.EnrichedRecord, mode SizeMode, hideInvalid bool) Figure {
	f := Figure{
		Title:    title,
		SizeMode: mode,
		Tiles:    e.EncodeAll(records, mode, hideInvalid),
		Colorbar: NewColorbar(e.cfg),
	}
	switch {
	case len(records) == 0:
		f.Notice = NoticeNoData
	case len(f.Tiles) == 0:
		f.Notice = NoticeNoValidTiles
	}
	return f
}
