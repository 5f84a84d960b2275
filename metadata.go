package seizureplot

// PlotConfig holds the annotations of the rendered chart.
type PlotConfig struct {
	Title  string
	XTicks []float64 `json:",omitempty"`
	XLabel string
	YLabel string

	// Output size in points. Zero means the default size.
	Width  float64 `json:",omitempty"`
	Height float64 `json:",omitempty"`
}

// SeriesInfo describes one line of the chart.
type SeriesInfo struct {
	ID       uint32
	Name     string
	Label    int
	RowIndex int
}

// Metadata is what the display server tells clients about the chart.
type Metadata struct {
	Columns    []string
	Series     []SeriesInfo
	PlotConfig PlotConfig
}
