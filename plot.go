package seizureplot

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Default figure size, 640x480 at 100 dpi.
const (
	DefaultWidth  = 6.4 * vg.Inch
	DefaultHeight = 4.8 * vg.Inch
)

var ErrNoFeatures = errors.New("row has no numeric features to plot")

var seriesColors = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
}

type Series struct {
	Info   SeriesInfo
	Points plotter.XYs
}

// Plot is a rendered line chart of one or more rows.
type Plot struct {
	Config PlotConfig

	series []Series
	lines  []*plotter.Line
	plot   *plot.Plot
}

// RenderLinePlot draws the features of row as a line: y is the i-th feature
// value and x is i.
func RenderLinePlot(row Row, cfg PlotConfig) (*Plot, error) {
	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XLabel
	p.Y.Label.Text = cfg.YLabel

	if len(cfg.XTicks) > 0 {
		ticks := make([]plot.Tick, len(cfg.XTicks))
		for i, value := range cfg.XTicks {
			ticks[i] = plot.Tick{Value: value, Label: strconv.FormatFloat(value, 'g', -1, 64)}
		}
		p.X.Tick.Marker = plot.ConstantTicks(ticks)
	}

	result := &Plot{
		Config: cfg,
		plot:   p,
	}

	if err := result.Overlay(SeriesName(row), row); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"tag":    "RenderLinePlot",
		"row":    row.Index,
		"label":  row.Label,
		"points": len(result.series[0].Points),
	}).Debug("rendered line plot")

	return result, nil
}

// SeriesName is the legend entry used for row.
func SeriesName(row Row) string {
	return fmt.Sprintf("y=%d row %d", row.Label, row.Index)
}

// Overlay adds another row to the chart as an extra line. With more than one
// line the chart gets a legend.
func (p *Plot) Overlay(name string, row Row) error {
	features := row.Features()
	if len(features) == 0 {
		return ErrNoFeatures
	}

	points := make(plotter.XYs, len(features))
	for i, value := range features {
		points[i].X = float64(i)
		points[i].Y = value
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return fmt.Errorf("row %d: %w", row.Index, err)
	}
	line.Color = seriesColors[len(p.series)%len(seriesColors)]
	line.Width = vg.Points(1.5)

	p.plot.Add(line)
	p.lines = append(p.lines, line)
	switch {
	case len(p.lines) == 2:
		p.plot.Legend.Add(p.series[0].Info.Name, p.lines[0])
		p.plot.Legend.Add(name, line)
	case len(p.lines) > 2:
		p.plot.Legend.Add(name, line)
	}

	p.series = append(p.series, Series{
		Info: SeriesInfo{
			ID:       uint32(len(p.series)),
			Name:     name,
			Label:    row.Label,
			RowIndex: row.Index,
		},
		Points: points,
	})

	p.fitTicks()
	return nil
}

// The axis range covers the data and every requested tick, so ticks beyond
// the data are still drawn.
func (p *Plot) fitTicks() {
	if len(p.Config.XTicks) == 0 {
		return
	}

	for _, tick := range p.Config.XTicks {
		p.plot.X.Min = math.Min(p.plot.X.Min, tick)
		p.plot.X.Max = math.Max(p.plot.X.Max, tick)
	}
}

// Points returns the first series, the row passed to RenderLinePlot.
func (p *Plot) Points() plotter.XYs {
	return p.series[0].Points
}

func (p *Plot) Series() []Series {
	return p.series
}

func (p *Plot) size() (vg.Length, vg.Length) {
	width, height := DefaultWidth, DefaultHeight
	if p.Config.Width > 0 {
		width = vg.Length(p.Config.Width)
	}
	if p.Config.Height > 0 {
		height = vg.Length(p.Config.Height)
	}
	return width, height
}

// Save writes the chart to path. The image format follows the file
// extension: eps, jpg, jpeg, pdf, png, svg, tex, tif or tiff.
func (p *Plot) Save(path string) error {
	width, height := p.size()
	if err := p.plot.Save(width, height, path); err != nil {
		return fmt.Errorf("save plot to %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"tag":    "Plot",
		"path":   path,
		"format": strings.TrimPrefix(filepath.Ext(path), "."),
	}).Info("plot saved")
	return nil
}

// Render writes the chart to w in the given image format.
func (p *Plot) Render(w io.Writer, format string) error {
	width, height := p.size()
	writerTo, err := p.plot.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("render plot as %s: %w", format, err)
	}

	_, err = writerTo.WriteTo(w)
	return err
}

// Metadata describes the chart for display clients.
func (p *Plot) Metadata(columns []string) Metadata {
	series := make([]SeriesInfo, len(p.series))
	for i, s := range p.series {
		series[i] = s.Info
	}

	return Metadata{
		Columns:    columns,
		Series:     series,
		PlotConfig: p.Config,
	}
}
