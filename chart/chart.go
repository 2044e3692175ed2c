// Package chart renders score histograms and genre bar charts with gonum/plot.
//
// The package only draws; binning, density estimation and counting happen in
// the caller. Charts are written to files whose extension selects the image
// format (png, svg, pdf, jpg, tif or eps).
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Chart sizes
const (
	HistogramWidth  = 10 * vg.Inch
	HistogramHeight = 6 * vg.Inch
	BarWidth        = 14 * vg.Inch
	BarHeight       = 8 * vg.Inch
)

var (
	// ErrUnsupportedFormat is returned for file extensions gonum/plot cannot encode.
	ErrUnsupportedFormat = errors.New("chart: unsupported image format")
	// ErrNoData is returned when a bar chart has no bars to draw.
	ErrNoData = errors.New("chart: no data")
)

// skyBlue fills histogram bars.
var skyBlue = color.RGBA{R: 135, G: 206, B: 235, A: 255}

// densityBlue draws the density curve on top of the bars.
var densityBlue = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// gridStyle is a light dashed grid line.
var gridStyle = draw.LineStyle{
	Color:  color.Gray{Y: 190},
	Width:  vg.Points(0.5),
	Dashes: []vg.Length{vg.Points(4), vg.Points(2)},
}

var supportedFormats = map[string]struct{}{
	"png": {}, "svg": {}, "pdf": {}, "jpg": {}, "jpeg": {}, "tif": {}, "tiff": {}, "eps": {},
}

// Format returns the image format selected by the extension of path.
func Format(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if _, ok := supportedFormats[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return ext, nil
}

// Labels holds the title and axis labels of a chart.
type Labels struct {
	Title string
	X     string
	Y     string
}

// Bin is one histogram bar spanning [Min, Max] with height Count.
type Bin struct {
	Min   float64
	Max   float64
	Count float64
}

// Point is one point of a curve.
type Point struct {
	X float64
	Y float64
}

// Bar is one labelled bar.
type Bar struct {
	Label string
	Value float64
}

func newPlot(labels Labels) *plot.Plot {
	p := plot.New()
	p.Title.Text = labels.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(15)
	p.X.Label.Text = labels.X
	p.X.Label.TextStyle.Font.Size = vg.Points(12)
	p.Y.Label.Text = labels.Y
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)
	return p
}

// Histogram draws bins as sky blue bars with an optional density curve and
// saves the chart to path.
func Histogram(path string, labels Labels, bins []Bin, density []Point) error {
	if _, err := Format(path); err != nil {
		return err
	}

	p := newPlot(labels)
	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	grid.Horizontal = gridStyle
	p.Add(grid)

	if len(bins) > 0 {
		h := &plotter.Histogram{
			Bins:      make([]plotter.HistogramBin, len(bins)),
			Width:     bins[0].Max - bins[0].Min,
			FillColor: skyBlue,
			LineStyle: plotter.DefaultLineStyle,
		}
		h.LineStyle.Color = color.White
		for i, b := range bins {
			h.Bins[i] = plotter.HistogramBin{Min: b.Min, Max: b.Max, Weight: b.Count}
		}
		p.Add(h)
	}

	if len(density) > 0 {
		xys := make(plotter.XYs, len(density))
		for i, pt := range density {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("chart: density line: %w", err)
		}
		line.Color = densityBlue
		line.Width = vg.Points(1.5)
		p.Add(line)
	}

	if err := p.Save(HistogramWidth, HistogramHeight, path); err != nil {
		return fmt.Errorf("chart: save %s: %w", path, err)
	}
	return nil
}

// HorizontalBars draws one horizontal bar per entry, the first entry at the
// top, each annotated with its value, and saves the chart to path.
func HorizontalBars(path string, labels Labels, bars []Bar) error {
	if _, err := Format(path); err != nil {
		return err
	}
	if len(bars) == 0 {
		return ErrNoData
	}

	p := newPlot(labels)
	grid := plotter.NewGrid()
	grid.Horizontal.Color = nil
	grid.Vertical = gridStyle
	p.Add(grid)

	// plot rows grow upwards, so the first bar goes last
	n := len(bars)
	names := make([]string, n)
	xys := make(plotter.XYs, n)
	valueLabels := make([]string, n)
	colors := barColors(n)
	for i, b := range bars {
		row := n - 1 - i
		names[row] = b.Label

		// one chart per bar so each bar carries its own color
		bc, err := plotter.NewBarChart(plotter.Values{b.Value}, vg.Points(barThickness(n)))
		if err != nil {
			return fmt.Errorf("chart: bars: %w", err)
		}
		bc.XMin = float64(row)
		bc.Horizontal = true
		bc.Color = colors[i]
		bc.LineStyle.Width = 0
		p.Add(bc)

		xys[row] = plotter.XY{X: b.Value + 1, Y: float64(row)}
		valueLabels[row] = strconv.FormatFloat(b.Value, 'f', -1, 64)
	}

	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: valueLabels})
	if err != nil {
		return fmt.Errorf("chart: labels: %w", err)
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].YAlign = draw.YCenter
		annotations.TextStyle[i].Font.Size = vg.Points(12)
	}
	p.Add(annotations)
	p.NominalY(names...)
	p.X.Min = 0

	if err := p.Save(BarWidth, BarHeight, path); err != nil {
		return fmt.Errorf("chart: save %s: %w", path, err)
	}
	return nil
}

func barThickness(n int) float64 {
	return 360 / float64(n+1)
}

// barColors samples a perceptual color map from dark to light.
func barColors(n int) []color.Color {
	cmap := moreland.Kindlmann()
	cmap.SetMin(0)
	cmap.SetMax(1)
	out := make([]color.Color, n)
	for i := range out {
		v := 0.25
		if n > 1 {
			v += 0.65 * float64(i) / float64(n-1)
		}
		c, err := cmap.At(v)
		if err != nil {
			c = skyBlue
		}
		out[i] = c
	}
	return out
}
