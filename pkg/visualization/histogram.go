// Package visualization renders the distribution of per-vertex and
// per-triangle fields as PNG histograms, so that quality reports can be
// inspected without a surface viewer.
package visualization

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"surfacesfetus/internal/models"
)

// Histogram describes how a field is plotted
type Histogram struct {
	// Title is drawn above the plot
	Title string

	// XLabel names the measured quantity
	XLabel string

	// Bins is the number of histogram bars
	Bins int

	// Markers are drawn as vertical dashed lines, e.g. outlier fences.
	// Non-finite markers are ignored.
	Markers []float64

	// Width and Height are the image dimensions
	Width  vg.Length
	Height vg.Length
}

// NewHistogram creates a 50-bin histogram of 6x4 inches
func NewHistogram(title, xLabel string) *Histogram {
	return &Histogram{
		Title:  title,
		XLabel: xLabel,
		Bins:   50,
		Width:  6 * vg.Inch,
		Height: 4 * vg.Inch,
	}
}

// Plot builds the plot of values. Infinite and NaN values cannot be binned;
// they are left out and their number is returned.
func (h *Histogram) Plot(values []float64) (*plot.Plot, int, error) {
	finite := make(plotter.Values, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	skipped := len(values) - len(finite)
	if len(finite) == 0 {
		return nil, skipped, models.NewError(models.ErrDomain, "histogram", -1, math.NaN(),
			"no finite values to plot")
	}

	hist, err := plotter.NewHist(finite, h.Bins)
	if err != nil {
		return nil, skipped, fmt.Errorf("failed to bin values: %w", err)
	}
	hist.FillColor = color.RGBA{R: 70, G: 110, B: 170, A: 255}

	p := plot.New()
	p.Title.Text = h.Title
	p.X.Label.Text = h.XLabel
	p.Y.Label.Text = "count"
	p.Add(plotter.NewGrid(), hist)

	top := 0.0
	for _, bin := range hist.Bins {
		top = math.Max(top, bin.Weight)
	}
	for _, m := range h.Markers {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			continue
		}
		line, err := plotter.NewLine(plotter.XYs{{X: m, Y: 0}, {X: m, Y: top}})
		if err != nil {
			return nil, skipped, fmt.Errorf("failed to draw marker: %w", err)
		}
		line.Color = color.RGBA{R: 200, A: 255}
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(line)
	}
	return p, skipped, nil
}

// WritePNG renders the histogram of values to w as a PNG image and returns
// the number of non-finite values left out
func (h *Histogram) WritePNG(w io.Writer, values []float64) (int, error) {
	p, skipped, err := h.Plot(values)
	if err != nil {
		return skipped, err
	}

	canvas := vgimg.New(h.Width, h.Height)
	p.Draw(draw.New(canvas))
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(w); err != nil {
		return skipped, fmt.Errorf("failed to encode histogram: %w", err)
	}
	return skipped, nil
}

// Save writes the histogram of values to a PNG file
func (h *Histogram) Save(values []float64, filename string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to create histogram file: %w", err)
	}
	skipped, err := h.WritePNG(file, values)
	if err != nil {
		file.Close()
		return skipped, err
	}
	return skipped, file.Close()
}
