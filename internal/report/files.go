package report

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/kailas-cloud/streameval/internal/domain"
)

// seriesColors follows the original chart: red, blue, green, black.
var seriesColors = []color.Color{
	color.RGBA{R: 0xff, A: 0xff},
	color.RGBA{B: 0xff, A: 0xff},
	color.RGBA{G: 0x80, A: 0xff},
	color.Black,
}

func seriesColor(i int) color.Color {
	if i < len(seriesColors) {
		return seriesColors[i]
	}
	return plotutil.Color(i)
}

func fileName(s domain.Summary, ext string) string {
	return fmt.Sprintf("run-%03d-%s.%s", s.Sequence, s.RunID, ext)
}

// Chart renders accuracy against batch number, one line per model, as PNG.
type Chart struct {
	dir           string
	width, height vg.Length
}

// NewChart writes charts into dir with the given size in centimetres.
func NewChart(dir string, widthCM, heightCM int) *Chart {
	return &Chart{
		dir:    dir,
		width:  vg.Length(widthCM) * vg.Centimeter,
		height: vg.Length(heightCM) * vg.Centimeter,
	}
}

// Plot builds the chart for s.
func Plot(s domain.Summary) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Run %d (%s)", s.Sequence, s.CompletedAt.Format("2006-01-02 15:04:05"))
	p.X.Label.Text = "Num Of Batches"
	p.Y.Label.Text = "Accuracy"
	p.X.Min, p.X.Max = 1, float64(max(s.TargetBatches, 1))
	p.Y.Min, p.Y.Max = 0, 1
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	for i, series := range s.Series {
		if len(series.Accuracy) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(series.Accuracy))
		for j, acc := range series.Accuracy {
			x := j + 1
			if j < len(series.Batches) {
				x = series.Batches[j]
			}
			pts[j].X, pts[j].Y = float64(x), acc
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", series.ModelID, err)
		}
		line.Color = seriesColor(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(series.Name, line)
	}
	return p, nil
}

// Report implements Reporter.
func (c *Chart) Report(_ context.Context, s domain.Summary) error {
	p, err := Plot(s)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	path := filepath.Join(c.dir, fileName(s, "png"))
	if err := p.Save(c.width, c.height, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}

// JSON writes the machine-readable series export of each run.
type JSON struct {
	dir string
}

// NewJSON writes exports into dir.
func NewJSON(dir string) *JSON { return &JSON{dir: dir} }

// Report implements Reporter.
func (j *JSON) Report(_ context.Context, s domain.Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.MkdirAll(j.dir, 0o750); err != nil {
		return fmt.Errorf("create series dir: %w", err)
	}
	path := filepath.Join(j.dir, fileName(s, "json"))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write series %s: %w", path, err)
	}
	return nil
}
