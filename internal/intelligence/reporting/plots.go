package reporting

import (
	"bytes"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/turtacn/solubility-bench/internal/intelligence/training"
	"github.com/turtacn/solubility-bench/pkg/errors"
)

// PlotSize is the canvas size in inches.
type PlotSize struct {
	Width, Height float64
}

// DefaultHistorySize and DefaultBarSize match the reference figures.
var (
	DefaultHistorySize = PlotSize{Width: 14, Height: 4}
	DefaultBarSize     = PlotSize{Width: 8, Height: 6}
)

var (
	trainColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	valColor   = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	barColor   = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

func (s PlotSize) orDefault(def PlotSize) PlotSize {
	if s.Width <= 0 || s.Height <= 0 {
		return def
	}
	return s
}

// HistoryPlot renders a PNG with two panels: the raw per-epoch losses on the
// left and their natural logarithm on the right, each with a train and a
// validation curve.  Non-positive losses are left out of the log panel.
func HistoryPlot(title string, h *training.History, size PlotSize) ([]byte, error) {
	if h == nil || h.Len() == 0 {
		return nil, errors.New(errors.ErrCodeReportPlotFailed, "history is empty")
	}
	size = size.orDefault(DefaultHistorySize)

	raw, err := lossPanel(title+" loss", "loss", h, func(v float64) (float64, bool) { return v, isFinite(v) })
	if err != nil {
		return nil, err
	}
	logged, err := lossPanel(title+" log loss", "ln(loss)", h, func(v float64) (float64, bool) {
		if v <= 0 || !isFinite(v) {
			return 0, false
		}
		return math.Log(v), true
	})
	if err != nil {
		return nil, err
	}

	img := vgimg.New(vg.Length(size.Width)*vg.Inch, vg.Length(size.Height)*vg.Inch)
	dc := draw.New(img)
	pad := vg.Millimeter * 2
	tiles := draw.Tiles{
		Rows: 1, Cols: 2,
		PadX: 2 * pad, PadY: pad,
		PadTop: pad, PadBottom: pad, PadLeft: pad, PadRight: pad,
	}
	canvases := plot.Align([][]*plot.Plot{{raw, logged}}, tiles, dc)
	raw.Draw(canvases[0][0])
	logged.Draw(canvases[0][1])

	return encodePNG(img)
}

func lossPanel(title, ylabel string, h *training.History, f func(float64) (float64, bool)) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	for _, series := range []struct {
		name   string
		values []float64
		color  color.Color
	}{
		{"train", h.Train, trainColor},
		{"val", h.Val, valColor},
	} {
		xys := make(plotter.XYs, 0, len(series.values))
		for i, v := range series.values {
			if y, ok := f(v); ok {
				xys = append(xys, plotter.XY{X: float64(i + 1), Y: y})
			}
		}
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeReportPlotFailed, "failed to build loss curve")
		}
		line.Color = series.color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(series.name, line)
	}
	return p, nil
}

// BarChart renders the per-method test MSE as a PNG bar chart.
func BarChart(series []BarEntry, size PlotSize) ([]byte, error) {
	if len(series) == 0 {
		return nil, errors.New(errors.ErrCodeReportPlotFailed, "bar series is empty")
	}
	size = size.orDefault(DefaultBarSize)

	values := make(plotter.Values, len(series))
	names := make([]string, len(series))
	for i, e := range series {
		values[i] = e.MSE
		names[i] = e.Method
	}

	p := plot.New()
	p.Title.Text = "Test MSE by method"
	p.Y.Label.Text = "MSE"
	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportPlotFailed, "failed to build bar chart")
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)

	img := vgimg.New(vg.Length(size.Width)*vg.Inch, vg.Length(size.Height)*vg.Inch)
	p.Draw(draw.New(img))
	return encodePNG(img)
}

func encodePNG(img *vgimg.Canvas) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportPlotFailed, "failed to encode png")
	}
	return buf.Bytes(), nil
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

//Personal.AI order the ending
