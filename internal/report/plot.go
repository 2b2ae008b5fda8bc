package report

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/kick.report/internal/kick"
)

const (
	plotWidth   = 14 * vg.Inch
	panelHeight = 4 * vg.Inch
)

var (
	colorAngle    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	colorRaw      = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	colorSmooth   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorJerk     = color.RGBA{R: 148, G: 103, B: 189, A: 255}
	colorPositive = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	colorNegative = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	colorKickSpan = color.RGBA{R: 255, G: 215, B: 0, A: 70}
	colorZero     = color.RGBA{A: 255}
)

// SavePNG writes the four-panel diagnostic plot of r to path.
func SavePNG(path string, r *kick.Result, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WritePNG(f, r, title); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePNG renders four stacked panels sharing the frame axis: hip angle
// with the kick spans shaded and numbered, raw and smoothed velocity with
// the detected peaks, raw and smoothed acceleration, and jerk.
func WritePNG(w io.Writer, r *kick.Result, title string) error {
	if len(r.States) == 0 {
		return ErrNoFrames
	}

	builders := []func(*kick.Result) (*plot.Plot, error){
		anglePanel, velocityPanel, accelerationPanel, jerkPanel,
	}
	grid := make([][]*plot.Plot, len(builders))
	for i, build := range builders {
		p, err := build(r)
		if err != nil {
			return err
		}
		p.Legend.Top = true
		p.Legend.Left = false
		p.Legend.XOffs = -10
		p.Legend.YOffs = -10
		grid[i] = []*plot.Plot{p}
	}
	if title != "" {
		grid[0][0].Title.Text = title + " - " + grid[0][0].Title.Text
	}

	img := vgimg.New(plotWidth, panelHeight*vg.Length(len(grid)))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(grid),
		Cols:      1,
		PadTop:    vg.Points(8),
		PadBottom: vg.Points(8),
		PadLeft:   vg.Points(8),
		PadRight:  vg.Points(8),
		PadY:      vg.Points(16),
	}
	canvases := plot.Align(grid, tiles, dc)
	for i := range grid {
		grid[i][0].Draw(canvases[i][0])
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

func newPanel(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

func anglePanel(r *kick.Result) (*plot.Plot, error) {
	p := newPanel("Hip Angle", "Angle (deg)")

	lo, hi := valueRange(r.Kinematics.Angle)
	labels := plotter.XYLabels{}
	for i, k := range r.Kicks {
		x0, x1 := float64(k.Interval.Start), float64(k.Interval.End)
		span, err := plotter.NewPolygon(plotter.XYs{{X: x0, Y: lo}, {X: x1, Y: lo}, {X: x1, Y: hi}, {X: x0, Y: hi}})
		if err != nil {
			return nil, fmt.Errorf("kick %d span: %w", i+1, err)
		}
		span.Color = colorKickSpan
		span.LineStyle.Width = 0
		p.Add(span)
		if i == 0 {
			p.Legend.Add("kick", span)
		}
		labels.XYs = append(labels.XYs, plotter.XY{X: x0, Y: hi})
		labels.Labels = append(labels.Labels, fmt.Sprintf("#%d %.0f°", i+1, k.Angle))
	}

	if err := addSeries(p, "hip angle", r.Kinematics.Angle, colorAngle, vg.Points(1.5)); err != nil {
		return nil, err
	}

	if len(labels.XYs) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, err
		}
		p.Add(l)
	}
	return p, nil
}

func velocityPanel(r *kick.Result) (*plot.Plot, error) {
	p := newPanel("Hip Velocity", "deg/frame")
	k := r.Kinematics
	if err := addSeries(p, "raw", k.Velocity, colorRaw, vg.Points(1)); err != nil {
		return nil, err
	}
	if err := addSeries(p, "smoothed", k.VelocitySmooth, colorSmooth, vg.Points(1.5)); err != nil {
		return nil, err
	}
	if err := addPeaks(p, "peaks (+)", k.VelocitySmooth, r.PositivePeaks, draw.TriangleGlyph{}, colorPositive); err != nil {
		return nil, err
	}
	if err := addPeaks(p, "peaks (-)", k.VelocitySmooth, r.NegativePeaks, draw.BoxGlyph{}, colorNegative); err != nil {
		return nil, err
	}
	addZeroLine(p)
	return p, nil
}

func accelerationPanel(r *kick.Result) (*plot.Plot, error) {
	p := newPanel("Hip Acceleration", "deg/frame²")
	if err := addSeries(p, "raw", r.Kinematics.Acceleration, colorRaw, vg.Points(1)); err != nil {
		return nil, err
	}
	if err := addSeries(p, "smoothed", r.Kinematics.AccelerationSmooth, colorSmooth, vg.Points(1.5)); err != nil {
		return nil, err
	}
	addZeroLine(p)
	return p, nil
}

func jerkPanel(r *kick.Result) (*plot.Plot, error) {
	p := newPanel("Hip Jerk", "deg/frame³")
	if err := addSeries(p, "jerk", r.Kinematics.Jerk, colorJerk, vg.Points(1)); err != nil {
		return nil, err
	}
	addZeroLine(p)
	return p, nil
}

// addSeries draws s as one line per run of defined samples, so undefined
// samples leave a gap instead of being bridged.
func addSeries(p *plot.Plot, name string, s kick.Series, c color.Color, width vg.Length) error {
	for i, seg := range segments(s) {
		line, err := plotter.NewLine(seg)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		line.Color = c
		line.Width = width
		p.Add(line)
		if i == 0 {
			p.Legend.Add(name, line)
		}
	}
	return nil
}

func addPeaks(p *plot.Plot, name string, s kick.Series, frames []int, shape draw.GlyphDrawer, c color.Color) error {
	pts := make(plotter.XYs, 0, len(frames))
	for _, f := range frames {
		if v, ok := s.At(f); ok {
			pts = append(pts, plotter.XY{X: float64(f), Y: v})
		}
	}
	if len(pts) == 0 {
		return nil
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	sc.GlyphStyle.Shape = shape
	sc.GlyphStyle.Color = c
	sc.GlyphStyle.Radius = vg.Points(4)
	p.Add(sc)
	p.Legend.Add(name, sc)
	return nil
}

func addZeroLine(p *plot.Plot) {
	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.Color = colorZero
	zero.Width = vg.Points(0.5)
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(zero)
}

func segments(s kick.Series) []plotter.XYs {
	var (
		out []plotter.XYs
		cur plotter.XYs
	)
	for i, v := range s.Values {
		if math.IsNaN(v) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(s.Frames[i]), Y: v})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// valueRange returns the defined minimum and maximum of s, or 0, 1 when
// nothing is defined.
func valueRange(s kick.Series) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return 0, 1
	}
	return lo, hi
}
