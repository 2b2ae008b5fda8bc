package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/kick.report/internal/kick"
)

// ChartOptions configures RenderHTML.
type ChartOptions struct {
	Title string
	// AssetsHost overrides where the echarts scripts are loaded from. Empty
	// keeps the library default.
	AssetsHost string
}

// RenderHTML writes an interactive page with the hip angle and its
// derivatives over frames, kick spans and velocity peaks highlighted, and a
// bar chart of the angle recorded for each kick.
func RenderHTML(w io.Writer, r *kick.Result, o ChartOptions) error {
	if len(r.States) == 0 {
		return ErrNoFrames
	}
	k := r.Kinematics
	frames := k.Angle.Frames

	angle := newLineChart(o, "Hip Angle", "deg", frames)
	angle.AddSeries("hip angle", lineData(k.Angle), hideSymbols()).
		AddSeries("kick", lineData(maskToKicks(k.Angle, r.Kicks)),
			hideSymbols(), charts.WithLineStyleOpts(opts.LineStyle{Width: 4}))

	velocity := newLineChart(o, "Hip Velocity", "deg/frame", frames)
	velocity.AddSeries("raw", lineData(k.Velocity), hideSymbols()).
		AddSeries("smoothed", lineData(k.VelocitySmooth), hideSymbols()).
		AddSeries("peaks (+)", lineData(maskToFrames(k.VelocitySmooth, r.PositivePeaks)), showSymbols()).
		AddSeries("peaks (-)", lineData(maskToFrames(k.VelocitySmooth, r.NegativePeaks)), showSymbols())

	acceleration := newLineChart(o, "Hip Acceleration", "deg/frame²", frames)
	acceleration.AddSeries("raw", lineData(k.Acceleration), hideSymbols()).
		AddSeries("smoothed", lineData(k.AccelerationSmooth), hideSymbols())

	jerk := newLineChart(o, "Hip Jerk", "deg/frame³", frames)
	jerk.AddSeries("jerk", lineData(k.Jerk), hideSymbols())

	page := components.NewPage()
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}
	page.AddCharts(angle, velocity, acceleration, jerk, kickAngleBar(o, r.Kicks))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render error: %w", err)
	}
	return nil
}

func initOpts(o ChartOptions) opts.Initialization {
	ini := opts.Initialization{PageTitle: o.Title, Width: "100%", Height: "360px"}
	if o.AssetsHost != "" {
		ini.AssetsHost = o.AssetsHost
	}
	return ini
}

func newLineChart(o ChartOptions, title, yName string, frames []int) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(o)),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: o.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	line.SetXAxis(frames)
	return line
}

func kickAngleBar(o ChartOptions, kicks []kick.Record) *charts.Bar {
	x := make([]string, len(kicks))
	y := make([]opts.BarData, len(kicks))
	for i, k := range kicks {
		x[i] = fmt.Sprintf("#%d", i+1)
		y[i] = opts.BarData{Value: math.Round(k.Angle*10) / 10}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts(o)),
		charts.WithTitleOpts(opts.Title{Title: "Hip Angle per Kick", Subtitle: fmt.Sprintf("kicks=%d", len(kicks))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("angle", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func hideSymbols() charts.SeriesOpts {
	return charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)})
}

func showSymbols() charts.SeriesOpts {
	return charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true), SymbolSize: 10})
}

// lineData converts s for echarts. JSON has no NaN, and echarts reads "-"
// as a missing point.
func lineData(s kick.Series) []opts.LineData {
	out := make([]opts.LineData, len(s.Values))
	for i, v := range s.Values {
		if math.IsNaN(v) {
			out[i] = opts.LineData{Value: "-"}
			continue
		}
		out[i] = opts.LineData{Value: v}
	}
	return out
}

// maskToKicks keeps the samples of s that fall inside a reported kick.
func maskToKicks(s kick.Series, kicks []kick.Record) kick.Series {
	out := kick.Series{Frames: s.Frames, Values: make([]float64, len(s.Values))}
	for i := range out.Values {
		out.Values[i] = math.NaN()
	}
	for _, k := range kicks {
		i, j := s.Span(k.Interval.Start, k.Interval.End)
		copy(out.Values[i:j], s.Values[i:j])
	}
	return out
}

// maskToFrames keeps the samples of s at the given frames.
func maskToFrames(s kick.Series, frames []int) kick.Series {
	out := kick.Series{Frames: s.Frames, Values: make([]float64, len(s.Values))}
	for i := range out.Values {
		out.Values[i] = math.NaN()
	}
	for _, f := range frames {
		i, j := s.Span(f, f)
		copy(out.Values[i:j], s.Values[i:j])
	}
	return out
}
