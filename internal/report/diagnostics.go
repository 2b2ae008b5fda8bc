package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/banshee-data/kick.report/internal/kick"
)

var diagnosticsHeader = []string{
	"frame", "raised", "hip_angle", "degenerate",
	"velocity", "acceleration", "jerk",
	"velocity_smooth", "acceleration_smooth",
	"kick", "positive_peak", "negative_peak",
}

// WriteDiagnosticsCSV writes one row per classified frame with the raised
// state, hip angle, every derivative, the number of the kick covering the
// frame (0 for none) and whether it is a velocity peak. Undefined values
// are written as empty cells.
func WriteDiagnosticsCSV(w io.Writer, r *kick.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(diagnosticsHeader); err != nil {
		return err
	}

	k := r.Kinematics
	positive := frameSet(r.PositivePeaks)
	negative := frameSet(r.NegativePeaks)
	kickAt := kickNumbers(r.Kicks)

	for i, fs := range r.States {
		row := []string{
			strconv.Itoa(fs.Frame),
			strconv.FormatBool(fs.Raised),
			formatValue(fs.HipAngle),
			strconv.FormatBool(fs.Degenerate),
			formatValue(k.Velocity.Values[i]),
			formatValue(k.Acceleration.Values[i]),
			formatValue(k.Jerk.Values[i]),
			formatValue(k.VelocitySmooth.Values[i]),
			formatValue(k.AccelerationSmooth.Values[i]),
			strconv.Itoa(kickAt(fs.Frame)),
			strconv.FormatBool(positive[fs.Frame]),
			strconv.FormatBool(negative[fs.Frame]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary prints the detected kicks, listing the coarse interval from
// the ankle edges next to the velocity-refined one.
func WriteSummary(w io.Writer, r *kick.Result) error {
	fmt.Fprintf(w, "Frames analysed: %d (degenerate: %d)\n", len(r.States), r.DegenerateFrames)
	fmt.Fprintf(w, "Kicks detected: %d (refinement rejected: %d)\n", len(r.Kicks), r.RejectedRefinements)
	// Rising edges match the streaming counter's total.
	fmt.Fprintf(w, "Rising edges: %d (%d closed, %d unclosed on the final frame)\n",
		len(r.Coarse)+len(r.Dangling), len(r.Coarse), len(r.Dangling))
	if len(r.Dangling) > 0 {
		fmt.Fprintf(w, "Unclosed rise on final frame: %v\n", r.Dangling)
	}
	if len(r.Kicks) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tankle edges\tvelocity refined\tframes\thip angle")
	for i, k := range r.Kicks {
		refined := k.Interval.String()
		if !k.Refined {
			refined = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%.1f°\n", i+1, k.Coarse, refined, k.Interval.Len(), k.Angle)
	}
	return tw.Flush()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func frameSet(frames []int) map[int]bool {
	set := make(map[int]bool, len(frames))
	for _, f := range frames {
		set[f] = true
	}
	return set
}

// kickNumbers returns a lookup from frame to the 1-based number of the
// reported kick interval containing it.
func kickNumbers(kicks []kick.Record) func(frame int) int {
	return func(frame int) int {
		for i, k := range kicks {
			if frame >= k.Interval.Start && frame <= k.Interval.End {
				return i + 1
			}
		}
		return 0
	}
}
