package timeline

import "fmt"

// ViewState carries the zoom and viewport geometry of the timeline view.
// It is owned by the timeline and passed down explicitly; nothing reads
// zoom or scroll from ambient state.
type ViewState struct {
	PixelsPerSecond float64 // zoom level
	ScrollMs        int64   // leftmost visible timeline position
	WidthPx         float64 // visible viewport width
}

// DefaultZoom is the starting zoom level in pixels per second.
const DefaultZoom = 50.0

// Tick is one ruler mark.
type Tick struct {
	X     float64 // pixel offset from the viewport's left edge
	Ms    int64   // timeline position
	Label string  // empty for minor ticks
	Major bool
}

// tickIntervalsMs is the ladder of candidate ruler spacings.
var tickIntervalsMs = []int64{100, 250, 500, 1000, 2000, 5000, 10000, 15000, 30000, 60000, 120000, 300000, 600000}

// minMajorSpacingPx is the smallest pixel gap between labeled ticks before
// the planner steps up to a coarser interval.
const minMajorSpacingPx = 70.0

// MsToPx converts a timeline position to a viewport pixel offset.
func (v ViewState) MsToPx(ms int64) float64 {
	return float64(ms-v.ScrollMs) / 1000.0 * v.PixelsPerSecond
}

// PxToMs converts a viewport pixel offset back to a timeline position.
func (v ViewState) PxToMs(px float64) int64 {
	return v.ScrollMs + int64(px/v.PixelsPerSecond*1000.0)
}

// PlanTicks lays out the ruler for a timeline of the given duration. Major
// ticks carry labels; each major interval is subdivided into four minor
// ticks. The result depends only on the arguments.
func PlanTicks(durationMs int64, view ViewState) []Tick {
	if durationMs <= 0 || view.PixelsPerSecond <= 0 || view.WidthPx <= 0 {
		return nil
	}

	interval := tickIntervalsMs[len(tickIntervalsMs)-1]
	for _, candidate := range tickIntervalsMs {
		if float64(candidate)/1000.0*view.PixelsPerSecond >= minMajorSpacingPx {
			interval = candidate
			break
		}
	}
	minor := interval / 4

	endMs := view.ScrollMs + int64(view.WidthPx/view.PixelsPerSecond*1000.0)
	if endMs > durationMs {
		endMs = durationMs
	}

	start := view.ScrollMs / interval * interval
	if start < 0 {
		start = 0
	}

	var ticks []Tick
	for ms := start; ms <= endMs; ms += minor {
		x := view.MsToPx(ms)
		if x < 0 || x > view.WidthPx {
			continue
		}
		if ms%interval == 0 {
			ticks = append(ticks, Tick{X: x, Ms: ms, Label: FormatTime(ms), Major: true})
		} else {
			ticks = append(ticks, Tick{X: x, Ms: ms})
		}
	}
	return ticks
}

// FormatTime renders a timeline position as m:ss, with tenths shown when the
// position is not on a whole second.
func FormatTime(ms int64) string {
	totalSeconds := ms / 1000
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60
	tenths := (ms % 1000) / 100
	if tenths == 0 {
		return fmt.Sprintf("%d:%02d", minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d.%d", minutes, seconds, tenths)
}
