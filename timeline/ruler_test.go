package timeline

import "testing"

func TestPlanTicksMajorSpacing(t *testing.T) {
	view := ViewState{PixelsPerSecond: 50, WidthPx: 960}
	ticks := PlanTicks(60000, view)
	if len(ticks) == 0 {
		t.Fatal("expected ticks for a 60s timeline")
	}

	var lastMajor float64 = -1
	for _, tick := range ticks {
		if tick.X < 0 || tick.X > view.WidthPx {
			t.Errorf("tick at %f is outside the viewport", tick.X)
		}
		if !tick.Major {
			continue
		}
		if tick.Label == "" {
			t.Errorf("major tick at %dms has no label", tick.Ms)
		}
		if lastMajor >= 0 && tick.X-lastMajor < minMajorSpacingPx-0.001 {
			t.Errorf("major ticks too close: %f after %f", tick.X, lastMajor)
		}
		lastMajor = tick.X
	}
}

func TestPlanTicksRespectsScroll(t *testing.T) {
	view := ViewState{PixelsPerSecond: 50, ScrollMs: 10000, WidthPx: 500}
	ticks := PlanTicks(60000, view)

	for _, tick := range ticks {
		if tick.Ms < view.ScrollMs {
			t.Errorf("tick at %dms is before the scroll position", tick.Ms)
		}
	}
}

func TestPlanTicksZoomChangesDensity(t *testing.T) {
	coarse := PlanTicks(60000, ViewState{PixelsPerSecond: 10, WidthPx: 960})
	fine := PlanTicks(60000, ViewState{PixelsPerSecond: 200, WidthPx: 960})

	coarseMajors, fineMajors := 0, 0
	var coarseInterval, fineInterval int64
	prevCoarse, prevFine := int64(-1), int64(-1)
	for _, tick := range coarse {
		if tick.Major {
			coarseMajors++
			if prevCoarse >= 0 && coarseInterval == 0 {
				coarseInterval = tick.Ms - prevCoarse
			}
			prevCoarse = tick.Ms
		}
	}
	for _, tick := range fine {
		if tick.Major {
			fineMajors++
			if prevFine >= 0 && fineInterval == 0 {
				fineInterval = tick.Ms - prevFine
			}
			prevFine = tick.Ms
		}
	}
	if coarseMajors == 0 || fineMajors == 0 {
		t.Fatal("expected major ticks at both zoom levels")
	}
	if fineInterval >= coarseInterval {
		t.Errorf("zooming in should shrink the label interval: fine %d, coarse %d", fineInterval, coarseInterval)
	}
}

func TestPlanTicksEmptyInputs(t *testing.T) {
	if ticks := PlanTicks(0, ViewState{PixelsPerSecond: 50, WidthPx: 960}); ticks != nil {
		t.Error("zero duration should produce no ticks")
	}
	if ticks := PlanTicks(60000, ViewState{}); ticks != nil {
		t.Error("zero zoom should produce no ticks")
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{0, "0:00"},
		{5000, "0:05"},
		{65000, "1:05"},
		{500, "0:00.5"},
		{90100, "1:30.1"},
	}
	for _, c := range cases {
		if got := FormatTime(c.ms); got != c.want {
			t.Errorf("FormatTime(%d) = %q, want %q", c.ms, got, c.want)
		}
	}
}

func TestViewStatePixelRoundTrip(t *testing.T) {
	view := ViewState{PixelsPerSecond: 100, ScrollMs: 2000, WidthPx: 800}
	if px := view.MsToPx(3000); px != 100 {
		t.Errorf("MsToPx(3000) = %f, want 100", px)
	}
	if ms := view.PxToMs(100); ms != 3000 {
		t.Errorf("PxToMs(100) = %d, want 3000", ms)
	}
}
