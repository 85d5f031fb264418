package chart

import (
	"math"
	"testing"

	"quakeview/internal/severity"
	"quakeview/pkg/models"
)

type fakeHighlighter struct {
	highlighted []float64
	resets      int
}

func (f *fakeHighlighter) Highlight(lower float64) int {
	f.highlighted = append(f.highlighted, lower)
	return 0
}

func (f *fakeHighlighter) Reset() { f.resets++ }

func mags(ms ...float64) []models.Event {
	out := make([]models.Event, 0, len(ms))
	for _, m := range ms {
		out = append(out, models.Event{Magnitude: m})
	}
	return out
}

func TestBuildBucketsGroupsAndSorts(t *testing.T) {
	got := BuildBuckets(mags(5.0, 3.9, 2.1, 3.5))
	want := []models.Bucket{{Lower: 2, Count: 1}, {Lower: 3, Count: 2}, {Lower: 5, Count: 1}}
	if len(got) != len(want) {
		t.Fatalf("expected %d buckets, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bucket %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestBuildBucketsNegativeMagnitudeFloors(t *testing.T) {
	got := BuildBuckets(mags(-0.4))
	if len(got) != 1 || got[0].Lower != -1 {
		t.Fatalf("expected bucket -1, got %+v", got)
	}
}

func TestRenderBarGeometry(t *testing.T) {
	c := New(Geometry{Width: 200, Height: 120, Margin: 10, Padding: 0.1}, nil)
	c.Render(mags(2.1, 3.5, 3.9, 5.0))
	bars := c.Bars()
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if c.Total() != 4 {
		t.Fatalf("expected bucket sum 4, got %d", c.Total())
	}

	innerH := 100.0
	if math.Abs(bars[1].Height-innerH) > 1e-9 {
		t.Fatalf("tallest bar should fill inner height, got %v", bars[1].Height)
	}
	if math.Abs(bars[0].Height-innerH/2) > 1e-9 {
		t.Fatalf("expected half-height bar, got %v", bars[0].Height)
	}
	if math.Abs(bars[0].Y+bars[0].Height-110) > 1e-9 {
		t.Fatalf("bars should sit on the baseline, got y=%v h=%v", bars[0].Y, bars[0].Height)
	}
	for i := 1; i < len(bars); i++ {
		if bars[i].X <= bars[i-1].X+bars[i-1].Width {
			t.Fatalf("bars %d and %d overlap", i-1, i)
		}
		if math.Abs(bars[i].Width-bars[0].Width) > 1e-9 {
			t.Fatalf("bands must share one width")
		}
	}
	last := bars[len(bars)-1]
	if last.X+last.Width > 190+1e-9 {
		t.Fatalf("last bar exceeds inner width: %v", last.X+last.Width)
	}
	if bars[2].Color != severity.Orange {
		t.Fatalf("expected bucket 5 to be orange, got %s", bars[2].Color)
	}
}

func TestRenderEmptyHasNoBars(t *testing.T) {
	c := New(DefaultGeometry(), nil)
	c.Render(mags(1, 2))
	c.Render(nil)
	if len(c.Bars()) != 0 || c.Total() != 0 {
		t.Fatalf("expected empty chart")
	}
}

func TestHoverDrivesHighlighter(t *testing.T) {
	h := &fakeHighlighter{}
	c := New(DefaultGeometry(), h)
	c.Render(mags(3.2, 3.4, 4.1))

	if !c.HoverEnter(3) {
		t.Fatalf("expected bucket 3 to exist")
	}
	if c.Bars()[0].Color != HighlightColor {
		t.Fatalf("expected highlighted bar, got %s", c.Bars()[0].Color)
	}
	if len(h.highlighted) != 1 || h.highlighted[0] != 3 {
		t.Fatalf("expected highlight(3), got %v", h.highlighted)
	}

	if !c.HoverExit(3) {
		t.Fatalf("expected bucket 3 to exist")
	}
	if c.Bars()[0].Color != severity.LightGreen {
		t.Fatalf("expected bar color restored, got %s", c.Bars()[0].Color)
	}
	if h.resets != 1 {
		t.Fatalf("expected one reset, got %d", h.resets)
	}

	if c.HoverEnter(9) {
		t.Fatalf("unknown bucket should report false")
	}
	if len(h.highlighted) != 1 {
		t.Fatalf("unknown bucket must not reach highlighter")
	}
}

func TestClickDescribesBucket(t *testing.T) {
	c := New(DefaultGeometry(), nil)
	c.Render(mags(3.2, 3.4, 4.1))
	before := c.Bars()

	d, ok := c.Click(3, "Nov 14, 2023 22:13")
	if !ok {
		t.Fatalf("expected detail for bucket 3")
	}
	if d.Range != "3-4" || d.Count != 2 || d.LastUpdated != "Nov 14, 2023 22:13" {
		t.Fatalf("unexpected detail: %+v", d)
	}
	after := c.Bars()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("click changed bar %d", i)
		}
	}
	if _, ok := c.Click(7, ""); ok {
		t.Fatalf("expected no detail for unknown bucket")
	}
}
