package dashboard

import (
	"testing"
	"time"

	"quakeview/internal/render/chart"
	"quakeview/internal/render/mapview"
	"quakeview/pkg/models"
)

func feedOf(generated int64, mags ...float64) *models.Feed {
	f := &models.Feed{GeneratedMs: generated, HasGenerated: generated > 0}
	for i, m := range mags {
		f.Events = append(f.Events, models.Event{ID: string(rune('a' + i)), Magnitude: m, DepthKm: 5})
	}
	return f
}

func newTestDashboard() *Dashboard {
	return New(Config{Location: time.UTC, Chart: chart.DefaultGeometry()})
}

func TestApplyKeepsCountsInSync(t *testing.T) {
	d := newTestDashboard()
	snap := d.Apply(feedOf(1700000000000, 2.1, 3.5, 3.9, 5.0), 1)

	if snap.Total != 4 || len(snap.Markers) != 4 {
		t.Fatalf("expected 4 events and markers, got total=%d markers=%d", snap.Total, len(snap.Markers))
	}
	sum := 0
	for _, b := range snap.Bars {
		sum += b.Count
	}
	if sum != 4 {
		t.Fatalf("expected bucket sum 4, got %d", sum)
	}
	if snap.Status != StatusOK {
		t.Fatalf("expected OK status, got %q", snap.Status)
	}
	if snap.LastUpdated != "Nov 14, 2023 22:13:20 UTC" {
		t.Fatalf("unexpected last updated %q", snap.LastUpdated)
	}
	if snap.Generation != 1 {
		t.Fatalf("expected generation 1, got %d", snap.Generation)
	}
}

func TestApplyWithoutGeneratedKeepsPreviousLastUpdated(t *testing.T) {
	d := newTestDashboard()
	d.Apply(feedOf(1700000000000, 1), 1)
	snap := d.Apply(feedOf(0, 2, 3), 2)
	if snap.LastUpdated != "Nov 14, 2023 22:13:20 UTC" {
		t.Fatalf("expected last updated to stay, got %q", snap.LastUpdated)
	}

	fresh := newTestDashboard()
	if got := fresh.Apply(feedOf(0, 1), 1).LastUpdated; got != "" {
		t.Fatalf("expected unset last updated, got %q", got)
	}
}

func TestApplyEmptyFeed(t *testing.T) {
	d := newTestDashboard()
	d.Apply(feedOf(1, 4.4, 5.5), 1)
	snap := d.Apply(feedOf(2), 2)
	if snap.Total != 0 || len(snap.Markers) != 0 || len(snap.Bars) != 0 {
		t.Fatalf("expected empty display, got %+v", snap)
	}
}

func TestFailKeepsPreviousDisplay(t *testing.T) {
	d := newTestDashboard()
	good := d.Apply(feedOf(1700000000000, 1.5, 6.2), 1)

	snap := d.Fail()
	if snap.Status != StatusError {
		t.Fatalf("expected error status, got %q", snap.Status)
	}
	if snap.Total != good.Total || len(snap.Markers) != len(good.Markers) || len(snap.Bars) != len(good.Bars) {
		t.Fatalf("failure changed the display: %+v", snap)
	}
	if snap.LastUpdated != good.LastUpdated {
		t.Fatalf("failure changed last updated")
	}
	if len(d.Events()) != 2 {
		t.Fatalf("expected events kept, got %d", len(d.Events()))
	}
}

func TestHighlightAndResetThroughChart(t *testing.T) {
	d := newTestDashboard()
	d.Apply(feedOf(0, 2.9, 3.0, 3.9, 4.0), 1)

	snap, ok := d.Highlight(3)
	if !ok {
		t.Fatalf("expected bucket 3")
	}
	highlighted := 0
	for _, m := range snap.Markers {
		if m.Style.Color == mapview.HighlightColor && m.Style.Weight == 5 {
			highlighted++
		}
	}
	if highlighted != 2 {
		t.Fatalf("expected 2 highlighted markers, got %d", highlighted)
	}
	for _, b := range snap.Bars {
		if b.Lower == 3 && b.Color != chart.HighlightColor {
			t.Fatalf("expected bar 3 highlighted, got %s", b.Color)
		}
	}

	snap, ok = d.Reset(3)
	if !ok {
		t.Fatalf("expected bucket 3")
	}
	for _, m := range snap.Markers {
		if m.Style != m.OriginalStyle {
			t.Fatalf("marker %s not restored", m.ID)
		}
	}

	if _, ok := d.Highlight(8); ok {
		t.Fatalf("expected unknown bucket")
	}
}

func TestClickUsesLastUpdated(t *testing.T) {
	d := newTestDashboard()
	d.Apply(feedOf(1700000000000, 3.1, 3.2), 1)
	detail, ok := d.Click(3)
	if !ok || detail.Count != 2 || detail.LastUpdated != "Nov 14, 2023 22:13:20 UTC" {
		t.Fatalf("unexpected detail %+v ok=%v", detail, ok)
	}
}

func TestSeqAdvancesOnEveryDisplayChange(t *testing.T) {
	d := New(Config{Location: time.UTC})
	s1 := d.Apply(&models.Feed{Events: []models.Event{{ID: "a", Magnitude: 3.2}}}, 1)
	s2, ok := d.Highlight(3)
	if !ok {
		t.Fatalf("expected bucket 3 to exist")
	}
	s3, _ := d.Reset(3)
	s4 := d.Fail()
	if !(s1.Seq < s2.Seq && s2.Seq < s3.Seq && s3.Seq < s4.Seq) {
		t.Fatalf("expected increasing seqs, got %d %d %d %d", s1.Seq, s2.Seq, s3.Seq, s4.Seq)
	}
	if _, ok := d.Highlight(9); ok {
		t.Fatalf("expected unknown bucket to be rejected")
	}
	if d.Snapshot().Seq != s4.Seq {
		t.Fatalf("expected rejected hover to leave seq at %d, got %d", s4.Seq, d.Snapshot().Seq)
	}
}
