package observability

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"quakeview/pkg/models"
)

func TestCollectorExposesSnapshotGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}

	c.ObserveFetch(OutcomeOK, 120*time.Millisecond)
	c.ObserveFetch(OutcomeHTTPError, 10*time.Millisecond)
	c.ObserveSnapshot(&models.Snapshot{
		Total:      3,
		RenderedAt: time.Unix(1700000000, 0),
		Markers:    make([]models.Marker, 3),
		Bars: []models.Bar{
			{Bucket: models.Bucket{Lower: 2, Count: 1}},
			{Bucket: models.Bucket{Lower: 4, Count: 2}},
		},
	})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`quakeview_fetches_total{outcome="ok"} 1`,
		`quakeview_fetches_total{outcome="http_error"} 1`,
		`quakeview_events 3`,
		`quakeview_markers 3`,
		`quakeview_bucket_events{lower="4"} 2`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, out)
		}
	}
}

func TestCollectorReusesExistingRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewCollector(reg); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := NewCollector(reg); err != nil {
		t.Fatalf("second registration should reuse collectors: %v", err)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.ObserveFetch(OutcomeOK, time.Second)
	c.ObserveSnapshot(&models.Snapshot{})
	c.ObserveInteraction("hover")
}
