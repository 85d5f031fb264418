package dashboard

import (
	"sync"
	"time"

	"quakeview/internal/render/chart"
	"quakeview/internal/render/mapview"
	"quakeview/pkg/models"
)

// Status strings shown in the page status field.
const (
	StatusLoading = "Loading..."
	StatusOK      = "OK"
	StatusError   = "Error loading data"
)

// LastUpdatedLayout formats the feed generation time.
const LastUpdatedLayout = "Jan 2, 2006 15:04:05 MST"

// Config configures a Dashboard.
type Config struct {
	Location *time.Location
	Chart    chart.Geometry
}

// Dashboard owns every piece of display state: the current events, the map
// layer, the chart, the last-updated text and the status line.
type Dashboard struct {
	mu          sync.Mutex
	loc         *time.Location
	events      []models.Event
	layer       *mapview.Layer
	chart       *chart.Chart
	lastUpdated string
	status      string
	generation  uint64
	seq         uint64
	renderedAt  time.Time
	now         func() time.Time
}

// New creates an empty dashboard.
func New(cfg Config) *Dashboard {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	layer := mapview.NewLayer(loc)
	return &Dashboard{
		loc:    loc,
		layer:  layer,
		chart:  chart.New(cfg.Chart, layer),
		status: StatusLoading,
		now:    time.Now,
	}
}

// Apply replaces the event set with feed and redraws the map and chart.
// The last-updated text only changes when the feed carries a generation time.
func (d *Dashboard) Apply(feed *models.Feed, generation uint64) *models.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	events := make([]models.Event, len(feed.Events))
	copy(events, feed.Events)
	d.events = events
	if feed.HasGenerated {
		d.lastUpdated = time.UnixMilli(feed.GeneratedMs).In(d.loc).Format(LastUpdatedLayout)
	}
	d.layer.Render(d.events)
	d.chart.Render(d.events)
	d.status = StatusOK
	d.generation = generation
	d.seq++
	d.renderedAt = d.now()
	return d.snapshotLocked()
}

// Fail marks the last refresh as failed. Events, markers, chart and
// last-updated text are kept as they were.
func (d *Dashboard) Fail() *models.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = StatusError
	d.seq++
	return d.snapshotLocked()
}

// Highlight handles hover-enter on a chart bar.
func (d *Dashboard) Highlight(lower int) (*models.Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.chart.HoverEnter(lower) {
		return nil, false
	}
	d.seq++
	return d.snapshotLocked(), true
}

// Reset handles hover-exit on a chart bar.
func (d *Dashboard) Reset(lower int) (*models.Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.chart.HoverExit(lower) {
		return nil, false
	}
	d.seq++
	return d.snapshotLocked(), true
}

// Click handles a bar click.
func (d *Dashboard) Click(lower int) (chart.Detail, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chart.Click(lower, d.lastUpdated)
}

// Snapshot returns a copy of the current display state.
func (d *Dashboard) Snapshot() *models.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// Events returns a copy of the current event set.
func (d *Dashboard) Events() []models.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.Event, len(d.events))
	copy(out, d.events)
	return out
}

// ChartGeometry returns the canvas size the chart lays bars out in.
func (d *Dashboard) ChartGeometry() chart.Geometry {
	return d.chart.Geometry()
}

func (d *Dashboard) snapshotLocked() *models.Snapshot {
	return &models.Snapshot{
		Generation:  d.generation,
		Seq:         d.seq,
		RenderedAt:  d.renderedAt,
		Total:       len(d.events),
		LastUpdated: d.lastUpdated,
		Status:      d.status,
		Markers:     d.layer.Markers(),
		Bars:        d.chart.Bars(),
	}
}
