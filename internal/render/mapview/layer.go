package mapview

import (
	"fmt"
	"html"
	"time"

	"quakeview/internal/severity"
	"quakeview/pkg/models"
)

const (
	// PopupTimeLayout formats event times in popups.
	PopupTimeLayout = "Mon, 02 Jan 2006 15:04:05 MST"

	baseWeight = 1
)

// Layer owns the markers currently drawn on the map. It is not safe for
// concurrent use; callers serialize access.
type Layer struct {
	loc     *time.Location
	order   []string
	markers map[string]*models.Marker
}

// NewLayer creates an empty layer. Popup times are shown in loc (time.Local when nil).
func NewLayer(loc *time.Location) *Layer {
	if loc == nil {
		loc = time.Local
	}
	return &Layer{
		loc:     loc,
		markers: make(map[string]*models.Marker),
	}
}

// Render removes every existing marker and draws one marker per event.
func (l *Layer) Render(events []models.Event) {
	l.Clear()
	l.order = make([]string, 0, len(events))
	for i, ev := range events {
		id := l.uniqueID(ev.ID, i)
		color := severity.Color(ev.Magnitude)
		style := models.MarkerStyle{
			Color:     color,
			FillColor: color,
			Weight:    baseWeight,
			Radius:    severity.Radius(ev.Magnitude),
		}
		l.markers[id] = &models.Marker{
			ID:            id,
			Latitude:      ev.Latitude,
			Longitude:     ev.Longitude,
			Magnitude:     ev.Magnitude,
			Popup:         l.popup(ev),
			Style:         style,
			OriginalStyle: style,
		}
		l.order = append(l.order, id)
	}
}

// Clear removes all markers.
func (l *Layer) Clear() {
	l.markers = make(map[string]*models.Marker)
	l.order = nil
}

// Len returns the number of markers on the layer.
func (l *Layer) Len() int {
	return len(l.order)
}

// Markers returns copies of the markers in render order.
func (l *Layer) Markers() []models.Marker {
	out := make([]models.Marker, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.markers[id])
	}
	return out
}

// Marker returns a copy of one marker.
func (l *Layer) Marker(id string) (models.Marker, bool) {
	m, ok := l.markers[id]
	if !ok {
		return models.Marker{}, false
	}
	return *m, true
}

// uniqueID keeps marker identity unique so marker count matches event count.
// A suffixed id may itself collide with an upstream id, so keep probing.
func (l *Layer) uniqueID(id string, index int) string {
	if _, taken := l.markers[id]; !taken && id != "" {
		return id
	}
	for n := index; ; n++ {
		candidate := fmt.Sprintf("%s#%d", id, n)
		if _, taken := l.markers[candidate]; !taken {
			return candidate
		}
	}
}

func (l *Layer) popup(ev models.Event) string {
	return fmt.Sprintf("<b>%s</b><br>Magnitude: %.1f<br>Depth: %.1f km<br>Time: %s",
		html.EscapeString(ev.Place),
		ev.Magnitude,
		ev.DepthKm,
		ev.Time().In(l.loc).Format(PopupTimeLayout),
	)
}

// WorldBounds are the fixed map bounds, [[south, west], [north, east]].
var WorldBounds = [2][2]float64{{-90, -180}, {90, 180}}
