package usgs

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	geojson "github.com/paulmach/go.geojson"

	"quakeview/pkg/models"
)

type feedMetadata struct {
	Metadata *struct {
		Generated *int64 `json:"generated"`
	} `json:"metadata"`
}

// Decode converts a GeoJSON FeatureCollection into a Feed. Feature order is kept.
func Decode(data []byte) (*models.Feed, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, &DecodeError{FeatureIndex: -1, Err: err}
	}

	var meta feedMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, &DecodeError{FeatureIndex: -1, Err: err}
	}

	feed := &models.Feed{Events: make([]models.Event, 0, len(fc.Features))}
	if meta.Metadata != nil && meta.Metadata.Generated != nil {
		feed.GeneratedMs = *meta.Metadata.Generated
		feed.HasGenerated = true
	}

	for i, f := range fc.Features {
		ev, err := decodeFeature(f)
		if err != nil {
			return nil, &DecodeError{FeatureIndex: i, Err: err}
		}
		feed.Events = append(feed.Events, ev)
	}
	return feed, nil
}

func decodeFeature(f *geojson.Feature) (models.Event, error) {
	if f == nil || f.Geometry == nil {
		return models.Event{}, fmt.Errorf("missing geometry")
	}
	if !f.Geometry.IsPoint() {
		return models.Event{}, fmt.Errorf("expected Point geometry, got %s", f.Geometry.Type)
	}
	if len(f.Geometry.Point) < 3 {
		return models.Event{}, fmt.Errorf("expected [lon, lat, depth], got %d coordinates", len(f.Geometry.Point))
	}

	ev := models.Event{
		ID:        featureID(f),
		Longitude: f.Geometry.Point[0],
		Latitude:  f.Geometry.Point[1],
		DepthKm:   f.Geometry.Point[2],
	}

	// Reviewed-but-unmeasured events carry a null mag.
	if raw, ok := f.Properties["mag"]; ok && raw != nil {
		mag, err := f.PropertyFloat64("mag")
		if err != nil {
			return models.Event{}, err
		}
		ev.Magnitude = mag
	}
	if raw, ok := f.Properties["place"]; ok && raw != nil {
		place, err := f.PropertyString("place")
		if err != nil {
			return models.Event{}, err
		}
		ev.Place = place
	}
	if raw, ok := f.Properties["time"]; ok && raw != nil {
		ms, err := f.PropertyFloat64("time")
		if err != nil {
			return models.Event{}, err
		}
		ev.TimeMs = int64(ms)
	}
	return ev, nil
}

func featureID(f *geojson.Feature) string {
	switch v := f.ID.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%.0f", v)
	case nil:
	default:
		return fmt.Sprint(v)
	}
	return uuid.NewString()
}
