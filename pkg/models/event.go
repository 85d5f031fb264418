package models

import "time"

// Event is one seismic event taken from a feed feature.
type Event struct {
	ID        string  `json:"id"`
	Place     string  `json:"place"`
	Magnitude float64 `json:"magnitude"`
	DepthKm   float64 `json:"depth_km"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	TimeMs    int64   `json:"time"` // epoch milliseconds
}

// Time returns the event time.
func (e Event) Time() time.Time {
	return time.UnixMilli(e.TimeMs)
}

// Feed is a decoded upstream payload.
type Feed struct {
	Events       []Event `json:"events"`
	GeneratedMs  int64   `json:"generated,omitempty"`
	HasGenerated bool    `json:"-"`
}
