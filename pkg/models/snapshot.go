package models

import "time"

// Snapshot is the display state produced by one render cycle.
type Snapshot struct {
	Generation  uint64    `json:"generation"`
	Seq         uint64    `json:"seq"` // bumped on every display change, refresh or hover
	RenderedAt  time.Time `json:"rendered_at"`
	Total       int       `json:"total"`
	LastUpdated string    `json:"last_updated"`
	Status      string    `json:"status"`
	Markers     []Marker  `json:"markers"`
	Bars        []Bar     `json:"bars"`
}
