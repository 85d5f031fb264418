package models

// MarkerStyle is the stroke and fill styling of a circle marker.
type MarkerStyle struct {
	Color     string  `json:"color"`
	FillColor string  `json:"fill_color"`
	Weight    int     `json:"weight"`
	Radius    float64 `json:"radius"`
}

// Marker is a rendered map overlay for one event.
type Marker struct {
	ID            string      `json:"id"`
	Latitude      float64     `json:"lat"`
	Longitude     float64     `json:"lon"`
	Magnitude     float64     `json:"magnitude"`
	Popup         string      `json:"popup"`
	Style         MarkerStyle `json:"style"`
	OriginalStyle MarkerStyle `json:"-"`
}
