package models

// Bucket groups events by the integer floor of their magnitude.
type Bucket struct {
	Lower int `json:"lower"`
	Count int `json:"count"`
}

// Bar is one drawn histogram bar.
type Bar struct {
	Bucket
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  string  `json:"color"`
}
