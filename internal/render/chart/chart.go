package chart

import (
	"fmt"
	"math"
	"sort"

	"quakeview/internal/severity"
	"quakeview/pkg/models"
)

// HighlightColor is the fill of a hovered bar.
const HighlightColor = "#4682b4"

// Highlighter restyles map markers for a magnitude bucket.
type Highlighter interface {
	Highlight(lower float64) int
	Reset()
}

// Geometry sets the chart canvas size.
type Geometry struct {
	Width   float64
	Height  float64
	Margin  float64
	Padding float64
}

// DefaultGeometry returns the stock canvas size.
func DefaultGeometry() Geometry {
	return Geometry{Width: 600, Height: 300, Margin: 30, Padding: 0.1}
}

// Chart is a magnitude histogram whose bars drive marker highlighting.
// It is not safe for concurrent use.
type Chart struct {
	geom        Geometry
	highlighter Highlighter
	bars        []models.Bar
	index       map[int]int
}

// Detail is what a bar click presents.
type Detail struct {
	Range       string `json:"range"`
	Count       int    `json:"count"`
	LastUpdated string `json:"last_updated"`
	Text        string `json:"text"`
}

// New creates an empty chart bound to a highlighter.
func New(geom Geometry, h Highlighter) *Chart {
	def := DefaultGeometry()
	if geom.Width <= 0 {
		geom.Width = def.Width
	}
	if geom.Height <= 0 {
		geom.Height = def.Height
	}
	if geom.Margin < 0 || geom.Margin*2 >= math.Min(geom.Width, geom.Height) {
		geom.Margin = def.Margin
	}
	if geom.Padding <= 0 || geom.Padding >= 1 {
		geom.Padding = def.Padding
	}
	return &Chart{geom: geom, highlighter: h, index: make(map[int]int)}
}

// Geometry returns the canvas geometry in use.
func (c *Chart) Geometry() Geometry {
	return c.geom
}

// BuildBuckets groups events by integer floor of magnitude, ascending.
func BuildBuckets(events []models.Event) []models.Bucket {
	counts := make(map[int]int)
	for _, ev := range events {
		counts[int(math.Floor(ev.Magnitude))]++
	}
	out := make([]models.Bucket, 0, len(counts))
	for lower, n := range counts {
		out = append(out, models.Bucket{Lower: lower, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lower < out[j].Lower })
	return out
}

// Render discards the previous bars and draws one bar per bucket.
func (c *Chart) Render(events []models.Event) {
	buckets := BuildBuckets(events)
	c.bars = make([]models.Bar, 0, len(buckets))
	c.index = make(map[int]int, len(buckets))
	if len(buckets) == 0 {
		return
	}

	innerW := c.geom.Width - 2*c.geom.Margin
	innerH := c.geom.Height - 2*c.geom.Margin
	maxCount := 0
	for _, b := range buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	band := newBandScale(len(buckets), innerW, c.geom.Padding)
	for i, b := range buckets {
		h := float64(b.Count) / float64(maxCount) * innerH
		c.index[b.Lower] = len(c.bars)
		c.bars = append(c.bars, models.Bar{
			Bucket: b,
			X:      c.geom.Margin + band.x(i),
			Y:      c.geom.Margin + innerH - h,
			Width:  band.bandwidth,
			Height: h,
			Color:  severity.Color(float64(b.Lower)),
		})
	}
}

// Bars returns a copy of the drawn bars.
func (c *Chart) Bars() []models.Bar {
	out := make([]models.Bar, len(c.bars))
	copy(out, c.bars)
	return out
}

// Total returns the sum of bar counts.
func (c *Chart) Total() int {
	n := 0
	for _, b := range c.bars {
		n += b.Count
	}
	return n
}

// HoverEnter highlights the bar and its markers. It reports whether the bucket exists.
func (c *Chart) HoverEnter(lower int) bool {
	i, ok := c.index[lower]
	if !ok {
		return false
	}
	c.bars[i].Color = HighlightColor
	if c.highlighter != nil {
		c.highlighter.Highlight(float64(lower))
	}
	return true
}

// HoverExit restores the bar color and every marker. It reports whether the bucket exists.
func (c *Chart) HoverExit(lower int) bool {
	i, ok := c.index[lower]
	if !ok {
		return false
	}
	c.bars[i].Color = severity.Color(float64(lower))
	if c.highlighter != nil {
		c.highlighter.Reset()
	}
	return true
}

// Click describes a bucket without changing any state.
func (c *Chart) Click(lower int, lastUpdated string) (Detail, bool) {
	i, ok := c.index[lower]
	if !ok {
		return Detail{}, false
	}
	b := c.bars[i]
	d := Detail{
		Range:       fmt.Sprintf("%d-%d", b.Lower, b.Lower+1),
		Count:       b.Count,
		LastUpdated: lastUpdated,
	}
	d.Text = fmt.Sprintf("Magnitude %s: %d earthquakes\nLast updated: %s", d.Range, d.Count, lastUpdated)
	return d, true
}
