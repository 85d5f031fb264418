package mapview

// HighlightColor is the stroke color of highlighted markers.
const HighlightColor = "#00bfff"

const highlightWeight = 5

// Highlight restyles markers whose magnitude lies in [lower, lower+1) and
// returns how many were restyled. Other markers are left as they are.
func (l *Layer) Highlight(lower float64) int {
	n := 0
	upper := lower + 1
	for _, id := range l.order {
		m := l.markers[id]
		if m.Magnitude >= lower && m.Magnitude < upper {
			m.Style.Weight = highlightWeight
			m.Style.Color = HighlightColor
			n++
		}
	}
	return n
}

// Reset restores every marker to its original style.
func (l *Layer) Reset() {
	for _, id := range l.order {
		m := l.markers[id]
		m.Style = m.OriginalStyle
	}
}
