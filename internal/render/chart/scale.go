package chart

// bandScale places n equally wide bands across [0, width] with the same
// padding ratio inside and outside the bands.
type bandScale struct {
	start     float64
	step      float64
	bandwidth float64
}

func newBandScale(n int, width, padding float64) bandScale {
	if n <= 0 {
		return bandScale{}
	}
	if padding < 0 || padding >= 1 {
		padding = 0
	}
	step := width / (float64(n) + padding)
	return bandScale{
		start:     step * padding,
		step:      step,
		bandwidth: step * (1 - padding),
	}
}

func (s bandScale) x(i int) float64 {
	return s.start + float64(i)*s.step
}
