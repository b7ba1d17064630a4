package curve

import "math"

// DefaultSettleThreshold is the distance from 1 under which a curve counts as settled.
const DefaultSettleThreshold = 0.005

// Point is one sample of a curve.
type Point struct {
	T     float64 `json:"t"`
	Value float64 `json:"value"`
}

// Sample evaluates c at n+1 evenly spaced times from 0 to 1 inclusive.
func Sample(c Curve, n int) []Point {
	if n < 1 {
		n = 1
	}
	points := make([]Point, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		points[i] = Point{T: t, Value: c.Progress(t)}
	}
	return points
}

// SettleTime returns the last sampled time at which c differs from 1 by more
// than threshold, or 0 when every sample is within it. The final sample at
// t=1 is excluded, since every curve reports exactly 1 there.
func SettleTime(c Curve, threshold float64, n int) float64 {
	if n < 1 {
		n = 1
	}
	last := 0.0
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n)
		if math.Abs(c.Progress(t)-1) > threshold {
			last = t
		}
	}
	return last
}

// Overshoot returns the largest sampled value above 1, or 0 when the curve never exceeds it.
func Overshoot(c Curve, n int) float64 {
	peak := 0.0
	for _, p := range Sample(c, n) {
		if p.Value-1 > peak {
			peak = p.Value - 1
		}
	}
	return peak
}
