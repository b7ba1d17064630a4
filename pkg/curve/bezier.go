package curve

import "math"

const (
	newtonIterations = 8
	newtonEpsilon    = 1e-7
	slopeEpsilon     = 1e-6

	// Residual above which the Newton result is refined by bisection.
	bisectTolerance = 1e-5
	bisectSteps     = 32
)

// BezierProgress evaluates the CSS easing curve cubic-bezier(x1, y1, x2, y2) at
// normalized time t. The curve's endpoints are fixed at (0,0) and (1,1).
func BezierProgress(t, x1, y1, x2, y2 float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	u := solveBezierX(t, x1, x2)
	return bezierAxis(u, y1, y2)
}

// solveBezierX finds u in [0,1] with x(u) == t.
func solveBezierX(t, x1, x2 float64) float64 {
	u := t
	for i := 0; i < newtonIterations; i++ {
		residual := bezierAxis(u, x1, x2) - t
		if math.Abs(residual) < newtonEpsilon {
			return u
		}
		slope := bezierSlope(u, x1, x2)
		if math.Abs(slope) < slopeEpsilon {
			break
		}
		u = clamp01(u - residual/slope)
	}

	if math.Abs(bezierAxis(u, x1, x2)-t) <= bisectTolerance {
		return u
	}

	// x(u) is monotone for control points in [0,1], which CSS requires.
	lo, hi := 0.0, 1.0
	for i := 0; i < bisectSteps; i++ {
		mid := (lo + hi) / 2
		if bezierAxis(mid, x1, x2) < t {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// bezierAxis is one coordinate of the cubic with P0=0 and P3=1:
// 3(1-u)²u·p1 + 3(1-u)u²·p2 + u³, evaluated in Horner form.
func bezierAxis(u, p1, p2 float64) float64 {
	a := 1 - 3*p2 + 3*p1
	b := 3*p2 - 6*p1
	c := 3 * p1
	return ((a*u+b)*u + c) * u
}

func bezierSlope(u, p1, p2 float64) float64 {
	a := 1 - 3*p2 + 3*p1
	b := 3*p2 - 6*p1
	c := 3 * p1
	return (3*a*u+2*b)*u + c
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Bezier is a Curve backed by cubic-bezier control points.
type Bezier struct {
	X1, Y1, X2, Y2 float64
}

// Progress implements Curve.
func (b Bezier) Progress(t float64) float64 {
	return BezierProgress(t, b.X1, b.Y1, b.X2, b.Y2)
}
