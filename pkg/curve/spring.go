package curve

import (
	"math"

	"github.com/aretw0/keyframe/pkg/domain"
)

const (
	// SpringStepsPerSecond is the fixed RK4 rate in simulated physical time.
	SpringStepsPerSecond = 240
	// SpringWindow is the physical time mapped onto normalized t in [0,1].
	SpringWindow = 2.0

	springSteps = int(SpringStepsPerSecond * SpringWindow)
	springDT    = 1.0 / SpringStepsPerSecond

	defaultMass      = 1.0
	defaultStiffness = 100.0
)

// SpringProgress integrates m·a + c·v + k·(x − 1) = 0 from rest at x=0 and
// returns the displacement at normalized time t. Overshoot past 1 is preserved.
func SpringProgress(t, mass, stiffness, damping float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	p := normalizeSpring(mass, stiffness, damping)
	n, rem := springStepIndex(t)

	x, v := 0.0, 0.0
	for i := 0; i < n; i++ {
		x, v = rk4(x, v, springDT, p)
	}
	if rem > 0 {
		x, _ = rk4(x, v, rem, p)
	}
	return x
}

// Spring is a Curve that caches the integrator state at every fixed step, so a
// per-frame evaluation costs at most one partial step. Its results are
// bit-identical to SpringProgress.
type Spring struct {
	params springParams
	xs     []float64
	vs     []float64
}

// NewSpring precomputes the spring for the given physical parameters.
func NewSpring(mass, stiffness, damping float64) *Spring {
	p := normalizeSpring(mass, stiffness, damping)
	s := &Spring{
		params: p,
		xs:     make([]float64, springSteps+1),
		vs:     make([]float64, springSteps+1),
	}
	x, v := 0.0, 0.0
	for i := 1; i <= springSteps; i++ {
		x, v = rk4(x, v, springDT, p)
		s.xs[i] = x
		s.vs[i] = v
	}
	return s
}

// NewSpringFromParams builds a Spring from authored parameters, deriving the
// stiffness from Response when Stiffness is unset.
func NewSpringFromParams(p domain.SpringParams) *Spring {
	mass := p.Mass
	if mass <= 0 {
		mass = defaultMass
	}
	stiffness := p.Stiffness
	if stiffness <= 0 && p.Response > 0 {
		omega := 2 * math.Pi / p.Response
		stiffness = mass * omega * omega
	}
	return NewSpring(mass, stiffness, p.Damping)
}

// Progress implements Curve.
func (s *Spring) Progress(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	n, rem := springStepIndex(t)
	if rem == 0 {
		return s.xs[n]
	}
	x, _ := rk4(s.xs[n], s.vs[n], rem, s.params)
	return x
}

type springParams struct {
	mass, stiffness, damping float64
}

func normalizeSpring(mass, stiffness, damping float64) springParams {
	if mass <= 0 || math.IsNaN(mass) {
		mass = defaultMass
	}
	if stiffness <= 0 || math.IsNaN(stiffness) {
		stiffness = defaultStiffness
	}
	if damping < 0 || math.IsNaN(damping) {
		damping = 0
	}
	return springParams{mass: mass, stiffness: stiffness, damping: damping}
}

// springStepIndex splits normalized time into whole steps and a remainder in seconds.
func springStepIndex(t float64) (int, float64) {
	seconds := t * SpringWindow
	n := int(math.Floor(seconds * SpringStepsPerSecond))
	if n >= springSteps {
		return springSteps, 0
	}
	rem := seconds - float64(n)*springDT
	if rem < 0 {
		rem = 0
	}
	return n, rem
}

func acceleration(x, v float64, p springParams) float64 {
	return (-p.stiffness*(x-1) - p.damping*v) / p.mass
}

func rk4(x, v, dt float64, p springParams) (float64, float64) {
	k1x, k1v := v, acceleration(x, v, p)
	k2x, k2v := v+k1v*dt/2, acceleration(x+k1x*dt/2, v+k1v*dt/2, p)
	k3x, k3v := v+k2v*dt/2, acceleration(x+k2x*dt/2, v+k2v*dt/2, p)
	k4x, k4v := v+k3v*dt, acceleration(x+k3x*dt, v+k3v*dt, p)

	x += dt / 6 * (k1x + 2*k2x + 2*k3x + k4x)
	v += dt / 6 * (k1v + 2*k2v + 2*k3v + k4v)
	return x, v
}
