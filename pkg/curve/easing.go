package curve

import (
	"sort"
	"strings"

	"github.com/aretw0/keyframe/pkg/domain"
)

// Curve maps normalized time to normalized progress.
type Curve interface {
	Progress(t float64) float64
}

// Func adapts a plain function to Curve.
type Func func(t float64) float64

// Progress implements Curve.
func (f Func) Progress(t float64) float64 { return f(t) }

// FallbackName is the curve used when an easing name is unknown.
const FallbackName = "easeOut"

var (
	Linear    = Bezier{0, 0, 1, 1}
	Ease      = Bezier{0.25, 0.1, 0.25, 1}
	EaseIn    = Bezier{0.42, 0, 1, 1}
	EaseOut   = Bezier{0, 0, 0.58, 1}
	EaseInOut = Bezier{0.42, 0, 0.58, 1}
)

// Presets are the named spring configurations.
var Presets = map[string]domain.SpringParams{
	"spring": {Mass: 1, Stiffness: 100, Damping: 10},
	"gentle": {Mass: 1, Stiffness: 100, Damping: 15},
	"wobbly": {Mass: 1, Stiffness: 180, Damping: 12},
	"stiff":  {Mass: 1, Stiffness: 210, Damping: 20},
	"slow":   {Mass: 1, Stiffness: 280, Damping: 60},
	"bouncy": {Mass: 1, Stiffness: 300, Damping: 10},
}

var beziers = map[string]Bezier{
	"linear":       Linear,
	"ease":         Ease,
	"easein":       EaseIn,
	"easeout":      EaseOut,
	"easeinout":    EaseInOut,
	"smartanimate": EaseInOut,
}

// canonical maps normalized keys back to their display names.
var canonical = map[string]string{
	"linear":       "linear",
	"ease":         "ease",
	"easein":       "easeIn",
	"easeout":      "easeOut",
	"easeinout":    "easeInOut",
	"smartanimate": "smartAnimate",
	"spring":       "spring",
	"gentle":       "gentle",
	"wobbly":       "wobbly",
	"stiff":        "stiff",
	"slow":         "slow",
	"bouncy":       "bouncy",
}

func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case '-', '_', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Named looks up a named curve. Lookup ignores case, dashes, underscores and spaces.
func Named(name string) (Curve, bool) {
	key := normalizeName(name)
	if bz, ok := beziers[key]; ok {
		return bz, true
	}
	if p, ok := Presets[key]; ok {
		return NewSpringFromParams(p), true
	}
	return nil, false
}

// IsKnown reports whether name resolves to a named curve.
func IsKnown(name string) bool {
	_, ok := canonical[normalizeName(name)]
	return ok
}

// Names lists every named curve in sorted order.
func Names() []string {
	names := make([]string, 0, len(canonical))
	for _, n := range canonical {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve turns an easing spec into a curve. The boolean is false when the
// spec could not be honored and the easeOut fallback was returned instead.
func Resolve(spec domain.EasingSpec) (Curve, bool) {
	switch spec.Kind {
	case domain.EasingBezier:
		b := spec.Bezier
		return Bezier{X1: b[0], Y1: b[1], X2: b[2], Y2: b[3]}, true
	case domain.EasingSpring:
		return NewSpringFromParams(spec.Spring), true
	case domain.EasingNamed, "":
		if spec.Name == "" {
			return EaseOut, spec.Kind == ""
		}
		if c, ok := Named(spec.Name); ok {
			return c, true
		}
	}
	return EaseOut, false
}
