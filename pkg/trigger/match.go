// Package trigger decides whether runtime events fire transition triggers.
package trigger

import (
	"math"

	"github.com/aretw0/keyframe/pkg/domain"
)

// VariableReader is the read side of the variable store.
type VariableReader interface {
	Get(id string) (domain.Value, error)
}

// Match reports whether a single trigger fires for ev.
// Variable triggers read the current value from vars; a nil reader never matches them.
func Match(ev domain.Event, cfg domain.Trigger, vars VariableReader) bool {
	switch c := cfg.(type) {
	case domain.TapTrigger:
		return ev.Type == domain.EventTap
	case domain.HoverTrigger:
		return ev.Type == domain.EventHover
	case domain.DragTrigger:
		return ev.Type == domain.EventDrag && directional(c.Direction, ev.DX, ev.DY, c.Threshold)
	case domain.ScrollTrigger:
		return ev.Type == domain.EventScroll && directional(c.Direction, ev.ScrollX, ev.ScrollY, c.Offset)
	case domain.TimerTrigger:
		return ev.Type == domain.EventTimer && ev.Elapsed >= c.Delay
	case domain.VariableTrigger:
		return matchVariable(ev, c, vars)
	case domain.InvalidTrigger:
		return false
	default:
		return false
	}
}

// directional checks a displacement against a direction and a minimum distance.
// Coordinates follow the screen convention: y grows downward.
func directional(dir domain.Direction, dx, dy, threshold float64) bool {
	ax, ay := math.Abs(dx), math.Abs(dy)
	switch dir {
	case domain.DirectionAny, "":
		return math.Hypot(dx, dy) >= threshold
	case domain.DirectionHorizontal:
		return ax >= ay && ax >= threshold
	case domain.DirectionLeft:
		return dx < 0 && ax >= ay && ax >= threshold
	case domain.DirectionRight:
		return dx > 0 && ax >= ay && ax >= threshold
	case domain.DirectionVertical:
		return ay > ax && ay >= threshold
	case domain.DirectionUp:
		return dy < 0 && ay > ax && ay >= threshold
	case domain.DirectionDown:
		return dy > 0 && ay > ax && ay >= threshold
	}
	return false
}

func matchVariable(ev domain.Event, c domain.VariableTrigger, vars VariableReader) bool {
	if vars == nil {
		return false
	}
	current, err := vars.Get(c.VariableID)
	if err != nil {
		return false
	}
	if c.Operator == domain.CompareChanged {
		return ev.Type == domain.EventVariableChange && ev.VariableID == c.VariableID && !ev.Previous.Equal(current)
	}
	return Compare(c.Operator, current, c.Value)
}

// Compare applies a comparison operator. The configured value picks the
// domain: numbers compare numerically, booleans by truthiness, anything else
// by string form.
func Compare(op domain.Comparison, current, want domain.Value) bool {
	switch want.Kind() {
	case domain.KindNumber:
		a, b := current.AsNumber(), want.AsNumber()
		switch op {
		case domain.CompareEquals:
			return a == b
		case domain.CompareGreater:
			return a > b
		case domain.CompareLess:
			return a < b
		}
	case domain.KindBool:
		a, b := current.Truthy(), want.Truthy()
		switch op {
		case domain.CompareEquals:
			return a == b
		case domain.CompareGreater:
			return a && !b
		case domain.CompareLess:
			return !a && b
		}
	default:
		a, b := current.String(), want.String()
		switch op {
		case domain.CompareEquals:
			return a == b
		case domain.CompareGreater:
			return a > b
		case domain.CompareLess:
			return a < b
		}
	}
	return false
}

// IsGestureClass reports whether a trigger latches inside a gesture window.
func IsGestureClass(cfg domain.Trigger) bool {
	switch cfg.(type) {
	case domain.VariableTrigger, domain.InvalidTrigger:
		return false
	}
	return true
}

// Effective returns the trigger list that is actually evaluated: an empty
// list stands for a single implicit tap.
func Effective(triggers []domain.Trigger) []domain.Trigger {
	if len(triggers) == 0 {
		return []domain.Trigger{domain.TapTrigger{}}
	}
	return triggers
}

// MatchAll reports whether every trigger of a combo fires for ev in the same
// evaluation. A combo made only of variable triggers also requires ev to be a
// variable change, so it cannot be fired by unrelated gestures.
func MatchAll(ev domain.Event, triggers []domain.Trigger, vars VariableReader) bool {
	triggers = Effective(triggers)
	if !hasGestureMember(triggers) && ev.Type != domain.EventVariableChange {
		return false
	}
	for _, cfg := range triggers {
		if !Match(ev, cfg, vars) {
			return false
		}
	}
	return true
}

func hasGestureMember(triggers []domain.Trigger) bool {
	for _, cfg := range triggers {
		if IsGestureClass(cfg) {
			return true
		}
	}
	return false
}
