package dsl

import (
	"time"

	"github.com/aretw0/keyframe/pkg/domain"
)

// Triggers

func Tap() domain.Trigger   { return domain.TapTrigger{} }
func Hover() domain.Trigger { return domain.HoverTrigger{} }

// Timer fires after d on the source screen.
func Timer(d time.Duration) domain.Trigger {
	return domain.TimerTrigger{Delay: d}
}

// Drag fires when a drag reaches threshold pixels in dir.
func Drag(dir domain.Direction, threshold float64) domain.Trigger {
	return domain.DragTrigger{Direction: dir, Threshold: threshold}
}

// Scroll fires when the scroll offset reaches offset pixels in dir.
func Scroll(dir domain.Direction, offset float64) domain.Trigger {
	return domain.ScrollTrigger{Direction: dir, Offset: offset}
}

// When compares a variable. value is ignored by domain.CompareChanged.
func When(variableID string, op domain.Comparison, value any) domain.Trigger {
	v, err := domain.ValueOf(value)
	if err != nil {
		return domain.InvalidTrigger{Type: string(domain.TriggerVariableChange), Reason: err.Error()}
	}
	return domain.VariableTrigger{VariableID: variableID, Operator: op, Value: v}
}

// Actions

func Navigate(target string) domain.Action {
	return domain.NavigateAction{Target: target}
}

// NavigateWith navigates with an animation.
func NavigateWith(target string, spec domain.TransitionSpec) domain.Action {
	return domain.NavigateAction{Target: target, Animation: &spec}
}

func Back() domain.Action { return domain.NavigateAction{Target: domain.TargetBack} }

func GoToState(stateID string) domain.Action {
	return domain.GoToStateAction{StateID: stateID}
}

// Set assigns value, which may be a bool, a number or a string.
// Unsupported types set the variable to null.
func Set(variableID string, value any) domain.Action {
	v, _ := domain.ValueOf(value)
	return domain.SetVariableAction{VariableID: variableID, Op: domain.OpSet, Value: v}
}

func Toggle(variableID string) domain.Action {
	return domain.SetVariableAction{VariableID: variableID, Op: domain.OpToggle}
}

func Increment(variableID string) domain.Action {
	return domain.SetVariableAction{VariableID: variableID, Op: domain.OpIncrement}
}

func IncrementBy(variableID string, amount float64) domain.Action {
	return domain.SetVariableAction{VariableID: variableID, Op: domain.OpIncrement, Amount: &amount}
}

func Decrement(variableID string) domain.Action {
	return domain.SetVariableAction{VariableID: variableID, Op: domain.OpDecrement}
}

func OpenURL(url string, newTab bool) domain.Action {
	return domain.OpenURLAction{URL: url, NewTab: newTab}
}

func Reset() domain.Action { return domain.ResetAction{} }

// Animations

func Instant() domain.TransitionSpec { return domain.InstantSpec() }

func Dissolve(d time.Duration) domain.TransitionSpec {
	return domain.TransitionSpec{Type: domain.AnimationDissolve, Duration: d, Easing: domain.NamedEasing("easeOut")}
}

func SmartAnimate(d time.Duration) domain.TransitionSpec {
	return domain.TransitionSpec{Type: domain.AnimationSmartAnimate, Duration: d, Easing: domain.NamedEasing("easeInOut")}
}

// Slide builds a directional animation (moveIn, moveOut, push, slideIn, slideOut).
func Slide(kind domain.AnimationType, side domain.Side, d time.Duration) domain.TransitionSpec {
	return domain.TransitionSpec{Type: kind, Direction: side, Duration: d, Easing: domain.NamedEasing("easeOut")}
}
