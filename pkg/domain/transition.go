package domain

import "time"

// TriggerType is the discriminator of a Trigger.
type TriggerType string

const (
	TriggerTap            TriggerType = "tap"
	TriggerDrag           TriggerType = "drag"
	TriggerScroll         TriggerType = "scroll"
	TriggerHover          TriggerType = "hover"
	TriggerTimer          TriggerType = "timer"
	TriggerVariableChange TriggerType = "variableChange"
)

// Direction constrains drag and scroll triggers.
type Direction string

const (
	DirectionAny        Direction = "any"
	DirectionHorizontal Direction = "horizontal"
	DirectionVertical   Direction = "vertical"
	DirectionUp         Direction = "up"
	DirectionDown       Direction = "down"
	DirectionLeft       Direction = "left"
	DirectionRight      Direction = "right"
)

// Comparison is the operator of a variable-change trigger.
type Comparison string

const (
	CompareEquals  Comparison = "equals"
	CompareGreater Comparison = "greater"
	CompareLess    Comparison = "less"
	CompareChanged Comparison = "changed"
)

// Trigger is a closed sum type; the set of implementations is fixed by this package.
type Trigger interface {
	TriggerType() TriggerType
	isTrigger()
}

// TapTrigger fires on a tap anywhere on the canvas.
type TapTrigger struct{}

// HoverTrigger fires when the pointer enters the canvas or an element.
type HoverTrigger struct{}

// DragTrigger fires when a drag displacement reaches Threshold pixels in Direction.
type DragTrigger struct {
	Direction Direction
	Threshold float64
}

// ScrollTrigger fires when the scroll offset reaches Offset pixels in Direction.
type ScrollTrigger struct {
	Direction Direction
	Offset    float64
}

// TimerTrigger fires once Delay has elapsed on the current screen.
type TimerTrigger struct {
	Delay time.Duration
}

// VariableTrigger compares a variable against Value with Operator.
type VariableTrigger struct {
	VariableID string
	Operator   Comparison
	Value      Value
}

// InvalidTrigger stands in for a malformed trigger payload. It never matches,
// so a combo containing it can never fire.
type InvalidTrigger struct {
	Type   string
	Reason string
}

func (TapTrigger) TriggerType() TriggerType      { return TriggerTap }
func (HoverTrigger) TriggerType() TriggerType    { return TriggerHover }
func (DragTrigger) TriggerType() TriggerType     { return TriggerDrag }
func (ScrollTrigger) TriggerType() TriggerType   { return TriggerScroll }
func (TimerTrigger) TriggerType() TriggerType    { return TriggerTimer }
func (VariableTrigger) TriggerType() TriggerType { return TriggerVariableChange }
func (t InvalidTrigger) TriggerType() TriggerType {
	return TriggerType(t.Type)
}

func (TapTrigger) isTrigger()      {}
func (HoverTrigger) isTrigger()    {}
func (DragTrigger) isTrigger()     {}
func (ScrollTrigger) isTrigger()   {}
func (TimerTrigger) isTrigger()    {}
func (VariableTrigger) isTrigger() {}
func (InvalidTrigger) isTrigger()  {}

// Transition is a directed, triggered, timed edge between two screens.
// Triggers form a combo: every member must fire before the edge is eligible.
type Transition struct {
	ID       string
	From     string
	To       string
	Triggers []Trigger
	Duration time.Duration
	Delay    time.Duration
	Easing   EasingSpec
}

// EasingKind is the discriminator of an EasingSpec.
type EasingKind string

const (
	EasingNamed  EasingKind = "named"
	EasingBezier EasingKind = "bezier"
	EasingSpring EasingKind = "spring"
)

// SpringParams are the physical parameters of a spring curve.
// Response (seconds) derives the stiffness when Stiffness is not set.
type SpringParams struct {
	Mass      float64 `json:"mass"`
	Stiffness float64 `json:"stiffness"`
	Damping   float64 `json:"damping"`
	Response  float64 `json:"response,omitempty"`
}

// EasingSpec selects the progress curve of an animation.
type EasingSpec struct {
	Kind   EasingKind   `json:"kind"`
	Name   string       `json:"name,omitempty"`
	Bezier [4]float64   `json:"bezier"`
	Spring SpringParams `json:"spring"`
}

// NamedEasing is shorthand for a named curve.
func NamedEasing(name string) EasingSpec {
	return EasingSpec{Kind: EasingNamed, Name: name}
}

// CubicBezier is shorthand for an explicit bezier curve.
func CubicBezier(x1, y1, x2, y2 float64) EasingSpec {
	return EasingSpec{Kind: EasingBezier, Bezier: [4]float64{x1, y1, x2, y2}}
}

// SpringEasing is shorthand for a spring curve.
func SpringEasing(p SpringParams) EasingSpec {
	return EasingSpec{Kind: EasingSpring, Spring: p}
}
