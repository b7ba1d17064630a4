package domain

import "time"

// TargetBack is the reserved navigation target that pops the history stack.
const TargetBack = "back"

// AnimationType is the visual style of a prototype-link navigation.
type AnimationType string

const (
	AnimationInstant      AnimationType = "instant"
	AnimationDissolve     AnimationType = "dissolve"
	AnimationSmartAnimate AnimationType = "smartAnimate"
	AnimationMoveIn       AnimationType = "moveIn"
	AnimationMoveOut      AnimationType = "moveOut"
	AnimationSlideIn      AnimationType = "slideIn"
	AnimationSlideOut     AnimationType = "slideOut"
	AnimationPush         AnimationType = "push"
)

// Directional reports whether the animation resolves an offset axis.
func (a AnimationType) Directional() bool {
	switch a {
	case AnimationMoveIn, AnimationMoveOut, AnimationSlideIn, AnimationSlideOut, AnimationPush:
		return true
	}
	return false
}

// SwapsAtMidpoint reports whether the screen swap happens at half the duration.
func (a AnimationType) SwapsAtMidpoint() bool {
	return a == AnimationDissolve || a == AnimationSmartAnimate
}

// Side is the direction of motion of a directional animation.
type Side string

const (
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// Axis resolves the offset axis and sign of the motion.
// Left/right move along X, top/bottom along Y; left and top move toward negative coordinates.
func (s Side) Axis() (horizontal bool, sign float64) {
	switch s {
	case SideRight:
		return true, 1
	case SideTop:
		return false, -1
	case SideBottom:
		return false, 1
	default:
		return true, -1
	}
}

// TransitionSpec describes how a prototype link (or an animated action) animates.
type TransitionSpec struct {
	Type      AnimationType
	Direction Side
	Duration  time.Duration
	Easing    EasingSpec
}

// InstantSpec is the spec of an unanimated navigation.
func InstantSpec() TransitionSpec {
	return TransitionSpec{Type: AnimationInstant}
}

// PrototypeLink is a per-element navigation rule, independent of Transition edges.
type PrototypeLink struct {
	Enabled bool
	Target  string // screen ID or TargetBack
	Trigger EventType
	Spec    TransitionSpec
}

// Interaction binds an element gesture to an ordered list of actions.
type Interaction struct {
	ID        string
	ElementID string
	Enabled   bool
	Gesture   EventType
	Actions   []Action
}

// ActionType is the discriminator of an Action.
type ActionType string

const (
	ActionNavigate    ActionType = "navigate"
	ActionGoToState   ActionType = "goToState"
	ActionSetVariable ActionType = "setVariable"
	ActionOpenURL     ActionType = "openUrl"
	ActionReset       ActionType = "reset"
)

// Action is a closed sum type; the set of implementations is fixed by this package.
type Action interface {
	ActionType() ActionType
	isAction()
}

// NavigateAction switches to Target (a screen ID or TargetBack).
type NavigateAction struct {
	Target    string
	Animation *TransitionSpec
}

// GoToStateAction switches to the screen tagged with StateID.
type GoToStateAction struct {
	StateID   string
	Animation *TransitionSpec
}

// VariableOp is the operation of a SetVariableAction.
type VariableOp string

const (
	OpSet       VariableOp = "set"
	OpToggle    VariableOp = "toggle"
	OpIncrement VariableOp = "increment"
	OpDecrement VariableOp = "decrement"
)

// SetVariableAction applies Op to a variable. Amount defaults to 1 for
// increment and decrement when nil.
type SetVariableAction struct {
	VariableID string
	Op         VariableOp
	Value      Value
	Amount     *float64
}

// Delta resolves the increment/decrement amount.
func (a SetVariableAction) Delta() float64 {
	if a.Amount == nil {
		return 1
	}
	return *a.Amount
}

// OpenURLAction asks the host to open a URL.
type OpenURLAction struct {
	URL    string
	NewTab bool
}

// ResetAction restarts the prototype from its initial screen and default variables.
type ResetAction struct{}

func (NavigateAction) ActionType() ActionType    { return ActionNavigate }
func (GoToStateAction) ActionType() ActionType   { return ActionGoToState }
func (SetVariableAction) ActionType() ActionType { return ActionSetVariable }
func (OpenURLAction) ActionType() ActionType     { return ActionOpenURL }
func (ResetAction) ActionType() ActionType       { return ActionReset }

func (NavigateAction) isAction()    {}
func (GoToStateAction) isAction()   {}
func (SetVariableAction) isAction() {}
func (OpenURLAction) isAction()     {}
func (ResetAction) isAction()       {}
