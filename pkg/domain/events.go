package domain

import (
	"context"
	"time"
)

// EventType is the kind of a runtime event.
type EventType string

const (
	EventTap            EventType = "tap"
	EventHover          EventType = "hover"
	EventPress          EventType = "press"
	EventRelease        EventType = "release"
	EventLongPress      EventType = "longPress"
	EventDrag           EventType = "drag"
	EventScroll         EventType = "scroll"
	EventTimer          EventType = "timer"
	EventVariableChange EventType = "variableChange"
)

// IsGesture reports whether the event originates from the user.
func (t EventType) IsGesture() bool {
	switch t {
	case EventTap, EventHover, EventPress, EventRelease, EventLongPress, EventDrag, EventScroll:
		return true
	}
	return false
}

// Event is one runtime input to the engine.
type Event struct {
	Type      EventType `json:"type"`
	ElementID string    `json:"elementId,omitempty"`

	// Pointer position, reported back through OnGesture.
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// Drag displacement and scroll offset in pixels (y grows downward).
	DX      float64 `json:"dx,omitempty"`
	DY      float64 `json:"dy,omitempty"`
	ScrollX float64 `json:"scrollX,omitempty"`
	ScrollY float64 `json:"scrollY,omitempty"`

	// Window groups events of one gesture so combo triggers can latch.
	// Empty means the event is its own window.
	Window string `json:"window,omitempty"`

	// Elapsed is set on timer events.
	Elapsed time.Duration `json:"elapsed,omitempty"`

	// VariableID and Previous are set on variable-change events.
	VariableID string `json:"variableId,omitempty"`
	Previous   Value  `json:"previous,omitempty"`
}

// HookBase contains common fields for all hook events.
type HookBase struct {
	Timestamp time.Time `json:"timestamp"`
}

// NavigateEvent reports a screen swap.
type NavigateEvent struct {
	HookBase
	From string `json:"from"`
	To   string `json:"to"`
	Back bool   `json:"back,omitempty"`
}

// VariableEvent reports a variable mutation.
type VariableEvent struct {
	HookBase
	VariableID string `json:"variableId"`
	Previous   Value  `json:"previous"`
	Value      Value  `json:"value"`
}

// StateChangeEvent reports a goToState action.
type StateChangeEvent struct {
	HookBase
	ElementID string `json:"elementId"`
	StateID   string `json:"stateId"`
}

// OpenURLEvent asks the host to open a URL.
type OpenURLEvent struct {
	HookBase
	URL    string `json:"url"`
	NewTab bool   `json:"newTab"`
}

// GestureEvent reports a user gesture as received.
type GestureEvent struct {
	HookBase
	Gesture   EventType `json:"gesture"`
	ElementID string    `json:"elementId,omitempty"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
}

// TransitionKind tells edges from links apart in TransitionEvents.
type TransitionKind string

const (
	KindEdge TransitionKind = "transition"
	KindLink TransitionKind = "link"
)

// TransitionEvent reports the lifecycle of an in-flight transition.
type TransitionEvent struct {
	HookBase
	Kind     TransitionKind `json:"kind"`
	ID       string         `json:"id,omitempty"`
	From     string         `json:"from"`
	To       string         `json:"to"`
	Phase    Phase          `json:"phase"`
	Duration time.Duration  `json:"duration"`
}

// Hooks are the host callbacks. All are optional and are called synchronously
// on the engine's turn; they are bookkeeping and never required for correctness.
// OnOpenURL may report a host failure, which is logged and never halts the engine.
type Hooks struct {
	OnNavigate        func(context.Context, *NavigateEvent)
	OnVariableChange  func(context.Context, *VariableEvent)
	OnStateChange     func(context.Context, *StateChangeEvent)
	OnOpenURL         func(context.Context, *OpenURLEvent) error
	OnGesture         func(context.Context, *GestureEvent)
	OnTransitionStart func(context.Context, *TransitionEvent)
	OnTransitionEnd   func(context.Context, *TransitionEvent)
	OnRejected        func(context.Context, *TransitionEvent)
}

// Chain returns hooks that call h first and then next for every callback.
// For OnOpenURL the first error wins.
func (h Hooks) Chain(next Hooks) Hooks {
	return Hooks{
		OnNavigate:        chain(h.OnNavigate, next.OnNavigate),
		OnVariableChange:  chain(h.OnVariableChange, next.OnVariableChange),
		OnStateChange:     chain(h.OnStateChange, next.OnStateChange),
		OnGesture:         chain(h.OnGesture, next.OnGesture),
		OnTransitionStart: chain(h.OnTransitionStart, next.OnTransitionStart),
		OnTransitionEnd:   chain(h.OnTransitionEnd, next.OnTransitionEnd),
		OnRejected:        chain(h.OnRejected, next.OnRejected),
		OnOpenURL:         chainErr(h.OnOpenURL, next.OnOpenURL),
	}
}

func chain[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainErr[E any](a, b func(context.Context, *E) error) func(context.Context, *E) error {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e *E) error {
		errA := a(ctx, e)
		errB := b(ctx, e)
		if errA != nil {
			return errA
		}
		return errB
	}
}
