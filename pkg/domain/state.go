package domain

import "time"

// Phase is the orchestrator state.
type Phase string

const (
	PhaseIdle          Phase = "idle"          // Showing a screen, accepting triggers
	PhaseDelaying      Phase = "delaying"      // Transition matched, waiting out its delay
	PhaseAnimating     Phase = "animating"     // Interpolating a Transition edge
	PhaseTransitionOut Phase = "transitionOut" // Link navigation before the screen swap
	PhaseTransitionIn  Phase = "transitionIn"  // Link navigation after the screen swap
)

// InFlight is the record of the single transition currently running.
// Times are absolute on the engine's scheduler clock so the record survives a
// snapshot/restore round trip.
type InFlight struct {
	Kind         TransitionKind `json:"kind"`
	TransitionID string         `json:"transitionId,omitempty"`
	From         string         `json:"from"`
	To           string         `json:"to"`
	Back         bool           `json:"back,omitempty"`
	Animation    AnimationType  `json:"animation,omitempty"`
	Direction    Side           `json:"direction,omitempty"`
	Easing       EasingSpec     `json:"easing"`
	StartedAt    time.Time      `json:"startedAt"`
	Delay        time.Duration  `json:"delay"`
	Duration     time.Duration  `json:"duration"`
	Swapped      bool           `json:"swapped"`
}

// SwapAt is the absolute time of the screen swap.
func (f *InFlight) SwapAt() time.Time {
	if f.Kind == KindLink {
		if f.Animation.SwapsAtMidpoint() {
			return f.StartedAt.Add(f.Duration / 2)
		}
		return f.StartedAt.Add(f.Duration)
	}
	return f.StartedAt.Add(f.Delay)
}

// EndAt is the absolute time the transition completes.
func (f *InFlight) EndAt() time.Time {
	return f.StartedAt.Add(f.Delay + f.Duration)
}

// Snapshot is the serializable runtime state of one engine instance.
type Snapshot struct {
	SessionID     string           `json:"sessionId,omitempty"`
	Now           time.Time        `json:"now"`
	CurrentScreen string           `json:"currentScreen"`
	Phase         Phase            `json:"phase"`
	History       []string         `json:"history"`
	Variables     map[string]Value `json:"variables"`
	InFlight      *InFlight        `json:"inFlight,omitempty"`
	EnteredAt     time.Time        `json:"enteredAt"` // When timers of the current screen were armed
}

// ElementFrame is the sampled visual state of one element.
type ElementFrame struct {
	ID           string  `json:"id"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Opacity      float64 `json:"opacity"`
	CornerRadius float64 `json:"cornerRadius"`
	Rotation     float64 `json:"rotation"`
	Scale        float64 `json:"scale"`
}

// Layer is a whole-screen layer of a link animation.
// Offsets are fractions of the viewport size.
type Layer struct {
	Screen  string  `json:"screen"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Opacity float64 `json:"opacity"`
}

// Frame is what a host renders at one instant.
type Frame struct {
	Screen   string         `json:"screen"`
	Phase    Phase          `json:"phase"`
	Progress float64        `json:"progress"`
	Elements []ElementFrame `json:"elements"`
	Layers   []Layer        `json:"layers,omitempty"`
	Entering []string       `json:"entering,omitempty"`
	Leaving  []string       `json:"leaving,omitempty"`
}

// Outcome summarizes what one dispatched event did.
type Outcome struct {
	Consumed     bool     `json:"consumed"`               // Handled at element level
	Started      bool     `json:"started"`                // A transition or navigation began
	Rejected     bool     `json:"rejected"`               // A navigation request was dropped because the engine was busy
	TransitionID string   `json:"transitionId,omitempty"` // Matched canvas transition
	Errors       []string `json:"errors,omitempty"`       // Host failures reported while running actions
}
