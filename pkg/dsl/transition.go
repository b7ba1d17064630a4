package dsl

import (
	"time"

	"github.com/aretw0/keyframe/pkg/domain"
)

// TransitionBuilder provides a fluent API for configuring a canvas edge.
type TransitionBuilder struct {
	transition domain.Transition
	builder    *Builder
}

// ID names the edge. Unnamed edges get "<from>-<to>-<index>".
func (t *TransitionBuilder) ID(id string) *TransitionBuilder {
	t.transition.ID = id
	return t
}

// On adds triggers. Several triggers form a combo that must all fire.
func (t *TransitionBuilder) On(triggers ...domain.Trigger) *TransitionBuilder {
	t.transition.Triggers = append(t.transition.Triggers, triggers...)
	return t
}

// After adds a timer trigger.
func (t *TransitionBuilder) After(d time.Duration) *TransitionBuilder {
	return t.On(domain.TimerTrigger{Delay: d})
}

// Delay waits d between the trigger and the screen swap.
func (t *TransitionBuilder) Delay(d time.Duration) *TransitionBuilder {
	t.transition.Delay = d
	return t
}

// Duration sets the animation length.
func (t *TransitionBuilder) Duration(d time.Duration) *TransitionBuilder {
	t.transition.Duration = d
	return t
}

// Ease uses a named curve.
func (t *TransitionBuilder) Ease(name string) *TransitionBuilder {
	t.transition.Easing = domain.NamedEasing(name)
	return t
}

// Easing sets any curve.
func (t *TransitionBuilder) Easing(e domain.EasingSpec) *TransitionBuilder {
	t.transition.Easing = e
	return t
}

// Transition adds another edge to the same prototype.
func (t *TransitionBuilder) Transition(from, to string) *TransitionBuilder {
	return t.builder.Transition(from, to)
}
