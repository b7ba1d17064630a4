package runtime

import (
	"context"

	"github.com/aretw0/keyframe/pkg/domain"
)

func (e *Engine) base() domain.HookBase {
	return domain.HookBase{Timestamp: e.now()}
}

func (e *Engine) emitNavigate(ctx context.Context, from, to string, back bool) {
	if e.hooks.OnNavigate != nil {
		e.hooks.OnNavigate(ctx, &domain.NavigateEvent{HookBase: e.base(), From: from, To: to, Back: back})
	}
}

func (e *Engine) emitVariable(ctx context.Context, id string, prev, value domain.Value) {
	if e.hooks.OnVariableChange != nil {
		e.hooks.OnVariableChange(ctx, &domain.VariableEvent{HookBase: e.base(), VariableID: id, Previous: prev, Value: value})
	}
}

func (e *Engine) emitStateChange(ctx context.Context, elementID, stateID string) {
	if e.hooks.OnStateChange != nil {
		e.hooks.OnStateChange(ctx, &domain.StateChangeEvent{HookBase: e.base(), ElementID: elementID, StateID: stateID})
	}
}

func (e *Engine) emitGesture(ctx context.Context, ev domain.Event) {
	if e.hooks.OnGesture != nil {
		e.hooks.OnGesture(ctx, &domain.GestureEvent{HookBase: e.base(), Gesture: ev.Type, ElementID: ev.ElementID, X: ev.X, Y: ev.Y})
	}
}

func (e *Engine) emitOpenURL(ctx context.Context, url string, newTab bool) error {
	if e.hooks.OnOpenURL == nil {
		return nil
	}
	return e.hooks.OnOpenURL(ctx, &domain.OpenURLEvent{HookBase: e.base(), URL: url, NewTab: newTab})
}

func (e *Engine) transitionEvent(f *domain.InFlight) *domain.TransitionEvent {
	return &domain.TransitionEvent{
		HookBase: e.base(),
		Kind:     f.Kind,
		ID:       f.TransitionID,
		From:     f.From,
		To:       f.To,
		Phase:    e.phase,
		Duration: f.Delay + f.Duration,
	}
}

func (e *Engine) emitTransitionStart(ctx context.Context, f *domain.InFlight) {
	if e.hooks.OnTransitionStart != nil {
		e.hooks.OnTransitionStart(ctx, e.transitionEvent(f))
	}
}

func (e *Engine) emitTransitionEnd(ctx context.Context, f *domain.InFlight) {
	if e.hooks.OnTransitionEnd != nil {
		e.hooks.OnTransitionEnd(ctx, e.transitionEvent(f))
	}
}

// reject reports a navigation request dropped because a transition is in flight.
func (e *Engine) reject(ctx context.Context, kind domain.TransitionKind, id, from, to string) {
	e.logger.Debug("navigation rejected while busy",
		"from", from,
		"to", to,
		"phase", e.phase,
	)
	if e.hooks.OnRejected != nil {
		e.hooks.OnRejected(ctx, &domain.TransitionEvent{
			HookBase: e.base(),
			Kind:     kind,
			ID:       id,
			From:     from,
			To:       to,
			Phase:    e.phase,
		})
	}
}
