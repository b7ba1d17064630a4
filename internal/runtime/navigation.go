package runtime

import (
	"context"

	"github.com/aretw0/keyframe/pkg/curve"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/trigger"
)

// Dispatch processes one event in one synchronous turn.
//
// Element-level handling comes first: an enabled prototype link or enabled
// interactions of the target element whose gesture equals the event type
// consume the event. Otherwise the canvas transitions leaving the current
// screen are evaluated; if one matches while another transition is in flight,
// the request is rejected.
func (e *Engine) Dispatch(ctx context.Context, ev domain.Event) domain.Outcome {
	var out domain.Outcome
	if !e.started {
		e.logger.Warn("event dropped, engine not started", "type", ev.Type)
		return out
	}
	if ev.Type.IsGesture() {
		e.emitGesture(ctx, ev)
	}

	if ev.ElementID != "" && e.dispatchElement(ctx, ev, &out) {
		out.Consumed = true
		return out
	}

	e.evaluateCanvas(ctx, ev, &out)
	return out
}

// dispatchElement runs the element-level bindings of ev.ElementID on the current screen.
func (e *Engine) dispatchElement(ctx context.Context, ev domain.Event, out *domain.Outcome) bool {
	screen, ok := e.proto.Screen(e.current)
	if !ok {
		return false
	}
	el, ok := screen.Element(ev.ElementID)
	if !ok {
		return false
	}

	matched := false
	if link := el.Link; link != nil && link.Enabled && linkTrigger(link) == ev.Type {
		matched = true
		spec := link.Spec
		e.navigate(ctx, link.Target, &spec, out)
	}

	for _, idx := range e.interactions[el.ID] {
		in := e.proto.Interactions[idx]
		if !in.Enabled || in.Gesture != ev.Type {
			continue
		}
		matched = true
		e.runActions(ctx, el.ID, in.Actions, out)
	}
	return matched
}

func linkTrigger(link *domain.PrototypeLink) domain.EventType {
	if link.Trigger == "" {
		return domain.EventTap
	}
	return link.Trigger
}

// evaluateCanvas resolves the outgoing transitions of the current screen for ev.
func (e *Engine) evaluateCanvas(ctx context.Context, ev domain.Event, out *domain.Outcome) {
	if e.Busy() {
		// Resolve without latching so a rejected gesture leaves no trace.
		tr, ok := trigger.ResolveOutgoing(e.current, ev, e.proto.Transitions, trigger.Env{
			Vars:   e.vars,
			Exists: e.screenExists,
		})
		if ok {
			out.Rejected = true
			e.reject(ctx, domain.KindEdge, tr.ID, e.current, tr.To)
		}
		return
	}

	tr, ok := trigger.ResolveOutgoing(e.current, ev, e.proto.Transitions, trigger.Env{
		Vars:   e.vars,
		Exists: e.screenExists,
		Window: e.window,
	})
	if !ok {
		return
	}
	out.Started = true
	out.TransitionID = tr.ID
	e.startTransition(ctx, tr)
}

// startTransition accepts a canvas transition. The caller has checked the engine is idle.
func (e *Engine) startTransition(ctx context.Context, tr domain.Transition) {
	e.disarmTimers()
	e.window.Clear()

	f := &domain.InFlight{
		Kind:         domain.KindEdge,
		TransitionID: tr.ID,
		From:         e.current,
		To:           tr.To,
		Easing:       tr.Easing,
		StartedAt:    e.now(),
		Delay:        max(tr.Delay, 0),
		Duration:     max(tr.Duration, 0),
	}
	e.beginFlight(f)
	e.phase = domain.PhaseDelaying

	e.logger.Debug("transition started",
		"transition", tr.ID,
		"from", f.From,
		"to", f.To,
		"delay", f.Delay,
		"duration", f.Duration,
	)
	e.emitTransitionStart(ctx, f)

	if f.Delay == 0 {
		e.swapEdge(ctx)
		return
	}
	e.flightTimers = append(e.flightTimers, e.after(f.SwapAt(), func() { e.swapEdge(e.ctx) }))
}

// beginFlight records f as the single in-flight transition and resolves its curve.
func (e *Engine) beginFlight(f *domain.InFlight) {
	e.inFlight = f
	c, ok := curve.Resolve(f.Easing)
	if !ok {
		e.logger.Warn("unknown easing, falling back", "easing", f.Easing.Name, "fallback", curve.FallbackName)
	}
	e.curve = c
}

// swapEdge ends the delay of an edge transition: the screen changes and the
// interpolation window opens.
func (e *Engine) swapEdge(ctx context.Context) {
	f := e.inFlight
	if f == nil || f.Kind != domain.KindEdge || f.Swapped {
		return
	}
	e.swapScreen(ctx, f)
	e.phase = domain.PhaseAnimating

	if f.Duration == 0 {
		e.finishFlight(ctx)
		return
	}
	e.flightTimers = append(e.flightTimers, e.after(f.EndAt(), func() { e.finishFlight(e.ctx) }))
}

// swapScreen makes f.To current. Back navigation pops the history instead of pushing.
func (e *Engine) swapScreen(ctx context.Context, f *domain.InFlight) {
	from := e.current
	if f.Back {
		if n := len(e.history); n > 0 {
			e.history = e.history[:n-1]
		}
	} else {
		e.history = append(e.history, from)
	}
	e.current = f.To
	f.Swapped = true
	e.emitNavigate(ctx, from, f.To, f.Back)
}

// finishFlight completes the in-flight transition and returns to idle.
func (e *Engine) finishFlight(ctx context.Context) {
	f := e.inFlight
	if f == nil {
		return
	}
	if !f.Swapped {
		e.swapScreen(ctx, f)
	}
	e.stopFlightTimers()
	e.inFlight = nil
	e.curve = nil
	e.phase = domain.PhaseIdle

	e.logger.Debug("transition finished", "transition", f.TransitionID, "screen", e.current)
	e.emitTransitionEnd(ctx, f)
	e.enterIdle()
}

func (e *Engine) stopFlightTimers() {
	for _, t := range e.flightTimers {
		t.Stop()
	}
	e.flightTimers = nil
}
