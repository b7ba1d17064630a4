package runtime

import (
	"context"

	"github.com/aretw0/keyframe/pkg/domain"
)

// Navigate switches to target (a screen ID or domain.TargetBack), animated by
// spec when it is non-nil and not instant. It reports whether the navigation
// was accepted.
func (e *Engine) Navigate(ctx context.Context, target string, spec *domain.TransitionSpec) bool {
	var out domain.Outcome
	return e.navigate(ctx, target, spec, &out)
}

// Back returns to the previous screen. It is a no-op when the history is empty.
func (e *Engine) Back(ctx context.Context, spec *domain.TransitionSpec) bool {
	return e.Navigate(ctx, domain.TargetBack, spec)
}

// GoToState switches to the first screen tagged with stateID.
func (e *Engine) GoToState(ctx context.Context, stateID string, spec *domain.TransitionSpec) bool {
	var out domain.Outcome
	return e.goToState(ctx, "", stateID, spec, &out)
}

// goToState reports the state change to the host once a screen carries the
// state, then navigates to that screen.
func (e *Engine) goToState(ctx context.Context, elementID, stateID string, spec *domain.TransitionSpec, out *domain.Outcome) bool {
	screen, ok := e.proto.ScreenForState(stateID)
	if !ok {
		e.logger.Warn("no screen for state, ignoring", "state", stateID)
		return false
	}
	e.emitStateChange(ctx, elementID, stateID)
	return e.navigate(ctx, screen.ID, spec, out)
}

func (e *Engine) navigate(ctx context.Context, target string, spec *domain.TransitionSpec, out *domain.Outcome) bool {
	if !e.started {
		e.logger.Warn("navigation dropped, engine not started", "target", target)
		return false
	}
	if e.Busy() {
		out.Rejected = true
		e.reject(ctx, domain.KindLink, "", e.current, target)
		return false
	}

	to, back := target, false
	if target == domain.TargetBack {
		n := len(e.history)
		if n == 0 {
			e.logger.Debug("back with empty history, ignoring", "screen", e.current)
			return false
		}
		to, back = e.history[n-1], true
	}
	if !e.screenExists(to) {
		e.logger.Warn("navigation target not found, ignoring", "target", to)
		return false
	}

	anim := domain.InstantSpec()
	if spec != nil {
		anim = *spec
	}

	e.disarmTimers()
	e.window.Clear()
	out.Started = true

	f := &domain.InFlight{
		Kind:      domain.KindLink,
		From:      e.current,
		To:        to,
		Back:      back,
		Animation: anim.Type,
		Direction: anim.Direction,
		Easing:    anim.Easing,
		StartedAt: e.now(),
		Duration:  anim.Duration,
	}

	if anim.Type == domain.AnimationInstant || anim.Type == "" || anim.Duration <= 0 {
		e.swapScreen(ctx, f)
		e.enterIdle()
		return true
	}

	e.beginFlight(f)
	e.phase = domain.PhaseTransitionOut
	e.logger.Debug("link navigation started",
		"from", f.From,
		"to", f.To,
		"animation", f.Animation,
		"duration", f.Duration,
	)
	e.emitTransitionStart(ctx, f)
	e.scheduleLink(f)
	return true
}

// scheduleLink arms the swap and end callbacks of a link flight that has not yet finished.
func (e *Engine) scheduleLink(f *domain.InFlight) {
	if !f.Swapped {
		e.flightTimers = append(e.flightTimers, e.after(f.SwapAt(), func() { e.swapLink(e.ctx) }))
	}
	e.flightTimers = append(e.flightTimers, e.after(f.EndAt(), func() { e.finishFlight(e.ctx) }))
}

func (e *Engine) swapLink(ctx context.Context) {
	f := e.inFlight
	if f == nil || f.Kind != domain.KindLink || f.Swapped {
		return
	}
	e.swapScreen(ctx, f)
	e.phase = domain.PhaseTransitionIn
}
