package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/keyframe/pkg/domain"
)

// Reset returns the engine to its initial screen with default variables.
// Timers, the in-flight record, history and combo latches are cleared
// synchronously. It is safe to call from inside an action list.
func (e *Engine) Reset(ctx context.Context) {
	if !e.started {
		e.logger.Warn("reset ignored, engine not started")
		return
	}
	e.epoch++
	e.stopFlightTimers()
	e.disarmTimers()

	from := e.current
	entry, _ := e.entryScreen()

	e.inFlight = nil
	e.curve = nil
	e.history = nil
	e.window.Clear()
	e.vars.Reset()
	e.current = entry

	e.logger.Debug("engine reset", "from", from, "screen", entry)
	e.emitNavigate(ctx, from, entry, false)
	e.enterIdle()
}

// Snapshot captures the runtime state. In-flight deadlines and the timer
// arm time are absolute on the scheduler clock.
func (e *Engine) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		SessionID:     e.sessionID,
		Now:           e.now(),
		CurrentScreen: e.current,
		Phase:         e.phase,
		History:       e.History(),
		Variables:     e.vars.Values(),
		InFlight:      e.InFlight(),
		EnteredAt:     e.enteredAt,
	}
}

// Restore replaces the runtime state with snap and re-schedules pending
// timers and transition deadlines relative to the scheduler's Now. No hooks fire.
func (e *Engine) Restore(ctx context.Context, snap domain.Snapshot) error {
	if !e.screenExists(snap.CurrentScreen) {
		return fmt.Errorf("restore: %w: %q", domain.ErrScreenNotFound, snap.CurrentScreen)
	}
	if f := snap.InFlight; f != nil && !e.screenExists(f.To) {
		return fmt.Errorf("restore in-flight target: %w: %q", domain.ErrScreenNotFound, f.To)
	}

	e.ctx = context.WithoutCancel(ctx)
	e.epoch++
	e.stopFlightTimers()
	e.disarmTimers()

	e.started = true
	if snap.SessionID != "" {
		e.sessionID = snap.SessionID
	}
	e.current = snap.CurrentScreen
	e.history = append([]string(nil), snap.History...)
	e.vars.Restore(snap.Variables)
	e.window.Clear()
	e.enteredAt = snap.EnteredAt
	e.inFlight = nil
	e.curve = nil
	e.phase = domain.PhaseIdle

	if snap.InFlight == nil {
		e.armTimers(snap.EnteredAt, snap.Now)
		return nil
	}

	f := *snap.InFlight
	e.beginFlight(&f)
	switch f.Kind {
	case domain.KindLink:
		e.phase = domain.PhaseTransitionOut
		if f.Swapped {
			e.phase = domain.PhaseTransitionIn
		}
		e.scheduleLink(&f)
	default:
		if f.Swapped {
			e.phase = domain.PhaseAnimating
			e.flightTimers = append(e.flightTimers, e.after(f.EndAt(), func() { e.finishFlight(e.ctx) }))
		} else {
			e.phase = domain.PhaseDelaying
			e.flightTimers = append(e.flightTimers, e.after(f.SwapAt(), func() { e.swapEdge(e.ctx) }))
		}
	}
	return nil
}
