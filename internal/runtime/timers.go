package runtime

import (
	"time"

	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/trigger"
)

// enterIdle marks the current screen as entered now and arms its timers.
func (e *Engine) enterIdle() {
	e.phase = domain.PhaseIdle
	e.enteredAt = e.now()
	e.armTimers(e.enteredAt, time.Time{})
}

// armTimers schedules one callback per distinct timer delay among the
// transitions leaving the current screen, measured from enteredAt. Timers
// whose deadline is not after firedBy are considered fired already; a zero
// firedBy arms them all. Deadlines in the scheduler's past fire on its next turn.
func (e *Engine) armTimers(enteredAt, firedBy time.Time) {
	e.disarmTimers()
	gen := e.timerGen
	for _, tt := range trigger.TimerDelays(e.current, e.proto.Transitions) {
		delay := tt.Delay
		deadline := enteredAt.Add(delay)
		if !firedBy.IsZero() && !deadline.After(firedBy) {
			continue
		}
		t := e.after(deadline, func() {
			if e.timerGen != gen {
				return
			}
			e.fireTimer(delay)
		})
		e.screenTimers = append(e.screenTimers, t)
	}
}

// disarmTimers cancels every screen timer.
func (e *Engine) disarmTimers() {
	e.timerGen++
	for _, t := range e.screenTimers {
		t.Stop()
	}
	e.screenTimers = nil
}

func (e *Engine) fireTimer(delay time.Duration) {
	elapsed := e.now().Sub(e.enteredAt)
	if elapsed < delay {
		elapsed = delay
	}
	e.logger.Debug("screen timer fired", "screen", e.current, "delay", delay)
	var out domain.Outcome
	e.evaluateCanvas(e.ctx, domain.Event{Type: domain.EventTimer, Elapsed: elapsed}, &out)
}
