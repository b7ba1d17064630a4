// Package clock provides a virtual-time scheduler for deterministic hosts and tests.
package clock

import (
	"sort"
	"time"

	"github.com/aretw0/keyframe/pkg/ports"
)

// Manual is a ports.Scheduler whose time only moves when Advance or Set is called.
// Due callbacks run synchronously inside Advance, on the caller's goroutine,
// in deadline order (ties in scheduling order). It is not safe for concurrent use.
type Manual struct {
	now     time.Time
	seq     uint64
	pending []*manualTimer
}

type manualTimer struct {
	owner    *Manual
	deadline time.Time
	seq      uint64
	fn       func()
	done     bool
}

// NewManual creates a scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now implements ports.Scheduler.
func (m *Manual) Now() time.Time {
	return m.now
}

// AfterFunc implements ports.Scheduler. A non-positive d is due at the next Advance.
func (m *Manual) AfterFunc(d time.Duration, fn func()) ports.Timer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{owner: m, deadline: m.now.Add(d), seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

// Stop implements ports.Timer.
func (t *manualTimer) Stop() bool {
	if t.done {
		return false
	}
	t.done = true
	t.owner.remove(t)
	return true
}

func (m *Manual) remove(t *manualTimer) {
	for i, p := range m.pending {
		if p == t {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward by d, firing every callback that falls due.
// The clock is set to each callback's deadline before it runs, so callbacks
// observe the time they were scheduled for. Callbacks scheduled by callbacks
// also fire if they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	if d < 0 {
		d = 0
	}
	m.AdvanceTo(m.now.Add(d))
}

// AdvanceTo moves the clock to target, firing due callbacks. Targets in the past are ignored.
func (m *Manual) AdvanceTo(target time.Time) {
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.remove(next)
		next.done = true
		if next.deadline.After(m.now) {
			m.now = next.deadline
		}
		next.fn()
	}
	if target.After(m.now) {
		m.now = target
	}
}

func (m *Manual) nextDue(target time.Time) *manualTimer {
	var best *manualTimer
	for _, t := range m.pending {
		if t.deadline.After(target) {
			continue
		}
		if best == nil || t.deadline.Before(best.deadline) ||
			(t.deadline.Equal(best.deadline) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

// Pending returns the number of scheduled callbacks.
func (m *Manual) Pending() int {
	return len(m.pending)
}

// Deadlines lists the pending deadlines in firing order.
func (m *Manual) Deadlines() []time.Time {
	timers := append([]*manualTimer(nil), m.pending...)
	sort.Slice(timers, func(i, j int) bool {
		if timers[i].deadline.Equal(timers[j].deadline) {
			return timers[i].seq < timers[j].seq
		}
		return timers[i].deadline.Before(timers[j].deadline)
	})
	out := make([]time.Time, len(timers))
	for i, t := range timers {
		out[i] = t.deadline
	}
	return out
}
