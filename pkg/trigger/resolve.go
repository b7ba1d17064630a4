package trigger

import "github.com/aretw0/keyframe/pkg/domain"

// Env is what outgoing resolution needs from the engine.
type Env struct {
	Vars VariableReader
	// Exists reports whether a screen ID is defined. Nil accepts every target.
	Exists func(screenID string) bool
	// Window enables combo latching across events of one gesture. Nil means
	// every combo member must fire in the same evaluation.
	Window *Window
}

// ResolveOutgoing returns the first transition leaving screenID whose combo
// fires for ev. Ties resolve in declaration order: the first match wins.
// Transitions targeting an unknown screen are skipped as ineligible.
func ResolveOutgoing(screenID string, ev domain.Event, transitions []domain.Transition, env Env) (domain.Transition, bool) {
	if env.Window != nil {
		env.Window.Observe(ev.Window)
	}
	for i := range transitions {
		tr := &transitions[i]
		if tr.From != screenID {
			continue
		}
		if env.Exists != nil && !env.Exists(tr.To) {
			continue
		}
		var ok bool
		if env.Window != nil {
			ok = env.Window.MatchAll(ev, i, tr.Triggers, env.Vars)
		} else {
			ok = MatchAll(ev, tr.Triggers, env.Vars)
		}
		if ok {
			return *tr, true
		}
	}
	return domain.Transition{}, false
}

// Outgoing lists the transitions leaving screenID in declaration order.
func Outgoing(screenID string, transitions []domain.Transition) []domain.Transition {
	var out []domain.Transition
	for _, tr := range transitions {
		if tr.From == screenID {
			out = append(out, tr)
		}
	}
	return out
}

// TimerDelays returns the distinct timer delays among the triggers of the
// transitions leaving screenID, in first-seen order.
func TimerDelays(screenID string, transitions []domain.Transition) []domain.TimerTrigger {
	var out []domain.TimerTrigger
	seen := make(map[int64]bool)
	for _, tr := range Outgoing(screenID, transitions) {
		for _, cfg := range tr.Triggers {
			tt, ok := cfg.(domain.TimerTrigger)
			if !ok || seen[int64(tt.Delay)] {
				continue
			}
			seen[int64(tt.Delay)] = true
			out = append(out, tt)
		}
	}
	return out
}
