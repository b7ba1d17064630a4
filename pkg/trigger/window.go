package trigger

import "github.com/aretw0/keyframe/pkg/domain"

type latchKey struct {
	transition int
	member     int
}

// Window remembers which gesture-class combo members already fired during the
// current gesture window. Events carrying the same non-empty window id share
// latches; an empty id always starts a fresh window.
type Window struct {
	id      string
	latched map[latchKey]bool
}

// NewWindow creates an empty window.
func NewWindow() *Window {
	return &Window{latched: make(map[latchKey]bool)}
}

// Observe moves the window to id, dropping latches from any other window.
func (w *Window) Observe(id string) {
	if id == "" || id != w.id {
		w.Clear()
	}
	w.id = id
}

// Clear drops every latch.
func (w *Window) Clear() {
	w.id = ""
	clear(w.latched)
}

// Latched returns the number of latched members across all combos.
func (w *Window) Latched() int {
	return len(w.latched)
}

// MatchAll evaluates the combo of the transition at index idx, latching
// gesture-class members that fire. Variable members are re-read every time.
func (w *Window) MatchAll(ev domain.Event, idx int, triggers []domain.Trigger, vars VariableReader) bool {
	triggers = Effective(triggers)
	if !hasGestureMember(triggers) {
		return MatchAll(ev, triggers, vars)
	}

	all := true
	for i, cfg := range triggers {
		key := latchKey{transition: idx, member: i}
		if IsGestureClass(cfg) {
			if w.latched[key] {
				continue
			}
			if Match(ev, cfg, vars) {
				w.latched[key] = true
				continue
			}
			all = false
			continue
		}
		if !Match(ev, cfg, vars) {
			all = false
		}
	}
	return all
}
