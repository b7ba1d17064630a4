package domain

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"sessionId"`

	CurrentScreen *string `json:"currentScreen,omitempty"`
	Phase         *Phase  `json:"phase,omitempty"`

	// Variables contains only changed or added values.
	Variables map[string]Value `json:"variables,omitempty"`

	// History is sent whole when it changed: back navigation pops, so it is not append-only.
	History []string `json:"history,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{SessionID: newSnap.SessionID}

	if oldSnap == nil || oldSnap.CurrentScreen != newSnap.CurrentScreen {
		diff.CurrentScreen = &newSnap.CurrentScreen
	}
	if oldSnap == nil || oldSnap.Phase != newSnap.Phase {
		diff.Phase = &newSnap.Phase
	}

	diff.Variables = diffVariables(oldSnap, newSnap)

	if oldSnap == nil || !equalHistory(oldSnap.History, newSnap.History) {
		diff.History = append([]string{}, newSnap.History...)
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffVariables(old, new *Snapshot) map[string]Value {
	delta := make(map[string]Value)
	for k, v := range new.Variables {
		if old == nil {
			delta[k] = v
			continue
		}
		if prev, ok := old.Variables[k]; !ok || !prev.Equal(v) {
			delta[k] = v
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

func equalHistory(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.CurrentScreen == nil &&
		d.Phase == nil &&
		len(d.Variables) == 0 &&
		d.History == nil
}
