package trigger_test

import (
	"testing"
	"time"

	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/trigger"
	"github.com/aretw0/keyframe/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_Drag(t *testing.T) {
	tests := []struct {
		name   string
		dir    domain.Direction
		dx, dy float64
		want   bool
	}{
		{"any by magnitude", domain.DirectionAny, 30, 40, true},
		{"any below threshold", domain.DirectionAny, 10, 10, false},
		{"left", domain.DirectionLeft, -60, 5, true},
		{"left wrong sign", domain.DirectionLeft, 60, 5, false},
		{"right", domain.DirectionRight, 60, -20, true},
		{"right mostly vertical", domain.DirectionRight, 55, 70, false},
		{"up", domain.DirectionUp, 0, -80, true},
		{"up is negative y", domain.DirectionUp, 0, 80, false},
		{"down", domain.DirectionDown, 10, 51, true},
		{"horizontal either sign", domain.DirectionHorizontal, -51, 0, true},
		{"vertical needs dominance", domain.DirectionVertical, 60, 60, false},
		{"vertical", domain.DirectionVertical, 1, -60, true},
		{"short", domain.DirectionRight, 49, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DragTrigger{Direction: tt.dir, Threshold: 50}
			ev := domain.Event{Type: domain.EventDrag, DX: tt.dx, DY: tt.dy}
			assert.Equal(t, tt.want, trigger.Match(ev, cfg, nil))
		})
	}
}

func TestMatch_TypeMismatch(t *testing.T) {
	tap := domain.Event{Type: domain.EventTap}
	assert.True(t, trigger.Match(tap, domain.TapTrigger{}, nil))
	assert.False(t, trigger.Match(tap, domain.HoverTrigger{}, nil))
	assert.False(t, trigger.Match(tap, domain.DragTrigger{}, nil))
	assert.False(t, trigger.Match(tap, domain.InvalidTrigger{Type: "tap", Reason: "broken"}, nil))
}

func TestMatch_ScrollAndTimer(t *testing.T) {
	scroll := domain.Event{Type: domain.EventScroll, ScrollY: 120}
	assert.True(t, trigger.Match(scroll, domain.ScrollTrigger{Direction: domain.DirectionDown, Offset: 100}, nil))
	assert.False(t, trigger.Match(scroll, domain.ScrollTrigger{Direction: domain.DirectionUp, Offset: 100}, nil))

	timer := domain.Event{Type: domain.EventTimer, Elapsed: 2 * time.Second}
	assert.True(t, trigger.Match(timer, domain.TimerTrigger{Delay: 2 * time.Second}, nil))
	assert.False(t, trigger.Match(timer, domain.TimerTrigger{Delay: 3 * time.Second}, nil))
}

func TestMatch_Variable(t *testing.T) {
	vars := variables.New([]domain.Variable{
		{ID: "count", DefaultValue: domain.Number(3)},
		{ID: "on", DefaultValue: domain.Bool(true)},
		{ID: "name", DefaultValue: domain.String("ada")},
	})
	tap := domain.Event{Type: domain.EventTap}

	assert.True(t, trigger.Match(tap, domain.VariableTrigger{VariableID: "count", Operator: domain.CompareEquals, Value: domain.Number(3)}, vars))
	assert.True(t, trigger.Match(tap, domain.VariableTrigger{VariableID: "count", Operator: domain.CompareGreater, Value: domain.Number(2)}, vars))
	assert.False(t, trigger.Match(tap, domain.VariableTrigger{VariableID: "count", Operator: domain.CompareLess, Value: domain.Number(2)}, vars))
	assert.True(t, trigger.Match(tap, domain.VariableTrigger{VariableID: "count", Operator: domain.CompareEquals, Value: domain.String("3")}, vars))
	assert.True(t, trigger.Match(tap, domain.VariableTrigger{VariableID: "on", Operator: domain.CompareEquals, Value: domain.Bool(true)}, vars))
	assert.True(t, trigger.Match(tap, domain.VariableTrigger{VariableID: "name", Operator: domain.CompareEquals, Value: domain.String("ada")}, vars))
	assert.False(t, trigger.Match(tap, domain.VariableTrigger{VariableID: "ghost", Operator: domain.CompareEquals, Value: domain.Number(0)}, vars))

	changed := domain.VariableTrigger{VariableID: "count", Operator: domain.CompareChanged}
	assert.False(t, trigger.Match(tap, changed, vars), "changed needs a variable change event")
	assert.True(t, trigger.Match(domain.Event{Type: domain.EventVariableChange, VariableID: "count", Previous: domain.Number(2)}, changed, vars))
	assert.False(t, trigger.Match(domain.Event{Type: domain.EventVariableChange, VariableID: "count", Previous: domain.Number(3)}, changed, vars))
	assert.False(t, trigger.Match(domain.Event{Type: domain.EventVariableChange, VariableID: "on", Previous: domain.Number(2)}, changed, vars))
}

func TestMatchAll_ComboNeedsBothInSameEvaluation(t *testing.T) {
	vars := variables.New([]domain.Variable{{ID: "unlocked", DefaultValue: domain.Bool(false)}})
	combo := []domain.Trigger{
		domain.TapTrigger{},
		domain.VariableTrigger{VariableID: "unlocked", Operator: domain.CompareEquals, Value: domain.Bool(true)},
	}
	tap := domain.Event{Type: domain.EventTap}

	assert.False(t, trigger.MatchAll(tap, combo, vars))

	_, err := vars.Set("unlocked", domain.Bool(true))
	require.NoError(t, err)
	assert.True(t, trigger.MatchAll(tap, combo, vars))
}

func TestMatchAll_VariableOnlyComboNeedsVariableEvent(t *testing.T) {
	vars := variables.New([]domain.Variable{{ID: "n", DefaultValue: domain.Number(5)}})
	combo := []domain.Trigger{domain.VariableTrigger{VariableID: "n", Operator: domain.CompareGreater, Value: domain.Number(4)}}

	assert.False(t, trigger.MatchAll(domain.Event{Type: domain.EventTap}, combo, vars))
	assert.True(t, trigger.MatchAll(domain.Event{Type: domain.EventVariableChange, VariableID: "n"}, combo, vars))
}

func TestMatch_ComparisonReadsStoreOnOtherVariableEvent(t *testing.T) {
	vars := variables.New([]domain.Variable{
		{ID: "a", DefaultValue: domain.Bool(true)},
		{ID: "b", DefaultValue: domain.Bool(false)},
	})
	ev := domain.Event{Type: domain.EventVariableChange, VariableID: "b", Previous: domain.Bool(true)}

	assert.True(t, trigger.Match(ev, domain.VariableTrigger{VariableID: "a", Operator: domain.CompareEquals, Value: domain.Bool(true)}, vars))
	assert.False(t, trigger.Match(ev, domain.VariableTrigger{VariableID: "a", Operator: domain.CompareChanged}, vars))
}

func TestMatchAll_EmptyListIsImplicitTap(t *testing.T) {
	assert.True(t, trigger.MatchAll(domain.Event{Type: domain.EventTap}, nil, nil))
	assert.False(t, trigger.MatchAll(domain.Event{Type: domain.EventHover}, nil, nil))
}

func TestWindow_LatchesGesturesWithinWindow(t *testing.T) {
	combo := []domain.Trigger{
		domain.HoverTrigger{},
		domain.TapTrigger{},
	}
	w := trigger.NewWindow()

	w.Observe("g1")
	assert.False(t, w.MatchAll(domain.Event{Type: domain.EventHover, Window: "g1"}, 0, combo, nil))
	w.Observe("g1")
	assert.True(t, w.MatchAll(domain.Event{Type: domain.EventTap, Window: "g1"}, 0, combo, nil))

	// A new window forgets the hover.
	w.Clear()
	w.Observe("g2")
	assert.False(t, w.MatchAll(domain.Event{Type: domain.EventHover, Window: "g2"}, 0, combo, nil))
	w.Observe("g3")
	assert.False(t, w.MatchAll(domain.Event{Type: domain.EventTap, Window: "g3"}, 0, combo, nil))
}

func TestWindow_EmptyIDNeverLatches(t *testing.T) {
	combo := []domain.Trigger{domain.HoverTrigger{}, domain.TapTrigger{}}
	w := trigger.NewWindow()

	w.Observe("")
	assert.False(t, w.MatchAll(domain.Event{Type: domain.EventHover}, 0, combo, nil))
	w.Observe("")
	assert.False(t, w.MatchAll(domain.Event{Type: domain.EventTap}, 0, combo, nil))
	assert.Equal(t, 1, w.Latched())
}

func TestResolveOutgoing_FirstMatchWins(t *testing.T) {
	transitions := []domain.Transition{
		{ID: "other", From: "B", To: "A"},
		{ID: "first", From: "A", To: "B"},
		{ID: "second", From: "A", To: "C"},
	}
	tr, ok := trigger.ResolveOutgoing("A", domain.Event{Type: domain.EventTap}, transitions, trigger.Env{})
	require.True(t, ok)
	assert.Equal(t, "first", tr.ID)
}

func TestResolveOutgoing_SkipsDanglingTargets(t *testing.T) {
	transitions := []domain.Transition{
		{ID: "dangling", From: "A", To: "missing"},
		{ID: "valid", From: "A", To: "B"},
	}
	exists := func(id string) bool { return id == "A" || id == "B" }

	tr, ok := trigger.ResolveOutgoing("A", domain.Event{Type: domain.EventTap}, transitions, trigger.Env{Exists: exists})
	require.True(t, ok)
	assert.Equal(t, "valid", tr.ID)

	_, ok = trigger.ResolveOutgoing("A", domain.Event{Type: domain.EventTap}, transitions[:1], trigger.Env{Exists: exists})
	assert.False(t, ok)
}

func TestResolveOutgoing_ComboWithWindow(t *testing.T) {
	transitions := []domain.Transition{{
		ID: "combo", From: "A", To: "B",
		Triggers: []domain.Trigger{domain.HoverTrigger{}, domain.TapTrigger{}},
	}}
	env := trigger.Env{Window: trigger.NewWindow()}

	_, ok := trigger.ResolveOutgoing("A", domain.Event{Type: domain.EventTap}, transitions, env)
	assert.False(t, ok, "one predicate alone must not fire the combo")

	_, ok = trigger.ResolveOutgoing("A", domain.Event{Type: domain.EventHover, Window: "w"}, transitions, env)
	assert.False(t, ok)
	tr, ok := trigger.ResolveOutgoing("A", domain.Event{Type: domain.EventTap, Window: "w"}, transitions, env)
	require.True(t, ok)
	assert.Equal(t, "combo", tr.ID)
}

func TestTimerDelays_Distinct(t *testing.T) {
	transitions := []domain.Transition{
		{From: "A", To: "B", Triggers: []domain.Trigger{domain.TimerTrigger{Delay: time.Second}}},
		{From: "A", To: "C", Triggers: []domain.Trigger{domain.TimerTrigger{Delay: time.Second}}},
		{From: "A", To: "C", Triggers: []domain.Trigger{domain.TimerTrigger{Delay: 3 * time.Second}, domain.TapTrigger{}}},
		{From: "B", To: "A", Triggers: []domain.Trigger{domain.TimerTrigger{Delay: 5 * time.Second}}},
	}
	assert.Equal(t, []domain.TimerTrigger{{Delay: time.Second}, {Delay: 3 * time.Second}}, trigger.TimerDelays("A", transitions))
}
