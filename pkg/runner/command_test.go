package runner

import (
	"errors"
	"testing"
	"time"

	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	two := 2.0
	tests := []struct {
		line string
		want Command
	}{
		{"tap", Command{Kind: CommandEvent, Event: domain.Event{Type: domain.EventTap}}},
		{"tap cta", Command{Kind: CommandEvent, Event: domain.Event{Type: domain.EventTap, ElementID: "cta"}}},
		{"tap 10 20", Command{Kind: CommandEvent, Event: domain.Event{Type: domain.EventTap, X: 10, Y: 20}}},
		{"TAP cta 1 2", Command{Kind: CommandEvent, Event: domain.Event{Type: domain.EventTap, ElementID: "cta", X: 1, Y: 2}}},
		{"hover menu", Command{Kind: CommandEvent, Event: domain.Event{Type: domain.EventHover, ElementID: "menu"}}},
		{"longpress card", Command{Kind: CommandEvent, Event: domain.Event{Type: domain.EventLongPress, ElementID: "card"}}},
		{"drag -120 0 card", Command{Kind: CommandEvent, Event: domain.Event{Type: domain.EventDrag, DX: -120, ElementID: "card"}}},
		{"scroll 0 300", Command{Kind: CommandEvent, Event: domain.Event{Type: domain.EventScroll, ScrollY: 300}}},
		{"wait 250", Command{Kind: CommandWait, Wait: 250 * time.Millisecond}},
		{"wait 0.5", Command{Kind: CommandWait, Wait: 500 * time.Microsecond}},
		{"back", Command{Kind: CommandBack}},
		{"goto settings", Command{Kind: CommandGoto, Target: "settings"}},
		{"set name Ada Lovelace", Command{Kind: CommandSet, Variable: &domain.SetVariableAction{VariableID: "name", Op: domain.OpSet, Value: domain.String("Ada Lovelace")}}},
		{"set count 3", Command{Kind: CommandSet, Variable: &domain.SetVariableAction{VariableID: "count", Op: domain.OpSet, Value: domain.Number(3)}}},
		{"toggle dark", Command{Kind: CommandSet, Variable: &domain.SetVariableAction{VariableID: "dark", Op: domain.OpToggle}}},
		{"dec count 2", Command{Kind: CommandSet, Variable: &domain.SetVariableAction{VariableID: "count", Op: domain.OpDecrement, Amount: &two}}},
		{"reset", Command{Kind: CommandReset}},
		{"frame", Command{Kind: CommandFrame}},
		{"q", Command{Kind: CommandQuit}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	for _, line := range []string{"", "jump", "drag 10", "drag x 1", "wait", "wait -5", "goto", "set count", "inc", "tap a b c d", "tap 1 x"} {
		t.Run(line, func(t *testing.T) {
			_, err := ParseCommand(line)
			assert.True(t, errors.Is(err, ErrInvalidCommand), "got %v", err)
		})
	}
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, domain.Bool(true), ParseValue("true"))
	assert.Equal(t, domain.Number(-1.5), ParseValue("-1.5"))
	assert.Equal(t, domain.String("42"), ParseValue(`"42"`))
	assert.Equal(t, domain.String("false"), ParseValue("'false'"))
	assert.Equal(t, domain.String("hello"), ParseValue("hello"))
}
