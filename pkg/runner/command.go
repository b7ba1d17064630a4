package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/keyframe/pkg/domain"
)

// ErrInvalidCommand wraps every parse failure. The runner reports it and
// keeps reading.
var ErrInvalidCommand = errors.New("invalid command")

// Usage lists the text commands.
const Usage = `Commands:
  tap [element] [x y]        hover [element]       press [element]
  release [element]          longpress [element]
  drag dx dy [element]       scroll dx dy [element]
  wait ms                    back                  goto screen
  set var value              toggle var            inc var [n]    dec var [n]
  reset   vars   frame   state   help   quit`

// ParseCommand parses one line of the text protocol.
func ParseCommand(line string) (Command, error) {
	cmd, err := parseCommand(line)
	if err != nil && !errors.Is(err, ErrInvalidCommand) {
		err = fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return cmd, err
}

func parseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty line", ErrInvalidCommand)
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "tap", "click":
		return pointerEvent(domain.EventTap, args)
	case "hover":
		return pointerEvent(domain.EventHover, args)
	case "press":
		return pointerEvent(domain.EventPress, args)
	case "release":
		return pointerEvent(domain.EventRelease, args)
	case "longpress":
		return pointerEvent(domain.EventLongPress, args)
	case "drag", "scroll":
		if len(args) < 2 {
			return Command{}, fmt.Errorf("%s needs dx dy", verb)
		}
		dx, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return Command{}, fmt.Errorf("invalid dx %q", args[0])
		}
		dy, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return Command{}, fmt.Errorf("invalid dy %q", args[1])
		}
		ev := domain.Event{Type: domain.EventDrag, DX: dx, DY: dy}
		if verb == "scroll" {
			ev = domain.Event{Type: domain.EventScroll, ScrollX: dx, ScrollY: dy}
		}
		if len(args) > 2 {
			ev.ElementID = args[2]
		}
		return Command{Kind: CommandEvent, Event: ev}, nil
	case "wait", "sleep":
		if len(args) != 1 {
			return Command{}, errors.New("wait needs a duration in ms")
		}
		ms, err := strconv.ParseFloat(args[0], 64)
		if err != nil || ms < 0 {
			return Command{}, fmt.Errorf("invalid duration %q", args[0])
		}
		return Command{Kind: CommandWait, Wait: time.Duration(ms * float64(time.Millisecond))}, nil
	case "back":
		return Command{Kind: CommandBack}, nil
	case "goto":
		if len(args) != 1 {
			return Command{}, errors.New("goto needs a screen id")
		}
		return Command{Kind: CommandGoto, Target: args[0]}, nil
	case "set":
		if len(args) < 2 {
			return Command{}, errors.New("set needs a variable and a value")
		}
		return variableCommand(domain.SetVariableAction{
			VariableID: args[0],
			Op:         domain.OpSet,
			Value:      ParseValue(strings.Join(args[1:], " ")),
		}), nil
	case "toggle":
		if len(args) != 1 {
			return Command{}, errors.New("toggle needs a variable")
		}
		return variableCommand(domain.SetVariableAction{VariableID: args[0], Op: domain.OpToggle}), nil
	case "inc", "dec":
		if len(args) < 1 || len(args) > 2 {
			return Command{}, fmt.Errorf("%s needs a variable and an optional amount", verb)
		}
		op := domain.OpIncrement
		if verb == "dec" {
			op = domain.OpDecrement
		}
		a := domain.SetVariableAction{VariableID: args[0], Op: op}
		if len(args) == 2 {
			n, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return Command{}, fmt.Errorf("invalid amount %q", args[1])
			}
			a.Amount = &n
		}
		return variableCommand(a), nil
	case "reset":
		return Command{Kind: CommandReset}, nil
	case "vars":
		return Command{Kind: CommandVars}, nil
	case "frame":
		return Command{Kind: CommandFrame}, nil
	case "state":
		return Command{Kind: CommandState}, nil
	case "help", "?":
		return Command{Kind: CommandHelp}, nil
	case "quit", "exit", "q":
		return Command{Kind: CommandQuit}, nil
	}
	return Command{}, fmt.Errorf("%w: unknown verb %q", ErrInvalidCommand, verb)
}

func pointerEvent(t domain.EventType, args []string) (Command, error) {
	ev := domain.Event{Type: t}
	if len(args) == 1 || len(args) == 3 {
		ev.ElementID, args = args[0], args[1:]
	}
	if len(args) == 2 {
		x, errX := strconv.ParseFloat(args[0], 64)
		y, errY := strconv.ParseFloat(args[1], 64)
		if errX != nil || errY != nil {
			return Command{}, fmt.Errorf("invalid position %q %q", args[0], args[1])
		}
		ev.X, ev.Y = x, y
	} else if len(args) != 0 {
		return Command{}, fmt.Errorf("%s takes [element] [x y]", t)
	}
	return Command{Kind: CommandEvent, Event: ev}, nil
}

func variableCommand(a domain.SetVariableAction) Command {
	return Command{Kind: CommandSet, Variable: &a}
}

// ParseValue reads a literal: true/false, a number, or a string. Quotes
// force a string.
func ParseValue(s string) domain.Value {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return domain.String(s[1 : len(s)-1])
	}
	switch s {
	case "true":
		return domain.Bool(true)
	case "false":
		return domain.Bool(false)
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return domain.Number(n)
	}
	return domain.String(s)
}
