package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aretw0/keyframe/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
//
// Each input line is either an event object ({"type":"tap","elementId":"cta"}),
// a command object ({"command":"wait","ms":250}) or a JSON string holding a
// text command ("tap cta"). Each output line is an object tagged by "kind".
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

type jsonInput struct {
	Command string `json:"command"`
	domain.Event
	Ms        float64       `json:"ms"`
	Target    string        `json:"target"`
	Operation string        `json:"operation"`
	Value     *domain.Value `json:"value"`
	Amount    *float64      `json:"amount"`
}

type jsonOutput struct {
	Kind    string `json:"kind"`
	Command string `json:"command,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Input reads one line and decodes it into a Command.
func (h *JSONHandler) Input(ctx context.Context) (Command, error) {
	for {
		text, err := h.Reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text == "" {
			if err != nil {
				return Command{}, err
			}
			continue
		}

		// A JSON string carries a text command.
		var line string
		if json.Unmarshal([]byte(text), &line) == nil {
			return ParseCommand(line)
		}
		return decodeJSONCommand([]byte(text))
	}
}

func decodeJSONCommand(data []byte) (Command, error) {
	var in jsonInput
	if err := json.Unmarshal(data, &in); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}

	kind := CommandKind(in.Command)
	if kind == "" {
		kind = CommandEvent
	}

	switch kind {
	case CommandEvent:
		if in.Type == "" {
			return Command{}, fmt.Errorf("%w: event needs a type", ErrInvalidCommand)
		}
		return Command{Kind: CommandEvent, Event: in.Event}, nil
	case CommandWait:
		if in.Ms < 0 {
			return Command{}, fmt.Errorf("%w: negative wait", ErrInvalidCommand)
		}
		return Command{Kind: CommandWait, Wait: time.Duration(in.Ms * float64(time.Millisecond))}, nil
	case CommandGoto:
		if in.Target == "" {
			return Command{}, fmt.Errorf("%w: goto needs a target", ErrInvalidCommand)
		}
		return Command{Kind: CommandGoto, Target: in.Target}, nil
	case CommandSet:
		if in.VariableID == "" {
			return Command{}, fmt.Errorf("%w: set needs a variableId", ErrInvalidCommand)
		}
		a := domain.SetVariableAction{VariableID: in.VariableID, Op: domain.VariableOp(in.Operation), Amount: in.Amount}
		if a.Op == "" {
			a.Op = domain.OpSet
		}
		if in.Value != nil {
			a.Value = *in.Value
		}
		return variableCommand(a), nil
	case CommandBack, CommandReset, CommandVars, CommandFrame, CommandState, CommandHelp, CommandQuit:
		return Command{Kind: kind}, nil
	}
	return Command{}, fmt.Errorf("%w: unknown command %q", ErrInvalidCommand, in.Command)
}

// Notify emits {"kind": <notice kind>, "data": <hook event>}.
func (h *JSONHandler) Notify(ctx context.Context, n Notice) error {
	return h.Encoder.Encode(jsonOutput{Kind: string(n.Kind), Data: n.Data})
}

// Respond emits {"kind": "response", "command": <verb>, "data": <response>}.
func (h *JSONHandler) Respond(ctx context.Context, cmd Command, resp Response) error {
	return h.Encoder.Encode(jsonOutput{Kind: "response", Command: string(cmd.Kind), Data: resp})
}

// SystemOutput emits {"kind": "system", "message": <msg>}.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(jsonOutput{Kind: "system", Message: msg})
}
