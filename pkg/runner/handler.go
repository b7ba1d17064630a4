package runner

import (
	"context"
	"time"

	"github.com/aretw0/keyframe/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI) and JSON (Structured) modes.
type IOHandler interface {
	// Input reads and parses the next command. io.EOF ends the session.
	Input(ctx context.Context) (Command, error)

	// Notify presents a host callback raised by the engine.
	Notify(ctx context.Context, n Notice) error

	// Respond presents the result of a command.
	Respond(ctx context.Context, cmd Command, resp Response) error

	// SystemOutput presents a meta-message (status, parse errors, reloads).
	SystemOutput(ctx context.Context, msg string) error
}

// CommandKind is the verb of an input line.
type CommandKind string

const (
	CommandEvent CommandKind = "event" // Dispatch an input event
	CommandWait  CommandKind = "wait"  // Let time pass
	CommandBack  CommandKind = "back"  // Back navigation
	CommandGoto  CommandKind = "goto"  // Programmatic navigation
	CommandSet   CommandKind = "set"   // Variable operation
	CommandReset CommandKind = "reset" // Restart from the entry screen
	CommandVars  CommandKind = "vars"  // Print variables
	CommandFrame CommandKind = "frame" // Print the current frame
	CommandState CommandKind = "state" // Print the snapshot
	CommandHelp  CommandKind = "help"  // Print the command list
	CommandQuit  CommandKind = "quit"  // End the session
)

// Command is one parsed input line.
type Command struct {
	Kind     CommandKind               `json:"command"`
	Event    domain.Event              `json:"event,omitzero"`
	Wait     time.Duration             `json:"wait,omitempty"`
	Target   string                    `json:"target,omitempty"`
	Variable *domain.SetVariableAction `json:"-"`
}

// NoticeKind tags a host callback.
type NoticeKind string

const (
	NoticeNavigate   NoticeKind = "navigate"
	NoticeVariable   NoticeKind = "variable"
	NoticeState      NoticeKind = "state"
	NoticeURL        NoticeKind = "url"
	NoticeGesture    NoticeKind = "gesture"
	NoticeTransition NoticeKind = "transition"
	NoticeRejected   NoticeKind = "rejected"
	NoticeReload     NoticeKind = "reload"
)

// Notice is a host callback raised while a command or timer ran.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Data any        `json:"data"`
}

// Response is the result of one command. Only the fields the command
// produces are set.
type Response struct {
	Screen    string                  `json:"screen"`
	Phase     domain.Phase            `json:"phase"`
	Outcome   *domain.Outcome         `json:"outcome,omitempty"`
	Accepted  *bool                   `json:"accepted,omitempty"`
	Variables map[string]domain.Value `json:"variables,omitempty"`
	Frame     *domain.Frame           `json:"frame,omitempty"`
	Snapshot  *domain.Snapshot        `json:"snapshot,omitempty"`
}
