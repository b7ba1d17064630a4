package domain

import (
	"errors"
	"fmt"
)

// ErrScreenNotFound is returned when a screen ID does not exist in the prototype.
var ErrScreenNotFound = errors.New("screen not found")

// ErrVariableNotFound is returned when a variable ID was never declared.
var ErrVariableNotFound = errors.New("variable not found")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrEmptyPrototype is returned when an engine is built from a prototype without screens.
var ErrEmptyPrototype = errors.New("prototype has no screens")

// ErrNotStarted is returned by operations that need a started engine.
var ErrNotStarted = errors.New("engine not started")

// HostError reports a failure of the host environment (URL open, clipboard...).
// It never stops the engine.
type HostError struct {
	Action ActionType
	Err    error
}

func (e *HostError) Error() string {
	return fmt.Sprintf("host failed to perform %s: %v", e.Action, e.Err)
}

func (e *HostError) Unwrap() error {
	return e.Err
}
