package runner

import (
	"log/slog"

	"github.com/aretw0/keyframe"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the SnapshotStore for persistence.
func WithStore(store ports.SnapshotStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithSessionID sets the session ID for persistence context.
// This is required if WithStore is used.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithVirtualClock runs the prototype on a manual clock that only moves on
// wait commands. Scripts replay identically.
func WithVirtualClock(virtual bool) Option {
	return func(r *Runner) {
		r.Virtual = virtual
	}
}

// WithHooks adds host callbacks that run after the handler notices.
func WithHooks(hooks domain.Hooks) Option {
	return func(r *Runner) {
		r.Hooks = hooks
	}
}

// WithEngineOptions passes options through to keyframe.New. Hooks,
// scheduler and session id are owned by the Runner.
func WithEngineOptions(opts ...keyframe.Option) Option {
	return func(r *Runner) {
		r.engineOpts = append(r.engineOpts, opts...)
	}
}

// WithReload hot-swaps the prototype whenever one is received. The session
// restarts on the new prototype.
func WithReload(ch <-chan *domain.Prototype) Option {
	return func(r *Runner) {
		r.reload = ch
	}
}
