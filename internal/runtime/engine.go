package runtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/keyframe/pkg/curve"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/ports"
	"github.com/aretw0/keyframe/pkg/trigger"
	"github.com/aretw0/keyframe/pkg/variables"
)

// Engine is the transition orchestrator of one prototype preview.
//
// It is single-threaded: every method and every scheduler callback must run
// on the same goroutine. A request that arrives while a transition is in
// flight is rejected in the same call, never queued.
type Engine struct {
	proto     *domain.Prototype
	sched     ports.Scheduler
	logger    *slog.Logger
	hooks     domain.Hooks
	entry     string
	sessionID string

	// ctx is the detached context handed to hooks fired from scheduler callbacks.
	ctx          context.Context
	interactions map[string][]int

	started   bool
	current   string
	history   []string
	phase     domain.Phase
	vars      *variables.Store
	window    *trigger.Window
	enteredAt time.Time

	inFlight *domain.InFlight
	curve    curve.Curve

	screenTimers []ports.Timer
	flightTimers []ports.Timer

	// epoch is bumped by reset and restore, timerGen whenever screen timers are
	// disarmed. Callbacks that captured an older value are dropped.
	epoch    uint64
	timerGen uint64
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHooks registers host callbacks.
func WithHooks(hooks domain.Hooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithEntryScreen overrides the screen the engine starts and resets to.
func WithEntryScreen(screenID string) EngineOption {
	return func(e *Engine) {
		e.entry = screenID
	}
}

// WithSessionID tags snapshots with a session ID.
func WithSessionID(id string) EngineOption {
	return func(e *Engine) {
		e.sessionID = id
	}
}

// NewEngine creates an engine for proto driven by sched.
// The prototype is treated as immutable from here on.
func NewEngine(proto *domain.Prototype, sched ports.Scheduler, opts ...EngineOption) (*Engine, error) {
	if proto == nil || len(proto.Screens) == 0 {
		return nil, domain.ErrEmptyPrototype
	}
	if sched == nil {
		return nil, errors.New("runtime: scheduler is required")
	}

	e := &Engine{
		proto:        proto,
		sched:        sched,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		ctx:          context.Background(),
		interactions: make(map[string][]int),
		phase:        domain.PhaseIdle,
		vars:         variables.New(proto.Variables),
		window:       trigger.NewWindow(),
	}
	for _, opt := range opts {
		opt(e)
	}
	for i, in := range proto.Interactions {
		e.interactions[in.ElementID] = append(e.interactions[in.ElementID], i)
	}
	return e, nil
}

// Start enters the entry screen and arms its timers.
func (e *Engine) Start(ctx context.Context) error {
	entry, ok := e.entryScreen()
	if !ok {
		return domain.ErrEmptyPrototype
	}
	e.ctx = context.WithoutCancel(ctx)
	e.epoch++
	e.stopFlightTimers()
	e.disarmTimers()

	e.started = true
	e.current = entry
	e.history = nil
	e.phase = domain.PhaseIdle
	e.inFlight = nil
	e.curve = nil
	e.window.Clear()
	e.vars.Reset()

	e.logger.Debug("engine started", "screen", entry)
	e.emitNavigate(ctx, "", entry, false)
	e.enterIdle()
	return nil
}

func (e *Engine) entryScreen() (string, bool) {
	if e.entry != "" {
		if _, ok := e.proto.Screen(e.entry); ok {
			return e.entry, true
		}
		e.logger.Warn("entry screen not found, using prototype default", "screen", e.entry)
	}
	return e.proto.EntryScreen()
}

// CurrentScreen returns the ID of the screen being shown (after the swap, during a transition).
func (e *Engine) CurrentScreen() string { return e.current }

// Phase returns the orchestrator phase.
func (e *Engine) Phase() domain.Phase { return e.phase }

// Busy reports whether a transition is in flight.
func (e *Engine) Busy() bool { return e.phase != domain.PhaseIdle }

// Started reports whether Start or Restore has run.
func (e *Engine) Started() bool { return e.started }

// History returns a copy of the navigation history, oldest first.
func (e *Engine) History() []string {
	return append([]string(nil), e.history...)
}

// Variables returns a copy of the variable table.
func (e *Engine) Variables() map[string]domain.Value {
	return e.vars.Values()
}

// Variable returns the current value of one variable.
func (e *Engine) Variable(id string) (domain.Value, error) {
	return e.vars.Get(id)
}

// InFlight returns a copy of the in-flight transition record, or nil when idle.
func (e *Engine) InFlight() *domain.InFlight {
	if e.inFlight == nil {
		return nil
	}
	f := *e.inFlight
	return &f
}

// Prototype returns the configuration the engine was built from.
func (e *Engine) Prototype() *domain.Prototype { return e.proto }

func (e *Engine) screenExists(id string) bool {
	_, ok := e.proto.Screen(id)
	return ok
}

func (e *Engine) now() time.Time { return e.sched.Now() }

// after schedules fn at an absolute time on the scheduler clock, guarded by the current epoch.
func (e *Engine) after(at time.Time, fn func()) ports.Timer {
	epoch := e.epoch
	d := at.Sub(e.now())
	if d < 0 {
		d = 0
	}
	return e.sched.AfterFunc(d, func() {
		if e.epoch != epoch {
			return
		}
		fn()
	})
}
