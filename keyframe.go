package keyframe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/keyframe/internal/runtime"
	"github.com/aretw0/keyframe/pkg/adapters/clock"
	"github.com/aretw0/keyframe/pkg/adapters/file"
	loamAdapter "github.com/aretw0/keyframe/pkg/adapters/loam"
	"github.com/aretw0/keyframe/pkg/document"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/observability"
	"github.com/aretw0/keyframe/pkg/ports"
	"github.com/aretw0/loam"
)

// Epoch is where the default manual clock starts.
var Epoch = time.Unix(0, 0).UTC()

// ErrNoManualClock is returned by Advance when the engine runs on a host scheduler.
var ErrNoManualClock = errors.New("engine does not own a manual clock")

// Engine is the high-level entry point for the Keyframe library.
// It wraps the internal runtime and provides a simplified API for consumers.
// Like the runtime, it is not safe for concurrent use: drive it from one
// goroutine, the one the scheduler delivers callbacks on.
type Engine struct {
	runtime   *runtime.Engine
	proto     *domain.Prototype
	sched     ports.Scheduler
	manual    *clock.Manual
	hooks     domain.Hooks
	perSess   func(sessionID string) domain.Hooks
	metrics   *observability.Metrics
	logger    *slog.Logger
	entry     string
	sessionID string
	Name      string
}

var _ ports.Engine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithHooks registers host callbacks.
func WithHooks(hooks domain.Hooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithSessionHooks adds callbacks built from the engine's session id, for
// sinks that label events per session.
func WithSessionHooks(fn func(sessionID string) domain.Hooks) Option {
	return func(e *Engine) {
		e.perSess = fn
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithScheduler runs the engine on a host clock. Without it the engine owns a
// manual clock starting at Epoch, moved with Advance.
func WithScheduler(s ports.Scheduler) Option {
	return func(e *Engine) {
		e.sched = s
	}
}

// WithEntryScreen overrides the prototype's initial screen.
func WithEntryScreen(screenID string) Option {
	return func(e *Engine) {
		e.entry = screenID
	}
}

// WithMetrics records every hook into m before the host callbacks run.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithSessionID tags snapshots with id.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		e.sessionID = id
	}
}

// New builds an unstarted engine for proto.
func New(proto *domain.Prototype, opts ...Option) (*Engine, error) {
	if proto == nil {
		return nil, domain.ErrEmptyPrototype
	}
	eng := &Engine{proto: proto, Name: proto.Name}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("prototype", eng.Name)
	}
	if eng.sched == nil {
		eng.manual = clock.NewManual(Epoch)
		eng.sched = eng.manual
	}

	hooks := eng.hooks
	if eng.perSess != nil {
		hooks = hooks.Chain(eng.perSess(eng.sessionID))
	}
	if eng.metrics != nil {
		hooks = eng.metrics.Wrap(hooks)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithHooks(hooks),
		runtime.WithLogger(eng.logger),
	}
	if eng.entry != "" {
		runtimeOpts = append(runtimeOpts, runtime.WithEntryScreen(eng.entry))
	}
	if eng.sessionID != "" {
		runtimeOpts = append(runtimeOpts, runtime.WithSessionID(eng.sessionID))
	}

	rt, err := runtime.NewEngine(proto, eng.sched, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	eng.runtime = rt
	return eng, nil
}

// Factory returns a ports.EngineFactory building engines for proto with opts.
// The factory's scheduler and session id take precedence over WithScheduler
// and WithSessionID.
func Factory(proto *domain.Prototype, opts ...Option) ports.EngineFactory {
	return func(sessionID string, sched ports.Scheduler) (ports.Engine, error) {
		all := append(append([]Option(nil), opts...), WithScheduler(sched), WithSessionID(sessionID))
		return New(proto, all...)
	}
}

// Start enters the entry screen and arms its timers.
func (e *Engine) Start(ctx context.Context) error {
	return e.runtime.Start(ctx)
}

// Dispatch delivers one input event.
func (e *Engine) Dispatch(ctx context.Context, ev domain.Event) domain.Outcome {
	return e.runtime.Dispatch(ctx, ev)
}

// Navigate requests a navigation to target. A nil spec is an instant swap.
func (e *Engine) Navigate(ctx context.Context, target string, spec *domain.TransitionSpec) bool {
	return e.runtime.Navigate(ctx, target, spec)
}

// Back returns to the previous screen.
func (e *Engine) Back(ctx context.Context, spec *domain.TransitionSpec) bool {
	return e.runtime.Back(ctx, spec)
}

// GoToState switches to the first screen tagged with stateID.
func (e *Engine) GoToState(ctx context.Context, stateID string, spec *domain.TransitionSpec) bool {
	return e.runtime.GoToState(ctx, stateID, spec)
}

// SetVariable applies one variable operation.
func (e *Engine) SetVariable(ctx context.Context, action domain.SetVariableAction) domain.Outcome {
	return e.runtime.SetVariable(ctx, action)
}

// Reset returns to the entry screen with default variables.
func (e *Engine) Reset(ctx context.Context) {
	e.runtime.Reset(ctx)
}

// Advance moves the engine's own manual clock forward by d.
func (e *Engine) Advance(d time.Duration) error {
	if e.manual == nil {
		return ErrNoManualClock
	}
	e.manual.Advance(d)
	return nil
}

// Frame samples what to render at the scheduler's current time.
func (e *Engine) Frame() domain.Frame {
	return e.runtime.Frame()
}

// Snapshot captures the runtime state.
func (e *Engine) Snapshot() domain.Snapshot {
	return e.runtime.Snapshot()
}

// Restore replaces the runtime state with snap. No hooks fire.
func (e *Engine) Restore(ctx context.Context, snap domain.Snapshot) error {
	return e.runtime.Restore(ctx, snap)
}

// CurrentScreen returns the id of the screen being shown.
func (e *Engine) CurrentScreen() string { return e.runtime.CurrentScreen() }

// Phase returns the orchestrator phase.
func (e *Engine) Phase() domain.Phase { return e.runtime.Phase() }

// Busy reports whether a transition is running.
func (e *Engine) Busy() bool { return e.runtime.Busy() }

// History returns the back stack, oldest first.
func (e *Engine) History() []string { return e.runtime.History() }

// Variables returns a copy of the current variable values.
func (e *Engine) Variables() map[string]domain.Value { return e.runtime.Variables() }

// Prototype returns the prototype the engine plays.
func (e *Engine) Prototype() *domain.Prototype { return e.proto }

// Scheduler returns the clock the engine runs on.
func (e *Engine) Scheduler() ports.Scheduler { return e.sched }

// OpenLoader picks the loader for path. A directory is opened as a read-only
// Loam repository; a single .json/.yaml/.yml file is served by the file loader.
func OpenLoader(path string) (ports.DocumentLoader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return file.NewLoader(absPath)
	}

	// Strict mode keeps numbers as json.Number across the JSON, YAML and
	// Markdown adapters. The engine never writes to the library.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return loamAdapter.New(loam.NewTypedRepository[loamAdapter.PrototypeMetadata](repo)), nil
}

// Load parses document id from loader. An empty id selects the only document
// the loader serves.
func Load(loader ports.DocumentLoader, id string) (*domain.Prototype, error) {
	if id == "" {
		ids, err := loader.ListDocuments()
		if err != nil {
			return nil, err
		}
		switch len(ids) {
		case 0:
			return nil, fmt.Errorf("%w: no documents found", domain.ErrEmptyPrototype)
		case 1:
			id = ids[0]
		default:
			return nil, fmt.Errorf("several documents found (%v), pick one", ids)
		}
	}
	data, err := loader.GetDocument(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load document %q: %w", id, err)
	}
	proto, err := document.Parse(data, document.FormatAuto)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document %q: %w", id, err)
	}
	if proto.Name == "" {
		proto.Name = id
	}
	return proto, nil
}

// Open loads document id from path and builds an engine for it.
func Open(path, id string, opts ...Option) (*Engine, error) {
	loader, err := OpenLoader(path)
	if err != nil {
		return nil, err
	}
	proto, err := Load(loader, id)
	if err != nil {
		return nil, err
	}
	return New(proto, opts...)
}
