package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/keyframe"
	"github.com/aretw0/keyframe/pkg/adapters/clock"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/ports"
)

// Runner plays one prototype interactively. Input, timer callbacks and
// reloads are all handled on the goroutine that called Run, so the engine
// never sees concurrent calls.
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on Stdin/Stdout is used.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store is the persistence adapter for durable play sessions.
	// If nil, sessions are ephemeral.
	Store     ports.SnapshotStore
	SessionID string

	// Virtual selects the manual clock: time only passes on wait commands.
	Virtual bool

	// Hooks run after the handler has been notified.
	Hooks domain.Hooks

	engineOpts []keyframe.Option
	reload     <-chan *domain.Prototype
}

// NewRunner creates a Runner configured by opts.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

type inputResult struct {
	cmd Command
	err error
}

// session is the engine currently played and the scope of its timers.
type session struct {
	engine *keyframe.Engine
	live   *bool
}

// Run plays proto until the input ends, a quit command arrives or ctx is done.
func (r *Runner) Run(ctx context.Context, proto *domain.Prototype) error {
	handler := r.resolveHandler()

	done := make(chan struct{})
	defer close(done)

	snap, err := r.loadSnapshot(ctx)
	if err != nil {
		return err
	}

	var (
		sched  ports.Scheduler
		manual *clock.Manual
		calls  <-chan func()
	)
	if r.Virtual {
		start := keyframe.Epoch
		if snap != nil {
			start = snap.Now
		}
		manual = clock.NewManual(start)
		sched = manual
	} else {
		loop := newLoopScheduler(done)
		sched = loop
		calls = loop.calls
	}

	cur, err := r.open(ctx, proto, sched, handler)
	if err != nil {
		return err
	}
	if snap != nil {
		if err := cur.engine.Restore(ctx, *snap); err != nil {
			return fmt.Errorf("failed to resume session %s: %w", r.SessionID, err)
		}
		r.Logger.Debug("session resumed", "session_id", r.SessionID, "screen", snap.CurrentScreen)
		_ = handler.SystemOutput(ctx, fmt.Sprintf("Resumed session %s on %s", r.SessionID, snap.CurrentScreen))
	} else if err := cur.engine.Start(ctx); err != nil {
		return err
	}
	r.save(ctx, cur.engine)

	inputs := make(chan inputResult)
	go r.pump(ctx, handler, inputs, done)

	var (
		in          = (<-chan inputResult)(inputs)
		waiting     <-chan time.Time
		pendingWait Command
	)

	for {
		select {
		case <-ctx.Done():
			r.save(context.WithoutCancel(ctx), cur.engine)
			return ctx.Err()

		case fn := <-calls:
			fn()
			r.save(ctx, cur.engine)

		case <-waiting:
			waiting, in = nil, inputs
			r.respond(ctx, handler, cur.engine, pendingWait, Response{})

		case p := <-r.reload:
			if p == nil {
				continue
			}
			next, err := r.swap(ctx, cur, p, sched, handler)
			if err != nil {
				_ = handler.SystemOutput(ctx, fmt.Sprintf("Reload failed: %v", err))
				continue
			}
			cur = next
			r.save(ctx, cur.engine)

		case res, ok := <-in:
			if !ok {
				return nil
			}
			if res.err != nil {
				if errors.Is(res.err, ErrInvalidCommand) {
					_ = handler.SystemOutput(ctx, res.err.Error())
					continue
				}
				if errors.Is(res.err, io.EOF) {
					return nil
				}
				return fmt.Errorf("input error: %w", res.err)
			}

			cmd := res.cmd
			switch cmd.Kind {
			case CommandQuit:
				return nil
			case CommandHelp:
				_ = handler.SystemOutput(ctx, Usage)
				continue
			case CommandWait:
				if manual != nil {
					manual.Advance(cmd.Wait)
					r.save(ctx, cur.engine)
					r.respond(ctx, handler, cur.engine, cmd, Response{})
					continue
				}
				// Real time: stop reading until the wait is over; timers keep firing.
				pendingWait = cmd
				waiting, in = time.After(cmd.Wait), nil
				continue
			}

			resp := r.execute(ctx, cur.engine, cmd)
			r.save(ctx, cur.engine)
			r.respond(ctx, handler, cur.engine, cmd, resp)
		}
	}
}

// execute applies one non-timing command.
func (r *Runner) execute(ctx context.Context, eng *keyframe.Engine, cmd Command) Response {
	var resp Response
	switch cmd.Kind {
	case CommandEvent:
		out := eng.Dispatch(ctx, cmd.Event)
		resp.Outcome = &out
	case CommandBack:
		ok := eng.Back(ctx, nil)
		resp.Accepted = &ok
	case CommandGoto:
		ok := eng.Navigate(ctx, cmd.Target, nil)
		resp.Accepted = &ok
	case CommandSet:
		if cmd.Variable != nil {
			out := eng.SetVariable(ctx, *cmd.Variable)
			resp.Outcome = &out
		}
	case CommandReset:
		eng.Reset(ctx)
	case CommandVars:
		resp.Variables = eng.Variables()
	case CommandFrame:
		f := eng.Frame()
		resp.Frame = &f
	case CommandState:
		s := eng.Snapshot()
		resp.Snapshot = &s
	}
	return resp
}

func (r *Runner) respond(ctx context.Context, h IOHandler, eng *keyframe.Engine, cmd Command, resp Response) {
	resp.Screen = eng.CurrentScreen()
	resp.Phase = eng.Phase()
	if err := h.Respond(ctx, cmd, resp); err != nil {
		r.Logger.Warn("failed to write response", "err", err)
	}
}

// open builds an engine whose timers only fire while the session is live.
func (r *Runner) open(ctx context.Context, proto *domain.Prototype, sched ports.Scheduler, h IOHandler) (*session, error) {
	live := true
	opts := append([]keyframe.Option{keyframe.WithLogger(r.Logger)}, r.engineOpts...)
	opts = append(opts,
		keyframe.WithHooks(noticeHooks(h, r.Logger).Chain(r.Hooks)),
		keyframe.WithScheduler(scopedScheduler{Scheduler: sched, live: &live}),
		keyframe.WithSessionID(r.SessionID),
	)
	eng, err := keyframe.New(proto, opts...)
	if err != nil {
		return nil, err
	}
	return &session{engine: eng, live: &live}, nil
}

// swap moves the session onto a reloaded prototype. The runtime state carries
// over when the current screen still exists; otherwise the session restarts.
func (r *Runner) swap(ctx context.Context, cur *session, proto *domain.Prototype, sched ports.Scheduler, h IOHandler) (*session, error) {
	next, err := r.open(ctx, proto, sched, h)
	if err != nil {
		return nil, err
	}
	snap := cur.engine.Snapshot()
	*cur.live = false

	if err := next.engine.Restore(ctx, snap); err != nil {
		r.Logger.Debug("reload could not keep state, restarting", "err", err)
		if err := next.engine.Start(ctx); err != nil {
			*cur.live = true
			return nil, err
		}
	}
	if err := h.Notify(ctx, Notice{Kind: NoticeReload, Data: map[string]string{"prototype": proto.Name, "screen": next.engine.CurrentScreen()}}); err != nil {
		r.Logger.Warn("failed to write notice", "err", err)
	}
	return next, nil
}

func (r *Runner) pump(ctx context.Context, h IOHandler, out chan<- inputResult, done <-chan struct{}) {
	defer close(out)
	for {
		cmd, err := h.Input(ctx)
		select {
		case out <- inputResult{cmd: cmd, err: err}:
		case <-done:
			return
		}
		if err != nil && !errors.Is(err, ErrInvalidCommand) {
			return
		}
	}
}

func (r *Runner) loadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	if r.Store == nil || r.SessionID == "" {
		return nil, nil
	}
	snap, err := r.Store.Load(ctx, r.SessionID)
	if err == nil {
		return snap, nil
	}
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to load session %s: %w", r.SessionID, err)
}

func (r *Runner) save(ctx context.Context, eng *keyframe.Engine) {
	if r.Store == nil || r.SessionID == "" {
		return
	}
	snap := eng.Snapshot()
	if err := r.Store.Save(ctx, r.SessionID, &snap); err != nil {
		r.Logger.Warn("failed to save session", "session_id", r.SessionID, "err", err)
		return
	}
	r.Logger.Debug("snapshot saved", "session_id", r.SessionID, "screen", snap.CurrentScreen)
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r.Handler
}

// scopedScheduler drops callbacks of an engine that has been replaced.
type scopedScheduler struct {
	ports.Scheduler
	live *bool
}

func (s scopedScheduler) AfterFunc(d time.Duration, fn func()) ports.Timer {
	return s.Scheduler.AfterFunc(d, func() {
		if *s.live {
			fn()
		}
	})
}

// noticeHooks forwards every engine callback to the handler.
func noticeHooks(h IOHandler, logger *slog.Logger) domain.Hooks {
	notify := func(ctx context.Context, kind NoticeKind, data any) {
		if err := h.Notify(ctx, Notice{Kind: kind, Data: data}); err != nil {
			logger.Warn("failed to write notice", "kind", kind, "err", err)
		}
	}
	return domain.Hooks{
		OnNavigate: func(ctx context.Context, e *domain.NavigateEvent) {
			notify(ctx, NoticeNavigate, e)
		},
		OnVariableChange: func(ctx context.Context, e *domain.VariableEvent) {
			notify(ctx, NoticeVariable, e)
		},
		OnStateChange: func(ctx context.Context, e *domain.StateChangeEvent) {
			notify(ctx, NoticeState, e)
		},
		OnOpenURL: func(ctx context.Context, e *domain.OpenURLEvent) error {
			notify(ctx, NoticeURL, e)
			return nil
		},
		OnGesture: func(ctx context.Context, e *domain.GestureEvent) {
			notify(ctx, NoticeGesture, e)
		},
		OnTransitionStart: func(ctx context.Context, e *domain.TransitionEvent) {
			notify(ctx, NoticeTransition, e)
		},
		OnRejected: func(ctx context.Context, e *domain.TransitionEvent) {
			notify(ctx, NoticeRejected, e)
		},
	}
}
