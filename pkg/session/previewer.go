package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/keyframe/internal/logging"
	"github.com/aretw0/keyframe/pkg/adapters/clock"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/ports"
	"github.com/google/uuid"
)

// Epoch is the virtual time at which new preview sessions start.
var Epoch = time.Unix(0, 0).UTC()

// ErrNegativeAdvance is returned when a session is asked to move back in time.
var ErrNegativeAdvance = errors.New("cannot advance by a negative duration")

// Result is the state of a session after one operation.
type Result struct {
	SessionID string               `json:"sessionId"`
	Snapshot  domain.Snapshot      `json:"snapshot"`
	Frame     domain.Frame         `json:"frame"`
	Outcome   *domain.Outcome      `json:"outcome,omitempty"`
	Accepted  *bool                `json:"accepted,omitempty"` // Set by Navigate and Back
	Diff      *domain.SnapshotDiff `json:"diff,omitempty"`
}

// Previewer hosts stateless preview sessions: every call restores an engine
// from the stored snapshot on a virtual clock, applies one operation and
// saves the resulting snapshot. Time only moves through Advance.
type Previewer struct {
	manager *Manager
	factory ports.EngineFactory
	logger  *slog.Logger
	newID   func() string
}

// PreviewerOption configures a Previewer.
type PreviewerOption func(*Previewer)

// WithPreviewLogger sets the Previewer logger.
func WithPreviewLogger(logger *slog.Logger) PreviewerOption {
	return func(p *Previewer) {
		p.logger = logger
	}
}

// WithIDGenerator replaces the session id generator used when Start gets an empty id.
func WithIDGenerator(fn func() string) PreviewerOption {
	return func(p *Previewer) {
		p.newID = fn
	}
}

// NewPreviewer creates a Previewer persisting through manager and building engines with factory.
func NewPreviewer(manager *Manager, factory ports.EngineFactory, opts ...PreviewerOption) *Previewer {
	p := &Previewer{
		manager: manager,
		factory: factory,
		logger:  logging.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Manager returns the underlying session manager.
func (p *Previewer) Manager() *Manager {
	return p.manager
}

// Start creates the session, or returns it untouched when it already exists.
// An empty id is replaced by a generated one.
func (p *Previewer) Start(ctx context.Context, sessionID string) (*Result, error) {
	if sessionID == "" {
		sessionID = p.newID()
	}

	var res *Result
	err := p.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		snap, err := p.manager.Store().Load(ctx, sessionID)
		if err == nil {
			eng, _, err := p.restore(ctx, sessionID, snap)
			if err != nil {
				return err
			}
			res = &Result{SessionID: sessionID, Snapshot: eng.Snapshot(), Frame: eng.Frame()}
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		eng, err := p.factory(sessionID, clock.NewManual(Epoch))
		if err != nil {
			return fmt.Errorf("failed to build engine: %w", err)
		}
		if err := eng.Start(ctx); err != nil {
			return err
		}
		next := eng.Snapshot()
		if err := p.manager.Store().Save(ctx, sessionID, &next); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		p.logger.Debug("preview session started", "session_id", sessionID, "screen", next.CurrentScreen)
		res = &Result{SessionID: sessionID, Snapshot: next, Frame: eng.Frame(), Diff: domain.Diff(nil, &next)}
		return nil
	})
	return res, err
}

// Dispatch delivers one input event.
func (p *Previewer) Dispatch(ctx context.Context, sessionID string, ev domain.Event) (*Result, error) {
	return p.apply(ctx, sessionID, func(ctx context.Context, eng ports.Engine, _ *clock.Manual, res *Result) error {
		out := eng.Dispatch(ctx, ev)
		res.Outcome = &out
		return nil
	})
}

// Advance moves the session clock forward by d, firing due timers and transitions.
func (p *Previewer) Advance(ctx context.Context, sessionID string, d time.Duration) (*Result, error) {
	if d < 0 {
		return nil, ErrNegativeAdvance
	}
	return p.apply(ctx, sessionID, func(_ context.Context, _ ports.Engine, clk *clock.Manual, _ *Result) error {
		clk.Advance(d)
		return nil
	})
}

// Navigate requests a navigation to target with spec.
func (p *Previewer) Navigate(ctx context.Context, sessionID, target string, spec *domain.TransitionSpec) (*Result, error) {
	return p.apply(ctx, sessionID, func(ctx context.Context, eng ports.Engine, _ *clock.Manual, res *Result) error {
		ok := eng.Navigate(ctx, target, spec)
		res.Accepted = &ok
		return nil
	})
}

// Back returns to the previous screen.
func (p *Previewer) Back(ctx context.Context, sessionID string, spec *domain.TransitionSpec) (*Result, error) {
	return p.apply(ctx, sessionID, func(ctx context.Context, eng ports.Engine, _ *clock.Manual, res *Result) error {
		ok := eng.Back(ctx, spec)
		res.Accepted = &ok
		return nil
	})
}

// SetVariable applies one variable operation.
func (p *Previewer) SetVariable(ctx context.Context, sessionID string, action domain.SetVariableAction) (*Result, error) {
	return p.apply(ctx, sessionID, func(ctx context.Context, eng ports.Engine, _ *clock.Manual, res *Result) error {
		out := eng.SetVariable(ctx, action)
		res.Outcome = &out
		return nil
	})
}

// Reset returns the session to its entry screen with default variables.
// The session clock keeps running.
func (p *Previewer) Reset(ctx context.Context, sessionID string) (*Result, error) {
	return p.apply(ctx, sessionID, func(ctx context.Context, eng ports.Engine, _ *clock.Manual, _ *Result) error {
		eng.Reset(ctx)
		return nil
	})
}

// Frame samples the session at its current time without changing it.
func (p *Previewer) Frame(ctx context.Context, sessionID string) (*Result, error) {
	var res *Result
	err := p.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		snap, err := p.manager.Store().Load(ctx, sessionID)
		if err != nil {
			return err
		}
		eng, _, err := p.restore(ctx, sessionID, snap)
		if err != nil {
			return err
		}
		res = &Result{SessionID: sessionID, Snapshot: *snap, Frame: eng.Frame()}
		return nil
	})
	return res, err
}

// Get returns the stored snapshot of a session.
func (p *Previewer) Get(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return p.manager.Load(ctx, sessionID)
}

// Delete removes a session.
func (p *Previewer) Delete(ctx context.Context, sessionID string) error {
	return p.manager.Delete(ctx, sessionID)
}

// List returns the ids of all stored sessions.
func (p *Previewer) List(ctx context.Context) ([]string, error) {
	return p.manager.List(ctx)
}

type operation func(ctx context.Context, eng ports.Engine, clk *clock.Manual, res *Result) error

func (p *Previewer) apply(ctx context.Context, sessionID string, op operation) (*Result, error) {
	var res *Result
	err := p.manager.WithLock(ctx, sessionID, func(ctx context.Context) error {
		snap, err := p.manager.Store().Load(ctx, sessionID)
		if err != nil {
			return err
		}
		eng, clk, err := p.restore(ctx, sessionID, snap)
		if err != nil {
			return err
		}

		r := &Result{SessionID: sessionID}
		if err := op(ctx, eng, clk, r); err != nil {
			return err
		}

		next := eng.Snapshot()
		if err := p.manager.Store().Save(ctx, sessionID, &next); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		r.Snapshot = next
		r.Frame = eng.Frame()
		r.Diff = domain.Diff(snap, &next)
		res = r
		return nil
	})
	return res, err
}

func (p *Previewer) restore(ctx context.Context, sessionID string, snap *domain.Snapshot) (ports.Engine, *clock.Manual, error) {
	clk := clock.NewManual(snap.Now)
	eng, err := p.factory(sessionID, clk)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build engine: %w", err)
	}
	if err := eng.Restore(ctx, *snap); err != nil {
		return nil, nil, fmt.Errorf("failed to restore session %s: %w", sessionID, err)
	}
	return eng, clk, nil
}
