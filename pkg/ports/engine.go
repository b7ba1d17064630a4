package ports

import (
	"context"

	"github.com/aretw0/keyframe/pkg/domain"
)

// Engine is the runtime surface that hosts drive. keyframe.Engine implements it.
type Engine interface {
	Start(ctx context.Context) error
	Dispatch(ctx context.Context, ev domain.Event) domain.Outcome
	Navigate(ctx context.Context, target string, spec *domain.TransitionSpec) bool
	Back(ctx context.Context, spec *domain.TransitionSpec) bool
	Reset(ctx context.Context)
	SetVariable(ctx context.Context, action domain.SetVariableAction) domain.Outcome
	Frame() domain.Frame
	Snapshot() domain.Snapshot
	Restore(ctx context.Context, snap domain.Snapshot) error
}

// EngineFactory builds a fresh, unstarted engine for a session on the given scheduler.
type EngineFactory func(sessionID string, sched Scheduler) (Engine, error)

// Publisher sends host callbacks out of the process (e.g. to an MQTT broker).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}
