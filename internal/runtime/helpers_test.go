package runtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/keyframe/internal/runtime"
	"github.com/aretw0/keyframe/pkg/adapters/clock"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/stretchr/testify/require"
)

var epoch = time.Unix(0, 0).UTC()

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func box(id string, x float64) domain.Element {
	return domain.Element{
		ID:       id,
		Kind:     "rect",
		Geometry: domain.Geometry{X: x, Y: 10, Width: 50, Height: 50},
		Style:    domain.DefaultStyle(),
	}
}

func screen(id string, elements ...domain.Element) domain.Screen {
	return domain.Screen{ID: id, Name: id, Elements: elements}
}

// recorder captures hook invocations in order.
type recorder struct {
	navigations []string
	variables   []string
	rejected    int
	started     int
	ended       int
	urls        []string
	states      []string
	gestures    []domain.EventType
}

func (r *recorder) hooks() domain.Hooks {
	return domain.Hooks{
		OnNavigate: func(_ context.Context, e *domain.NavigateEvent) {
			r.navigations = append(r.navigations, e.To)
		},
		OnVariableChange: func(_ context.Context, e *domain.VariableEvent) {
			r.variables = append(r.variables, e.VariableID+"="+e.Value.String())
		},
		OnRejected: func(context.Context, *domain.TransitionEvent) {
			r.rejected++
		},
		OnTransitionStart: func(context.Context, *domain.TransitionEvent) {
			r.started++
		},
		OnTransitionEnd: func(context.Context, *domain.TransitionEvent) {
			r.ended++
		},
		OnStateChange: func(_ context.Context, e *domain.StateChangeEvent) {
			r.states = append(r.states, e.StateID)
		},
		OnGesture: func(_ context.Context, e *domain.GestureEvent) {
			r.gestures = append(r.gestures, e.Gesture)
		},
	}
}

func newEngine(t *testing.T, proto *domain.Prototype, opts ...runtime.EngineOption) (*runtime.Engine, *clock.Manual) {
	t.Helper()
	sched := clock.NewManual(epoch)
	eng, err := runtime.NewEngine(proto, sched, opts...)
	require.NoError(t, err)
	require.NoError(t, eng.Start(context.Background()))
	return eng, sched
}

func tap(elementID string) domain.Event {
	return domain.Event{Type: domain.EventTap, ElementID: elementID}
}

func frameElement(t *testing.T, f domain.Frame, id string) domain.ElementFrame {
	t.Helper()
	for _, el := range f.Elements {
		if el.ID == id {
			return el
		}
	}
	t.Fatalf("element %s not in frame %+v", id, f)
	return domain.ElementFrame{}
}
