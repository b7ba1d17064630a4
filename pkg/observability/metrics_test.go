package observability_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/keyframe/internal/runtime"
	"github.com/aretw0/keyframe/pkg/adapters/clock"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordEngineEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	var navigated []string
	hooks := m.Wrap(domain.Hooks{
		OnNavigate: func(_ context.Context, e *domain.NavigateEvent) { navigated = append(navigated, e.To) },
	})

	proto := &domain.Prototype{
		Screens: []domain.Screen{{ID: "A"}, {ID: "B"}},
		Transitions: []domain.Transition{{
			ID: "a-b", From: "A", To: "B",
			Triggers: []domain.Trigger{domain.TapTrigger{}},
			Delay:    100 * time.Millisecond,
			Duration: 300 * time.Millisecond,
		}},
	}
	sched := clock.NewManual(time.Unix(0, 0))
	eng, err := runtime.NewEngine(proto, sched, runtime.WithHooks(hooks))
	require.NoError(t, err)
	require.NoError(t, eng.Start(context.Background()))

	eng.Dispatch(context.Background(), domain.Event{Type: domain.EventTap})
	out := eng.Dispatch(context.Background(), domain.Event{Type: domain.EventTap}) // still delaying on A
	assert.True(t, out.Rejected)
	sched.Advance(time.Second)

	assert.Equal(t, []string{"A", "B"}, navigated, "wrapped hooks still run")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Navigations.WithLabelValues("B")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransitionsStarted.WithLabelValues(string(domain.KindEdge))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransitionsEnded.WithLabelValues(string(domain.KindEdge))))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Gestures.WithLabelValues(string(domain.EventTap))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues(string(domain.KindEdge))))

	expected := `
# HELP keyframe_open_url_total openUrl actions handed to the host.
# TYPE keyframe_open_url_total counter
keyframe_open_url_total 0
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "keyframe_open_url_total"))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_Unregistered(t *testing.T) {
	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)
	m.Hooks().OnStateChange(context.Background(), &domain.StateChangeEvent{StateID: "on"})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StateChanges))
}
