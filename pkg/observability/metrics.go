package observability

import (
	"context"
	"fmt"

	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "keyframe"

// Metrics holds the Prometheus collectors fed by engine hooks.
type Metrics struct {
	Navigations        *prometheus.CounterVec
	TransitionsStarted *prometheus.CounterVec
	TransitionsEnded   *prometheus.CounterVec
	Rejections         *prometheus.CounterVec
	TransitionDuration *prometheus.HistogramVec
	VariableChanges    *prometheus.CounterVec
	StateChanges       prometheus.Counter
	Gestures           *prometheus.CounterVec
	OpenURLs           prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Navigations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Screen swaps, labelled by destination screen.",
		}, []string{"screen"}),
		TransitionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_started_total",
			Help:      "Transitions that began, by kind (edge or link).",
		}, []string{"kind"}),
		TransitionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_ended_total",
			Help:      "Transitions that completed, by kind.",
		}, []string{"kind"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_rejected_total",
			Help:      "Navigation requests dropped because a transition was running.",
		}, []string{"kind"}),
		TransitionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transition_duration_seconds",
			Help:      "Configured animation duration of started transitions.",
			Buckets:   []float64{0, 0.1, 0.2, 0.3, 0.5, 0.8, 1.2, 2, 5},
		}, []string{"kind"}),
		VariableChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "variable_changes_total",
			Help:      "Variable mutations, by variable id.",
		}, []string{"variable"}),
		StateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_changes_total",
			Help:      "goToState actions that switched screens.",
		}),
		Gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gestures_total",
			Help:      "Gesture events received, by gesture type.",
		}, []string{"gesture"}),
		OpenURLs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "open_url_total",
			Help:      "openUrl actions handed to the host.",
		}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Navigations,
		m.TransitionsStarted,
		m.TransitionsEnded,
		m.Rejections,
		m.TransitionDuration,
		m.VariableChanges,
		m.StateChanges,
		m.Gestures,
		m.OpenURLs,
	}
}

// Hooks returns callbacks that record every engine event.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnNavigate: func(_ context.Context, e *domain.NavigateEvent) {
			m.Navigations.WithLabelValues(e.To).Inc()
		},
		OnVariableChange: func(_ context.Context, e *domain.VariableEvent) {
			m.VariableChanges.WithLabelValues(e.VariableID).Inc()
		},
		OnStateChange: func(context.Context, *domain.StateChangeEvent) {
			m.StateChanges.Inc()
		},
		OnOpenURL: func(context.Context, *domain.OpenURLEvent) error {
			m.OpenURLs.Inc()
			return nil
		},
		OnGesture: func(_ context.Context, e *domain.GestureEvent) {
			m.Gestures.WithLabelValues(string(e.Gesture)).Inc()
		},
		OnTransitionStart: func(_ context.Context, e *domain.TransitionEvent) {
			m.TransitionsStarted.WithLabelValues(string(e.Kind)).Inc()
			m.TransitionDuration.WithLabelValues(string(e.Kind)).Observe(e.Duration.Seconds())
		},
		OnTransitionEnd: func(_ context.Context, e *domain.TransitionEvent) {
			m.TransitionsEnded.WithLabelValues(string(e.Kind)).Inc()
		},
		OnRejected: func(_ context.Context, e *domain.TransitionEvent) {
			m.Rejections.WithLabelValues(string(e.Kind)).Inc()
		},
	}
}

// Wrap records into m before calling next.
func (m *Metrics) Wrap(next domain.Hooks) domain.Hooks {
	return m.Hooks().Chain(next)
}
