package mqtt

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/ports"
)

// Topic kinds, the last topic level.
const (
	TopicNavigate = "navigate"
	TopicVariable = "variable"
	TopicState    = "state"
	TopicURL      = "url"
	TopicGesture  = "gesture"
)

// Topic builds {prefix}/{source}/{kind}. Wildcards and separators in source
// are replaced so one engine always maps to one topic level.
func Topic(prefix, source, kind string) string {
	source = strings.NewReplacer("/", "_", "+", "_", "#", "_").Replace(source)
	if source == "" {
		source = "default"
	}
	return strings.Trim(prefix, "/") + "/" + source + "/" + kind
}

// Hooks publishes the host callbacks of one engine as JSON.
// Publish failures are logged and never reach the engine.
func Hooks(pub ports.Publisher, prefix, source string, logger *slog.Logger) domain.Hooks {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	send := func(ctx context.Context, kind string, event any) {
		payload, err := json.Marshal(event)
		if err != nil {
			logger.Warn("failed to encode hook event", "kind", kind, "err", err)
			return
		}
		topic := Topic(prefix, source, kind)
		if err := pub.Publish(ctx, topic, payload); err != nil {
			logger.Warn("failed to publish hook event", "topic", topic, "err", err)
		}
	}
	return domain.Hooks{
		OnNavigate: func(ctx context.Context, e *domain.NavigateEvent) {
			send(ctx, TopicNavigate, e)
		},
		OnVariableChange: func(ctx context.Context, e *domain.VariableEvent) {
			send(ctx, TopicVariable, e)
		},
		OnStateChange: func(ctx context.Context, e *domain.StateChangeEvent) {
			send(ctx, TopicState, e)
		},
		OnOpenURL: func(ctx context.Context, e *domain.OpenURLEvent) error {
			send(ctx, TopicURL, e)
			return nil
		},
		OnGesture: func(ctx context.Context, e *domain.GestureEvent) {
			send(ctx, TopicGesture, e)
		},
	}
}

// SessionHooks labels every engine with its session id, falling back to
// fallback for engines without one. Use with keyframe.WithSessionHooks.
func SessionHooks(pub ports.Publisher, prefix, fallback string, logger *slog.Logger) func(sessionID string) domain.Hooks {
	return func(sessionID string) domain.Hooks {
		source := sessionID
		if source == "" {
			source = fallback
		}
		return Hooks(pub, prefix, source, logger)
	}
}
