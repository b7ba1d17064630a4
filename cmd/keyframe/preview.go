package main

import (
	"github.com/aretw0/keyframe"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/observability"
	"github.com/aretw0/keyframe/pkg/session"
)

// preview bundles a previewer with the resources it holds open.
type preview struct {
	previewer *session.Previewer
	stop      func()
}

// newPreview builds the session previewer shared by serve and mcp on the
// configured store, with the MQTT publisher wired in when enabled.
func newPreview(proto *domain.Prototype, metrics *observability.Metrics) (*preview, error) {
	be, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	hooks, stopPublisher, err := sessionHooks(cfg.MQTT, "preview")
	if err != nil {
		_ = be.close()
		return nil, err
	}

	engineOpts := []keyframe.Option{keyframe.WithLogger(logger)}
	if metrics != nil {
		engineOpts = append(engineOpts, keyframe.WithMetrics(metrics))
	}
	if hooks != nil {
		engineOpts = append(engineOpts, keyframe.WithSessionHooks(hooks))
	}

	managerOpts := []session.Option{session.WithLogger(logger)}
	if be.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(be.locker))
	}
	previewer := session.NewPreviewer(
		session.NewManager(be.store, managerOpts...),
		keyframe.Factory(proto, engineOpts...),
		session.WithPreviewLogger(logger),
	)

	return &preview{
		previewer: previewer,
		stop: func() {
			stopPublisher()
			if err := be.close(); err != nil {
				logger.Warn("Failed to close session store", "err", err)
			}
		},
	}, nil
}
