package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aretw0/keyframe"
	"github.com/aretw0/keyframe/internal/config"
	"github.com/aretw0/keyframe/pkg/adapters/bolt"
	"github.com/aretw0/keyframe/pkg/adapters/file"
	"github.com/aretw0/keyframe/pkg/adapters/memory"
	"github.com/aretw0/keyframe/pkg/adapters/mqtt"
	"github.com/aretw0/keyframe/pkg/adapters/redis"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/persistence/middleware"
	"github.com/aretw0/keyframe/pkg/ports"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// libraryPath resolves --dir, falling back to the first positional argument.
func libraryPath(cmd *cobra.Command, args []string) string {
	path, _ := cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		path = args[0]
	}
	return path
}

// loadPrototype opens the library at path and parses the selected document.
func loadPrototype(cmd *cobra.Command, args []string) (*domain.Prototype, ports.DocumentLoader, string, error) {
	path := libraryPath(cmd, args)
	id, _ := cmd.Flags().GetString("doc")

	loader, err := keyframe.OpenLoader(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	if id == "" {
		if ids, err := loader.ListDocuments(); err == nil && len(ids) == 1 {
			id = ids[0]
		}
	}
	proto, err := keyframe.Load(loader, id)
	if err != nil {
		return nil, nil, "", err
	}
	return proto, loader, id, nil
}

// backends are the persistence adapters selected by the store settings.
type backends struct {
	store  ports.SnapshotStore
	locker ports.DistributedLocker
	close  func() error
}

// openStore opens the configured backend and wraps it with the masking and
// encryption middlewares when enabled.
func openStore(c config.StoreConfig) (*backends, error) {
	be, err := openBackend(c)
	if err != nil {
		return nil, err
	}

	var mws []middleware.Middleware
	if len(c.Mask) > 0 {
		pii, err := middleware.NewPIIMiddleware(c.Mask)
		if err != nil {
			_ = be.close()
			return nil, fmt.Errorf("invalid mask pattern: %w", err)
		}
		mws = append(mws, pii)
	}
	active, fallback, err := c.Keys()
	if err != nil {
		_ = be.close()
		return nil, err
	}
	if active != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback}))
	}
	be.store = middleware.Chain(be.store, mws...)
	return be, nil
}

func openBackend(c config.StoreConfig) (*backends, error) {
	nop := func() error { return nil }
	switch c.Backend {
	case config.StoreFile:
		return &backends{store: file.NewStore(c.Path), close: nop}, nil
	case config.StoreBolt:
		store, err := bolt.Open(filepath.Clean(c.Path))
		if err != nil {
			return nil, err
		}
		return &backends{store: store, close: store.Close}, nil
	case config.StoreRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", c.Redis.Addr, err)
		}
		prefix := c.Redis.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		store := redis.NewFromClient(client, redis.WithTTL(c.TTL), redis.WithPrefix(prefix))
		return &backends{store: store, locker: redis.NewLocker(client, prefix), close: client.Close}, nil
	default:
		return &backends{store: memory.NewStore(), close: nop}, nil
	}
}

// sessionHooks connects the MQTT publisher when a broker is configured.
// The returned stop function disconnects it.
func sessionHooks(c config.MQTTConfig, fallback string) (func(string) domain.Hooks, func(), error) {
	if c.Broker == "" {
		return nil, func() {}, nil
	}
	pub := mqtt.NewPublisher(mqtt.Config{Broker: c.Broker, ClientID: c.ClientID, QoS: c.QoS})
	if err := pub.Connect(); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mqtt broker %s: %w", c.Broker, err)
	}
	logger.Info("Publishing host callbacks", "broker", c.Broker, "prefix", c.Prefix)
	return mqtt.SessionHooks(pub, c.Prefix, fallback, logger), pub.Disconnect, nil
}
