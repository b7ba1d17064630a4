package config_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/keyframe/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyframe.yaml")
	content := `
log:
  level: debug
http:
  port: 9090
store:
  backend: redis
  ttl: 30m
  redis:
    addr: cache:6379
    db: 2
mqtt:
  broker: tcp://broker:1883
  qos: 1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("KEYFRAME_HTTP_PORT", "7070")
	t.Setenv("KEYFRAME_MQTT_PREFIX", "demo")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 7070, cfg.HTTP.Port)
	assert.Equal(t, config.StoreRedis, cfg.Store.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Store.TTL)
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, "demo", cfg.MQTT.Prefix)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "keyframe.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"store":{"backend":"bolt"}}`), 0644))
	_, err = config.Load(path)
	assert.ErrorContains(t, err, "needs a path")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"KEYFRAME_STORE":       "bolt",
		"KEYFRAME_STORE_PATH":  "/tmp/sessions.db",
		"KEYFRAME_SESSION_TTL": "1h",
		"KEYFRAME_REDIS_DB":    "3",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := config.Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, config.StoreBolt, cfg.Store.Backend)
	assert.Equal(t, "/tmp/sessions.db", cfg.Store.Path)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	require.NoError(t, cfg.Validate())

	env["KEYFRAME_HTTP_PORT"] = "eighty"
	assert.ErrorContains(t, cfg.ApplyEnv(lookup), "KEYFRAME_HTTP_PORT")

	cfg = config.Default()
	cfg.Store.Backend = "etcd"
	assert.Error(t, cfg.Validate())
}

func TestStoreConfig_Keys(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))

	active, fallback, err := config.StoreConfig{}.Keys()
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Nil(t, fallback)

	active, fallback, err = config.StoreConfig{EncryptionKey: key, FallbackKeys: []string{key}}.Keys()
	require.NoError(t, err)
	assert.Len(t, active, 32)
	assert.Len(t, fallback, 1)

	cfg := config.Default()
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("short"))
	assert.ErrorContains(t, cfg.Validate(), "must be 32 bytes")
}
