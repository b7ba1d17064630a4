// Package config loads the keyframe.yaml settings file shared by the CLI
// commands and applies KEYFRAME_* environment overrides on top of it.
package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "keyframe.yaml"

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreBolt   = "bolt"
)

// Config is the root of keyframe.yaml.
type Config struct {
	Log   LogConfig   `yaml:"log" json:"log"`
	HTTP  HTTPConfig  `yaml:"http" json:"http"`
	Store StoreConfig `yaml:"store" json:"store"`
	MQTT  MQTTConfig  `yaml:"mqtt" json:"mqtt"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type HTTPConfig struct {
	Port int `yaml:"port" json:"port"`
}

// StoreConfig selects where preview sessions are persisted.
type StoreConfig struct {
	Backend string        `yaml:"backend" json:"backend"`
	Path    string        `yaml:"path" json:"path"` // directory (file) or database file (bolt)
	TTL     time.Duration `yaml:"ttl" json:"ttl"`
	Redis   RedisConfig   `yaml:"redis" json:"redis"`

	// EncryptionKey (base64, 32 bytes) seals snapshots with AES-GCM.
	// FallbackKeys still decrypt snapshots written before a rotation.
	EncryptionKey string   `yaml:"encryptionKey" json:"encryptionKey"`
	FallbackKeys  []string `yaml:"fallbackKeys" json:"fallbackKeys"`
	// Mask lists patterns of variable IDs whose values are never persisted.
	Mask []string `yaml:"mask" json:"mask"`
}

// Keys decodes the encryption keys. Active is nil when encryption is off.
func (s StoreConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	decode := func(k string) ([]byte, error) {
		b, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		if len(b) != 32 {
			return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(b))
		}
		return b, nil
	}
	if active, err = decode(s.EncryptionKey); err != nil {
		return nil, nil, err
	}
	for _, k := range s.FallbackKeys {
		b, err := decode(k)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, b)
	}
	return active, fallback, nil
}

type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

// MQTTConfig enables the host-callback publisher when Broker is set.
type MQTTConfig struct {
	Broker   string `yaml:"broker" json:"broker"`
	ClientID string `yaml:"clientId" json:"clientId"`
	Prefix   string `yaml:"prefix" json:"prefix"`
	QoS      byte   `yaml:"qos" json:"qos"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Log:   LogConfig{Level: "info", Format: "text"},
		HTTP:  HTTPConfig{Port: 8080},
		Store: StoreConfig{Backend: StoreMemory, Redis: RedisConfig{Addr: "localhost:6379"}},
		MQTT:  MQTTConfig{Prefix: "keyframe"},
	}
}

// Load reads path (YAML or JSON) over the defaults, then applies the
// environment. An empty path tries DefaultFile and tolerates its absence.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, &cfg); err != nil {
			return cfg, err
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from KEYFRAME_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("KEYFRAME_LOG_LEVEL", &c.Log.Level)
	str("KEYFRAME_LOG_FORMAT", &c.Log.Format)
	str("KEYFRAME_STORE", &c.Store.Backend)
	str("KEYFRAME_STORE_PATH", &c.Store.Path)
	str("KEYFRAME_REDIS_ADDR", &c.Store.Redis.Addr)
	str("KEYFRAME_REDIS_PASSWORD", &c.Store.Redis.Password)
	str("KEYFRAME_REDIS_PREFIX", &c.Store.Redis.Prefix)
	str("KEYFRAME_STORE_KEY", &c.Store.EncryptionKey)
	str("KEYFRAME_MQTT_BROKER", &c.MQTT.Broker)
	str("KEYFRAME_MQTT_PREFIX", &c.MQTT.Prefix)

	if v, ok := lookup("KEYFRAME_HTTP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KEYFRAME_HTTP_PORT: %w", err)
		}
		c.HTTP.Port = port
	}
	if v, ok := lookup("KEYFRAME_REDIS_DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("KEYFRAME_REDIS_DB: %w", err)
		}
		c.Store.Redis.DB = db
	}
	if v, ok := lookup("KEYFRAME_SESSION_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("KEYFRAME_SESSION_TTL: %w", err)
		}
		c.Store.TTL = ttl
	}
	return nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreRedis:
	case StoreFile, StoreBolt:
		if c.Store.Path == "" {
			return fmt.Errorf("store %q needs a path", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if _, _, err := c.Store.Keys(); err != nil {
		return err
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("invalid mqtt qos %d", c.MQTT.QoS)
	}
	return nil
}
