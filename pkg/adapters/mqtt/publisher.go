package mqtt

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aretw0/keyframe/pkg/ports"
	paho "github.com/eclipse/paho.mqtt.golang"
)

// DefaultBroker is used when neither the config nor MQTT_URL name a broker.
const DefaultBroker = "tcp://localhost:1883"

// Client is the part of paho.Client the publisher needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Config describes the broker connection.
type Config struct {
	Broker   string
	ClientID string
	QoS      byte
	Timeout  time.Duration
}

// BrokerURL returns the broker of cfg, then MQTT_URL, then DefaultBroker.
func (cfg Config) BrokerURL() string {
	if cfg.Broker != "" {
		return cfg.Broker
	}
	if url := os.Getenv("MQTT_URL"); url != "" {
		return url
	}
	return DefaultBroker
}

// Publisher sends payloads to an MQTT broker.
type Publisher struct {
	client  Client
	conn    paho.Client
	qos     byte
	timeout time.Duration
	mu      sync.Mutex
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher creates a publisher with its own paho client. It does not connect.
func NewPublisher(cfg Config) *Publisher {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "keyframe"
	}
	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL()).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetKeepAlive(30 * time.Second)

	conn := paho.NewClient(opts)
	p := NewFromClient(conn, cfg.QoS, cfg.Timeout)
	p.conn = conn
	return p
}

// NewFromClient publishes through an existing client.
func NewFromClient(client Client, qos byte, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Publisher{client: client, qos: qos, timeout: timeout}
}

// Connect attempts to connect to the broker.
// It is a no-op for publishers built from an existing client.
func (p *Publisher) Connect() error {
	if p.conn == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	token := p.conn.Connect()
	if !token.WaitTimeout(p.timeout) {
		return &TimeoutError{Op: "connect"}
	}
	return token.Error()
}

// Disconnect cleanly disconnects from the broker.
func (p *Publisher) Disconnect() {
	if p.conn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.conn.Disconnect(1000)
}

// Publish sends payload to topic and waits for the broker to acknowledge it
// at the configured QoS.
func (p *Publisher) Publish(ctx context.Context, topic string, payload []byte) error {
	token := p.client.Publish(topic, p.qos, false, payload)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt publish to %s: %w", topic, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return &TimeoutError{Op: "publish", Topic: topic}
	}
}

// TimeoutError indicates the broker did not answer in time.
type TimeoutError struct {
	Op    string
	Topic string
}

func (e *TimeoutError) Error() string {
	if e.Topic == "" {
		return "mqtt " + e.Op + " timeout"
	}
	return "mqtt " + e.Op + " timeout: " + e.Topic
}
