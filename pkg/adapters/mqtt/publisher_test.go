package mqtt_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/keyframe"
	"github.com/aretw0/keyframe/pkg/adapters/mqtt"
	"github.com/aretw0/keyframe/pkg/domain"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	topic   string
	qos     byte
	payload []byte
}

// mockClient records publishes and completes their tokens immediately
// unless hang is set.
type mockClient struct {
	mu       sync.Mutex
	messages []message
	err      error
	hang     bool
}

func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message{topic: topic, qos: qos, payload: payload.([]byte)})
	tok := &mockToken{done: make(chan struct{}), err: m.err}
	if !m.hang {
		close(tok.done)
	}
	return tok
}

func (m *mockClient) Messages() []message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]message(nil), m.messages...)
}

type mockToken struct {
	done chan struct{}
	err  error
}

func (t *mockToken) Wait() bool {
	<-t.done
	return true
}

func (t *mockToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}

func (t *mockToken) Done() <-chan struct{} { return t.done }
func (t *mockToken) Error() error          { return t.err }

func TestPublisher_Publish(t *testing.T) {
	client := &mockClient{}
	pub := mqtt.NewFromClient(client, 1, time.Second)

	require.NoError(t, pub.Publish(context.Background(), "keyframe/s1/navigate", []byte(`{}`)))
	msgs := client.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "keyframe/s1/navigate", msgs[0].topic)
	assert.Equal(t, byte(1), msgs[0].qos)
}

func TestPublisher_Errors(t *testing.T) {
	broken := errors.New("broker gone")
	pub := mqtt.NewFromClient(&mockClient{err: broken}, 0, time.Second)
	assert.ErrorIs(t, pub.Publish(context.Background(), "t", nil), broken)

	slow := mqtt.NewFromClient(&mockClient{hang: true}, 0, 10*time.Millisecond)
	var timeout *mqtt.TimeoutError
	assert.ErrorAs(t, slow.Publish(context.Background(), "t", nil), &timeout)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stuck := mqtt.NewFromClient(&mockClient{hang: true}, 0, time.Minute)
	assert.ErrorIs(t, stuck.Publish(ctx, "t", nil), context.Canceled)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "keyframe/s1/navigate", mqtt.Topic("keyframe", "s1", mqtt.TopicNavigate))
	assert.Equal(t, "proto/a_b_c/url", mqtt.Topic("/proto/", "a/b+c", mqtt.TopicURL))
	assert.Equal(t, "p/default/gesture", mqtt.Topic("p", "", mqtt.TopicGesture))
}

func TestHooks_PublishEngineCallbacks(t *testing.T) {
	client := &mockClient{}
	pub := mqtt.NewFromClient(client, 0, time.Second)

	proto := &domain.Prototype{
		Screens: []domain.Screen{
			{ID: "A", Elements: []domain.Element{{ID: "cta", Style: domain.DefaultStyle()}}},
			{ID: "B"},
		},
		Interactions: []domain.Interaction{{
			ID:        "open",
			ElementID: "cta",
			Enabled:   true,
			Gesture:   domain.EventTap,
			Actions: []domain.Action{
				domain.SetVariableAction{VariableID: "clicks", Op: domain.OpIncrement},
				domain.NavigateAction{Target: "B"},
			},
		}},
		Variables: []domain.Variable{{ID: "clicks", DefaultValue: domain.Number(0)}},
	}

	eng, err := keyframe.New(proto,
		keyframe.WithSessionID("s1"),
		keyframe.WithSessionHooks(mqtt.SessionHooks(pub, "keyframe", "local", nil)),
	)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, eng.Start(ctx))
	eng.Dispatch(ctx, domain.Event{Type: domain.EventTap, ElementID: "cta"})

	var topics []string
	for _, m := range client.Messages() {
		topics = append(topics, m.topic)
	}
	assert.Equal(t, []string{
		"keyframe/s1/navigate",
		"keyframe/s1/gesture",
		"keyframe/s1/variable",
		"keyframe/s1/navigate",
	}, topics)

	last := client.Messages()[3]
	var nav domain.NavigateEvent
	require.NoError(t, json.Unmarshal(last.payload, &nav))
	assert.Equal(t, "A", nav.From)
	assert.Equal(t, "B", nav.To)
}
