package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/keyframe"
	keyframehttp "github.com/aretw0/keyframe/pkg/adapters/http"
	"github.com/aretw0/keyframe/pkg/adapters/memory"
	"github.com/aretw0/keyframe/pkg/document"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/observability"
	"github.com/aretw0/keyframe/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func testPrototype() *domain.Prototype {
	box := func(x float64) domain.Element {
		return domain.Element{ID: "box", Geometry: domain.Geometry{X: x, Width: 50, Height: 50}, Style: domain.DefaultStyle()}
	}
	return &domain.Prototype{
		Name: "http",
		Screens: []domain.Screen{
			{ID: "A", Elements: []domain.Element{box(0)}},
			{ID: "B", Elements: []domain.Element{box(100)}},
		},
		Transitions: []domain.Transition{{
			ID:       "a-b",
			From:     "A",
			To:       "B",
			Triggers: []domain.Trigger{domain.TapTrigger{}},
			Delay:    ms(100),
			Duration: ms(300),
			Easing:   domain.NamedEasing("linear"),
		}},
		Variables: []domain.Variable{{ID: "count", DefaultValue: domain.Number(0)}},
	}
}

func newServer(t *testing.T, opts ...keyframehttp.Option) *httptest.Server {
	t.Helper()
	proto := testPrototype()
	previewer := session.NewPreviewer(session.NewManager(memory.NewStore()), keyframe.Factory(proto))
	handler, err := keyframehttp.NewHandler(previewer, proto, opts...)
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func result(t *testing.T, data []byte) session.Result {
	t.Helper()
	var res session.Result
	require.NoError(t, json.Unmarshal(data, &res), string(data))
	return res
}

func TestServer_SessionLifecycle(t *testing.T) {
	srv := newServer(t)

	resp, data := call(t, srv, "POST", "/sessions", `{"sessionId":"s1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	res := result(t, data)
	assert.Equal(t, "s1", res.SessionID)
	assert.Equal(t, "A", res.Snapshot.CurrentScreen)

	resp, data = call(t, srv, "POST", "/sessions/s1/events", `{"type":"tap"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	res = result(t, data)
	require.NotNil(t, res.Outcome)
	assert.True(t, res.Outcome.Started)
	assert.Equal(t, "a-b", res.Outcome.TransitionID)

	resp, data = call(t, srv, "POST", "/sessions/s1/advance", `{"ms":250}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	res = result(t, data)
	assert.Equal(t, "B", res.Frame.Screen)
	assert.Equal(t, domain.PhaseAnimating, res.Frame.Phase)
	assert.InDelta(t, 0.5, res.Frame.Progress, 1e-9)

	resp, data = call(t, srv, "GET", "/sessions/s1/frame", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 0.5, result(t, data).Frame.Progress, 1e-9)

	call(t, srv, "POST", "/sessions/s1/advance", `{"ms":200}`)
	resp, data = call(t, srv, "POST", "/sessions/s1/variables", `{"variableId":"count","operation":"increment","amount":2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, domain.Number(2), result(t, data).Snapshot.Variables["count"])

	resp, data = call(t, srv, "POST", "/sessions/s1/back", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	res = result(t, data)
	require.NotNil(t, res.Accepted)
	assert.True(t, *res.Accepted)
	assert.Equal(t, "A", res.Snapshot.CurrentScreen)

	resp, data = call(t, srv, "POST", "/sessions/s1/navigate", `{"target":"B","transition":{"type":"dissolve","duration":200}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	assert.Equal(t, domain.PhaseTransitionOut, result(t, data).Snapshot.Phase)

	resp, data = call(t, srv, "POST", "/sessions/s1/reset", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	res = result(t, data)
	assert.Equal(t, "A", res.Snapshot.CurrentScreen)
	assert.Equal(t, domain.Number(0), res.Snapshot.Variables["count"])

	resp, data = call(t, srv, "GET", "/sessions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["s1"]`, string(data))

	resp, data = call(t, srv, "GET", "/sessions/s1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, "s1", snap.SessionID)

	resp, _ = call(t, srv, "DELETE", "/sessions/s1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = call(t, srv, "GET", "/sessions/s1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_StartGeneratesID(t *testing.T) {
	srv := newServer(t)

	resp, data := call(t, srv, "POST", "/sessions", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	assert.NotEmpty(t, result(t, data).SessionID)
}

func TestServer_RejectsInvalidRequests(t *testing.T) {
	srv := newServer(t)
	call(t, srv, "POST", "/sessions", `{"sessionId":"s1"}`)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown event type", "POST", "/sessions/s1/events", `{"type":"teleport"}`, http.StatusBadRequest},
		{"missing event type", "POST", "/sessions/s1/events", `{"elementId":"box"}`, http.StatusBadRequest},
		{"negative advance", "POST", "/sessions/s1/advance", `{"ms":-5}`, http.StatusBadRequest},
		{"navigate without target", "POST", "/sessions/s1/navigate", `{}`, http.StatusBadRequest},
		{"unknown operation", "POST", "/sessions/s1/variables", `{"variableId":"count","operation":"square"}`, http.StatusBadRequest},
		{"unknown session", "POST", "/sessions/ghost/advance", `{"ms":10}`, http.StatusNotFound},
		{"unknown session frame", "GET", "/sessions/ghost/frame", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := call(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, string(data))
		})
	}
}

func TestServer_DocumentAndContract(t *testing.T) {
	srv := newServer(t)

	resp, data := call(t, srv, "GET", "/document", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	proto, err := document.Parse(data, document.FormatJSON)
	require.NoError(t, err)
	assert.Len(t, proto.Screens, 2)
	assert.Equal(t, "http", proto.Name)

	resp, data = call(t, srv, "GET", "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "Keyframe Preview API")

	resp, data = call(t, srv, "GET", "/info", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info map[string]string
	require.NoError(t, json.Unmarshal(data, &info))
	assert.Equal(t, keyframe.Version, info["version"])
	assert.Equal(t, "0.1.0", info["api_version"])
}

func TestServer_ContractCoversRoutes(t *testing.T) {
	proto := testPrototype()
	previewer := session.NewPreviewer(session.NewManager(memory.NewStore()), keyframe.Factory(proto))
	handler, err := keyframehttp.NewHandler(previewer, proto)
	require.NoError(t, err)
	swagger, err := keyframehttp.GetSwagger()
	require.NoError(t, err)

	routes, ok := handler.(chi.Routes)
	require.True(t, ok)

	undocumented := map[string]bool{"/openapi.yaml": true, "/swagger": true}
	err = chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if route != "/" {
			route = strings.TrimSuffix(route, "/")
		}
		if undocumented[route] {
			return nil
		}
		item := swagger.Paths.Value(route)
		if assert.NotNil(t, item, "route %s missing from contract", route) {
			assert.NotNil(t, item.GetOperation(method), "%s %s missing from contract", method, route)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	proto := testPrototype()
	previewer := session.NewPreviewer(session.NewManager(memory.NewStore()), keyframe.Factory(proto, keyframe.WithMetrics(metrics)))
	handler, err := keyframehttp.NewHandler(previewer, proto, keyframehttp.WithGatherer(reg))
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	defer srv.Close()

	call(t, srv, "POST", "/sessions", `{"sessionId":"m1"}`)
	call(t, srv, "POST", "/sessions/m1/events", `{"type":"tap"}`)
	call(t, srv, "POST", "/sessions/m1/advance", `{"ms":400}`)

	resp, data := call(t, srv, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), "keyframe_navigations_total")
	assert.Contains(t, string(data), "keyframe_transitions_ended_total")
}

func TestServer_StreamSession(t *testing.T) {
	srv := newServer(t)
	call(t, srv, "POST", "/sessions", `{"sessionId":"s1"}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/sessions/s1/stream?watch=screen", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	next := func() string {
		select {
		case line := <-lines:
			return line
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for stream")
			return ""
		}
	}
	require.Equal(t, "event: ping", next())
	require.Equal(t, "data: connected", next())

	// The tap only changes the phase, which is filtered out.
	call(t, srv, "POST", "/sessions/s1/events", `{"type":"tap"}`)
	call(t, srv, "POST", "/sessions/s1/advance", `{"ms":150}`)

	var data string
	for data == "" {
		if line := next(); strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
		}
	}
	var diff domain.SnapshotDiff
	require.NoError(t, json.NewDecoder(bytes.NewReader([]byte(data))).Decode(&diff))
	assert.Equal(t, "s1", diff.SessionID)
	require.NotNil(t, diff.CurrentScreen)
	assert.Equal(t, "B", *diff.CurrentScreen)
}
