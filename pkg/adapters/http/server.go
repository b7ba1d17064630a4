package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/keyframe"
	"github.com/aretw0/keyframe/pkg/document"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes preview sessions of one prototype over HTTP.
type Server struct {
	Previewer *session.Previewer
	Prototype *domain.Prototype
	Streams   *StreamManager

	logger     *slog.Logger
	gatherer   prometheus.Gatherer
	apiVersion string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer exposes the given metrics on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates the HTTP handler for the previewer.
func NewHandler(previewer *session.Previewer, proto *domain.Prototype, opts ...Option) (http.Handler, error) {
	server := &Server{
		Previewer: previewer,
		Prototype: proto,
		Streams:   NewStreamManager(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(server)
	}

	swagger, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	server.apiVersion = swagger.Info.Version
	validate, err := validateRequests(swagger, server.logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(RawSpec())
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if server.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(validate)
		r.Get("/health", server.GetHealth)
		r.Get("/info", server.GetInfo)
		r.Get("/document", server.GetDocument)
		r.Get("/sessions", server.ListSessions)
		r.Post("/sessions", server.StartSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", server.GetSession)
			r.Delete("/", server.DeleteSession)
			r.Post("/events", server.DispatchEvent)
			r.Post("/advance", server.AdvanceSession)
			r.Post("/navigate", server.NavigateSession)
			r.Post("/back", server.BackSession)
			r.Post("/variables", server.SetVariable)
			r.Post("/reset", server.ResetSession)
			r.Get("/frame", server.GetFrame)
			r.Get("/stream", server.StreamSession)
		})
	})
	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Keyframe Preview API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

type startRequest struct {
	SessionID string `json:"sessionId"`
}

type advanceRequest struct {
	Ms float64 `json:"ms"`
}

type navigateRequest struct {
	Target     string `json:"target"`
	Transition any    `json:"transition"`
}

type setVariableRequest struct {
	VariableID string   `json:"variableId"`
	Operation  string   `json:"operation"`
	Value      any      `json:"value"`
	Amount     *float64 `json:"amount"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "keyframe-http",
		"version":     keyframe.Version,
		"api_version": s.apiVersion,
		"prototype":   s.Prototype.Name,
	})
}

// GetDocument handles the GET /document request.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	data, err := document.Encode(s.Prototype)
	if err != nil {
		http.Error(w, fmt.Sprintf("Encode error: %v", err), http.StatusInternalServerError)
		s.logger.Error("GetDocument failed", "err", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Previewer.List(r.Context())
	if err != nil {
		s.fail(w, "ListSessions", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// StartSession handles the POST /sessions request.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if !s.decodeOptional(w, r, &body) {
		return
	}
	res, err := s.Previewer.Start(r.Context(), body.SessionID)
	s.finish(w, "StartSession", http.StatusCreated, res, err)
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Previewer.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Previewer.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DispatchEvent handles the POST /sessions/{id}/events request.
func (s *Server) DispatchEvent(w http.ResponseWriter, r *http.Request) {
	var ev domain.Event
	if !s.decode(w, r, &ev) {
		return
	}
	res, err := s.Previewer.Dispatch(r.Context(), chi.URLParam(r, "id"), ev)
	s.finish(w, "DispatchEvent", http.StatusOK, res, err)
}

// AdvanceSession handles the POST /sessions/{id}/advance request.
func (s *Server) AdvanceSession(w http.ResponseWriter, r *http.Request) {
	var body advanceRequest
	if !s.decode(w, r, &body) {
		return
	}
	d := time.Duration(body.Ms * float64(time.Millisecond))
	res, err := s.Previewer.Advance(r.Context(), chi.URLParam(r, "id"), d)
	s.finish(w, "AdvanceSession", http.StatusOK, res, err)
}

// NavigateSession handles the POST /sessions/{id}/navigate request.
func (s *Server) NavigateSession(w http.ResponseWriter, r *http.Request) {
	var body navigateRequest
	if !s.decode(w, r, &body) {
		return
	}
	spec, ok := s.transitionSpec(w, body.Transition)
	if !ok {
		return
	}
	res, err := s.Previewer.Navigate(r.Context(), chi.URLParam(r, "id"), body.Target, spec)
	s.finish(w, "NavigateSession", http.StatusOK, res, err)
}

// BackSession handles the POST /sessions/{id}/back request.
func (s *Server) BackSession(w http.ResponseWriter, r *http.Request) {
	var body navigateRequest
	if !s.decodeOptional(w, r, &body) {
		return
	}
	spec, ok := s.transitionSpec(w, body.Transition)
	if !ok {
		return
	}
	res, err := s.Previewer.Back(r.Context(), chi.URLParam(r, "id"), spec)
	s.finish(w, "BackSession", http.StatusOK, res, err)
}

// SetVariable handles the POST /sessions/{id}/variables request.
func (s *Server) SetVariable(w http.ResponseWriter, r *http.Request) {
	var body setVariableRequest
	if !s.decode(w, r, &body) {
		return
	}
	action := domain.SetVariableAction{
		VariableID: body.VariableID,
		Op:         domain.VariableOp(body.Operation),
		Amount:     body.Amount,
	}
	if action.Op == "" {
		action.Op = domain.OpSet
	}
	if body.Value != nil {
		v, err := domain.ValueOf(body.Value)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid value: %v", err), http.StatusBadRequest)
			return
		}
		action.Value = v
	}
	res, err := s.Previewer.SetVariable(r.Context(), chi.URLParam(r, "id"), action)
	s.finish(w, "SetVariable", http.StatusOK, res, err)
}

// ResetSession handles the POST /sessions/{id}/reset request.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	res, err := s.Previewer.Reset(r.Context(), chi.URLParam(r, "id"))
	s.finish(w, "ResetSession", http.StatusOK, res, err)
}

// GetFrame handles the GET /sessions/{id}/frame request.
func (s *Server) GetFrame(w http.ResponseWriter, r *http.Request) {
	res, err := s.Previewer.Frame(r.Context(), chi.URLParam(r, "id"))
	s.finish(w, "GetFrame", http.StatusOK, res, err)
}

// -- Helpers --

func (s *Server) transitionSpec(w http.ResponseWriter, raw any) (*domain.TransitionSpec, bool) {
	if raw == nil {
		return nil, true
	}
	spec, err := document.DecodeTransitionSpec(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid transition: %v", err), http.StatusBadRequest)
		return nil, false
	}
	return &spec, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

// decodeOptional accepts an empty body.
func (s *Server) decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	http.Error(w, "Invalid request body", http.StatusBadRequest)
	s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
	return false
}

// finish writes a previewer result and broadcasts its diff.
func (s *Server) finish(w http.ResponseWriter, op string, status int, res *session.Result, err error) {
	if err != nil {
		s.fail(w, op, err)
		return
	}
	if res.Diff != nil {
		n := s.Streams.Broadcast(res.Diff)
		s.logger.Debug(op+": diff broadcast", "session_id", res.SessionID, "subscribers", n)
	}
	s.writeJSON(w, status, res)
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, session.ErrNegativeAdvance):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
		s.logger.Error(op+" failed", "err", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
