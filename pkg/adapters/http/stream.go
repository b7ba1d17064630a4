package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// StreamManager fans snapshot diffs out to the SSE subscribers of a session.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *domain.SnapshotDiff]struct{} // SessionID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan *domain.SnapshotDiff]struct{}),
	}
}

// Subscribe registers a buffered channel for sessionID. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan *domain.SnapshotDiff, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan *domain.SnapshotDiff, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan *domain.SnapshotDiff]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Subscribers returns the number of live subscriptions of a session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Broadcast sends diff to every subscriber of its session. Slow clients drop messages.
func (sm *StreamManager) Broadcast(diff *domain.SnapshotDiff) int {
	if diff == nil {
		return 0
	}
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sent := 0
	for ch := range sm.subscribers[diff.SessionID] {
		select {
		case ch <- diff:
			sent++
		default:
		}
	}
	return sent
}

// watches reports whether diff touches one of the watched fields.
// An empty list watches everything.
func watches(diff *domain.SnapshotDiff, fields []string) bool {
	if len(fields) == 0 {
		return true
	}
	for _, field := range fields {
		switch strings.TrimSpace(field) {
		case "screen":
			if diff.CurrentScreen != nil {
				return true
			}
		case "phase":
			if diff.Phase != nil {
				return true
			}
		case "variables":
			if len(diff.Variables) > 0 {
				return true
			}
		case "history":
			if diff.History != nil {
				return true
			}
		}
	}
	return false
}

// StreamSession handles GET /sessions/{id}/stream (SSE).
func (s *Server) StreamSession(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("StreamSession: Streaming not supported")
		return
	}

	sessionID := chi.URLParam(r, "id")
	var watchList []string
	if watch := r.URL.Query().Get("watch"); watch != "" {
		watchList = strings.Split(watch, ",")
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to session updates", "session_id", sessionID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: Client disconnected", "session_id", sessionID)
			return
		case diff, ok := <-ch:
			if !ok {
				return
			}
			if !watches(diff, watchList) {
				continue
			}
			data, err := json.Marshal(diff)
			if err != nil {
				s.logger.Error("SSE: failed to encode diff", "err", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
