// Package http exposes the sequencer's command surface over REST plus an
// SSE event feed, so control panels and macros can trigger shows without
// linking the Go API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/duvall/marquee/internal/logging"
	"github.com/duvall/marquee/pkg/domain"
	"github.com/duvall/marquee/pkg/ports"
	"github.com/duvall/marquee/pkg/vn"
)

// Conductor is the slice of the director the HTTP surface drives.
type Conductor interface {
	Play(ctx context.Context, family string, payload domain.Payload) error
	Skip(ctx context.Context, family string)
	Pending(family string) int
	StopQueue(family string)
	Families() []string
	Queued(family string) bool
	VN() *vn.Store
}

// Server routes HTTP commands onto a Conductor.
type Server struct {
	conductor Conductor
	streams   *StreamManager
	logger    *slog.Logger
	gmKey     string
	metrics   http.Handler
	bus       ports.MessageBus
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGMKey protects mutating routes: requests must carry the key in the
// X-Marquee-Key header. Without a key every caller is trusted.
func WithGMKey(key string) Option {
	return func(s *Server) {
		s.gmKey = key
	}
}

// WithMetricsHandler mounts a metrics endpoint at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithBus mirrors bus traffic into the SSE feed, so the panel sees plays
// triggered by other clients too.
func WithBus(bus ports.MessageBus) Option {
	return func(s *Server) {
		s.bus = bus
	}
}

// NewHandler builds the HTTP handler.
func NewHandler(conductor Conductor, opts ...Option) http.Handler {
	s := &Server{
		conductor: conductor,
		streams:   NewStreamManager(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.bus != nil {
		s.bus.On(func(msg domain.Message) {
			if raw, err := json.Marshal(msg); err == nil {
				s.streams.Broadcast(string(raw))
			}
		})
	}

	r := chi.NewRouter()

	r.Get("/health", s.getHealth)
	r.Get("/api/events", s.subscribeEvents)
	r.Get("/api/sequences", s.listSequences)
	r.Get("/api/queue/{family}", s.getQueue)
	r.Get("/api/vn", s.getVNState)

	r.Group(func(r chi.Router) {
		r.Use(s.requireGM)
		r.Post("/api/sequences/{family}/play", s.playSequence)
		r.Post("/api/sequences/{family}/skip", s.skipSequence)
		r.Delete("/api/queue/{family}", s.stopQueue)
		r.Post("/api/vn/open", s.vnOpen)
		r.Post("/api/vn/close", s.vnClose)
		r.Post("/api/vn/background", s.vnBackground)
		r.Post("/api/vn/chars", s.vnChars)
		r.Post("/api/vn/dialogue", s.vnDialogue)
		r.Post("/api/vn/activate", s.vnActivate)
		r.Post("/api/vn/speaking", s.vnSpeaking)
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Marquee-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireGM rejects mutating requests without the configured key.
func (s *Server) requireGM(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.gmKey != "" && r.Header.Get("X-Marquee-Key") != s.gmKey {
			http.Error(w, "gm key required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

type sequenceInfo struct {
	Family  string `json:"family"`
	Queued  bool   `json:"queued"`
	Pending int    `json:"pending"`
}

func (s *Server) listSequences(w http.ResponseWriter, r *http.Request) {
	families := s.conductor.Families()
	out := make([]sequenceInfo, 0, len(families))
	for _, family := range families {
		out = append(out, sequenceInfo{
			Family:  family,
			Queued:  s.conductor.Queued(family),
			Pending: s.conductor.Pending(family),
		})
	}
	writeJSON(w, out)
}

func (s *Server) playSequence(w http.ResponseWriter, r *http.Request) {
	family := chi.URLParam(r, "family")

	var payload domain.Payload
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("play: invalid request body", "family", family, "err", err)
			return
		}
	}

	if err := s.conductor.Play(r.Context(), family, payload); err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownSequence):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, domain.ErrBusy):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, domain.ErrInvalidPayload):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, fmt.Sprintf("play error: %v", err), http.StatusInternalServerError)
			s.logger.Error("play failed", "family", family, "err", err)
		}
		return
	}

	s.broadcastEvent(domain.ActionPlay, family)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) skipSequence(w http.ResponseWriter, r *http.Request) {
	family := chi.URLParam(r, "family")
	s.conductor.Skip(r.Context(), family)
	s.broadcastEvent(domain.ActionSkip, family)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getQueue(w http.ResponseWriter, r *http.Request) {
	family := chi.URLParam(r, "family")
	writeJSON(w, map[string]int{"pending": s.conductor.Pending(family)})
}

func (s *Server) stopQueue(w http.ResponseWriter, r *http.Request) {
	family := chi.URLParam(r, "family")
	s.conductor.StopQueue(family)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getVNState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.conductor.VN().GetState())
}

func (s *Server) vnOpen(w http.ResponseWriter, r *http.Request) {
	s.conductor.VN().Open(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) vnClose(w http.ResponseWriter, r *http.Request) {
	s.conductor.VN().Close(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) vnBackground(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Src string `json:"src"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.conductor.VN().SetBackground(r.Context(), body.Src)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) vnChars(w http.ResponseWriter, r *http.Request) {
	var chars []*vn.Character
	if !decodeBody(w, r, &chars) {
		return
	}
	s.conductor.VN().SetChars(r.Context(), chars)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) vnDialogue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Visible bool   `json:"visible"`
		Speaker string `json:"speaker"`
		Text    string `json:"text"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Visible {
		s.conductor.VN().ShowDialogue(r.Context(), body.Speaker, body.Text)
	} else {
		s.conductor.VN().HideDialogue(r.Context())
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) vnActivate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.conductor.VN().ActivateExclusive(r.Context(), body.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) vnSpeaking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID       string `json:"id"`
		Speaking bool   `json:"speaking"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.conductor.VN().SetSpeaking(r.Context(), body.ID, body.Speaking)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) broadcastEvent(action, family string) {
	raw, err := json.Marshal(domain.Message{Action: action, Family: family})
	if err != nil {
		return
	}
	s.streams.Broadcast(string(raw))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "err", err)
	}
}

// StreamManager fans bus and command events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- string]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe() (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

func (sm *StreamManager) Broadcast(msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			// Slow client, drop rather than stall the show.
		}
	}
}

// subscribeEvents handles the GET /api/events request (SSE).
func (s *Server) subscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
