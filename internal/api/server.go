package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/pbaille/studytrack/internal/domain"
	"github.com/pbaille/studytrack/internal/logger"
	"github.com/pbaille/studytrack/internal/tracker"
)

// Server exposes a tracker over HTTP
type Server struct {
	// mu serializes every controller call: one action runs to completion
	// before the next starts.
	mu   sync.Mutex
	ctrl *tracker.Controller
	addr string
	log  *logger.Logger
}

// New creates a new API server
func New(ctrl *tracker.Controller, addr string, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{ctrl: ctrl, addr: addr, log: log.With("component", "api")}
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Board
	mux.HandleFunc("GET /subjects", s.board)
	mux.HandleFunc("GET /subjects/{subject}", s.getSubject)
	mux.HandleFunc("POST /subjects/{subject}/reconcile", s.reconcile)

	// Topics
	mux.HandleFunc("POST /subjects/{subject}/topics", s.addTopic)
	mux.HandleFunc("PATCH /subjects/{subject}/topics/{topic}", s.updateTopic)
	mux.HandleFunc("DELETE /subjects/{subject}/topics/{topic}", s.removeTopic)

	// Health check
	mux.HandleFunc("GET /health", s.health)

	return s.withRequestID(withCORS(mux))
}

// Run starts the HTTP server
func (s *Server) Run() error {
	s.log.Info("starting server", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// withCORS adds CORS headers for browser frontends
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) withRequestID(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		s.log.Debug("request", "id", id, "method", r.Method, "path", r.URL.Path)
		h.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) board(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.ctrl.Board())
}

func (s *Server) getSubject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.ctrl.Subject(r.PathValue("subject"))
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.View())
}

func (s *Server) reconcile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.ctrl.Reconcile(r.PathValue("subject"))
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// AddTopicRequest is the request body for adding a topic
type AddTopicRequest struct {
	Name string `json:"name"`
}

func (s *Server) addTopic(w http.ResponseWriter, r *http.Request) {
	var req AddTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.ctrl.Add(r.PathValue("subject"), req.Name)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// UpdateTopicRequest changes any subset of a topic's fields. An empty date
// clears it.
type UpdateTopicRequest struct {
	Reviewed *bool   `json:"reviewed,omitempty"`
	Studied  *bool   `json:"studied,omitempty"`
	Date     *string `json:"date,omitempty"`
}

func (s *Server) updateTopic(w http.ResponseWriter, r *http.Request) {
	var req UpdateTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reviewed == nil && req.Studied == nil && req.Date == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if req.Date != nil {
		if err := tracker.ValidDate(*req.Date); err != nil {
			writeTrackerError(w, err)
			return
		}
	}

	subject, topic := r.PathValue("subject"), r.PathValue("topic")

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		u   domain.Update
		err error
	)
	if req.Reviewed != nil {
		if u, err = s.ctrl.SetReviewed(subject, topic, *req.Reviewed); err != nil {
			writeTrackerError(w, err)
			return
		}
	}
	if req.Studied != nil {
		if u, err = s.ctrl.SetStudied(subject, topic, *req.Studied); err != nil {
			writeTrackerError(w, err)
			return
		}
	}
	if req.Date != nil {
		if u, err = s.ctrl.SetDate(subject, topic, *req.Date); err != nil {
			writeTrackerError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) removeTopic(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.ctrl.Remove(r.PathValue("subject"), r.PathValue("topic"))
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func writeTrackerError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tracker.ErrUnknownSubject), errors.Is(err, tracker.ErrUnknownTopic):
		status = http.StatusNotFound
	case errors.Is(err, tracker.ErrDuplicateTopic):
		status = http.StatusConflict
	case errors.Is(err, tracker.ErrEmptyTopic), errors.Is(err, tracker.ErrInvalidDate),
		errors.Is(err, tracker.ErrUnknownField):
		status = http.StatusBadRequest
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
