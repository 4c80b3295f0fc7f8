package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"focusguard/internal/logger"
	"focusguard/internal/session"
)

// Server is the loopback HTTP surface the browser companion and focusctl talk
// to.
type Server struct {
	ctrl   *session.Controller
	router *mux.Router
}

func NewServer(ctrl *session.Controller) *Server {
	s := &Server{ctrl: ctrl, router: mux.NewRouter()}
	s.router.HandleFunc("/v1/navigation", s.handleNavigation).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/command", s.handleCommand).Methods(http.MethodPost)
	s.router.HandleFunc("/v1/state", s.handleState).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/healthz", s.handleHealth).Methods(http.MethodGet)
	return s
}

func (s *Server) Handler() http.Handler {
	return logging(s.router)
}

func (s *Server) handleNavigation(w http.ResponseWriter, r *http.Request) {
	var ev session.NavigationEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "INVALID_DATA"})
		return
	}
	dec, err := s.ctrl.HandleNavigation(ev)
	if err != nil {
		logger.Errorf("Navigation handling failed: %v", err)
		// fail open: the companion lets the navigation through
		writeJSON(w, http.StatusOK, session.Decision{})
		return
	}
	writeJSON(w, http.StatusOK, dec)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "INVALID_DATA"})
		return
	}
	cmd, err := DecodeCommand(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": string(session.CodeUnknownCommand)})
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Dispatch(cmd))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Dispatch(session.GetState{}))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readBody(r *http.Request) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)
		logger.L.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
