// Package httpapi exposes a Player over HTTP for the web frontend.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/denizsincar29/keyplayer"
	"github.com/denizsincar29/keyplayer/keymap"
)

const maxBodyBytes = 1 << 20

// Player is what the API drives. *keyplayer.Player implements it.
type Player interface {
	Start(score keyplayer.Score, cfg keyplayer.Config) error
	Stop()
	Status() bool
	KeyMap() *keymap.Table
}

// Server routes control requests to a Player.
type Server struct {
	player  Player
	logger  *slog.Logger
	handler http.Handler
}

// New builds the API. Cross-origin requests are accepted from allowedOrigin
// only, with credentials. A nil logger means slog.Default().
func New(player Player, allowedOrigin string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{player: player, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/play", s.handlePlay)
	mux.HandleFunc("POST /api/stop", s.handleStop)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/key-mapping", s.handleKeyMapping)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowCredentials: true,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	})
	s.handler = s.logRequests(c.Handler(mux))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// PlayRequest is the body of POST /api/play. Speed and Delay take their
// defaults when omitted.
type PlayRequest struct {
	Notes []keyplayer.Note `json:"notes"`
	Speed *float64         `json:"speed,omitempty"`
	Delay *float64         `json:"delay,omitempty"`
	Loop  bool             `json:"loop"`
}

// Config resolves the playback configuration, filling in defaults.
func (pr PlayRequest) Config() keyplayer.Config {
	cfg := keyplayer.DefaultConfig()
	if pr.Speed != nil {
		cfg.Speed = *pr.Speed
	}
	if pr.Delay != nil {
		cfg.Delay = *pr.Delay
	}
	cfg.Loop = pr.Loop
	return cfg
}

type message struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

type statusBody struct {
	IsPlaying bool `json:"is_playing"`
}

type mappingBody struct {
	Mapping map[string]string `json:"mapping"`
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Detail: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if req.Notes == nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "notes is required"})
		return
	}

	err := s.player.Start(keyplayer.Score(req.Notes), req.Config())
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, message{Status: "success", Message: "playback started"})
	case errors.Is(err, keyplayer.ErrAlreadyPlaying):
		s.writeJSON(w, http.StatusBadRequest, errorBody{Detail: "already playing, stop first"})
	case errors.Is(err, keyplayer.ErrInvalidScore), errors.Is(err, keyplayer.ErrInvalidConfig):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: err.Error()})
	default:
		s.logger.Error("Failed to start playback", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "failed to start playback"})
	}
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.player.Stop()
	s.writeJSON(w, http.StatusOK, message{Status: "success", Message: "playback stopped"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statusBody{IsPlaying: s.player.Status()})
}

func (s *Server) handleKeyMapping(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, mappingBody{Mapping: s.player.KeyMap().Entries()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
