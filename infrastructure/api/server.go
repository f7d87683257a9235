// Package api exposes the room directory, presence, search and stats over HTTP.
package api

import (
	"chat-hub/domain/search"
	"chat-hub/errors"
	"chat-hub/services"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const readHeaderTimeout = 5 * time.Second

type Server struct {
	log     *slog.Logger
	service services.IChatService
	cors    *CORS
	ws      http.Handler
}

type createRoomRequest struct {
	Name string `json:"name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer mounts the websocket endpoint next to the JSON routes.
func NewServer(log *slog.Logger, service services.IChatService, ws http.Handler, allowedOrigins []string) *Server {
	return &Server{log: log, service: service, cors: NewCORS(allowedOrigins), ws: ws}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/rooms", s.cors.CORS(s.handleListRooms))
	mux.HandleFunc("POST /api/rooms", s.cors.CORS(s.handleCreateRoom))
	mux.HandleFunc("OPTIONS /api/", s.cors.CORS(func(http.ResponseWriter, *http.Request) {}))
	mux.HandleFunc("GET /api/users", s.cors.CORS(s.handleUsers))
	mux.HandleFunc("GET /api/search", s.cors.CORS(s.handleSearch))
	mux.HandleFunc("GET /api/stats", s.cors.CORS(s.handleStats))
	if s.ws != nil {
		mux.Handle("/ws", s.ws)
	}
	return mux
}

// HTTPServer builds the listener-side server for addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.service.ListRooms(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var body createRoomRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: errors.ErrEmptyRoomName.Error()})
		return
	}
	room, err := s.service.CreateRoom(r.Context(), body.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, room)
}

func (s *Server) handleUsers(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.Users())
}

// handleSearch accepts ?q= with optional inline --room/--limit flags.
// Explicit room and limit parameters take precedence.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := search.ParseQuery(params.Get("q"))
	if room := params.Get("room"); room != "" {
		query.RoomID = room
	}
	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a number"})
			return
		}
		query.Limit = limit
	}
	query = query.Bounded()
	if query.Terms == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "q is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	messages, err := s.service.Search(ctx, query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messages)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.Stats())
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Code(err) == errors.CodeValidation {
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("response not written", "error", err)
	}
}
