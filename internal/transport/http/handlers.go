package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"undercover/internal/domain"
)

// CreateRoomRequest is the body of POST /api/room. Zero values fall
// back to the server defaults.
type CreateRoomRequest struct {
	MaxPlayers  int `json:"maxPlayers"`
	TaskCount   int `json:"taskCount"`
	MaxSameType int `json:"maxSameType"`
}

// CreateRoomResponse is the response for room creation
type CreateRoomResponse struct {
	Code       string          `json:"code"`
	MaxPlayers int             `json:"maxPlayers"`
	Settings   domain.Settings `json:"settings"`
}

// JoinRequest is the body of POST /api/join. Token is optional: a
// client re-presenting an issued token gets its existing session back.
type JoinRequest struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Token string `json:"token,omitempty"`
}

// JoinResponse is the joining session's token plus its own room view
type JoinResponse struct {
	Token string `json:"token"`
	domain.SessionView
}

// VerdictRequest is the body of POST /api/verdict (same-device mode)
type VerdictRequest struct {
	Players        []string           `json:"players"`
	Votes          []domain.Vote      `json:"votes"`
	MatchResult    domain.MatchResult `json:"matchResult"`
	UndercoverIdx  int                `json:"undercoverIndex"`
	TasksCompleted int                `json:"tasksCompleted"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveRooms  int `json:"activeRooms"`
	TotalPlayers int `json:"totalPlayers"`
}

// handleCreateRoom handles POST /api/room
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := parseJSONBody(r, &req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.MaxPlayers == 0 {
		req.MaxPlayers = s.config.Game.MaxPlayers
	}
	settings := domain.Settings{
		TaskCount:   orDefault(req.TaskCount, s.config.Game.TaskCount),
		MaxSameType: orDefault(req.MaxSameType, s.config.Game.MaxSameType),
	}

	session, err := s.hub.CreateRoom(req.MaxPlayers, settings)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, CreateRoomResponse{
		Code:       session.Code(),
		MaxPlayers: session.MaxPlayers(),
		Settings:   session.Settings(),
	})
}

// handleJoin handles POST /api/join
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := parseJSONBody(r, &req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Code) == "" {
		s.sendError(w, http.StatusBadRequest, "room code is required")
		return
	}

	session, err := s.hub.GetRoom(req.Code)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	token, view, err := session.Join(req.Name, req.Token)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, JoinResponse{Token: token, SessionView: view})
}

// handleMe handles GET /api/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	token := r.URL.Query().Get("token")
	if strings.TrimSpace(code) == "" || strings.TrimSpace(token) == "" {
		s.sendError(w, http.StatusBadRequest, "code and token are required")
		return
	}

	session, err := s.hub.GetRoom(code)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	view, err := session.View(token)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, view)
}

// handleVerdict handles POST /api/verdict for same-device mode. Pure
// computation, no room state involved.
func (s *Server) handleVerdict(w http.ResponseWriter, r *http.Request) {
	var req VerdictRequest
	if err := parseJSONBody(r, &req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if len(req.Players) == 0 {
		s.sendError(w, http.StatusBadRequest, "players are required")
		return
	}

	verdict, err := domain.Resolve(req.Players, req.Votes, req.MatchResult, req.UndercoverIdx, req.TasksCompleted)
	if err != nil {
		s.sendDomainError(w, err)
		return
	}

	s.sendJSON(w, http.StatusOK, verdict)
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, StatsResponse{
		ActiveRooms:  s.hub.RoomCount(),
		TotalPlayers: s.hub.PlayerCount(),
	})
}

// sendDomainError maps domain errors to HTTP statuses
func (s *Server) sendDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		s.sendError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrRoomFull), errors.Is(err, domain.ErrNameTaken):
		s.sendError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		s.sendError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrIncompleteVotes):
		s.sendError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidSettings),
		errors.Is(err, domain.ErrTaskPoolExhausted),
		errors.Is(err, domain.ErrInvalidVote),
		errors.Is(err, domain.ErrInvalidResult):
		s.sendError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("unexpected error", "error", err)
		s.sendError(w, http.StatusInternalServerError, "internal server error")
	}
}

// sendJSON writes a JSON response
func (s *Server) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// sendError writes a JSON error response
func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, ErrorResponse{Error: message})
}

// parseJSONBody parses the request body into the given struct
func parseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// orDefault returns n unless it is zero
func orDefault(n, def int) int {
	if n == 0 {
		return def
	}
	return n
}
