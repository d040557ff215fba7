package app

import (
	"log/slog"
	"sync"
	"time"

	"undercover/internal/domain"
)

// RoomSession wraps a room with concurrency control. Every join and
// status read runs under the room mutex, so the assignment transition
// is atomic with respect to concurrent queries: a caller either sees
// forming, or assigned with every player's fields in place.
type RoomSession struct {
	room   *domain.Room
	mu     sync.Mutex
	logger *slog.Logger
	audit  *AuditLog
}

func newRoomSession(room *domain.Room, logger *slog.Logger, audit *AuditLog) *RoomSession {
	return &RoomSession{
		room:   room,
		logger: logger,
		audit:  audit,
	}
}

// Code returns the room code
func (s *RoomSession) Code() string {
	return s.room.Code
}

// CreatedAt returns when the room was created
func (s *RoomSession) CreatedAt() time.Time {
	return s.room.CreatedAt
}

// Settings returns the room's task draw parameters
func (s *RoomSession) Settings() domain.Settings {
	return s.room.Settings
}

// MaxPlayers returns the room capacity
func (s *RoomSession) MaxPlayers() int {
	return s.room.MaxPlayers
}

// PlayerCount returns the current membership count
func (s *RoomSession) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.room.Players)
}

// Join adds a session to the room and returns its private token along
// with its view. Re-joining with an issued token returns the existing
// session. If this join fills the room, assignment runs here, inside
// the same critical section, so the response already carries the role.
func (s *RoomSession) Join(name, token string) (string, domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasAssigned := s.room.Assigned()

	player, err := s.room.Join(name, token, func(name string, order int) *domain.Player {
		return domain.NewPlayer(newPlayerID(), newSessionToken(), name, order)
	})
	if err != nil {
		return "", domain.SessionView{}, err
	}

	if !wasAssigned && s.room.Assigned() {
		s.logger.Info("room assigned", "code", s.room.Code, "players", len(s.room.Players))
		s.audit.RecordAssignment(s.room)
	}

	view, err := s.room.ViewFor(player.Token)
	if err != nil {
		return "", domain.SessionView{}, err
	}

	return player.Token, view, nil
}

// View returns the room as seen by the holder of the given token
func (s *RoomSession) View(token string) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.ViewFor(token)
}

// PublicState is the non-secret lobby state, safe to show anyone
type PublicState struct {
	Room       string            `json:"room"`
	Status     domain.RoomStatus `json:"status"`
	Joined     int               `json:"joined"`
	MaxPlayers int               `json:"maxPlayers"`
}

// Public returns the current non-secret lobby state
func (s *RoomSession) Public() PublicState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return PublicState{
		Room:       s.room.Code,
		Status:     s.room.Status,
		Joined:     len(s.room.Players),
		MaxPlayers: s.room.MaxPlayers,
	}
}
