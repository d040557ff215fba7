package app

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"undercover/internal/domain"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 6

	// DefaultMaxPlayers is the away-mode capacity
	DefaultMaxPlayers = 5

	// DefaultRoomTTL is how long before a room is cleaned up
	DefaultRoomTTL = 2 * time.Hour
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// RoomHub owns every active room, keyed by code. It is the only place
// room state is mutated; all access goes through a per-room session so
// joins and status reads are serialized against assignment.
type RoomHub struct {
	rooms          map[string]*RoomSession
	mu             sync.RWMutex
	roomCodeLength int
	roomTTL        time.Duration
	logger         *slog.Logger
	audit          *AuditLog
	done           chan struct{}
}

// NewRoomHub creates a new room hub and starts its cleanup loop. A
// zero ttl means DefaultRoomTTL.
func NewRoomHub(logger *slog.Logger, audit *AuditLog, ttl time.Duration) *RoomHub {
	if ttl == 0 {
		ttl = DefaultRoomTTL
	}

	hub := &RoomHub{
		rooms:          make(map[string]*RoomSession),
		roomCodeLength: DefaultRoomCodeLength,
		roomTTL:        ttl,
		logger:         logger,
		audit:          audit,
		done:           make(chan struct{}),
	}

	go hub.cleanupLoop()

	return hub
}

// CreateRoom allocates a forming room. A zero maxPlayers means the
// away-mode default of five; settings are clamped into range and
// rejected outright if no draw could ever satisfy them.
func (h *RoomHub) CreateRoom(maxPlayers int, settings domain.Settings) (*RoomSession, error) {
	if maxPlayers == 0 {
		maxPlayers = DefaultMaxPlayers
	}
	if maxPlayers < 2 || maxPlayers > 12 {
		return nil, domain.ErrInvalidSettings
	}

	settings = settings.Clamp()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var code string
	for attempts := 0; attempts < 10; attempts++ {
		code = h.generateRoomCode()
		if _, exists := h.rooms[code]; !exists {
			break
		}
	}
	if _, exists := h.rooms[code]; exists {
		return nil, fmt.Errorf("failed to generate unique room code")
	}

	session := newRoomSession(domain.NewRoom(code, maxPlayers, settings), h.logger, h.audit)
	h.rooms[code] = session

	h.logger.Info("room created", "code", code, "maxPlayers", maxPlayers,
		"taskCount", settings.TaskCount, "maxSameType", settings.MaxSameType)

	return session, nil
}

// GetRoom returns a room session by code, case-insensitively
func (h *RoomHub) GetRoom(code string) (*RoomSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.rooms[domain.NormalizeCode(code)]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	return session, nil
}

// RoomCount returns the number of active rooms
func (h *RoomHub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// PlayerCount returns the total number of sessions across all rooms
func (h *RoomHub) PlayerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.rooms {
		total += session.PlayerCount()
	}
	return total
}

// Close shuts down the hub
func (h *RoomHub) Close() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.rooms = make(map[string]*RoomSession)
}

// generateRoomCode generates a random room code
func (h *RoomHub) generateRoomCode() string {
	b := make([]byte, h.roomCodeLength)
	rand.Read(b)

	code := make([]byte, h.roomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code)
}

// cleanupLoop periodically expires old rooms
func (h *RoomHub) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupExpiredRooms()
		}
	}
}

// cleanupExpiredRooms removes rooms past their TTL
func (h *RoomHub) cleanupExpiredRooms() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	for code, session := range h.rooms {
		if now.Sub(session.CreatedAt()) > h.roomTTL {
			delete(h.rooms, code)
			h.logger.Info("expired room cleaned up", "code", code)
		}
	}
}
