// Package ws exposes a one-way lobby watch socket: it pushes the
// non-secret room state (joined count, capacity, status) so a shared
// screen can show the lobby filling up. Per-device synchronization
// stays on the polling endpoints; this socket never carries roles,
// tasks or lanes.
package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"undercover/internal/app"
	"undercover/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Send pings to peer with this period
	pingPeriod = 30 * time.Second

	// How often the lobby state is pushed
	pushPeriod = time.Second
)

// Handler handles lobby watch WebSocket connections
type Handler struct {
	hub      *app.RoomHub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new lobby watch handler
func NewHandler(hub *app.RoomHub, logger *slog.Logger) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the connection and streams public lobby state
// until the room is assigned or the peer goes away
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "code is required", http.StatusBadRequest)
		return
	}

	session, err := h.hub.GetRoom(code)
	if err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	done := make(chan struct{})
	go h.readLoop(conn, done)
	h.writeLoop(conn, session, done)
}

// readLoop drains the connection so control frames are processed and
// peer closure is noticed
func (h *Handler) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop pushes lobby state on a ticker. The final push after the
// room flips to assigned is followed by a normal close.
func (h *Handler) writeLoop(conn *websocket.Conn, session *app.RoomSession, done chan struct{}) {
	pushTicker := time.NewTicker(pushPeriod)
	pingTicker := time.NewTicker(pingPeriod)
	defer func() {
		pushTicker.Stop()
		pingTicker.Stop()
		conn.Close()
	}()

	if !h.push(conn, session) {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-pushTicker.C:
			if !h.push(conn, session) {
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// push writes the current public state; returns false when the stream
// should end
func (h *Handler) push(conn *websocket.Conn, session *app.RoomSession) bool {
	state := session.Public()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(state); err != nil {
		h.logger.Debug("websocket write failed", "error", err)
		return false
	}

	if state.Status == domain.StatusAssigned {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "assigned"))
		return false
	}

	return true
}
