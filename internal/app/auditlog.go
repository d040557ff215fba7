package app

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"undercover/internal/domain"
)

// AuditLog appends one JSONL record per player at assignment time, so
// an admin can review who was the undercover and which tasks they drew.
type AuditLog struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// auditRecord is a single assignment log line
type auditRecord struct {
	TS       int64           `json:"ts"`
	Room     string          `json:"room"`
	Name     string          `json:"name"`
	Role     domain.Role     `json:"role"`
	Lane     string          `json:"lane"`
	Tasks    []domain.Task   `json:"tasks"`
	Settings domain.Settings `json:"settings"`
}

// NewAuditLog creates an audit log writing to path. An empty path
// disables logging entirely.
func NewAuditLog(path string, logger *slog.Logger) *AuditLog {
	return &AuditLog{path: path, logger: logger}
}

// RecordAssignment writes one line per player in the room. Failures are
// logged and swallowed; the assignment itself must never depend on the
// audit trail.
func (l *AuditLog) RecordAssignment(room *domain.Room) {
	if l == nil || l.path == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		l.logger.Warn("audit log directory", "error", err)
		return
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.logger.Warn("audit log open", "error", err)
		return
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	ts := time.Now().UnixMilli()

	for _, p := range room.Players {
		rec := auditRecord{
			TS:       ts,
			Room:     room.Code,
			Name:     p.Name,
			Role:     p.Role,
			Lane:     p.Lane,
			Tasks:    p.Tasks,
			Settings: room.Settings,
		}
		if err := enc.Encode(rec); err != nil {
			l.logger.Warn("audit log write", "error", err)
			return
		}
	}
}
