package client

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"undercover/internal/domain"
)

// DefaultPollInterval is the fixed polling cadence
const DefaultPollInterval = 2 * time.Second

// ErrValidation is rejected locally, before anything is sent
var ErrValidation = errors.New("name and room code are required")

// State is the sync loop's position in its lifecycle
type State string

const (
	StateUnjoined  State = "unjoined"
	StateRestoring State = "restoring"
	StateWaiting   State = "waiting"
	StateAssigned  State = "assigned"
)

// Snapshot is the loop's current view, handed to OnChange observers
type Snapshot struct {
	State    State
	View     domain.SessionView
	Revealed bool
}

// SyncLoop is the per-device polling state machine: it joins a room,
// queries its own status every tick until assigned, then stops for
// good. Transient polling failures are dropped silently and retried at
// the next interval; only user-initiated calls surface errors.
type SyncLoop struct {
	api      *API
	store    Store
	logger   *slog.Logger
	Interval time.Duration

	// OnChange, if set before the first call, observes every state
	// change. Called without the loop's lock held.
	OnChange func(Snapshot)

	mu       sync.Mutex
	state    State
	id       Identity
	view     domain.SessionView
	revealed bool
	stop     chan struct{}
}

// NewSyncLoop creates a sync loop in the unjoined state
func NewSyncLoop(api *API, store Store, logger *slog.Logger) *SyncLoop {
	return &SyncLoop{
		api:      api,
		store:    store,
		logger:   logger,
		Interval: DefaultPollInterval,
		state:    StateUnjoined,
	}
}

// Snapshot returns the loop's current state
func (l *SyncLoop) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Join joins a room, caches the issued identity, and starts polling.
// Empty inputs are rejected locally and never sent.
func (l *SyncLoop) Join(ctx context.Context, name, code string) error {
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)
	if name == "" || code == "" {
		return ErrValidation
	}

	res, err := l.api.Join(ctx, name, code, "")
	if err != nil {
		return err
	}

	id := Identity{Name: res.Name, Code: res.Room, Token: res.Token}
	if err := l.store.Save(id); err != nil {
		l.logger.Warn("failed to persist session", "error", err)
	}

	l.mu.Lock()
	l.id = id
	l.view = res.SessionView
	l.revealed = false
	if res.Assigned() {
		l.state = StateAssigned
		l.stopPollingLocked()
	} else {
		l.state = StateWaiting
		l.startPollingLocked()
	}
	snap := l.snapshotLocked()
	l.mu.Unlock()

	l.notify(snap)
	return nil
}

// Restore resumes a cached session after a reload: re-enter waiting
// optimistically, fire one immediate status call, start the timer. No
// new session is created server-side. Returns false on a fresh device.
func (l *SyncLoop) Restore(ctx context.Context) (bool, error) {
	id, ok, err := l.store.Load()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	l.mu.Lock()
	l.state = StateRestoring
	l.id = id
	l.view = domain.SessionView{
		Status: domain.StatusForming,
		Room:   id.Code,
		Name:   id.Name,
	}
	restoring := l.snapshotLocked()
	l.mu.Unlock()
	l.notify(restoring)

	l.mu.Lock()
	l.state = StateWaiting
	l.startPollingLocked()
	snap := l.snapshotLocked()
	l.mu.Unlock()
	l.notify(snap)

	// One immediate query so an already-assigned room is picked up
	// without waiting a full interval. Failures here are transient.
	if view, err := l.api.Status(ctx, id.Code, id.Token); err == nil {
		l.apply(id, view)
	}

	return true, nil
}

// Reveal is the user's reveal action. Once assigned it only toggles a
// local display flag, nothing is transmitted. Before assignment it
// acts as a manual refresh outside the timer cadence, and unlike a
// timer tick its failure is surfaced.
func (l *SyncLoop) Reveal(ctx context.Context) error {
	l.mu.Lock()
	if l.state == StateAssigned {
		l.revealed = !l.revealed
		snap := l.snapshotLocked()
		l.mu.Unlock()
		l.notify(snap)
		return nil
	}
	if l.state != StateWaiting {
		l.mu.Unlock()
		return nil
	}
	id := l.id
	l.mu.Unlock()

	view, err := l.api.Status(ctx, id.Code, id.Token)
	if err != nil {
		return err
	}
	l.apply(id, view)
	return nil
}

// Reset discards the session: clears the cache, stops the timer
// unconditionally, returns to unjoined. The server record is untouched.
func (l *SyncLoop) Reset() error {
	l.mu.Lock()
	l.stopPollingLocked()
	l.state = StateUnjoined
	l.id = Identity{}
	l.view = domain.SessionView{}
	l.revealed = false
	snap := l.snapshotLocked()
	l.mu.Unlock()

	err := l.store.Clear()
	l.notify(snap)
	return err
}

// startPollingLocked starts the poll goroutine, always cancelling any
// prior one first so two timers are never alive concurrently
func (l *SyncLoop) startPollingLocked() {
	l.stopPollingLocked()
	stop := make(chan struct{})
	l.stop = stop
	go l.poll(stop)
}

func (l *SyncLoop) stopPollingLocked() {
	if l.stop != nil {
		close(l.stop)
		l.stop = nil
	}
}

// poll runs the fixed-cadence status timer until stopped or assigned
func (l *SyncLoop) poll(stop chan struct{}) {
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if l.tick() {
				return
			}
		}
	}
}

// tick performs one status query. Returns true when polling should end.
// Errors are dropped on the floor: the next tick simply tries again.
func (l *SyncLoop) tick() bool {
	l.mu.Lock()
	if l.state != StateWaiting {
		l.mu.Unlock()
		return true
	}
	id := l.id
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), l.Interval)
	defer cancel()

	view, err := l.api.Status(ctx, id.Code, id.Token)
	if err != nil {
		return false
	}

	return l.apply(id, view)
}

// apply installs a status response, but only if the local identity
// still matches the one the request was made for; a stale response
// arriving after a reset or re-join is discarded. Returns true once
// the session is assigned.
func (l *SyncLoop) apply(id Identity, view domain.SessionView) bool {
	l.mu.Lock()
	if l.id.Code != id.Code || l.id.Token != id.Token {
		l.mu.Unlock()
		return true
	}

	l.view = view
	done := view.Assigned()
	if done && l.state != StateAssigned {
		l.state = StateAssigned
		l.stopPollingLocked()
	}
	snap := l.snapshotLocked()
	l.mu.Unlock()

	l.notify(snap)
	return done
}

func (l *SyncLoop) snapshotLocked() Snapshot {
	return Snapshot{State: l.state, View: l.view, Revealed: l.revealed}
}

func (l *SyncLoop) notify(snap Snapshot) {
	if l.OnChange != nil {
		l.OnChange(snap)
	}
}
