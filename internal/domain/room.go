package domain

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Room is a single coordination unit: a short code, a fixed capacity,
// and the players who have joined so far. Methods are not safe for
// concurrent use; the hub serializes access per room.
type Room struct {
	Code          string     `json:"code"`
	MaxPlayers    int        `json:"maxPlayers"`
	Settings      Settings   `json:"settings"`
	Players       []*Player  `json:"players"`
	Status        RoomStatus `json:"status"`
	UndercoverIdx int        `json:"undercoverIdx"`
	CreatedAt     time.Time  `json:"createdAt"`
	AssignedAt    time.Time  `json:"assignedAt,omitempty"`
}

// NewRoom creates a forming room with no members
func NewRoom(code string, maxPlayers int, settings Settings) *Room {
	return &Room{
		Code:          code,
		MaxPlayers:    maxPlayers,
		Settings:      settings,
		Players:       make([]*Player, 0, maxPlayers),
		Status:        StatusForming,
		UndercoverIdx: -1,
		CreatedAt:     time.Now(),
	}
}

// Full reports whether membership has reached capacity
func (r *Room) Full() bool {
	return len(r.Players) >= r.MaxPlayers
}

// Assigned reports whether roles have been handed out
func (r *Room) Assigned() bool {
	return r.Status == StatusAssigned
}

// FindByToken returns the player holding the given token, or nil
func (r *Room) FindByToken(token string) *Player {
	if token == "" {
		return nil
	}
	for _, p := range r.Players {
		if p.Token == token {
			return p
		}
	}
	return nil
}

// Join adds a session to the room. Joining is idempotent per token: a
// caller presenting an already-issued token gets its existing session
// back and membership does not change. A blank name gets a default
// derived from the join order. The join that brings membership to
// capacity triggers assignment before returning, so the final joiner's
// own view already carries its role.
func (r *Room) Join(name, token string, newPlayer func(name string, order int) *Player) (*Player, error) {
	if existing := r.FindByToken(token); existing != nil {
		return existing, nil
	}

	if r.Assigned() || r.Full() {
		return nil, ErrRoomFull
	}

	name = strings.TrimSpace(name)
	order := len(r.Players) + 1
	if name == "" {
		name = fmt.Sprintf("player-%d", order)
	}

	for _, p := range r.Players {
		if p.Name == name {
			return nil, ErrNameTaken
		}
	}

	player := newPlayer(name, order)
	r.Players = append(r.Players, player)

	if r.Full() {
		if err := r.Assign(); err != nil {
			return nil, err
		}
	}

	return player, nil
}

// Assign runs the assignment engine: exactly one uniformly random
// undercover, a task draw for them, a shuffled lane per player. Runs at
// most once per room; the status flip is the last write so no caller
// holding the room lock can observe assigned status with incomplete
// per-player fields.
func (r *Room) Assign() error {
	if r.Assigned() {
		return ErrAlreadyAssigned
	}

	tasks, err := DrawTasks(r.Settings.TaskCount, r.Settings.MaxSameType)
	if err != nil {
		return err
	}

	undercoverIdx := rand.Intn(len(r.Players))
	lanes := shuffledLanes(len(r.Players))
	now := time.Now()

	for i, p := range r.Players {
		if i == undercoverIdx {
			p.Role = RoleUndercover
			p.Tasks = tasks
		} else {
			p.Role = RoleCrew
			p.Tasks = []Task{}
		}
		p.Lane = lanes[i]
		p.AssignedAt = now
	}

	r.UndercoverIdx = undercoverIdx
	r.AssignedAt = now
	r.Status = StatusAssigned

	return nil
}

// ViewFor returns the room as seen by the holder of the given token.
// Secret fields of other sessions are never included.
func (r *Room) ViewFor(token string) (SessionView, error) {
	me := r.FindByToken(token)
	if me == nil {
		return SessionView{}, ErrUnauthorized
	}

	view := SessionView{
		Status:     r.Status,
		Room:       r.Code,
		Joined:     len(r.Players),
		MaxPlayers: r.MaxPlayers,
		Name:       me.Name,
	}

	if r.Assigned() {
		settings := r.Settings
		view.Role = me.Role
		view.Tasks = me.Tasks
		view.Settings = &settings
		view.Lane = me.Lane
	}

	return view, nil
}

// NormalizeCode canonicalizes a user-typed room code for lookup
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
