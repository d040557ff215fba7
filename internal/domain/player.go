package domain

import "time"

// Player represents one session in a room. The Token is the device's
// private handle; Role, Tasks and Lane are written once by assignment
// and never mutated afterwards.
type Player struct {
	ID         string    `json:"id"`
	Token      string    `json:"-"` // never expose in JSON
	Name       string    `json:"name"`
	Order      int       `json:"order"`
	JoinedAt   time.Time `json:"joinedAt"`
	Role       Role      `json:"role,omitempty"`
	Tasks      []Task    `json:"tasks,omitempty"`
	Lane       string    `json:"lane,omitempty"`
	AssignedAt time.Time `json:"assignedAt,omitempty"`
}

// NewPlayer creates a new player with the given identity and join order
func NewPlayer(id, token, name string, order int) *Player {
	return &Player{
		ID:       id,
		Token:    token,
		Name:     name,
		Order:    order,
		JoinedAt: time.Now(),
	}
}

// SessionView is what a session is allowed to see about the room: the
// shared lobby state plus its own secret fields, never anyone else's.
type SessionView struct {
	Status     RoomStatus `json:"status"`
	Room       string     `json:"room"`
	Joined     int        `json:"joined"`
	MaxPlayers int        `json:"maxPlayers"`
	Name       string     `json:"name"`
	Role       Role       `json:"role,omitempty"`
	Tasks      []Task     `json:"tasks,omitempty"`
	Settings   *Settings  `json:"settings,omitempty"`
	Lane       string     `json:"lane,omitempty"`
}

// Assigned reports whether the view carries an assignment
func (v SessionView) Assigned() bool {
	return v.Status == StatusAssigned
}
