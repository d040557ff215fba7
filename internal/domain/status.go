package domain

// RoomStatus represents the lifecycle state of a room
type RoomStatus string

const (
	// StatusForming means the room is still collecting players
	StatusForming RoomStatus = "forming"

	// StatusAssigned means roles have been handed out; terminal
	StatusAssigned RoomStatus = "assigned"
)

// String returns the string representation of the status
func (s RoomStatus) String() string {
	return string(s)
}
