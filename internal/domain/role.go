package domain

// Role represents a player's hidden role for the match
type Role string

const (
	RoleUndercover Role = "UNDERCOVER"
	RoleCrew       Role = "CREW"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsUndercover returns true if this role is the undercover
func (r Role) IsUndercover() bool {
	return r == RoleUndercover
}
