// Package domain holds the staff member types shared by presence,
// assignment and the lead workflow.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a staff member's function in the sales team.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleSales     Role = "sales"
	RoleAfterCare Role = "after_care"
)

// Roles lists every valid role code.
var Roles = []Role{RoleAdmin, RoleSales, RoleAfterCare}

// Valid reports whether r is a known role code.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSales, RoleAfterCare:
		return true
	}
	return false
}

// State is the stored presence flag. It is not the derived online value:
// a member whose state is online but whose heartbeat is stale is offline.
type State string

const (
	StateOnline  State = "online"
	StateOffline State = "offline"
)

// Valid reports whether s is a known state code.
func (s State) Valid() bool {
	return s == StateOnline || s == StateOffline
}

// Staff is one member of the team.
type Staff struct {
	ID           uuid.UUID
	FullName     string
	Email        string
	Role         Role
	AvatarURL    string
	Status       State
	LastActiveAt *time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the member has the admin role.
func (s Staff) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Actor is the {id, role} identity every workflow call carries.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
