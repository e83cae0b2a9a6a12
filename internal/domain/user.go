package domain

import "time"

// UserRole enumerates caller roles.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAgent UserRole = "AGENT"
	UserRoleAdmin UserRole = "ADMIN"
)

// ParseUserRole validates a raw role value at the boundary.
func ParseUserRole(raw string) (UserRole, bool) {
	switch UserRole(raw) {
	case UserRoleUser, UserRoleAgent, UserRoleAdmin:
		return UserRole(raw), true
	}
	return "", false
}

// User is the domain model for requesters, agents and administrators.
// Department, IsAvailable and AssignedTickets only carry meaning for agents;
// AssignedTickets counts currently non-terminal tickets pointing at the
// agent and is maintained incrementally by the assignment engine and the
// terminal-transition path.
type User struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    string
	Role            UserRole
	Department      *TicketCategory
	IsAvailable     bool
	AssignedTickets int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAgent reports whether the user can be the target of an assignment.
func (u *User) IsAgent() bool {
	return u != nil && u.Role == UserRoleAgent
}
