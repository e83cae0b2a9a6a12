package dto

import (
	"time"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// CreateUserRequest is the admin provisioning payload.
type CreateUserRequest struct {
	Name       string                 `json:"name"`
	Email      string                 `json:"email"`
	Password   string                 `json:"password"`
	Role       domain.UserRole        `json:"role"`
	Department *domain.TicketCategory `json:"department"`
}

// SetAvailabilityRequest payload.
type SetAvailabilityRequest struct {
	Available bool `json:"available"`
}

// UserResponse represents an account without credentials.
type UserResponse struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Email           string                 `json:"email"`
	Role            domain.UserRole        `json:"role"`
	Department      *domain.TicketCategory `json:"department,omitempty"`
	IsAvailable     bool                   `json:"is_available"`
	AssignedTickets int                    `json:"assigned_tickets"`
	CreatedAt       time.Time              `json:"created_at"`
}
