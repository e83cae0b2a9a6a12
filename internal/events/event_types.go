package events

import (
	"time"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketResolved      EventType = "ticket_resolved"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	TicketKey string      `json:"ticket_key"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	RequesterID string                `json:"requester_id"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
	Title       string                `json:"title"`
	SLAHours    int                   `json:"sla_hours"`
	DueDate     time.Time             `json:"due_date"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AgentID    string    `json:"agent_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	RequesterID string              `json:"requester_id"`
	AgentID     *string             `json:"agent_id,omitempty"`
	Status      domain.TicketStatus `json:"status"`
	ResolvedAt  time.Time           `json:"resolved_at"`
}
