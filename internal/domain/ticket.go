package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// IsTerminal reports whether no further agent-load attribution applies.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// ParseTicketStatus validates a raw status value at the boundary.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	switch TicketStatus(raw) {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return TicketStatus(raw), true
	}
	return "", false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// ParseTicketPriority validates a raw priority value at the boundary.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	switch TicketPriority(raw) {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return TicketPriority(raw), true
	}
	return "", false
}

// TicketCategory doubles as the routing department for auto-assignment.
type TicketCategory string

const (
	TicketCategoryIT      TicketCategory = "IT"
	TicketCategoryHR      TicketCategory = "HR"
	TicketCategoryGeneral TicketCategory = "GENERAL"
)

// ParseTicketCategory validates a raw category value at the boundary.
func ParseTicketCategory(raw string) (TicketCategory, bool) {
	switch TicketCategory(raw) {
	case TicketCategoryIT, TicketCategoryHR, TicketCategoryGeneral:
		return TicketCategory(raw), true
	}
	return "", false
}

// SLA is the deadline snapshot stamped onto a ticket by the policy.
type SLA struct {
	Hours   int
	DueDate time.Time
}

// Comment is one entry in a ticket's append-only comment log.
type Comment struct {
	ID        string
	AuthorID  string
	Text      string
	CreatedAt time.Time
}

// Ticket is the aggregate for support requests. The comment log and the SLA
// snapshot are owned by the ticket; requester and assignee are referenced by
// id only.
type Ticket struct {
	ID          string
	Key         string
	RequesterID string
	AssigneeID  *string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Category    TicketCategory
	SLA         SLA
	AssignedAt  *time.Time
	ResolvedAt  *time.Time
	Comments    []Comment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
