package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketStatusIsTerminal(t *testing.T) {
	assert.False(t, TicketStatusOpen.IsTerminal())
	assert.False(t, TicketStatusInProgress.IsTerminal())
	assert.True(t, TicketStatusResolved.IsTerminal())
	assert.True(t, TicketStatusClosed.IsTerminal())
}

func TestParseTicketStatus(t *testing.T) {
	status, ok := ParseTicketStatus("IN_PROGRESS")
	assert.True(t, ok)
	assert.Equal(t, TicketStatusInProgress, status)

	_, ok = ParseTicketStatus("in_progress")
	assert.False(t, ok)
	_, ok = ParseTicketStatus("PENDING")
	assert.False(t, ok)
}

func TestParseTicketPriority(t *testing.T) {
	priority, ok := ParseTicketPriority("CRITICAL")
	assert.True(t, ok)
	assert.Equal(t, TicketPriorityCritical, priority)

	_, ok = ParseTicketPriority("URGENT")
	assert.False(t, ok)
}

func TestParseTicketCategory(t *testing.T) {
	category, ok := ParseTicketCategory("HR")
	assert.True(t, ok)
	assert.Equal(t, TicketCategoryHR, category)

	_, ok = ParseTicketCategory("FACILITIES")
	assert.False(t, ok)
}

func TestUserIsAgent(t *testing.T) {
	agent := &User{Role: UserRoleAgent}
	assert.True(t, agent.IsAgent())

	assert.False(t, (&User{Role: UserRoleAdmin}).IsAgent())
	assert.False(t, (&User{Role: UserRoleUser}).IsAgent())

	var missing *User
	assert.False(t, missing.IsAgent())
}
