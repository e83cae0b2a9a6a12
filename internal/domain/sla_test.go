package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeSLA(t *testing.T) {
	ref := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		priority TicketPriority
		hours    int
	}{
		{TicketPriorityCritical, 4},
		{TicketPriorityHigh, 8},
		{TicketPriorityMedium, 24},
		{TicketPriorityLow, 48},
	}
	for _, tc := range cases {
		t.Run(string(tc.priority), func(t *testing.T) {
			sla := ComputeSLA(tc.priority, ref)
			assert.Equal(t, tc.hours, sla.Hours)
			assert.Equal(t, ref.Add(time.Duration(tc.hours)*time.Hour), sla.DueDate)
		})
	}
}

func TestComputeSLAUnknownPriorityFallsBack(t *testing.T) {
	ref := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	sla := ComputeSLA(TicketPriority("WHENEVER"), ref)
	assert.Equal(t, 24, sla.Hours)
}
