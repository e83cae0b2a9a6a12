package domain

import "time"

// SLA hours per priority. Tickets breaching DueDate count as overdue.
const (
	slaHoursCritical = 4
	slaHoursHigh     = 8
	slaHoursMedium   = 24
	slaHoursLow      = 48
)

// ComputeSLA maps a priority to its required hours and due timestamp
// relative to ref. Callers validate the priority first; the Medium fallback
// only guards against values that slipped past boundary validation.
func ComputeSLA(priority TicketPriority, ref time.Time) SLA {
	hours := slaHoursMedium
	switch priority {
	case TicketPriorityCritical:
		hours = slaHoursCritical
	case TicketPriorityHigh:
		hours = slaHoursHigh
	case TicketPriorityMedium:
		hours = slaHoursMedium
	case TicketPriorityLow:
		hours = slaHoursLow
	}
	return SLA{
		Hours:   hours,
		DueDate: ref.Add(time.Duration(hours) * time.Hour),
	}
}
