package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

func ts(base time.Time, offset time.Duration) *time.Time {
	t := base.Add(offset)
	return &t
}

func TestBuildDashboardEmpty(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	stats := BuildDashboard(nil, now)

	assert.Equal(t, 0, stats.TotalTickets)
	assert.Equal(t, 0.0, stats.ResolutionRate)
	assert.Equal(t, 0.0, stats.SLAComplianceRate)
	assert.Equal(t, 0.0, stats.AvgResolutionTimeHours)
	assert.Empty(t, stats.AgentPerformance)
	assert.Empty(t, stats.RecentTickets)
}

func TestBuildDashboardRates(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	created := now.Add(-24 * time.Hour)
	agent := "agent-1"

	tickets := []domain.Ticket{
		{
			ID: "t1", Status: domain.TicketStatusResolved,
			Priority: domain.TicketPriorityHigh, Category: domain.TicketCategoryIT,
			AssigneeID: &agent,
			CreatedAt:  created,
			AssignedAt: ts(created, time.Hour),
			ResolvedAt: ts(created, 3*time.Hour),
			SLA:        domain.SLA{Hours: 8, DueDate: created.Add(8 * time.Hour)},
		},
		{
			ID: "t2", Status: domain.TicketStatusClosed,
			Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryHR,
			AssigneeID: &agent,
			CreatedAt:  created,
			AssignedAt: ts(created, time.Hour),
			ResolvedAt: ts(created, 50*time.Hour),
			SLA:        domain.SLA{Hours: 48, DueDate: created.Add(48 * time.Hour)},
		},
		{
			ID: "t3", Status: domain.TicketStatusOpen,
			Priority: domain.TicketPriorityMedium, Category: domain.TicketCategoryIT,
			CreatedAt: now.Add(-25 * time.Hour),
			SLA:       domain.SLA{Hours: 24, DueDate: now.Add(-time.Hour)},
		},
	}

	stats := BuildDashboard(tickets, now)

	assert.Equal(t, 3, stats.TotalTickets)
	assert.Equal(t, 2, stats.ResolvedTickets)
	assert.Equal(t, 1, stats.OpenTickets)
	assert.InDelta(t, 66.67, stats.ResolutionRate, 0.001)
	// one of two resolved within its deadline
	assert.InDelta(t, 50.0, stats.SLAComplianceRate, 0.001)
	// (3h + 50h) / 2 measured from creation
	assert.InDelta(t, 26.5, stats.AvgResolutionTimeHours, 0.001)
	// t3 is open and past its 24h deadline
	assert.Equal(t, 1, stats.OverdueTickets)

	assert.Equal(t, 1, stats.TicketsByStatus[domain.TicketStatusOpen])
	assert.Equal(t, 2, stats.TicketsByPriority[domain.TicketPriorityHigh]+
		stats.TicketsByPriority[domain.TicketPriorityLow])
	assert.Equal(t, 2, stats.TicketsByCategory[domain.TicketCategoryIT])
}

func TestBuildDashboardSLAComplianceBoundary(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	created := now.Add(-10 * time.Hour)
	due := created.Add(4 * time.Hour)

	exactlyAtDeadline := []domain.Ticket{{
		ID: "t1", Status: domain.TicketStatusResolved,
		CreatedAt:  created,
		ResolvedAt: &due,
		SLA:        domain.SLA{Hours: 4, DueDate: due},
	}}
	stats := BuildDashboard(exactlyAtDeadline, now)
	// resolution at the deadline is not compliant; the bound is strict
	assert.Equal(t, 0.0, stats.SLAComplianceRate)

	justBefore := []domain.Ticket{{
		ID: "t1", Status: domain.TicketStatusResolved,
		CreatedAt:  created,
		ResolvedAt: ts(created, 4*time.Hour-time.Second),
		SLA:        domain.SLA{Hours: 4, DueDate: due},
	}}
	stats = BuildDashboard(justBefore, now)
	assert.Equal(t, 100.0, stats.SLAComplianceRate)
}

func TestBuildDashboardAgentPerformance(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	created := now.Add(-48 * time.Hour)

	var tickets []domain.Ticket
	// eleven agents with descending resolution counts, all measured from
	// assignment rather than creation
	for i := 0; i < 11; i++ {
		agentID := fmt.Sprintf("agent-%02d", i)
		for n := 0; n <= i; n++ {
			tickets = append(tickets, domain.Ticket{
				ID: fmt.Sprintf("t-%s-%d", agentID, n), Status: domain.TicketStatusResolved,
				AssigneeID: &agentID,
				CreatedAt:  created,
				AssignedAt: ts(created, 2*time.Hour),
				ResolvedAt: ts(created, 4*time.Hour),
				SLA:        domain.SLA{Hours: 48, DueDate: created.Add(48 * time.Hour)},
			})
		}
	}

	stats := BuildDashboard(tickets, now)

	require.Len(t, stats.AgentPerformance, 10)
	assert.Equal(t, "agent-10", stats.AgentPerformance[0].AgentID)
	assert.Equal(t, 11, stats.AgentPerformance[0].TicketsResolved)
	// agent-00 (single resolution) fell off the top ten
	for _, perf := range stats.AgentPerformance {
		assert.NotEqual(t, "agent-00", perf.AgentID)
		assert.InDelta(t, 2.0, perf.AvgResolutionTimeHours, 0.001)
	}
}

func TestTrendBucketsWindow(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		{ID: "today", CreatedAt: now.Add(-time.Hour)},
		{ID: "today-2", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "six-days-ago", CreatedAt: now.AddDate(0, 0, -6)},
		{ID: "eight-days-ago", CreatedAt: now.AddDate(0, 0, -8)},
	}

	points := TrendBuckets(tickets, now, false)
	require.Len(t, points, 2)
	assert.Equal(t, "2026-01-09", points[0].Date)
	assert.Equal(t, 1, points[0].Count)
	assert.Equal(t, "2026-01-15", points[1].Date)
	assert.Equal(t, 2, points[1].Count)
}

func TestTrendBucketsZeroFill(t *testing.T) {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		{ID: "today", CreatedAt: now.Add(-time.Hour)},
	}

	points := TrendBuckets(tickets, now, true)
	require.Len(t, points, 7)
	assert.Equal(t, "2026-01-09", points[0].Date)
	assert.Equal(t, 0, points[0].Count)
	assert.Equal(t, "2026-01-15", points[6].Date)
	assert.Equal(t, 1, points[6].Count)

	total := 0
	for _, p := range points {
		total += p.Count
	}
	assert.Equal(t, 1, total)
}

func TestAnalyticsServiceDashboard(t *testing.T) {
	env := newSvcEnv(t)
	agent := env.seedAgent(t, "ivy", domain.TicketCategoryIT, 0, true)
	ctx := context.Background()

	ticket := env.createTicket(t, domain.TicketPriorityHigh, domain.TicketCategoryIT)
	env.clock.Advance(time.Hour)
	_, err := env.tickets.UpdateStatus(ctx, "admin-1", ticket.ID, domain.TicketStatusResolved)
	require.NoError(t, err)

	analytics := NewAnalyticsService(AnalyticsDependencies{
		Store: env.store,
		Clock: env.clock.Now,
	})

	stats, err := analytics.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTickets)
	assert.Equal(t, 100.0, stats.ResolutionRate)
	require.Len(t, stats.AgentPerformance, 1)
	assert.Equal(t, agent.ID, stats.AgentPerformance[0].AgentID)
	assert.Equal(t, "ivy", stats.AgentPerformance[0].AgentName)
	require.Len(t, stats.RecentTickets, 1)
	assert.Equal(t, ticket.ID, stats.RecentTickets[0].ID)
}

func TestAnalyticsServiceAgentStatistics(t *testing.T) {
	env := newSvcEnv(t)
	agent := env.seedAgent(t, "ivy", domain.TicketCategoryIT, 0, true)
	ctx := context.Background()

	first := env.createTicket(t, domain.TicketPriorityHigh, domain.TicketCategoryIT)
	env.createTicket(t, domain.TicketPriorityHigh, domain.TicketCategoryIT)
	_, err := env.tickets.UpdateStatus(ctx, "admin-1", first.ID, domain.TicketStatusResolved)
	require.NoError(t, err)

	analytics := NewAnalyticsService(AnalyticsDependencies{
		Store: env.store,
		Clock: env.clock.Now,
	})

	activity, err := analytics.AgentStatistics(ctx)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, agent.ID, activity[0].AgentID)
	assert.Equal(t, 1, activity[0].ActiveTickets)
	assert.Equal(t, 1, activity[0].ResolvedTickets)
	assert.Equal(t, 1, activity[0].TotalAssigned)
}
