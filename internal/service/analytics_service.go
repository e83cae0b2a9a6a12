package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/repository"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util"
)

const dashboardCacheKey = "analytics:dashboard"

const trendDayFormat = "2006-01-02"

// DashboardStats is the aggregate report over the full ticket collection.
type DashboardStats struct {
	TotalTickets           int                           `json:"total_tickets"`
	ResolvedTickets        int                           `json:"resolved_tickets"`
	OpenTickets            int                           `json:"open_tickets"`
	ResolutionRate         float64                       `json:"resolution_rate"`
	AvgResolutionTimeHours float64                       `json:"avg_resolution_time_hours"`
	SLAComplianceRate      float64                       `json:"sla_compliance_rate"`
	OverdueTickets         int                           `json:"overdue_tickets"`
	TicketsByStatus        map[domain.TicketStatus]int   `json:"tickets_by_status"`
	TicketsByPriority      map[domain.TicketPriority]int `json:"tickets_by_priority"`
	TicketsByCategory      map[domain.TicketCategory]int `json:"tickets_by_category"`
	AgentPerformance       []AgentPerformance            `json:"agent_performance"`
	RecentTickets          []RecentTicket                `json:"recent_tickets"`
}

// AgentPerformance summarizes one agent's resolved work. Per-ticket
// resolution time is measured from assignment, not creation.
type AgentPerformance struct {
	AgentID                string  `json:"agent_id"`
	AgentName              string  `json:"agent_name,omitempty"`
	AgentEmail             string  `json:"agent_email,omitempty"`
	TicketsResolved        int     `json:"tickets_resolved"`
	AvgResolutionTimeHours float64 `json:"avg_resolution_time_hours"`
}

// RecentTicket is a compact listing entry for the dashboard.
type RecentTicket struct {
	ID        string                `json:"id"`
	Key       string                `json:"key"`
	Title     string                `json:"title"`
	Status    domain.TicketStatus   `json:"status"`
	Priority  domain.TicketPriority `json:"priority"`
	Category  domain.TicketCategory `json:"category"`
	CreatedAt time.Time             `json:"created_at"`
}

// TrendPoint is one day's creation count.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AgentActivity reports live per-agent workload.
type AgentActivity struct {
	AgentID         string                 `json:"agent_id"`
	Name            string                 `json:"name"`
	Email           string                 `json:"email"`
	Department      *domain.TicketCategory `json:"department,omitempty"`
	IsAvailable     bool                   `json:"is_available"`
	ActiveTickets   int                    `json:"active_tickets"`
	ResolvedTickets int                    `json:"resolved_tickets"`
	TotalAssigned   int                    `json:"total_assigned"`
}

// AnalyticsService derives reports from ticket/agent snapshots. All outputs
// are recomputed on demand; the optional redis cache sits in front of the
// computation, never inside it.
type AnalyticsService struct {
	store    repository.Store
	cache    *redis.Client
	cacheTTL time.Duration
	zeroFill bool
	logger   *zap.Logger
	clock    Clock
}

// AnalyticsDependencies bundles collaborators.
type AnalyticsDependencies struct {
	Store         repository.Store
	Cache         *redis.Client
	CacheTTL      time.Duration
	TrendZeroFill bool
	Logger        *zap.Logger
	Clock         Clock
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		store:    deps.Store,
		cache:    deps.Cache,
		cacheTTL: deps.CacheTTL,
		zeroFill: deps.TrendZeroFill,
		logger:   logger,
		clock:    clock,
	}
}

// Dashboard returns the aggregate report, served from cache when fresh.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	if cached := s.cachedDashboard(ctx); cached != nil {
		return cached, nil
	}

	tickets, err := s.store.Tickets().ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := BuildDashboard(tickets, s.clock())
	if err := s.attachAgentIdentities(ctx, stats.AgentPerformance); err != nil {
		return nil, err
	}
	s.storeDashboard(ctx, stats)
	return stats, nil
}

// AgentStatistics reports live per-agent workload from the snapshot.
func (s *AnalyticsService) AgentStatistics(ctx context.Context) ([]AgentActivity, error) {
	role := domain.UserRoleAgent
	agents, err := s.store.Users().List(ctx, repository.UserFilter{Role: &role, Limit: 1000})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tickets, err := s.store.Tickets().ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	active := map[string]int{}
	resolved := map[string]int{}
	for i := range tickets {
		t := &tickets[i]
		if t.AssigneeID == nil {
			continue
		}
		if t.Status.IsTerminal() {
			resolved[*t.AssigneeID]++
		} else {
			active[*t.AssigneeID]++
		}
	}

	result := make([]AgentActivity, 0, len(agents))
	for _, agent := range agents {
		result = append(result, AgentActivity{
			AgentID:         agent.ID,
			Name:            agent.Name,
			Email:           agent.Email,
			Department:      agent.Department,
			IsAvailable:     agent.IsAvailable,
			ActiveTickets:   active[agent.ID],
			ResolvedTickets: resolved[agent.ID],
			TotalAssigned:   agent.AssignedTickets,
		})
	}
	return result, nil
}

// Trends buckets ticket creation per calendar day over the trailing seven
// days.
func (s *AnalyticsService) Trends(ctx context.Context) ([]TrendPoint, error) {
	tickets, err := s.store.Tickets().ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return TrendBuckets(tickets, s.clock(), s.zeroFill), nil
}

// BuildDashboard computes the aggregate stats from a ticket snapshot. Pure;
// agent identities are attached by the caller.
func BuildDashboard(tickets []domain.Ticket, now time.Time) *DashboardStats {
	stats := &DashboardStats{
		TicketsByStatus:   map[domain.TicketStatus]int{},
		TicketsByPriority: map[domain.TicketPriority]int{},
		TicketsByCategory: map[domain.TicketCategory]int{},
	}

	type perfAccum struct {
		count int
		hours float64
	}
	perf := map[string]*perfAccum{}

	var resolved, compliant, timedCount int
	var timedHours float64

	for i := range tickets {
		t := &tickets[i]
		stats.TicketsByStatus[t.Status]++
		stats.TicketsByPriority[t.Priority]++
		stats.TicketsByCategory[t.Category]++

		if t.Status.IsTerminal() {
			resolved++
			if t.ResolvedAt != nil {
				timedHours += t.ResolvedAt.Sub(t.CreatedAt).Hours()
				timedCount++
				if t.ResolvedAt.Before(t.SLA.DueDate) {
					compliant++
				}
				if t.AssigneeID != nil && t.AssignedAt != nil {
					acc := perf[*t.AssigneeID]
					if acc == nil {
						acc = &perfAccum{}
						perf[*t.AssigneeID] = acc
					}
					acc.count++
					acc.hours += t.ResolvedAt.Sub(*t.AssignedAt).Hours()
				}
			}
		} else if t.SLA.DueDate.Before(now) {
			stats.OverdueTickets++
		}
	}

	total := len(tickets)
	stats.TotalTickets = total
	stats.ResolvedTickets = resolved
	stats.OpenTickets = total - resolved
	if total > 0 {
		stats.ResolutionRate = round2(float64(resolved) / float64(total) * 100)
	}
	if timedCount > 0 {
		stats.AvgResolutionTimeHours = round2(timedHours / float64(timedCount))
	}
	if resolved > 0 {
		stats.SLAComplianceRate = round2(float64(compliant) / float64(resolved) * 100)
	}

	stats.AgentPerformance = make([]AgentPerformance, 0, len(perf))
	for agentID, acc := range perf {
		stats.AgentPerformance = append(stats.AgentPerformance, AgentPerformance{
			AgentID:                agentID,
			TicketsResolved:        acc.count,
			AvgResolutionTimeHours: round2(acc.hours / float64(acc.count)),
		})
	}
	sort.Slice(stats.AgentPerformance, func(i, j int) bool {
		if stats.AgentPerformance[i].TicketsResolved != stats.AgentPerformance[j].TicketsResolved {
			return stats.AgentPerformance[i].TicketsResolved > stats.AgentPerformance[j].TicketsResolved
		}
		return stats.AgentPerformance[i].AgentID < stats.AgentPerformance[j].AgentID
	})
	if len(stats.AgentPerformance) > 10 {
		stats.AgentPerformance = stats.AgentPerformance[:10]
	}

	recent := make([]domain.Ticket, len(tickets))
	copy(recent, tickets)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > 10 {
		recent = recent[:10]
	}
	stats.RecentTickets = make([]RecentTicket, 0, len(recent))
	for i := range recent {
		t := &recent[i]
		stats.RecentTickets = append(stats.RecentTickets, RecentTicket{
			ID:        t.ID,
			Key:       t.Key,
			Title:     t.Title,
			Status:    t.Status,
			Priority:  t.Priority,
			Category:  t.Category,
			CreatedAt: t.CreatedAt,
		})
	}
	return stats
}

// TrendBuckets counts tickets created per calendar day across the seven
// days ending today. Days without tickets are omitted unless zeroFill is
// set.
func TrendBuckets(tickets []domain.Ticket, now time.Time, zeroFill bool) []TrendPoint {
	start := now.AddDate(0, 0, -6)
	windowStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	counts := map[string]int{}
	for i := range tickets {
		created := tickets[i].CreatedAt
		if created.Before(windowStart) || created.After(now) {
			continue
		}
		counts[created.Format(trendDayFormat)]++
	}

	if zeroFill {
		points := make([]TrendPoint, 0, 7)
		for d := 0; d < 7; d++ {
			key := windowStart.AddDate(0, 0, d).Format(trendDayFormat)
			points = append(points, TrendPoint{Date: key, Count: counts[key]})
		}
		return points
	}

	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	points := make([]TrendPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, TrendPoint{Date: key, Count: counts[key]})
	}
	return points
}

func (s *AnalyticsService) attachAgentIdentities(ctx context.Context, perf []AgentPerformance) error {
	for i := range perf {
		agent, err := s.store.Users().GetByID(ctx, perf[i].AgentID)
		if err != nil {
			// agent may have been removed since resolution; keep the id
			continue
		}
		perf[i].AgentName = agent.Name
		perf[i].AgentEmail = agent.Email
	}
	return nil
}

func (s *AnalyticsService) cachedDashboard(ctx context.Context) *DashboardStats {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil
	}
	raw, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var stats DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *AnalyticsService) storeDashboard(ctx context.Context, stats *DashboardStats) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
