package dto

import "github.com/helpdesk-kit/helpdesk-service/internal/service"

// DashboardResponse wraps the aggregate report; the service output already
// carries JSON tags so the handler passes it through.
type DashboardResponse struct {
	Dashboard *service.DashboardStats `json:"dashboard"`
}

// AgentStatsResponse wraps live per-agent workload.
type AgentStatsResponse struct {
	Agents []service.AgentActivity `json:"agents"`
}

// TrendsResponse wraps per-day creation counts.
type TrendsResponse struct {
	Trends []service.TrendPoint `json:"trends"`
}
