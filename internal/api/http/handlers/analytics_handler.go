package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk-service/internal/api/dto"
	"github.com/helpdesk-kit/helpdesk-service/internal/service"
)

// AnalyticsHandler serves admin reporting endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Dashboard GET /api/analytics/dashboard.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.analytics.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{Dashboard: stats}})
}

// AgentStats GET /api/analytics/agents.
func (h *AnalyticsHandler) AgentStats(c *fiber.Ctx) error {
	agents, err := h.analytics.AgentStatistics(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AgentStatsResponse{Agents: agents}})
}

// Trends GET /api/analytics/trends.
func (h *AnalyticsHandler) Trends(c *fiber.Ctx) error {
	trends, err := h.analytics.Trends(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TrendsResponse{Trends: trends}})
}
