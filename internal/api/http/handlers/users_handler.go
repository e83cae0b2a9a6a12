package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk-service/internal/api/dto"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/repository"
	"github.com/helpdesk-kit/helpdesk-service/internal/service"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util"
)

// UsersHandler manages accounts and the agent directory.
type UsersHandler struct {
	auths       *service.AuthService
	assignments *service.AssignmentService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(auths *service.AuthService, assignments *service.AssignmentService) *UsersHandler {
	return &UsersHandler{auths: auths, assignments: assignments}
}

// Register POST /api/auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.auths.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": authResponse(result)})
}

// Login POST /api/auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.auths.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(result)})
}

// CreateUser POST /api/users.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.auths.ProvisionUser(c.UserContext(), service.ProvisionUserInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Department: req.Department,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// ListUsers GET /api/users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	filter := repository.UserFilter{Limit: parseInt(c.Query("page_size"), 50)}
	filter.Offset = (parseInt(c.Query("page"), 1) - 1) * filter.Limit
	if roleStr := c.Query("role"); roleStr != "" {
		role, ok := domain.ParseUserRole(strings.ToUpper(roleStr))
		if !ok {
			return apperrors.NewValidationError("invalid role", map[string]any{"role": roleStr})
		}
		filter.Role = &role
	}
	users, err := h.auths.ListUsers(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(users)})
}

// ListAgents GET /api/users/agents.
func (h *UsersHandler) ListAgents(c *fiber.Ctx) error {
	filter := repository.AgentFilter{}
	if deptStr := c.Query("department"); deptStr != "" {
		dept, ok := domain.ParseTicketCategory(strings.ToUpper(deptStr))
		if !ok {
			return apperrors.NewValidationError("invalid department", map[string]any{"department": deptStr})
		}
		filter.Department = &dept
	}
	if availStr := c.Query("available"); availStr != "" {
		available := availStr == "true"
		filter.Available = &available
	}
	agents, err := h.assignments.ListAgents(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(agents)})
}

// SetAvailability PUT /api/users/agents/:id/availability.
func (h *UsersHandler) SetAvailability(c *fiber.Ctx) error {
	var req dto.SetAvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	agent, err := h.assignments.SetAgentAvailability(c.UserContext(), c.Params("id"), req.Available)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(agent)})
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      userResponse(result.User),
	}
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		Department:      user.Department,
		IsAvailable:     user.IsAvailable,
		AssignedTickets: user.AssignedTickets,
		CreatedAt:       user.CreatedAt,
	}
}

func userResponses(users []domain.User) []dto.UserResponse {
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return items
}
