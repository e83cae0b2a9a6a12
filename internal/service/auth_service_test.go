package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpdesk-kit/helpdesk-service/internal/auth"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util"
)

func newAuthEnv(t *testing.T) (*AuthService, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := NewAuthService(AuthDependencies{
		Store:      store,
		Tokens:     auth.NewTokenManager("test-secret", 60),
		BcryptCost: bcrypt.MinCost,
	})
	return svc, store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthEnv(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, "Sam Rivera", "Sam.Rivera@Helpdesk.local", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleUser, result.User.Role)
	assert.Equal(t, "sam.rivera@helpdesk.local", result.User.Email)
	assert.NotEmpty(t, result.Token)

	// duplicate email, case-insensitive
	_, err = svc.Register(ctx, "Sam Again", "sam.rivera@helpdesk.local", "hunter2hunter2")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	logged, err := svc.Login(ctx, "sam.rivera@helpdesk.local", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, logged.User.ID)

	_, err = svc.Login(ctx, "sam.rivera@helpdesk.local", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	_, err = svc.Login(ctx, "nobody@helpdesk.local", "hunter2hunter2")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthEnv(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "a@b.c", "longenough")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = svc.Register(ctx, "Sam", "a@b.c", "short")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestProvisionUser(t *testing.T) {
	svc, store := newAuthEnv(t)
	ctx := context.Background()

	it := domain.TicketCategoryIT
	agent, err := svc.ProvisionUser(ctx, ProvisionUserInput{
		Name:       "Ivy Torres",
		Email:      "ivy@helpdesk.local",
		Password:   "longenough",
		Role:       domain.UserRoleAgent,
		Department: &it,
	})
	require.NoError(t, err)
	assert.True(t, agent.IsAvailable)
	assert.Equal(t, 0, agent.AssignedTickets)

	stored, err := store.Users().GetByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleAgent, stored.Role)

	// agents require a department
	_, err = svc.ProvisionUser(ctx, ProvisionUserInput{
		Name:     "No Dept",
		Email:    "nodept@helpdesk.local",
		Password: "longenough",
		Role:     domain.UserRoleAgent,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	// unknown role rejected
	_, err = svc.ProvisionUser(ctx, ProvisionUserInput{
		Name:     "Bad Role",
		Email:    "badrole@helpdesk.local",
		Password: "longenough",
		Role:     "SUPERVISOR",
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}
