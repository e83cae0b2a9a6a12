package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/helpdesk-kit/helpdesk-service/internal/auth"
	"github.com/helpdesk-kit/helpdesk-service/internal/config"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/events"
	"github.com/helpdesk-kit/helpdesk-service/internal/observability"
	"github.com/helpdesk-kit/helpdesk-service/internal/persistence"
	"github.com/helpdesk-kit/helpdesk-service/internal/repository"
	"github.com/helpdesk-kit/helpdesk-service/internal/service"
)

type seedAccount struct {
	name       string
	email      string
	role       domain.UserRole
	department *domain.TicketCategory
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	store := repository.NewPgxStore(pg.PoolHandle())
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	auths := service.NewAuthService(service.AuthDependencies{
		Store:      store,
		Tokens:     tokens,
		BcryptCost: cfg.Auth.BcryptCost,
	})

	it := domain.TicketCategoryIT
	hr := domain.TicketCategoryHR
	general := domain.TicketCategoryGeneral

	accounts := []seedAccount{
		{name: "Admin", email: "admin@helpdesk.local", role: domain.UserRoleAdmin},
		{name: "Ivy Torres", email: "ivy.torres@helpdesk.local", role: domain.UserRoleAgent, department: &it},
		{name: "Noah Becker", email: "noah.becker@helpdesk.local", role: domain.UserRoleAgent, department: &it},
		{name: "Hanna Osei", email: "hanna.osei@helpdesk.local", role: domain.UserRoleAgent, department: &hr},
		{name: "Greta Lindqvist", email: "greta.lindqvist@helpdesk.local", role: domain.UserRoleAgent, department: &general},
		{name: "Sam Rivera", email: "sam.rivera@helpdesk.local", role: domain.UserRoleUser},
	}

	created := 0
	var requesterID string
	for _, acc := range accounts {
		user, err := auths.ProvisionUser(ctx, service.ProvisionUserInput{
			Name:       acc.name,
			Email:      acc.email,
			Password:   "changeme-123",
			Role:       acc.role,
			Department: acc.department,
		})
		if err != nil {
			logger.Warn("skipping seed account", zap.String("email", acc.email), zap.Error(err))
			continue
		}
		if acc.role == domain.UserRoleUser {
			requesterID = user.ID
		}
		created++
		logger.Info("seeded account", zap.String("email", acc.email), zap.String("role", string(acc.role)))
	}

	seededTickets := 0
	if requesterID != "" {
		dispatcher := events.NewInMemoryDispatcher()
		assignments := service.NewAssignmentService(service.AssignmentDependencies{
			Store:      store,
			Dispatcher: dispatcher,
			Logger:     logger,
		})
		tickets := service.NewTicketService(service.TicketDependencies{
			Store:       store,
			Assignments: assignments,
			Dispatcher:  dispatcher,
			Logger:      logger,
		})

		samples := []service.TicketCreateInput{
			{Title: "Laptop will not boot", Description: "Black screen after the latest update.", Priority: domain.TicketPriorityHigh, Category: domain.TicketCategoryIT},
			{Title: "VPN keeps disconnecting", Description: "Drops every few minutes on home wifi.", Priority: domain.TicketPriorityMedium, Category: domain.TicketCategoryIT},
			{Title: "Payslip missing for August", Description: "No payslip in the portal this month.", Priority: domain.TicketPriorityMedium, Category: domain.TicketCategoryHR},
			{Title: "Desk lamp broken", Description: "Flickers and then dies.", Priority: domain.TicketPriorityLow, Category: domain.TicketCategoryGeneral},
		}
		for _, input := range samples {
			ticket, err := tickets.CreateTicket(ctx, requesterID, input)
			if err != nil {
				logger.Warn("skipping seed ticket", zap.String("title", input.Title), zap.Error(err))
				continue
			}
			seededTickets++
			logger.Info("seeded ticket", zap.String("key", ticket.Key), zap.String("status", string(ticket.Status)))
		}
	}

	logger.Info("seed complete", zap.Int("accounts", created), zap.Int("tickets", seededTickets))
}
