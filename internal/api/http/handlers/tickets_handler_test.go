package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
	"github.com/helpdesk-kit/helpdesk-service/internal/service"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util"
)

func runTicketQuery(t *testing.T, rawQuery string) (service.TicketListFilter, error) {
	t.Helper()
	var (
		filter   service.TicketListFilter
		parseErr error
	)
	app := fiber.New()
	app.Get("/tickets", func(c *fiber.Ctx) error {
		filter, parseErr = parseTicketQuery(c)
		return c.SendStatus(http.StatusOK)
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tickets?"+rawQuery, nil))
	require.NoError(t, err)
	resp.Body.Close()
	return filter, parseErr
}

func TestParseTicketQueryRejectsUnknownValues(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"status", "status=REOPENED"},
		{"priority", "priority=URGENT"},
		{"category", "category=FACILITIES"},
		{"mixed list", "status=OPEN,NOPE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runTicketQuery(t, tc.query)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
		})
	}
}

func TestParseTicketQueryParsesFilters(t *testing.T) {
	filter, err := runTicketQuery(t, "status=OPEN,IN_PROGRESS&priority=HIGH&category=IT&page=2&page_size=10")
	require.NoError(t, err)

	assert.Equal(t, []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusInProgress}, filter.Statuses)
	assert.Equal(t, []domain.TicketPriority{domain.TicketPriorityHigh}, filter.Priorities)
	assert.Equal(t, []domain.TicketCategory{domain.TicketCategoryIT}, filter.Categories)
	assert.Equal(t, 10, filter.Limit)
	assert.Equal(t, 10, filter.Offset)
}

func TestParseTicketQueryDefaultsPaging(t *testing.T) {
	filter, err := runTicketQuery(t, "")
	require.NoError(t, err)
	assert.Equal(t, 20, filter.Limit)
	assert.Equal(t, 0, filter.Offset)

	filter, err = runTicketQuery(t, "page=-3&page_size=abc")
	require.NoError(t, err)
	assert.Equal(t, 20, filter.Limit)
	assert.Equal(t, 0, filter.Offset)
}
