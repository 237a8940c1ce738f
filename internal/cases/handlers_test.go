package cases_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lexpro/backoffice/internal/auth"
	"github.com/lexpro/backoffice/internal/cases"
	"github.com/lexpro/backoffice/pkg/models"
)

type staticLister []models.Case

func (l staticLister) Cases(context.Context) ([]models.Case, error) { return l, nil }

func TestHandler_List_Paging(t *testing.T) {
	all := make(staticLister, 0, 25)
	for i := 1; i <= 25; i++ {
		all = append(all, models.Case{ID: uuid.New(), CaseNumber: fmt.Sprintf("2024-%04d", i), Status: models.CaseActive})
	}
	app := fiber.New(fiber.Config{ErrorHandler: auth.NewErrorHandler(zap.NewNop())})
	app.Get("/api/cases", cases.NewHandler(nil, all).List)

	tests := []struct {
		query string
		items int
		page  int
	}{
		{"?page=1&pageSize=10", 10, 1},
		{"?page=3&pageSize=10", 5, 3},
		{"?page=4&pageSize=10", 0, 4},
		{"?page=922337203685477581&pageSize=10", 0, 922337203685477581},
		{"?page=-3", 20, 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", "/api/cases"+tt.query, nil), -1)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			var body cases.PageCases
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Len(t, body.Items, tt.items)
			assert.Equal(t, tt.page, body.Page)
			assert.EqualValues(t, 25, body.Total)
		})
	}
}
