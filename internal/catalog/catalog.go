// Package catalog serves the reference data cases are built from:
// lawyers, legal services and clients.
package catalog

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lexpro/backoffice/internal/cache"
	"github.com/lexpro/backoffice/pkg/models"
)

// Store is the catalog slice of the persistence gateway.
type Store interface {
	ListLawyers(ctx context.Context) ([]models.Lawyer, error)
	CreateLawyer(ctx context.Context, l *models.Lawyer) error
	UpdateLawyer(ctx context.Context, id uuid.UUID, fields map[string]any) (models.Lawyer, error)
	DeleteLawyer(ctx context.Context, id uuid.UUID) error

	ListServices(ctx context.Context) ([]models.LegalService, error)
	CreateService(ctx context.Context, s *models.LegalService) error
	UpdateService(ctx context.Context, id uuid.UUID, fields map[string]any) (models.LegalService, error)
	DeleteService(ctx context.Context, id uuid.UUID) error

	ListClients(ctx context.Context) ([]models.Client, error)
	CreateClient(ctx context.Context, c *models.Client) error
}

type Handler struct {
	store Store
	cache *cache.Cache
}

func NewHandler(store Store, c *cache.Cache) *Handler {
	return &Handler{store: store, cache: c}
}

// invalidate drops keys and the dashboard.
func (h *Handler) invalidate(ctx context.Context, keys ...cache.Key) {
	h.cache.Invalidate(context.WithoutCancel(ctx), append(keys, cache.Dashboard)...)
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func matches(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func query(c *fiber.Ctx, key string) string {
	return strings.ToLower(strings.TrimSpace(c.Query(key)))
}
