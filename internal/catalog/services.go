package catalog

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/lexpro/backoffice/internal/cache"
	"github.com/lexpro/backoffice/pkg/models"
	"github.com/lexpro/backoffice/pkg/validation"
)

type ServiceInput struct {
	Name                 string          `json:"name" validate:"required,max=200"`
	Description          string          `json:"description" validate:"max=2000"`
	Category             string          `json:"category" validate:"max=100"`
	BasePrice            decimal.Decimal `json:"base_price" validate:"gte=0"`
	CommissionType       string          `json:"commission_type" validate:"required,oneof=percentage fixed"`
	CommissionPercentage decimal.Decimal `json:"commission_percentage" validate:"gte=0,lte=100"`
	IsActive             *bool           `json:"is_active"`
}

func (in *ServiceInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if in.CommissionType == "" {
		in.CommissionType = string(models.CommissionPercentage)
	}
	if in.CommissionType == string(models.CommissionFixed) {
		in.CommissionPercentage = decimal.Zero
	}
}

func (in ServiceInput) active() bool { return in.IsActive == nil || *in.IsActive }

// FilterServices matches search against name, category and description.
func FilterServices(all []models.LegalService, search string, activeOnly bool) []models.LegalService {
	out := make([]models.LegalService, 0, len(all))
	for _, s := range all {
		if activeOnly && !s.IsActive {
			continue
		}
		if matches(search, s.Name, s.Category, s.Description) {
			out = append(out, s)
		}
	}
	return out
}

// List services
// GET /api/services?search=&active=true
func (h *Handler) ListServices(c *fiber.Ctx) error {
	all, err := cache.Remember(c.UserContext(), h.cache, cache.Services, h.store.ListServices)
	if err != nil {
		return err
	}
	return c.JSON(FilterServices(all, query(c, "search"), c.QueryBool("active")))
}

// Create service
// POST /api/services
func (h *Handler) CreateService(c *fiber.Ctx) error {
	var in ServiceInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.normalize()
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	s := models.LegalService{
		Name:                 in.Name,
		Description:          in.Description,
		Category:             in.Category,
		BasePrice:            in.BasePrice.Round(2),
		CommissionType:       models.CommissionType(in.CommissionType),
		CommissionPercentage: in.CommissionPercentage.Round(2),
		IsActive:             in.active(),
	}
	if err := h.store.CreateService(c.UserContext(), &s); err != nil {
		return err
	}
	h.invalidate(c.UserContext(), cache.Services)
	return c.Status(fiber.StatusCreated).JSON(s)
}

// Update service
// PUT /api/services/:id
// Existing cases keep the amounts they were created with.
func (h *Handler) UpdateService(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in ServiceInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.normalize()
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	s, err := h.store.UpdateService(c.UserContext(), id, map[string]any{
		"name":                  in.Name,
		"description":           in.Description,
		"category":              in.Category,
		"base_price":            in.BasePrice.Round(2),
		"commission_type":       in.CommissionType,
		"commission_percentage": in.CommissionPercentage.Round(2),
		"is_active":             in.active(),
	})
	if err != nil {
		return err
	}
	h.invalidate(c.UserContext(), cache.Services, cache.Cases)
	return c.JSON(s)
}

// Delete service
// DELETE /api/services/:id
// Cases that used it are kept without a service.
func (h *Handler) DeleteService(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteService(c.UserContext(), id); err != nil {
		return err
	}
	h.invalidate(c.UserContext(), cache.Services, cache.Cases)
	return c.SendStatus(fiber.StatusNoContent)
}
