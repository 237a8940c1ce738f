package catalog

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lexpro/backoffice/internal/cache"
	"github.com/lexpro/backoffice/pkg/models"
	"github.com/lexpro/backoffice/pkg/validation"
)

type ClientInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"omitempty,email,max=255"`
	Phone   string `json:"phone" validate:"max=40"`
	Company string `json:"company" validate:"max=200"`
	Address string `json:"address" validate:"max=500"`
}

// List clients
// GET /api/clients?search=
func (h *Handler) ListClients(c *fiber.Ctx) error {
	all, err := cache.Remember(c.UserContext(), h.cache, cache.Clients, h.store.ListClients)
	if err != nil {
		return err
	}
	q := query(c, "search")
	out := make([]models.Client, 0, len(all))
	for _, cl := range all {
		if matches(q, cl.Name, cl.Email, cl.Company) {
			out = append(out, cl)
		}
	}
	return c.JSON(out)
}

// Create client
// POST /api/clients
func (h *Handler) CreateClient(c *fiber.Ctx) error {
	var in ClientInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	cl := models.Client{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   strings.TrimSpace(in.Phone),
		Company: strings.TrimSpace(in.Company),
		Address: strings.TrimSpace(in.Address),
	}
	if err := h.store.CreateClient(c.UserContext(), &cl); err != nil {
		return err
	}
	h.invalidate(c.UserContext(), cache.Clients)
	return c.Status(fiber.StatusCreated).JSON(cl)
}
