package catalog

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"github.com/lexpro/backoffice/internal/cache"
	"github.com/lexpro/backoffice/pkg/apperrors"
	"github.com/lexpro/backoffice/pkg/models"
	"github.com/lexpro/backoffice/pkg/validation"
)

type LawyerInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Email       string   `json:"email" validate:"omitempty,email,max=255"`
	Phone       string   `json:"phone" validate:"max=40"`
	Specialties []string `json:"specialties" validate:"max=20,dive,required,max=80"`
	Status      string   `json:"status" validate:"omitempty,oneof=active inactive"`
	HireDate    string   `json:"hire_date" validate:"isodate"`
}

func (in *LawyerInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	for i := range in.Specialties {
		in.Specialties[i] = strings.TrimSpace(in.Specialties[i])
	}
	if in.Status == "" {
		in.Status = string(models.LawyerActive)
	}
}

func (in LawyerInput) hireDate() *time.Time {
	if in.HireDate == "" {
		return nil
	}
	t, _ := time.Parse("2006-01-02", in.HireDate)
	return &t
}

func (in LawyerInput) specialties() datatypes.JSONSlice[string] {
	if in.Specialties == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](in.Specialties)
}

// FilterLawyers matches search against name, email and specialties.
func FilterLawyers(all []models.Lawyer, search, status string) []models.Lawyer {
	out := make([]models.Lawyer, 0, len(all))
	for _, l := range all {
		if status != "" && string(l.Status) != status {
			continue
		}
		if !matches(search, append([]string{l.Name, l.Email}, l.Specialties...)...) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// List lawyers
// GET /api/lawyers?search=&status=active|inactive
func (h *Handler) ListLawyers(c *fiber.Ctx) error {
	status := query(c, "status")
	switch status {
	case "", string(models.LawyerActive), string(models.LawyerInactive):
	default:
		return apperrors.NewValidation("status", "Value is not allowed")
	}
	all, err := cache.Remember(c.UserContext(), h.cache, cache.Lawyers, h.store.ListLawyers)
	if err != nil {
		return err
	}
	return c.JSON(FilterLawyers(all, query(c, "search"), status))
}

// Create lawyer
// POST /api/lawyers
func (h *Handler) CreateLawyer(c *fiber.Ctx) error {
	var in LawyerInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.normalize()
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	l := models.Lawyer{
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Specialties: in.specialties(),
		Status:      models.LawyerStatus(in.Status),
		HireDate:    in.hireDate(),
	}
	if err := h.store.CreateLawyer(c.UserContext(), &l); err != nil {
		return err
	}
	h.invalidate(c.UserContext(), cache.Lawyers)
	return c.Status(fiber.StatusCreated).JSON(l)
}

// Update lawyer
// PUT /api/lawyers/:id
func (h *Handler) UpdateLawyer(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in LawyerInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.normalize()
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	l, err := h.store.UpdateLawyer(c.UserContext(), id, map[string]any{
		"name":        in.Name,
		"email":       in.Email,
		"phone":       in.Phone,
		"specialties": in.specialties(),
		"status":      in.Status,
		"hire_date":   in.hireDate(),
	})
	if err != nil {
		return err
	}
	h.invalidate(c.UserContext(), cache.Lawyers, cache.Cases, cache.Allocations)
	return c.JSON(l)
}

// Delete lawyer
// DELETE /api/lawyers/:id
// 409 while the lawyer still holds cases; deactivate instead.
func (h *Handler) DeleteLawyer(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.store.DeleteLawyer(c.UserContext(), id); err != nil {
		return err
	}
	h.invalidate(c.UserContext(), cache.Lawyers)
	return c.SendStatus(fiber.StatusNoContent)
}
