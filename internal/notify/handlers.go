package notify

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lexpro/backoffice/pkg/apperrors"
	"github.com/lexpro/backoffice/pkg/validation"
)

type Handler struct {
	settings SettingsStore
	reporter *Reporter
}

func NewHandler(settings SettingsStore, reporter *Reporter) *Handler {
	return &Handler{settings: settings, reporter: reporter}
}

// Weekly report settings
// GET /api/settings/weekly-report
func (h *Handler) GetSettings(c *fiber.Ctx) error {
	st, err := LoadSettings(c.UserContext(), h.settings)
	if err != nil {
		return err
	}
	return c.JSON(st)
}

// Update weekly report settings
// PUT /api/settings/weekly-report
func (h *Handler) PutSettings(c *fiber.Ctx) error {
	var in Settings
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	in.Email = strings.TrimSpace(in.Email)
	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}
	if in.Enabled && in.Email == "" {
		return apperrors.NewValidation("email", "This field is required")
	}
	if err := SaveSettings(c.UserContext(), h.settings, in); err != nil {
		return err
	}
	return c.JSON(in)
}

// Send the weekly report now
// POST /api/settings/weekly-report/send
func (h *Handler) SendNow(c *fiber.Ctx) error {
	res, err := h.reporter.SendWeeklyReport(c.UserContext())
	if errors.Is(err, ErrNoSender) {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Email provider is not configured")
	}
	if err != nil {
		return err
	}
	return c.JSON(res)
}
