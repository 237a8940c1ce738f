package validation

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lexpro/backoffice/pkg/models"
)

// Writes a 400 with the Laravel-style body
func Respond(c *fiber.Ctx, errs map[string][]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ValidationErrorResponse{
		Message: "Validation failed",
		Errors:  errs,
	})
}
