package commissions

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lexpro/backoffice/internal/auth"
)

// Invalidator drops cached collections after a liquidation.
type Invalidator interface {
	InvalidateAll(ctx context.Context)
}

type Handler struct {
	liq   *Liquidator
	cache Invalidator
}

func NewHandler(liq *Liquidator, cache Invalidator) *Handler {
	return &Handler{liq: liq, cache: cache}
}

func actor(c *fiber.Ctx) uuid.UUID {
	id, _ := uuid.Parse(auth.MustUserID(c))
	return id
}

// Liquidate one allocation
// POST /api/allocations/:id/liquidate
func (h *Handler) Liquidate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	cl, err := h.liq.Liquidate(c.UserContext(), id, actor(c))
	if err != nil {
		return err
	}
	h.cache.InvalidateAll(c.UserContext())
	return c.JSON(cl)
}

// Liquidate the single-lawyer commission stored on an older case
// POST /api/cases/:id/liquidate-legacy
func (h *Handler) LiquidateLegacy(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.liq.LiquidateLegacy(c.UserContext(), id, actor(c)); err != nil {
		return err
	}
	h.cache.InvalidateAll(c.UserContext())
	return c.JSON(fiber.Map{"case_id": id, "commission_paid": true})
}

// Pay every pending commission
// POST /api/commissions/liquidate-all
// 200 when every row was paid, 207 with the failed rows otherwise.
func (h *Handler) LiquidateAll(c *fiber.Ctx) error {
	rep, err := h.liq.LiquidateAll(c.UserContext(), actor(c))
	// Rows already paid stay paid, so caches are stale either way.
	h.cache.InvalidateAll(context.WithoutCancel(c.UserContext()))
	if err != nil {
		return err
	}
	return c.JSON(rep)
}
