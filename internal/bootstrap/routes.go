package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/lexpro/backoffice/internal/auth"
	"github.com/lexpro/backoffice/internal/cases"
	"github.com/lexpro/backoffice/internal/catalog"
	"github.com/lexpro/backoffice/internal/commissions"
	"github.com/lexpro/backoffice/internal/notify"
	"github.com/lexpro/backoffice/internal/reporting"
)

const healthTimeout = 3 * time.Second

// Router builds the Fiber app. Every /api route requires a Supabase JWT.
func (a *App) Router() (*fiber.App, error) {
	if a.Cfg.SupabaseJWTSecret == "" {
		return nil, errors.New("SUPABASE_JWT_SECRET is required")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: auth.NewErrorHandler(a.Log),
		BodyLimit:    4 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(accessLog(a.Log))

	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()
		if err := a.Store.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "database": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "cache": a.Cache.Enabled()})
	})

	api := app.Group("/api", auth.RequireAuth(a.Cfg.SupabaseJWTSecret))

	api.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals("userID"), "role": c.Locals("role")})
	})

	// Catalog
	catH := catalog.NewHandler(a.Store, a.Cache)
	api.Get("/lawyers", catH.ListLawyers)
	api.Post("/lawyers", catH.CreateLawyer)
	api.Put("/lawyers/:id", catH.UpdateLawyer)
	api.Delete("/lawyers/:id", catH.DeleteLawyer)
	api.Get("/services", catH.ListServices)
	api.Post("/services", catH.CreateService)
	api.Put("/services/:id", catH.UpdateService)
	api.Delete("/services/:id", catH.DeleteService)
	api.Get("/clients", catH.ListClients)
	api.Post("/clients", catH.CreateClient)

	// Cases and allocations
	caseH := cases.NewHandler(a.Cases, a.Loader)
	api.Get("/cases", caseH.List)
	api.Get("/cases/next-number", caseH.NextNumber)
	api.Post("/cases", caseH.Create)
	api.Get("/cases/:id", caseH.Get)
	api.Put("/cases/:id", caseH.Update)
	api.Delete("/cases/:id", caseH.Delete)
	api.Post("/cases/:id/lawyers", caseH.AddLawyer)
	api.Put("/allocations/:id", caseH.UpdateAllocation)
	api.Delete("/allocations/:id", caseH.RemoveAllocation)

	// Liquidation
	liqH := commissions.NewHandler(a.Liquidator, a.Cache)
	staff := auth.RequireRole(auth.RoleStaff)
	api.Post("/allocations/:id/liquidate", staff, liqH.Liquidate)
	api.Post("/cases/:id/liquidate-legacy", staff, liqH.LiquidateLegacy)
	api.Post("/commissions/liquidate-all", staff, liqH.LiquidateAll)

	// Reports
	repH := reporting.NewHandler(a.Loader, a.Publisher)
	api.Get("/dashboard", repH.Dashboard)
	api.Get("/commissions", repH.Commissions)
	api.Get("/finances", repH.Finances)
	api.Get("/finances/export", repH.ExportFinances)
	api.Get("/reports/ranking", repH.Ranking)
	api.Get("/reports/ranking/export", repH.ExportRanking)

	// Settings
	notH := notify.NewHandler(a.Store, a.Reporter)
	api.Get("/settings/weekly-report", notH.GetSettings)
	api.Put("/settings/weekly-report", notH.PutSettings)
	api.Post("/settings/weekly-report/send", notH.SendNow)

	return app, nil
}

func accessLog(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			// Render the error now so the logged status is the real one.
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.Any("request_id", c.Locals("requestid")),
		)
		return nil
	}
}
