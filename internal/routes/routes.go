package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/kairosjournal/kairos-backend/internal/account"
	"github.com/kairosjournal/kairos-backend/internal/billing"
	"github.com/kairosjournal/kairos-backend/internal/entries"
	"github.com/kairosjournal/kairos-backend/internal/handlers"
	"github.com/kairosjournal/kairos-backend/internal/patterns"
)

func Setup(
	app *fiber.App,
	healthHandler *handlers.HealthHandler,
	entryHandler *entries.Handler,
	patternHandler *patterns.Handler,
	billingHandler *billing.Handler,
	accountHandler *account.Handler,
) {
	api := app.Group("/api")

	// Stripe retries deliveries aggressively, so the webhook is
	// registered before the rate limiter.
	api.Post("/webhooks/stripe", billingHandler.Webhook)

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Journal entries and streak stats
	api.Post("/entries", entryHandler.Create)
	api.Get("/entries", entryHandler.List)
	api.Get("/entries/:id", entryHandler.Get)
	api.Put("/entries/:id", entryHandler.Update)
	api.Delete("/entries/:id", entryHandler.Delete)
	api.Get("/stats", entryHandler.GetStats)

	// Pattern generation is the expensive AI path, so it carries a
	// stricter limit on top of the general one.
	api.Post("/patterns/generate", limiter.New(limiter.Config{
		Max:               5,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), patternHandler.Generate)
	api.Get("/patterns", patternHandler.List)
	api.Get("/patterns/access", patternHandler.Access)
	api.Post("/patterns/:id/acknowledge", patternHandler.Acknowledge)

	// Billing
	api.Post("/billing/checkout-session", billingHandler.CreateCheckout)
	api.Post("/billing/portal-session", billingHandler.CreatePortal)
	api.Post("/billing/verify-subscription", billingHandler.VerifySession)
	api.Get("/billing/subscription", billingHandler.Status)

	api.Delete("/account", accountHandler.Delete)
}
