package patterns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kairosjournal/kairos-backend/internal/billing"
	"github.com/kairosjournal/kairos-backend/internal/dto"
	"github.com/kairosjournal/kairos-backend/internal/eligibility"
	"github.com/kairosjournal/kairos-backend/internal/entries"
)

type Handler struct {
	generator *Generator
	store     *Store
	entries   *entries.Service
	billing   *billing.SubscriptionService
}

func NewHandler(generator *Generator, store *Store, entrySvc *entries.Service, billingSvc *billing.SubscriptionService) *Handler {
	return &Handler{generator: generator, store: store, entries: entrySvc, billing: billingSvc}
}

// Generate runs the pipeline. Subscription gating happens in Access,
// before the client calls this; the pipeline itself has no billing
// awareness.
func (h *Handler) Generate(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "user_id is required",
		})
	}

	// The pipeline is handed a detached context: the primary-model race
	// can leave a goroutine running after this handler returns, and
	// fasthttp recycles the request context at that point. The primary
	// deadline is enforced inside the pipeline.
	result, err := h.generator.Generate(context.Background(), userID)
	if err != nil {
		if errors.Is(err, ErrInsufficientData) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to generate patterns",
		})
	}

	return c.JSON(GenerateResponse{
		Success:  true,
		Patterns: result.Insights,
		Meta:     GenerateMeta{Model: result.Tier},
		Message:  fmt.Sprintf("Successfully generated %d patterns using the %s model", len(result.Insights), result.Tier),
	})
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "user_id is required",
		})
	}

	list, total, err := h.store.ListPatterns(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch patterns",
		})
	}

	return c.JSON(PatternListResponse{Patterns: list, Total: total})
}

func (h *Handler) Acknowledge(c *fiber.Ctx) error {
	patternID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid pattern ID",
		})
	}

	if err := h.store.Acknowledge(patternID); err != nil {
		if errors.Is(err, ErrPatternNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to acknowledge pattern",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// Access reports the gating state the client needs before requesting
// generation: the 777 unlock, premium entitlement, and whether a batch
// exists already. Eligible non-premium users get a paywall client-side.
func (h *Handler) Access(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "user_id is required",
		})
	}

	stats, err := h.entries.GetStats(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch stats",
		})
	}

	first, err := h.entries.FirstEntryDate(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch stats",
		})
	}

	generated, err := h.store.HasGenerated(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch patterns",
		})
	}

	return c.JSON(AccessResponse{
		Unlocked:        eligibility.HasUnlockedPatterns(stats.TotalEntries, first),
		Premium:         h.premiumAccess(userID),
		GeneratedBefore: generated,
	})
}

// premiumAccess resolves the user's entitlement. Users without a profile
// are free tier; a store failure degrades to free but is logged so a
// paying user losing access leaves a trail.
func (h *Handler) premiumAccess(userID uuid.UUID) bool {
	profile, err := h.billing.GetProfile(userID)
	if err != nil {
		if !errors.Is(err, billing.ErrProfileNotFound) {
			slog.Warn("profile lookup failed, treating user as free tier",
				"user_id", userID, "error", err)
		}
		return false
	}
	return billing.HasPremiumAccess(profile)
}
