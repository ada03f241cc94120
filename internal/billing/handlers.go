package billing

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kairosjournal/kairos-backend/internal/dto"
)

type Handler struct {
	service *SubscriptionService
}

func NewHandler(service *SubscriptionService) *Handler {
	return &Handler{service: service}
}

// Webhook receives signed provider events. The signature covers the raw
// body, so it must be read before any parsing. Failures are reported to
// the provider as a generic 400 so delivery details leak nothing.
func (h *Handler) Webhook(c *fiber.Ctx) error {
	payload := c.Body()
	signature := c.Get("Stripe-Signature")

	if err := h.service.ProcessWebhook(payload, signature); err != nil {
		switch {
		case errors.Is(err, ErrBadSignature):
			slog.Warn("webhook signature rejected", "error", err)
		case errors.Is(err, ErrNoUserMetadata):
			slog.Error("webhook event missing user metadata", "error", err)
		default:
			slog.Error("webhook processing failed", "error", err)
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Webhook error",
		})
	}

	return c.JSON(fiber.Map{"received": true})
}

// VerifySession activates a subscription from a completed checkout
// session, for clients that return from checkout before the webhook
// lands.
func (h *Handler) VerifySession(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil || req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "session_id is required",
		})
	}

	profile, err := h.service.VerifySession(req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentIncomplete):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Payment not completed",
			})
		case errors.Is(err, ErrNoUserMetadata):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Session is not linked to a user",
			})
		default:
			slog.Error("session verification failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to verify session",
			})
		}
	}

	return c.JSON(VerifyResponse{
		Success: true,
		Status:  profile.SubscriptionStatus,
		Tier:    profile.SubscriptionTier,
	})
}

func (h *Handler) CreateCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
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

	url, err := h.service.StartCheckout(userID, req.Email)
	if err != nil {
		slog.Error("checkout creation failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create checkout session",
		})
	}

	return c.JSON(CheckoutResponse{URL: url})
}

func (h *Handler) CreatePortal(c *fiber.Ctx) error {
	var req PortalRequest
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

	url, err := h.service.PortalURL(userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrProfileNotFound), errors.Is(err, ErrNoCustomer):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No billing account for this user",
			})
		default:
			slog.Error("portal creation failed", "user_id", userID, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to create portal session",
			})
		}
	}

	return c.JSON(PortalResponse{URL: url})
}

// Status reports the subscription state for a user. Unknown users read
// as free tier rather than an error.
func (h *Handler) Status(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "user_id is required",
		})
	}

	profile, err := h.service.GetProfile(userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return c.JSON(SubscriptionStatusResponse{Status: "free", Tier: "free"})
		}
		slog.Error("subscription status lookup failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch subscription",
		})
	}

	return c.JSON(SubscriptionStatusResponse{
		Status:        profile.SubscriptionStatus,
		Tier:          profile.SubscriptionTier,
		PremiumAccess: HasPremiumAccess(profile),
	})
}
