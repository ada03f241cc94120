package entries

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kairosjournal/kairos-backend/internal/dto"
	"github.com/kairosjournal/kairos-backend/internal/eligibility"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// StatsResponse bundles the maintained aggregate with unlock progress
// and milestone copy for the client's home screen.
type StatsResponse struct {
	Stats            *UserStats                 `json:"stats"`
	UnlockProgress   eligibility.UnlockProgress `json:"unlock_progress"`
	PatternsUnlocked bool                       `json:"patterns_unlocked"`
	AngelNumber      *eligibility.AngelNumber   `json:"angel_number,omitempty"`
	StreakMilestone  string                     `json:"streak_milestone,omitempty"`
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateEntryRequest
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

	entry, err := h.service.CreateEntry(userID, req)
	if err != nil {
		if errors.Is(err, ErrEmptyEntryText) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create journal entry",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *Handler) List(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "user_id is required",
		})
	}

	list, total, err := h.service.ListEntries(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch journal entries",
		})
	}

	return c.JSON(EntryListResponse{Entries: list, Total: total})
}

func (h *Handler) Get(c *fiber.Ctx) error {
	userID, entryID, ok := h.ids(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid entry ID or user_id",
		})
	}

	entry, err := h.service.GetEntry(userID, entryID)
	if err != nil {
		return h.entryError(c, err, "Failed to fetch journal entry")
	}

	return c.JSON(entry)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	userID, entryID, ok := h.ids(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid entry ID or user_id",
		})
	}

	var req UpdateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	entry, err := h.service.UpdateEntry(userID, entryID, req)
	if err != nil {
		if errors.Is(err, ErrEmptyEntryText) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return h.entryError(c, err, "Failed to update journal entry")
	}

	return c.JSON(entry)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	userID, entryID, ok := h.ids(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid entry ID or user_id",
		})
	}

	if err := h.service.DeleteEntry(userID, entryID); err != nil {
		return h.entryError(c, err, "Failed to delete journal entry")
	}

	return c.JSON(DeleteEntryResponse{Message: "Entry deleted successfully"})
}

func (h *Handler) GetStats(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "user_id is required",
		})
	}

	stats, err := h.service.GetStats(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch stats",
		})
	}

	first, err := h.service.FirstEntryDate(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch stats",
		})
	}

	return c.JSON(StatsResponse{
		Stats:            stats,
		UnlockProgress:   eligibility.Progress(stats.TotalEntries, first),
		PatternsUnlocked: eligibility.HasUnlockedPatterns(stats.TotalEntries, first),
		AngelNumber:      eligibility.AngelNumberFor(stats.TotalEntries),
		StreakMilestone:  eligibility.StreakMilestone(stats.CurrentStreak),
	})
}

func (h *Handler) ids(c *fiber.Ctx) (userID, entryID uuid.UUID, ok bool) {
	entryID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	userID, err = uuid.Parse(c.Query("user_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, entryID, true
}

func (h *Handler) entryError(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, ErrEntryNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	if errors.Is(err, ErrNotOwner) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: fallback,
	})
}
