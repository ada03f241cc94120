package account

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/kairosjournal/kairos-backend/internal/billing"
)

// UserDataDeleter removes all of one user's rows from a feature store.
// Both the entries service and the pattern store satisfy it.
type UserDataDeleter interface {
	DeleteAllForUser(userID uuid.UUID) error
}

// Service removes every trace of a user across the backend.
type Service struct {
	entries  UserDataDeleter
	patterns UserDataDeleter
	profiles billing.ProfileStore
	provider billing.Provider
}

func NewService(entrySvc, patternStore UserDataDeleter, profiles billing.ProfileStore, provider billing.Provider) *Service {
	return &Service{
		entries:  entrySvc,
		patterns: patternStore,
		profiles: profiles,
		provider: provider,
	}
}

// DeleteAccount deletes the user's billing customer, journal data and
// profile. The billing deletion is best-effort: a failure there is
// logged but does not block removing the user's data.
func (s *Service) DeleteAccount(userID uuid.UUID) error {
	profile, err := s.profiles.Get(userID)
	switch {
	case err != nil && !errors.Is(err, billing.ErrProfileNotFound):
		slog.Warn("profile lookup failed during account deletion, skipping billing cleanup",
			"user_id", userID, "error", err)
	case err == nil && profile.StripeCustomerID != "":
		if err := s.provider.DeleteCustomer(profile.StripeCustomerID); err != nil {
			slog.Warn("failed to delete billing customer during account deletion",
				"user_id", userID, "error", err)
		}
	}

	if err := s.entries.DeleteAllForUser(userID); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	if err := s.patterns.DeleteAllForUser(userID); err != nil {
		return fmt.Errorf("delete patterns: %w", err)
	}
	if err := s.profiles.Delete(userID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
