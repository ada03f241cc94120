package billing

import (
	"errors"

	"github.com/google/uuid"
	"github.com/kairosjournal/kairos-backend/internal/models"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore reads and mutates per-user billing state.
type ProfileStore interface {
	Get(userID uuid.UUID) (*models.Profile, error)
	Ensure(userID uuid.UUID, email string) (*models.Profile, error)
	Updates(userID uuid.UUID, fields map[string]interface{}) error
	Delete(userID uuid.UUID) error
}

type GormProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *GormProfileStore {
	return &GormProfileStore{db: db}
}

func (s *GormProfileStore) Get(userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.First(&profile, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Ensure returns the profile, creating a free-tier row on first contact.
func (s *GormProfileStore) Ensure(userID uuid.UUID, email string) (*models.Profile, error) {
	profile, err := s.Get(userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	created := models.Profile{
		ID:                 userID,
		Email:              email,
		SubscriptionStatus: models.SubscriptionStatusFree,
		SubscriptionTier:   models.TierFree,
	}
	if err := s.db.Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *GormProfileStore) Updates(userID uuid.UUID, fields map[string]interface{}) error {
	result := s.db.Model(&models.Profile{}).Where("id = ?", userID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (s *GormProfileStore) Delete(userID uuid.UUID) error {
	return s.db.Where("id = ?", userID).Delete(&models.Profile{}).Error
}
