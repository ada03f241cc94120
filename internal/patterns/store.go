package patterns

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrPatternNotFound = errors.New("pattern not found")

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ReplaceUnacknowledged evicts the user's unacknowledged ai_insight rows
// and inserts the new batch. Not transactional against concurrent
// regenerations for the same user; the last writer's insights survive,
// which is acceptable because a successful run always re-evicts first.
func (s *Store) ReplaceUnacknowledged(userID uuid.UUID, insights []Insight) error {
	err := s.db.
		Where("user_id = ? AND pattern_type = ? AND is_acknowledged = ?", userID, TypeAIInsight, false).
		Delete(&Pattern{}).Error
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	rows := make([]Pattern, 0, len(insights))
	for _, in := range insights {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		rows = append(rows, Pattern{
			ID:          uuid.New(),
			UserID:      userID,
			PatternType: TypeAIInsight,
			PatternData: datatypes.JSON(data),
			InsightText: summarize(in),
			DetectedAt:  now,
		})
	}

	return s.db.Create(&rows).Error
}

func (s *Store) ListPatterns(userID uuid.UUID) ([]Pattern, int64, error) {
	var list []Pattern
	var total int64

	if err := s.db.Model(&Pattern{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := s.db.Where("user_id = ?", userID).
		Order("detected_at DESC").
		Find(&list).Error

	return list, total, err
}

// HasGenerated reports whether the user has ever had an ai_insight
// pattern persisted.
func (s *Store) HasGenerated(userID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&Pattern{}).
		Where("user_id = ? AND pattern_type = ?", userID, TypeAIInsight).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// Acknowledge marks a pattern as seen. Acknowledging twice is a no-op.
func (s *Store) Acknowledge(patternID uuid.UUID) error {
	result := s.db.Model(&Pattern{}).
		Where("id = ?", patternID).
		Update("is_acknowledged", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPatternNotFound
	}
	return nil
}

func (s *Store) DeleteAllForUser(userID uuid.UUID) error {
	return s.db.Where("user_id = ?", userID).Delete(&Pattern{}).Error
}
