package entries

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEmptyEntryText = errors.New("entry text must not be empty")
	ErrEntryNotFound  = errors.New("journal entry not found")
	ErrNotOwner       = errors.New("you do not own this journal entry")
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateEntry validates and persists one submission, then folds it into
// the user's stats. Validation happens before any store call.
func (s *Service) CreateEntry(userID uuid.UUID, req CreateEntryRequest) (*Entry, error) {
	text := strings.TrimSpace(req.EntryText)
	if text == "" {
		return nil, ErrEmptyEntryText
	}

	entry := Entry{
		ID:             uuid.New(),
		UserID:         userID,
		EntryText:      text,
		GuidedResponse: strings.TrimSpace(req.GuidedResponse),
		PhotoURL:       strings.TrimSpace(req.PhotoURL),
	}

	if err := s.db.Create(&entry).Error; err != nil {
		return nil, err
	}

	if err := s.applyEntryToStats(userID, entry.CreatedAt); err != nil {
		// Stats drift is recoverable on the next write; the entry itself
		// is saved, so don't fail the request.
		slog.Warn("stats update failed after entry create", "user_id", userID, "error", err)
	}

	return &entry, nil
}

func (s *Service) ListEntries(userID uuid.UUID) ([]Entry, int64, error) {
	var list []Entry
	var total int64

	if err := s.db.Model(&Entry{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error

	return list, total, err
}

// RecentEntries returns up to limit entries, newest first.
func (s *Service) RecentEntries(userID uuid.UUID, limit int) ([]Entry, error) {
	var list []Entry
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (s *Service) GetEntry(userID, entryID uuid.UUID) (*Entry, error) {
	var entry Entry
	if err := s.db.First(&entry, "id = ?", entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	if entry.UserID != userID {
		return nil, ErrNotOwner
	}

	return &entry, nil
}

func (s *Service) UpdateEntry(userID, entryID uuid.UUID, req UpdateEntryRequest) (*Entry, error) {
	entry, err := s.GetEntry(userID, entryID)
	if err != nil {
		return nil, err
	}

	if req.EntryText != nil {
		text := strings.TrimSpace(*req.EntryText)
		if text == "" {
			return nil, ErrEmptyEntryText
		}
		entry.EntryText = text
	}
	if req.GuidedResponse != nil {
		entry.GuidedResponse = strings.TrimSpace(*req.GuidedResponse)
	}
	if req.PhotoURL != nil {
		entry.PhotoURL = strings.TrimSpace(*req.PhotoURL)
	}

	if err := s.db.Save(entry).Error; err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *Service) DeleteEntry(userID, entryID uuid.UUID) error {
	entry, err := s.GetEntry(userID, entryID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(entry).Error; err != nil {
		return err
	}

	return s.recalcStats(userID)
}

// DeleteAllForUser removes every entry and the stats row for a user.
// Entries are hard-deleted so account removal leaves no soft-deleted
// rows behind.
func (s *Service) DeleteAllForUser(userID uuid.UUID) error {
	if err := s.db.Unscoped().Where("user_id = ?", userID).Delete(&Entry{}).Error; err != nil {
		return err
	}
	return s.db.Where("user_id = ?", userID).Delete(&UserStats{}).Error
}

// GetStats returns the user's aggregate, creating an empty row on first
// access.
func (s *Service) GetStats(userID uuid.UUID) (*UserStats, error) {
	var stats UserStats
	err := s.db.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = UserStats{UserID: userID}
		if createErr := s.db.Create(&stats).Error; createErr != nil {
			return nil, createErr
		}
		return &stats, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// FirstEntryDate returns the creation time of the user's oldest live
// entry, or nil when the user has never journaled.
func (s *Service) FirstEntryDate(userID uuid.UUID) (*time.Time, error) {
	var entry Entry
	err := s.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry.CreatedAt, nil
}

// applyEntryToStats advances the consecutive-day streak and counters for
// one new entry. Day comparisons use UTC calendar days.
func (s *Service) applyEntryToStats(userID uuid.UUID, entryTime time.Time) error {
	stats, err := s.GetStats(userID)
	if err != nil {
		return err
	}

	stats.CurrentStreak = nextStreak(stats.CurrentStreak, stats.LastEntryDate, entryTime)

	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}

	stats.TotalEntries++
	t := entryTime
	stats.LastEntryDate = &t

	return s.db.Save(stats).Error
}

// recalcStats re-derives the countable fields after a deletion so
// TotalEntries keeps matching live rows.
func (s *Service) recalcStats(userID uuid.UUID) error {
	stats, err := s.GetStats(userID)
	if err != nil {
		return err
	}

	var total int64
	if err := s.db.Model(&Entry{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return err
	}
	stats.TotalEntries = int(total)

	var times []time.Time
	if err := s.db.Model(&Entry{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("created_at", &times).Error; err != nil {
		return err
	}

	if len(times) == 0 {
		stats.LastEntryDate = nil
		stats.CurrentStreak = 0
	} else {
		stats.LastEntryDate = &times[0]
		stats.CurrentStreak = streakFromDates(times)
	}

	return s.db.Save(stats).Error
}

// streakFromDates re-derives the consecutive-day run ending at the most
// recent entry. Times must be sorted newest first; entries on the same
// UTC day collapse into one.
func streakFromDates(times []time.Time) int {
	if len(times) == 0 {
		return 0
	}

	streak := 1
	day := startOfDayUTC(times[0])
	for _, t := range times[1:] {
		d := startOfDayUTC(t)
		switch {
		case d.Equal(day):
			// another entry on the same day
		case d.Equal(day.AddDate(0, 0, -1)):
			streak++
			day = d
		default:
			return streak
		}
	}
	return streak
}

// nextStreak computes the consecutive-day streak after an entry at
// entryTime. A same-day entry leaves the streak alone, a next-day entry
// extends it, any gap resets to 1. Day comparisons use UTC calendar
// days.
func nextStreak(current int, lastEntry *time.Time, entryTime time.Time) int {
	today := startOfDayUTC(entryTime)

	switch {
	case lastEntry == nil:
		return 1
	case startOfDayUTC(*lastEntry).Equal(today):
		return current
	case startOfDayUTC(*lastEntry).Equal(today.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}

func startOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
