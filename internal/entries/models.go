package entries

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry is one journaling submission.
type Entry struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	EntryText      string         `gorm:"type:text;not null" json:"entry_text"`
	GuidedResponse string         `gorm:"type:text" json:"guided_response,omitempty"`
	PhotoURL       string         `gorm:"type:text" json:"photo_url,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserStats is the maintained per-user aggregate. TotalEntries always
// equals the number of live entries for the user.
type UserStats struct {
	UserID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	CurrentStreak int        `gorm:"default:0" json:"current_streak"`
	LongestStreak int        `gorm:"default:0" json:"longest_streak"`
	TotalEntries  int        `gorm:"default:0" json:"total_entries"`
	LastEntryDate *time.Time `json:"last_entry_date"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// --- DTOs ---

type CreateEntryRequest struct {
	UserID         string `json:"user_id"`
	EntryText      string `json:"entry_text"`
	GuidedResponse string `json:"guided_response"`
	PhotoURL       string `json:"photo_url"`
}

type UpdateEntryRequest struct {
	EntryText      *string `json:"entry_text"`
	GuidedResponse *string `json:"guided_response"`
	PhotoURL       *string `json:"photo_url"`
}

type EntryListResponse struct {
	Entries []Entry `json:"entries"`
	Total   int64   `json:"total"`
}

type DeleteEntryResponse struct {
	Message string `json:"message"`
}
