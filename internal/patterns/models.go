package patterns

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Pattern types. AI-generated insights use TypeAIInsight; the raw
// analytical types are kept for payloads imported from older analyses.
const (
	TypeAIInsight     = "ai_insight"
	TypeWordFrequency = "word_frequency"
	TypeTheme         = "theme"
)

// Model tiers for generation metadata.
const (
	TierPrimary  = "primary"
	TierFallback = "fallback"
)

// Pattern is one persisted observation. PatternData carries the opaque
// payload; for ai_insight rows it is a serialized Insight.
type Pattern struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	PatternType    string         `gorm:"size:50;not null;index" json:"pattern_type"`
	PatternData    datatypes.JSON `gorm:"type:jsonb" json:"pattern_data"`
	InsightText    string         `gorm:"type:text" json:"insight_text,omitempty"`
	DetectedAt     time.Time      `gorm:"index" json:"detected_at"`
	IsAcknowledged bool           `gorm:"default:false" json:"is_acknowledged"`
}

// Insight is one AI-discovered observation about the user's writing.
type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Confidence  string `json:"confidence"`
	Category    string `json:"category"`
}

var validConfidences = map[string]bool{
	"high":   true,
	"medium": true,
	"low":    true,
}

var validCategories = map[string]bool{
	"emotional":  true,
	"temporal":   true,
	"behavioral": true,
	"cognitive":  true,
}

// summarize builds the short insight_text stored alongside the payload.
// Truncation counts runes so a multibyte character is never split.
func summarize(in Insight) string {
	desc := in.Description
	if runes := []rune(desc); len(runes) > 100 {
		desc = string(runes[:100]) + "..."
	}
	return in.Title + ": " + desc
}

// --- DTOs ---

type GenerateRequest struct {
	UserID string `json:"user_id"`
}

type GenerateResponse struct {
	Success  bool         `json:"success"`
	Patterns []Insight    `json:"patterns"`
	Meta     GenerateMeta `json:"meta"`
	Message  string       `json:"message"`
}

type GenerateMeta struct {
	Model string `json:"model"`
}

type PatternListResponse struct {
	Patterns []Pattern `json:"patterns"`
	Total    int64     `json:"total"`
}

type AccessResponse struct {
	Unlocked        bool `json:"unlocked"`
	Premium         bool `json:"premium"`
	GeneratedBefore bool `json:"generated_before"`
}
