package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription statuses mirrored from the payment provider.
const (
	SubscriptionStatusFree     = "free"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusTrialing = "trialing"
)

const (
	TierFree    = "free"
	TierPremium = "premium"
)

// Profile holds one user's account and billing state. The id doubles as
// the user id carried in Stripe metadata.
type Profile struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email                 string     `gorm:"size:255;index" json:"email"`
	StripeCustomerID      string     `gorm:"size:255;index" json:"-"`
	StripeSubscriptionID  string     `gorm:"size:255" json:"-"`
	SubscriptionStatus    string     `gorm:"size:50;default:'free'" json:"subscription_status"`
	SubscriptionTier      string     `gorm:"size:50;default:'free'" json:"subscription_tier"`
	SubscriptionStartedAt *time.Time `json:"subscription_started_at"`
	SubscriptionEndsAt    *time.Time `json:"subscription_ends_at"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}
