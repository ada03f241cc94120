package billing

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kairosjournal/kairos-backend/internal/models"
)

var (
	ErrPaymentIncomplete = errors.New("checkout session not paid")
	ErrNoUserMetadata    = errors.New("no user id in session metadata")
	ErrNoCustomer        = errors.New("profile has no billing customer")
	ErrBadSignature      = errors.New("webhook signature verification failed")
)

// HasPremiumAccess reports whether the profile's subscription grants
// premium features. Trialing counts the same as active.
func HasPremiumAccess(p *models.Profile) bool {
	if p == nil {
		return false
	}
	return p.SubscriptionStatus == models.SubscriptionStatusActive ||
		p.SubscriptionStatus == models.SubscriptionStatusTrialing
}

type SubscriptionService struct {
	profiles ProfileStore
	provider Provider
}

func NewSubscriptionService(profiles ProfileStore, provider Provider) *SubscriptionService {
	return &SubscriptionService{profiles: profiles, provider: provider}
}

func (s *SubscriptionService) GetProfile(userID uuid.UUID) (*models.Profile, error) {
	return s.profiles.Get(userID)
}

// StartCheckout creates (or reuses) the billing customer for the user and
// opens a checkout session for the premium plan, returning its URL.
func (s *SubscriptionService) StartCheckout(userID uuid.UUID, email string) (string, error) {
	profile, err := s.profiles.Ensure(userID, email)
	if err != nil {
		return "", fmt.Errorf("ensure profile: %w", err)
	}

	customerID := profile.StripeCustomerID
	if customerID == "" {
		customerID, err = s.provider.CreateCustomer(profile.Email, userID)
		if err != nil {
			return "", fmt.Errorf("create customer: %w", err)
		}
		if err := s.profiles.Updates(userID, map[string]interface{}{
			"stripe_customer_id": customerID,
		}); err != nil {
			return "", fmt.Errorf("persist customer id: %w", err)
		}
	}

	url, err := s.provider.CreateCheckoutSession(customerID, userID)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return url, nil
}

// PortalURL opens a billing portal session for an existing customer.
func (s *SubscriptionService) PortalURL(userID uuid.UUID) (string, error) {
	profile, err := s.profiles.Get(userID)
	if err != nil {
		return "", err
	}
	if profile.StripeCustomerID == "" {
		return "", ErrNoCustomer
	}
	return s.provider.CreatePortalSession(profile.StripeCustomerID)
}

// VerifySession confirms a completed checkout directly against the billing
// provider and activates the subscription. Used when the webhook has not
// arrived yet by the time the client returns from checkout.
func (s *SubscriptionService) VerifySession(sessionID string) (*models.Profile, error) {
	session, err := s.provider.RetrieveCheckoutSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	if !session.Paid {
		return nil, ErrPaymentIncomplete
	}
	if session.UserID == "" {
		return nil, ErrNoUserMetadata
	}
	userID, err := uuid.Parse(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoUserMetadata, err)
	}

	now := time.Now().UTC()
	fields := map[string]interface{}{
		"subscription_status":     models.SubscriptionStatusActive,
		"subscription_tier":       models.TierPremium,
		"subscription_started_at": now,
		"subscription_ends_at":    nil,
	}
	if session.SubscriptionID != "" {
		fields["stripe_subscription_id"] = session.SubscriptionID
	}
	if err := s.profiles.Updates(userID, fields); err != nil {
		return nil, fmt.Errorf("activate subscription: %w", err)
	}
	return s.profiles.Get(userID)
}

// ProcessWebhook verifies the signed payload and applies the event.
func (s *SubscriptionService) ProcessWebhook(payload []byte, signature string) error {
	event, err := s.provider.ConstructWebhookEvent(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}
	return s.HandleWebhookEvent(event)
}

// HandleWebhookEvent mutates the profile according to a verified event.
// Unrecognized event types are acknowledged without side effects.
func (s *SubscriptionService) HandleWebhookEvent(event *WebhookEvent) error {
	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		return s.applySubscription(event.Subscription)

	case "customer.subscription.deleted":
		sub := event.Subscription
		if sub == nil {
			return nil
		}
		userID, err := s.userFromSubscription(sub)
		if err != nil {
			return err
		}
		return s.profiles.Updates(userID, map[string]interface{}{
			"subscription_status":  models.SubscriptionStatusCanceled,
			"subscription_tier":    models.TierFree,
			"subscription_ends_at": time.Now().UTC(),
		})

	case "invoice.payment_failed":
		subID := event.InvoiceSubscriptionID
		if subID == "" {
			return nil
		}
		sub, err := s.provider.RetrieveSubscription(subID)
		if err != nil {
			return fmt.Errorf("retrieve subscription: %w", err)
		}
		userID, err := s.userFromSubscription(sub)
		if err != nil {
			return err
		}
		// Tier is left alone until the subscription itself transitions.
		return s.profiles.Updates(userID, map[string]interface{}{
			"subscription_status": models.SubscriptionStatusPastDue,
		})

	default:
		slog.Debug("ignoring webhook event", "type", event.Type)
		return nil
	}
}

func (s *SubscriptionService) applySubscription(sub *SubscriptionInfo) error {
	if sub == nil {
		return nil
	}
	userID, err := s.userFromSubscription(sub)
	if err != nil {
		return err
	}

	tier := models.TierFree
	if sub.Status == models.SubscriptionStatusActive || sub.Status == models.SubscriptionStatusTrialing {
		tier = models.TierPremium
	}

	fields := map[string]interface{}{
		"stripe_subscription_id":  sub.ID,
		"subscription_status":     sub.Status,
		"subscription_tier":       tier,
		"subscription_started_at": sub.Created,
	}
	if sub.CancelAt != nil {
		fields["subscription_ends_at"] = *sub.CancelAt
	} else {
		fields["subscription_ends_at"] = nil
	}
	return s.profiles.Updates(userID, fields)
}

func (s *SubscriptionService) userFromSubscription(sub *SubscriptionInfo) (uuid.UUID, error) {
	if sub.UserID == "" {
		return uuid.Nil, ErrNoUserMetadata
	}
	userID, err := uuid.Parse(sub.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrNoUserMetadata, err)
	}
	return userID, nil
}
