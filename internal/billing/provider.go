package billing

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutSession is the provider-neutral view of a checkout session.
type CheckoutSession struct {
	ID             string
	Paid           bool
	UserID         string
	SubscriptionID string
	URL            string
}

// SubscriptionInfo is the provider-neutral view of a subscription.
// UserID comes from the metadata attached at checkout time.
type SubscriptionInfo struct {
	ID       string
	Status   string
	UserID   string
	Created  time.Time
	CancelAt *time.Time
}

// WebhookEvent is a verified, parsed webhook delivery. Subscription is
// set for customer.subscription.* events; InvoiceSubscriptionID for
// invoice.payment_failed.
type WebhookEvent struct {
	Type                  string
	Subscription          *SubscriptionInfo
	InvoiceSubscriptionID string
}

// Provider is the payment collaborator boundary: exactly the operations
// the backend needs, so tests can substitute a stub.
type Provider interface {
	CreateCustomer(email string, userID uuid.UUID) (string, error)
	CreateCheckoutSession(customerID string, userID uuid.UUID) (string, error)
	CreatePortalSession(customerID string) (string, error)
	RetrieveCheckoutSession(sessionID string) (*CheckoutSession, error)
	RetrieveSubscription(subscriptionID string) (*SubscriptionInfo, error)
	ConstructWebhookEvent(payload []byte, signature string) (*WebhookEvent, error)
	DeleteCustomer(customerID string) error
}
