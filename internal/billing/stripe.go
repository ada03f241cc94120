package billing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kairosjournal/kairos-backend/internal/config"
	"github.com/stripe/stripe-go/v81"
	portalsession "github.com/stripe/stripe-go/v81/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/subscription"
	"github.com/stripe/stripe-go/v81/webhook"
)

// metadataUserKey carries the Kairos user id on Stripe customers,
// sessions and subscriptions so webhook events can be matched back.
const metadataUserKey = "kairos_user_id"

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct {
	webhookSecret string
	priceID       string
	appURL        string
}

func NewStripeProvider(cfg *config.Config) *StripeProvider {
	stripe.Key = cfg.StripeSecretKey
	return &StripeProvider{
		webhookSecret: cfg.StripeWebhookSecret,
		priceID:       cfg.StripePriceID,
		appURL:        cfg.AppURL,
	}
}

func (p *StripeProvider) CreateCustomer(email string, userID uuid.UUID) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
	}
	params.AddMetadata(metadataUserKey, userID.String())

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create billing customer: %w", err)
	}
	return cust.ID, nil
}

func (p *StripeProvider) CreateCheckoutSession(customerID string, userID uuid.UUID) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(p.priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(p.appURL + "/app/subscribe?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(p.appURL + "/app/subscribe?canceled=true"),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{metadataUserKey: userID.String()},
		},
	}
	params.AddMetadata(metadataUserKey, userID.String())

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (p *StripeProvider) CreatePortalSession(customerID string) (string, error) {
	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(p.appURL + "/app/settings"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create billing portal session: %w", err)
	}
	return sess.URL, nil
}

func (p *StripeProvider) RetrieveCheckoutSession(sessionID string) (*CheckoutSession, error) {
	sess, err := checkoutsession.Get(sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}

	out := &CheckoutSession{
		ID:   sess.ID,
		Paid: sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		URL:  sess.URL,
	}
	if sess.Metadata != nil {
		out.UserID = sess.Metadata[metadataUserKey]
	}
	if sess.Subscription != nil {
		out.SubscriptionID = sess.Subscription.ID
	}
	return out, nil
}

func (p *StripeProvider) RetrieveSubscription(subscriptionID string) (*SubscriptionInfo, error) {
	sub, err := subscription.Get(subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve subscription: %w", err)
	}
	return subscriptionInfo(sub), nil
}

func (p *StripeProvider) ConstructWebhookEvent(payload []byte, signature string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, err
	}

	out := &WebhookEvent{Type: string(event.Type)}

	switch out.Type {
	case "customer.subscription.created",
		"customer.subscription.updated",
		"customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to parse subscription event: %w", err)
		}
		out.Subscription = subscriptionInfo(&sub)

	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("failed to parse invoice event: %w", err)
		}
		if inv.Subscription != nil {
			out.InvoiceSubscriptionID = inv.Subscription.ID
		}
	}

	return out, nil
}

func (p *StripeProvider) DeleteCustomer(customerID string) error {
	if _, err := customer.Del(customerID, nil); err != nil {
		return fmt.Errorf("failed to delete billing customer: %w", err)
	}
	return nil
}

func subscriptionInfo(sub *stripe.Subscription) *SubscriptionInfo {
	info := &SubscriptionInfo{
		ID:      sub.ID,
		Status:  string(sub.Status),
		Created: time.Unix(sub.Created, 0).UTC(),
	}
	if sub.Metadata != nil {
		info.UserID = sub.Metadata[metadataUserKey]
	}
	if sub.CancelAt > 0 {
		t := time.Unix(sub.CancelAt, 0).UTC()
		info.CancelAt = &t
	}
	return info
}
