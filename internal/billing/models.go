package billing

// CheckoutRequest starts a premium checkout for a user.
type CheckoutRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// CheckoutResponse carries the hosted checkout URL.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// PortalRequest opens the billing portal for an existing customer.
type PortalRequest struct {
	UserID string `json:"user_id"`
}

// PortalResponse carries the hosted portal URL.
type PortalResponse struct {
	URL string `json:"url"`
}

// VerifyRequest confirms a checkout session directly with the provider.
type VerifyRequest struct {
	SessionID string `json:"session_id"`
}

// VerifyResponse reports the subscription state after verification.
type VerifyResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Tier    string `json:"tier"`
}

// SubscriptionStatusResponse is the client-facing view of a profile's
// subscription.
type SubscriptionStatusResponse struct {
	Status        string `json:"status"`
	Tier          string `json:"tier"`
	PremiumAccess bool   `json:"premium_access"`
}
