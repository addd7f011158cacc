package payment

import (
	"context"
	"fmt"

	"sajilosewa/models"
)

// InitiationRequest carries everything a provider needs to open a payment
// session for a completed booking draft.
type InitiationRequest struct {
	PaymentID     string // server-assigned payment record id
	Draft         models.BookingDraft
	Business      models.Business
	Amount        float64
	CustomerName  string
	CustomerEmail string
}

// InitiationResult is the provider-side handle obtained from a successful
// initiation. Exactly one of ClientSecret/PaymentURL is set, depending on
// whether the provider completes in-page or via redirect.
type InitiationResult struct {
	ProviderRef  string // PaymentIntent id, Khalti pidx
	ClientSecret string
	PaymentURL   string
}

// Provider is one payment provider. Implementations are selected by the
// draft's payment method, so adding a provider is additive.
type Provider interface {
	Name() string
	// Configured reports whether the provider has usable credentials.
	Configured() bool
	Initiate(ctx context.Context, req InitiationRequest) (*InitiationResult, error)
	// Verify checks the provider-side state of a payment attempt by its
	// provider reference.
	Verify(ctx context.Context, providerRef string) (models.PaymentOutcome, error)
}

// Registry maps payment methods to providers.
type Registry map[string]Provider

// For returns the provider registered for a payment method.
func (r Registry) For(method string) (Provider, error) {
	p, ok := r[method]
	if !ok {
		return nil, fmt.Errorf("unsupported payment method: %s", method)
	}
	return p, nil
}
