package payment

import (
	"context"
	"math"

	"sajilosewa/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// StripeProvider completes payments in-page via a PaymentIntent client
// secret handed to the embedded confirmation view.
type StripeProvider struct {
	Key    string
	Logger *zap.Logger
}

func (p *StripeProvider) Name() string { return models.MethodStripe }

func (p *StripeProvider) Configured() bool { return p.Key != "" }

// Initiate creates a PaymentIntent for the business's amount and returns its
// client secret for the embedded confirmation step.
func (p *StripeProvider) Initiate(ctx context.Context, req InitiationRequest) (*InitiationResult, error) {
	if !p.Configured() {
		return nil, &ConfigError{Provider: p.Name(), Message: "missing Stripe API key"}
	}

	params := &stripe.PaymentIntentParams{
		Params:      stripe.Params{Context: ctx},
		Amount:      stripe.Int64(toMinorUnits(req.Amount)),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String(req.Business.Name),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("paymentId", req.PaymentID)
	params.AddMetadata("businessId", req.Business.ID)

	pi, err := paymentintent.New(params)
	if err != nil {
		p.Logger.Error("stripe payment intent creation failed", zap.Error(err))
		return nil, &ProviderError{Provider: p.Name(), Message: err.Error()}
	}

	p.Logger.Info("stripe payment intent created",
		zap.String("paymentId", req.PaymentID),
		zap.String("intent", pi.ID),
	)
	return &InitiationResult{
		ProviderRef:  pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// Verify fetches the PaymentIntent and reports whether it succeeded.
func (p *StripeProvider) Verify(ctx context.Context, providerRef string) (models.PaymentOutcome, error) {
	if !p.Configured() {
		return models.PaymentOutcome{}, &ConfigError{Provider: p.Name(), Message: "missing Stripe API key"}
	}

	params := &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}}
	pi, err := paymentintent.Get(providerRef, params)
	if err != nil {
		return models.PaymentOutcome{}, &ProviderError{Provider: p.Name(), Message: err.Error()}
	}

	return models.PaymentOutcome{
		Completed:      pi.Status == stripe.PaymentIntentStatusSucceeded,
		ProviderStatus: string(pi.Status),
		Reference:      pi.ID,
	}, nil
}

// toMinorUnits converts a two-fraction-digit amount to integer minor units.
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
