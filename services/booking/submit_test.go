package booking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sajilosewa/models"
	"sajilosewa/services/payment"
)

func TestSubmitRequiresCompleteDraft(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// No time, no location, no method.
	session, _ := env.svc.OpenSession(ctx, testUser, testBusiness)
	env.svc.UpdateSession(ctx, session.SessionID, testUser, models.DraftPatch{Date: strPtr(tomorrow())})

	_, err := env.svc.Submit(ctx, session.SessionID, testUser, Customer{})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for incomplete draft, got %v", err)
	}
	for _, want := range []string{"time", "location", "payment method"} {
		if !strings.Contains(validationErr.Message, want) {
			t.Errorf("expected message to name missing %q, got %q", want, validationErr.Message)
		}
	}
	if env.stripe.initiations+env.khalti.initiations != 0 {
		t.Error("validation failures must never reach a provider")
	}
}

func TestSubmitStripe(t *testing.T) {
	// Scenario A: amount $25.00, tomorrow, "2:00 PM", location set, method
	// stripe. Submit yields the client secret for the confirmation view.
	env := newTestEnv()
	ctx := context.Background()
	session := openWithDraft(t, env, models.MethodStripe)

	result, err := env.svc.Submit(ctx, session.SessionID, testUser, Customer{Name: "Asha", Email: "asha@example.com"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Payment == nil {
		t.Fatal("expected a payment session")
	}
	if result.Payment.ClientSecret != "pi_123_secret" {
		t.Errorf("expected client secret from provider, got %q", result.Payment.ClientSecret)
	}
	if result.Payment.Amount != 25.00 {
		t.Errorf("expected amount 25.00, got %v", result.Payment.Amount)
	}
	if result.Session.State != models.StateAwaitingPayment {
		t.Errorf("expected state %q, got %q", models.StateAwaitingPayment, result.Session.State)
	}

	payRecord, err := env.paymentRepo.GetPaymentByID(ctx, result.Payment.PaymentID)
	if err != nil {
		t.Fatalf("payment record not created: %v", err)
	}
	if payRecord.ProviderRef != "pi_123" || payRecord.Status != models.PaymentStatusInitiated {
		t.Errorf("unexpected payment record: %+v", payRecord)
	}

	// No pending redirect record for the in-page provider.
	if rec, _ := env.pending.TakeOnce(ctx, testUser); rec != nil {
		t.Error("stripe initiation must not write a pending redirect payment")
	}
}

func TestSubmitKhalti(t *testing.T) {
	// Scenario C: method khalti. The pending record is written with the
	// draft payload, then the payment URL is handed back.
	env := newTestEnv()
	ctx := context.Background()
	session := openWithDraft(t, env, models.MethodKhalti)

	result, err := env.svc.Submit(ctx, session.SessionID, testUser, Customer{Name: "Asha", Email: "asha@example.com"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Payment == nil || result.Payment.PaymentURL != "https://test.khalti.com/pay/abc123" {
		t.Fatalf("expected provider payment URL, got %+v", result.Payment)
	}

	rec, err := env.pending.TakeOnce(ctx, testUser)
	if err != nil {
		t.Fatalf("TakeOnce failed: %v", err)
	}
	if rec == nil {
		t.Fatal("expected pending redirect payment to be written before navigation")
	}
	if rec.BusinessID != testBusiness || rec.Date != tomorrow() || rec.Time != "2:00 PM" {
		t.Errorf("pending record does not mirror the draft: %+v", rec)
	}
	if rec.PaymentID != result.Payment.PaymentID {
		t.Errorf("pending record paymentId %q != session paymentId %q", rec.PaymentID, result.Payment.PaymentID)
	}
}

func TestSubmitSingleFlight(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	session := openWithDraft(t, env, models.MethodStripe)

	// A held lock simulates a racing double-click.
	if ok, _ := env.svc.Store.AcquireSubmitLock(ctx, session.SessionID); !ok {
		t.Fatal("could not pre-acquire lock")
	}
	_, err := env.svc.Submit(ctx, session.SessionID, testUser, Customer{})
	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected ConflictError while initiation in flight, got %v", err)
	}
	if env.stripe.initiations != 0 {
		t.Error("second submit must not reach the provider")
	}

	env.svc.Store.ReleaseSubmitLock(ctx, session.SessionID)
	if _, err := env.svc.Submit(ctx, session.SessionID, testUser, Customer{}); err != nil {
		t.Fatalf("Submit after release failed: %v", err)
	}
}

func TestSubmitSlotTakenSinceSelection(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	session := openWithDraft(t, env, models.MethodStripe)

	// The slot fills between selection and submit.
	env.bookingRepo.booked[testBusiness+"|"+tomorrow()] = []string{"2:00 PM"}

	_, err := env.svc.Submit(ctx, session.SessionID, testUser, Customer{})
	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected ConflictError for freshly taken slot, got %v", err)
	}
	if env.stripe.initiations != 0 {
		t.Error("a taken slot must not reach the provider")
	}

	got, _ := env.svc.GetSession(ctx, session.SessionID, testUser)
	if got.Draft.Time != "" {
		t.Errorf("expected stale time cleared, got %q", got.Draft.Time)
	}
}

func TestSubmitProviderFailureLeavesDraftUnchanged(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	session := openWithDraft(t, env, models.MethodStripe)
	env.stripe.initErr = &payment.ProviderError{Provider: models.MethodStripe, Message: "card network unavailable"}

	_, err := env.svc.Submit(ctx, session.SessionID, testUser, Customer{})
	var providerErr *payment.ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}

	got, _ := env.svc.GetSession(ctx, session.SessionID, testUser)
	if got.State == models.StateAwaitingPayment {
		t.Error("failed initiation must not advance the state")
	}
	if got.Draft.Time != "2:00 PM" {
		t.Errorf("draft must be left intact for retry, got time %q", got.Draft.Time)
	}
	if got.Payment != nil {
		t.Error("no payment session may be considered active after a failure")
	}

	// Retry succeeds without re-selecting anything.
	env.stripe.initErr = nil
	if _, err := env.svc.Submit(ctx, session.SessionID, testUser, Customer{}); err != nil {
		t.Fatalf("retry after provider failure failed: %v", err)
	}
}

func TestSubmitStripeUnconfigured(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.stripe.configured = false

	t.Run("FailsFastWithoutFallback", func(t *testing.T) {
		session := openWithDraft(t, env, models.MethodStripe)
		_, err := env.svc.Submit(ctx, session.SessionID, testUser, Customer{})
		var configErr *payment.ConfigError
		if !errors.As(err, &configErr) {
			t.Fatalf("expected ConfigError, got %v", err)
		}
		if env.stripe.initiations != 0 {
			t.Error("a configuration error must not attempt a request")
		}
	})

	t.Run("NoPaymentFallback", func(t *testing.T) {
		env.svc.AllowNoPayment = true
		session := openWithDraft(t, env, models.MethodStripe)
		result, err := env.svc.Submit(ctx, session.SessionID, testUser, Customer{})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if result.Booking == nil {
			t.Fatal("expected a direct booking on the fallback path")
		}
		if result.Booking.PaymentID != "" {
			t.Errorf("fallback booking must carry no paymentId, got %q", result.Booking.PaymentID)
		}
		if result.Session.State != models.StateCompleted {
			t.Errorf("expected state %q, got %q", models.StateCompleted, result.Session.State)
		}
	})
}
