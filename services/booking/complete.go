package booking

import (
	"context"
	"fmt"

	"sajilosewa/models"
	"sajilosewa/services/payment"

	"go.uber.org/zap"
)

// ConfirmStripePayment is the in-page completion path: the client confirmed
// the PaymentIntent and submits its reference. The intent is verified
// server-side before the booking-creation call; any failure keeps the
// session in its current state so the user can retry.
func (s *DefaultBookingSessionService) ConfirmStripePayment(ctx context.Context, sessionID, userID, paymentIntentID string) (*models.BookingSession, error) {
	session, err := s.loadSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.State != models.StateAwaitingPayment || session.Payment == nil {
		return nil, &StateError{State: session.State, Message: "no payment awaiting confirmation"}
	}
	if session.Payment.Method != models.MethodStripe {
		return nil, &StateError{State: session.State, Message: "payment was not initiated with the in-page provider"}
	}

	ok, err := s.Store.AcquireSubmitLock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ConflictError{Message: "a payment confirmation is already in progress"}
	}
	defer s.Store.ReleaseSubmitLock(ctx, sessionID)

	payRecord, err := s.PaymentRepo.GetPaymentByID(ctx, session.Payment.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment record: %w", err)
	}
	if payRecord.ProviderRef != paymentIntentID {
		return nil, &payment.VerificationError{
			Provider: models.MethodStripe,
			Message:  "payment reference does not match the initiated session",
		}
	}

	provider, err := s.Providers.For(models.MethodStripe)
	if err != nil {
		return nil, err
	}
	outcome, err := provider.Verify(ctx, paymentIntentID)
	if err != nil {
		return nil, err
	}
	if !outcome.Completed {
		return nil, &payment.ProviderError{
			Provider: models.MethodStripe,
			Message:  fmt.Sprintf("payment not completed (status %q)", outcome.ProviderStatus),
		}
	}

	if err := s.PaymentRepo.UpdatePaymentStatus(ctx, payRecord.ID, models.PaymentStatusVerified); err != nil {
		s.Logger.Error("failed to mark payment verified", zap.String("paymentId", payRecord.ID), zap.Error(err))
	}

	booking, err := s.createBooking(ctx, userID, session.Draft, session.Business.Name, payRecord.ID)
	if err != nil {
		return nil, fmt.Errorf("payment verified but booking creation failed: %w", err)
	}

	session.State = models.StateCompleted
	session.Booking = booking
	session.Slots = s.Availability.SlotGrid(ctx, session.Draft.BusinessID, session.Draft.Date)
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}

	s.Logger.Info("booking completed via in-page payment",
		zap.String("sessionId", sessionID),
		zap.String("bookingId", booking.ID),
	)
	return session, nil
}

// CompleteRedirect is the redirect-provider completion path, triggered by
// the return URL carrying a pidx. The pending record is consumed exactly
// once before anything else happens, so a refreshed or revisited return URL
// cannot create a second booking. Only a provider status of "Completed"
// triggers booking creation; every outcome leaves the mailbox empty.
func (s *DefaultBookingSessionService) CompleteRedirect(ctx context.Context, userID, pidx string) (*models.RedirectResult, error) {
	rec, err := s.Pending.TakeOnce(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		s.Logger.Debug("redirect return with no pending payment", zap.String("userId", userID))
		return &models.RedirectResult{Handled: false}, nil
	}

	payRecord, err := s.PaymentRepo.GetPaymentByID(ctx, rec.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment record: %w", err)
	}
	if payRecord.ProviderRef != pidx {
		s.failPayment(ctx, payRecord.ID)
		return nil, &payment.VerificationError{
			Provider: models.MethodKhalti,
			Message:  "returned pidx does not match the initiated session",
		}
	}

	provider, err := s.Providers.For(models.MethodKhalti)
	if err != nil {
		return nil, err
	}
	outcome, err := provider.Verify(ctx, pidx)
	if err != nil {
		s.failPayment(ctx, payRecord.ID)
		return nil, err
	}
	if !outcome.Completed {
		s.failPayment(ctx, payRecord.ID)
		s.Logger.Warn("khalti payment not completed",
			zap.String("paymentId", payRecord.ID),
			zap.String("status", outcome.ProviderStatus),
		)
		return nil, &payment.ProviderError{
			Provider: models.MethodKhalti,
			Message:  fmt.Sprintf("payment not completed (status %q)", outcome.ProviderStatus),
		}
	}

	if err := s.PaymentRepo.UpdatePaymentStatus(ctx, payRecord.ID, models.PaymentStatusVerified); err != nil {
		s.Logger.Error("failed to mark payment verified", zap.String("paymentId", payRecord.ID), zap.Error(err))
	}

	draft := models.BookingDraft{
		BusinessID: rec.BusinessID,
		Date:       rec.Date,
		Time:       rec.Time,
		Location: models.Location{
			Latitude:  rec.Latitude,
			Longitude: rec.Longitude,
			Name:      rec.LocationName,
		},
		PaymentMethod: models.MethodKhalti,
	}

	businessName := ""
	if business, err := s.BusinessRepo.GetBusinessByID(ctx, rec.BusinessID); err == nil {
		businessName = business.Name
	}

	booking, err := s.createBooking(ctx, userID, draft, businessName, payRecord.ID)
	if err != nil {
		return nil, fmt.Errorf("payment verified but booking creation failed: %w", err)
	}

	s.Logger.Info("booking completed via redirect payment",
		zap.String("paymentId", payRecord.ID),
		zap.String("bookingId", booking.ID),
	)
	return &models.RedirectResult{
		Handled:   true,
		Completed: true,
		Status:    outcome.ProviderStatus,
		Booking:   booking,
	}, nil
}

func (s *DefaultBookingSessionService) failPayment(ctx context.Context, paymentID string) {
	if err := s.PaymentRepo.UpdatePaymentStatus(ctx, paymentID, models.PaymentStatusFailed); err != nil {
		s.Logger.Error("failed to mark payment failed", zap.String("paymentId", paymentID), zap.Error(err))
	}
}
