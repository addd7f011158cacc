package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bookingRepo "sajilosewa/database/repository/booking"
	"sajilosewa/models"
	"sajilosewa/services/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Submit initiates payment for a completed draft. The provider fork:
// Stripe yields a client secret for the embedded confirmation view; Khalti
// persists the pending record and yields the hosted payment URL. A session
// whose payment is already in flight gets a conflict; re-initiating after a
// failure invalidates any prior unconfirmed payment session.
func (s *DefaultBookingSessionService) Submit(ctx context.Context, sessionID, userID string, customer Customer) (*models.SubmitResult, error) {
	session, err := s.loadSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.State == models.StateCompleted {
		return nil, &StateError{State: session.State, Message: "booking already completed"}
	}

	if missing := missingDraftFields(session.Draft); len(missing) > 0 {
		return nil, &ValidationError{Message: "incomplete draft: missing " + strings.Join(missing, ", ")}
	}

	ok, err := s.Store.AcquireSubmitLock(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ConflictError{Message: "a payment initiation is already in progress"}
	}
	defer s.Store.ReleaseSubmitLock(ctx, sessionID)

	// Re-check the slot against fresh data; the grid the user saw may be stale.
	booked, err := s.Availability.BookedSlots(ctx, session.Draft.BusinessID, session.Draft.Date)
	if err == nil {
		for _, label := range booked {
			if label == session.Draft.Time {
				session.Slots = s.Availability.SlotGrid(ctx, session.Draft.BusinessID, session.Draft.Date)
				session.Draft.Time = ""
				s.Store.Save(ctx, session)
				return nil, &ConflictError{Message: fmt.Sprintf("slot %q is no longer available", label)}
			}
		}
	}

	provider, err := s.Providers.For(session.Draft.PaymentMethod)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	// Test/no-payment fallback: book directly when the in-page provider is
	// unconfigured and the deployment allows it.
	if session.Draft.PaymentMethod == models.MethodStripe && !provider.Configured() {
		if !s.AllowNoPayment {
			return nil, &payment.ConfigError{Provider: provider.Name(), Message: "payment provider is not configured"}
		}
		return s.bookWithoutPayment(ctx, session)
	}

	paymentID := uuid.New().String()
	req := payment.InitiationRequest{
		PaymentID:     paymentID,
		Draft:         session.Draft,
		Business:      session.Business,
		Amount:        session.Business.HourlyRate,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
	}

	res, err := provider.Initiate(ctx, req)
	if err != nil {
		// The draft stays untouched; no payment session is considered active.
		s.Logger.Warn("payment initiation failed",
			zap.String("sessionId", sessionID),
			zap.String("method", session.Draft.PaymentMethod),
			zap.Error(err),
		)
		return nil, err
	}

	payRecord := &models.Payment{
		ID:          paymentID,
		UserID:      userID,
		BusinessID:  session.Draft.BusinessID,
		Method:      session.Draft.PaymentMethod,
		Amount:      req.Amount,
		ProviderRef: res.ProviderRef,
		Status:      models.PaymentStatusInitiated,
		CreatedAt:   s.now(),
		UpdatedAt:   s.now(),
	}
	if err := s.PaymentRepo.CreatePayment(ctx, payRecord); err != nil {
		return nil, fmt.Errorf("failed to record payment attempt: %w", err)
	}

	session.Payment = &models.PaymentSession{
		PaymentID:    paymentID,
		ClientSecret: res.ClientSecret,
		PaymentURL:   res.PaymentURL,
		Amount:       req.Amount,
		Method:       session.Draft.PaymentMethod,
	}

	// The pending record must be durable before the browser navigates away.
	if session.Draft.PaymentMethod == models.MethodKhalti {
		rec := models.PendingRedirectPayment{
			PaymentID:    paymentID,
			BusinessID:   session.Draft.BusinessID,
			Date:         session.Draft.Date,
			Time:         session.Draft.Time,
			Latitude:     session.Draft.Location.Latitude,
			Longitude:    session.Draft.Location.Longitude,
			LocationName: session.Draft.Location.Name,
		}
		if err := s.Pending.Put(ctx, userID, rec); err != nil {
			return nil, fmt.Errorf("failed to persist pending payment: %w", err)
		}
	}

	session.State = models.StateAwaitingPayment
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}

	s.Logger.Info("payment initiated",
		zap.String("sessionId", sessionID),
		zap.String("paymentId", paymentID),
		zap.String("method", session.Draft.PaymentMethod),
	)
	return &models.SubmitResult{Session: session, Payment: session.Payment}, nil
}

// bookWithoutPayment creates the booking directly with no payment session.
func (s *DefaultBookingSessionService) bookWithoutPayment(ctx context.Context, session *models.BookingSession) (*models.SubmitResult, error) {
	booking, err := s.createBooking(ctx, session.UserID, session.Draft, session.Business.Name, "")
	if err != nil {
		return nil, err
	}

	session.State = models.StateCompleted
	session.Booking = booking
	session.Slots = s.Availability.SlotGrid(ctx, session.Draft.BusinessID, session.Draft.Date)
	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}

	s.Logger.Info("booking created without payment",
		zap.String("sessionId", session.SessionID),
		zap.String("bookingId", booking.ID),
	)
	return &models.SubmitResult{Session: session, Booking: booking}, nil
}

func missingDraftFields(d models.BookingDraft) []string {
	var missing []string
	if d.BusinessID == "" {
		missing = append(missing, "business")
	}
	if d.Date == "" {
		missing = append(missing, "date")
	}
	if d.Time == "" {
		missing = append(missing, "time")
	}
	if !d.Location.IsSet() {
		missing = append(missing, "location")
	}
	if d.PaymentMethod == "" {
		missing = append(missing, "payment method")
	}
	return missing
}

// createBooking is the single convergence point of both completion paths.
func (s *DefaultBookingSessionService) createBooking(ctx context.Context, userID string, draft models.BookingDraft, businessName, paymentID string) (*models.Booking, error) {
	booking := &models.Booking{
		ID:           uuid.New().String(),
		BusinessID:   draft.BusinessID,
		BusinessName: businessName,
		UserID:       userID,
		Date:         draft.Date,
		Time:         draft.Time,
		Location:     draft.Location,
		PaymentID:    paymentID,
		Status:       models.BookingStatusPending,
		CreatedAt:    s.now(),
	}
	if err := s.BookingRepo.CreateBooking(ctx, booking); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return nil, &ConflictError{Message: fmt.Sprintf("slot %q is no longer available", draft.Time)}
		}
		return nil, err
	}
	return booking, nil
}
