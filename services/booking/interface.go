package booking

import (
	"context"
	"time"

	bookingRepo "sajilosewa/database/repository/booking"
	businessRepo "sajilosewa/database/repository/business"
	paymentRepo "sajilosewa/database/repository/payment"
	"sajilosewa/models"
	"sajilosewa/services/payment"

	"go.uber.org/zap"
)

// Customer carries the authenticated caller's details needed by the
// redirect provider's payload.
type Customer struct {
	Name  string
	Email string
}

// BookingSessionService drives a booking panel from open through slot
// selection, payment initiation, provider completion, and booking creation.
type BookingSessionService interface {
	OpenSession(ctx context.Context, userID, businessID string) (*models.BookingSession, error)
	GetSession(ctx context.Context, sessionID, userID string) (*models.BookingSession, error)
	UpdateSession(ctx context.Context, sessionID, userID string, patch models.DraftPatch) (*models.BookingSession, error)
	CloseSession(ctx context.Context, sessionID, userID string) error
	Submit(ctx context.Context, sessionID, userID string, customer Customer) (*models.SubmitResult, error)
	ConfirmStripePayment(ctx context.Context, sessionID, userID, paymentIntentID string) (*models.BookingSession, error)
	CompleteRedirect(ctx context.Context, userID, pidx string) (*models.RedirectResult, error)
	BookedSlots(ctx context.Context, businessID, date string) ([]string, error)
	BookingHistory(ctx context.Context, userID string) ([]models.Booking, error)
}

// DefaultBookingSessionService implements BookingSessionService.
type DefaultBookingSessionService struct {
	Store        SessionStore
	Pending      payment.PendingStore
	Providers    payment.Registry
	Availability AvailabilityService
	BookingRepo  bookingRepo.BookingRepository
	BusinessRepo businessRepo.BusinessRepository
	PaymentRepo  paymentRepo.PaymentRepository
	Logger       *zap.Logger

	// AllowNoPayment enables the direct booking fallback when the in-page
	// provider is unconfigured (test environments only).
	AllowNoPayment bool

	// Now is the clock used for date validation; overridable in tests.
	Now func() time.Time
}

func (s *DefaultBookingSessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
