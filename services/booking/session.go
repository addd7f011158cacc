package booking

import (
	"context"
	"fmt"

	"sajilosewa/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OpenSession creates a new booking session for a business, resolves the
// slot grid for today, and stores the session.
func (s *DefaultBookingSessionService) OpenSession(ctx context.Context, userID, businessID string) (*models.BookingSession, error) {
	business, err := s.BusinessRepo.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve business: %w", err)
	}

	session := &models.BookingSession{
		SessionID: uuid.New().String(),
		UserID:    userID,
		State:     models.StateSelectingSlot,
		Draft:     models.BookingDraft{BusinessID: businessID},
		Business:  *business,
		CreatedAt: s.now(),
	}
	session.Slots = s.Availability.SlotGrid(ctx, businessID, s.now().Format(dateLayout))

	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}

	s.Logger.Info("booking session opened",
		zap.String("sessionId", session.SessionID),
		zap.String("businessId", businessID),
	)
	return session, nil
}

// GetSession returns the caller's session.
func (s *DefaultBookingSessionService) GetSession(ctx context.Context, sessionID, userID string) (*models.BookingSession, error) {
	return s.loadSession(ctx, sessionID, userID)
}

// UpdateSession applies a draft patch under the state-machine guards:
// a date must not lie before today, a time must be an open slot label, and
// choosing a new date clears any previously selected time.
func (s *DefaultBookingSessionService) UpdateSession(ctx context.Context, sessionID, userID string, patch models.DraftPatch) (*models.BookingSession, error) {
	session, err := s.loadSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	switch session.State {
	case models.StateSelectingSlot, models.StateSelectingPayment:
	default:
		return nil, &StateError{State: session.State, Message: "the draft can no longer be changed"}
	}

	if patch.Date != nil {
		before, err := dateBeforeDay(*patch.Date, s.now())
		if err != nil {
			return nil, &ValidationError{Message: fmt.Sprintf("invalid date %q", *patch.Date)}
		}
		if before {
			return nil, &ValidationError{Message: "date must not be in the past"}
		}
		session.Draft.Date = *patch.Date
		// A new date invalidates both the chosen time and the grid.
		session.Draft.Time = ""
		session.Slots = s.Availability.SlotGrid(ctx, session.Draft.BusinessID, *patch.Date)
	}

	if patch.Time != nil {
		if !isSlotLabel(*patch.Time) {
			return nil, &ValidationError{Message: fmt.Sprintf("unknown time slot %q", *patch.Time)}
		}
		if session.Draft.Date == "" {
			return nil, &ValidationError{Message: "select a date before a time slot"}
		}
		for _, slot := range session.Slots {
			if slot.Label == *patch.Time && slot.IsBooked {
				return nil, &ConflictError{Message: fmt.Sprintf("slot %q is already booked", *patch.Time)}
			}
		}
		session.Draft.Time = *patch.Time
	}

	if patch.Location != nil {
		session.Draft.Location = *patch.Location
	}

	if patch.PaymentMethod != nil {
		switch *patch.PaymentMethod {
		case models.MethodStripe, models.MethodKhalti:
		default:
			return nil, &ValidationError{Message: fmt.Sprintf("unsupported payment method %q", *patch.PaymentMethod)}
		}
		session.Draft.PaymentMethod = *patch.PaymentMethod
		if session.State == models.StateSelectingSlot {
			session.State = models.StateSelectingPayment
		}
	}

	if err := s.Store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CloseSession dismisses the panel from any state. The draft and any in-page
// payment session die with it; a pending redirect payment deliberately does
// not, since it must survive the full-page navigation.
func (s *DefaultBookingSessionService) CloseSession(ctx context.Context, sessionID, userID string) error {
	session, err := s.loadSession(ctx, sessionID, userID)
	if err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, session.SessionID); err != nil {
		return err
	}
	s.Logger.Info("booking session closed", zap.String("sessionId", sessionID))
	return nil
}

// BookedSlots returns the taken time labels for a business/date pair.
func (s *DefaultBookingSessionService) BookedSlots(ctx context.Context, businessID, date string) ([]string, error) {
	return s.Availability.BookedSlots(ctx, businessID, date)
}

// BookingHistory returns the caller's bookings, newest first.
func (s *DefaultBookingSessionService) BookingHistory(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.BookingRepo.GetBookingsByUser(ctx, userID)
}

func (s *DefaultBookingSessionService) loadSession(ctx context.Context, sessionID, userID string) (*models.BookingSession, error) {
	session, err := s.Store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, fmt.Errorf("booking session not found or expired")
	}
	return session, nil
}
