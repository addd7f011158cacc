package bookingRepo

import (
	"context"
	"errors"

	"sajilosewa/models"
)

// ErrSlotTaken means the booking lost the slot race: another live booking
// already holds the same business/date/time.
var ErrSlotTaken = errors.New("slot already booked")

// BookingRepository abstracts persistence for booking records.
type BookingRepository interface {
	// CreateBooking inserts a booking. Inserting a second booking with the
	// same paymentId is a no-op (the original insert wins); a live booking
	// already holding the slot yields ErrSlotTaken.
	CreateBooking(ctx context.Context, booking *models.Booking) error
	// GetBookedSlots returns the time labels already taken for a
	// business/date pair. Cancelled bookings do not block slots.
	GetBookedSlots(ctx context.Context, businessID, date string) ([]string, error)
	GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error)
	GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) error
}
