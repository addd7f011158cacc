package booking

import (
	"context"

	bookingRepo "sajilosewa/database/repository/booking"
	"sajilosewa/models"

	"go.uber.org/zap"
)

// AvailabilityService resolves the bookable slot grid for a business/date pair.
type AvailabilityService interface {
	SlotGrid(ctx context.Context, businessID, date string) []models.SlotStatus
	BookedSlots(ctx context.Context, businessID, date string) ([]string, error)
}

// DefaultAvailabilityService implements AvailabilityService against the
// booking repository.
type DefaultAvailabilityService struct {
	Repo   bookingRepo.BookingRepository
	Logger *zap.Logger
}

// SlotGrid returns the ordered slot sequence with labels present in the
// booked set flagged. A fetch failure degrades to an all-open grid rather
// than failing the panel; the unique booking index remains the final
// arbiter of double-booking.
func (s *DefaultAvailabilityService) SlotGrid(ctx context.Context, businessID, date string) []models.SlotStatus {
	booked, err := s.Repo.GetBookedSlots(ctx, businessID, date)
	if err != nil {
		s.Logger.Warn("failed to fetch booked slots, showing all slots open",
			zap.String("businessId", businessID),
			zap.String("date", date),
			zap.Error(err),
		)
		booked = nil
	}

	bookedSet := make(map[string]bool, len(booked))
	for _, label := range booked {
		bookedSet[label] = true
	}

	grid := make([]models.SlotStatus, 0, len(slotLabels))
	for _, label := range slotLabels {
		grid = append(grid, models.SlotStatus{Label: label, IsBooked: bookedSet[label]})
	}
	return grid
}

// BookedSlots returns the raw booked labels for a business/date pair.
func (s *DefaultAvailabilityService) BookedSlots(ctx context.Context, businessID, date string) ([]string, error) {
	return s.Repo.GetBookedSlots(ctx, businessID, date)
}
