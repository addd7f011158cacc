package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"sajilosewa/database"
	"sajilosewa/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
}

// NewMongoBookingRepo constructs a new instance of MongoBookingRepo.
func NewMongoBookingRepo() BookingRepository {
	db := database.MongoClient.Database("sajilosewa")
	repo := &MongoBookingRepo{
		bookingColl: db.Collection("bookings"),
	}
	repo.ensureIndexes()
	return repo
}

// CreateBooking inserts a new booking document. A duplicate paymentId means
// the booking was already created by an earlier attempt for the same
// payment; that is treated as success. Any other duplicate is a lost slot
// race and yields ErrSlotTaken.
func (repo *MongoBookingRepo) CreateBooking(ctx context.Context, booking *models.Booking) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.bookingColl.InsertOne(ctxWithTimeout, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if booking.PaymentID != "" {
				filter := bson.M{"paymentId": booking.PaymentID}
				if cnt, cntErr := repo.bookingColl.CountDocuments(ctxWithTimeout, filter); cntErr == nil && cnt > 0 {
					return nil
				}
			}
			return ErrSlotTaken
		}
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetBookedSlots returns the time labels of non-cancelled bookings for the
// given business and date.
func (repo *MongoBookingRepo) GetBookedSlots(ctx context.Context, businessID, date string) ([]string, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"businessId": businessID,
		"date":       date,
		"status":     bson.M{"$ne": models.BookingStatusCancelled},
	}
	opts := options.Find().SetProjection(bson.M{"time": 1})
	cursor, err := repo.bookingColl.Find(ctxWithTimeout, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching booked slots for business %s on %s: %w", businessID, date, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var docs []struct {
		Time string `bson:"time"`
	}
	if err := cursor.All(ctxWithTimeout, &docs); err != nil {
		return nil, fmt.Errorf("error decoding booked slots: %w", err)
	}

	slots := make([]string, 0, len(docs))
	for _, d := range docs {
		slots = append(slots, d.Time)
	}
	return slots, nil
}

// GetBookingByID retrieves a booking by its ID.
func (repo *MongoBookingRepo) GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.bookingColl.FindOne(ctxWithTimeout, bson.M{"id": bookingID}).Decode(&booking)
	if err != nil {
		return nil, fmt.Errorf("booking not found: %w", err)
	}
	return &booking, nil
}

// GetBookingsByUser returns a user's bookings, newest first.
func (repo *MongoBookingRepo) GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := repo.bookingColl.Find(ctxWithTimeout, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching bookings for user %s: %w", userID, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var bookings []models.Booking
	if err := cursor.All(ctxWithTimeout, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// CancelBooking marks a booking record as cancelled.
func (repo *MongoBookingRepo) CancelBooking(ctx context.Context, bookingID string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": bookingID}
	update := bson.M{"$set": bson.M{"status": models.BookingStatusCancelled}}
	_, err := repo.bookingColl.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error cancelling booking %s: %w", bookingID, err)
	}
	return nil
}
