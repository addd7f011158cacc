package paymentRepo

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

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	paymentColl *mongo.Collection
}

// NewMongoPaymentRepo constructs a new instance of MongoPaymentRepo.
func NewMongoPaymentRepo() PaymentRepository {
	db := database.MongoClient.Database("sajilosewa")
	repo := &MongoPaymentRepo{
		paymentColl: db.Collection("payments"),
	}
	repo.ensureIndexes()
	return repo
}

func (repo *MongoPaymentRepo) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "providerRef", Value: 1}},
			Options: options.Index().SetName("provider_ref_idx"),
		},
	}
	// Index creation failures are non-fatal; lookups still work unindexed.
	repo.paymentColl.Indexes().CreateMany(ctx, indexModels)
}

// CreatePayment inserts a new payment record.
func (repo *MongoPaymentRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := repo.paymentColl.InsertOne(ctxWithTimeout, payment)
	if err != nil {
		return fmt.Errorf("error creating payment record: %w", err)
	}
	return nil
}

// GetPaymentByID retrieves a payment record by its ID.
func (repo *MongoPaymentRepo) GetPaymentByID(ctx context.Context, paymentID string) (*models.Payment, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var payment models.Payment
	err := repo.paymentColl.FindOne(ctxWithTimeout, bson.M{"id": paymentID}).Decode(&payment)
	if err != nil {
		return nil, fmt.Errorf("payment not found: %w", err)
	}
	return &payment, nil
}

// UpdatePaymentStatus sets the status of an existing payment record.
func (repo *MongoPaymentRepo) UpdatePaymentStatus(ctx context.Context, paymentID, status string) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": paymentID}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	_, err := repo.paymentColl.UpdateOne(ctxWithTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("error updating payment %s: %w", paymentID, err)
	}
	return nil
}
