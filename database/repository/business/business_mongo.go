package businessRepo

import (
	"context"
	"fmt"
	"time"

	"sajilosewa/database"
	"sajilosewa/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBusinessRepo implements BusinessRepository using MongoDB.
type MongoBusinessRepo struct {
	businessColl *mongo.Collection
}

// NewMongoBusinessRepo constructs a new instance of MongoBusinessRepo.
func NewMongoBusinessRepo() BusinessRepository {
	db := database.MongoClient.Database("sajilosewa")
	return &MongoBusinessRepo{
		businessColl: db.Collection("businesses"),
	}
}

// GetBusinessByID retrieves a business document by ID.
func (repo *MongoBusinessRepo) GetBusinessByID(ctx context.Context, businessID string) (*models.Business, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var business models.Business
	filter := bson.M{"id": businessID}
	if err := repo.businessColl.FindOne(ctxWithTimeout, filter).Decode(&business); err != nil {
		return nil, fmt.Errorf("error fetching business with id %s: %w", businessID, err)
	}
	return &business, nil
}

// GetBusinessesByOwner returns all businesses registered by an owner.
func (repo *MongoBusinessRepo) GetBusinessesByOwner(ctx context.Context, ownerID string) ([]models.Business, error) {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.businessColl.Find(ctxWithTimeout, bson.M{"ownerId": ownerID})
	if err != nil {
		return nil, fmt.Errorf("error fetching businesses for owner %s: %w", ownerID, err)
	}
	defer cursor.Close(ctxWithTimeout)

	var businesses []models.Business
	if err := cursor.All(ctxWithTimeout, &businesses); err != nil {
		return nil, fmt.Errorf("error decoding businesses: %w", err)
	}
	return businesses, nil
}
