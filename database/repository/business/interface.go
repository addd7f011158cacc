package businessRepo

import (
	"context"

	"sajilosewa/models"
)

// BusinessRepository abstracts lookups of bookable service listings.
type BusinessRepository interface {
	GetBusinessByID(ctx context.Context, businessID string) (*models.Business, error)
	GetBusinessesByOwner(ctx context.Context, ownerID string) ([]models.Business, error)
}
