package models

import "time"

// Business is a bookable service listing owned by a service provider.
type Business struct {
	ID         string   `bson:"id" json:"id"`
	OwnerID    string   `bson:"ownerId" json:"ownerId"`
	Name       string   `bson:"name" json:"name"`
	Category   string   `bson:"category" json:"category"`
	HourlyRate float64  `bson:"hourlyRate" json:"hourlyRate"` // per-slot charge, two-fraction-digit currency units
	Location   Location `bson:"location,omitempty" json:"location,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
