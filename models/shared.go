package models

// Location is a geographic point with a human-readable name,
// captured before payment and attached to the booking.
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Name      string  `bson:"name" json:"name"`
}

// IsSet reports whether the location has been captured. A zero point with no
// name means the user has not picked anything yet.
func (l Location) IsSet() bool {
	return (l.Latitude != 0 || l.Longitude != 0) && l.Name != ""
}
