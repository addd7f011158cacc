package models

// SlotStatus is one entry of the bookable slot grid for a business/date pair.
type SlotStatus struct {
	Label    string `json:"time"`
	IsBooked bool   `json:"isBooked"`
}
