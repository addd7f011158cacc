package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking session endpoints.
	OpenSession   gin.HandlerFunc
	GetSession    gin.HandlerFunc
	UpdateSession gin.HandlerFunc
	CloseSession  gin.HandlerFunc
	Submit        gin.HandlerFunc

	// Slot availability.
	BookedSlots gin.HandlerFunc

	// Payment completion endpoints.
	ConfirmStripePayment gin.HandlerFunc
	KhaltiReturn         gin.HandlerFunc

	// Booking history.
	History gin.HandlerFunc
}
