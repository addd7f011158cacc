package routes

import (
	"sajilosewa/handlers"
	"sajilosewa/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers all endpoints for the booking flow.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	booking := r.Group("/api/booking")
	{
		booking.Use(middleware.JWTAuthUserMiddleware())
		booking.POST("/session", hb.OpenSession)
		booking.GET("/session/:sessionID", hb.GetSession)
		booking.PUT("/session/:sessionID", hb.UpdateSession)
		booking.DELETE("/session/:sessionID", hb.CloseSession)
		booking.POST("/session/:sessionID/submit", hb.Submit)
		booking.POST("/session/:sessionID/confirm", hb.ConfirmStripePayment)
		booking.GET("/booked-slots", hb.BookedSlots)
		booking.GET("/history", hb.History)
	}
}

// RegisterPaymentRoutes registers the payment-provider return endpoints.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	payment := r.Group("/api/payment")
	{
		payment.Use(middleware.JWTAuthUserMiddleware())
		payment.GET("/khalti/return", hb.KhaltiReturn)
	}
}
