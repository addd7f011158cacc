package handlers

import (
	"errors"
	"net/http"

	"sajilosewa/models"
	"sajilosewa/services/booking"
	"sajilosewa/services/payment"
	"sajilosewa/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking-session flow over HTTP.
type BookingHandler struct {
	Service booking.BookingSessionService
	Logger  *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(service booking.BookingSessionService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: service, Logger: logger}
}

// OpenSession opens a new booking session for a business.
func (h *BookingHandler) OpenSession(c *gin.Context) {
	var input struct {
		BusinessID string `json:"businessId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Service.OpenSession(c.Request.Context(), currentUserID(c), input.BusinessID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}

// GetSession returns the current session state and slot grid.
func (h *BookingHandler) GetSession(c *gin.Context) {
	session, err := h.Service.GetSession(c.Request.Context(), c.Param("sessionID"), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}

// UpdateSession applies a draft patch (date, time, location, payment method).
func (h *BookingHandler) UpdateSession(c *gin.Context) {
	var patch models.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Service.UpdateSession(c.Request.Context(), c.Param("sessionID"), currentUserID(c), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}

// CloseSession dismisses the panel.
func (h *BookingHandler) CloseSession(c *gin.Context) {
	if err := h.Service.CloseSession(c.Request.Context(), c.Param("sessionID"), currentUserID(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Submit initiates payment for the session's draft.
func (h *BookingHandler) Submit(c *gin.Context) {
	customer := booking.Customer{
		Name:  c.GetString("userName"),
		Email: c.GetString("userEmail"),
	}

	result, err := h.Service.Submit(c.Request.Context(), c.Param("sessionID"), currentUserID(c), customer)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := gin.H{"success": true, "session": result.Session}
	if result.Payment != nil {
		resp["paymentId"] = result.Payment.PaymentID
		if result.Payment.ClientSecret != "" {
			resp["clientSecret"] = result.Payment.ClientSecret
		}
		if result.Payment.PaymentURL != "" {
			resp["paymentUrl"] = result.Payment.PaymentURL
		}
	}
	if result.Booking != nil {
		resp["booking"] = result.Booking
	}
	c.JSON(http.StatusOK, resp)
}

// BookedSlots returns the taken time labels for a business/date pair.
func (h *BookingHandler) BookedSlots(c *gin.Context) {
	businessID := c.Query("businessId")
	date := c.Query("date")
	if businessID == "" || date == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "businessId and date are required")
		return
	}

	slots, err := h.Service.BookedSlots(c.Request.Context(), businessID, date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookedSlots": slots})
}

// History returns the caller's bookings.
func (h *BookingHandler) History(c *gin.Context) {
	bookings, err := h.Service.BookingHistory(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

// respondError maps the error taxonomy onto HTTP statuses.
func (h *BookingHandler) respondError(c *gin.Context, err error) {
	var (
		validationErr   *booking.ValidationError
		conflictErr     *booking.ConflictError
		stateErr        *booking.StateError
		configErr       *payment.ConfigError
		providerErr     *payment.ProviderError
		verificationErr *payment.VerificationError
	)
	switch {
	case errors.As(err, &validationErr):
		utils.JSONError(c, http.StatusBadRequest, "validation failed", validationErr.Message)
	case errors.As(err, &stateErr):
		utils.JSONError(c, http.StatusConflict, "invalid action for current state", stateErr.Message)
	case errors.As(err, &conflictErr):
		utils.JSONError(c, http.StatusConflict, "conflict", conflictErr.Message)
	case errors.As(err, &configErr):
		utils.JSONError(c, http.StatusServiceUnavailable, "payment provider misconfigured", configErr.Message)
	case errors.As(err, &providerErr):
		utils.JSONError(c, http.StatusPaymentRequired, "payment failed", providerErr.Message)
	case errors.As(err, &verificationErr):
		utils.JSONError(c, http.StatusBadGateway, "payment verification failed", verificationErr.Message)
	default:
		h.Logger.Error("booking request failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "request failed", err.Error())
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString("userID")
}
