package handlers

import (
	"net/http"

	"sajilosewa/utils"

	"github.com/gin-gonic/gin"
)

// ConfirmStripePayment is the in-page completion step: the client confirmed
// the PaymentIntent and submits its reference for server-side verification.
func (h *BookingHandler) ConfirmStripePayment(c *gin.Context) {
	var input struct {
		PaymentIntentID string `json:"paymentIntentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	session, err := h.Service.ConfirmStripePayment(c.Request.Context(), c.Param("sessionID"), currentUserID(c), input.PaymentIntentID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session": session})
}

// KhaltiReturn is the redirect-return completion path. It runs whenever the
// return URL carries a pidx; the pending record's take-once consumption makes
// re-running it harmless.
func (h *BookingHandler) KhaltiReturn(c *gin.Context) {
	pidx := c.Query("pidx")
	if pidx == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "pidx is required")
		return
	}

	result, err := h.Service.CompleteRedirect(c.Request.Context(), currentUserID(c), pidx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !result.Handled {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "no pending payment to complete"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"khaltiStatus": result.Status,
		"booking":      result.Booking,
	})
}
