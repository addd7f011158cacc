package paymentRepo

import (
	"context"

	"sajilosewa/models"
)

// PaymentRepository abstracts persistence for payment attempt records.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByID(ctx context.Context, paymentID string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID, status string) error
}
