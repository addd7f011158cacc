package models

import "time"

// Payment method identifiers. The draft's method selects the provider.
const (
	MethodStripe = "stripe"
	MethodKhalti = "khalti"
)

// Payment statuses as tracked in the payments collection.
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusVerified  = "verified"
	PaymentStatusFailed    = "failed"
)

// PaymentSession is the client-held handle for one payment attempt.
// At most one is active per booking draft; re-initiating invalidates
// any prior unconfirmed session.
type PaymentSession struct {
	PaymentID    string  `json:"paymentId"`
	ClientSecret string  `json:"clientSecret,omitempty"` // in-page provider only
	PaymentURL   string  `json:"paymentUrl,omitempty"`   // redirect provider only
	Amount       float64 `json:"amount"`
	Method       string  `json:"method"`
}

// Payment is the server-side record of one payment attempt.
type Payment struct {
	ID          string    `bson:"id" json:"id"`
	UserID      string    `bson:"userId" json:"userId"`
	BusinessID  string    `bson:"businessId" json:"businessId"`
	Method      string    `bson:"method" json:"method"`
	Amount      float64   `bson:"amount" json:"amount"`
	ProviderRef string    `bson:"providerRef" json:"providerRef"` // PaymentIntent id or Khalti pidx
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PendingRedirectPayment survives the full-page navigation required by the
// redirect provider. Exactly one may exist per user; it is consumed
// (read once, then deleted) on return regardless of outcome.
type PendingRedirectPayment struct {
	PaymentID    string  `json:"paymentId"`
	BusinessID   string  `json:"businessId"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	LocationName string  `json:"locationName"`
}

// PaymentOutcome is the result of a provider-side verification step.
type PaymentOutcome struct {
	Completed      bool
	ProviderStatus string
	Reference      string // provider transaction reference
}
