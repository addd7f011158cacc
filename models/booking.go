package models

import "time"

// Booking statuses.
const (
	BookingStatusPending   = "PENDING"
	BookingStatusCompleted = "COMPLETED"
	BookingStatusCancelled = "CANCELLED"
)

// SessionState is the explicit state of a booking session. A session holds a
// single current state; transitions are driven by the booking service.
type SessionState string

const (
	StateClosed           SessionState = "closed"
	StateSelectingSlot    SessionState = "selectingSlot"
	StateSelectingPayment SessionState = "selectingPayment"
	StateAwaitingPayment  SessionState = "awaitingPayment"
	StateCompleted        SessionState = "completed"
)

// BookingDraft is the in-progress, session-held booking attempt. All fields
// except PaymentMethod must be set before payment can be initiated.
type BookingDraft struct {
	BusinessID    string   `json:"businessId"`
	Date          string   `json:"date"` // YYYY-MM-DD, must be >= today
	Time          string   `json:"time"` // one of the fixed slot labels
	Location      Location `json:"location"`
	PaymentMethod string   `json:"paymentMethod"`
}

// Complete reports whether every field required for payment initiation is set.
func (d BookingDraft) Complete() bool {
	return d.BusinessID != "" && d.Date != "" && d.Time != "" &&
		d.Location.IsSet() && d.PaymentMethod != ""
}

// DraftPatch carries a partial update to a booking draft. Nil fields are
// left untouched.
type DraftPatch struct {
	Date          *string   `json:"date,omitempty"`
	Time          *string   `json:"time,omitempty"`
	Location      *Location `json:"location,omitempty"`
	PaymentMethod *string   `json:"paymentMethod,omitempty"`
}

// BookingSession is the server-held state of one open booking panel.
type BookingSession struct {
	SessionID string          `json:"sessionId"`
	UserID    string          `json:"userId"`
	State     SessionState    `json:"state"`
	Draft     BookingDraft    `json:"draft"`
	Business  Business        `json:"business"`
	Slots     []SlotStatus    `json:"slots"`
	Payment   *PaymentSession `json:"payment,omitempty"`
	Booking   *Booking        `json:"booking,omitempty"` // set once completed
	CreatedAt time.Time       `json:"createdAt"`
}

// Booking is the persisted booking record, created exactly once per
// successful payment.
type Booking struct {
	ID           string    `bson:"id" json:"id"`
	BusinessID   string    `bson:"businessId" json:"businessId"`
	BusinessName string    `bson:"businessName,omitempty" json:"businessName,omitempty"`
	UserID       string    `bson:"userId" json:"userId"`
	Date         string    `bson:"date" json:"date"`
	Time         string    `bson:"time" json:"time"`
	Location     Location  `bson:"location" json:"location"`
	PaymentID    string    `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	Status       string    `bson:"status" json:"status"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// SubmitResult is returned by payment initiation. Exactly one of the
// provider-specific fields is populated, mirroring the provider fork.
type SubmitResult struct {
	Session *BookingSession `json:"session"`
	Payment *PaymentSession `json:"payment,omitempty"`
	// Booking is set only on the no-payment fallback path.
	Booking *Booking `json:"booking,omitempty"`
}

// RedirectResult is returned by the redirect-provider completion path.
type RedirectResult struct {
	Handled   bool     `json:"handled"` // false when no pending record existed
	Completed bool     `json:"completed"`
	Status    string   `json:"status,omitempty"` // provider-reported status
	Booking   *Booking `json:"booking,omitempty"`
}
