package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"sajilosewa/models"
	"sajilosewa/services/payment"

	"go.uber.org/zap"
)

// --- Fakes ---

type fakeBookingRepo struct {
	booked      map[string][]string // key businessID|date
	bookedErr   error
	bookings    []models.Booking
	createCalls int
	createErr   error
}

func (r *fakeBookingRepo) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.createCalls++
	r.bookings = append(r.bookings, *booking)
	return nil
}

func (r *fakeBookingRepo) GetBookedSlots(ctx context.Context, businessID, date string) ([]string, error) {
	if r.bookedErr != nil {
		return nil, r.bookedErr
	}
	return r.booked[businessID+"|"+date], nil
}

func (r *fakeBookingRepo) GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	for i := range r.bookings {
		if r.bookings[i].ID == bookingID {
			return &r.bookings[i], nil
		}
	}
	return nil, errors.New("booking not found")
}

func (r *fakeBookingRepo) GetBookingsByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) CancelBooking(ctx context.Context, bookingID string) error { return nil }

type fakeBusinessRepo struct {
	business models.Business
	err      error
}

func (r *fakeBusinessRepo) GetBusinessByID(ctx context.Context, businessID string) (*models.Business, error) {
	if r.err != nil {
		return nil, r.err
	}
	b := r.business
	return &b, nil
}

func (r *fakeBusinessRepo) GetBusinessesByOwner(ctx context.Context, ownerID string) ([]models.Business, error) {
	return []models.Business{r.business}, nil
}

type fakePaymentRepo struct {
	payments map[string]*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*models.Payment)}
}

func (r *fakePaymentRepo) CreatePayment(ctx context.Context, p *models.Payment) error {
	copied := *p
	r.payments[p.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) GetPaymentByID(ctx context.Context, paymentID string) (*models.Payment, error) {
	p, ok := r.payments[paymentID]
	if !ok {
		return nil, errors.New("payment not found")
	}
	copied := *p
	return &copied, nil
}

func (r *fakePaymentRepo) UpdatePaymentStatus(ctx context.Context, paymentID, status string) error {
	if p, ok := r.payments[paymentID]; ok {
		p.Status = status
	}
	return nil
}

type fakeProvider struct {
	name        string
	configured  bool
	initResult  *payment.InitiationResult
	initErr     error
	outcome     models.PaymentOutcome
	verifyErr   error
	initiations int
}

func (p *fakeProvider) Name() string     { return p.name }
func (p *fakeProvider) Configured() bool { return p.configured }

func (p *fakeProvider) Initiate(ctx context.Context, req payment.InitiationRequest) (*payment.InitiationResult, error) {
	p.initiations++
	if p.initErr != nil {
		return nil, p.initErr
	}
	return p.initResult, nil
}

func (p *fakeProvider) Verify(ctx context.Context, providerRef string) (models.PaymentOutcome, error) {
	if p.verifyErr != nil {
		return models.PaymentOutcome{}, p.verifyErr
	}
	return p.outcome, nil
}

// --- Test harness ---

var testNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

const (
	testUser     = "user-1"
	testBusiness = "biz-1"
)

type testEnv struct {
	svc         *DefaultBookingSessionService
	bookingRepo *fakeBookingRepo
	paymentRepo *fakePaymentRepo
	pending     *payment.MemoryPendingStore
	stripe      *fakeProvider
	khalti      *fakeProvider
}

func newTestEnv() *testEnv {
	bookingRepo := &fakeBookingRepo{booked: make(map[string][]string)}
	paymentRepo := newFakePaymentRepo()
	pending := payment.NewMemoryPendingStore()
	stripe := &fakeProvider{
		name:       models.MethodStripe,
		configured: true,
		initResult: &payment.InitiationResult{ProviderRef: "pi_123", ClientSecret: "pi_123_secret"},
		outcome:    models.PaymentOutcome{Completed: true, ProviderStatus: "succeeded", Reference: "pi_123"},
	}
	khalti := &fakeProvider{
		name:       models.MethodKhalti,
		configured: true,
		initResult: &payment.InitiationResult{ProviderRef: "pidx-abc123", PaymentURL: "https://test.khalti.com/pay/abc123"},
		outcome:    models.PaymentOutcome{Completed: true, ProviderStatus: "Completed", Reference: "pidx-abc123"},
	}
	logger := zap.NewNop()

	svc := &DefaultBookingSessionService{
		Store:   NewMemorySessionStore(),
		Pending: pending,
		Providers: payment.Registry{
			models.MethodStripe: stripe,
			models.MethodKhalti: khalti,
		},
		Availability: &DefaultAvailabilityService{Repo: bookingRepo, Logger: logger},
		BookingRepo:  bookingRepo,
		BusinessRepo: &fakeBusinessRepo{business: models.Business{
			ID:         testBusiness,
			Name:       "Sparkle Cleaning",
			HourlyRate: 25.00,
		}},
		PaymentRepo: paymentRepo,
		Logger:      logger,
		Now:         func() time.Time { return testNow },
	}
	return &testEnv{
		svc:         svc,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		pending:     pending,
		stripe:      stripe,
		khalti:      khalti,
	}
}

func tomorrow() string { return testNow.AddDate(0, 0, 1).Format(dateLayout) }

func strPtr(s string) *string { return &s }

func testLocation() *models.Location {
	return &models.Location{Latitude: 27.7172, Longitude: 85.324, Name: "Thamel, Kathmandu"}
}

// openWithDraft opens a session and fills the draft up to the given method.
func openWithDraft(t *testing.T, env *testEnv, method string) *models.BookingSession {
	t.Helper()
	ctx := context.Background()
	session, err := env.svc.OpenSession(ctx, testUser, testBusiness)
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	patch := models.DraftPatch{
		Date:     strPtr(tomorrow()),
		Location: testLocation(),
	}
	if method != "" {
		patch.PaymentMethod = strPtr(method)
	}
	session, err = env.svc.UpdateSession(ctx, session.SessionID, testUser, patch)
	if err != nil {
		t.Fatalf("UpdateSession(date/location) failed: %v", err)
	}
	session, err = env.svc.UpdateSession(ctx, session.SessionID, testUser, models.DraftPatch{Time: strPtr("2:00 PM")})
	if err != nil {
		t.Fatalf("UpdateSession(time) failed: %v", err)
	}
	return session
}

// --- State machine tests ---

func TestOpenSession(t *testing.T) {
	env := newTestEnv()
	session, err := env.svc.OpenSession(context.Background(), testUser, testBusiness)
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	if session.State != models.StateSelectingSlot {
		t.Errorf("expected state %q, got %q", models.StateSelectingSlot, session.State)
	}
	if len(session.Slots) != 18 {
		t.Errorf("expected 18 slots in grid, got %d", len(session.Slots))
	}
	if session.Business.Name != "Sparkle Cleaning" {
		t.Errorf("business not resolved: %+v", session.Business)
	}
}

func TestUpdateSessionRejectsPastDate(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	session, _ := env.svc.OpenSession(ctx, testUser, testBusiness)

	yesterday := testNow.AddDate(0, 0, -1).Format(dateLayout)
	_, err := env.svc.UpdateSession(ctx, session.SessionID, testUser, models.DraftPatch{Date: strPtr(yesterday)})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for past date, got %v", err)
	}

	// Today itself is allowed.
	today := testNow.Format(dateLayout)
	if _, err := env.svc.UpdateSession(ctx, session.SessionID, testUser, models.DraftPatch{Date: strPtr(today)}); err != nil {
		t.Fatalf("expected today to be accepted, got %v", err)
	}
}

func TestChangingDateClearsSelectedTime(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	session := openWithDraft(t, env, "")
	if session.Draft.Time != "2:00 PM" {
		t.Fatalf("expected time to be set, got %q", session.Draft.Time)
	}

	dayAfter := testNow.AddDate(0, 0, 2).Format(dateLayout)
	session, err := env.svc.UpdateSession(ctx, session.SessionID, testUser, models.DraftPatch{Date: strPtr(dayAfter)})
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}
	if session.Draft.Time != "" {
		t.Errorf("expected time cleared after date change, got %q", session.Draft.Time)
	}
}

func TestBookedSlotNotSelectable(t *testing.T) {
	// Scenario B: "2:00 PM" is booked; it renders flagged and selecting it fails.
	env := newTestEnv()
	ctx := context.Background()
	env.bookingRepo.booked[testBusiness+"|"+tomorrow()] = []string{"2:00 PM"}

	session, _ := env.svc.OpenSession(ctx, testUser, testBusiness)
	session, err := env.svc.UpdateSession(ctx, session.SessionID, testUser, models.DraftPatch{Date: strPtr(tomorrow())})
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	var flagged bool
	for _, slot := range session.Slots {
		if slot.Label == "2:00 PM" && slot.IsBooked {
			flagged = true
		}
	}
	if !flagged {
		t.Error("expected 2:00 PM to be flagged as booked in the grid")
	}

	_, err = env.svc.UpdateSession(ctx, session.SessionID, testUser, models.DraftPatch{Time: strPtr("2:00 PM")})
	var conflictErr *ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected ConflictError selecting a booked slot, got %v", err)
	}

	got, _ := env.svc.GetSession(ctx, session.SessionID, testUser)
	if got.Draft.Time != "" {
		t.Errorf("selecting a booked slot must not change the draft, got time %q", got.Draft.Time)
	}
}

func TestUnknownSlotLabelRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	session, _ := env.svc.OpenSession(ctx, testUser, testBusiness)
	env.svc.UpdateSession(ctx, session.SessionID, testUser, models.DraftPatch{Date: strPtr(tomorrow())})

	_, err := env.svc.UpdateSession(ctx, session.SessionID, testUser, models.DraftPatch{Time: strPtr("9:00 AM")})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for out-of-grid label, got %v", err)
	}
}

func TestSelectingMethodMovesToSelectingPayment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	session, _ := env.svc.OpenSession(ctx, testUser, testBusiness)

	session, err := env.svc.UpdateSession(ctx, session.SessionID, testUser, models.DraftPatch{PaymentMethod: strPtr(models.MethodStripe)})
	if err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}
	if session.State != models.StateSelectingPayment {
		t.Errorf("expected state %q, got %q", models.StateSelectingPayment, session.State)
	}

	_, err = env.svc.UpdateSession(ctx, session.SessionID, testUser, models.DraftPatch{PaymentMethod: strPtr("paypal")})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for unknown method, got %v", err)
	}
}

func TestCloseSessionKeepsPendingRedirectPayment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	session := openWithDraft(t, env, models.MethodKhalti)

	if _, err := env.svc.Submit(ctx, session.SessionID, testUser, Customer{Name: "Asha", Email: "asha@example.com"}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := env.svc.CloseSession(ctx, session.SessionID, testUser); err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}

	// The session is gone but the pending redirect record survives.
	if _, err := env.svc.GetSession(ctx, session.SessionID, testUser); err == nil {
		t.Error("expected closed session to be gone")
	}
	rec, err := env.pending.TakeOnce(ctx, testUser)
	if err != nil {
		t.Fatalf("TakeOnce failed: %v", err)
	}
	if rec == nil {
		t.Fatal("expected pending redirect payment to survive panel closure")
	}
}

func TestSessionIsolationBetweenUsers(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	session, _ := env.svc.OpenSession(ctx, testUser, testBusiness)

	if _, err := env.svc.GetSession(ctx, session.SessionID, "someone-else"); err == nil {
		t.Error("expected another user's session to be invisible")
	}
}
