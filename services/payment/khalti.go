package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sajilosewa/models"

	"go.uber.org/zap"
)

// KhaltiStatusCompleted is the only lookup status that allows booking
// creation on the redirect-return path.
const KhaltiStatusCompleted = "Completed"

// KhaltiProvider completes payments via a browser redirect to Khalti's
// hosted payment page and a lookup call on return.
type KhaltiProvider struct {
	Key        string
	BaseURL    string // e.g. https://a.khalti.com/api/v2
	ReturnURL  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func (p *KhaltiProvider) Name() string { return models.MethodKhalti }

func (p *KhaltiProvider) Configured() bool { return p.Key != "" && p.BaseURL != "" }

type khaltiInitiatePayload struct {
	ReturnURL         string             `json:"return_url"`
	WebsiteURL        string             `json:"website_url"`
	Amount            int64              `json:"amount"` // paisa
	PurchaseOrderID   string             `json:"purchase_order_id"`
	PurchaseOrderName string             `json:"purchase_order_name"`
	CustomerInfo      khaltiCustomerInfo `json:"customer_info"`
}

type khaltiCustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type khaltiInitiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at"`
	Detail     string `json:"detail"`
}

type khaltiLookupResponse struct {
	Pidx          string `json:"pidx"`
	TotalAmount   int64  `json:"total_amount"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Detail        string `json:"detail"`
}

// Initiate opens a Khalti ePayment session. The caller persists the pending
// record and hands the returned payment URL to the browser; no further code
// runs until the redirect comes back.
func (p *KhaltiProvider) Initiate(ctx context.Context, req InitiationRequest) (*InitiationResult, error) {
	if !p.Configured() {
		return nil, &ConfigError{Provider: p.Name(), Message: "missing Khalti credentials"}
	}

	payload := khaltiInitiatePayload{
		ReturnURL:         p.ReturnURL,
		WebsiteURL:        p.ReturnURL,
		Amount:            toMinorUnits(req.Amount),
		PurchaseOrderID:   req.PaymentID,
		PurchaseOrderName: req.Business.Name,
		CustomerInfo: khaltiCustomerInfo{
			Name:  req.CustomerName,
			Email: req.CustomerEmail,
		},
	}

	var resp khaltiInitiateResponse
	if err := p.post(ctx, "/epayment/initiate/", payload, &resp); err != nil {
		return nil, err
	}
	if resp.Pidx == "" || resp.PaymentURL == "" {
		return nil, &ProviderError{Provider: p.Name(), Message: "initiate response missing pidx or payment_url"}
	}

	p.Logger.Info("khalti payment initiated",
		zap.String("paymentId", req.PaymentID),
		zap.String("pidx", resp.Pidx),
	)
	return &InitiationResult{
		ProviderRef: resp.Pidx,
		PaymentURL:  resp.PaymentURL,
	}, nil
}

// Verify looks up the payment attempt by pidx. Only a "Completed" status
// counts as a completed payment; every other status (Pending, Expired,
// User canceled, Refunded) does not.
func (p *KhaltiProvider) Verify(ctx context.Context, providerRef string) (models.PaymentOutcome, error) {
	if !p.Configured() {
		return models.PaymentOutcome{}, &ConfigError{Provider: p.Name(), Message: "missing Khalti credentials"}
	}

	payload := map[string]string{"pidx": providerRef}
	var resp khaltiLookupResponse
	if err := p.post(ctx, "/epayment/lookup/", payload, &resp); err != nil {
		return models.PaymentOutcome{}, err
	}

	return models.PaymentOutcome{
		Completed:      resp.Status == KhaltiStatusCompleted,
		ProviderStatus: resp.Status,
		Reference:      resp.Pidx,
	}, nil
}

func (p *KhaltiProvider) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal khalti payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build khalti request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+p.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client().Do(req)
	if err != nil {
		return fmt.Errorf("khalti request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read khalti response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		p.Logger.Warn("khalti returned non-OK status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(data)),
		)
		return &ProviderError{
			Provider: p.Name(),
			Message:  fmt.Sprintf("status %d: %s", resp.StatusCode, string(data)),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse khalti response: %w", err)
	}
	return nil
}

func (p *KhaltiProvider) client() *http.Client {
	if p.HTTPClient != nil {
		return p.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}
