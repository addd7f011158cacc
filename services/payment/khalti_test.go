package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sajilosewa/models"

	"go.uber.org/zap"
)

func khaltiTestProvider(baseURL string) *KhaltiProvider {
	return &KhaltiProvider{
		Key:       "test-secret-key",
		BaseURL:   baseURL,
		ReturnURL: "http://localhost:3000/booking/return",
		Logger:    zap.NewNop(),
	}
}

func khaltiTestRequest() InitiationRequest {
	return InitiationRequest{
		PaymentID: "pay-1",
		Draft: models.BookingDraft{
			BusinessID:    "biz-1",
			Date:          "2025-03-11",
			Time:          "2:00 PM",
			PaymentMethod: models.MethodKhalti,
		},
		Business:      models.Business{ID: "biz-1", Name: "Sparkle Cleaning", HourlyRate: 25.00},
		Amount:        25.00,
		CustomerName:  "Asha",
		CustomerEmail: "asha@example.com",
	}
}

func TestKhaltiProvider_WithMockAPI(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	p := khaltiTestProvider(server.URL)
	ctx := context.Background()

	t.Run("Initiate", func(t *testing.T) {
		mux.HandleFunc("/epayment/initiate/", func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Key test-secret-key" {
				t.Errorf("unexpected Authorization header %q", got)
			}
			var payload khaltiInitiatePayload
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			if payload.Amount != 2500 {
				t.Errorf("expected amount in paisa 2500, got %d", payload.Amount)
			}
			if payload.PurchaseOrderID != "pay-1" {
				t.Errorf("expected purchase_order_id pay-1, got %q", payload.PurchaseOrderID)
			}
			if payload.ReturnURL == "" || payload.CustomerInfo.Email != "asha@example.com" {
				t.Errorf("incomplete payload: %+v", payload)
			}
			json.NewEncoder(w).Encode(khaltiInitiateResponse{
				Pidx:       "pidx-abc123",
				PaymentURL: "https://test.khalti.com/pay/abc123",
			})
		})

		res, err := p.Initiate(ctx, khaltiTestRequest())
		if err != nil {
			t.Fatalf("Initiate failed: %v", err)
		}
		if res.ProviderRef != "pidx-abc123" {
			t.Errorf("expected pidx-abc123, got %q", res.ProviderRef)
		}
		if res.PaymentURL != "https://test.khalti.com/pay/abc123" {
			t.Errorf("unexpected payment URL %q", res.PaymentURL)
		}
		if res.ClientSecret != "" {
			t.Error("redirect provider must not return a client secret")
		}
	})

	t.Run("LookupCompleted", func(t *testing.T) {
		mux.HandleFunc("/epayment/lookup/", func(w http.ResponseWriter, r *http.Request) {
			var payload map[string]string
			json.NewDecoder(r.Body).Decode(&payload)
			status := KhaltiStatusCompleted
			if payload["pidx"] == "pidx-cancelled" {
				status = "User canceled"
			}
			json.NewEncoder(w).Encode(khaltiLookupResponse{
				Pidx:          payload["pidx"],
				TotalAmount:   2500,
				Status:        status,
				TransactionID: "txn-1",
			})
		})

		outcome, err := p.Verify(ctx, "pidx-abc123")
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if !outcome.Completed || outcome.ProviderStatus != KhaltiStatusCompleted {
			t.Errorf("expected completed outcome, got %+v", outcome)
		}

		outcome, err = p.Verify(ctx, "pidx-cancelled")
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if outcome.Completed {
			t.Errorf("only %q counts as completed, got %+v", KhaltiStatusCompleted, outcome)
		}
	})
}

func TestKhaltiProviderErrors(t *testing.T) {
	t.Run("Unconfigured", func(t *testing.T) {
		p := &KhaltiProvider{Logger: zap.NewNop()}
		_, err := p.Initiate(context.Background(), khaltiTestRequest())
		var configErr *ConfigError
		if !errors.As(err, &configErr) {
			t.Fatalf("expected ConfigError, got %v", err)
		}
	})

	t.Run("NonOKStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail":"Amount should be greater than Rs. 10"}`))
		}))
		defer server.Close()

		p := khaltiTestProvider(server.URL)
		_, err := p.Initiate(context.Background(), khaltiTestRequest())
		var providerErr *ProviderError
		if !errors.As(err, &providerErr) {
			t.Fatalf("expected ProviderError, got %v", err)
		}
	})

	t.Run("MissingPidx", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(khaltiInitiateResponse{})
		}))
		defer server.Close()

		p := khaltiTestProvider(server.URL)
		_, err := p.Initiate(context.Background(), khaltiTestRequest())
		var providerErr *ProviderError
		if !errors.As(err, &providerErr) {
			t.Fatalf("expected ProviderError for empty response, got %v", err)
		}
	})
}
