package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"business-registration-server/models"
	"business-registration-server/mpesa"
	corepayments "business-registration-server/payments"

	"github.com/gin-gonic/gin"
)

// stubGateway implements mpesa.Client for handler tests.
type stubGateway struct {
	pushErr  error
	queryErr error
}

func (s *stubGateway) AccessToken(ctx context.Context) (string, error) {
	return "test-token", nil
}

func (s *stubGateway) InitiateSTKPush(ctx context.Context, phoneNumber string, amount int, businessID uint, accountReference, description string) (*mpesa.STKPushResponse, error) {
	if s.pushErr != nil {
		return nil, s.pushErr
	}
	return &mpesa.STKPushResponse{
		MerchantRequestID:   "29115-34620561-1",
		CheckoutRequestID:   "ws_CO_test_1",
		ResponseCode:        "0",
		ResponseDescription: "Success. Request accepted for processing",
		CustomerMessage:     "Success. Request accepted for processing",
	}, nil
}

func (s *stubGateway) QueryStatus(ctx context.Context, checkoutRequestID string) (*mpesa.StatusResponse, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return &mpesa.StatusResponse{
		ResponseCode:      "0",
		CheckoutRequestID: checkoutRequestID,
		ResultCode:        "0",
		ResultDesc:        "The service request is processed successfully.",
	}, nil
}

func setupRouter(gateway mpesa.Client, store corepayments.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(corepayments.NewOrchestrator(gateway, store))

	r := gin.New()
	r.POST("/api/payments/pay", h.InitiatePayment)
	r.POST("/api/payments/status", h.CheckPaymentStatus)
	r.POST("/api/payments/callback", h.MpesaCallback)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestInitiatePaymentMissingFields(t *testing.T) {
	r := setupRouter(&stubGateway{}, corepayments.NewMemoryStore())

	for _, body := range []string{
		`{}`,
		`{"phoneNumber":"0712345678"}`,
		`{"phoneNumber":"0712345678","amount":500}`,
		`{"amount":500,"businessId":7}`,
	} {
		w := postJSON(r, "/api/payments/pay", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestInitiatePaymentRejectsSmallAmount(t *testing.T) {
	r := setupRouter(&stubGateway{}, corepayments.NewMemoryStore())

	w := postJSON(r, "/api/payments/pay", `{"phoneNumber":"0712345678","amount":0,"businessId":7}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestInitiatePaymentSuccess(t *testing.T) {
	store := corepayments.NewMemoryStore()
	r := setupRouter(&stubGateway{}, store)

	w := postJSON(r, "/api/payments/pay", `{"phoneNumber":"0712345678","amount":500,"businessId":7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResponseCode      string `json:"ResponseCode"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success || resp.Data.CheckoutRequestID != "ws_CO_test_1" {
		t.Errorf("unexpected response: %+v", resp)
	}

	pr, err := store.GetPaymentRequest(context.Background(), "ws_CO_test_1")
	if err != nil {
		t.Fatalf("payment request not persisted: %v", err)
	}
	if pr.Status != models.PaymentPending {
		t.Errorf("status = %q, want Pending", pr.Status)
	}
}

func TestInitiatePaymentGatewayFailure(t *testing.T) {
	gateway := &stubGateway{pushErr: &mpesa.GatewayError{StatusCode: 503, Message: "service unavailable"}}
	r := setupRouter(gateway, corepayments.NewMemoryStore())

	w := postJSON(r, "/api/payments/pay", `{"phoneNumber":"0712345678","amount":500,"businessId":7}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Success || resp.Message != "Failed to initiate payment" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCheckPaymentStatusMissingID(t *testing.T) {
	r := setupRouter(&stubGateway{}, corepayments.NewMemoryStore())

	w := postJSON(r, "/api/payments/status", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCheckPaymentStatusPending(t *testing.T) {
	gateway := &stubGateway{queryErr: mpesa.ErrNotYetResolved}
	r := setupRouter(gateway, corepayments.NewMemoryStore())

	w := postJSON(r, "/api/payments/status", `{"checkoutRequestID":"ws_CO_test_1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Pending bool `json:"pending"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success || !resp.Data.Pending {
		t.Errorf("unexpected response: %s", w.Body.String())
	}
}

func TestCheckPaymentStatusTerminal(t *testing.T) {
	r := setupRouter(&stubGateway{}, corepayments.NewMemoryStore())

	w := postJSON(r, "/api/payments/status", `{"checkoutRequestID":"ws_CO_test_1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			ResultCode string `json:"ResultCode"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success || resp.Data.ResultCode != "0" {
		t.Errorf("unexpected response: %s", w.Body.String())
	}
}

func TestCallbackAlwaysAcknowledges(t *testing.T) {
	r := setupRouter(&stubGateway{}, corepayments.NewMemoryStore())

	for _, body := range []string{
		`not json at all`,
		`{}`,
		`{"Body":{}}`,
	} {
		w := postJSON(r, "/api/payments/callback", body)
		if w.Code != http.StatusOK {
			t.Errorf("body %q: status = %d, want 200", body, w.Code)
		}

		var ack struct {
			ResultCode int    `json:"ResultCode"`
			ResultDesc string `json:"ResultDesc"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
			t.Fatalf("decoding acknowledgement: %v", err)
		}
		if ack.ResultCode != 0 || ack.ResultDesc != "Success" {
			t.Errorf("body %q: acknowledgement = %+v", body, ack)
		}
	}
}

func TestCallbackAppliesTerminalResult(t *testing.T) {
	store := corepayments.NewMemoryStore()
	r := setupRouter(&stubGateway{}, store)

	w := postJSON(r, "/api/payments/pay", `{"phoneNumber":"0712345678","amount":500,"businessId":7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("pay status = %d, want 200", w.Code)
	}

	callback := fmt.Sprintf(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": %q,
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 500},
						{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
						{"Name": "PhoneNumber", "Value": 254712345678}
					]
				}
			}
		}
	}`, "ws_CO_test_1")

	w = postJSON(r, "/api/payments/callback", callback)
	if w.Code != http.StatusOK {
		t.Fatalf("callback status = %d, want 200", w.Code)
	}

	pr, err := store.GetPaymentRequest(context.Background(), "ws_CO_test_1")
	if err != nil {
		t.Fatalf("loading payment request: %v", err)
	}
	if pr.Status != models.PaymentSucceeded {
		t.Errorf("status = %q, want Succeeded", pr.Status)
	}
	if pr.ReceiptNumber != "NLJ7RT61SV" {
		t.Errorf("receipt number = %q, want NLJ7RT61SV", pr.ReceiptNumber)
	}
	if store.InvoiceStatus(7) != models.InvoicePaid {
		t.Errorf("invoice status = %q, want paid", store.InvoiceStatus(7))
	}
}
