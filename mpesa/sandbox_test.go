package mpesa

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestSandbox() (*sandboxClient, *time.Time) {
	s := newSandboxClient()
	s.pushLatency = 0
	s.queryLatency = 0

	current := time.Now()
	s.now = func() time.Time { return current }
	return s, &current
}

func TestSandboxPushShape(t *testing.T) {
	s, _ := newTestSandbox()

	res, err := s.InitiateSTKPush(context.Background(), "0712345678", 500, 7, "", "")
	if err != nil {
		t.Fatalf("InitiateSTKPush failed: %v", err)
	}

	if !strings.HasPrefix(res.CheckoutRequestID, "ws_CO_TEST_") {
		t.Errorf("checkout request ID = %q, want ws_CO_TEST_ prefix", res.CheckoutRequestID)
	}
	if !strings.HasPrefix(res.MerchantRequestID, "TEST-") {
		t.Errorf("merchant request ID = %q, want TEST- prefix", res.MerchantRequestID)
	}
	if res.ResponseCode != "0" {
		t.Errorf("response code = %q, want 0", res.ResponseCode)
	}
}

func TestSandboxPushValidatesInput(t *testing.T) {
	s, _ := newTestSandbox()

	var validationErr *ValidationError
	if _, err := s.InitiateSTKPush(context.Background(), "0712345678", 0, 7, "", ""); !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError for zero amount, got %v", err)
	}
	if _, err := s.InitiateSTKPush(context.Background(), "not-a-phone", 500, 7, "", ""); !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError for bad phone, got %v", err)
	}
}

func TestSandboxQuerySettlesAfterWindow(t *testing.T) {
	s, current := newTestSandbox()

	res, err := s.InitiateSTKPush(context.Background(), "0712345678", 500, 7, "", "")
	if err != nil {
		t.Fatalf("InitiateSTKPush failed: %v", err)
	}

	// Within the settle window the push is still processing.
	if _, err := s.QueryStatus(context.Background(), res.CheckoutRequestID); !errors.Is(err, ErrNotYetResolved) {
		t.Fatalf("expected ErrNotYetResolved inside the settle window, got %v", err)
	}

	*current = current.Add(s.settleAfter + time.Second)

	status, err := s.QueryStatus(context.Background(), res.CheckoutRequestID)
	if err != nil {
		t.Fatalf("QueryStatus after settle window failed: %v", err)
	}
	if status.ResultCode != "0" {
		t.Errorf("result code = %q, want 0", status.ResultCode)
	}
	if status.CheckoutRequestID != res.CheckoutRequestID {
		t.Errorf("checkout request ID = %q, want %q", status.CheckoutRequestID, res.CheckoutRequestID)
	}
}

func TestSandboxQueryUnknownIDSettlesImmediately(t *testing.T) {
	s, _ := newTestSandbox()

	status, err := s.QueryStatus(context.Background(), "ws_CO_TEST_unknown")
	if err != nil {
		t.Fatalf("QueryStatus failed: %v", err)
	}
	if status.ResultCode != "0" {
		t.Errorf("result code = %q, want 0", status.ResultCode)
	}
}
