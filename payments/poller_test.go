package payments

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"business-registration-server/models"
	"business-registration-server/mpesa"
)

func TestPollerReturnsTerminalOutcome(t *testing.T) {
	var calls int32
	gateway := &fakeGateway{
		pushFunc: acceptedPush,
		queryFunc: func(checkoutRequestID string) (*mpesa.StatusResponse, error) {
			if atomic.AddInt32(&calls, 1) < 4 {
				return nil, mpesa.ErrNotYetResolved
			}
			return &mpesa.StatusResponse{
				CheckoutRequestID: checkoutRequestID,
				ResultCode:        "0",
				ResultDesc:        "The service request is processed successfully.",
			}, nil
		},
	}
	store := NewMemoryStore()
	o := NewOrchestrator(gateway, store)

	res, err := o.Pay(context.Background(), "0712345678", 500, 7)
	if err != nil {
		t.Fatalf("Pay failed: %v", err)
	}

	poller := &Poller{Orchestrator: o, Interval: time.Millisecond, MaxAttempts: 10}
	outcome, err := poller.Wait(context.Background(), res.CheckoutRequestID)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}

	if outcome.ResultCode != 0 || outcome.Status != models.PaymentSucceeded {
		t.Errorf("unexpected outcome: %+v", outcome)
	}
	if calls != 4 {
		t.Errorf("gateway queried %d times, want 4", calls)
	}

	pr, _ := store.GetPaymentRequest(context.Background(), res.CheckoutRequestID)
	if pr.Status != models.PaymentSucceeded {
		t.Errorf("status = %q, want Succeeded", pr.Status)
	}
}

func TestPollerExhaustsBudget(t *testing.T) {
	var calls int32
	gateway := &fakeGateway{
		pushFunc: acceptedPush,
		queryFunc: func(string) (*mpesa.StatusResponse, error) {
			atomic.AddInt32(&calls, 1)
			return nil, mpesa.ErrNotYetResolved
		},
	}
	o := NewOrchestrator(gateway, NewMemoryStore())

	res, err := o.Pay(context.Background(), "0712345678", 500, 7)
	if err != nil {
		t.Fatalf("Pay failed: %v", err)
	}

	poller := &Poller{Orchestrator: o, Interval: time.Millisecond, MaxAttempts: 30}
	if _, err := poller.Wait(context.Background(), res.CheckoutRequestID); !errors.Is(err, ErrPollBudgetExhausted) {
		t.Fatalf("expected ErrPollBudgetExhausted, got %v", err)
	}
	if calls != 30 {
		t.Errorf("gateway queried %d times, want 30", calls)
	}
}

func TestPollerKeepsGoingThroughTransientFailures(t *testing.T) {
	var calls int32
	gateway := &fakeGateway{
		pushFunc: acceptedPush,
		queryFunc: func(checkoutRequestID string) (*mpesa.StatusResponse, error) {
			if atomic.AddInt32(&calls, 1) < 3 {
				return nil, &mpesa.GatewayError{StatusCode: 503, Message: "service unavailable"}
			}
			return &mpesa.StatusResponse{
				CheckoutRequestID: checkoutRequestID,
				ResultCode:        "0",
				ResultDesc:        "The service request is processed successfully.",
			}, nil
		},
	}
	o := NewOrchestrator(gateway, NewMemoryStore())

	res, err := o.Pay(context.Background(), "0712345678", 500, 7)
	if err != nil {
		t.Fatalf("Pay failed: %v", err)
	}

	poller := &Poller{Orchestrator: o, Interval: time.Millisecond, MaxAttempts: 10}
	outcome, err := poller.Wait(context.Background(), res.CheckoutRequestID)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if outcome.Status != models.PaymentSucceeded {
		t.Errorf("status = %q, want Succeeded", outcome.Status)
	}
}

func TestPollerAbortsOnValidationError(t *testing.T) {
	o := NewOrchestrator(&fakeGateway{}, NewMemoryStore())

	poller := &Poller{Orchestrator: o, Interval: time.Millisecond, MaxAttempts: 10}
	_, err := poller.Wait(context.Background(), "")
	var validationErr *mpesa.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestPollerHonorsContextCancellation(t *testing.T) {
	gateway := &fakeGateway{
		pushFunc: acceptedPush,
		queryFunc: func(string) (*mpesa.StatusResponse, error) {
			return nil, mpesa.ErrNotYetResolved
		},
	}
	o := NewOrchestrator(gateway, NewMemoryStore())

	res, err := o.Pay(context.Background(), "0712345678", 500, 7)
	if err != nil {
		t.Fatalf("Pay failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	poller := &Poller{Orchestrator: o, Interval: time.Hour, MaxAttempts: 10}
	if _, err := poller.Wait(ctx, res.CheckoutRequestID); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
