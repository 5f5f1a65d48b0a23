package mpesa

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// sandboxClient synthesizes gateway responses without any network calls. It is
// selected whenever test mode is on and keeps the response shapes and latency
// of the real gateway so the rest of the system can be exercised against it.
type sandboxClient struct {
	now          func() time.Time
	pushLatency  time.Duration
	queryLatency time.Duration
	settleAfter  time.Duration

	mu       sync.Mutex
	pushedAt map[string]time.Time
}

func newSandboxClient() *sandboxClient {
	return &sandboxClient{
		now:          time.Now,
		pushLatency:  2 * time.Second,
		queryLatency: time.Second,
		settleAfter:  15 * time.Second,
		pushedAt:     make(map[string]time.Time),
	}
}

func (s *sandboxClient) AccessToken(ctx context.Context) (string, error) {
	return fmt.Sprintf("sandbox_access_token_%d", s.now().UnixMilli()), nil
}

func (s *sandboxClient) InitiateSTKPush(ctx context.Context, phoneNumber string, amount int, businessID uint, accountReference, description string) (*STKPushResponse, error) {
	if amount < 1 {
		return nil, &ValidationError{Message: "amount must be at least 1"}
	}
	if _, err := NormalizePhone(phoneNumber); err != nil {
		return nil, err
	}

	if err := sleepCtx(ctx, s.pushLatency); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	checkoutRequestID := "ws_CO_TEST_" + id

	s.mu.Lock()
	s.pushedAt[checkoutRequestID] = s.now()
	s.mu.Unlock()

	log.Printf("sandbox STK push accepted: checkout_request_id=%s amount=%d", checkoutRequestID, amount)

	return &STKPushResponse{
		MerchantRequestID:   "TEST-" + id,
		CheckoutRequestID:   checkoutRequestID,
		ResponseCode:        "0",
		ResponseDescription: "Success. Request accepted for processing",
		CustomerMessage:     "Success. Request accepted for processing",
	}, nil
}

// QueryStatus reports the push as still processing until the settle window has
// elapsed, then settles it as successful. Unknown IDs settle immediately.
func (s *sandboxClient) QueryStatus(ctx context.Context, checkoutRequestID string) (*StatusResponse, error) {
	if checkoutRequestID == "" {
		return nil, &ValidationError{Message: "checkout request ID is required"}
	}

	if err := sleepCtx(ctx, s.queryLatency); err != nil {
		return nil, err
	}

	s.mu.Lock()
	pushed, known := s.pushedAt[checkoutRequestID]
	s.mu.Unlock()

	if known && s.now().Sub(pushed) < s.settleAfter {
		return nil, ErrNotYetResolved
	}

	return &StatusResponse{
		ResponseCode:        "0",
		ResponseDescription: "The service request has been accepted successfully",
		MerchantRequestID:   "TEST-" + checkoutRequestID,
		CheckoutRequestID:   checkoutRequestID,
		ResultCode:          "0",
		ResultDesc:          "The service request is processed successfully.",
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
