package payments

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"business-registration-server/mpesa"
)

const (
	DefaultPollInterval = 10 * time.Second
	DefaultMaxAttempts  = 30
)

// ErrPollBudgetExhausted is returned when the polling budget runs out without
// a terminal result. The result is then unknown to the poller; a late callback
// may still settle the request out-of-band.
var ErrPollBudgetExhausted = errors.New("payments: poll budget exhausted before a terminal result")

// PollOutcome is the terminal result observed by the polling loop.
type PollOutcome struct {
	ResultCode int
	ResultDesc string
	Status     string
}

// Poller repeatedly checks a payment request's status at a fixed interval
// until a terminal result is observed or the attempt budget is exhausted.
type Poller struct {
	Orchestrator *Orchestrator
	Interval     time.Duration
	MaxAttempts  int
}

func NewPoller(o *Orchestrator) *Poller {
	return &Poller{
		Orchestrator: o,
		Interval:     DefaultPollInterval,
		MaxAttempts:  DefaultMaxAttempts,
	}
}

// Wait blocks until the payment request settles, the budget runs out or the
// context is cancelled. Transient gateway failures do not consume the result;
// the loop keeps polling.
func (p *Poller) Wait(ctx context.Context, checkoutRequestID string) (*PollOutcome, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res, err := p.Orchestrator.PollStatus(ctx, checkoutRequestID)
		switch {
		case err == nil:
			if code, convErr := strconv.Atoi(res.ResultCode); convErr == nil {
				return &PollOutcome{
					ResultCode: code,
					ResultDesc: res.ResultDesc,
					Status:     StatusForResultCode(code),
				}, nil
			}
		case errors.Is(err, mpesa.ErrNotYetResolved):
			// Still processing; keep waiting.
		default:
			var validationErr *mpesa.ValidationError
			if errors.As(err, &validationErr) {
				return nil, err
			}
			log.Printf("Status poll %d/%d for %s failed: %v", attempt, maxAttempts, checkoutRequestID, err)
		}

		if attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, ErrPollBudgetExhausted
}
