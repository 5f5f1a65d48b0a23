package payments

import "business-registration-server/models"

// Gateway result codes with a dedicated meaning. Every other non-zero code is
// a definitive failure.
const (
	ResultSuccess       = 0
	ResultUserCancelled = 1032
	ResultTimeout       = 1037
)

// StatusForResultCode is the single source of truth for interpreting the
// gateway's result codes. Both the callback path and the polling path go
// through it.
func StatusForResultCode(code int) string {
	switch code {
	case ResultSuccess:
		return models.PaymentSucceeded
	case ResultUserCancelled:
		return models.PaymentCancelled
	case ResultTimeout:
		return models.PaymentTimedOut
	default:
		return models.PaymentFailed
	}
}

// InvoiceStatusFor maps a terminal payment status onto the business's invoice
// status.
func InvoiceStatusFor(status string) string {
	if status == models.PaymentSucceeded {
		return models.InvoicePaid
	}
	return models.InvoiceFailed
}
