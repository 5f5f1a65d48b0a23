package models

import "gorm.io/gorm"

// Payment request lifecycle states. A request is created as Initiated, becomes
// Pending once the gateway accepts the STK push, and settles into exactly one
// of the terminal states. Terminal requests are never mutated again.
const (
	PaymentInitiated = "Initiated"
	PaymentPending   = "Pending"
	PaymentSucceeded = "Succeeded"
	PaymentFailed    = "Failed"
	PaymentCancelled = "Cancelled"
	PaymentTimedOut  = "TimedOut"
)

type PaymentRequest struct {
	gorm.Model
	MerchantRequestID string `gorm:"not null" json:"merchant_request_id"`
	CheckoutRequestID string `gorm:"unique;not null" json:"checkout_request_id"`
	BusinessID        uint   `gorm:"not null;index" json:"business_id"`
	PhoneNumber       string `gorm:"not null" json:"phone_number"`
	Amount            int    `gorm:"not null" json:"amount"`
	AccountReference  string `json:"account_reference"`
	Description       string `json:"description"`
	Status            string `gorm:"not null;index" json:"status"`
	ResultCode        int    `json:"result_code"`
	ResultDescription string `json:"result_description"`
	ReceiptNumber     string `json:"receipt_number"`
}

// IsTerminal reports whether the request has settled.
func (p *PaymentRequest) IsTerminal() bool {
	switch p.Status {
	case PaymentSucceeded, PaymentFailed, PaymentCancelled, PaymentTimedOut:
		return true
	}
	return false
}
