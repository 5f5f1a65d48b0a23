package payments

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"business-registration-server/models"
	"business-registration-server/mpesa"
)

// CallbackEnvelope is the gateway's nested result envelope delivered to the
// webhook endpoint.
type CallbackEnvelope struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type StkCallback struct {
	MerchantRequestID string           `json:"MerchantRequestID"`
	CheckoutRequestID string           `json:"CheckoutRequestID"`
	ResultCode        int              `json:"ResultCode"`
	ResultDesc        string           `json:"ResultDesc"`
	CallbackMetadata  CallbackMetadata `json:"CallbackMetadata"`
}

type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

type CallbackItem struct {
	Name  string `json:"Name"`
	Value interface{} `json:"Value"`
}

// ReceiptNumber extracts the M-Pesa receipt number from the callback metadata,
// if present.
func (m CallbackMetadata) ReceiptNumber() string {
	for _, item := range m.Item {
		if item.Name == "MpesaReceiptNumber" {
			if s, ok := item.Value.(string); ok {
				return s
			}
		}
	}
	return ""
}

// Orchestrator owns the full lifecycle of a payment request, from initiation
// to terminal resolution. All state mutation is funneled through it; the
// callback receiver and the polling caller never touch the store directly.
type Orchestrator struct {
	gateway mpesa.Client
	store   Store
}

func NewOrchestrator(gateway mpesa.Client, store Store) *Orchestrator {
	return &Orchestrator{gateway: gateway, store: store}
}

// Pay validates the request, initiates the STK push and records exactly one
// pending payment request for the returned checkout request ID. Nothing is
// persisted when the gateway call fails.
func (o *Orchestrator) Pay(ctx context.Context, phoneNumber string, amount int, businessID uint) (*mpesa.STKPushResponse, error) {
	if businessID == 0 {
		return nil, &mpesa.ValidationError{Message: "business reference is required"}
	}
	if amount < 1 {
		return nil, &mpesa.ValidationError{Message: "amount must be at least 1"}
	}
	formattedPhone, err := mpesa.NormalizePhone(phoneNumber)
	if err != nil {
		return nil, err
	}

	pr := &models.PaymentRequest{
		BusinessID:       businessID,
		PhoneNumber:      formattedPhone,
		Amount:           amount,
		AccountReference: fmt.Sprintf("INV-%d", businessID),
		Description:      "Business Registration Payment",
		Status:           models.PaymentInitiated,
	}

	res, err := o.gateway.InitiateSTKPush(ctx, formattedPhone, amount, businessID, pr.AccountReference, pr.Description)
	if err != nil {
		return nil, err
	}

	pr.MerchantRequestID = res.MerchantRequestID
	pr.CheckoutRequestID = res.CheckoutRequestID
	pr.Status = models.PaymentPending

	if err := o.store.CreatePaymentRequest(ctx, pr); err != nil {
		return nil, err
	}

	if err := o.store.UpdateInvoiceStatus(ctx, businessID, models.InvoiceProcessing); err != nil {
		log.Printf("Failed to mark invoice as processing for business %d: %v", businessID, err)
	}

	log.Printf("Payment initiated: checkout_request_id=%s business_id=%d amount=%d", pr.CheckoutRequestID, businessID, amount)
	return res, nil
}

// HandleCallback applies the gateway's pushed result. It never returns an
// error: the webhook must always be acknowledged, so internal failures are
// logged and swallowed here.
func (o *Orchestrator) HandleCallback(ctx context.Context, cb StkCallback) {
	if cb.CheckoutRequestID == "" {
		log.Printf("Callback ignored: missing checkout request ID (merchant_request_id=%s)", cb.MerchantRequestID)
		return
	}
	o.applyResult(ctx, cb.CheckoutRequestID, cb.ResultCode, cb.ResultDesc, cb.CallbackMetadata.ReceiptNumber())
}

// PollStatus queries the gateway and, when the returned code is terminal,
// applies the same transition as the callback path. ErrNotYetResolved is
// passed through while the push is still processing; genuine failures are
// surfaced without mutating state so the caller can retry.
func (o *Orchestrator) PollStatus(ctx context.Context, checkoutRequestID string) (*mpesa.StatusResponse, error) {
	if checkoutRequestID == "" {
		return nil, &mpesa.ValidationError{Message: "checkout request ID is required"}
	}

	res, err := o.gateway.QueryStatus(ctx, checkoutRequestID)
	if err != nil {
		return nil, err
	}

	code, convErr := strconv.Atoi(res.ResultCode)
	if convErr != nil {
		log.Printf("Status query returned no usable result code for %s: %q", checkoutRequestID, res.ResultCode)
		return res, nil
	}

	o.applyResult(ctx, checkoutRequestID, code, res.ResultDesc, "")
	return res, nil
}

// applyResult maps the result code, performs the compare-and-set transition to
// the terminal state and propagates it to the business's invoice. The first
// writer wins; later identical or conflicting results are no-ops.
func (o *Orchestrator) applyResult(ctx context.Context, checkoutRequestID string, resultCode int, resultDesc, receiptNumber string) {
	status := StatusForResultCode(resultCode)

	applied, err := o.store.FinalizePaymentRequest(ctx, checkoutRequestID, status, resultCode, resultDesc, receiptNumber)
	if err != nil {
		log.Printf("Failed to finalize payment request %s: %v", checkoutRequestID, err)
		return
	}
	if !applied {
		// Already terminal, or no such request. Idempotent no-op.
		return
	}

	pr, err := o.store.GetPaymentRequest(ctx, checkoutRequestID)
	if err != nil {
		log.Printf("Finalized payment request %s but could not load it: %v", checkoutRequestID, err)
		return
	}

	if err := o.store.UpdateInvoiceStatus(ctx, pr.BusinessID, InvoiceStatusFor(status)); err != nil {
		log.Printf("Failed to update invoice status for business %d: %v", pr.BusinessID, err)
		return
	}

	log.Printf("Payment request %s settled: status=%s result_code=%d", checkoutRequestID, status, resultCode)
}
