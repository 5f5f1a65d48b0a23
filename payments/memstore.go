package payments

import (
	"context"
	"errors"
	"sync"

	"business-registration-server/models"
)

// MemoryStore is an in-memory Store used when running against the sandbox
// gateway without a database, and by tests.
type MemoryStore struct {
	mu       sync.Mutex
	requests map[string]*models.PaymentRequest
	invoices map[uint]string
	nextID   uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests: make(map[string]*models.PaymentRequest),
		invoices: make(map[uint]string),
	}
}

func (s *MemoryStore) CreatePaymentRequest(ctx context.Context, pr *models.PaymentRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[pr.CheckoutRequestID]; exists {
		return errors.New("payments: duplicate checkout request ID")
	}

	s.nextID++
	pr.ID = s.nextID
	cp := *pr
	s.requests[pr.CheckoutRequestID] = &cp
	return nil
}

func (s *MemoryStore) GetPaymentRequest(ctx context.Context, checkoutRequestID string) (*models.PaymentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pr, ok := s.requests[checkoutRequestID]
	if !ok {
		return nil, errors.New("payments: payment request not found")
	}
	cp := *pr
	return &cp, nil
}

func (s *MemoryStore) FinalizePaymentRequest(ctx context.Context, checkoutRequestID, status string, resultCode int, resultDescription, receiptNumber string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pr, ok := s.requests[checkoutRequestID]
	if !ok || pr.Status != models.PaymentPending {
		return false, nil
	}

	pr.Status = status
	pr.ResultCode = resultCode
	pr.ResultDescription = resultDescription
	pr.ReceiptNumber = receiptNumber
	return true, nil
}

func (s *MemoryStore) UpdateInvoiceStatus(ctx context.Context, businessID uint, invoiceStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invoices[businessID] = invoiceStatus
	return nil
}

// InvoiceStatus returns the last status recorded for a business.
func (s *MemoryStore) InvoiceStatus(businessID uint) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.invoices[businessID]
}
