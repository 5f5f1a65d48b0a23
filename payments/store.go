package payments

import (
	"context"

	"business-registration-server/models"

	"gorm.io/gorm"
)

// Store persists payment requests and the invoice status they settle into.
// FinalizePaymentRequest must be an atomic conditional update: the transition
// applies only while the request is still pending, so concurrent callback and
// polling writers cannot double-apply a terminal result.
type Store interface {
	CreatePaymentRequest(ctx context.Context, pr *models.PaymentRequest) error
	GetPaymentRequest(ctx context.Context, checkoutRequestID string) (*models.PaymentRequest, error)
	FinalizePaymentRequest(ctx context.Context, checkoutRequestID, status string, resultCode int, resultDescription, receiptNumber string) (bool, error)
	UpdateInvoiceStatus(ctx context.Context, businessID uint, invoiceStatus string) error
}

// GormStore implements Store on the application's MySQL database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreatePaymentRequest(ctx context.Context, pr *models.PaymentRequest) error {
	return s.db.WithContext(ctx).Create(pr).Error
}

func (s *GormStore) GetPaymentRequest(ctx context.Context, checkoutRequestID string) (*models.PaymentRequest, error) {
	var pr models.PaymentRequest
	if err := s.db.WithContext(ctx).Where("checkout_request_id = ?", checkoutRequestID).First(&pr).Error; err != nil {
		return nil, err
	}
	return &pr, nil
}

// FinalizePaymentRequest applies the terminal transition with a conditional
// UPDATE keyed on the pending status. A second writer finds zero affected rows
// and its result is discarded without error.
func (s *GormStore) FinalizePaymentRequest(ctx context.Context, checkoutRequestID, status string, resultCode int, resultDescription, receiptNumber string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.PaymentRequest{}).
		Where("checkout_request_id = ? AND status = ?", checkoutRequestID, models.PaymentPending).
		Updates(map[string]interface{}{
			"status":             status,
			"result_code":        resultCode,
			"result_description": resultDescription,
			"receipt_number":     receiptNumber,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) UpdateInvoiceStatus(ctx context.Context, businessID uint, invoiceStatus string) error {
	return s.db.WithContext(ctx).Model(&models.Business{}).
		Where("id = ?", businessID).
		Update("invoice_status", invoiceStatus).Error
}
