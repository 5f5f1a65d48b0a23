package models

import "gorm.io/gorm"

// Invoice status values derived from the associated payment request.
const (
	InvoiceUnpaid     = "unpaid"
	InvoiceProcessing = "processing"
	InvoicePaid       = "paid"
	InvoiceFailed     = "failed"
)

type Business struct {
	gorm.Model
	BusinessName       string `gorm:"not null" json:"businessName"`
	Category           string `json:"category"`
	RegistrationNumber string `json:"registrationNumber"`
	Country            string `json:"country"`
	County             string `json:"county"`
	BusinessEmail      string `gorm:"not null" json:"businessEmail"`
	KraPin             string `gorm:"column:kra_pin" json:"kraPin"`
	MobileNumber       string `json:"mobileNumber"`
	IsVerified         bool   `gorm:"default:false" json:"isVerified"`
	InvoiceStatus      string `gorm:"default:unpaid" json:"invoiceStatus"`
}
