package invoices

import (
	"net/http"

	"business-registration-server/utils"

	"github.com/gin-gonic/gin"
)

// Invoice is a business joined with its representative and the fee of its
// category.
type Invoice struct {
	ID                 uint    `json:"id"`
	BusinessName       string  `json:"businessName"`
	Category           string  `json:"category"`
	RegistrationNumber string  `json:"registrationNumber"`
	BusinessEmail      string  `json:"businessEmail"`
	IsVerified         bool    `json:"isVerified"`
	InvoiceStatus      string  `json:"invoiceStatus"`
	FirstName          string  `json:"representativeFirstName"`
	LastName           string  `json:"representativeLastName"`
	MobileNumber       string  `json:"representativeMobileNumber"`
	CategoryFee        float64 `json:"categoryFee"`
}

// GetInvoices lists registration invoices, optionally narrowed to one business
func GetInvoices(c *gin.Context) {
	query := utils.DB.Table("businesses").
		Select(`businesses.id, businesses.business_name, businesses.category,
			businesses.registration_number, businesses.business_email,
			businesses.is_verified, businesses.invoice_status,
			users.first_name, users.last_name, users.mobile_number,
			categories.fee AS category_fee`).
		Joins("INNER JOIN users ON users.business_id = businesses.id").
		Joins("LEFT JOIN categories ON LOWER(categories.name) = LOWER(businesses.category)").
		Where("businesses.deleted_at IS NULL").
		Order("businesses.created_at DESC")

	if businessID := c.Query("businessId"); businessID != "" {
		query = query.Where("businesses.id = ?", businessID)
	}

	var results []Invoice
	if err := query.Scan(&results).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invoice data"})
		return
	}

	c.JSON(http.StatusOK, results)
}
