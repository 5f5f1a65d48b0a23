package auth

import (
	"log"
	"net/http"

	"business-registration-server/models"
	"business-registration-server/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Register creates the business record and its representative user in a single
// transaction
func Register(c *gin.Context) {
	var input struct {
		BusinessName       string `json:"businessName"`
		RegistrationNumber string `json:"registrationNumber"`
		Category           string `json:"category"`
		Country            string `json:"country"`
		County             string `json:"county"`
		BusinessEmail      string `json:"businessEmail"`
		KraPin             string `json:"kraPin"`
		MobileNumber       string `json:"mobileNumber"`
		FirstName          string `json:"representativeFirstName"`
		LastName           string `json:"representativeLastName"`
		IDNumber           string `json:"representativeIdNumber"`
		Email              string `json:"representativeEmail"`
		RepMobileNumber    string `json:"representativeMobileNumber"`
		Password           string `json:"representativePassword"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid input data"})
		return
	}

	if input.BusinessName == "" || input.BusinessEmail == "" || input.Email == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to hash password"})
		return
	}

	business := models.Business{
		BusinessName:       input.BusinessName,
		Category:           input.Category,
		RegistrationNumber: input.RegistrationNumber,
		Country:            input.Country,
		County:             input.County,
		BusinessEmail:      input.BusinessEmail,
		KraPin:             input.KraPin,
		MobileNumber:       input.MobileNumber,
		InvoiceStatus:      models.InvoiceUnpaid,
	}

	user := models.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		MobileNumber: input.RepMobileNumber,
		IDNumber:     input.IDNumber,
		Password:     string(hashedPassword),
		Role:         "user",
	}

	err = utils.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&business).Error; err != nil {
			return err
		}
		user.BusinessID = business.ID
		return tx.Create(&user).Error
	})
	if err != nil {
		log.Printf("Registration failed for %s: %v", input.BusinessEmail, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to register business"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Registration successful",
		"businessId": business.ID,
		"userId":     user.ID,
	})
}
