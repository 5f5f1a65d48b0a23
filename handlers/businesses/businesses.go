package businesses

import (
	"net/http"

	"business-registration-server/models"
	"business-registration-server/utils"

	"github.com/gin-gonic/gin"
)

// GetBusinesses lists businesses, optionally filtered by verification status
func GetBusinesses(c *gin.Context) {
	query := utils.DB.Order("created_at DESC")

	if verified := c.Query("verified"); verified != "" {
		query = query.Where("is_verified = ?", verified == "true" || verified == "1")
	}

	var businesses []models.Business
	if err := query.Find(&businesses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch businesses"})
		return
	}

	c.JSON(http.StatusOK, businesses)
}

func GetBusiness(c *gin.Context) {
	id := c.Param("id")

	var business models.Business
	if err := utils.DB.First(&business, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	c.JSON(http.StatusOK, business)
}

// VerifyBusiness approves or rejects a registration. The representative is
// notified by email either way.
func VerifyBusiness(c *gin.Context) {
	id := c.Param("id")

	var input struct {
		IsVerified *bool `json:"isVerified"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.IsVerified == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isVerified is required"})
		return
	}

	var business models.Business
	if err := utils.DB.First(&business, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}

	if err := utils.DB.Model(&business).Update("is_verified", *input.IsVerified).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update verification status"})
		return
	}

	if *input.IsVerified {
		go utils.SendApprovalEmail(business.BusinessEmail, business.BusinessName)
	} else {
		go utils.SendRejectionEmail(business.BusinessEmail, business.BusinessName)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Business verification status updated successfully"})
}
