package migrations

import (
	"business-registration-server/models"
	"business-registration-server/utils"
)

func MigrateAll() {
	utils.DB.AutoMigrate(&models.Business{})
	utils.DB.AutoMigrate(&models.User{})
	utils.DB.AutoMigrate(&models.Category{})
	utils.DB.AutoMigrate(&models.PaymentRequest{})
}
