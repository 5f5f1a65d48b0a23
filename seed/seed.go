// seed/seed.go
package seed

import (
	"errors"
	"log"

	"business-registration-server/models"
	"business-registration-server/utils"

	"gorm.io/gorm"
)

// SeedCategories inserts the default fee categories when none exist yet.
func SeedCategories() error {
	var existing models.Category
	err := utils.DB.First(&existing).Error
	if err == nil {
		log.Println("Fee categories already exist. Skipping seeding.")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	defaults := []models.Category{
		{Name: "Sole Proprietorship", Fee: 1000, Description: "Single-owner business registration", IsActive: true},
		{Name: "Partnership", Fee: 2000, Description: "Registration for partnerships", IsActive: true},
		{Name: "Limited Company", Fee: 5000, Description: "Private limited company registration", IsActive: true},
	}

	for _, category := range defaults {
		if err := utils.DB.Create(&category).Error; err != nil {
			return err
		}
	}

	log.Println("Default fee categories seeded successfully.")
	return nil
}
