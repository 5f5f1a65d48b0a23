package models

import "gorm.io/gorm"

// Category is a registration fee category managed by administrators.
type Category struct {
	gorm.Model
	Name        string  `gorm:"unique;not null" json:"name"`
	Fee         float64 `gorm:"default:0" json:"fee"`
	Description string  `json:"description"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`
}
