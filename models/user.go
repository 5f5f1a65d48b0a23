package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	FirstName    string `json:"representativeFirstName"`
	LastName     string `json:"representativeLastName"`
	Email        string `gorm:"unique;not null" json:"representativeEmail"`
	MobileNumber string `json:"representativeMobileNumber"`
	IDNumber     string `gorm:"column:id_number" json:"representativeIdNumber"`
	Password     string `gorm:"not null" json:"-"`
	Role         string `gorm:"default:user" json:"role"`
	BusinessID   uint   `gorm:"not null" json:"business_id"`
}
