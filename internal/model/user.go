package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents the merchant-owner account row stored in the database.
// The primary key is the id issued by the identity provider, so the row and
// the auth account always reference the same person.
type User struct {
	ID            string         `json:"id" gorm:"type:uuid;primaryKey"`
	Email         string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	FirstName     string         `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName      string         `json:"last_name" gorm:"type:varchar(100);not null"`
	Country       string         `json:"country" gorm:"type:varchar(2);not null"`
	UserType      string         `json:"user_type" gorm:"type:varchar(20);not null;default:'reseller'"`
	ReferralCode  string         `json:"referral_code" gorm:"type:varchar(8);uniqueIndex;not null"`
	IsActive      bool           `json:"is_active" gorm:"default:true"`
	KYCStatus     string         `json:"kyc_status" gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentUserID *string        `json:"payment_user_id,omitempty" gorm:"type:varchar(50);index"` // Set once the payments platform account exists
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}
