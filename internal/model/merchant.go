package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Business type values accepted for a merchant.
const (
	BusinessTypeGoods    = "goods"
	BusinessTypeServices = "services"
)

// Merchant represents the merchant row stored in the database. It is only
// written after every upstream provisioning step succeeded, so an existing
// row is itself the completion signal for onboarding.
type Merchant struct {
	ID              string         `json:"id" gorm:"type:uuid;primaryKey"`
	BusinessName    string         `json:"business_name" gorm:"type:varchar(100);not null"`
	BusinessType    string         `json:"business_type" gorm:"type:varchar(20);not null"`
	ReferralCode    string         `json:"referral_code" gorm:"type:varchar(8);uniqueIndex;not null"`
	UserID          string         `json:"user_id" gorm:"type:uuid;index;not null"` // Owning User row
	PaymentUserID   string         `json:"payment_user_id" gorm:"type:varchar(50);not null"`
	PaymentWalletID string         `json:"payment_wallet_id" gorm:"type:varchar(50);not null"`
	CompanyNumber   string         `json:"company_number" gorm:"type:varchar(50);not null"`
	AddressLine1    *string        `json:"address_line1,omitempty" gorm:"type:varchar(255)"`
	City            *string        `json:"city,omitempty" gorm:"type:varchar(100)"`
	PostalCode      *string        `json:"postal_code,omitempty" gorm:"type:varchar(20)"`
	Country         *string        `json:"country,omitempty" gorm:"type:varchar(2)"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate assigns the merchant id before the row is inserted.
func (m *Merchant) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
