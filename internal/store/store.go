// Package store is the persistence adapter for the user and merchant tables.
// Deletes exist only to compensate a failed onboarding run.
package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"onboarding-service/internal/model"
)

// Entity names used in persistence errors and code-space scoping.
const (
	EntityUser     = "user"
	EntityMerchant = "merchant"
)

// PersistenceError is returned when a write is rejected by the database or
// returns no row.
type PersistenceError struct {
	Entity string
	Op     string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store persists users and merchants through gorm.
type Store struct {
	db *gorm.DB
}

// New creates a store over the given database handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// InsertUser writes the user row and returns it with database-assigned
// timestamps populated.
func (s *Store) InsertUser(ctx context.Context, user *model.User) (*model.User, error) {
	if result := s.db.WithContext(ctx).Create(user); result.Error != nil {
		return nil, &PersistenceError{Entity: EntityUser, Op: "create", Err: result.Error}
	}
	return user, nil
}

// InsertMerchant writes the merchant row, assigning its id on the way in.
func (s *Store) InsertMerchant(ctx context.Context, merchant *model.Merchant) (*model.Merchant, error) {
	if result := s.db.WithContext(ctx).Create(merchant); result.Error != nil {
		return nil, &PersistenceError{Entity: EntityMerchant, Op: "create", Err: result.Error}
	}
	return merchant, nil
}

// SetUserPaymentID records the payments-platform user id on an existing user row.
func (s *Store) SetUserPaymentID(ctx context.Context, userID, paymentUserID string) error {
	result := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("payment_user_id", paymentUserID)
	if result.Error != nil {
		return &PersistenceError{Entity: EntityUser, Op: "update", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return &PersistenceError{Entity: EntityUser, Op: "update", Err: gorm.ErrRecordNotFound}
	}
	return nil
}

// DeleteUser removes a user row during rollback.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	if result := s.db.WithContext(ctx).Where("id = ?", userID).Delete(&model.User{}); result.Error != nil {
		return &PersistenceError{Entity: EntityUser, Op: "delete", Err: result.Error}
	}
	return nil
}

// DeleteMerchant removes a merchant row during rollback.
func (s *Store) DeleteMerchant(ctx context.Context, merchantID string) error {
	if result := s.db.WithContext(ctx).Where("id = ?", merchantID).Delete(&model.Merchant{}); result.Error != nil {
		return &PersistenceError{Entity: EntityMerchant, Op: "delete", Err: result.Error}
	}
	return nil
}

// ReferralCodeExists reports whether a referral code is already taken within
// one entity's code space. User and merchant codes are checked against their
// own tables only.
func (s *Store) ReferralCodeExists(ctx context.Context, entity, code string) (bool, error) {
	var count int64
	var result *gorm.DB

	switch entity {
	case EntityUser:
		result = s.db.WithContext(ctx).Model(&model.User{}).Where("referral_code = ?", code).Count(&count)
	case EntityMerchant:
		result = s.db.WithContext(ctx).Model(&model.Merchant{}).Where("referral_code = ?", code).Count(&count)
	default:
		return false, fmt.Errorf("unknown entity %q", entity)
	}

	if result.Error != nil {
		return false, &PersistenceError{Entity: entity, Op: "query", Err: result.Error}
	}
	return count > 0, nil
}

// GetMerchant fetches a merchant row by id.
func (s *Store) GetMerchant(ctx context.Context, merchantID string) (*model.Merchant, error) {
	var merchant model.Merchant
	if result := s.db.WithContext(ctx).First(&merchant, "id = ?", merchantID); result.Error != nil {
		return nil, result.Error
	}
	return &merchant, nil
}

// ListMerchantsByOwner fetches all merchants owned by a user.
func (s *Store) ListMerchantsByOwner(ctx context.Context, userID string) ([]model.Merchant, error) {
	var merchants []model.Merchant
	if result := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&merchants); result.Error != nil {
		return nil, result.Error
	}
	return merchants, nil
}
