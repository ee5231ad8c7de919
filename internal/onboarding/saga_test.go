package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding-service/internal/identity"
	"onboarding-service/internal/model"
	"onboarding-service/internal/payment"
	"onboarding-service/internal/referral"
	"onboarding-service/internal/store"
)

type fakeIdentity struct {
	createErr error
	deleteErr error
	created   []string
	deleted   []string
}

func (f *fakeIdentity) CreateAccount(ctx context.Context, email, password string, metadata identity.Metadata) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	id := "auth-1"
	f.created = append(f.created, id)
	return id, nil
}

func (f *fakeIdentity) DeleteAccount(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeStore struct {
	insertUserErr     error
	insertMerchantErr error
	linkErr           error
	deleteUserErr     error

	takenUserCodes     int
	takenMerchantCodes int

	users            map[string]*model.User
	merchants        map[string]*model.Merchant
	deletedUsers     []string
	deletedMerchants []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]*model.User),
		merchants: make(map[string]*model.Merchant),
	}
}

func (f *fakeStore) InsertUser(ctx context.Context, user *model.User) (*model.User, error) {
	if f.insertUserErr != nil {
		return nil, f.insertUserErr
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeStore) InsertMerchant(ctx context.Context, merchant *model.Merchant) (*model.Merchant, error) {
	if f.insertMerchantErr != nil {
		return nil, f.insertMerchantErr
	}
	merchant.ID = "merchant-1"
	f.merchants[merchant.ID] = merchant
	return merchant, nil
}

func (f *fakeStore) SetUserPaymentID(ctx context.Context, userID, paymentUserID string) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	user, ok := f.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	user.PaymentUserID = &paymentUserID
	return nil
}

func (f *fakeStore) DeleteUser(ctx context.Context, userID string) error {
	if f.deleteUserErr != nil {
		return f.deleteUserErr
	}
	delete(f.users, userID)
	f.deletedUsers = append(f.deletedUsers, userID)
	return nil
}

func (f *fakeStore) DeleteMerchant(ctx context.Context, merchantID string) error {
	delete(f.merchants, merchantID)
	f.deletedMerchants = append(f.deletedMerchants, merchantID)
	return nil
}

func (f *fakeStore) ReferralCodeExists(ctx context.Context, entity, code string) (bool, error) {
	switch entity {
	case store.EntityUser:
		if f.takenUserCodes > 0 {
			f.takenUserCodes--
			return true, nil
		}
	case store.EntityMerchant:
		if f.takenMerchantCodes > 0 {
			f.takenMerchantCodes--
			return true, nil
		}
	}
	return false, nil
}

type fakeUserProvisioner struct {
	err      error
	calls    int
	profile  *payment.Profile
	business *payment.Business
}

func (f *fakeUserProvisioner) CreateUser(ctx context.Context, profile *payment.Profile, business *payment.Business) (string, error) {
	f.calls++
	f.profile = profile
	f.business = business
	if f.err != nil {
		return "", f.err
	}
	return "pay-user-1", nil
}

type fakeWalletProvisioner struct {
	err   error
	calls int
	owner string
}

func (f *fakeWalletProvisioner) CreateWallet(ctx context.Context, ownerID string) (string, error) {
	f.calls++
	f.owner = ownerID
	if f.err != nil {
		return "", f.err
	}
	return "wallet-1", nil
}

type fixture struct {
	identity *fakeIdentity
	store    *fakeStore
	users    *fakeUserProvisioner
	wallets  *fakeWalletProvisioner
	saga     *Saga
}

func newFixture() *fixture {
	f := &fixture{
		identity: &fakeIdentity{},
		store:    newFakeStore(),
		users:    &fakeUserProvisioner{},
		wallets:  &fakeWalletProvisioner{},
	}
	f.saga = NewSaga(f.identity, f.store, f.users, f.wallets)
	return f
}

func TestSaga_Success(t *testing.T) {
	f := newFixture()

	result, err := f.saga.Run(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "auth-1", result.UserID)
	assert.Equal(t, "merchant-1", result.MerchantID)
	assert.Equal(t, "pay-user-1", result.PaymentUserID)
	assert.Equal(t, "wallet-1", result.WalletID)
	assert.Contains(t, result.Message, `Merchant "Acme" created successfully`)
	assert.Contains(t, result.Message, "merchant-1")
	assert.Contains(t, result.Message, "auth-1")
	assert.Contains(t, result.Message, "pay-user-1")
	assert.Contains(t, result.Message, "wallet-1")

	// Exactly one user row and one merchant row, linked by user id
	require.Len(t, f.store.users, 1)
	require.Len(t, f.store.merchants, 1)
	user := f.store.users["auth-1"]
	merchant := f.store.merchants["merchant-1"]
	assert.Equal(t, user.ID, merchant.UserID)
	assert.Equal(t, "pay-user-1", merchant.PaymentUserID)
	assert.Equal(t, "wallet-1", merchant.PaymentWalletID)
	require.NotNil(t, user.PaymentUserID)
	assert.Equal(t, "pay-user-1", *user.PaymentUserID)

	// The wallet is owned by the payment user
	assert.Equal(t, "pay-user-1", f.wallets.owner)

	// Nothing was compensated
	assert.Empty(t, f.identity.deleted)
	assert.Empty(t, f.store.deletedUsers)
	assert.Empty(t, f.store.deletedMerchants)
}

func TestSaga_Success_NoAddress(t *testing.T) {
	f := newFixture()

	_, err := f.saga.Run(context.Background(), validRequest())
	require.NoError(t, err)

	merchant := f.store.merchants["merchant-1"]
	assert.Nil(t, merchant.AddressLine1)
	assert.Nil(t, merchant.City)
	assert.Nil(t, merchant.PostalCode)

	// No form address means placeholder headquarters downstream
	assert.Nil(t, f.users.business.Address)
}

func TestSaga_Success_AddressWiredThrough(t *testing.T) {
	f := newFixture()
	req := validRequest()
	req.AddressLine1 = "1 rue de Rivoli"
	req.City = "Paris"
	req.PostalCode = "75004"

	_, err := f.saga.Run(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, f.users.business.Address)
	assert.Equal(t, "1 rue de Rivoli", f.users.business.Address.AddressLine1)
	assert.Equal(t, "Paris", f.users.business.Address.City)
	assert.Equal(t, "75004", f.users.business.Address.PostalCode)
	assert.Equal(t, "FR", f.users.business.Address.Country)

	merchant := f.store.merchants["merchant-1"]
	require.NotNil(t, merchant.AddressLine1)
	assert.Equal(t, "1 rue de Rivoli", *merchant.AddressLine1)
}

func TestSaga_ValidationFailure_NoRemoteCalls(t *testing.T) {
	f := newFixture()
	req := validRequest()
	req.Password = "12345"

	_, err := f.saga.Run(context.Background(), req)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Empty(t, f.identity.created)
	assert.Empty(t, f.store.users)
	assert.Zero(t, f.users.calls)
	assert.Zero(t, f.wallets.calls)
}

func TestSaga_IdentityCreationFails_NoSideEffects(t *testing.T) {
	f := newFixture()
	f.identity.createErr = &identity.CreationError{Reason: "email already registered"}

	_, err := f.saga.Run(context.Background(), validRequest())

	var creationErr *identity.CreationError
	require.ErrorAs(t, err, &creationErr)
	assert.Empty(t, f.store.users)
	assert.Empty(t, f.store.merchants)

	// Nothing was created, so nothing is compensated
	assert.Empty(t, f.identity.deleted)
	assert.Empty(t, f.store.deletedUsers)
	assert.Empty(t, f.store.deletedMerchants)
}

func TestSaga_AccountCodeExhausted_IdentityCompensated(t *testing.T) {
	f := newFixture()
	f.store.takenUserCodes = referral.MaxAttempts

	_, err := f.saga.Run(context.Background(), validRequest())

	require.ErrorIs(t, err, referral.ErrCodeSpaceExhausted)
	assert.Empty(t, f.store.users)
	assert.Zero(t, f.users.calls)
	assert.Equal(t, []string{"auth-1"}, f.identity.deleted)
}

func TestSaga_AccountCode_TenthCandidateAccepted(t *testing.T) {
	f := newFixture()
	f.store.takenUserCodes = referral.MaxAttempts - 1

	_, err := f.saga.Run(context.Background(), validRequest())

	require.NoError(t, err)
	require.Len(t, f.store.users, 1)
}

func TestSaga_UserInsertFails_IdentityCompensated(t *testing.T) {
	f := newFixture()
	f.store.insertUserErr = &store.PersistenceError{Entity: store.EntityUser, Op: "create", Err: errors.New("constraint violation")}

	_, err := f.saga.Run(context.Background(), validRequest())

	var persistenceErr *store.PersistenceError
	require.ErrorAs(t, err, &persistenceErr)
	assert.Equal(t, []string{"auth-1"}, f.identity.deleted)
	assert.Empty(t, f.store.merchants)
	assert.Zero(t, f.users.calls)
}

func TestSaga_PaymentUserFails_RowAndIdentityCompensated(t *testing.T) {
	f := newFixture()
	f.users.err = &payment.UserCreationError{Reason: "KYC rejected"}

	_, err := f.saga.Run(context.Background(), validRequest())

	var userErr *payment.UserCreationError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, []string{"auth-1"}, f.store.deletedUsers)
	assert.Equal(t, []string{"auth-1"}, f.identity.deleted)
	assert.Empty(t, f.store.merchants)
	assert.Zero(t, f.wallets.calls)
}

func TestSaga_LinkFails_RowAndIdentityCompensated(t *testing.T) {
	f := newFixture()
	f.store.linkErr = &store.PersistenceError{Entity: store.EntityUser, Op: "update", Err: errors.New("connection reset")}

	_, err := f.saga.Run(context.Background(), validRequest())

	require.Error(t, err)
	assert.Equal(t, []string{"auth-1"}, f.store.deletedUsers)
	assert.Equal(t, []string{"auth-1"}, f.identity.deleted)
	assert.Zero(t, f.wallets.calls)
	assert.Empty(t, f.store.merchants)
}

func TestSaga_WalletFails_PaymentUserOrphaned(t *testing.T) {
	f := newFixture()
	f.wallets.err = &payment.WalletCreationError{Reason: "currency not supported"}

	_, err := f.saga.Run(context.Background(), validRequest())

	var walletErr *payment.WalletCreationError
	require.ErrorAs(t, err, &walletErr)
	assert.Equal(t, []string{"auth-1"}, f.store.deletedUsers)
	assert.Equal(t, []string{"auth-1"}, f.identity.deleted)
	assert.Empty(t, f.store.merchants)

	// The payment user was created and stays: the platform has no delete
	assert.Equal(t, 1, f.users.calls)
}

func TestSaga_MerchantInsertFails_FullRollback(t *testing.T) {
	f := newFixture()
	f.store.insertMerchantErr = &store.PersistenceError{Entity: store.EntityMerchant, Op: "create", Err: errors.New("constraint violation")}

	_, err := f.saga.Run(context.Background(), validRequest())

	var persistenceErr *store.PersistenceError
	require.ErrorAs(t, err, &persistenceErr)
	assert.Equal(t, store.EntityMerchant, persistenceErr.Entity)
	assert.Equal(t, []string{"auth-1"}, f.store.deletedUsers)
	assert.Equal(t, []string{"auth-1"}, f.identity.deleted)
}

func TestSaga_CompensationFailureDoesNotMaskOriginalError(t *testing.T) {
	f := newFixture()
	f.store.insertMerchantErr = &store.PersistenceError{Entity: store.EntityMerchant, Op: "create", Err: errors.New("constraint violation")}
	f.store.deleteUserErr = errors.New("delete rejected")

	_, err := f.saga.Run(context.Background(), validRequest())

	// The caller sees the original trigger, not the compensation failure
	var persistenceErr *store.PersistenceError
	require.ErrorAs(t, err, &persistenceErr)
	assert.Equal(t, store.EntityMerchant, persistenceErr.Entity)

	// The remaining compensation still ran
	assert.Equal(t, []string{"auth-1"}, f.identity.deleted)
}

func TestSaga_UserRowContents(t *testing.T) {
	f := newFixture()

	_, err := f.saga.Run(context.Background(), validRequest())
	require.NoError(t, err)

	user := f.store.users["auth-1"]
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, "reseller", user.UserType)
	assert.Equal(t, "pending", user.KYCStatus)
	assert.True(t, user.IsActive)
	assert.Len(t, user.ReferralCode, 8)

	merchant := f.store.merchants["merchant-1"]
	assert.Equal(t, "Acme", merchant.BusinessName)
	assert.Equal(t, "goods", merchant.BusinessType)
	assert.Equal(t, "12345678900011", merchant.CompanyNumber)
	assert.Len(t, merchant.ReferralCode, 8)
}
