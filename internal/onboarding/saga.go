// Package onboarding runs the merchant onboarding saga: a sequence of
// non-atomic remote steps that either all succeed or are rolled back through
// explicit compensating actions.
package onboarding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"onboarding-service/internal/identity"
	"onboarding-service/internal/model"
	"onboarding-service/internal/payment"
	"onboarding-service/internal/referral"
	"onboarding-service/internal/store"
	"onboarding-service/pkg/logger"
	"onboarding-service/prometheus"
)

// Stage names, in execution order. Each stage is attempted exactly once; the
// only retry anywhere is the bounded referral-code probe.
const (
	StageValidate          = "validate"
	StageCreateIdentity    = "create_identity"
	StageAccountCode       = "generate_account_code"
	StagePersistAccount    = "persist_account"
	StageMerchantCode      = "generate_merchant_code"
	StageCreatePaymentUser = "create_payment_user"
	StageLinkPaymentUser   = "link_payment_user"
	StageCreateWallet      = "create_wallet"
	StagePersistMerchant   = "persist_merchant"
)

// IdentityProvider creates and deletes auth-provider accounts.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string, metadata identity.Metadata) (string, error)
	DeleteAccount(ctx context.Context, id string) error
}

// Store persists and compensates the locally-owned user and merchant rows.
type Store interface {
	InsertUser(ctx context.Context, user *model.User) (*model.User, error)
	InsertMerchant(ctx context.Context, merchant *model.Merchant) (*model.Merchant, error)
	SetUserPaymentID(ctx context.Context, userID, paymentUserID string) error
	DeleteUser(ctx context.Context, userID string) error
	DeleteMerchant(ctx context.Context, merchantID string) error
	ReferralCodeExists(ctx context.Context, entity, code string) (bool, error)
}

// PaymentUserProvisioner creates the payments-platform user.
type PaymentUserProvisioner interface {
	CreateUser(ctx context.Context, profile *payment.Profile, business *payment.Business) (string, error)
}

// PaymentWalletProvisioner creates the payments-platform wallet.
type PaymentWalletProvisioner interface {
	CreateWallet(ctx context.Context, ownerID string) (string, error)
}

// Result summarizes a fully successful onboarding run.
type Result struct {
	UserID        string `json:"user_id"`
	MerchantID    string `json:"merchant_id"`
	PaymentUserID string `json:"payment_user_id"`
	WalletID      string `json:"wallet_id"`
	Message       string `json:"message"`
}

// Saga orchestrates one onboarding run per call. Runs are independent and
// share no mutable state; a Saga is safe for concurrent use.
type Saga struct {
	identity IdentityProvider
	store    Store
	users    PaymentUserProvisioner
	wallets  PaymentWalletProvisioner
}

// NewSaga wires the orchestrator to its collaborators.
func NewSaga(identityProvider IdentityProvider, st Store, users PaymentUserProvisioner, wallets PaymentWalletProvisioner) *Saga {
	return &Saga{
		identity: identityProvider,
		store:    st,
		users:    users,
		wallets:  wallets,
	}
}

// step is one forward action of the saga. On success it may return a
// compensation to run if a later step fails.
type step struct {
	stage string
	run   func(ctx context.Context) (*compensation, error)
}

// compensation reverses a previously successful step during rollback.
type compensation struct {
	step string
	run  func(ctx context.Context) error
}

// Run executes the onboarding saga. On any step failure, compensations for
// every previously created resource run in reverse creation order and the
// original failure is returned; payment-platform users and wallets are never
// compensated because the platform offers no delete. On success the result
// references every created identifier.
func (s *Saga) Run(ctx context.Context, req *Request) (*Result, error) {
	log := logger.FromContext(ctx)

	if err := req.Validate(); err != nil {
		log.Warn("Onboarding request rejected", zap.String("stage", StageValidate), zap.Error(err))
		prometheus.OnboardingFailureCounter.WithLabelValues(StageValidate).Inc()
		return nil, err
	}

	var (
		authUserID    string
		userCode      string
		merchantCode  string
		user          *model.User
		merchant      *model.Merchant
		paymentUserID string
		walletID      string
	)

	steps := []step{
		{
			stage: StageCreateIdentity,
			run: func(ctx context.Context) (*compensation, error) {
				id, err := s.identity.CreateAccount(ctx, req.Email, req.Password, identity.Metadata{
					FirstName:    req.FirstName,
					LastName:     req.LastName,
					BusinessName: req.BusinessName,
					UserType:     "merchant",
				})
				if err != nil {
					return nil, err
				}
				authUserID = id
				return &compensation{
					step: "delete_auth_account",
					run: func(ctx context.Context) error {
						return s.identity.DeleteAccount(ctx, id)
					},
				}, nil
			},
		},
		{
			stage: StageAccountCode,
			run: func(ctx context.Context) (*compensation, error) {
				code, err := referral.EnsureUnique(func(code string) (bool, error) {
					return s.store.ReferralCodeExists(ctx, store.EntityUser, code)
				})
				if err != nil {
					return nil, err
				}
				userCode = code
				return nil, nil
			},
		},
		{
			stage: StagePersistAccount,
			run: func(ctx context.Context) (*compensation, error) {
				inserted, err := s.store.InsertUser(ctx, &model.User{
					ID:           authUserID,
					Email:        req.Email,
					FirstName:    req.FirstName,
					LastName:     req.LastName,
					Country:      req.Country,
					UserType:     "reseller",
					ReferralCode: userCode,
					IsActive:     true,
					KYCStatus:    "pending",
				})
				if err != nil {
					return nil, err
				}
				user = inserted
				return &compensation{
					step: "delete_user_row",
					run: func(ctx context.Context) error {
						return s.store.DeleteUser(ctx, inserted.ID)
					},
				}, nil
			},
		},
		{
			stage: StageMerchantCode,
			run: func(ctx context.Context) (*compensation, error) {
				code, err := referral.EnsureUnique(func(code string) (bool, error) {
					return s.store.ReferralCodeExists(ctx, store.EntityMerchant, code)
				})
				if err != nil {
					return nil, err
				}
				merchantCode = code
				return nil, nil
			},
		},
		{
			// Payment users cannot be deleted; no compensation.
			stage: StageCreatePaymentUser,
			run: func(ctx context.Context) (*compensation, error) {
				id, err := s.users.CreateUser(ctx, &payment.Profile{
					UserID:    user.ID,
					Email:     user.Email,
					FirstName: user.FirstName,
					LastName:  user.LastName,
					Country:   user.Country,
					UserType:  user.UserType,
				}, &payment.Business{
					Name:          req.BusinessName,
					CompanyNumber: req.CompanyNumber,
					Address:       req.paymentAddress(),
				})
				if err != nil {
					return nil, err
				}
				paymentUserID = id
				return nil, nil
			},
		},
		{
			// The user row is deleted outright on rollback, so the link
			// itself needs no compensation.
			stage: StageLinkPaymentUser,
			run: func(ctx context.Context) (*compensation, error) {
				return nil, s.store.SetUserPaymentID(ctx, user.ID, paymentUserID)
			},
		},
		{
			// Wallets cannot be deleted; no compensation.
			stage: StageCreateWallet,
			run: func(ctx context.Context) (*compensation, error) {
				id, err := s.wallets.CreateWallet(ctx, paymentUserID)
				if err != nil {
					return nil, err
				}
				walletID = id
				return nil, nil
			},
		},
		{
			stage: StagePersistMerchant,
			run: func(ctx context.Context) (*compensation, error) {
				inserted, err := s.store.InsertMerchant(ctx, &model.Merchant{
					BusinessName:    req.BusinessName,
					BusinessType:    req.BusinessType,
					ReferralCode:    merchantCode,
					UserID:          user.ID,
					PaymentUserID:   paymentUserID,
					PaymentWalletID: walletID,
					CompanyNumber:   req.CompanyNumber,
					AddressLine1:    optional(req.AddressLine1),
					City:            optional(req.City),
					PostalCode:      optional(req.PostalCode),
					Country:         optional(req.Country),
				})
				if err != nil {
					return nil, err
				}
				merchant = inserted
				return &compensation{
					step: "delete_merchant_row",
					run: func(ctx context.Context) error {
						return s.store.DeleteMerchant(ctx, inserted.ID)
					},
				}, nil
			},
		},
	}

	var compensations []compensation
	for _, st := range steps {
		log.Info("Onboarding stage started", zap.String("stage", st.stage))
		start := time.Now()

		comp, err := st.run(ctx)
		prometheus.StageDurationHistogram.WithLabelValues(st.stage).Observe(time.Since(start).Seconds())

		if err != nil {
			log.Error("Onboarding stage failed", zap.String("stage", st.stage), zap.Error(err))
			prometheus.OnboardingFailureCounter.WithLabelValues(st.stage).Inc()
			s.rollback(ctx, compensations)
			return nil, err
		}

		if comp != nil {
			compensations = append(compensations, *comp)
		}
		log.Info("Onboarding stage succeeded", zap.String("stage", st.stage))
	}

	prometheus.OnboardingSuccessCounter.Inc()
	log.Info("Merchant onboarded",
		zap.String("merchant_id", merchant.ID),
		zap.String("user_id", user.ID),
		zap.String("payment_user_id", paymentUserID),
		zap.String("wallet_id", walletID))

	return &Result{
		UserID:        user.ID,
		MerchantID:    merchant.ID,
		PaymentUserID: paymentUserID,
		WalletID:      walletID,
		Message: fmt.Sprintf(
			"Merchant %q created successfully with ID: %s. User ID: %s, payment user ID: %s, Wallet ID: %s",
			req.BusinessName, merchant.ID, user.ID, paymentUserID, walletID),
	}, nil
}

// rollback runs compensations in reverse creation order. Every compensation
// is attempted even when an earlier one failed; failures are logged and
// counted but never replace the original error.
func (s *Saga) rollback(ctx context.Context, compensations []compensation) {
	log := logger.FromContext(ctx)

	for i := len(compensations) - 1; i >= 0; i-- {
		comp := compensations[i]
		log.Info("Compensation invoked", zap.String("step", comp.step))

		if err := comp.run(ctx); err != nil {
			log.Error("Compensation failed", zap.String("step", comp.step), zap.Error(err))
			prometheus.CompensationCounter.WithLabelValues(comp.step, "error").Inc()
			continue
		}
		prometheus.CompensationCounter.WithLabelValues(comp.step, "ok").Inc()
	}
}

// paymentAddress maps the optional form address to a platform address, or nil
// when no address field was provided.
func (r *Request) paymentAddress() *payment.Address {
	if !r.HasAddress() {
		return nil
	}
	return &payment.Address{
		AddressLine1: strings.TrimSpace(r.AddressLine1),
		City:         strings.TrimSpace(r.City),
		PostalCode:   strings.TrimSpace(r.PostalCode),
		Country:      r.Country,
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
