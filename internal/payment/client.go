// Package payment provisions payments-platform users and wallets. The
// platform exposes no delete for either, so nothing here is ever compensated:
// records created before a failed onboarding run are accepted orphans.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"onboarding-service/pkg/config"
)

const apiVersion = "v2.01"

// UserCreationError is returned when the platform rejects a user creation.
type UserCreationError struct {
	Reason string
}

func (e *UserCreationError) Error() string {
	return "failed to create payment user: " + e.Reason
}

// WalletCreationError is returned when the platform rejects a wallet creation.
type WalletCreationError struct {
	Reason string
}

func (e *WalletCreationError) Error() string {
	return "failed to create payment wallet: " + e.Reason
}

// Address is a postal address as the platform expects it.
type Address struct {
	AddressLine1 string `json:"AddressLine1"`
	City         string `json:"City"`
	PostalCode   string `json:"PostalCode"`
	Country      string `json:"Country"`
}

// LegalUserRequest creates a business ("legal") user.
type LegalUserRequest struct {
	PersonType                            string  `json:"PersonType"`
	Name                                  string  `json:"Name"`
	Email                                 string  `json:"Email"`
	LegalPersonType                       string  `json:"LegalPersonType"`
	LegalRepresentativeFirstName          string  `json:"LegalRepresentativeFirstName"`
	LegalRepresentativeLastName           string  `json:"LegalRepresentativeLastName"`
	LegalRepresentativeEmail              string  `json:"LegalRepresentativeEmail"`
	LegalRepresentativeBirthday           int64   `json:"LegalRepresentativeBirthday"`
	LegalRepresentativeNationality        string  `json:"LegalRepresentativeNationality"`
	LegalRepresentativeCountryOfResidence string  `json:"LegalRepresentativeCountryOfResidence"`
	HeadquartersAddress                   Address `json:"HeadquartersAddress"`
	CompanyNumber                         string  `json:"CompanyNumber"`
	UserCategory                          string  `json:"UserCategory"`
	Tag                                   string  `json:"Tag,omitempty"`
	TermsAndConditionsAccepted            bool    `json:"TermsAndConditionsAccepted"`
}

// NaturalUserRequest creates a personal ("natural") user.
type NaturalUserRequest struct {
	PersonType                 string  `json:"PersonType"`
	FirstName                  string  `json:"FirstName"`
	LastName                   string  `json:"LastName"`
	Email                      string  `json:"Email"`
	Birthday                   int64   `json:"Birthday"`
	Nationality                string  `json:"Nationality"`
	CountryOfResidence         string  `json:"CountryOfResidence"`
	Address                    Address `json:"Address"`
	UserCategory               string  `json:"UserCategory"`
	Tag                        string  `json:"Tag,omitempty"`
	TermsAndConditionsAccepted bool    `json:"TermsAndConditionsAccepted"`
}

// User is the platform's representation of a created user.
type User struct {
	ID         string `json:"Id"`
	PersonType string `json:"PersonType"`
	Email      string `json:"Email"`
	KYCLevel   string `json:"KYCLevel"`
}

// Balance is a currency amount held by a wallet.
type Balance struct {
	Currency string          `json:"Currency"`
	Amount   decimal.Decimal `json:"Amount"`
}

// Wallet is the platform's representation of a created wallet.
type Wallet struct {
	ID          string   `json:"Id"`
	Owners      []string `json:"Owners"`
	Currency    string   `json:"Currency"`
	Balance     Balance  `json:"Balance"`
	Description string   `json:"Description"`
}

type walletRequest struct {
	Owners      []string `json:"Owners"`
	Currency    string   `json:"Currency"`
	Description string   `json:"Description"`
}

type apiError struct {
	Message string            `json:"Message"`
	Type    string            `json:"Type"`
	Errors  map[string]string `json:"Errors"`
}

func (e *apiError) text() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("%s: %v", e.Message, e.Errors)
	}
	return e.Message
}

// Client talks to the payments platform REST API.
type Client struct {
	http *resty.Client
}

// NewClient creates a payments platform client from configuration. The
// platform authenticates with basic auth over a client id and API key, and
// scopes every route under the client id.
func NewClient(cfg *config.PaymentConfig) *Client {
	client := resty.New().
		SetBaseURL(fmt.Sprintf("%s/%s/%s", cfg.BaseURL, apiVersion, cfg.ClientID)).
		SetTimeout(30*time.Second).
		SetBasicAuth(cfg.ClientID, cfg.APIKey)
	return &Client{http: client}
}

// CreateLegalUser creates a business user and returns its platform id.
func (c *Client) CreateLegalUser(ctx context.Context, req *LegalUserRequest) (string, error) {
	var user User
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&user).
		SetError(&apiErr).
		Post("/users/legal")
	if err != nil {
		return "", &UserCreationError{Reason: err.Error()}
	}
	if resp.IsError() {
		return "", &UserCreationError{Reason: apiErr.text()}
	}

	return user.ID, nil
}

// CreateNaturalUser creates a personal user and returns its platform id.
func (c *Client) CreateNaturalUser(ctx context.Context, req *NaturalUserRequest) (string, error) {
	var user User
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&user).
		SetError(&apiErr).
		Post("/users/natural")
	if err != nil {
		return "", &UserCreationError{Reason: err.Error()}
	}
	if resp.IsError() {
		return "", &UserCreationError{Reason: apiErr.text()}
	}

	return user.ID, nil
}

// CreateWallet creates a single-owner wallet in the given currency.
func (c *Client) CreateWallet(ctx context.Context, ownerID, currency string) (*Wallet, error) {
	var wallet Wallet
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(walletRequest{
			Owners:      []string{ownerID},
			Currency:    currency,
			Description: fmt.Sprintf("Wallet for user %s", ownerID),
		}).
		SetResult(&wallet).
		SetError(&apiErr).
		Post("/wallets")
	if err != nil {
		return nil, &WalletCreationError{Reason: err.Error()}
	}
	if resp.IsError() {
		return nil, &WalletCreationError{Reason: apiErr.text()}
	}

	return &wallet, nil
}
