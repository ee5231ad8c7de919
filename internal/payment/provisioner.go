package payment

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrMissingCompanyNumber is returned when a legal user is requested without
// a company registration number; the platform rejects such users outright.
var ErrMissingCompanyNumber = errors.New("company registration number is required for legal payment users")

// Values the platform attaches to business users.
const (
	personTypeLegal     = "LEGAL"
	personTypeNatural   = "NATURAL"
	legalPersonBusiness = "BUSINESS"
	userCategoryOwner   = "Owner"
	userTypeReseller    = "reseller"
	defaultAddressLine1 = "Business address to be provided"
	defaultCity         = "Paris"
	defaultPostalCode   = "75001"
)

// defaultBirthDate is used when the profile carries no birth date; the
// platform requires one.
var defaultBirthDate = time.Date(1985, time.January, 1, 0, 0, 0, 0, time.UTC)

// Profile is the owner data a payment user is created from.
type Profile struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	Country   string
	UserType  string
	BirthDate *time.Time
}

// Business is the company data a legal payment user is created from. Address
// is optional; when absent the platform receives placeholder headquarters.
type Business struct {
	Name          string
	CompanyNumber string
	Address       *Address
}

// UserProvisionerClient is the subset of the platform client the user
// provisioner needs.
type UserProvisionerClient interface {
	CreateLegalUser(ctx context.Context, req *LegalUserRequest) (string, error)
	CreateNaturalUser(ctx context.Context, req *NaturalUserRequest) (string, error)
}

// UserProvisioner maps profile and business data onto platform user requests.
type UserProvisioner struct {
	client UserProvisionerClient
}

// NewUserProvisioner creates a user provisioner over a platform client.
func NewUserProvisioner(client UserProvisionerClient) *UserProvisioner {
	return &UserProvisioner{client: client}
}

// IsLegal reports whether the profile and business select the legal user
// variant. Merchants always do: they carry a business name or a reseller
// profile.
func IsLegal(profile *Profile, business *Business) bool {
	return profile.UserType == userTypeReseller || (business != nil && business.Name != "")
}

// CreateUser creates the payment user for an onboarded owner and returns its
// platform id. Merchant onboarding always takes the legal branch; the natural
// branch covers personal accounts.
func (p *UserProvisioner) CreateUser(ctx context.Context, profile *Profile, business *Business) (string, error) {
	isLegal := IsLegal(profile, business)
	if business == nil {
		business = &Business{}
	}

	country := profile.Country
	if country == "" {
		country = "FR"
	}

	birthday := defaultBirthDate
	if profile.BirthDate != nil {
		birthday = *profile.BirthDate
	}

	address := Address{
		AddressLine1: defaultAddressLine1,
		City:         defaultCity,
		PostalCode:   defaultPostalCode,
		Country:      country,
	}
	if business.Address != nil {
		address = *business.Address
		if address.Country == "" {
			address.Country = country
		}
	}

	if !isLegal {
		return p.client.CreateNaturalUser(ctx, &NaturalUserRequest{
			PersonType:                 personTypeNatural,
			FirstName:                  profile.FirstName,
			LastName:                   profile.LastName,
			Email:                      profile.Email,
			Birthday:                   birthday.Unix(),
			Nationality:                country,
			CountryOfResidence:         country,
			Address:                    address,
			UserCategory:               userCategoryOwner,
			Tag:                        "client-" + profile.UserID,
			TermsAndConditionsAccepted: true,
		})
	}

	if strings.TrimSpace(business.CompanyNumber) == "" {
		return "", ErrMissingCompanyNumber
	}

	name := business.Name
	if name == "" {
		name = profile.FirstName + " " + profile.LastName
	}

	req := &LegalUserRequest{
		PersonType:                            personTypeLegal,
		Name:                                  name,
		Email:                                 profile.Email,
		LegalPersonType:                       legalPersonBusiness,
		LegalRepresentativeFirstName:          profile.FirstName,
		LegalRepresentativeLastName:           profile.LastName,
		LegalRepresentativeEmail:              profile.Email,
		LegalRepresentativeBirthday:           birthday.Unix(),
		LegalRepresentativeNationality:        country,
		LegalRepresentativeCountryOfResidence: country,
		HeadquartersAddress:                   address,
		CompanyNumber:                         business.CompanyNumber,
		UserCategory:                          userCategoryOwner,
		Tag:                                   "reseller-" + profile.UserID,
		TermsAndConditionsAccepted:            true,
	}

	return p.client.CreateLegalUser(ctx, req)
}
