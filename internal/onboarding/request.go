package onboarding

import (
	"regexp"

	"onboarding-service/internal/model"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

// Request carries the validated form input for one onboarding run.
type Request struct {
	BusinessName  string `json:"business_name"`
	BusinessType  string `json:"business_type"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Country       string `json:"country"`
	Password      string `json:"password"`
	CompanyNumber string `json:"company_number"`
	AddressLine1  string `json:"address_line1,omitempty"`
	City          string `json:"city,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
}

// Validate checks the request before any remote call is made. Address fields
// are optional; everything else is required.
func (r *Request) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"business_name", r.BusinessName},
		{"business_type", r.BusinessType},
		{"email", r.Email},
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"country", r.Country},
		{"password", r.Password},
		{"company_number", r.CompanyNumber},
	}
	for _, f := range required {
		if f.value == "" {
			return &ValidationError{Reason: f.name + " is required"}
		}
	}

	if r.BusinessType != model.BusinessTypeGoods && r.BusinessType != model.BusinessTypeServices {
		return &ValidationError{Reason: "business_type must be either goods or services"}
	}

	if !emailPattern.MatchString(r.Email) {
		return &ValidationError{Reason: "invalid email format"}
	}

	if len(r.Password) < minPasswordLength {
		return &ValidationError{Reason: "password must be at least 6 characters"}
	}

	return nil
}

// HasAddress reports whether any business address field was provided.
func (r *Request) HasAddress() bool {
	return r.AddressLine1 != "" || r.City != "" || r.PostalCode != ""
}
