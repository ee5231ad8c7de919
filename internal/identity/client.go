// Package identity provisions and deletes auth-provider accounts through the
// provider's admin REST API.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"onboarding-service/pkg/config"
)

// CreationError is returned when the provider rejects an account creation.
// The provider's message is surfaced verbatim; transient and permanent
// rejections are not distinguished and nothing is retried.
type CreationError struct {
	Reason string
}

func (e *CreationError) Error() string {
	return "failed to create user account: " + e.Reason
}

// Metadata is attached to the account at signup.
type Metadata struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	BusinessName string `json:"business_name"`
	UserType     string `json:"user_type"`
}

type createAccountRequest struct {
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	EmailConfirm bool     `json:"email_confirm"`
	UserMetadata Metadata `json:"user_metadata"`
}

type accountResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type errorResponse struct {
	Message string `json:"msg"`
	Error   string `json:"error"`
}

func (e *errorResponse) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// Client talks to the identity provider's admin API with the service role key.
type Client struct {
	http *resty.Client
}

// NewClient creates an identity provider client from configuration.
func NewClient(cfg *config.IdentityConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30*time.Second).
		SetHeader("apikey", cfg.ServiceRoleKey).
		SetAuthToken(cfg.ServiceRoleKey)
	return &Client{http: client}
}

// CreateAccount provisions an auth account and returns the provider-issued id.
// Email confirmation is skipped so the rest of onboarding can proceed
// immediately.
func (c *Client) CreateAccount(ctx context.Context, email, password string, metadata Metadata) (string, error) {
	var account accountResponse
	var apiErr errorResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(createAccountRequest{
			Email:        email,
			Password:     password,
			EmailConfirm: true,
			UserMetadata: metadata,
		}).
		SetResult(&account).
		SetError(&apiErr).
		Post("/auth/v1/admin/users")
	if err != nil {
		return "", &CreationError{Reason: err.Error()}
	}
	if resp.IsError() {
		return "", &CreationError{Reason: apiErr.text()}
	}
	if account.ID == "" {
		return "", &CreationError{Reason: "no user data returned from auth"}
	}

	return account.ID, nil
}

// DeleteAccount removes a previously created auth account. It is a
// best-effort compensation: the caller logs a failure but never lets it mask
// the error being compensated for.
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	var apiErr errorResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&apiErr).
		Delete(fmt.Sprintf("/auth/v1/admin/users/%s", id))
	if err != nil {
		return err
	}
	if resp.IsError() && resp.StatusCode() != http.StatusNotFound {
		return fmt.Errorf("failed to delete auth account %s: %s", id, apiErr.text())
	}

	return nil
}
