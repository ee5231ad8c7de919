package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("IDENTITY_BASE_URL", "https://auth.example.com")
	t.Setenv("IDENTITY_SERVICE_ROLE_KEY", "role-key")
	t.Setenv("PAYMENT_BASE_URL", "https://api.payments.example.com")
	t.Setenv("PAYMENT_CLIENT_ID", "acmepay")
	t.Setenv("PAYMENT_API_KEY", "api-key")
	t.Setenv("JWT_SIGNING_KEY", "signing-key")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	conf, err := Load("onboarding")
	require.NoError(t, err)

	assert.Equal(t, "onboarding", conf.ServiceName)
	assert.Equal(t, "8080", conf.Server.Port)
	assert.Equal(t, "pw", conf.Database.Password)
	assert.Equal(t, "https://auth.example.com", conf.Identity.BaseURL)
	assert.Equal(t, "acmepay", conf.Payment.ClientID)
	assert.Equal(t, "EUR", conf.Payment.Currency)
	assert.Equal(t, 24, conf.JWT.ExpirationHours)
}

func TestLoad_MissingRequiredSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PAYMENT_API_KEY", "")

	_, err := Load("onboarding")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAYMENT_API_KEY")
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	c := DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "postgres",
		Password: "pw",
		Name:     "onboarding",
		SSLMode:  "disable",
	}

	assert.Equal(t, "host=db port=5432 user=postgres password=pw dbname=onboarding sslmode=disable", c.GetDSN())
}
