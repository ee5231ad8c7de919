package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"onboarding-service/internal/onboarding"
	"onboarding-service/internal/referral"
	"onboarding-service/pkg/logger"
)

// Onboarder runs one merchant onboarding saga per call.
type Onboarder interface {
	Run(ctx context.Context, req *onboarding.Request) (*onboarding.Result, error)
}

// OnboardingHandler exposes the onboarding action over HTTP.
type OnboardingHandler struct {
	saga Onboarder
}

// NewOnboardingHandler creates the handler over a saga.
func NewOnboardingHandler(saga Onboarder) *OnboardingHandler {
	return &OnboardingHandler{saga: saga}
}

// Onboard handles merchant onboarding. The response is a single
// human-readable message either way: the saga is all-or-nothing and the
// caller never sees a partial outcome.
func (h *OnboardingHandler) Onboard(c echo.Context) error {
	log := logger.FromEcho(c)

	var req onboarding.Request
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse onboarding request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ctx := logger.WithContext(c.Request().Context(), log)
	result, err := h.saga.Run(ctx, &req)
	if err != nil {
		var validationErr *onboarding.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": validationErr.Reason})
		case errors.Is(err, referral.ErrCodeSpaceExhausted):
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error() + ". Please try again."})
		default:
			return c.JSON(http.StatusBadGateway, echo.Map{"error": err.Error()})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":         result.Message,
		"merchant_id":     result.MerchantID,
		"user_id":         result.UserID,
		"payment_user_id": result.PaymentUserID,
		"wallet_id":       result.WalletID,
	})
}
