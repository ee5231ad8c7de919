package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"onboarding-service/internal/store"
	"onboarding-service/pkg/logger"
)

// MerchantHandler serves read access to onboarded merchants.
type MerchantHandler struct {
	store *store.Store
}

// NewMerchantHandler creates the handler over a store.
func NewMerchantHandler(st *store.Store) *MerchantHandler {
	return &MerchantHandler{store: st}
}

// GetMerchant retrieves merchant details
func (h *MerchantHandler) GetMerchant(c echo.Context) error {
	log := logger.FromEcho(c)

	id := c.Param("id")
	merchant, err := h.store.GetMerchant(c.Request().Context(), id)
	if err != nil {
		log.Error("Merchant not found", zap.String("id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "merchant not found"})
	}

	return c.JSON(http.StatusOK, merchant)
}

// ListMerchantsByOwner retrieves all merchants owned by a user
func (h *MerchantHandler) ListMerchantsByOwner(c echo.Context) error {
	log := logger.FromEcho(c)

	userID := c.QueryParam("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}

	merchants, err := h.store.ListMerchantsByOwner(c.Request().Context(), userID)
	if err != nil {
		log.Error("Failed to retrieve merchants", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve merchants"})
	}

	return c.JSON(http.StatusOK, merchants)
}
