package handler

import (
	"payment-core/internal/adapter/http/dto"
	"payment-core/internal/core/ports"
	"payment-core/pkg/apperror"
	"payment-core/pkg/response"

	"github.com/gin-gonic/gin"
)

// CheckoutHandler handles checkout-session endpoints.
type CheckoutHandler struct {
	checkoutSvc ports.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutSvc ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutSvc: checkoutSvc}
}

// CreateCheckout handles POST /api/v1/checkout.
func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	session, err := h.checkoutSvc.CreateCheckout(c.Request.Context(), ports.CheckoutInput{
		ReferenceID: req.ReferenceID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.CheckoutResponse{URL: session.URL})
}
