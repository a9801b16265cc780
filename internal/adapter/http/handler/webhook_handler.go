package handler

import (
	"io"
	"net/http"

	"payment-core/internal/core/ports"
	"payment-core/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WebhookHandler receives gateway payment callbacks.
//
// The response contract is deliberately opaque: any verification or
// persistence failure answers with a generic 500 body so that callers probing
// the endpoint learn nothing about why a forged payload was rejected. The
// real failure reason is logged server-side.
type WebhookHandler struct {
	webhookSvc ports.WebhookService
	factory    ports.ProviderFactory
	log        zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookSvc ports.WebhookService, factory ports.ProviderFactory, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc, factory: factory, log: log}
}

// HandlePaymentWebhook handles POST /api/webhooks/payment?provider=<name>.
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	provider := c.Query("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing provider param"})
		return
	}

	// The raw bytes must reach verification untouched; any re-serialization
	// would break the HMAC comparison.
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Error().Err(err).Str("provider", provider).Msg("failed to read webhook body")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook handler failed"})
		return
	}

	signature := c.GetHeader(h.factory.ByName(provider).SignatureHeader())

	if err := h.webhookSvc.HandleWebhook(c.Request.Context(), provider, rawBody, signature); err != nil {
		if apperror.HasCode(err, apperror.CodeOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook handler failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
