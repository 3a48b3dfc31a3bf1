package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"tournament-arena/internal/payment"
	"tournament-arena/internal/services"
)

// WebhookProcessor reconciles gateway notifications
type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, payload *payment.WebhookPayload) (services.WebhookOutcome, error)
}

// WebhookHandler receives payment gateway callbacks
type WebhookHandler struct {
	processor WebhookProcessor
	secret    string
	header    string
}

// NewWebhookHandler creates a handler that authenticates callbacks with a shared secret header
func NewWebhookHandler(processor WebhookProcessor, secret, header string) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		secret:    secret,
		header:    header,
	}
}

// Handle verifies the shared secret before touching any state
// POST /api/payments/webhook
func (h *WebhookHandler) Handle(c *gin.Context) {
	if !payment.VerifySecret(c.GetHeader(h.header), h.secret) {
		log.WithField("ip", c.ClientIP()).Warn("Webhook rejected: invalid secret")
		unauthorized(c)
		return
	}

	var payload payment.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "malformed webhook payload")
		return
	}
	if payload.Metadata.TransactionID == "" {
		badRequest(c, "metadata.transaction_id is required")
		return
	}

	outcome, err := h.processor.HandleWebhook(c.Request.Context(), &payload)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"outcome": outcome,
	})
}
