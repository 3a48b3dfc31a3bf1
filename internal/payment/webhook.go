package payment

import (
	"crypto/subtle"
	"strings"

	"github.com/shopspring/decimal"
)

// WebhookStatus is the normalized outcome reported by the gateway
type WebhookStatus int

const (
	StatusUnknown WebhookStatus = iota
	StatusCompleted
	StatusFailed
	StatusCancelled
	StatusExpired
)

func (s WebhookStatus) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	case StatusExpired:
		return "expired"
	}
	return "unknown"
}

// ParseStatus maps the gateway's free-form status string onto WebhookStatus
func ParseStatus(raw string) WebhookStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "COMPLETED", "SUCCESS", "SUCCEEDED", "PAID":
		return StatusCompleted
	case "FAILED", "FAILURE", "ERROR", "DECLINED":
		return StatusFailed
	case "CANCELLED", "CANCELED":
		return StatusCancelled
	case "EXPIRED":
		return StatusExpired
	}
	return StatusUnknown
}

// WebhookMetadata echoes the metadata sent with the charge
type WebhookMetadata struct {
	TransactionID string `json:"transaction_id"`
	UserUID       string `json:"user_uid"`
}

// WebhookPayload is the inbound notification body
type WebhookPayload struct {
	Status        string          `json:"status"`
	TransactionID string          `json:"transaction_id"`
	InvoiceID     string          `json:"invoice_id"`
	Amount        decimal.Decimal `json:"amount"`
	Metadata      WebhookMetadata `json:"metadata"`
}

// ParsedStatus returns the normalized status of the payload
func (p *WebhookPayload) ParsedStatus() WebhookStatus {
	return ParseStatus(p.Status)
}

// GatewayReference returns the gateway's id for the payment, preferring the
// transaction id over the invoice id.
func (p *WebhookPayload) GatewayReference() string {
	if p.TransactionID != "" {
		return p.TransactionID
	}
	return p.InvoiceID
}

// VerifySecret reports whether the provided header value matches the shared secret
func VerifySecret(provided, expected string) bool {
	if provided == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}
