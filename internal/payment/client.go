package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoPaymentURL is returned when the gateway accepts a charge but omits the checkout link
var ErrNoPaymentURL = errors.New("payment gateway returned no payment url")

// ChargeRequest is the outbound checkout request
type ChargeRequest struct {
	FullName    string            `json:"full_name"`
	Email       string            `json:"email"`
	Amount      decimal.Decimal   `json:"amount"`
	Metadata    map[string]string `json:"metadata"`
	RedirectURL string            `json:"redirect_url"`
	CancelURL   string            `json:"cancel_url"`
	WebhookURL  string            `json:"webhook_url"`
}

// ChargeResponse is the gateway's answer to a checkout request
type ChargeResponse struct {
	Status     bool   `json:"status"`
	Message    string `json:"message"`
	PaymentURL string `json:"payment_url"`
}

// Client talks to the hosted payment gateway
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a gateway client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// CreateCharge starts a checkout and returns the gateway response carrying the payment URL
func (c *Client) CreateCharge(ctx context.Context, charge ChargeRequest) (*ChargeResponse, error) {
	body, err := json.Marshal(charge)
	if err != nil {
		return nil, fmt.Errorf("failed to encode charge: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/checkout", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("payment gateway error: %d - %s", resp.StatusCode, string(respBody))
	}

	var result ChargeResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if result.PaymentURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoPaymentURL, result.Message)
	}

	return &result, nil
}
