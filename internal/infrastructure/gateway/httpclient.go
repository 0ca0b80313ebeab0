package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	dompayment "github.com/tiendago/storefront/internal/domain/payment"
)

// Client submits payments to a card processor's REST API. Timeouts are imposed
// here so a hung gateway surfaces as a regular gateway failure upstream.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type transactionRequest struct {
	AmountInCents int64         `json:"amount_in_cents"`
	Currency      string        `json:"currency"`
	CustomerEmail string        `json:"customer_email"`
	Reference     string        `json:"reference"`
	PaymentMethod methodPayload `json:"payment_method"`
}

type methodPayload struct {
	Type         string `json:"type"`
	Token        string `json:"token,omitempty"`
	Installments int    `json:"installments,omitempty"`
}

type transactionResponse struct {
	Data struct {
		ID            string     `json:"id"`
		Status        string     `json:"status"`
		Reference     string     `json:"reference"`
		AmountInCents int64      `json:"amount_in_cents"`
		Currency      string     `json:"currency"`
		PaymentMethod string     `json:"payment_method_type"`
		CreatedAt     time.Time  `json:"created_at"`
		FinalizedAt   *time.Time `json:"finalized_at"`
	} `json:"data"`
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

func (c *Client) ProcessPayment(ctx context.Context, req dompayment.Request) (*dompayment.Response, error) {
	payload := transactionRequest{
		AmountInCents: req.AmountInCents,
		Currency:      req.Currency,
		CustomerEmail: req.CustomerEmail,
		Reference:     req.Reference,
		PaymentMethod: methodPayload{
			Type:         req.Method.Type,
			Token:        req.Method.Token,
			Installments: req.Method.Installments,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gateway: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("gateway: read response: %w", err)
	}

	var decoded transactionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("gateway: decode response (http %d): %w", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		reason := decoded.Error.Reason
		if reason == "" {
			reason = http.StatusText(httpResp.StatusCode)
		}
		return nil, fmt.Errorf("gateway: http %d: %s", httpResp.StatusCode, reason)
	}

	return &dompayment.Response{
		ID:            decoded.Data.ID,
		Status:        dompayment.Status(decoded.Data.Status),
		Reference:     decoded.Data.Reference,
		AmountInCents: decoded.Data.AmountInCents,
		Currency:      decoded.Data.Currency,
		PaymentMethod: decoded.Data.PaymentMethod,
		CreatedAt:     decoded.Data.CreatedAt,
		FinalizedAt:   decoded.Data.FinalizedAt,
	}, nil
}
