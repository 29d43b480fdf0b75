package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/agastya71/mysl-pos-project-sub006/internal/apierror"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// gatewayRequest is the JSON body sent to the processor gateway.
type gatewayRequest struct {
	Amount      decimal.Decimal `json:"amount,omitempty"`
	CardToken   string          `json:"card_token,omitempty"`
	Description string          `json:"description,omitempty"`
}

// gatewayResponse is returned by the gateway for every operation, including
// declines (HTTP 402).
type gatewayResponse struct {
	Approved          bool   `json:"approved"`
	Status            string `json:"status"`
	ID                string `json:"id"`
	AuthorizationCode string `json:"authorization_code"`
	CardLast4         string `json:"card_last4"`
	CardBrand         string `json:"card_brand"`
	Message           string `json:"message"`
}

// GatewayProcessor talks JSON over HTTP to an external card processor
// (or a sidecar fronting one). Every call goes through the circuit breaker.
type GatewayProcessor struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewGatewayProcessor(baseURL, apiKey string, timeout time.Duration, cb *CircuitBreaker) *GatewayProcessor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GatewayProcessor{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

func (g *GatewayProcessor) Name() string { return "gateway" }

func (g *GatewayProcessor) AuthorizePayment(ctx context.Context, req AuthorizeRequest) (*ProcessorResult, error) {
	body := gatewayRequest{Amount: req.Amount, CardToken: req.CardToken, Description: req.Description}
	return g.call(ctx, "/v1/authorizations", req.IdempotencyKey, body)
}

func (g *GatewayProcessor) CapturePayment(ctx context.Context, authorizationID string, amount decimal.Decimal) (*ProcessorResult, error) {
	path := fmt.Sprintf("/v1/authorizations/%s/capture", url.PathEscape(authorizationID))
	return g.call(ctx, path, "capture-"+authorizationID, gatewayRequest{Amount: amount})
}

func (g *GatewayProcessor) VoidPayment(ctx context.Context, authorizationID string) (*ProcessorResult, error) {
	path := fmt.Sprintf("/v1/authorizations/%s/void", url.PathEscape(authorizationID))
	return g.call(ctx, path, "void-"+authorizationID, gatewayRequest{})
}

func (g *GatewayProcessor) RefundPayment(ctx context.Context, paymentID string, amount decimal.Decimal) (*ProcessorResult, error) {
	path := fmt.Sprintf("/v1/payments/%s/refunds", url.PathEscape(paymentID))
	key := fmt.Sprintf("refund-%s-%s", paymentID, amount.StringFixed(2))
	return g.call(ctx, path, key, gatewayRequest{Amount: amount})
}

// call POSTs body to path. Declines are results; transport errors, 5xx
// responses and an open breaker are PROCESSOR_UNAVAILABLE errors.
func (g *GatewayProcessor) call(ctx context.Context, path, idempotencyKey string, body gatewayRequest) (*ProcessorResult, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gateway: marshal payload: %w", err)
	}

	var result *ProcessorResult
	cbErr := g.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("gateway: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if g.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+g.apiKey)
		}
		if idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", idempotencyKey)
		}

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("gateway: unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("gateway: returned %d", resp.StatusCode)
		}

		var gr gatewayResponse
		if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
			return fmt.Errorf("gateway: decode response: %w", err)
		}
		result = toResult(resp.StatusCode, gr)
		return nil
	})
	if cbErr != nil {
		log.Error().Err(cbErr).Str("path", path).Msg("gateway: call failed")
		return nil, apierror.WithCause(apierror.ErrProcessorUnavailable, cbErr)
	}
	return result, nil
}

func toResult(status int, gr gatewayResponse) *ProcessorResult {
	ok := gr.Approved && status < http.StatusBadRequest
	res := &ProcessorResult{
		Success:           ok,
		Status:            gr.Status,
		TransactionID:     gr.ID,
		AuthorizationCode: gr.AuthorizationCode,
		CardLast4:         gr.CardLast4,
		CardBrand:         gr.CardBrand,
		Message:           gr.Message,
	}
	if !ok {
		if res.Status == "" {
			res.Status = StatusDeclined
		}
		if res.Message == "" {
			res.Message = fmt.Sprintf("declined by processor (HTTP %d)", status)
		}
	}
	return res
}
