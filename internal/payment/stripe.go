package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sony/gobreaker/v2"
)

const defaultBaseURL = "https://api.stripe.com"

// StripeClient talks to the Stripe payment-intents REST API. A circuit
// breaker sits in front of every call so a flapping processor degrades to
// ErrGatewayUnavailable quickly instead of holding checkout requests on
// timeouts.
type StripeClient struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
	breaker *gobreaker.CircuitBreaker[*Intent]
}

// StripeOption customizes a StripeClient.
type StripeOption func(*StripeClient)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(u string) StripeOption {
	return func(c *StripeClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) StripeOption {
	return func(c *StripeClient) { c.httpc = hc }
}

// NewStripeClient creates a StripeClient authenticated with the given secret
// key. An empty key leaves the client constructed but every call fails with
// ErrGatewayUnavailable.
func NewStripeClient(apiKey string, opts ...StripeOption) *StripeClient {
	c := &StripeClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker[*Intent](gobreaker.Settings{
		Name:    "stripe",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Processor rejections are valid answers, not infrastructure
			// failures; they must not trip the breaker.
			var rejected *RejectedError
			return err == nil || errors.As(err, &rejected)
		},
	})
	return c
}

var _ Gateway = (*StripeClient)(nil)

// intentResponse mirrors the subset of the Stripe payment-intent resource
// the storefront reads.
type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Error        *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateIntent creates a payment intent for the given amount in minor
// currency units.
func (c *StripeClient) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))
	form.Set("currency", currency)
	form.Set("payment_method_types[]", "card")
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	return c.execute(func() (*Intent, error) {
		return c.do(ctx, http.MethodPost, "/v1/payment_intents", strings.NewReader(form.Encode()))
	})
}

// RetrieveIntent fetches the current state of a previously created intent.
func (c *StripeClient) RetrieveIntent(ctx context.Context, reference string) (*Intent, error) {
	return c.execute(func() (*Intent, error) {
		return c.do(ctx, http.MethodGet, "/v1/payment_intents/"+url.PathEscape(reference), nil)
	})
}

// execute runs fn through the circuit breaker, mapping an open circuit to
// the generic unavailability error.
func (c *StripeClient) execute(fn func() (*Intent, error)) (*Intent, error) {
	intent, err := c.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Wrap(ErrGatewayUnavailable, "circuit open")
	}
	return intent, err
}

func (c *StripeClient) do(ctx context.Context, method, path string, body io.Reader) (*Intent, error) {
	if c.apiKey == "" {
		return nil, errors.Wrap(ErrGatewayUnavailable, "api key not configured")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrGatewayUnavailable, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.Wrapf(ErrGatewayUnavailable, "decode response: %v", err)
	}

	if resp.StatusCode >= 500 {
		return nil, errors.Wrapf(ErrGatewayUnavailable, "processor returned %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		msg := "request rejected by payment processor"
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return nil, &RejectedError{Message: msg}
	}

	return &Intent{
		Reference:    out.ID,
		ClientSecret: out.ClientSecret,
		Status:       out.Status,
	}, nil
}
