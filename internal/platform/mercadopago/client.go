package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrMissingAccessToken = errors.New("mercadopago: access token is not configured")
	ErrEmptyQRCode        = errors.New("mercadopago: payment has no pix qr code")
)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mercadopago: unexpected status %d: %s", e.StatusCode, e.Body)
}

type ClientOptions struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

type Client struct {
	baseURL     string
	accessToken string
	timeout     time.Duration
	http        *http.Client
}

func NewClient(opts ClientOptions) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		accessToken: opts.AccessToken,
		timeout:     opts.Timeout,
		http:        hc,
	}
}

func (c *Client) HasAccessToken() bool { return c != nil && c.accessToken != "" }

// CreatePixPayment creates a pix payment. The idempotency key makes retries of
// the same attempt return the same payment.
func (c *Client) CreatePixPayment(ctx context.Context, req *CreatePaymentRequest, idempotencyKey string) (*Payment, error) {
	if !c.HasAccessToken() {
		return nil, ErrMissingAccessToken
	}
	if req.PaymentMethodID == "" {
		req.PaymentMethodID = PaymentMethodPix
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: encode payment: %w", err)
	}
	headers := map[string]string{"X-Idempotency-Key": idempotencyKey}
	var p Payment
	if err := c.do(ctx, http.MethodPost, "/v1/payments", bytes.NewReader(body), headers, &p); err != nil {
		return nil, err
	}
	if p.QRCode() == "" {
		return &p, ErrEmptyQRCode
	}
	return &p, nil
}

func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	if !c.HasAccessToken() {
		return nil, ErrMissingAccessToken
	}
	var p Payment
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, headers map[string]string, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("mercadopago: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mercadopago: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("mercadopago: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("mercadopago: decode response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
