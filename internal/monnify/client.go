// README: Monnify REST client; basic-auth login, checkout init and transaction status.
package monnify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"yourhelpa/internal/logger"
	"yourhelpa/internal/metrics"
)

const DefaultBaseURL = "https://sandbox.monnify.com"

var (
	ErrNotConfigured = errors.New("monnify credentials not configured")
	ErrRejected      = errors.New("monnify rejected the request")
)

// Payment status values reported by the transaction status endpoint.
const (
	StatusPaid          = "PAID"
	StatusOverpaid      = "OVERPAID"
	StatusPending       = "PENDING"
	StatusPartiallyPaid = "PARTIALLY_PAID"
	StatusExpired       = "EXPIRED"
	StatusFailed        = "FAILED"
	StatusCancelled     = "CANCELLED"
)

type Config struct {
	BaseURL      string
	APIKey       string
	SecretKey    string
	ContractCode string
	RedirectURL  string
	Timeout      time.Duration
}

type Client struct {
	cfg    Config
	client *http.Client
	log    *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

type InitRequest struct {
	Amount      float64
	Reference   string
	Description string
	Name        string
	Email       string
	Metadata    map[string]string
}

type Checkout struct {
	TransactionReference string `json:"transactionReference"`
	PaymentReference     string `json:"paymentReference"`
	CheckoutURL          string `json:"checkoutUrl"`
}

type Transaction struct {
	TransactionReference string      `json:"transactionReference"`
	PaymentReference     string      `json:"paymentReference"`
	AmountPaid           json.Number `json:"amountPaid"`
	TotalPayable         json.Number `json:"totalPayable"`
	PaymentStatus        string      `json:"paymentStatus"`
	PaidOn               string      `json:"paidOn"`
}

// IsPaid reports whether the gateway has collected the full amount.
func (t Transaction) IsPaid() bool {
	return t.PaymentStatus == StatusPaid || t.PaymentStatus == StatusOverpaid
}

type envelope struct {
	RequestSuccessful bool            `json:"requestSuccessful"`
	ResponseMessage   string          `json:"responseMessage"`
	ResponseCode      string          `json:"responseCode"`
	ResponseBody      json.RawMessage `json:"responseBody"`
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logger.OrNop(log),
		now:    time.Now,
	}
}

func (c *Client) configured() bool {
	return c.cfg.APIKey != "" && c.cfg.SecretKey != ""
}

// InitTransaction starts a checkout and returns the hosted payment URL.
func (c *Client) InitTransaction(ctx context.Context, req InitRequest) (*Checkout, error) {
	if !c.configured() || c.cfg.ContractCode == "" {
		return nil, ErrNotConfigured
	}
	payload := map[string]any{
		"amount":             req.Amount,
		"customerName":       req.Name,
		"customerEmail":      req.Email,
		"paymentReference":   req.Reference,
		"paymentDescription": req.Description,
		"currencyCode":       "NGN",
		"contractCode":       c.cfg.ContractCode,
		"paymentMethods":     []string{"CARD", "ACCOUNT_TRANSFER"},
	}
	if c.cfg.RedirectURL != "" {
		payload["redirectUrl"] = c.cfg.RedirectURL
	}
	if len(req.Metadata) > 0 {
		payload["metaData"] = req.Metadata
	}

	var out Checkout
	if err := c.authorized(ctx, http.MethodPost, "/api/v1/merchant/transactions/init-transaction", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTransaction returns the current status of a gateway transaction.
func (c *Client) GetTransaction(ctx context.Context, transactionRef string) (*Transaction, error) {
	if !c.configured() {
		return nil, ErrNotConfigured
	}
	var out Transaction
	path := "/api/v2/transactions/" + url.PathEscape(transactionRef)
	if err := c.authorized(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) authorized(ctx context.Context, method, path string, payload any, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	err = c.call(ctx, method, path, "Bearer "+token, payload, out)
	var se *statusError
	if errors.As(err, &se) && se.status == http.StatusUnauthorized {
		// Token revoked early; log in again once.
		c.invalidate()
		if token, err = c.accessToken(ctx); err != nil {
			return err
		}
		err = c.call(ctx, method, path, "Bearer "+token, payload, out)
	}
	return err
}

// accessToken returns a cached bearer token, logging in when it is missing
// or within a minute of expiry.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.expiresAt.Add(-time.Minute)) {
		return c.token, nil
	}

	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.APIKey + ":" + c.cfg.SecretKey))
	var body struct {
		AccessToken string `json:"accessToken"`
		ExpiresIn   int    `json:"expiresIn"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/v1/auth/login", "Basic "+basic, nil, &body); err != nil {
		return "", fmt.Errorf("monnify login: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("monnify login: %w: empty access token", ErrRejected)
	}
	c.token = body.AccessToken
	c.expiresAt = c.now().Add(time.Duration(body.ExpiresIn) * time.Second)
	return c.token, nil
}

func (c *Client) invalidate() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("monnify http %d: %s", e.status, e.message)
}

func (c *Client) call(ctx context.Context, method, path, auth string, payload any, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ExternalCallDuration.WithLabelValues("monnify", metrics.Outcome(err)).Observe(time.Since(start).Seconds())
	}()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode >= 300 {
		c.log.Warn("monnify request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", env.ResponseMessage))
		return &statusError{status: resp.StatusCode, message: env.ResponseMessage}
	}
	if !env.RequestSuccessful {
		return fmt.Errorf("%w: %s (%s)", ErrRejected, env.ResponseMessage, env.ResponseCode)
	}
	if out != nil && len(env.ResponseBody) > 0 {
		if err := json.Unmarshal(env.ResponseBody, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}
