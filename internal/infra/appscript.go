// README: Google Apps Script client; the spreadsheet backend for providers and bookings.
package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"yourhelpa/internal/logger"
	"yourhelpa/internal/metrics"
)

var (
	ErrScriptNotConfigured = errors.New("apps script url not configured")
	ErrScriptFailed        = errors.New("apps script returned failure")
)

// AppScript talks to the deployed web app. Every response is an envelope of
// the form {success, error, ...payload}.
type AppScript struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

type scriptEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type scriptResponse struct {
	status int
	body   []byte
}

func NewAppScript(baseURL string, timeout time.Duration, log *zap.Logger) *AppScript {
	log = logger.OrNop(log)
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "apps-script",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &AppScript{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
		log:     log,
	}
}

// Get calls ?action=<action>&<params> and decodes the envelope payload into out.
func (s *AppScript) Get(ctx context.Context, action string, params url.Values, out any) error {
	if s.baseURL == "" {
		return ErrScriptNotConfigured
	}
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return fmt.Errorf("apps script: parse url: %w", err)
	}
	q := u.Query()
	q.Set("action", action)
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("apps script: build request: %w", err)
	}
	return s.do(req, action, out)
}

// Post sends payload as JSON. The payload must carry its own "action" field.
func (s *AppScript) Post(ctx context.Context, action string, payload any, out any) error {
	if s.baseURL == "" {
		return ErrScriptNotConfigured
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("apps script: marshal %s: %w", action, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("apps script: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, action, out)
}

func (s *AppScript) do(req *http.Request, action string, out any) error {
	start := time.Now()
	res, err := s.breaker.Execute(func() (interface{}, error) {
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return nil, err
		}
		// Only transport and 5xx failures count against the breaker.
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("server error: %d", resp.StatusCode)
		}
		return scriptResponse{status: resp.StatusCode, body: body}, nil
	})
	metrics.ExternalCallDuration.WithLabelValues("apps_script", metrics.Outcome(err)).Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			s.log.Warn("apps script blocked by circuit breaker", zap.String("action", action))
		}
		return fmt.Errorf("apps script %s: %w", action, err)
	}

	r := res.(scriptResponse)
	if r.status >= 400 {
		return fmt.Errorf("apps script %s: status %d", action, r.status)
	}
	var env scriptEnvelope
	if err := json.Unmarshal(r.body, &env); err != nil {
		return fmt.Errorf("apps script %s: decode envelope: %w", action, err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "unknown error"
		}
		return fmt.Errorf("%w: %s: %s", ErrScriptFailed, action, msg)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("apps script %s: decode payload: %w", action, err)
	}
	return nil
}
