// README: Twilio WhatsApp client and webhook signature check.
package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"yourhelpa/internal/metrics"
)

const twilioAPI = "https://api.twilio.com/2010-04-01"

// MaxBodyLength is the longest WhatsApp body Twilio accepts.
const MaxBodyLength = 1600

var ErrNotConfigured = errors.New("twilio credentials not configured")

// TwilioProvider sends WhatsApp messages through the Twilio Messages API.
type TwilioProvider struct {
	accountSID string
	authToken  string
	fromPhone  string
	baseURL    string
	client     *http.Client
}

type twilioMessageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    int    `json:"code,omitempty"`
	ErrorMessage string `json:"message,omitempty"`
}

// NewTwilioProvider creates a new Twilio WhatsApp provider. baseURL may be
// empty for the public API.
func NewTwilioProvider(accountSID, authToken, fromPhone, baseURL string) (*TwilioProvider, error) {
	if accountSID == "" || authToken == "" || fromPhone == "" {
		return nil, ErrNotConfigured
	}
	if baseURL == "" {
		baseURL = twilioAPI
	}
	return &TwilioProvider{
		accountSID: accountSID,
		authToken:  authToken,
		fromPhone:  withPrefix(fromPhone),
		baseURL:    fmt.Sprintf("%s/Accounts/%s", strings.TrimRight(baseURL, "/"), accountSID),
		client:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SendMessage sends a WhatsApp message. Bodies longer than Twilio's limit
// are split into several messages.
func (p *TwilioProvider) SendMessage(ctx context.Context, to, body string) error {
	for _, part := range Split(body, MaxBodyLength) {
		if err := p.send(ctx, withPrefix(to), part); err != nil {
			return err
		}
	}
	return nil
}

func (p *TwilioProvider) send(ctx context.Context, to, body string) (err error) {
	start := time.Now()
	defer func() {
		metrics.ExternalCallDuration.WithLabelValues("twilio", metrics.Outcome(err)).Observe(time.Since(start).Seconds())
	}()

	data := url.Values{}
	data.Set("From", p.fromPhone)
	data.Set("To", to)
	data.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/Messages.json", strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(p.accountSID, p.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var result twilioMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("twilio error: %s (code: %d)", result.ErrorMessage, result.ErrorCode)
	}
	return nil
}

// ValidateSignature checks X-Twilio-Signature: base64(HMAC-SHA1(authToken,
// fullURL + sorted form key/value pairs)).
func ValidateSignature(authToken, fullURL string, form url.Values, signature string) bool {
	if authToken == "" || signature == "" {
		return false
	}
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		for _, v := range form[k] {
			b.WriteString(k)
			b.WriteString(v)
		}
	}
	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// PhoneFromAddress strips the whatsapp: prefix Twilio puts on From/To.
func PhoneFromAddress(addr string) string {
	return strings.TrimPrefix(strings.TrimSpace(addr), "whatsapp:")
}

func withPrefix(phone string) string {
	if strings.HasPrefix(phone, "whatsapp:") {
		return phone
	}
	return "whatsapp:" + phone
}
