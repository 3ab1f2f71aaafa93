// README: Route-level tests over the full gin engine with in-memory backends.
package http_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httptransport "yourhelpa/internal/http"
	"yourhelpa/internal/infra"
	"yourhelpa/internal/modules/action"
	"yourhelpa/internal/modules/booking"
	"yourhelpa/internal/modules/chat"
	"yourhelpa/internal/modules/dashboard"
	"yourhelpa/internal/modules/intent"
	"yourhelpa/internal/modules/mail"
	"yourhelpa/internal/modules/payment"
	"yourhelpa/internal/modules/provider"
	"yourhelpa/internal/modules/recipe"
	"yourhelpa/internal/monnify"
	"yourhelpa/internal/types"
)

const webhookURL = "https://api.yourhelpa.com.ng/api/whatsapp/webhook"

type providerStore struct {
	list []provider.Provider
	err  error
}

func (s *providerStore) All(context.Context) ([]provider.Provider, error) {
	return s.list, s.err
}

func (s *providerStore) Get(_ context.Context, id string) (*provider.Provider, error) {
	for _, p := range s.list {
		if p.ID.String() == id {
			return &p, nil
		}
	}
	return nil, provider.ErrNotFound
}

func (s *providerStore) Search(_ context.Context, category string) ([]provider.Provider, error) {
	var out []provider.Provider
	for _, p := range s.list {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, s.err
}

func (s *providerStore) Register(context.Context, provider.RegisterCommand) (string, error) {
	return "R-1", nil
}

type bookingStore struct{}

func (bookingStore) Create(context.Context, *booking.Booking) (string, error) {
	return "BK-9", nil
}

type paymentRepo struct {
	mu    sync.Mutex
	byRef map[string]*payment.Transaction
}

func (r *paymentRepo) Create(_ context.Context, tx *payment.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *tx
	r.byRef[tx.Reference] = &cp
	return nil
}

func (r *paymentRepo) GetByReference(_ context.Context, ref string) (*payment.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.byRef[ref]
	if !ok {
		return nil, payment.ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r *paymentRepo) find(id types.ID) *payment.Transaction {
	for _, tx := range r.byRef {
		if tx.ID == id {
			return tx
		}
	}
	return nil
}

func (r *paymentRepo) UpdateStatus(_ context.Context, id types.ID, from, to payment.Status, version int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := r.find(id)
	if tx == nil || tx.Status != from || tx.StatusVersion != version {
		return false, nil
	}
	tx.Status = to
	tx.StatusVersion++
	return true, nil
}

func (r *paymentRepo) SetCheckout(_ context.Context, id types.ID, checkoutURL, gatewayRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx := r.find(id); tx != nil {
		tx.CheckoutURL = checkoutURL
		tx.GatewayRef = gatewayRef
	}
	return nil
}

func (r *paymentRepo) AppendEvent(context.Context, *payment.Event) error { return nil }

func (r *paymentRepo) ListInitiatedBefore(context.Context, time.Time, int) ([]payment.Transaction, error) {
	return nil, nil
}

func (r *paymentRepo) MarkChecked(context.Context, types.ID, time.Time) error { return nil }

type gateway struct {
	initErr error
	status  string
}

func (g *gateway) InitTransaction(_ context.Context, req monnify.InitRequest) (*monnify.Checkout, error) {
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &monnify.Checkout{
		TransactionReference: "MNFY|1",
		PaymentReference:     req.Reference,
		CheckoutURL:          "https://sandbox.sdk.monnify.com/checkout/MNFY|1",
	}, nil
}

func (g *gateway) GetTransaction(context.Context, string) (*monnify.Transaction, error) {
	return &monnify.Transaction{PaymentStatus: g.status}, nil
}

type dashboardReader struct{}

func (dashboardReader) Profile(_ context.Context, uid string) (*dashboard.Profile, error) {
	if uid == "u-ghost" {
		return nil, dashboard.ErrNotFound
	}
	return &dashboard.Profile{ID: uid, FullName: "Ada Obi"}, nil
}

func (dashboardReader) Transactions(context.Context, string, int) ([]payment.Transaction, error) {
	return nil, nil
}

func (dashboardReader) Listings(context.Context, string) ([]dashboard.Listing, error) {
	return nil, nil
}

type mailbox struct {
	mu   sync.Mutex
	sent []string
}

func (m *mailbox) Send(_ context.Context, to, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

type outbox struct {
	mu   sync.Mutex
	to   []string
	body []string
}

func (o *outbox) SendMessage(_ context.Context, to, body string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.to = append(o.to, to)
	o.body = append(o.body, body)
	return nil
}

func (o *outbox) last() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.body) == 0 {
		return ""
	}
	return o.body[len(o.body)-1]
}

type tokens map[string]*infra.AuthToken

func (t tokens) VerifyIDToken(_ context.Context, raw string) (*infra.AuthToken, error) {
	tok, ok := t[raw]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return tok, nil
}

type fixture struct {
	handler   http.Handler
	providers *providerStore
	gateway   *gateway
	mailbox   *mailbox
	outbox    *outbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	f := &fixture{
		providers: &providerStore{list: []provider.Provider{
			{ID: "P-1", Name: "Chidi Plumbing Works", Category: "plumbing", Price: "5000", Rating: 4.7, Location: "Yaba"},
			{ID: "P-2", Name: "Sparkle Cleaners", Category: "cleaning", Price: "8000"},
		}},
		gateway: &gateway{status: monnify.StatusPending},
		mailbox: &mailbox{},
		outbox:  &outbox{},
	}
	providerSvc := provider.NewService(f.providers)
	bookingSvc := booking.NewService(bookingStore{})
	recipes := recipe.NewCatalog(nil)
	processor := action.NewProcessor(providerSvc, recipes, bookingSvc, nil)
	dispatcher := intent.NewDispatcher(intent.NewMatcher(intent.DefaultCategories, intent.DefaultMatcherConfig()))
	chatSvc := chat.NewService(chat.NewRedisStore(rdb, time.Hour, 50), dispatcher, processor, providerSvc, nil)

	srv := httptransport.NewServer(httptransport.ServerDeps{
		Chat:      chatSvc,
		Providers: providerSvc,
		Bookings:  bookingSvc,
		Recipes:   recipes,
		Payments:  payment.NewService(&paymentRepo{byRef: map[string]*payment.Transaction{}}, f.gateway, nil),
		Dashboard: dashboard.NewService(dashboardReader{}),
		Mail:      mail.NewService(f.mailbox, "", nil),
		WhatsApp:  f.outbox,
		Verifier: tokens{
			"cust":  {UID: "u-cust", Email: "ada@example.com", Role: "customer"},
			"other": {UID: "u-other", Email: "bola@example.com", Role: "customer"},
			"admin": {UID: "u-admin", Email: "ops@yourhelpa.com.ng", Role: "admin"},
		},
		AllowedOrigins:   []string{"https://yourhelpa.com.ng"},
		TwilioAuthToken:  "twilio-secret",
		TwilioWebhookURL: webhookURL,
	})
	f.handler = srv.Routes()
	return f
}

func (f *fixture) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	w = f.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "yourhelpa_http_request_duration_seconds")
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/payments", nil)
	req.Header.Set("Origin", "https://yourhelpa.com.ng")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://yourhelpa.com.ng", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/providers", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestChatServiceRequest(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/api/chat", map[string]any{"session_id": "web-1", "message": "I need a plumber"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decode(t, w)
	reply := out["reply"].(map[string]any)
	assert.Equal(t, "SHOW_PROVIDERS:plumbing", reply["action"])
	result := out["result"].(map[string]any)
	providers := result["providers"].([]any)
	require.Len(t, providers, 1)
	assert.Equal(t, "Chidi Plumbing Works", providers[0].(map[string]any)["name"])
}

func TestChatProviderFailureStillAnswers(t *testing.T) {
	f := newFixture(t)
	f.providers.err = errors.New("apps script down")

	w := f.do(http.MethodPost, "/api/chat", map[string]any{"session_id": "web-1", "message": "I need a plumber"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	result := decode(t, w)["result"].(map[string]any)
	assert.Equal(t, []any{}, result["providers"])
	assert.Equal(t, action.MessageProviderFailure, result["message"])
}

func TestChatValidation(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/api/chat", map[string]any{"message": "hi"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(http.MethodPost, "/api/chat", map[string]any{"session_id": "  ", "message": "hi"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{"))
	w = httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatBlankMessageGetsFallback(t *testing.T) {
	f := newFixture(t)
	for _, body := range []map[string]any{{"session_id": "web-1"}, {"session_id": "web-1", "message": "   "}} {
		w := f.do(http.MethodPost, "/api/chat", body, "")
		require.Equal(t, http.StatusOK, w.Code)
		reply := decode(t, w)["reply"].(map[string]any)
		assert.Equal(t, "fallback", reply["intent"])
		assert.NotEmpty(t, reply["text"])
	}
}

func TestChatSelectHistoryReset(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/chat/web-2/select", map[string]any{"provider_id": "P-404"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPost, "/api/chat/web-2/select", map[string]any{"provider_id": "P-1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	ctx := decode(t, w)["context"].(map[string]any)
	assert.NotEmpty(t, ctx)

	w = f.do(http.MethodPost, "/api/chat", map[string]any{"session_id": "web-2", "message": "yes", "phone": "08031234567"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, "BK-9", out["result"].(map[string]any)["booking_id"])

	w = f.do(http.MethodGet, "/api/chat/web-2/history", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["messages"], 3)

	w = f.do(http.MethodDelete, "/api/chat/web-2", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(http.MethodGet, "/api/chat/web-2/history", nil, "")
	assert.Empty(t, decode(t, w)["messages"])
}

func TestChatSetLocation(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPut, "/api/chat/web-3/location", map[string]any{"location": "Yaba, Lagos"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProviders(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/providers?category=cleaning", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["providers"], 1)

	w = f.do(http.MethodGet, "/api/providers", nil, "")
	assert.Len(t, decode(t, w)["providers"], 2)

	w = f.do(http.MethodGet, "/api/providers?category=catering", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["providers"])

	w = f.do(http.MethodGet, "/api/providers/P-2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sparkle Cleaners", decode(t, w)["name"])

	w = f.do(http.MethodGet, "/api/providers/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(http.MethodGet, "/api/providers/bad%20id", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterAndBook(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/providers/register", map[string]any{"name": "Ngozi"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/providers/register", map[string]any{
		"name": "Ngozi Catering", "phone": "0803 123 4567", "category": "Catering", "location": "Ikeja",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "R-1", decode(t, w)["provider_id"])

	w = f.do(http.MethodPost, "/api/bookings", map[string]any{"provider_id": "P-1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/bookings", map[string]any{"provider_id": "P-1", "customer_phone": "+2348031234567"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "BK-9", decode(t, w)["booking_id"])
}

func TestRecipes(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/api/recipes?q=jollof", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["recipes"].([]any)
	require.NotEmpty(t, list)
	assert.Equal(t, "Jollof Rice", list[0].(map[string]any)["name"])
}

func TestPaymentsRequireAuth(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/api/payments", map[string]any{"booking_id": "B1"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = f.do(http.MethodPost, "/api/payments", map[string]any{"booking_id": "B1"}, "forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEscrowLifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/payments", map[string]any{
		"booking_id": "B1", "helpa_id": "H1", "amount": 12500, "name": "Ada Obi",
	}, "cust")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tx := decode(t, w)
	ref := tx["reference"].(string)
	assert.True(t, strings.HasPrefix(ref, "YH-B1-"))
	assert.Equal(t, "initiated", tx["status"])
	assert.Equal(t, "u-cust", tx["customer_id"])
	assert.Equal(t, float64(1250000), tx["amount"].(map[string]any)["amount"])
	assert.Contains(t, tx["checkout_url"], "checkout")

	w = f.do(http.MethodPost, "/api/payments/"+ref+"/release", nil, "cust")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodPost, "/api/payments/"+ref+"/verify", nil, "cust")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "initiated", decode(t, w)["status"])

	f.gateway.status = monnify.StatusPaid
	w = f.do(http.MethodPost, "/api/payments/"+ref+"/verify", nil, "cust")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "paid", decode(t, w)["status"])

	w = f.do(http.MethodPost, "/api/payments/"+ref+"/release", nil, "other")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = f.do(http.MethodPost, "/api/payments/"+ref+"/refund", nil, "cust")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/api/payments/"+ref+"/release", nil, "cust")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "released", decode(t, w)["status"])

	w = f.do(http.MethodPost, "/api/payments/"+ref+"/refund", nil, "admin")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodGet, "/api/payments/"+ref, nil, "other")
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = f.do(http.MethodGet, "/api/payments/"+ref, nil, "admin")
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodGet, "/api/payments/YH-none", nil, "admin")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentValidationAndGatewayFailure(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/payments", map[string]any{"booking_id": "B1", "helpa_id": "H1", "amount": -5}, "cust")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(http.MethodPost, "/api/payments", map[string]any{"helpa_id": "H1", "amount": 100}, "cust")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.gateway.initErr = errors.New("connection reset")
	w = f.do(http.MethodPost, "/api/payments", map[string]any{"booking_id": "B1", "helpa_id": "H1", "amount": 100}, "cust")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestDashboardOwnership(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/dashboard/u-cust", nil, "other")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodGet, "/api/dashboard/u-cust", nil, "cust")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada Obi", decode(t, w)["profile"].(map[string]any)["full_name"])

	w = f.do(http.MethodGet, "/api/dashboard/u-cust", nil, "admin")
	assert.Equal(t, http.StatusOK, w.Code)
	w = f.do(http.MethodGet, "/api/dashboard/u-ghost", nil, "admin")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendWelcome(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/send-welcome", map[string]any{"email": "ada@example.com"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/api/send-welcome", map[string]any{"email": "ada@example.com"}, "other")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPost, "/api/send-welcome", map[string]any{"email": "not-an-address"}, "cust")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/send-welcome", map[string]any{"email": "Ada@Example.com", "name": "Ada"}, "cust")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
	assert.Equal(t, []string{"Ada@Example.com"}, f.mailbox.sent)
}

func twilioSignature(token, fullURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := fullURL
	for _, k := range keys {
		s += k + form.Get(k)
	}
	mac := hmac.New(sha1.New, []byte(token))
	mac.Write([]byte(s))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (f *fixture) whatsapp(form url.Values, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Twilio-Signature", signature)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func TestWhatsAppRejectsBadSignature(t *testing.T) {
	f := newFixture(t)
	form := url.Values{"From": {"whatsapp:+2348031234567"}, "Body": {"hi"}}
	w := f.whatsapp(form, "forged")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, f.outbox.to)
}

func TestWhatsAppConversation(t *testing.T) {
	f := newFixture(t)
	send := func(body string) *httptest.ResponseRecorder {
		form := url.Values{"From": {"whatsapp:+2348031234567"}, "Body": {body}, "ProfileName": {"Ada"}}
		return f.whatsapp(form, twilioSignature("twilio-secret", webhookURL, form))
	}

	w := send("I need a plumber")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<Response></Response>", w.Body.String())
	assert.Equal(t, []string{"+2348031234567"}, f.outbox.to)
	assert.Contains(t, f.outbox.last(), "1. *Chidi Plumbing Works*")
	assert.Contains(t, f.outbox.last(), "Reply BOOK P-1 to book")

	w = send("BOOK P-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, f.outbox.last(), "Chidi Plumbing Works")

	w = send("yes")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, f.outbox.last(), "Booking reference: *BK-9*")
}

func TestWhatsAppBookWithServiceNameSearches(t *testing.T) {
	f := newFixture(t)
	send := func(body string) *httptest.ResponseRecorder {
		form := url.Values{"From": {"whatsapp:+2348031234567"}, "Body": {body}}
		return f.whatsapp(form, twilioSignature("twilio-secret", webhookURL, form))
	}

	w := send("book plumber")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, f.outbox.last(), "1. *Chidi Plumbing Works*")
	assert.NotContains(t, f.outbox.last(), "something went wrong")

	w = send("book P-404")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, f.outbox.last(), "something went wrong")
	assert.NotEmpty(t, f.outbox.last())
}

func TestWhatsAppLocationAndMedia(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"From": {"whatsapp:+2348031234567"}, "Latitude": {"6.5095"}, "Longitude": {"3.3711"}}
	w := f.whatsapp(form, twilioSignature("twilio-secret", webhookURL, form))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, f.outbox.last(), "Got your location")

	form = url.Values{"From": {"whatsapp:+2348031234567"}, "NumMedia": {"1"}}
	w = f.whatsapp(form, twilioSignature("twilio-secret", webhookURL, form))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, f.outbox.to, 1)
}
