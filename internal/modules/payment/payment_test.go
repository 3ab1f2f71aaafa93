// README: Escrow service tests (transition table, gateway outcomes, ownership checks).
package payment

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yourhelpa/internal/dbtest"
	"yourhelpa/internal/monnify"
	"yourhelpa/internal/types"
)

type memRepo struct {
	mu     sync.Mutex
	byRef  map[string]*Transaction
	events []Event
}

func newMemRepo() *memRepo {
	return &memRepo{byRef: map[string]*Transaction{}}
}

func (m *memRepo) Create(_ context.Context, tx *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tx
	m.byRef[tx.Reference] = &cp
	return nil
}

func (m *memRepo) GetByReference(_ context.Context, ref string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.byRef[ref]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (m *memRepo) find(id types.ID) *Transaction {
	for _, tx := range m.byRef {
		if tx.ID == id {
			return tx
		}
	}
	return nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id types.ID, from, to Status, version int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := m.find(id)
	if tx == nil || tx.Status != from || tx.StatusVersion != version {
		return false, nil
	}
	tx.Status = to
	tx.StatusVersion++
	return true, nil
}

func (m *memRepo) SetCheckout(_ context.Context, id types.ID, url, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := m.find(id)
	if tx == nil {
		return ErrNotFound
	}
	tx.CheckoutURL = url
	tx.GatewayRef = ref
	return nil
}

func (m *memRepo) AppendEvent(_ context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *e)
	return nil
}

// ListInitiatedBefore mirrors the SQL ordering: never checked first, then
// least recently checked, then oldest.
func (m *memRepo) ListInitiatedBefore(_ context.Context, before time.Time, limit int) ([]Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Transaction
	for _, tx := range m.byRef {
		if tx.Status == StatusInitiated && tx.CreatedAt.Before(before) {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastCheckedAt, out[j].LastCheckedAt
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) MarkChecked(_ context.Context, id types.ID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx := m.find(id); tx != nil {
		tx.LastCheckedAt = &at
	}
	return nil
}

type fakeGateway struct {
	mu       sync.Mutex
	initErr  error
	getErr   error
	status   string
	byRef    map[string]string // overrides status per gateway reference
	lastInit monnify.InitRequest
	queried  []string
}

func (g *fakeGateway) InitTransaction(_ context.Context, req monnify.InitRequest) (*monnify.Checkout, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastInit = req
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &monnify.Checkout{
		TransactionReference: "MNFY|" + req.Reference,
		PaymentReference:     req.Reference,
		CheckoutURL:          "https://checkout.example/" + req.Reference,
	}, nil
}

func (g *fakeGateway) GetTransaction(_ context.Context, ref string) (*monnify.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queried = append(g.queried, ref)
	if g.getErr != nil {
		return nil, g.getErr
	}
	status := g.status
	if st, ok := g.byRef[ref]; ok {
		status = st
	}
	return &monnify.Transaction{TransactionReference: ref, PaymentStatus: status}, nil
}

func validInitiate() InitiateCommand {
	return InitiateCommand{
		BookingID:     "BK-42",
		CustomerID:    "cust-1",
		HelpaID:       "helpa-9",
		Amount:        types.Naira(12500),
		CustomerName:  "Ada Obi",
		CustomerEmail: "ada@example.com",
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusNone, StatusInitiated, true},
		{StatusInitiated, StatusPaid, true},
		{StatusInitiated, StatusCancelled, true},
		{StatusPaid, StatusReleased, true},
		{StatusPaid, StatusRefunded, true},
		// skipping states
		{StatusInitiated, StatusReleased, false},
		{StatusInitiated, StatusRefunded, false},
		{StatusPaid, StatusCancelled, false},
		// terminal states have no outgoing transitions
		{StatusReleased, StatusRefunded, false},
		{StatusCancelled, StatusPaid, false},
		{StatusRefunded, StatusReleased, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
	assert.True(t, StatusReleased.IsTerminal())
	assert.False(t, StatusPaid.IsTerminal())
}

func TestNewReferenceFormat(t *testing.T) {
	now := time.UnixMilli(1767225600123)
	ref := NewReference("BK-42", now)
	assert.Regexp(t, regexp.MustCompile(`^YH-BK-42-[0-9A-F]{6}-1767225600123$`), ref)
	assert.NotEqual(t, ref, NewReference("BK-42", now))
}

func TestEscrowHappyPath(t *testing.T) {
	repo := newMemRepo()
	gw := &fakeGateway{status: monnify.StatusPaid}
	svc := NewService(repo, gw, nil)
	ctx := context.Background()

	tx, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)
	assert.Equal(t, StatusInitiated, tx.Status)
	assert.Contains(t, tx.CheckoutURL, tx.Reference)
	assert.Equal(t, 12500.0, gw.lastInit.Amount)
	assert.Equal(t, "ada@example.com", gw.lastInit.Email)

	tx, err = svc.Verify(ctx, tx.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, tx.Status)
	assert.NotNil(t, tx.PaidAt)
	assert.Equal(t, []string{"MNFY|" + tx.Reference}, gw.queried)

	tx, err = svc.Release(ctx, ActorCommand{Reference: tx.Reference, ActorID: "cust-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusReleased, tx.Status)
	assert.NotNil(t, tx.ReleasedAt)

	stored, err := repo.GetByReference(ctx, tx.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusReleased, stored.Status)

	var path []Status
	for _, e := range repo.events {
		path = append(path, e.ToStatus)
	}
	assert.Equal(t, []Status{StatusInitiated, StatusPaid, StatusReleased}, path)
}

func TestInitiateValidation(t *testing.T) {
	svc := NewService(newMemRepo(), &fakeGateway{}, nil)
	ctx := context.Background()

	bad := []func(*InitiateCommand){
		func(c *InitiateCommand) { c.BookingID = " " },
		func(c *InitiateCommand) { c.CustomerID = "" },
		func(c *InitiateCommand) { c.HelpaID = "" },
		func(c *InitiateCommand) { c.CustomerEmail = "" },
		func(c *InitiateCommand) { c.Amount = types.Naira(0) },
		func(c *InitiateCommand) { c.Amount = types.Money{Amount: 100, Currency: "USD"} },
	}
	for i, mutate := range bad {
		cmd := validInitiate()
		mutate(&cmd)
		_, err := svc.Initiate(ctx, cmd)
		assert.ErrorIs(t, err, ErrBadRequest, "case %d", i)
	}
}

func TestInitiateGatewayFailureCancels(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &fakeGateway{initErr: errors.New("503")}, nil)

	_, err := svc.Initiate(context.Background(), validInitiate())
	require.ErrorIs(t, err, ErrGateway)

	require.Len(t, repo.byRef, 1)
	for _, tx := range repo.byRef {
		assert.Equal(t, StatusCancelled, tx.Status)
	}
}

func TestVerifyPendingKeepsInitiated(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, &fakeGateway{status: monnify.StatusPending}, nil)
	ctx := context.Background()

	tx, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)
	tx, err = svc.Verify(ctx, tx.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusInitiated, tx.Status)
}

func TestVerifyExpiredCancels(t *testing.T) {
	svc := NewService(newMemRepo(), &fakeGateway{status: monnify.StatusExpired}, nil)
	ctx := context.Background()

	tx, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)
	tx, err = svc.Verify(ctx, tx.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, tx.Status)

	_, err = svc.Verify(ctx, tx.Reference)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestVerifyGatewayError(t *testing.T) {
	gw := &fakeGateway{}
	svc := NewService(newMemRepo(), gw, nil)
	ctx := context.Background()

	tx, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)
	gw.getErr = errors.New("timeout")
	_, err = svc.Verify(ctx, tx.Reference)
	assert.ErrorIs(t, err, ErrGateway)
}

func TestVerifyPaidIsIdempotent(t *testing.T) {
	gw := &fakeGateway{status: monnify.StatusPaid}
	svc := NewService(newMemRepo(), gw, nil)
	ctx := context.Background()

	tx, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)
	_, err = svc.Verify(ctx, tx.Reference)
	require.NoError(t, err)
	tx, err = svc.Verify(ctx, tx.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, tx.Status)
	assert.Len(t, gw.queried, 1)
}

func TestReleaseRules(t *testing.T) {
	gw := &fakeGateway{status: monnify.StatusPending}
	svc := NewService(newMemRepo(), gw, nil)
	ctx := context.Background()

	tx, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)

	// Not paid yet.
	_, err = svc.Release(ctx, ActorCommand{Reference: tx.Reference, ActorID: "cust-1"})
	assert.ErrorIs(t, err, ErrInvalidState)

	gw.status = monnify.StatusPaid
	_, err = svc.Verify(ctx, tx.Reference)
	require.NoError(t, err)

	// Only the customer releases.
	_, err = svc.Release(ctx, ActorCommand{Reference: tx.Reference, ActorID: "helpa-9"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Release(ctx, ActorCommand{Reference: tx.Reference, ActorID: "admin-1", ActorRole: "admin"})
	assert.ErrorIs(t, err, ErrForbidden)

	// A paid transaction can no longer be cancelled.
	_, err = svc.Cancel(ctx, ActorCommand{Reference: tx.Reference, ActorID: "cust-1"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelAndRefund(t *testing.T) {
	gw := &fakeGateway{status: monnify.StatusPaid}
	svc := NewService(newMemRepo(), gw, nil)
	ctx := context.Background()

	first, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, ActorCommand{Reference: first.Reference, ActorID: "stranger"})
	assert.ErrorIs(t, err, ErrForbidden)
	cancelled, err := svc.Cancel(ctx, ActorCommand{Reference: first.Reference, ActorID: "cust-1"})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	second, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)
	_, err = svc.Verify(ctx, second.Reference)
	require.NoError(t, err)

	_, err = svc.Refund(ctx, ActorCommand{Reference: second.Reference, ActorID: "cust-1"})
	assert.ErrorIs(t, err, ErrForbidden)
	refunded, err := svc.Refund(ctx, ActorCommand{Reference: second.Reference, ActorID: "ops", ActorRole: "admin"})
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, refunded.Status)
}

func TestUnknownReference(t *testing.T) {
	svc := NewService(newMemRepo(), &fakeGateway{}, nil)
	_, err := svc.Verify(context.Background(), "YH-nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestConcurrentReleaseVsRefund(t *testing.T) {
	svc := NewService(newMemRepo(), &fakeGateway{status: monnify.StatusPaid}, nil)
	ctx := context.Background()

	tx, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)
	_, err = svc.Verify(ctx, tx.Reference)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.Release(ctx, ActorCommand{Reference: tx.Reference, ActorID: "cust-1"})
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := svc.Refund(ctx, ActorCommand{Reference: tx.Reference, ActorID: "ops", ActorRole: "admin"})
		errs <- err
	}()
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, ErrConflict) && !errors.Is(err, ErrInvalidState) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, success)
}

func TestStoreRoundTrip(t *testing.T) {
	db := dbtest.Open(t, "payment_events", "transactions")
	store := NewStore(db)
	svc := NewService(store, &fakeGateway{status: monnify.StatusPaid}, nil)
	ctx := context.Background()

	tx, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)

	got, err := store.GetByReference(ctx, tx.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusInitiated, got.Status)
	assert.Equal(t, types.Naira(12500), got.Amount)
	assert.Equal(t, "MNFY|"+tx.Reference, got.GatewayRef)

	_, err = svc.Verify(ctx, tx.Reference)
	require.NoError(t, err)
	_, err = svc.Release(ctx, ActorCommand{Reference: tx.Reference, ActorID: "cust-1"})
	require.NoError(t, err)

	got, err = store.GetByReference(ctx, tx.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusReleased, got.Status)
	assert.Equal(t, 2, got.StatusVersion)
	assert.NotNil(t, got.PaidAt)
	assert.NotNil(t, got.ReleasedAt)

	ok, err := store.UpdateStatus(ctx, got.ID, StatusPaid, StatusRefunded, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.GetByReference(ctx, "YH-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreListsUncheckedFirst(t *testing.T) {
	db := dbtest.Open(t, "payment_events", "transactions")
	store := NewStore(db)
	svc := NewService(store, &fakeGateway{status: monnify.StatusPending}, nil)
	ctx := context.Background()

	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var refs []string
	for i := 0; i < 3; i++ {
		svc.now = func() time.Time { return t0.Add(time.Duration(i) * time.Minute) }
		tx, err := svc.Initiate(ctx, validInitiate())
		require.NoError(t, err)
		refs = append(refs, tx.Reference)
	}

	first, err := store.GetByReference(ctx, refs[0])
	require.NoError(t, err)
	require.NoError(t, store.MarkChecked(ctx, first.ID, t0.Add(time.Hour)))

	list, err := store.ListInitiatedBefore(ctx, t0.Add(time.Hour), 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, refs[1], list[0].Reference)
	assert.Equal(t, refs[2], list[1].Reference)

	list, err = store.ListInitiatedBefore(ctx, t0.Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, refs[0], list[2].Reference)
	assert.NotNil(t, list[2].LastCheckedAt)
}

func TestReconcileVerifiesStaleCheckouts(t *testing.T) {
	repo := newMemRepo()
	gw := &fakeGateway{status: monnify.StatusExpired}
	svc := NewService(repo, gw, nil)
	ctx := context.Background()

	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }
	old1, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)
	old2, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)

	svc.now = func() time.Time { return t0.Add(15 * time.Minute) }
	fresh, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)

	svc.now = func() time.Time { return t0.Add(20 * time.Minute) }
	n, err := svc.Reconcile(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, gw.queried, 2)

	for ref, want := range map[string]Status{
		old1.Reference:  StatusCancelled,
		old2.Reference:  StatusCancelled,
		fresh.Reference: StatusInitiated,
	} {
		got, err := repo.GetByReference(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status, ref)
	}
}

func TestReconcileKeepsPendingAndSurvivesGatewayErrors(t *testing.T) {
	repo := newMemRepo()
	gw := &fakeGateway{status: monnify.StatusPending}
	svc := NewService(repo, gw, nil)
	ctx := context.Background()

	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }
	_, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)

	svc.now = func() time.Time { return t0.Add(time.Hour) }
	n, err := svc.Reconcile(ctx, time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)

	gw.getErr = errors.New("monnify unavailable")
	n, err = svc.Reconcile(ctx, time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReconcileRotatesPastAbandonedCheckouts(t *testing.T) {
	repo := newMemRepo()
	gw := &fakeGateway{status: monnify.StatusPending, byRef: map[string]string{}}
	svc := NewService(repo, gw, nil)
	ctx := context.Background()

	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < reconcileBatch; i++ {
		svc.now = func() time.Time { return t0.Add(time.Duration(i) * time.Second) }
		_, err := svc.Initiate(ctx, validInitiate())
		require.NoError(t, err)
	}
	svc.now = func() time.Time { return t0.Add(30 * time.Minute) }
	paid, err := svc.Initiate(ctx, validInitiate())
	require.NoError(t, err)
	gw.byRef[paid.GatewayRef] = monnify.StatusPaid

	now := t0.Add(2 * time.Hour)
	svc.now = func() time.Time { return now }
	n, err := svc.Reconcile(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, gw.queried, reconcileBatch)
	assert.NotContains(t, gw.queried, paid.GatewayRef)

	now = now.Add(2 * time.Minute)
	n, err = svc.Reconcile(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, paid.GatewayRef, gw.queried[reconcileBatch])

	got, err := repo.GetByReference(ctx, paid.Reference)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, got.Status)
}

func TestRunReconcilerStopsOnCancel(t *testing.T) {
	svc := NewService(newMemRepo(), &fakeGateway{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunReconciler(ctx, 10*time.Millisecond, time.Minute)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
