package engine

import (
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/concave-dev/orderpace/internal/export"
	"github.com/concave-dev/orderpace/internal/metrics"
	"github.com/concave-dev/orderpace/internal/order"
	"github.com/concave-dev/orderpace/internal/shopify"
	"github.com/concave-dev/orderpace/internal/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore records every call and lets tests script outcomes.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	orders    []shopify.Order
	attached  []int64
	createErr error
	attachErr error
	block     chan struct{}
	started   chan struct{}
	panicMsg  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 555}
}

func (f *fakeStore) CreateOrder(ctx context.Context, o shopify.Order) (*shopify.CreatedOrder, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, o)
	if f.createErr != nil {
		return nil, f.createErr
	}
	id := f.nextID
	f.nextID++
	return &shopify.CreatedOrder{ID: id}, nil
}

func (f *fakeStore) AttachPaymentTerms(ctx context.Context, orderID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attached = append(f.attached, orderID)
	return f.attachErr
}

func (f *fakeStore) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func validRecord(name string) order.Record {
	rec := order.Normalize(order.Row{
		order.ColShippingName:     name,
		order.ColShippingAddress1: "12 MG Road",
		order.ColShippingZip:      "560001",
		order.ColShippingCity:     "Bengaluru",
		order.ColShippingProvince: "KA",
		order.ColShippingPhone:    "+91 98765 43210",
		order.ColLineitemSKU:      "SKU-1",
		order.ColLineitemQuantity: "2",
	})
	return rec
}

func testBatch(records ...order.Record) Batch {
	return Batch{
		Records:     records,
		VariantID:   "4242",
		Store:       "example.myshopify.com",
		AccessToken: "shpat_test",
	}
}

func newTestEngine(t *testing.T, cfg Config, store StoreClient, opts ...Option) *Engine {
	t.Helper()

	exporter, err := export.New(t.TempDir())
	require.NoError(t, err)

	if store != nil {
		opts = append(opts, WithClientFactory(func(string, string) StoreClient { return store }))
	}

	e, err := New(cfg, tasks.NewRegistry(), exporter, metrics.New(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(ctx)
	})
	return e
}

// waitFinished waits until the task has been finalized.
func waitFinished(t *testing.T, e *Engine, taskID string) tasks.Snapshot {
	t.Helper()

	var snap tasks.Snapshot
	require.Eventually(t, func() bool {
		var err error
		snap, err = e.Status(taskID)
		return err == nil && snap.FailureFile != ""
	}, 5*time.Second, 5*time.Millisecond)
	return snap
}

func readFailures(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestSubmitSuccess(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(t, DefaultConfig(), store)

	taskID, err := e.Submit(context.Background(), testBatch(validRecord("Asha Devi Rao")))
	require.NoError(t, err)

	snap := waitFinished(t, e, taskID)
	assert.Equal(t, tasks.StatusCompleted, snap.Status)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, tasks.OutcomeSuccess, snap.Results[0].Outcome)
	assert.Equal(t, int64(555), snap.Results[0].OrderID)
	require.NotNil(t, snap.Results[0].PaymentTermsAttached)
	assert.True(t, *snap.Results[0].PaymentTermsAttached)
	assert.Empty(t, snap.Skipped)

	require.Len(t, store.orders, 1)
	o := store.orders[0]
	assert.Equal(t, int64(4242), o.LineItems[0].VariantID)
	assert.Equal(t, 2, o.LineItems[0].Quantity)
	assert.Equal(t, "Asha", o.Customer.FirstName)
	assert.Equal(t, "Devi Rao", o.Customer.LastName)
	assert.Equal(t, "9876543210", o.ShippingAddress.Phone)
	assert.Equal(t, "IN", o.ShippingAddress.Country)
	assert.Equal(t, "pending", o.FinancialStatus)
	assert.Equal(t, []int64{555}, store.attached)

	rows := readFailures(t, snap.FailureFile)
	assert.Len(t, rows, 1, "header only")
}

func TestPaymentTermsFailureKeepsSuccess(t *testing.T) {
	store := newFakeStore()
	store.attachErr = errors.New("timeout")
	e := newTestEngine(t, DefaultConfig(), store)

	taskID, err := e.Submit(context.Background(), testBatch(validRecord("Asha Rao")))
	require.NoError(t, err)

	snap := waitFinished(t, e, taskID)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, tasks.OutcomeSuccess, snap.Results[0].Outcome)
	assert.False(t, *snap.Results[0].PaymentTermsAttached)
	assert.Empty(t, snap.Skipped)
}

func TestInvalidPhoneIsSkippedWithoutRemoteCall(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(t, DefaultConfig(), store)

	bad := order.Normalize(order.Row{order.ColShippingName: "Ravi Kumar", order.ColShippingPhone: "123", order.ColLineitemQuantity: "1"})

	taskID, err := e.Submit(context.Background(), testBatch(validRecord("Asha Rao"), bad))
	require.NoError(t, err)

	snap := waitFinished(t, e, taskID)
	assert.Equal(t, tasks.StatusCompleted, snap.Status)
	require.Len(t, snap.Results, 2)
	assert.Equal(t, 1, store.orderCount())

	require.Len(t, snap.Skipped, 1)
	assert.Equal(t, "Ravi Kumar", snap.Skipped[0].FullName)

	var skipped tasks.Result
	for _, r := range snap.Results {
		if r.Index == 1 {
			skipped = r
		}
	}
	assert.Equal(t, tasks.OutcomeSkipped, skipped.Outcome)
	assert.Equal(t, ReasonInvalidPhone, skipped.Reason)

	rows := readFailures(t, snap.FailureFile)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ravi Kumar", rows[1][0])
	assert.Equal(t, "123", rows[1][6])
	assert.Equal(t, ReasonInvalidPhone, rows[1][9])
}

func TestInvalidQuantityIsError(t *testing.T) {
	store := newFakeStore()
	e := newTestEngine(t, DefaultConfig(), store)

	rec := validRecord("Asha Rao")
	rec.Quantity = "two"

	taskID, err := e.Submit(context.Background(), testBatch(rec))
	require.NoError(t, err)

	snap := waitFinished(t, e, taskID)
	assert.Equal(t, tasks.OutcomeError, snap.Results[0].Outcome)
	assert.Contains(t, snap.Results[0].Reason, "invalid quantity")
	assert.Equal(t, 0, store.orderCount())
	assert.Len(t, snap.Skipped, 1)
}

func TestRejectedOrderAgainstStoreServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":{"variant":["not found"]}}`))
	}))
	defer server.Close()

	e := newTestEngine(t, DefaultConfig(), nil)

	batch := testBatch(validRecord("Asha Rao"))
	batch.Store = server.URL

	taskID, err := e.Submit(context.Background(), batch)
	require.NoError(t, err)

	snap := waitFinished(t, e, taskID)
	assert.Equal(t, tasks.StatusCompleted, snap.Status)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, tasks.OutcomeFailed, snap.Results[0].Outcome)
	assert.Equal(t, `{"errors":{"variant":["not found"]}}`, snap.Results[0].Reason)
	assert.Len(t, snap.Skipped, 1)

	rows := readFailures(t, snap.FailureFile)
	require.Len(t, rows, 2)
	assert.Equal(t, `{"errors":{"variant":["not found"]}}`, rows[1][9])
}

func TestSuccessfulOrderAgainstStoreServer(t *testing.T) {
	var mu sync.Mutex
	paths := []string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()

		if r.URL.Path == "/admin/api/2024-01/orders.json" {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"order":{"id":555}}`))
			return
		}
		// Payment terms call times out from the client's point of view.
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.RequestTimeout = 50 * time.Millisecond
	e := newTestEngine(t, cfg, nil)

	batch := testBatch(validRecord("Asha Rao"))
	batch.Store = server.URL

	taskID, err := e.Submit(context.Background(), batch)
	require.NoError(t, err)

	snap := waitFinished(t, e, taskID)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, tasks.OutcomeSuccess, snap.Results[0].Outcome)
	assert.Equal(t, int64(555), snap.Results[0].OrderID)
	assert.False(t, *snap.Results[0].PaymentTermsAttached)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/admin/api/2024-01/orders.json", "/admin/api/unstable/graphql.json"}, paths)
}

func TestTransportErrorIsError(t *testing.T) {
	store := newFakeStore()
	store.createErr = &shopify.TransportError{Op: "create order", Err: errors.New("connection refused")}
	e := newTestEngine(t, DefaultConfig(), store)

	taskID, err := e.Submit(context.Background(), testBatch(validRecord("Asha Rao")))
	require.NoError(t, err)

	snap := waitFinished(t, e, taskID)
	assert.Equal(t, tasks.OutcomeError, snap.Results[0].Outcome)
	assert.Contains(t, snap.Results[0].Reason, "connection refused")
	assert.Len(t, snap.Skipped, 1)
}

func TestPanicBecomesErrorResult(t *testing.T) {
	store := newFakeStore()
	store.panicMsg = "boom"
	e := newTestEngine(t, DefaultConfig(), store)

	taskID, err := e.Submit(context.Background(), testBatch(validRecord("A B"), validRecord("C D")))
	require.NoError(t, err)

	snap := waitFinished(t, e, taskID)
	assert.Equal(t, tasks.StatusCompleted, snap.Status)
	require.Len(t, snap.Results, 2)
	for _, r := range snap.Results {
		assert.Equal(t, tasks.OutcomeError, r.Outcome)
		assert.Contains(t, r.Reason, "boom")
	}
}

func TestCancelAfterFirstRecord(t *testing.T) {
	store := newFakeStore()
	store.block = make(chan struct{})
	store.started = make(chan struct{}, 3)
	e := newTestEngine(t, DefaultConfig(), store)

	taskID, err := e.Submit(context.Background(),
		testBatch(validRecord("A One"), validRecord("B Two"), validRecord("C Three")))
	require.NoError(t, err)

	// First record is in flight.
	<-store.started
	require.NoError(t, e.Cancel(taskID))

	snap, err := e.Status(taskID)
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusCancelled, snap.Status)
	assert.True(t, snap.Cancelled)

	close(store.block)

	snap = waitFinished(t, e, taskID)
	assert.Equal(t, tasks.StatusCancelled, snap.Status)
	assert.Equal(t, 1, store.orderCount(), "no record may start after cancellation")
	require.Len(t, snap.Results, 3)

	outcomes := map[tasks.Outcome]int{}
	for _, r := range snap.Results {
		outcomes[r.Outcome]++
	}
	assert.Equal(t, 1, outcomes[tasks.OutcomeSuccess], "in-flight record completes")
	assert.Equal(t, 2, outcomes[tasks.OutcomeCancelled])
	assert.Len(t, snap.Skipped, 2)

	rows := readFailures(t, snap.FailureFile)
	require.Len(t, rows, 3)
	assert.Equal(t, ReasonCancelled, rows[1][9])

	assert.ErrorIs(t, e.Cancel(taskID), tasks.ErrAlreadyCancelled)
}

func TestCancelInterruptsPacingWait(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	e := newTestEngine(t, DefaultConfig(), store, WithClock(func() time.Time { return now }))

	batch := testBatch(validRecord("A One"), validRecord("B Two"))
	batch.Deadline = now.Add(2*time.Second + time.Hour)

	taskID, err := e.Submit(context.Background(), batch)
	require.NoError(t, err)

	snap, err := e.Status(taskID)
	require.NoError(t, err)
	assert.InDelta(t, 3600, snap.PacingDelay, 0.001)

	time.Sleep(20 * time.Millisecond)
	start := time.Now()
	require.NoError(t, e.Cancel(taskID))

	snap = waitFinished(t, e, taskID)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 0, store.orderCount())
	require.Len(t, snap.Results, 2)
	for _, r := range snap.Results {
		assert.Equal(t, tasks.OutcomeCancelled, r.Outcome)
	}
}

func TestCancelCompletedTaskIsRejected(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), newFakeStore())

	taskID, err := e.Submit(context.Background(), testBatch(validRecord("Asha Rao")))
	require.NoError(t, err)
	waitFinished(t, e, taskID)

	assert.ErrorIs(t, e.Cancel(taskID), tasks.ErrAlreadyCompleted)

	snap, _ := e.Status(taskID)
	assert.Equal(t, tasks.StatusCompleted, snap.Status)
	assert.False(t, snap.Cancelled)

	assert.ErrorIs(t, e.Cancel("3f2b8c1e-9a47-4d1b-8f0e-5c6d7e8f9a0b"), tasks.ErrNotFound)
}

func TestPacingSpreadsRecords(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	e := newTestEngine(t, DefaultConfig(), store, WithClock(func() time.Time { return now }))

	batch := testBatch(validRecord("A One"), validRecord("B Two"), validRecord("C Three"))
	batch.Deadline = now.Add(3*time.Second + 100*time.Millisecond)

	start := time.Now()
	taskID, err := e.Submit(context.Background(), batch)
	require.NoError(t, err)

	snap := waitFinished(t, e, taskID)
	assert.InDelta(t, 0.05, snap.PacingDelay, 0.0001)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	assert.Len(t, snap.Results, 3)
}

func TestPastDeadlineIsNotRejected(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), newFakeStore())

	batch := testBatch(validRecord("A One"), validRecord("B Two"))
	batch.Deadline = time.Now().Add(-time.Hour)

	taskID, err := e.Submit(context.Background(), batch)
	require.NoError(t, err)

	snap := waitFinished(t, e, taskID)
	assert.Equal(t, float64(0), snap.PacingDelay)
	assert.Equal(t, tasks.StatusCompleted, snap.Status)
}

func TestSubmitValidation(t *testing.T) {
	e := newTestEngine(t, DefaultConfig(), newFakeStore())

	tests := []struct {
		name  string
		batch func() Batch
		field string
	}{
		{"no records", func() Batch { return testBatch() }, "records"},
		{"non numeric variant", func() Batch { b := testBatch(validRecord("A")); b.VariantID = "abc"; return b }, "variant_id"},
		{"empty variant", func() Batch { b := testBatch(validRecord("A")); b.VariantID = ""; return b }, "variant_id"},
		{"bad store", func() Batch { b := testBatch(validRecord("A")); b.Store = "not a host/x"; return b }, "store_url"},
		{"missing token", func() Batch { b := testBatch(validRecord("A")); b.AccessToken = ""; return b }, "access_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Submit(context.Background(), tt.batch())
			require.Error(t, err)

			var ve *order.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	assert.Empty(t, e.List(), "rejected batches must not create tasks")
}

func TestQueueFull(t *testing.T) {
	store := newFakeStore()
	store.block = make(chan struct{})
	store.started = make(chan struct{}, 4)

	cfg := DefaultConfig()
	cfg.BatchWorkers = 1
	cfg.QueueSize = 1
	e := newTestEngine(t, cfg, store)

	first, err := e.Submit(context.Background(), testBatch(validRecord("A One")))
	require.NoError(t, err)
	<-store.started

	_, err = e.Submit(context.Background(), testBatch(validRecord("B Two")))
	require.NoError(t, err)

	_, err = e.Submit(context.Background(), testBatch(validRecord("C Three")))
	require.Error(t, err)
	assert.True(t, IsQueueFull(err))

	var qe *QueueFullError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 1, qe.Capacity)
	assert.Len(t, e.List(), 2)

	close(store.block)
	waitFinished(t, e, first)
}

func TestShutdown(t *testing.T) {
	store := newFakeStore()
	now := time.Now()
	e := newTestEngine(t, DefaultConfig(), store, WithClock(func() time.Time { return now }))

	batch := testBatch(validRecord("A One"), validRecord("B Two"))
	batch.Deadline = now.Add(time.Hour)

	taskID, err := e.Submit(context.Background(), batch)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Shutdown(ctx))

	snap, err := e.Status(taskID)
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusCancelled, snap.Status)
	assert.Len(t, snap.Results, 2)
	assert.Equal(t, 0, store.orderCount())

	_, err = e.Submit(context.Background(), testBatch(validRecord("C Three")))
	assert.ErrorIs(t, err, ErrShuttingDown)
}

func TestResultsCountMatchesBatchSize(t *testing.T) {
	store := newFakeStore()
	cfg := DefaultConfig()
	cfg.Concurrency = 4
	e := newTestEngine(t, cfg, store)

	records := make([]order.Record, 0, 20)
	for i := 0; i < 20; i++ {
		rec := validRecord("Name Surname")
		if i%5 == 0 {
			rec.PhoneValid = false
			rec.Phone = ""
		}
		records = append(records, rec)
	}

	taskID, err := e.Submit(context.Background(), testBatch(records...))
	require.NoError(t, err)

	snap := waitFinished(t, e, taskID)
	assert.Len(t, snap.Results, 20)
	assert.Equal(t, 16, snap.Succeeded)
	assert.Len(t, snap.Skipped, 4)

	seen := map[int]bool{}
	for _, r := range snap.Results {
		assert.False(t, seen[r.Index], "duplicate result for record %d", r.Index)
		seen[r.Index] = true
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.Concurrency = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.RequestTimeout = 0
	assert.Error(t, bad.Validate())

	_, err := New(bad, tasks.NewRegistry(), nil, nil)
	assert.Error(t, err)
}
