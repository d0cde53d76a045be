// ABOUTME: Tests for the CRUD service facade
// ABOUTME: Covers defaults, not-found handling, latency, ordering, and metrics
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/harperreed/crmdash/mockdata"
	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) NewID() string { return fmt.Sprintf("new-%d", s.n.Add(1)) }

func testOptions() Options {
	return Options{
		Delayer: NoDelay{},
		IDs:     &seqIDs{},
		Clock:   func() time.Time { return fixedNow },
	}
}

func newTestServices(t *testing.T) *Services {
	t.Helper()
	return New(store.NewSet(mockdata.MustDefault()), testOptions())
}

func TestCreateContactDefaults(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	before, err := svc.Contacts.GetAll(ctx)
	require.NoError(t, err)

	created, err := svc.Contacts.Create(ctx, models.ContactInput{Name: "Ada", Status: models.StatusLead})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, fixedNow, created.CreatedAt)
	assert.Nil(t, created.LastContact)
	assert.Equal(t, "Ada", created.Name)

	after, err := svc.Contacts.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	assert.Equal(t, created.ID, after[0].ID, "new records are listed first")

	var matches int
	for _, c := range after {
		if c.ID == created.ID {
			matches++
		}
	}
	assert.Equal(t, 1, matches)
}

func TestCreateActivityDefaultsDate(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	a, err := svc.Activities.Create(ctx, models.ActivityInput{Type: models.ActivityCall, Duration: 30})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, a.Date)

	when := time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)
	b, err := svc.Activities.Create(ctx, models.ActivityInput{Type: models.ActivityNote, Date: when, Duration: 5})
	require.NoError(t, err)
	assert.Equal(t, when, b.Date)
}

func TestDealStageUpdateKeepsOtherFields(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	deal, err := svc.Deals.Create(ctx, models.DealInput{
		Title:     "Acme",
		Value:     5000,
		Stage:     models.StageLead,
		ContactID: "X",
	})
	require.NoError(t, err)

	updated, err := svc.Deals.Update(ctx, deal.ID, models.DealStage(models.StageQualified))
	require.NoError(t, err)

	want := deal
	want.Stage = models.StageQualified
	if diff := cmp.Diff(want, updated); diff != "" {
		t.Errorf("update changed more than the stage (-want +got):\n%s", diff)
	}

	stored, err := svc.Deals.GetByID(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, stored.Value)
	assert.Equal(t, models.StageQualified, stored.Stage)

	all, err := svc.Deals.GetAll(ctx)
	require.NoError(t, err)
	var listed []models.Deal
	for _, d := range all {
		if d.ID == deal.ID {
			listed = append(listed, d)
		}
	}
	require.Len(t, listed, 1)
	assert.Equal(t, 5000.0, listed[0].Value)
	assert.Equal(t, models.StageQualified, listed[0].Stage)
}

func TestUpdateCannotChangeCreatedAt(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	orig, err := svc.Contacts.GetByID(ctx, "1")
	require.NoError(t, err)

	updated, err := svc.Contacts.Update(ctx, "1", models.ContactPatch{Company: models.Ptr("New Co")})
	require.NoError(t, err)
	assert.Equal(t, "New Co", updated.Company)
	assert.Equal(t, orig.CreatedAt, updated.CreatedAt)
	assert.Equal(t, orig.ID, updated.ID)
	assert.Equal(t, orig.Name, updated.Name)
}

func TestMissingIDIsNotFound(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	before, err := svc.Deals.GetAll(ctx)
	require.NoError(t, err)

	_, err = svc.Deals.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "deal nope: not found")

	_, err = svc.Deals.Update(ctx, "nope", models.DealStage(models.StageClosedWon))
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := svc.Deals.Delete(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, ok)

	after, err := svc.Deals.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	before, err := svc.Activities.GetAll(ctx)
	require.NoError(t, err)
	target := before[1].ID

	ok, err := svc.Activities.Delete(ctx, target)
	require.NoError(t, err)
	assert.True(t, ok)

	after, err := svc.Activities.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before)-1)
	for _, a := range after {
		assert.NotEqual(t, target, a.ID)
	}
}

func TestGetAllReturnsCopies(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	all, err := svc.Contacts.GetAll(ctx)
	require.NoError(t, err)
	all[0].Name = "Mutated"

	again, err := svc.Contacts.GetAll(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "Mutated", again[0].Name)
	assert.Greater(t, len(again), 1)
}

func TestGetAllEmptyIsNonNil(t *testing.T) {
	svc := NewDealService(store.NewMemory[models.Deal](nil), testOptions())
	deals, err := svc.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, deals)
	assert.Empty(t, deals)
}

// recordingDelayer records the durations it was asked to wait.
type recordingDelayer struct {
	mu   sync.Mutex
	seen []time.Duration
}

func (r *recordingDelayer) Delay(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.seen = append(r.seen, d)
	r.mu.Unlock()
	return ctx.Err()
}

func TestDefaultLatencyPerOperation(t *testing.T) {
	rec := &recordingDelayer{}
	opts := testOptions()
	opts.Delayer = rec
	svc := NewContactService(store.NewMemory(mockdata.MustDefault().Contacts), opts)
	ctx := context.Background()

	_, _ = svc.GetAll(ctx)
	_, _ = svc.GetByID(ctx, "1")
	c, _ := svc.Create(ctx, models.ContactInput{Name: "Lat"})
	_, _ = svc.Update(ctx, c.ID, models.ContactPatch{})
	_, _ = svc.Delete(ctx, c.ID)

	assert.Equal(t, []time.Duration{
		300 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		350 * time.Millisecond,
		250 * time.Millisecond,
	}, rec.seen)
}

func TestCancelledDelayLeavesStoreUntouched(t *testing.T) {
	opts := testOptions()
	opts.Delayer = SleepDelayer{}
	opts.Latency = Latency{Create: time.Hour, GetAll: time.Millisecond}
	records := store.NewMemory[models.Contact](nil)
	svc := NewContactService(records, opts)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Create(ctx, models.ContactInput{Name: "Never"})
		done <- err
	}()
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)

	n, err := records.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

// gateDelayer blocks each call until its gate is opened, in call order.
type gateDelayer struct {
	mu     sync.Mutex
	gates  []chan struct{}
	called chan int
}

func newGateDelayer(n int) *gateDelayer {
	g := &gateDelayer{called: make(chan int, n)}
	for i := 0; i < n; i++ {
		g.gates = append(g.gates, make(chan struct{}))
	}
	return g
}

func (g *gateDelayer) Delay(ctx context.Context, _ time.Duration) error {
	g.mu.Lock()
	gate := g.gates[0]
	idx := cap(g.called) - len(g.gates)
	g.gates = g.gates[1:]
	g.mu.Unlock()

	g.called <- idx
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestConcurrentCreatesResolveInDelayOrder(t *testing.T) {
	gate := newGateDelayer(2)
	gates := append([]chan struct{}(nil), gate.gates...)

	opts := testOptions()
	opts.Delayer = gate
	opts.IDs = NewULIDGenerator()
	records := store.NewMemory[models.Activity](nil)
	svc := NewActivityService(records, opts)
	ctx := context.Background()

	type result struct {
		name string
		rec  models.Activity
		err  error
	}
	results := make(chan result, 2)

	go func() {
		rec, err := svc.Create(ctx, models.ActivityInput{Type: models.ActivityCall, Description: "slow", Duration: 10})
		results <- result{"slow", rec, err}
	}()
	<-gate.called
	go func() {
		rec, err := svc.Create(ctx, models.ActivityInput{Type: models.ActivityNote, Description: "fast", Duration: 1})
		results <- result{"fast", rec, err}
	}()
	<-gate.called

	// The second call's delay elapses first.
	close(gates[1])
	first := <-results
	close(gates[0])
	second := <-results

	require.NoError(t, first.err)
	require.NoError(t, second.err)
	assert.Equal(t, "fast", first.name)
	assert.Equal(t, "slow", second.name)
	assert.NotEqual(t, first.rec.ID, second.rec.ID)

	all, err := records.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "slow", all[0].Description, "last to resolve is newest")
	assert.Equal(t, "fast", all[1].Description)
}

func TestULIDGeneratorUnique(t *testing.T) {
	gen := NewULIDGenerator()
	seen := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.NewID()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 100)
}

func TestMetricsCountOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	opts := testOptions()
	opts.Metrics = NewMetrics(reg)
	svc := New(store.NewSet(mockdata.MustDefault()), opts)
	ctx := context.Background()

	_, err := svc.Contacts.GetByID(ctx, "1")
	require.NoError(t, err)
	_, err = svc.Contacts.GetByID(ctx, "missing")
	require.True(t, errors.Is(err, ErrNotFound))

	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.ops.WithLabelValues("contact", "get_by_id", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(opts.Metrics.ops.WithLabelValues("contact", "get_by_id", "not_found")))
	assert.Equal(t, 2, testutil.CollectAndCount(opts.Metrics.ops))
}

func TestLatencyFor(t *testing.T) {
	l := DefaultLatency()
	assert.Equal(t, l.Update, l.For(OpUpdate))
	assert.Equal(t, time.Duration(0), l.For(Op("bogus")))
}

func TestSnapshotReadsEveryCollection(t *testing.T) {
	svc := newTestServices(t)
	ctx := context.Background()

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	contacts, err := svc.Contacts.GetAll(ctx)
	require.NoError(t, err)
	deals, err := svc.Deals.GetAll(ctx)
	require.NoError(t, err)
	activities, err := svc.Activities.GetAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, contacts, snap.Contacts)
	assert.Equal(t, deals, snap.Deals)
	assert.Equal(t, activities, snap.Activities)
}

func TestSnapshotCancelled(t *testing.T) {
	svc := newTestServices(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := svc.Snapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, snap.Contacts)
	assert.Empty(t, snap.Deals)
	assert.Empty(t, snap.Activities)
}
