// ABOUTME: Tests for application composition
// ABOUTME: Both backends seed the same data; seed overrides and metrics are wired
package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/crmdash/config"
	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/services"
)

func testConfig(backend string) *config.Config {
	return &config.Config{
		Log:     config.LogConfig{Level: "info"},
		Store:   config.StoreConfig{Backend: backend},
		Latency: config.LatencyConfig{Enabled: true, Latency: services.DefaultLatency()},
		UI:      config.UIConfig{ToastTTL: time.Second},
	}
}

func TestBackendsServeSameSeed(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			a, err := New(testConfig(backend), nil, true)
			require.NoError(t, err)
			t.Cleanup(func() { a.Close() })

			ctx := context.Background()
			contacts, err := a.Services.Contacts.GetAll(ctx)
			require.NoError(t, err)
			require.Len(t, contacts, 8)
			assert.Equal(t, "Sarah Johnson", contacts[0].Name)

			deals, err := a.Services.Deals.GetAll(ctx)
			require.NoError(t, err)
			assert.Len(t, deals, 9)

			created, err := a.Services.Contacts.Create(ctx, models.ContactInput{Name: "New Person", Status: models.StatusLead})
			require.NoError(t, err)

			contacts, err = a.Services.Contacts.GetAll(ctx)
			require.NoError(t, err)
			assert.Equal(t, created.ID, contacts[0].ID)
		})
	}
}

func TestNoDelayIsFast(t *testing.T) {
	a, err := New(testConfig(config.BackendMemory), nil, true)
	require.NoError(t, err)

	start := time.Now()
	_, err = a.Services.Deals.GetAll(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestSeedDirOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contacts.yaml"), []byte(`
- id: "c1"
  name: Only Contact
  status: customer
  createdAt: 2024-01-01T00:00:00Z
`), 0o644))

	cfg := testConfig(config.BackendMemory)
	cfg.Seed.Dir = dir
	a, err := New(cfg, nil, true)
	require.NoError(t, err)

	contacts, err := a.Services.Contacts.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Only Contact", contacts[0].Name)

	// Entities without an override keep the embedded seed.
	deals, err := a.Services.Deals.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, deals, 9)
}

func TestMissingSeedDirFails(t *testing.T) {
	cfg := testConfig(config.BackendMemory)
	cfg.Seed.Dir = filepath.Join(t.TempDir(), "nope")

	_, err := New(cfg, nil, true)
	assert.Error(t, err)
}

func TestServiceMetricsRegistered(t *testing.T) {
	a, err := New(testConfig(config.BackendMemory), nil, true)
	require.NoError(t, err)

	_, err = a.Services.Contacts.GetAll(context.Background())
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(a.Registry, "crmdash_service_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPageDepsAreIndependent(t *testing.T) {
	a, err := New(testConfig(config.BackendMemory), nil, true)
	require.NoError(t, err)

	d1, d2 := a.PageDeps(), a.PageDeps()
	assert.NotSame(t, d1.Notifier, d2.Notifier)
	assert.NotNil(t, d1.Clock)
}
