// ABOUTME: Composition root shared by every front end
// ABOUTME: Builds the seeded store, services, metrics registry and page dependencies from config
package app

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/harperreed/crmdash/config"
	"github.com/harperreed/crmdash/db"
	"github.com/harperreed/crmdash/mockdata"
	"github.com/harperreed/crmdash/pages"
	"github.com/harperreed/crmdash/services"
	"github.com/harperreed/crmdash/store"
)

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Services *services.Services

	database *sql.DB
}

// New seeds the configured backend and wires services over it.
// noDelay disables simulated latency regardless of config.
func New(cfg *config.Config, logger *zap.Logger, noDelay bool) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	seed, err := mockdata.Load(cfg.Seed.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed data: %w", err)
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var set *store.Set
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		a.database, err = db.OpenDatabase()
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		set, err = db.NewSet(a.database, seed)
		if err != nil {
			a.database.Close()
			return nil, err
		}
	default:
		set = store.NewSet(seed)
	}

	simulate := !noDelay && cfg.Latency.Enabled && cfg.Latency.Latency != (services.Latency{})
	var delayer services.Delayer = services.NoDelay{}
	if simulate {
		delayer = services.SleepDelayer{}
	}

	a.Services = services.New(set, services.Options{
		Delayer: delayer,
		Latency: cfg.Latency.Latency,
		Logger:  logger,
		Metrics: services.NewMetrics(a.Registry),
	})

	logger.Debug("application ready",
		zap.String("backend", cfg.Store.Backend),
		zap.Int("contacts", len(seed.Contacts)),
		zap.Int("deals", len(seed.Deals)),
		zap.Int("activities", len(seed.Activities)),
		zap.Bool("latency", simulate))

	return a, nil
}

// PageDeps returns fresh dependencies for one set of page controllers.
func (a *App) PageDeps() pages.Deps {
	return pages.Deps{
		API:      pages.FromServices(a.Services),
		Notifier: pages.NewNotifier(),
		Clock:    time.Now,
	}
}

// Close releases the SQLite database, if any. The in-memory data is lost.
func (a *App) Close() error {
	if a.database == nil {
		return nil
	}
	return a.database.Close()
}
