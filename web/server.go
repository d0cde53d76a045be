// ABOUTME: Web UI server with embedded templates
// ABOUTME: Read-only dashboard, contacts, pipeline, activities and graph pages plus health and metrics
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/goccy/go-graphviz"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/harperreed/crmdash/models"
	"github.com/harperreed/crmdash/pages"
	"github.com/harperreed/crmdash/services"
	"github.com/harperreed/crmdash/viz"
)

//go:embed templates/*
var templatesFS embed.FS

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

type Server struct {
	svc       *services.Services
	templates *template.Template
	logger    *zap.Logger
	gatherer  prometheus.Gatherer
}

// NewServer parses the embedded templates. A nil logger discards logs and a
// nil gatherer serves the default Prometheus registry.
func NewServer(svc *services.Services, logger *zap.Logger, gatherer prometheus.Gatherer) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Helper functions for templates
	funcMap := template.FuncMap{
		"money": viz.FormatMoney,
		"date": func(t time.Time) string {
			return t.Format(models.DateLayout)
		},
		"contact": viz.ContactName,
		"deal": func(titles map[string]string, id string) string {
			if id == "" {
				return "-"
			}
			if title, ok := titles[id]; ok {
				return title
			}
			return "Unknown Deal"
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		svc:       svc,
		templates: tmpl,
		logger:    logger,
		gatherer:  gatherer,
	}, nil
}

// Handler returns the routed and instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleDashboard)
	mux.HandleFunc("/contacts", s.handleContacts)
	mux.HandleFunc("/deals", s.handleDeals)
	mux.HandleFunc("/activities", s.handleActivities)
	mux.HandleFunc("/graphs", s.handleGraphs)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return s.withRequestLog(mux)
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	s.logger.Info("web server stopped")
	return nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data := map[string]interface{}{
		"Stats":           viz.GenerateDashboardStats(snap.Contacts, snap.Deals, snap.Activities),
		"Overview":        viz.StageSummaries(snap.Deals, viz.OverviewStages()),
		"Title":           "Dashboard",
		"ContentTemplate": "dashboard-content",
	}

	s.renderTemplate(w, r, "layout.html", data)
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	status := models.ContactStatus(r.URL.Query().Get("status"))
	if !validStatus(status) {
		status = pages.StatusAll
	}

	contacts, err := s.svc.Contacts.GetAll(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	emptyTitle := "No contacts yet"
	if query != "" || status != pages.StatusAll {
		emptyTitle = "No contacts found"
	}

	data := map[string]interface{}{
		"Contacts":        pages.FilterContacts(contacts, query, status),
		"Query":           query,
		"Status":          string(status),
		"Statuses":        models.ContactStatuses,
		"EmptyTitle":      emptyTitle,
		"Title":           "Contacts",
		"ContentTemplate": "contacts-content",
	}

	s.renderTemplate(w, r, "layout.html", data)
}

func validStatus(status models.ContactStatus) bool {
	for _, st := range models.ContactStatuses {
		if st == status {
			return true
		}
	}
	return false
}

func (s *Server) handleDeals(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data := map[string]interface{}{
		"ActiveValue":     viz.ActivePipelineValue(snap.Deals),
		"Columns":         viz.StageSummaries(snap.Deals, viz.BoardStages()),
		"Names":           viz.ContactNames(snap.Contacts),
		"Title":           "Deals",
		"ContentTemplate": "deals-content",
	}

	s.renderTemplate(w, r, "layout.html", data)
}

type typeTab struct {
	Value string
	Label string
	Count int
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	typ := models.ActivityType(r.URL.Query().Get("type"))

	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	tabs := []typeTab{{Value: string(pages.TypeAll), Label: "All", Count: len(snap.Activities)}}
	known := typ == pages.TypeAll
	for _, t := range models.ActivityTypes {
		tabs = append(tabs, typeTab{Value: string(t), Label: t.Label(), Count: len(pages.FilterActivities(snap.Activities, t))})
		if t == typ {
			known = true
		}
	}
	if !known {
		typ = pages.TypeAll
	}

	titles := make(map[string]string, len(snap.Deals))
	for _, d := range snap.Deals {
		titles[d.ID] = d.Title
	}

	emptyTitle := "No activities yet"
	if typ != pages.TypeAll {
		emptyTitle = fmt.Sprintf("No %s activities", typ)
	}

	data := map[string]interface{}{
		"Activities":      pages.FilterActivities(snap.Activities, typ),
		"Type":            string(typ),
		"TypeTabs":        tabs,
		"Names":           viz.ContactNames(snap.Contacts),
		"DealTitles":      titles,
		"EmptyTitle":      emptyTitle,
		"Title":           "Activities",
		"ContentTemplate": "activities-content",
	}

	s.renderTemplate(w, r, "layout.html", data)
}

func (s *Server) handleGraphs(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	svg, err := viz.NewGraphGenerator(snap.Contacts, snap.Deals).RenderPipeline(r.Context(), graphviz.SVG)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data := map[string]interface{}{
		// Output of our own renderer, not user HTML.
		"SVG":             template.HTML(svg),
		"Title":           "Pipeline Graph",
		"ContentTemplate": "graph-content",
	}

	s.renderTemplate(w, r, "layout.html", data)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	// Render into a buffer so a failure part way through never reaches the client.
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("template error",
			zap.String("template", name),
			zap.String("request_id", requestID(r)),
			zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("response write failed", zap.String("request_id", requestID(r)), zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", zap.String("request_id", requestID(r)), zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
