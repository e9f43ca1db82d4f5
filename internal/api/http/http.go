// Package httpapi renders the engine's result tables as JSON. It is a thin
// presentation collaborator: every request loads the ledger, normalizes it
// and runs a fresh analysis, so responses never depend on hidden state.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jekabolt/grbpwr-analytics/internal/engine"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/jekabolt/grbpwr-analytics/internal/normalize"
)

// Config is the configuration for the http server
type Config struct {
	Port           string   `mapstructure:"port"`
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Server is the http server
type Server struct {
	hs          *http.Server
	c           *Config
	ledger      dependency.Ledger
	defaultGran entity.Granularity
	done        chan struct{}
}

// New creates a new server
func New(config *Config, analytics engine.Config, ledger dependency.Ledger) *Server {
	return &Server{
		c:           config,
		ledger:      ledger,
		defaultGran: entity.ParseGranularity(analytics.DefaultGranularity),
		done:        make(chan struct{}),
	}
}

// Done returns a channel that is closed when the http server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Start begins serving the report API.
func (s *Server) Start(ctx context.Context) error {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.c.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	r.Get("/api/analytics/report", s.handleReport)
	r.Get("/api/analytics/report/{table}", s.handleTable)

	addr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		defer close(s.done)
		slog.Default().InfoContext(ctx, "http server listening", "addr", addr)
		if err := s.hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Default().ErrorContext(ctx, "http server exited", "error", err.Error())
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) {
	if s.hs != nil {
		sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		_ = s.hs.Shutdown(sctx)
	}
}

// runAnalysis loads the ledger, normalizes it and runs the engine.
func (s *Server) runAnalysis(ctx context.Context, p engine.Params) (*entity.Report, error) {
	raw, err := s.ledger.LoadRawOrderLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	products, err := s.ledger.LoadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	customers, err := s.ledger.LoadCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}

	res := normalize.Rows(raw)
	e := engine.New(entity.NewCatalog(products, customers))
	report, err := e.Run(ctx, res.Lines, p)
	if err != nil {
		return nil, err
	}
	report.Rejections = res.Rejections
	return report, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	p, err := s.paramsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	report, err := s.runAnalysis(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, report)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	p, err := s.paramsFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	report, err := s.runAnalysis(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	switch chi.URLParam(r, "table") {
	case "kpi_summary":
		writeJSON(w, report.KPI)
	case "time_series":
		writeJSON(w, report.TimeSeries)
	case "breakdowns":
		writeJSON(w, report.Breakdowns)
	case "repeat_rate":
		writeJSON(w, report.RepeatRate)
	case "cohort_matrix":
		writeJSON(w, report.CohortMatrix)
	case "rfm_table":
		writeJSON(w, report.RFMTable)
	case "ltv_ranking":
		writeJSON(w, report.LTVRanking)
	case "order_outcomes":
		writeJSON(w, report.Outcomes)
	case "rejections":
		writeJSON(w, report.Rejections)
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown table %q", chi.URLParam(r, "table")))
	}
}

func (s *Server) paramsFromQuery(r *http.Request) (engine.Params, error) {
	p := engine.Params{Granularity: s.defaultGran}
	if g := r.URL.Query().Get("granularity"); g != "" {
		p.Granularity = entity.ParseGranularity(g)
	}
	if asOf := r.URL.Query().Get("as_of"); asOf != "" {
		t, err := time.Parse("2006-01-02", asOf)
		if err != nil {
			t, err = time.Parse(time.RFC3339, asOf)
		}
		if err != nil {
			return p, fmt.Errorf("unparseable as_of %q", asOf)
		}
		p.AsOf = t
	}
	return p, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("can't encode response", "error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
