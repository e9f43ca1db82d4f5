// Package engine is the analytics aggregation core: a set of pure,
// deterministic functions from a normalized order-line set to result tables.
// The engine performs no I/O; input acquisition and result rendering belong
// to the store and api collaborators.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"golang.org/x/sync/errgroup"
)

// Config holds analysis defaults supplied by the service configuration.
type Config struct {
	DefaultGranularity string `mapstructure:"default_granularity"`
}

// Params controls a single analysis run.
type Params struct {
	// AsOf anchors recency and customer-age computations. Zero means "now".
	AsOf        time.Time
	Granularity entity.Granularity
}

// Engine computes all report tables for one dimension catalog.
type Engine struct {
	cat *entity.Catalog
}

func New(cat *entity.Catalog) *Engine {
	return &Engine{cat: cat}
}

// Run fans the filtered record set out to the independent aggregators. Each
// aggregator is a stateless function over a read-only slice, so they run
// concurrently without coordination; a run either completes with every
// table populated or fails as a whole.
func (e *Engine) Run(ctx context.Context, lines []entity.OrderLine, p Params) (*entity.Report, error) {
	if p.AsOf.IsZero() {
		p.AsOf = time.Now().UTC()
	}
	if p.Granularity == 0 {
		p.Granularity = entity.GranularityMonth
	}

	filtered := FilterRevenueEligible(lines)

	report := &entity.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		AsOf:        p.AsOf,
		Granularity: p.Granularity,
		Breakdowns:  make(map[string][]entity.BreakdownRow, len(AllDimensions)),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.KPI = KPI(filtered)
		report.Outcomes = Outcomes(lines)
		return nil
	})
	g.Go(func() error {
		report.TimeSeries = TimeSeries(filtered, p.Granularity)
		return nil
	})
	g.Go(func() error {
		for _, dim := range AllDimensions {
			report.Breakdowns[dim.Name] = Breakdown(filtered, e.cat, dim)
		}
		return nil
	})
	g.Go(func() error {
		report.RepeatRate, report.CohortMatrix, report.RFMTable, report.LTVRanking =
			CustomerAnalytics(filtered, e.cat, p.AsOf)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Default().InfoContext(ctx, "analysis run completed",
		"run_id", report.RunID,
		"records", len(lines),
		"revenue_eligible", len(filtered),
		"orders", report.KPI.TotalOrders,
		"granularity", p.Granularity.String())

	return report, nil
}
