package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Granularity controls time bucket size for time series (day, week, month, year).
type Granularity int

const (
	GranularityDay   Granularity = 1
	GranularityWeek  Granularity = 2
	GranularityMonth Granularity = 3
	GranularityYear  Granularity = 4
)

// ParseGranularity maps the external string form to a Granularity,
// defaulting to month when the value is empty or unrecognized.
func ParseGranularity(s string) Granularity {
	switch s {
	case "day":
		return GranularityDay
	case "week":
		return GranularityWeek
	case "year":
		return GranularityYear
	default:
		return GranularityMonth
	}
}

func (g Granularity) String() string {
	switch g {
	case GranularityDay:
		return "day"
	case GranularityWeek:
		return "week"
	case GranularityYear:
		return "year"
	default:
		return "month"
	}
}

// KPISummary is the scalar rollup over the revenue-eligible record set.
// ProfitMarginPct and AvgOrderValue are nil when their denominator is zero:
// an undefined ratio is reported as absent, never as zero.
type KPISummary struct {
	TotalOrders int             `json:"total_orders"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	// TotalProfit sums only rows with known profit; ProfitKnownRows reports
	// how many rows contributed so the exclusion is visible to consumers.
	TotalProfit     decimal.Decimal  `json:"total_profit"`
	ProfitKnownRows int              `json:"profit_known_rows"`
	ProfitMarginPct *decimal.Decimal `json:"profit_margin_pct"`
	AvgOrderValue   *decimal.Decimal `json:"avg_order_value"`
}

// TimeSeriesPoint is one calendar bucket of the sales trend. The sequence is
// gap-filled: a period with no orders appears with zero sales so that
// period-over-period growth never silently skips a period. PctChange is nil
// for the first bucket and whenever the prior bucket's sales are zero.
type TimeSeriesPoint struct {
	Bucket          time.Time       `json:"bucket"`
	Sales           decimal.Decimal `json:"sales"`
	Profit          decimal.Decimal `json:"profit"`
	ProfitKnownRows int             `json:"profit_known_rows"`
	Orders          int             `json:"orders"`
	PctChange       *float64        `json:"pct_change"`
}

// BreakdownRow is one group of a dimensional breakdown. SharePct is the
// group's sales as a percentage of the grand total over the same filtered
// set; nil when the grand total is zero.
type BreakdownRow struct {
	Label    string          `json:"label"`
	SubLabel string          `json:"sub_label,omitempty"`
	Orders   int             `json:"orders"`
	Sales    decimal.Decimal `json:"sales"`
	Profit   decimal.Decimal `json:"profit"`
	SharePct *float64        `json:"share_pct"`
}

// RepeatRate reports repeat-customer classification over customers with at
// least one completed order.
type RepeatRate struct {
	TotalCustomers  int      `json:"total_customers"`
	RepeatCustomers int      `json:"repeat_customers"`
	RatePct         *float64 `json:"rate_pct"`
}

// CohortCell is one cell of the sparse retention matrix: the number of
// distinct customers from CohortMonth active in ActivityMonth. Cells with
// zero activity are omitted; ActivityMonth is never before CohortMonth.
type CohortCell struct {
	CohortMonth     time.Time `json:"cohort_month"`
	ActivityMonth   time.Time `json:"activity_month"`
	ActiveCustomers int       `json:"active_customers"`
}

// RFMRow scores one customer on recency, frequency and monetary value.
// Scores are quintile buckets 1 (best) through 5 (worst) assigned by ordinal
// ranking over the whole scored population.
type RFMRow struct {
	CustomerID     string          `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	RecencyDays    int             `json:"recency_days"`
	Frequency      int             `json:"frequency"`
	Monetary       decimal.Decimal `json:"monetary"`
	RecencyScore   int             `json:"recency_score"`
	FrequencyScore int             `json:"frequency_score"`
	MonetaryScore  int             `json:"monetary_score"`
	Score          int             `json:"score"`
	Segment        string          `json:"segment"`
}

// LTVRow ranks one customer by cumulative completed-order spend.
type LTVRow struct {
	CustomerID      string          `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	LifetimeValue   decimal.Decimal `json:"lifetime_value"`
	Orders          int             `json:"orders"`
	FirstOrderDate  time.Time       `json:"first_order_date"`
	LastOrderDate   time.Time       `json:"last_order_date"`
	CustomerAgeDays int             `json:"customer_age_days"`
}

// OutcomeRates is computed over the unfiltered record set; it is the one
// family of metrics that must see cancelled and returned orders.
type OutcomeRates struct {
	TotalOrders     int      `json:"total_orders"`
	CancelledOrders int      `json:"cancelled_orders"`
	ReturnedOrders  int      `json:"returned_orders"`
	CancellationPct *float64 `json:"cancellation_pct"`
	ReturnPct       *float64 `json:"return_pct"`
}

// Report bundles every result table of a single analysis run.
type Report struct {
	RunID       string      `json:"run_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	AsOf        time.Time   `json:"as_of"`
	Granularity Granularity `json:"-"`

	KPI          KPISummary                `json:"kpi_summary"`
	TimeSeries   []TimeSeriesPoint         `json:"time_series"`
	Breakdowns   map[string][]BreakdownRow `json:"breakdowns"`
	RepeatRate   RepeatRate                `json:"repeat_rate"`
	CohortMatrix []CohortCell              `json:"cohort_matrix"`
	RFMTable     []RFMRow                  `json:"rfm_table"`
	LTVRanking   []LTVRow                  `json:"ltv_ranking"`
	Outcomes     OutcomeRates              `json:"order_outcomes"`

	Rejections []Rejection `json:"rejections,omitempty"`
}
