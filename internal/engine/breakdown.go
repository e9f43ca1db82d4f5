package engine

import (
	"sort"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

// Dimension is a caller-supplied grouping key for dimensional breakdowns.
// Key returns the group label (and an optional sub-label for two-level
// dimensions such as category/sub-category or state/city).
type Dimension struct {
	Name string
	Key  func(l entity.OrderLine, cat *entity.Catalog) (label, subLabel string)
}

// Built-in dimensions matching the ledger's categorical columns. Dimension
// misses resolve to the Unknown sentinel inside Catalog, so unmatched fact
// rows still land in a group instead of being dropped.
var (
	DimensionChannel = Dimension{
		Name: "channel",
		Key: func(l entity.OrderLine, _ *entity.Catalog) (string, string) {
			return l.Channel, ""
		},
	}
	DimensionCategory = Dimension{
		Name: "category",
		Key: func(l entity.OrderLine, cat *entity.Catalog) (string, string) {
			return cat.ProductCategory(l.ProductID)
		},
	}
	DimensionGeography = Dimension{
		Name: "geography",
		Key: func(l entity.OrderLine, _ *entity.Catalog) (string, string) {
			return l.State, l.City
		},
	}
	DimensionPaymentMethod = Dimension{
		Name: "payment_method",
		Key: func(l entity.OrderLine, _ *entity.Catalog) (string, string) {
			return l.PaymentMethod, ""
		},
	}
	DimensionSegment = Dimension{
		Name: "customer_segment",
		Key: func(l entity.OrderLine, cat *entity.Catalog) (string, string) {
			return cat.CustomerSegment(l.CustomerID), ""
		},
	}
)

// AllDimensions is the default breakdown fan-out of a report run.
var AllDimensions = []Dimension{
	DimensionChannel,
	DimensionCategory,
	DimensionGeography,
	DimensionPaymentMethod,
	DimensionSegment,
}

type groupKey struct {
	label    string
	subLabel string
}

type groupAgg struct {
	sales  decimal.Decimal
	profit decimal.Decimal
	orders map[string]struct{}
}

// Breakdown groups a revenue-eligible record set by the given dimension and
// computes distinct orders, sales, profit (null-excluded) and the group's
// share of the grand total. The grand total is accumulated once over the
// same filtered set and reused across all group rows. Rows are sorted by
// sales descending with label (then sub-label) ascending as the stable
// tiebreak.
func Breakdown(lines []entity.OrderLine, cat *entity.Catalog, dim Dimension) []entity.BreakdownRow {
	groups := make(map[groupKey]*groupAgg)
	grandTotal := decimal.Zero
	for _, l := range lines {
		label, subLabel := dim.Key(l, cat)
		k := groupKey{label: label, subLabel: subLabel}
		agg, ok := groups[k]
		if !ok {
			agg = &groupAgg{orders: make(map[string]struct{})}
			groups[k] = agg
		}
		agg.sales = agg.sales.Add(l.TotalAmount)
		if l.ProfitAmount.Valid {
			agg.profit = agg.profit.Add(l.ProfitAmount.Decimal)
		}
		agg.orders[l.OrderID] = struct{}{}
		grandTotal = grandTotal.Add(l.TotalAmount)
	}

	rows := make([]entity.BreakdownRow, 0, len(groups))
	for k, agg := range groups {
		row := entity.BreakdownRow{
			Label:    k.label,
			SubLabel: k.subLabel,
			Orders:   len(agg.orders),
			Sales:    agg.sales.Round(2),
			Profit:   agg.profit.Round(2),
		}
		if !grandTotal.IsZero() {
			share, _ := agg.sales.Div(grandTotal).Mul(decimal.NewFromInt(100)).Float64()
			row.SharePct = &share
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Sales.Equal(rows[j].Sales) {
			return rows[i].Sales.GreaterThan(rows[j].Sales)
		}
		if rows[i].Label != rows[j].Label {
			return rows[i].Label < rows[j].Label
		}
		return rows[i].SubLabel < rows[j].SubLabel
	})
	return rows
}
