package engine

import "github.com/jekabolt/grbpwr-analytics/internal/entity"

// RevenueEligible is the single inclusion predicate behind every revenue and
// profit aggregate: completed orders only. Centralizing it here keeps the
// policy from drifting between aggregators.
func RevenueEligible(l entity.OrderLine) bool {
	return l.Status == entity.Completed
}

// FilterRevenueEligible returns the completed-only subset of the record set.
func FilterRevenueEligible(lines []entity.OrderLine) []entity.OrderLine {
	out := make([]entity.OrderLine, 0, len(lines))
	for _, l := range lines {
		if RevenueEligible(l) {
			out = append(out, l)
		}
	}
	return out
}

// IsOutcomeRecord reports whether a record participates in order-outcome
// (cancellation/return rate) metrics. Every parsed record does: outcome
// rates are the one metric family computed over the unfiltered set.
func IsOutcomeRecord(entity.OrderLine) bool {
	return true
}
