package engine

import (
	"sort"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

// customerAgg is the shared per-customer rollup all four customer
// sub-algorithms derive from: one grouped pass over the completed set.
type customerAgg struct {
	orders map[string]struct{}
	spend  decimal.Decimal
	first  time.Time
	last   time.Time
	// months holds the distinct calendar months the customer was active in
	months map[time.Time]struct{}
}

// CustomerAnalytics computes the repeat rate, cohort/retention matrix, RFM
// table and LTV ranking from a single customer-grouped pass over the
// revenue-eligible record set. Recency and customer age are measured
// against asOf, never against the wall clock, so runs are reproducible.
func CustomerAnalytics(lines []entity.OrderLine, cat *entity.Catalog, asOf time.Time) (entity.RepeatRate, []entity.CohortCell, []entity.RFMRow, []entity.LTVRow) {
	aggs := aggregateCustomers(lines)
	return repeatRate(aggs),
		cohortMatrix(aggs),
		rfmTable(aggs, cat, asOf),
		ltvRanking(aggs, cat, asOf)
}

func aggregateCustomers(lines []entity.OrderLine) map[string]*customerAgg {
	aggs := make(map[string]*customerAgg)
	for _, l := range lines {
		a, ok := aggs[l.CustomerID]
		if !ok {
			a = &customerAgg{
				orders: make(map[string]struct{}),
				months: make(map[time.Time]struct{}),
			}
			aggs[l.CustomerID] = a
		}
		a.orders[l.OrderID] = struct{}{}
		a.spend = a.spend.Add(l.TotalAmount)
		if a.first.IsZero() || l.OrderDate.Before(a.first) {
			a.first = l.OrderDate
		}
		if a.last.IsZero() || l.OrderDate.After(a.last) {
			a.last = l.OrderDate
		}
		a.months[bucketStart(l.OrderDate, entity.GranularityMonth)] = struct{}{}
	}
	return aggs
}

// repeatRate classifies a customer as repeat iff they placed more than one
// distinct completed order.
func repeatRate(aggs map[string]*customerAgg) entity.RepeatRate {
	var r entity.RepeatRate
	r.TotalCustomers = len(aggs)
	for _, a := range aggs {
		if len(a.orders) > 1 {
			r.RepeatCustomers++
		}
	}
	r.RatePct = ratioPct(r.RepeatCustomers, r.TotalCustomers)
	return r
}

// cohortMatrix assigns each customer to the month of their first completed
// order and counts distinct active customers per (cohort, activity) month
// pair. The matrix is sparse: zero-activity cells are omitted and the
// consumer treats absence as zero. A customer's first order always lands in
// the diagonal cell, so activity month >= cohort month holds throughout.
func cohortMatrix(aggs map[string]*customerAgg) []entity.CohortCell {
	type cellKey struct {
		cohort   time.Time
		activity time.Time
	}
	counts := make(map[cellKey]int)
	for _, a := range aggs {
		cohort := bucketStart(a.first, entity.GranularityMonth)
		for activity := range a.months {
			counts[cellKey{cohort: cohort, activity: activity}]++
		}
	}

	cells := make([]entity.CohortCell, 0, len(counts))
	for k, n := range counts {
		cells = append(cells, entity.CohortCell{
			CohortMonth:     k.cohort,
			ActivityMonth:   k.activity,
			ActiveCustomers: n,
		})
	}
	sort.Slice(cells, func(i, j int) bool {
		if !cells[i].CohortMonth.Equal(cells[j].CohortMonth) {
			return cells[i].CohortMonth.Before(cells[j].CohortMonth)
		}
		return cells[i].ActivityMonth.Before(cells[j].ActivityMonth)
	})
	return cells
}

// rfmTable ranks the whole scored population into 5 quantile buckets per
// dimension, NTILE-style: recency ascending (fewer days since the last
// order is better), frequency and monetary descending. Ties at quantile
// boundaries break on customer id so bucket assignment is stable across
// runs on identical input.
func rfmTable(aggs map[string]*customerAgg, cat *entity.Catalog, asOf time.Time) []entity.RFMRow {
	ids := sortedCustomerIDs(aggs)
	if len(ids) == 0 {
		return []entity.RFMRow{}
	}

	recency := func(id string) int {
		return int(asOf.Sub(aggs[id].last).Hours() / 24)
	}

	recencyScore := ntileScores(ids, func(a, b string) bool {
		if recency(a) != recency(b) {
			return recency(a) < recency(b)
		}
		return a < b
	})
	frequencyScore := ntileScores(ids, func(a, b string) bool {
		if len(aggs[a].orders) != len(aggs[b].orders) {
			return len(aggs[a].orders) > len(aggs[b].orders)
		}
		return a < b
	})
	monetaryScore := ntileScores(ids, func(a, b string) bool {
		if !aggs[a].spend.Equal(aggs[b].spend) {
			return aggs[a].spend.GreaterThan(aggs[b].spend)
		}
		return a < b
	})

	rows := make([]entity.RFMRow, 0, len(ids))
	for _, id := range ids {
		a := aggs[id]
		row := entity.RFMRow{
			CustomerID:     id,
			CustomerName:   cat.CustomerName(id),
			RecencyDays:    recency(id),
			Frequency:      len(a.orders),
			Monetary:       a.spend.Round(2),
			RecencyScore:   recencyScore[id],
			FrequencyScore: frequencyScore[id],
			MonetaryScore:  monetaryScore[id],
		}
		row.Score = row.RecencyScore + row.FrequencyScore + row.MonetaryScore
		row.Segment = rfmSegment(row.Score)
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score < rows[j].Score
		}
		if !rows[i].Monetary.Equal(rows[j].Monetary) {
			return rows[i].Monetary.GreaterThan(rows[j].Monetary)
		}
		return rows[i].CustomerID < rows[j].CustomerID
	})
	return rows
}

// ntileScores partitions the population into 5 buckets whose sizes differ
// by at most one, larger buckets first, like SQL's NTILE(5). Bucket 1 is
// the best score of the dimension.
func ntileScores(ids []string, less func(a, b string) bool) map[string]int {
	ranked := make([]string, len(ids))
	copy(ranked, ids)
	sort.Slice(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })

	scores := make(map[string]int, len(ranked))
	n := len(ranked)
	base, rem := n/5, n%5
	idx := 0
	for bucket := 1; bucket <= 5; bucket++ {
		size := base
		if bucket <= rem {
			size++
		}
		for i := 0; i < size; i++ {
			scores[ranked[idx]] = bucket
			idx++
		}
	}
	return scores
}

// rfmSegment labels the combined score (3 best .. 15 worst).
func rfmSegment(score int) string {
	switch {
	case score <= 4:
		return "Champions"
	case score <= 7:
		return "Loyal"
	case score <= 11:
		return "At Risk"
	default:
		return "Lost"
	}
}

// ltvRanking orders customers by cumulative completed-order spend,
// descending, with customer id ascending as the tiebreak.
func ltvRanking(aggs map[string]*customerAgg, cat *entity.Catalog, asOf time.Time) []entity.LTVRow {
	rows := make([]entity.LTVRow, 0, len(aggs))
	for id, a := range aggs {
		rows = append(rows, entity.LTVRow{
			CustomerID:      id,
			CustomerName:    cat.CustomerName(id),
			LifetimeValue:   a.spend.Round(2),
			Orders:          len(a.orders),
			FirstOrderDate:  a.first,
			LastOrderDate:   a.last,
			CustomerAgeDays: int(asOf.Sub(a.first).Hours() / 24),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].LifetimeValue.Equal(rows[j].LifetimeValue) {
			return rows[i].LifetimeValue.GreaterThan(rows[j].LifetimeValue)
		}
		return rows[i].CustomerID < rows[j].CustomerID
	})
	return rows
}

func sortedCustomerIDs(aggs map[string]*customerAgg) []string {
	ids := make([]string, 0, len(aggs))
	for id := range aggs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
