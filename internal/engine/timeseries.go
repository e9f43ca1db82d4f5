package engine

import (
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

type bucketAgg struct {
	sales           decimal.Decimal
	profit          decimal.Decimal
	profitKnownRows int
	orders          map[string]struct{}
}

// TimeSeries buckets a revenue-eligible record set by calendar period and
// computes per-bucket sales, profit (null-excluded) and distinct order
// counts, plus growth versus the previous bucket. The returned sequence has
// exactly one entry per calendar period between the earliest and latest
// observed order date: gaps are filled with zero-sales buckets so growth
// computation never skips a period.
func TimeSeries(lines []entity.OrderLine, g entity.Granularity) []entity.TimeSeriesPoint {
	if len(lines) == 0 {
		return []entity.TimeSeriesPoint{}
	}

	byBucket := make(map[time.Time]*bucketAgg)
	var minDate, maxDate time.Time
	for _, l := range lines {
		b := bucketStart(l.OrderDate, g)
		agg, ok := byBucket[b]
		if !ok {
			agg = &bucketAgg{orders: make(map[string]struct{})}
			byBucket[b] = agg
		}
		agg.sales = agg.sales.Add(l.TotalAmount)
		if l.ProfitAmount.Valid {
			agg.profit = agg.profit.Add(l.ProfitAmount.Decimal)
			agg.profitKnownRows++
		}
		agg.orders[l.OrderID] = struct{}{}

		if minDate.IsZero() || l.OrderDate.Before(minDate) {
			minDate = l.OrderDate
		}
		if maxDate.IsZero() || l.OrderDate.After(maxDate) {
			maxDate = l.OrderDate
		}
	}

	// Walk the full calendar range so zero-sales periods are materialized.
	var points []entity.TimeSeriesPoint
	cur := bucketStart(minDate, g)
	end := bucketStart(maxDate, g)
	for !cur.After(end) {
		p := entity.TimeSeriesPoint{Bucket: cur, Sales: decimal.Zero, Profit: decimal.Zero}
		if agg, ok := byBucket[cur]; ok {
			p.Sales = agg.sales.Round(2)
			p.Profit = agg.profit.Round(2)
			p.ProfitKnownRows = agg.profitKnownRows
			p.Orders = len(agg.orders)
		}
		points = append(points, p)
		cur = bucketNext(cur, g)
	}

	// Growth is a pairwise lag pass over the ordered buckets. The first
	// bucket and any bucket following zero sales stay undefined.
	for i := 1; i < len(points); i++ {
		points[i].PctChange = changePct(points[i].Sales, points[i-1].Sales)
	}
	return points
}

// bucketStart truncates a timestamp to the start of its calendar bucket.
func bucketStart(t time.Time, g entity.Granularity) time.Time {
	loc := t.Location()
	switch g {
	case entity.GranularityWeek:
		// Monday 00:00
		weekday := int(t.Weekday())
		daysBack := (weekday + 6) % 7
		return time.Date(t.Year(), t.Month(), t.Day()-daysBack, 0, 0, 0, 0, loc)
	case entity.GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	case entity.GranularityYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
}

func bucketNext(t time.Time, g entity.Granularity) time.Time {
	switch g {
	case entity.GranularityWeek:
		return t.AddDate(0, 0, 7)
	case entity.GranularityMonth:
		return t.AddDate(0, 1, 0)
	case entity.GranularityYear:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// changePct returns nil when the previous value is zero: an undefined growth
// ratio must stay distinguishable from a genuine 0% change.
func changePct(current, previous decimal.Decimal) *float64 {
	if previous.IsZero() {
		return nil
	}
	diff := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100))
	f, _ := diff.Float64()
	return &f
}
