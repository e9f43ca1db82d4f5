package engine

import (
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

// KPI computes the scalar summary over a revenue-eligible record set.
// An empty set yields a well-formed zero summary with undefined ratios.
func KPI(lines []entity.OrderLine) entity.KPISummary {
	var s entity.KPISummary
	orders := make(map[string]struct{})
	for _, l := range lines {
		orders[l.OrderID] = struct{}{}
		s.TotalSales = s.TotalSales.Add(l.TotalAmount)
		if l.ProfitAmount.Valid {
			s.TotalProfit = s.TotalProfit.Add(l.ProfitAmount.Decimal)
			s.ProfitKnownRows++
		}
	}
	s.TotalOrders = len(orders)
	s.TotalSales = s.TotalSales.Round(2)
	s.TotalProfit = s.TotalProfit.Round(2)

	if !s.TotalSales.IsZero() {
		margin := s.TotalProfit.Div(s.TotalSales).Mul(decimal.NewFromInt(100)).Round(2)
		s.ProfitMarginPct = &margin
	}
	if s.TotalOrders > 0 {
		aov := s.TotalSales.Div(decimal.NewFromInt(int64(s.TotalOrders))).Round(2)
		s.AvgOrderValue = &aov
	}
	return s
}

// Outcomes computes cancellation and return rates over the unfiltered record
// set, counting distinct orders. An order is cancelled/returned when any of
// its lines carries that status.
func Outcomes(lines []entity.OrderLine) entity.OutcomeRates {
	statusByOrder := make(map[string]entity.OrderStatusName)
	for _, l := range lines {
		if !IsOutcomeRecord(l) {
			continue
		}
		cur, seen := statusByOrder[l.OrderID]
		if !seen {
			statusByOrder[l.OrderID] = l.Status
			continue
		}
		// cancelled/returned wins over any other line status of the order
		if cur != entity.Cancelled && cur != entity.Returned &&
			(l.Status == entity.Cancelled || l.Status == entity.Returned) {
			statusByOrder[l.OrderID] = l.Status
		}
	}

	var r entity.OutcomeRates
	r.TotalOrders = len(statusByOrder)
	for _, st := range statusByOrder {
		switch st {
		case entity.Cancelled:
			r.CancelledOrders++
		case entity.Returned:
			r.ReturnedOrders++
		}
	}
	if r.TotalOrders > 0 {
		r.CancellationPct = ratioPct(r.CancelledOrders, r.TotalOrders)
		r.ReturnPct = ratioPct(r.ReturnedOrders, r.TotalOrders)
	}
	return r
}

func ratioPct(part, whole int) *float64 {
	if whole == 0 {
		return nil
	}
	v := float64(part) / float64(whole) * 100
	return &v
}
