package engine

import (
	"testing"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(orderID, customerID string, date time.Time, total string, status entity.OrderStatusName) entity.OrderLine {
	return entity.OrderLine{
		OrderID:       orderID,
		OrderDate:     date,
		CustomerID:    customerID,
		ProductID:     "P-1",
		Quantity:      1,
		UnitPrice:     decimal.RequireFromString(total),
		TotalAmount:   decimal.RequireFromString(total),
		Status:        status,
		Channel:       "Online",
		PaymentMethod: "Credit Card",
		City:          "Riga",
		State:         "Riga",
	}
}

func withProfit(l entity.OrderLine, profit string) entity.OrderLine {
	l.ProfitAmount = decimal.NullDecimal{Decimal: decimal.RequireFromString(profit), Valid: true}
	return l
}

var (
	jan15 = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	jan20 = time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	feb10 = time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
)

func TestKPIScenarioThreeOrders(t *testing.T) {
	lines := []entity.OrderLine{
		line("O-1", "C1", jan15, "100", entity.Completed),
		line("O-2", "C1", jan20, "150", entity.Completed),
		line("O-3", "C1", feb10, "200", entity.Completed),
	}
	s := KPI(lines)
	assert.Equal(t, 3, s.TotalOrders)
	assert.True(t, s.TotalSales.Equal(decimal.RequireFromString("450")))
	require.NotNil(t, s.AvgOrderValue)
	assert.True(t, s.AvgOrderValue.Equal(decimal.RequireFromString("150")))
}

func TestKPICountsDistinctOrdersNotRows(t *testing.T) {
	// two line items of the same order
	lines := []entity.OrderLine{
		line("O-1", "C1", jan15, "100", entity.Completed),
		line("O-1", "C1", jan15, "50", entity.Completed),
		line("O-2", "C2", jan20, "30", entity.Completed),
	}
	s := KPI(lines)
	assert.Equal(t, 2, s.TotalOrders)
	assert.True(t, s.TotalSales.Equal(decimal.RequireFromString("180")))
}

func TestKPIProfitNullExcludedFromSum(t *testing.T) {
	lines := []entity.OrderLine{
		withProfit(line("O-1", "C1", jan15, "100", entity.Completed), "20"),
		line("O-2", "C2", jan20, "100", entity.Completed), // profit unknown
		withProfit(line("O-3", "C3", feb10, "100", entity.Completed), "-5"),
	}
	s := KPI(lines)
	assert.True(t, s.TotalProfit.Equal(decimal.RequireFromString("15")))
	assert.Equal(t, 2, s.ProfitKnownRows)
	require.NotNil(t, s.ProfitMarginPct)
	assert.True(t, s.ProfitMarginPct.Equal(decimal.RequireFromString("5")), "got %s", s.ProfitMarginPct)
}

func TestKPIZeroSalesMarginUndefined(t *testing.T) {
	lines := []entity.OrderLine{
		line("O-1", "C1", jan15, "0", entity.Completed),
	}
	s := KPI(lines)
	assert.Nil(t, s.ProfitMarginPct, "margin over zero sales is undefined, not zero")
	require.NotNil(t, s.AvgOrderValue)
	assert.True(t, s.AvgOrderValue.IsZero())
}

func TestKPIEmptySetIsWellFormed(t *testing.T) {
	s := KPI(nil)
	assert.Equal(t, 0, s.TotalOrders)
	assert.True(t, s.TotalSales.IsZero())
	assert.True(t, s.TotalProfit.IsZero())
	assert.Nil(t, s.ProfitMarginPct)
	assert.Nil(t, s.AvgOrderValue)
}

func TestOutcomesRunOverUnfilteredSet(t *testing.T) {
	lines := []entity.OrderLine{
		line("O-1", "C1", jan15, "100", entity.Cancelled),
		line("O-2", "C1", jan20, "150", entity.Completed),
		line("O-3", "C2", feb10, "80", entity.Returned),
		line("O-4", "C3", feb10, "60", entity.Pending),
	}

	// revenue metrics see only the completed order
	s := KPI(FilterRevenueEligible(lines))
	assert.Equal(t, 1, s.TotalOrders)
	assert.True(t, s.TotalSales.Equal(decimal.RequireFromString("150")))

	// outcome rates see all four
	o := Outcomes(lines)
	assert.Equal(t, 4, o.TotalOrders)
	assert.Equal(t, 1, o.CancelledOrders)
	assert.Equal(t, 1, o.ReturnedOrders)
	require.NotNil(t, o.CancellationPct)
	assert.InDelta(t, 25.0, *o.CancellationPct, 1e-9)
	require.NotNil(t, o.ReturnPct)
	assert.InDelta(t, 25.0, *o.ReturnPct, 1e-9)
}

func TestOutcomesEmptySet(t *testing.T) {
	o := Outcomes(nil)
	assert.Equal(t, 0, o.TotalOrders)
	assert.Nil(t, o.CancellationPct)
	assert.Nil(t, o.ReturnPct)
}

func TestOutcomesMultiLineOrderCountedOnce(t *testing.T) {
	lines := []entity.OrderLine{
		line("O-1", "C1", jan15, "100", entity.Cancelled),
		line("O-1", "C1", jan15, "50", entity.Cancelled),
		line("O-2", "C2", jan20, "30", entity.Completed),
	}
	o := Outcomes(lines)
	assert.Equal(t, 2, o.TotalOrders)
	assert.Equal(t, 1, o.CancelledOrders)
}
