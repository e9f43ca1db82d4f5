package normalize

import (
	"database/sql"
	"testing"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() entity.RawOrderLine {
	return entity.RawOrderLine{
		OrderID:        "ORD-1001",
		OrderDate:      "2024-03-15 14:30:00",
		CustomerID:     "C-1",
		ProductID:      "P-1",
		Quantity:       "2",
		UnitPrice:      "49.99",
		DiscountAmount: sql.NullString{String: "5.00", Valid: true},
		TaxAmount:      sql.NullString{String: "7.60", Valid: true},
		ShippingAmount: sql.NullString{String: "4.95", Valid: true},
		OrderStatus:    "Completed",
		Channel:        sql.NullString{String: "Online", Valid: true},
		PaymentMethod:  sql.NullString{String: "Credit Card", Valid: true},
		City:           sql.NullString{String: "Riga", Valid: true},
		State:          sql.NullString{String: "Riga", Valid: true},
	}
}

func TestRowComputesTotalWhenAbsent(t *testing.T) {
	raw := validRaw()
	line, err := Row(&raw)
	require.NoError(t, err)

	// quantity*unit_price - discount + tax + shipping
	want := decimal.RequireFromString("107.53")
	assert.True(t, line.TotalAmount.Equal(want), "got %s", line.TotalAmount)
	assert.Equal(t, entity.Completed, line.Status)
	assert.Equal(t, time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC), line.OrderDate)
}

func TestRowKeepsProvidedTotal(t *testing.T) {
	raw := validRaw()
	raw.TotalAmount = sql.NullString{String: "99.99", Valid: true}
	line, err := Row(&raw)
	require.NoError(t, err)
	assert.True(t, line.TotalAmount.Equal(decimal.RequireFromString("99.99")))
}

func TestRowProfitUnknownStaysUnknown(t *testing.T) {
	raw := validRaw()
	line, err := Row(&raw)
	require.NoError(t, err)
	assert.False(t, line.ProfitAmount.Valid, "absent profit must stay unknown, not zero")

	raw.ProfitAmount = sql.NullString{String: "0", Valid: true}
	line, err = Row(&raw)
	require.NoError(t, err)
	assert.True(t, line.ProfitAmount.Valid)
	assert.True(t, line.ProfitAmount.Decimal.IsZero())
}

func TestRowOptionalAmountsDefaultToZero(t *testing.T) {
	raw := validRaw()
	raw.DiscountAmount = sql.NullString{}
	raw.TaxAmount = sql.NullString{}
	raw.ShippingAmount = sql.NullString{}
	line, err := Row(&raw)
	require.NoError(t, err)
	assert.True(t, line.TotalAmount.Equal(decimal.RequireFromString("99.98")))
}

func TestRowDateOnlyLayout(t *testing.T) {
	raw := validRaw()
	raw.OrderDate = "2024-03-15"
	line, err := Row(&raw)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), line.OrderDate)
}

func TestRowRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *entity.RawOrderLine)
		reason string
	}{
		{
			name:   "unparseable date",
			mutate: func(r *entity.RawOrderLine) { r.OrderDate = "15/03/2024" },
			reason: "unparseable order_date",
		},
		{
			name:   "negative quantity",
			mutate: func(r *entity.RawOrderLine) { r.Quantity = "-1" },
			reason: "negative quantity",
		},
		{
			name:   "non-integer quantity",
			mutate: func(r *entity.RawOrderLine) { r.Quantity = "1.5" },
			reason: "non-integer quantity",
		},
		{
			name:   "negative unit price",
			mutate: func(r *entity.RawOrderLine) { r.UnitPrice = "-9.99" },
			reason: "negative unit_price",
		},
		{
			name:   "unknown status",
			mutate: func(r *entity.RawOrderLine) { r.OrderStatus = "teleported" },
			reason: "unknown order status",
		},
		{
			name:   "missing customer id",
			mutate: func(r *entity.RawOrderLine) { r.CustomerID = "" },
			reason: "missing required field",
		},
		{
			name: "garbage profit",
			mutate: func(r *entity.RawOrderLine) {
				r.ProfitAmount = sql.NullString{String: "n/a", Valid: true}
			},
			reason: "unparseable profit_amount",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)
			_, err := Row(&raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestRowsCollectsRejectionsAndContinues(t *testing.T) {
	good := validRaw()
	bad := validRaw()
	bad.OrderDate = "not a date"
	bad.OrderID = "ORD-BAD"

	res := Rows([]entity.RawOrderLine{good, bad, good})
	assert.Len(t, res.Lines, 2, "one bad row never aborts the batch")
	require.Len(t, res.Rejections, 1)
	assert.Equal(t, 2, res.Rejections[0].RowNumber)
	assert.Equal(t, "ORD-BAD", res.Rejections[0].OrderID)
}

func TestRowStatusCaseInsensitive(t *testing.T) {
	for _, s := range []string{"completed", "COMPLETED", " Completed "} {
		raw := validRaw()
		raw.OrderStatus = s
		line, err := Row(&raw)
		require.NoError(t, err)
		assert.Equal(t, entity.Completed, line.Status)
	}
}
