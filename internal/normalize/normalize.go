// Package normalize validates and coerces raw ledger rows into canonical
// order-line records. Normalization is a pure row-to-record function: a row
// either becomes an entity.OrderLine or a rejection with a reason. Rejected
// rows are logged and excluded; they are never coerced into defaults that
// would corrupt downstream sums.
package normalize

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/jekabolt/grbpwr-analytics/internal/entity"
	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order; order dates may or may not carry a
// time-of-day component.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Result carries the accepted records and the rejection report of one
// normalization pass.
type Result struct {
	Lines      []entity.OrderLine
	Rejections []entity.Rejection
}

// Rows normalizes a batch of raw rows. Row numbers in rejections are
// 1-based positions within the batch.
func Rows(rows []entity.RawOrderLine) Result {
	res := Result{Lines: make([]entity.OrderLine, 0, len(rows))}
	for i, raw := range rows {
		line, err := Row(&raw)
		if err != nil {
			rej := entity.Rejection{
				RowNumber: i + 1,
				OrderID:   strings.TrimSpace(raw.OrderID),
				Reason:    err.Error(),
			}
			res.Rejections = append(res.Rejections, rej)
			slog.Default().Warn("order line rejected",
				"row", rej.RowNumber, "order_id", rej.OrderID, "reason", rej.Reason)
			continue
		}
		res.Lines = append(res.Lines, *line)
	}
	return res
}

// Row normalizes a single raw row into an OrderLine.
func Row(raw *entity.RawOrderLine) (*entity.OrderLine, error) {
	if _, err := govalidator.ValidateStruct(raw); err != nil {
		return nil, fmt.Errorf("missing required field: %v", err)
	}

	orderDate, err := parseDate(raw.OrderDate)
	if err != nil {
		return nil, err
	}

	status, ok := entity.ParseOrderStatusName(raw.OrderStatus)
	if !ok {
		return nil, fmt.Errorf("unknown order status %q", raw.OrderStatus)
	}

	quantity, err := parseQuantity(raw.Quantity)
	if err != nil {
		return nil, err
	}

	unitPrice, err := parseMoney("unit_price", raw.UnitPrice)
	if err != nil {
		return nil, err
	}
	if unitPrice.IsNegative() {
		return nil, fmt.Errorf("negative unit_price %s", unitPrice)
	}

	discount, err := parseOptionalMoney("discount_amount", raw.DiscountAmount)
	if err != nil {
		return nil, err
	}
	tax, err := parseOptionalMoney("tax_amount", raw.TaxAmount)
	if err != nil {
		return nil, err
	}
	shipping, err := parseOptionalMoney("shipping_amount", raw.ShippingAmount)
	if err != nil {
		return nil, err
	}

	line := &entity.OrderLine{
		OrderID:        strings.TrimSpace(raw.OrderID),
		OrderDate:      orderDate,
		CustomerID:     strings.TrimSpace(raw.CustomerID),
		ProductID:      strings.TrimSpace(raw.ProductID),
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		DiscountAmount: discount,
		TaxAmount:      tax,
		ShippingAmount: shipping,
		Status:         status,
		Channel:        sentinelString(raw.Channel),
		PaymentMethod:  sentinelString(raw.PaymentMethod),
		City:           sentinelString(raw.City),
		State:          sentinelString(raw.State),
	}

	// total_amount is taken from the source when present, otherwise derived:
	// quantity*unit_price - discount + tax + shipping.
	if raw.TotalAmount.Valid && strings.TrimSpace(raw.TotalAmount.String) != "" {
		total, err := decimal.NewFromString(strings.TrimSpace(raw.TotalAmount.String))
		if err != nil {
			return nil, fmt.Errorf("unparseable total_amount %q", raw.TotalAmount.String)
		}
		line.TotalAmount = total
	} else {
		line.TotalAmount = unitPrice.Mul(decimal.NewFromInt(int64(quantity))).
			Sub(discount).Add(tax).Add(shipping)
	}

	// Absent profit stays unknown. Coalescing it to zero here would make
	// "we don't know" indistinguishable from "we broke even".
	if raw.ProfitAmount.Valid && strings.TrimSpace(raw.ProfitAmount.String) != "" {
		profit, err := decimal.NewFromString(strings.TrimSpace(raw.ProfitAmount.String))
		if err != nil {
			return nil, fmt.Errorf("unparseable profit_amount %q", raw.ProfitAmount.String)
		}
		line.ProfitAmount = decimal.NullDecimal{Decimal: profit, Valid: true}
	}

	return line, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable order_date %q", s)
}

func parseQuantity(s string) (int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("unparseable quantity %q", s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("non-integer quantity %q", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative quantity %q", s)
	}
	return int(d.IntPart()), nil
}

func parseMoney(field string, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable %s %q", field, s)
	}
	return d, nil
}

// parseOptionalMoney defaults absent values to zero; that is only done for
// fields where zero is the documented default (discount, tax, shipping),
// never for profit.
func parseOptionalMoney(field string, ns sql.NullString) (decimal.Decimal, error) {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(ns.String))
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable %s %q", field, ns.String)
	}
	return d, nil
}

func sentinelString(ns sql.NullString) string {
	if ns.Valid && strings.TrimSpace(ns.String) != "" {
		return strings.TrimSpace(ns.String)
	}
	return entity.UnknownDimension
}
