package entity

import (
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatusName is the custom type to enforce enum-like behavior
type OrderStatusName string

func (osn OrderStatusName) String() string {
	return string(osn)
}

const (
	Pending    OrderStatusName = "pending"
	Processing OrderStatusName = "processing"
	Completed  OrderStatusName = "completed"
	Cancelled  OrderStatusName = "cancelled"
	Returned   OrderStatusName = "returned"
	Refunded   OrderStatusName = "refunded"
)

// ValidOrderStatusNames is a set of valid order status names
var ValidOrderStatusNames = map[OrderStatusName]bool{
	Pending:    true,
	Processing: true,
	Completed:  true,
	Cancelled:  true,
	Returned:   true,
	Refunded:   true,
}

// ParseOrderStatusName parses a raw status string into an OrderStatusName.
func ParseOrderStatusName(s string) (OrderStatusName, bool) {
	osn := OrderStatusName(strings.ToLower(strings.TrimSpace(s)))
	return osn, ValidOrderStatusNames[osn]
}

// RawOrderLine represents a single row of the raw order ledger as loaded by
// the data-loading collaborator, before any validation or coercion. All
// fields are kept textual so a malformed value can be rejected with a reason
// instead of failing the whole scan.
type RawOrderLine struct {
	OrderID        string         `db:"order_id" valid:"required"`
	OrderDate      string         `db:"order_date" valid:"required"`
	CustomerID     string         `db:"customer_id" valid:"required"`
	ProductID      string         `db:"product_id" valid:"required"`
	Quantity       string         `db:"quantity" valid:"required"`
	UnitPrice      string         `db:"unit_price" valid:"required"`
	DiscountAmount sql.NullString `db:"discount_amount" valid:"-"`
	TaxAmount      sql.NullString `db:"tax_amount" valid:"-"`
	ShippingAmount sql.NullString `db:"shipping_amount" valid:"-"`
	TotalAmount    sql.NullString `db:"total_amount" valid:"-"`
	ProfitAmount   sql.NullString `db:"profit_amount" valid:"-"`
	OrderStatus    string         `db:"order_status" valid:"required"`
	Channel        sql.NullString `db:"channel" valid:"-"`
	PaymentMethod  sql.NullString `db:"payment_method" valid:"-"`
	City           sql.NullString `db:"city" valid:"-"`
	State          sql.NullString `db:"state" valid:"-"`
}

// OrderLine is the canonical typed ledger record every aggregate consumes.
// OrderID is not unique: an order may span several line items, so counting
// orders always means counting distinct OrderIDs.
type OrderLine struct {
	OrderID        string
	OrderDate      time.Time
	CustomerID     string
	ProductID      string
	Quantity       int
	UnitPrice      decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	ShippingAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	// ProfitAmount is nullable on purpose: an absent profit is "unknown",
	// which is not the same thing as zero profit. Aggregates exclude
	// invalid values from profit sums instead of coalescing them.
	ProfitAmount  decimal.NullDecimal
	Status        OrderStatusName
	Channel       string
	PaymentMethod string
	City          string
	State         string
}

func (l *OrderLine) TotalAmountDecimal() decimal.Decimal {
	return l.TotalAmount.Round(2)
}

// Rejection describes a raw row that could not be normalized. Rejected rows
// are reported and skipped; they never abort the run.
type Rejection struct {
	RowNumber int    `json:"row_number"`
	OrderID   string `json:"order_id,omitempty"`
	Reason    string `json:"reason"`
}
