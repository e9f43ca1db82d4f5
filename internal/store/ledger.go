package store

import (
	"context"
	"fmt"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

// LoadRawOrderLines reads the whole order ledger as textual staging rows.
// Field-level validation and coercion happen in the normalizer, not here:
// a malformed value must surface as a per-row rejection rather than a
// failed scan.
func (ms *MYSQLStore) LoadRawOrderLines(ctx context.Context) ([]entity.RawOrderLine, error) {
	query := `
		SELECT order_id, order_date, customer_id, product_id,
			quantity, unit_price, discount_amount, tax_amount,
			shipping_amount, total_amount, profit_amount,
			order_status, channel, payment_method, city, state
		FROM order_line
		ORDER BY order_date, order_id
	`
	var rows []entity.RawOrderLine
	if err := ms.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("can't load order lines: %w", err)
	}
	return rows, nil
}

// LoadProducts reads the product dimension table.
func (ms *MYSQLStore) LoadProducts(ctx context.Context) ([]entity.Product, error) {
	query := `
		SELECT product_id, product_name, category, sub_category, cost_price
		FROM product
	`
	var rows []entity.Product
	if err := ms.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("can't load products: %w", err)
	}
	return rows, nil
}

// LoadCustomers reads the customer dimension table.
func (ms *MYSQLStore) LoadCustomers(ctx context.Context) ([]entity.Customer, error) {
	query := `
		SELECT customer_id, customer_name, customer_segment, signup_date
		FROM customer
	`
	var rows []entity.Customer
	if err := ms.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("can't load customers: %w", err)
	}
	return rows, nil
}
