package entity

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// UnknownDimension is the sentinel bucket for fact rows with no matching
// dimension row. Such rows are never dropped from aggregates.
const UnknownDimension = "Unknown"

// Product represents the product dimension table
type Product struct {
	ProductID   string          `db:"product_id"`
	ProductName string          `db:"product_name"`
	Category    string          `db:"category"`
	SubCategory string          `db:"sub_category"`
	CostPrice   decimal.Decimal `db:"cost_price"`
}

// Customer represents the customer dimension table
type Customer struct {
	CustomerID      string       `db:"customer_id"`
	CustomerName    string       `db:"customer_name"`
	CustomerSegment string       `db:"customer_segment"`
	SignupDate      sql.NullTime `db:"signup_date"`
}

// Catalog holds the dimension lookup tables for a single analysis run. The
// fact-to-dimension relationship is left-outer: a miss resolves to the
// UnknownDimension sentinel.
type Catalog struct {
	products  map[string]Product
	customers map[string]Customer
}

func NewCatalog(products []Product, customers []Customer) *Catalog {
	c := &Catalog{
		products:  make(map[string]Product, len(products)),
		customers: make(map[string]Customer, len(customers)),
	}
	for _, p := range products {
		c.products[p.ProductID] = p
	}
	for _, cu := range customers {
		c.customers[cu.CustomerID] = cu
	}
	return c
}

// ProductCategory resolves a product id to its category and sub-category.
func (c *Catalog) ProductCategory(productID string) (category, subCategory string) {
	if c != nil {
		if p, ok := c.products[productID]; ok {
			return p.Category, p.SubCategory
		}
	}
	return UnknownDimension, UnknownDimension
}

// CustomerSegment resolves a customer id to its segment.
func (c *Catalog) CustomerSegment(customerID string) string {
	if c != nil {
		if cu, ok := c.customers[customerID]; ok && cu.CustomerSegment != "" {
			return cu.CustomerSegment
		}
	}
	return UnknownDimension
}

// CustomerName resolves a customer id to its display name.
func (c *Catalog) CustomerName(customerID string) string {
	if c != nil {
		if cu, ok := c.customers[customerID]; ok && cu.CustomerName != "" {
			return cu.CustomerName
		}
	}
	return UnknownDimension
}
