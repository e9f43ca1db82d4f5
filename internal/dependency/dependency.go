package dependency

import (
	"context"

	"github.com/jekabolt/grbpwr-analytics/internal/entity"
)

type (
	// Ledger is the data-loading collaborator contract: an unordered batch
	// of raw order-line rows plus the two dimension lookup tables.
	Ledger interface {
		LoadRawOrderLines(ctx context.Context) ([]entity.RawOrderLine, error)
		LoadProducts(ctx context.Context) ([]entity.Product, error)
		LoadCustomers(ctx context.Context) ([]entity.Customer, error)
		Close()
	}
)
