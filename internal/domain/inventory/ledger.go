package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Line is a reservation request for a single product
type Line struct {
	ProductID uuid.UUID
	Quantity  int
}

// Ledger defines atomic stock accounting operations on the product
// stock balance. Implementations must make TryReserve a single
// conditional decrement so that concurrent reservations for the same
// product never oversell.
type Ledger interface {
	// TryReserve atomically decrements the product stock by qty.
	// Fails with a NOT_FOUND error when the product does not exist,
	// PRODUCT_INACTIVE when it is not orderable, and INSUFFICIENT_STOCK
	// when fewer than qty units remain. No partial effect on failure.
	TryReserve(ctx context.Context, productID uuid.UUID, qty int) error

	// Release returns qty units to the product stock.
	// Fails with a NOT_FOUND error when the product does not exist.
	Release(ctx context.Context, productID uuid.UUID, qty int) error
}
