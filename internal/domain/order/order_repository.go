package order

import (
	"context"

	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for order persistence.
// All list queries return orders most recent first.
type Repository interface {
	// FindByID finds an order by ID, including its lines
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByUser finds all orders placed by a user
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByStatus finds all orders with the given status
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) ([]Order, error)

	// FindAll finds all orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order together with its lines
	Save(ctx context.Context, o *Order) error

	// SaveWithLock updates an order with an optimistic lock check on version.
	// Returns a CONCURRENCY_CONFLICT domain error when the stored version
	// does not match.
	SaveWithLock(ctx context.Context, o *Order) error

	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByUser counts orders placed by a user
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// CountByStatus counts orders with the given status
	CountByStatus(ctx context.Context, status Status) (int64, error)

	// GenerateOrderNumber generates the next sequential order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}
