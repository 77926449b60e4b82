package order

import (
	"context"

	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/inventory"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/order"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared"
	"github.com/google/uuid"
)

// Cancel reasons recorded on the order
const (
	cancelReasonCustomer = "Cancelled by customer"
	cancelReasonAdmin    = "Cancelled by admin"
)

// LifecycleService handles order state changes after placement:
// cancellation with stock release, shipping, delivery, and the admin
// status override.
type LifecycleService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(scope TransactionScope) *LifecycleService {
	return &LifecycleService{scope: scope}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *LifecycleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CancelOrder cancels an order on behalf of the user who placed it.
// Only pending orders can be cancelled by their owner; the reserved
// stock for every line is released exactly once.
func (s *LifecycleService) CancelOrder(ctx context.Context, orderID, userID uuid.UUID) (*OrderResponse, error) {
	var cancelled *order.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.BelongsTo(userID) {
			return shared.NewDomainError("NOT_OWNER", "Order belongs to another user")
		}
		if !o.IsPending() {
			return shared.NewDomainError("INVALID_STATE", "Only pending orders can be cancelled")
		}

		if err := o.Cancel(cancelReasonCustomer); err != nil {
			return err
		}

		// The version check claims the Pending -> Cancelled transition.
		// A concurrent cancel loses here and never reaches the release,
		// so stock comes back exactly once.
		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}

		if err := s.releaseLines(ctx, repos.Ledger(), o); err != nil {
			return err
		}

		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, cancelled)

	response := ToOrderResponse(cancelled)
	return &response, nil
}

// AdminCancelOrder cancels an order on behalf of an administrator.
// Shipped and delivered orders cannot be cancelled; anything else
// releases its reserved stock.
func (s *LifecycleService) AdminCancelOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	var cancelled *order.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if o.IsShipped() || o.IsDelivered() {
			return shared.NewDomainError("INVALID_STATE", "Cannot cancel shipped or delivered orders")
		}

		if err := o.Cancel(cancelReasonAdmin); err != nil {
			return err
		}

		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}

		if err := s.releaseLines(ctx, repos.Ledger(), o); err != nil {
			return err
		}

		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, cancelled)

	response := ToOrderResponse(cancelled)
	return &response, nil
}

// ShipOrder marks a pending order as shipped
func (s *LifecycleService) ShipOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, orderID, func(o *order.Order) error {
		return o.Ship()
	})
}

// DeliverOrder marks a shipped order as delivered
func (s *LifecycleService) DeliverOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, orderID, func(o *order.Order) error {
		return o.Deliver()
	})
}

// UpdateOrderStatus sets an arbitrary status on behalf of an
// administrator, bypassing the transition rules. This path never
// releases inventory; use AdminCancelOrder for a cancellation that
// returns stock.
func (s *LifecycleService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status order.Status) (*OrderResponse, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invalid order status: "+status.String())
	}

	return s.transition(ctx, orderID, func(o *order.Order) error {
		return o.ForceStatus(status)
	})
}

func (s *LifecycleService) transition(ctx context.Context, orderID uuid.UUID, apply func(*order.Order) error) (*OrderResponse, error) {
	var updated *order.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := apply(o); err != nil {
			return err
		}

		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}

		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, updated)

	response := ToOrderResponse(updated)
	return &response, nil
}

func (s *LifecycleService) releaseLines(ctx context.Context, ledger inventory.Ledger, o *order.Order) error {
	lines := make([]inventory.Line, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, inventory.Line{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return inventory.NewReservationService(ledger).ReleaseAll(ctx, lines)
}

func (s *LifecycleService) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, o.GetDomainEvents()...); err == nil {
		o.ClearDomainEvents()
	}
}
