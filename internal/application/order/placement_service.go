package order

import (
	"context"
	"fmt"

	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/inventory"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/order"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared"
	"github.com/google/uuid"
)

// PlacementService handles the order placement workflow: validate the
// request, reserve stock for every line all-or-nothing, snapshot prices,
// and persist the pending order.
type PlacementService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewPlacementService creates a new PlacementService
func NewPlacementService(scope TransactionScope) *PlacementService {
	return &PlacementService{scope: scope}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PlacementService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// PlaceOrder places a new order for the user. Reservation and order
// insert run in one transaction; a failure on any line leaves every
// stock balance untouched.
func (s *PlacementService) PlaceOrder(ctx context.Context, userID uuid.UUID, req PlaceOrderRequest) (*OrderResponse, error) {
	if err := order.ValidateShippingAddress(req.ShippingAddress); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Order must contain at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
		}
	}

	var placed *order.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		productIDs := make([]uuid.UUID, 0, len(req.Items))
		for _, item := range req.Items {
			productIDs = append(productIDs, item.ProductID)
		}

		products, err := repos.ProductRepo().FindByIDs(ctx, productIDs)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]int, len(products))
		for idx := range products {
			byID[products[idx].ID] = idx
		}

		// Validate availability before touching the ledger
		specs := make([]order.LineSpec, 0, len(req.Items))
		reservations := make([]inventory.Line, 0, len(req.Items))
		for _, item := range req.Items {
			idx, ok := byID[item.ProductID]
			if !ok {
				return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %s not found", item.ProductID))
			}
			product := &products[idx]
			if !product.IsActive() {
				return shared.NewDomainError("PRODUCT_INACTIVE", fmt.Sprintf("Product %s is not available", product.Name))
			}

			specs = append(specs, order.LineSpec{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   product.GetPriceMoney(),
			})
			reservations = append(reservations, inventory.Line{
				ProductID: product.ID,
				Quantity:  item.Quantity,
			})
		}

		reserver := inventory.NewReservationService(repos.Ledger())
		if err := reserver.ReserveAll(ctx, reservations); err != nil {
			return err
		}

		orderNumber, err := repos.OrderRepo().GenerateOrderNumber(ctx)
		if err != nil {
			_ = reserver.ReleaseAll(ctx, reservations)
			return err
		}

		o, err := order.NewOrder(orderNumber, userID, req.ShippingAddress, specs)
		if err != nil {
			_ = reserver.ReleaseAll(ctx, reservations)
			return err
		}

		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			// Nothing may stay reserved for an order that was never
			// persisted, even outside a real transaction.
			_ = reserver.ReleaseAll(ctx, reservations)
			return shared.NewDomainError("STORAGE_ERROR", "Failed to save order")
		}

		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, placed)

	response := ToOrderResponse(placed)
	return &response, nil
}

func (s *PlacementService) publishEvents(ctx context.Context, o *order.Order) {
	if s.eventPublisher == nil || o == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, o.GetDomainEvents()...); err == nil {
		o.ClearDomainEvents()
	}
}
