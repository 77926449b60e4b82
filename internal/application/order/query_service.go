package order

import (
	"context"

	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/order"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared"
	"github.com/google/uuid"
)

// QueryService handles order read operations. All list results are
// ordered most recent first.
type QueryService struct {
	orderRepo order.Repository
}

// NewQueryService creates a new QueryService
func NewQueryService(orderRepo order.Repository) *QueryService {
	return &QueryService{orderRepo: orderRepo}
}

// GetOrder fetches a single order, scoped to its owner. Admins may
// fetch any order.
func (s *QueryService) GetOrder(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool) (*OrderResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !o.BelongsTo(requesterID) {
		return nil, shared.NewDomainError("NOT_OWNER", "Order belongs to another user")
	}

	response := ToOrderResponse(o)
	return &response, nil
}

// ListUserOrders lists the orders placed by a user
func (s *QueryService) ListUserOrders(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]OrderResponse, int64, error) {
	domainFilter := buildFilter(filter)

	orders, err := s.orderRepo.FindByUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderResponses(orders), total, nil
}

// ListOrders lists all orders, optionally filtered by status or user.
// Admin only; the handler enforces the role.
func (s *QueryService) ListOrders(ctx context.Context, filter ListFilter) ([]OrderResponse, int64, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, 0, shared.NewDomainError("VALIDATION_ERROR", "Invalid order status: "+filter.Status.String())
	}

	domainFilter := buildFilter(filter)
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.UserID != nil {
		domainFilter.Filters["user_id"] = *filter.UserID
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderResponses(orders), total, nil
}

func buildFilter(filter ListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	return domainFilter
}
