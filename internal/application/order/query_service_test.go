package order

import (
	"context"
	"testing"

	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/order"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newQueryTestOrder(t *testing.T, userID uuid.UUID) *order.Order {
	t.Helper()
	o, err := order.NewOrder("ORD-2026-00001", userID, "1 Main St", []order.LineSpec{{
		ProductID:   uuid.New(),
		ProductName: "Coffee Mug",
		Quantity:    2,
		UnitPrice:   valueobject.NewMoneyUSDFromFloat(19.99),
	}})
	require.NoError(t, err)
	return o
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("owner can fetch own order", func(t *testing.T) {
		userID := uuid.New()
		o := newQueryTestOrder(t, userID)

		repo := new(MockOrderRepository)
		repo.On("FindByID", ctx, o.ID).Return(o, nil)

		svc := NewQueryService(repo)
		resp, err := svc.GetOrder(ctx, o.ID, userID, false)
		require.NoError(t, err)
		assert.Equal(t, o.ID, resp.ID)
		assert.Equal(t, "39.98", resp.TotalAmount.StringFixed(2))
		repo.AssertExpectations(t)
	})

	t.Run("other user gets NOT_OWNER", func(t *testing.T) {
		o := newQueryTestOrder(t, uuid.New())

		repo := new(MockOrderRepository)
		repo.On("FindByID", ctx, o.ID).Return(o, nil)

		svc := NewQueryService(repo)
		_, err := svc.GetOrder(ctx, o.ID, uuid.New(), false)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_OWNER", domainErr.Code)
	})

	t.Run("admin can fetch any order", func(t *testing.T) {
		o := newQueryTestOrder(t, uuid.New())

		repo := new(MockOrderRepository)
		repo.On("FindByID", ctx, o.ID).Return(o, nil)

		svc := NewQueryService(repo)
		resp, err := svc.GetOrder(ctx, o.ID, uuid.New(), true)
		require.NoError(t, err)
		assert.Equal(t, o.ID, resp.ID)
	})

	t.Run("missing order returns NOT_FOUND", func(t *testing.T) {
		orderID := uuid.New()

		repo := new(MockOrderRepository)
		repo.On("FindByID", ctx, orderID).Return(nil, shared.ErrNotFound)

		svc := NewQueryService(repo)
		_, err := svc.GetOrder(ctx, orderID, uuid.New(), false)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestListUserOrders(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	o := newQueryTestOrder(t, userID)

	repo := new(MockOrderRepository)
	repo.On("FindByUser", ctx, userID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.OrderBy == "created_at" && f.OrderDir == "desc" && f.Page == 2 && f.PageSize == 10
	})).Return([]order.Order{*o}, nil)
	repo.On("CountByUser", ctx, userID).Return(int64(11), nil)

	svc := NewQueryService(repo)
	orders, total, err := svc.ListUserOrders(ctx, userID, ListFilter{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, int64(11), total)
	repo.AssertExpectations(t)
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("passes status and user filters through", func(t *testing.T) {
		userID := uuid.New()
		o := newQueryTestOrder(t, userID)
		status := order.StatusPending

		repo := new(MockOrderRepository)
		matcher := mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["status"] == "Pending" && f.Filters["user_id"] == userID
		})
		repo.On("FindAll", ctx, matcher).Return([]order.Order{*o}, nil)
		repo.On("Count", ctx, matcher).Return(int64(1), nil)

		svc := NewQueryService(repo)
		orders, total, err := svc.ListOrders(ctx, ListFilter{Status: &status, UserID: &userID})
		require.NoError(t, err)
		assert.Len(t, orders, 1)
		assert.Equal(t, int64(1), total)
		repo.AssertExpectations(t)
	})

	t.Run("rejects invalid status filter", func(t *testing.T) {
		status := order.Status("Backordered")

		svc := NewQueryService(new(MockOrderRepository))
		_, _, err := svc.ListOrders(ctx, ListFilter{Status: &status})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})
}
