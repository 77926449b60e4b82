package order

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/catalog"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/order"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, name string, price float64, stock int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(name, "", valueobject.NewMoneyUSDFromFloat(price), stock, nil)
	require.NoError(t, err)
	return product
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("places order with snapshot prices", func(t *testing.T) {
		mug := newTestProduct(t, "Coffee Mug", 19.99, 10)
		pot := newTestProduct(t, "Tea Pot", 34.50, 5)

		ledger := newFakeLedger()
		ledger.stock[mug.ID] = mug.Stock
		ledger.stock[pot.ID] = pot.Stock

		productRepo := new(MockProductRepository)
		productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*mug, *pot}, nil)

		orderRepo := new(MockOrderRepository)
		orderRepo.On("GenerateOrderNumber", ctx).Return("ORD-2026-00001", nil)
		orderRepo.On("Save", ctx, mock.AnythingOfType("*order.Order")).Return(nil)

		svc := NewPlacementService(NewNoOpTransactionScope(orderRepo, productRepo, ledger))
		resp, err := svc.PlaceOrder(ctx, userID, PlaceOrderRequest{
			ShippingAddress: "1 Main St",
			Items: []PlaceOrderItemInput{
				{ProductID: mug.ID, Quantity: 2},
				{ProductID: pot.ID, Quantity: 1},
			},
		})
		require.NoError(t, err)
		require.NotNil(t, resp)

		assert.Equal(t, "ORD-2026-00001", resp.OrderNumber)
		assert.Equal(t, string(order.StatusPending), resp.Status)
		assert.Equal(t, userID, resp.UserID)
		require.Len(t, resp.Lines, 2)
		assert.Equal(t, "19.99", resp.Lines[0].UnitPrice.StringFixed(2))
		assert.Equal(t, "Coffee Mug", resp.Lines[0].ProductName)
		assert.Equal(t, "74.48", resp.TotalAmount.StringFixed(2))

		// Stock reserved
		assert.Equal(t, 8, ledger.balance(mug.ID))
		assert.Equal(t, 4, ledger.balance(pot.ID))

		orderRepo.AssertExpectations(t)
	})

	t.Run("rejects empty items before hitting storage", func(t *testing.T) {
		svc := NewPlacementService(NewNoOpTransactionScope(new(MockOrderRepository), new(MockProductRepository), newFakeLedger()))
		_, err := svc.PlaceOrder(ctx, userID, PlaceOrderRequest{ShippingAddress: "1 Main St"})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})

	t.Run("rejects bad shipping address before reserving", func(t *testing.T) {
		mug := newTestProduct(t, "Coffee Mug", 19.99, 10)

		ledger := newFakeLedger()
		ledger.stock[mug.ID] = 10

		// No expectations on the repositories: the address check must
		// reject the request before any repository or ledger call
		svc := NewPlacementService(NewNoOpTransactionScope(new(MockOrderRepository), new(MockProductRepository), ledger))

		for _, address := range []string{"", "   ", strings.Repeat("x", 301)} {
			_, err := svc.PlaceOrder(ctx, userID, PlaceOrderRequest{
				ShippingAddress: address,
				Items:           []PlaceOrderItemInput{{ProductID: mug.ID, Quantity: 1}},
			})
			require.Error(t, err)

			var domainErr *shared.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
		}

		assert.Equal(t, 10, ledger.balance(mug.ID))
		assert.Equal(t, 0, ledger.releasedTotal(mug.ID))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		svc := NewPlacementService(NewNoOpTransactionScope(new(MockOrderRepository), new(MockProductRepository), newFakeLedger()))
		_, err := svc.PlaceOrder(ctx, userID, PlaceOrderRequest{
			ShippingAddress: "1 Main St",
			Items:           []PlaceOrderItemInput{{ProductID: uuid.New(), Quantity: 0}},
		})
		require.Error(t, err)
	})

	t.Run("fails with NOT_FOUND for unknown product", func(t *testing.T) {
		ledger := newFakeLedger()
		productRepo := new(MockProductRepository)
		productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{}, nil)

		svc := NewPlacementService(NewNoOpTransactionScope(new(MockOrderRepository), productRepo, ledger))
		_, err := svc.PlaceOrder(ctx, userID, PlaceOrderRequest{
			ShippingAddress: "1 Main St",
			Items:           []PlaceOrderItemInput{{ProductID: uuid.New(), Quantity: 1}},
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})

	t.Run("fails for inactive product without reserving", func(t *testing.T) {
		mug := newTestProduct(t, "Coffee Mug", 19.99, 10)
		require.NoError(t, mug.Deactivate())

		ledger := newFakeLedger()
		ledger.stock[mug.ID] = 10

		productRepo := new(MockProductRepository)
		productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*mug}, nil)

		svc := NewPlacementService(NewNoOpTransactionScope(new(MockOrderRepository), productRepo, ledger))
		_, err := svc.PlaceOrder(ctx, userID, PlaceOrderRequest{
			ShippingAddress: "1 Main St",
			Items:           []PlaceOrderItemInput{{ProductID: mug.ID, Quantity: 1}},
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "PRODUCT_INACTIVE", domainErr.Code)
		assert.Contains(t, domainErr.Message, "Coffee Mug")
		assert.Equal(t, 10, ledger.balance(mug.ID))
	})

	t.Run("rolls back earlier reservations when a line fails", func(t *testing.T) {
		mug := newTestProduct(t, "Coffee Mug", 19.99, 10)
		pot := newTestProduct(t, "Tea Pot", 34.50, 1)

		ledger := newFakeLedger()
		ledger.stock[mug.ID] = 10
		ledger.stock[pot.ID] = 1

		productRepo := new(MockProductRepository)
		productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*mug, *pot}, nil)

		svc := NewPlacementService(NewNoOpTransactionScope(new(MockOrderRepository), productRepo, ledger))
		_, err := svc.PlaceOrder(ctx, userID, PlaceOrderRequest{
			ShippingAddress: "1 Main St",
			Items: []PlaceOrderItemInput{
				{ProductID: mug.ID, Quantity: 3},
				{ProductID: pot.ID, Quantity: 2},
			},
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)

		// No partial reservation survives
		assert.Equal(t, 10, ledger.balance(mug.ID))
		assert.Equal(t, 1, ledger.balance(pot.ID))
	})

	t.Run("releases reserved stock when saving the order fails", func(t *testing.T) {
		mug := newTestProduct(t, "Coffee Mug", 19.99, 10)

		ledger := newFakeLedger()
		ledger.stock[mug.ID] = 10

		productRepo := new(MockProductRepository)
		productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*mug}, nil)

		orderRepo := new(MockOrderRepository)
		orderRepo.On("GenerateOrderNumber", ctx).Return("ORD-2026-00001", nil)
		orderRepo.On("Save", ctx, mock.Anything).Return(errors.New("connection reset"))

		svc := NewPlacementService(NewNoOpTransactionScope(orderRepo, productRepo, ledger))
		_, err := svc.PlaceOrder(ctx, userID, PlaceOrderRequest{
			ShippingAddress: "1 Main St",
			Items:           []PlaceOrderItemInput{{ProductID: mug.ID, Quantity: 4}},
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "STORAGE_ERROR", domainErr.Code)
		assert.Equal(t, 10, ledger.balance(mug.ID))
	})

	t.Run("snapshot survives later price changes", func(t *testing.T) {
		mug := newTestProduct(t, "Coffee Mug", 19.99, 10)

		ledger := newFakeLedger()
		ledger.stock[mug.ID] = 10

		productRepo := new(MockProductRepository)
		productRepo.On("FindByIDs", ctx, mock.Anything).Return([]catalog.Product{*mug}, nil)

		orderRepo := new(MockOrderRepository)
		orderRepo.On("GenerateOrderNumber", ctx).Return("ORD-2026-00001", nil)
		orderRepo.On("Save", ctx, mock.Anything).Return(nil)

		svc := NewPlacementService(NewNoOpTransactionScope(orderRepo, productRepo, ledger))
		resp, err := svc.PlaceOrder(ctx, userID, PlaceOrderRequest{
			ShippingAddress: "1 Main St",
			Items:           []PlaceOrderItemInput{{ProductID: mug.ID, Quantity: 1}},
		})
		require.NoError(t, err)

		require.NoError(t, mug.ChangePrice(valueobject.NewMoneyUSDFromFloat(99.99)))
		assert.Equal(t, "19.99", resp.Lines[0].UnitPrice.StringFixed(2))
	})
}

func TestPlaceOrderConcurrentNoOverselling(t *testing.T) {
	ctx := context.Background()
	mug := newTestProduct(t, "Coffee Mug", 19.99, 30)

	ledger := newFakeLedger()
	ledger.stock[mug.ID] = 30

	productRepo := new(MockProductRepository)
	productRepo.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Product{*mug}, nil)

	orderRepo := newFakeOrderRepo()
	svc := NewPlacementService(NewNoOpTransactionScope(orderRepo, productRepo, ledger))

	const workers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	placed := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceOrder(ctx, uuid.New(), PlaceOrderRequest{
				ShippingAddress: "1 Main St",
				Items:           []PlaceOrderItemInput{{ProductID: mug.ID, Quantity: 1}},
			})
			if err == nil {
				mu.Lock()
				placed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Every unit sold came out of real stock
	assert.Equal(t, 30, placed)
	assert.Equal(t, 0, ledger.balance(mug.ID))

	count, err := orderRepo.Count(ctx, shared.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(30), count)
}
