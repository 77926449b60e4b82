package catalog

import (
	"context"
	"testing"

	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/catalog"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("Coffee Mug", "Ceramic, 350ml", valueobject.NewMoneyUSDFromFloat(19.99), 25, nil)
	require.NoError(t, err)
	product.ClearDomainEvents()
	return product
}

func TestProductServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an active product", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		categoryRepo := new(MockCategoryRepository)
		productRepo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		svc := NewProductService(productRepo, categoryRepo)
		resp, err := svc.Create(ctx, CreateProductRequest{
			Name:        "Coffee Mug",
			Description: "Ceramic, 350ml",
			Price:       decimal.NewFromFloat(19.99),
			Stock:       25,
		})
		require.NoError(t, err)
		assert.Equal(t, "Coffee Mug", resp.Name)
		assert.True(t, resp.Active)
		assert.Equal(t, 25, resp.Stock)
		assert.Equal(t, "19.99", resp.Price.StringFixed(2))
		productRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		categoryRepo := new(MockCategoryRepository)
		categoryID := uuid.New()
		categoryRepo.On("FindByID", ctx, categoryID).Return(nil, shared.ErrNotFound)

		svc := NewProductService(productRepo, categoryRepo)
		_, err := svc.Create(ctx, CreateProductRequest{
			Name:       "Coffee Mug",
			Price:      decimal.NewFromFloat(19.99),
			CategoryID: &categoryID,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Category not found")
		productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects price below one cent", func(t *testing.T) {
		svc := NewProductService(new(MockProductRepository), new(MockCategoryRepository))
		_, err := svc.Create(ctx, CreateProductRequest{
			Name:  "Coffee Mug",
			Price: decimal.Zero,
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	})
}

func TestProductServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("updates name and price", func(t *testing.T) {
		product := newTestProduct(t)
		productRepo := new(MockProductRepository)
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("Save", ctx, product).Return(nil)

		name := "Travel Mug"
		price := decimal.NewFromFloat(24.50)
		svc := NewProductService(productRepo, new(MockCategoryRepository))
		resp, err := svc.Update(ctx, product.ID, UpdateProductRequest{Name: &name, Price: &price})
		require.NoError(t, err)
		assert.Equal(t, "Travel Mug", resp.Name)
		assert.Equal(t, "24.50", resp.Price.StringFixed(2))
		productRepo.AssertExpectations(t)
	})

	t.Run("replaces the stock balance", func(t *testing.T) {
		product := newTestProduct(t)
		productRepo := new(MockProductRepository)
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("Save", ctx, product).Return(nil)

		stock := 100
		svc := NewProductService(productRepo, new(MockCategoryRepository))
		resp, err := svc.Update(ctx, product.ID, UpdateProductRequest{Stock: &stock})
		require.NoError(t, err)
		assert.Equal(t, 100, resp.Stock)
	})

	t.Run("missing product returns NOT_FOUND", func(t *testing.T) {
		productRepo := new(MockProductRepository)
		productID := uuid.New()
		productRepo.On("FindByID", ctx, productID).Return(nil, shared.ErrNotFound)

		svc := NewProductService(productRepo, new(MockCategoryRepository))
		_, err := svc.Update(ctx, productID, UpdateProductRequest{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestProductServiceActivation(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivate then activate", func(t *testing.T) {
		product := newTestProduct(t)
		productRepo := new(MockProductRepository)
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)
		productRepo.On("Save", ctx, product).Return(nil)

		svc := NewProductService(productRepo, new(MockCategoryRepository))

		resp, err := svc.Deactivate(ctx, product.ID)
		require.NoError(t, err)
		assert.False(t, resp.Active)

		resp, err = svc.Activate(ctx, product.ID)
		require.NoError(t, err)
		assert.True(t, resp.Active)
	})

	t.Run("activating an active product fails", func(t *testing.T) {
		product := newTestProduct(t)
		productRepo := new(MockProductRepository)
		productRepo.On("FindByID", ctx, product.ID).Return(product, nil)

		svc := NewProductService(productRepo, new(MockCategoryRepository))
		_, err := svc.Activate(ctx, product.ID)
		require.Error(t, err)
		productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProductServiceList(t *testing.T) {
	ctx := context.Background()

	t.Run("storefront view lists active products only", func(t *testing.T) {
		product := newTestProduct(t)
		productRepo := new(MockProductRepository)
		productRepo.On("FindActive", ctx, mock.AnythingOfType("shared.Filter")).Return([]catalog.Product{*product}, nil)
		productRepo.On("CountActive", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

		svc := NewProductService(productRepo, new(MockCategoryRepository))
		products, total, err := svc.List(ctx, ProductListFilter{ActiveOnly: true})
		require.NoError(t, err)
		assert.Len(t, products, 1)
		assert.Equal(t, int64(1), total)
		productRepo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
	})

	t.Run("admin view lists everything", func(t *testing.T) {
		product := newTestProduct(t)
		productRepo := new(MockProductRepository)
		productRepo.On("FindAll", ctx, mock.AnythingOfType("shared.Filter")).Return([]catalog.Product{*product}, nil)
		productRepo.On("Count", ctx, mock.AnythingOfType("shared.Filter")).Return(int64(3), nil)

		svc := NewProductService(productRepo, new(MockCategoryRepository))
		products, total, err := svc.List(ctx, ProductListFilter{})
		require.NoError(t, err)
		assert.Len(t, products, 1)
		assert.Equal(t, int64(3), total)
	})
}
