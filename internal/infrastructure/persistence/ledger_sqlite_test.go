package persistence

import (
	"context"
	"testing"

	apporder "github.com/aryangaikwad-966/workflow-commerce-system/internal/application/order"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/catalog"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/order"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared"
	"github.com/aryangaikwad-966/workflow-commerce-system/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB opens an in-memory database with the full schema migrated
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&catalog.Category{},
		&catalog.Product{},
		&order.Order{},
		&order.Line{},
	))

	return db
}

// seedProduct stores a product with the given stock and returns its ID
func seedProduct(t *testing.T, db *gorm.DB, stock int, active bool) uuid.UUID {
	t.Helper()

	product, err := catalog.NewProduct("Coffee Mug", "Ceramic, 350ml", valueobject.NewMoneyUSDFromFloat(19.99), stock, nil)
	require.NoError(t, err)
	product.ClearDomainEvents()
	if !active {
		require.NoError(t, product.Deactivate())
	}

	repo := NewGormProductRepository(db)
	require.NoError(t, repo.Save(context.Background(), product))

	return product.ID
}

func TestLedgerReserveRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("reserve and release round trip", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormProductRepository(db)
		productID := seedProduct(t, db, 10, true)

		require.NoError(t, repo.TryReserve(ctx, productID, 4))

		product, err := repo.FindByID(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, 6, product.Stock)

		require.NoError(t, repo.Release(ctx, productID, 4))

		product, err = repo.FindByID(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, 10, product.Stock)
	})

	t.Run("reservations stop exactly at zero", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormProductRepository(db)
		productID := seedProduct(t, db, 10, true)

		succeeded := 0
		for i := 0; i < 8; i++ {
			if err := repo.TryReserve(ctx, productID, 3); err == nil {
				succeeded++
			} else {
				assert.Equal(t, shared.ErrInsufficientStock, err)
			}
		}

		// 3 of the 8 reservations fit into stock 10; 1 unit remains
		assert.Equal(t, 3, succeeded)

		product, err := repo.FindByID(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, 1, product.Stock)
	})

	t.Run("inactive product rejects reservations but accepts returns", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormProductRepository(db)
		productID := seedProduct(t, db, 10, false)

		err := repo.TryReserve(ctx, productID, 1)
		assert.Equal(t, shared.ErrProductInactive, err)

		require.NoError(t, repo.Release(ctx, productID, 2))

		product, err := repo.FindByID(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, 12, product.Stock)
	})

	t.Run("unknown product", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormProductRepository(db)

		assert.Equal(t, shared.ErrNotFound, repo.TryReserve(ctx, uuid.New(), 1))
		assert.Equal(t, shared.ErrNotFound, repo.Release(ctx, uuid.New(), 1))
	})
}

func TestTransactionScopeRollback(t *testing.T) {
	ctx := context.Background()

	t.Run("failed reservation rolls back earlier ones", func(t *testing.T) {
		db := newSQLiteDB(t)
		scope := NewGormTransactionScope(db)
		firstID := seedProduct(t, db, 10, true)
		secondID := seedProduct(t, db, 1, true)

		err := scope.Execute(ctx, func(repos apporder.TransactionalRepositories) error {
			if err := repos.Ledger().TryReserve(ctx, firstID, 5); err != nil {
				return err
			}
			return repos.Ledger().TryReserve(ctx, secondID, 3)
		})
		assert.Equal(t, shared.ErrInsufficientStock, err)

		repo := NewGormProductRepository(db)
		first, err := repo.FindByID(ctx, firstID)
		require.NoError(t, err)
		assert.Equal(t, 10, first.Stock, "rolled-back reservation must not consume stock")

		second, err := repo.FindByID(ctx, secondID)
		require.NoError(t, err)
		assert.Equal(t, 1, second.Stock)
	})

	t.Run("successful scope commits all reservations", func(t *testing.T) {
		db := newSQLiteDB(t)
		scope := NewGormTransactionScope(db)
		firstID := seedProduct(t, db, 10, true)
		secondID := seedProduct(t, db, 5, true)

		err := scope.Execute(ctx, func(repos apporder.TransactionalRepositories) error {
			if err := repos.Ledger().TryReserve(ctx, firstID, 2); err != nil {
				return err
			}
			return repos.Ledger().TryReserve(ctx, secondID, 5)
		})
		require.NoError(t, err)

		repo := NewGormProductRepository(db)
		first, err := repo.FindByID(ctx, firstID)
		require.NoError(t, err)
		assert.Equal(t, 8, first.Stock)

		second, err := repo.FindByID(ctx, secondID)
		require.NoError(t, err)
		assert.Equal(t, 0, second.Stock)
	})
}
