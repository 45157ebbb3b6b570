package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/inventory"
	"github.com/shopbill/backend/internal/domain/partner"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopbill/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a private in-memory SQLite database with the real models.
// A single connection keeps every query, including those inside a
// transaction, on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig(nil))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.CategoryModel{},
		&models.ProductModel{},
		&models.StockMovementModel{},
		&models.CustomerModel{},
		&models.InvoiceModel{},
		&models.InvoiceItemModel{},
		&models.PaymentModel{},
		&models.InvoiceSequenceModel{},
	))
	return db
}

func testActor() shared.Actor {
	return shared.NewActor(uuid.New(), uuid.New(), shared.RoleOwner)
}

func seedProduct(t *testing.T, db *gorm.DB, actor shared.Actor, name, sku string, price string, stock int64) *inventory.Product {
	t.Helper()
	p, err := inventory.NewProduct(actor, inventory.ProductInput{
		Name:  name,
		SKU:   sku,
		Price: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	p.StockQuantity = stock
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), p))
	return p
}

func seedCustomer(t *testing.T, db *gorm.DB, actor shared.Actor, name string) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer(actor, partner.CustomerInput{Name: name, City: "Pune", State: "MH"})
	require.NoError(t, err)
	require.NoError(t, NewGormCustomerRepository(db).Save(context.Background(), c))
	return c
}
