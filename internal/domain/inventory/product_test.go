package inventory

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testActor() shared.Actor {
	return shared.NewActor(uuid.New(), uuid.New(), shared.RoleOwner)
}

func createTestProduct(t *testing.T, stock int64) *Product {
	t.Helper()
	p, err := NewProduct(testActor(), ProductInput{
		Name:  "Widget",
		SKU:   "wid-001",
		Price: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	p.StockQuantity = stock
	p.ClearDomainEvents()
	return p
}

func TestNewProduct(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		actor := testActor()
		p, err := NewProduct(actor, ProductInput{Name: "  Tea  ", Price: decimal.RequireFromString("12.345")})
		require.NoError(t, err)

		assert.Equal(t, "Tea", p.Name)
		assert.Equal(t, actor.TenantID, p.TenantID)
		assert.Equal(t, actor.UserID, *p.CreatedBy)
		assert.Equal(t, "12.35", p.Price.StringFixed(2))
		assert.True(t, p.TaxRate.Equal(decimal.NewFromInt(18)))
		assert.Equal(t, DefaultLowStockThreshold, p.LowStockThreshold)
		assert.Equal(t, int64(0), p.StockQuantity)
		assert.Equal(t, "", p.SKU)
		require.Len(t, p.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeProductCreated, p.GetDomainEvents()[0].EventType())
	})

	t.Run("uppercases sku", func(t *testing.T) {
		p := createTestProduct(t, 0)
		assert.Equal(t, "WID-001", p.SKU)
		p.AssignSKU("PRD-0001")
		assert.Equal(t, "WID-001", p.SKU, "existing sku is kept")
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		rate := decimal.NewFromInt(150)
		fineRate := decimal.RequireFromString("12.345")
		threshold := int64(-1)
		cases := []ProductInput{
			{Name: "", Price: decimal.Zero},
			{Name: "x", Price: decimal.NewFromInt(-1)},
			{Name: "x", Price: decimal.Zero, TaxRate: &rate},
			{Name: "x", Price: decimal.Zero, TaxRate: &fineRate},
			{Name: "x", Price: decimal.Zero, LowStockThreshold: &threshold},
		}
		for _, in := range cases {
			_, err := NewProduct(testActor(), in)
			assert.True(t, errors.Is(err, shared.ErrValidation), "input %+v", in)
		}
	})
}

func TestProduct_Update(t *testing.T) {
	p := createTestProduct(t, 5)
	rate := decimal.NewFromInt(5)
	require.NoError(t, p.Update(ProductInput{Name: "Gadget", Price: decimal.NewFromInt(40), TaxRate: &rate}))

	assert.Equal(t, "Gadget", p.Name)
	assert.True(t, p.TaxRate.Equal(rate))
	assert.Equal(t, int64(5), p.StockQuantity, "update never touches stock")
	assert.Equal(t, 2, p.Version)
}

func TestProduct_StockOperations(t *testing.T) {
	ref := MovementRef{Reference: "manual count"}

	t.Run("increase", func(t *testing.T) {
		p := createTestProduct(t, 10)
		m, err := p.IncreaseStock(5, ref)
		require.NoError(t, err)
		assert.Equal(t, int64(15), p.StockQuantity)
		assert.Equal(t, MovementTypeIn, m.Type)
		assert.Equal(t, int64(5), m.Quantity)
		assert.Equal(t, int64(10), m.BalanceBefore)
		assert.Equal(t, int64(15), m.BalanceAfter)
		assert.Equal(t, SourceManual, m.SourceType)
	})

	t.Run("decrease", func(t *testing.T) {
		p := createTestProduct(t, 30)
		m, err := p.DecreaseStock(3, ref)
		require.NoError(t, err)
		assert.Equal(t, int64(27), p.StockQuantity)
		assert.Equal(t, MovementTypeOut, m.Type)
		assert.Equal(t, int64(-3), m.Delta())
	})

	t.Run("decrease beyond stock fails without change", func(t *testing.T) {
		p := createTestProduct(t, 2)
		_, err := p.DecreaseStock(5, ref)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.Equal(t, int64(2), p.StockQuantity)
		assert.Empty(t, p.GetDomainEvents())
	})

	t.Run("set records signed delta", func(t *testing.T) {
		p := createTestProduct(t, 20)
		m, err := p.SetStock(12, ref)
		require.NoError(t, err)
		assert.Equal(t, int64(12), p.StockQuantity)
		assert.Equal(t, MovementTypeAdjustment, m.Type)
		assert.Equal(t, int64(-8), m.Quantity)
	})

	t.Run("rejects non-positive quantities", func(t *testing.T) {
		p := createTestProduct(t, 20)
		_, err := p.IncreaseStock(0, ref)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		_, err = p.DecreaseStock(-1, ref)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		_, err = p.SetStock(-1, ref)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("crossing threshold raises low stock event once", func(t *testing.T) {
		p := createTestProduct(t, 12)
		_, err := p.DecreaseStock(2, ref)
		require.NoError(t, err)

		var types []string
		for _, e := range p.GetDomainEvents() {
			types = append(types, e.EventType())
		}
		assert.Equal(t, []string{EventTypeStockChanged, EventTypeStockBelowThreshold}, types)
		assert.True(t, p.IsLowStock())

		p.ClearDomainEvents()
		_, err = p.DecreaseStock(1, ref)
		require.NoError(t, err)
		assert.Len(t, p.GetDomainEvents(), 1)
	})
}

func TestProduct_StockFlags(t *testing.T) {
	p := createTestProduct(t, 0)
	assert.True(t, p.IsOutOfStock())
	assert.True(t, p.IsLowStock())

	p.StockQuantity = 11
	assert.False(t, p.IsLowStock())
	assert.True(t, p.HasSufficientStock(11))
	assert.False(t, p.HasSufficientStock(12))
}

func TestCategory(t *testing.T) {
	c, err := NewCategory(testActor(), " Beverages ", "drinks")
	require.NoError(t, err)
	assert.Equal(t, "Beverages", c.Name)
	assert.Equal(t, 1, c.Version)

	require.NoError(t, c.Update("Drinks", ""))
	assert.Equal(t, 2, c.Version)

	_, err = NewCategory(testActor(), "  ", "")
	assert.True(t, errors.Is(err, shared.ErrValidation))
}
