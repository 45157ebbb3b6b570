package inventory

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockOrder(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	c := uuid.MustParse("10000000-0000-0000-0000-000000000000")

	ids := LockOrder(map[uuid.UUID]int64{c: 1, a: 1, b: 1})
	assert.Equal(t, []uuid.UUID{a, b, c}, ids)
}

func TestDeductAll(t *testing.T) {
	ref := MovementRef{SourceType: SourceInvoice, Reference: "INV-2025-0001"}

	t.Run("deducts every product", func(t *testing.T) {
		p1 := createTestProduct(t, 10)
		p2 := createTestProduct(t, 4)

		movements, err := DeductAll([]*Product{p1, p2}, map[uuid.UUID]int64{p1.ID: 3, p2.ID: 4}, ref)
		require.NoError(t, err)
		assert.Len(t, movements, 2)
		assert.Equal(t, int64(7), p1.StockQuantity)
		assert.Equal(t, int64(0), p2.StockQuantity)
		for _, m := range movements {
			assert.Equal(t, MovementTypeOut, m.Type)
			assert.Equal(t, SourceInvoice, m.SourceType)
			assert.Equal(t, "INV-2025-0001", m.Reference)
		}
	})

	t.Run("any shortfall leaves all products unchanged", func(t *testing.T) {
		p1 := createTestProduct(t, 10)
		p2 := createTestProduct(t, 2)
		p2.Name = "Gizmo"

		_, err := DeductAll([]*Product{p1, p2}, map[uuid.UUID]int64{p1.ID: 3, p2.ID: 5}, ref)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
		assert.Contains(t, err.Error(), "Gizmo (requested 5, available 2)")
		assert.Equal(t, int64(10), p1.StockQuantity)
		assert.Equal(t, int64(2), p2.StockQuantity)
		assert.Empty(t, p1.GetDomainEvents())
	})

	t.Run("missing product is not found", func(t *testing.T) {
		p1 := createTestProduct(t, 10)
		_, err := DeductAll([]*Product{p1}, map[uuid.UUID]int64{uuid.New(): 1}, ref)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("rejects non-positive requirement", func(t *testing.T) {
		p1 := createTestProduct(t, 10)
		_, err := DeductAll([]*Product{p1}, map[uuid.UUID]int64{p1.ID: 0}, ref)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestRestoreAll(t *testing.T) {
	p1 := createTestProduct(t, 7)
	movements, err := RestoreAll([]*Product{p1}, map[uuid.UUID]int64{p1.ID: 3},
		MovementRef{SourceType: SourceInvoiceCancel})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, int64(10), p1.StockQuantity)
	assert.Equal(t, MovementTypeIn, movements[0].Type)
	assert.Equal(t, SourceInvoiceCancel, movements[0].SourceType)
}
