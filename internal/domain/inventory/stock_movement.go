package inventory

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementTypeIn         MovementType = "in"
	MovementTypeOut        MovementType = "out"
	MovementTypeAdjustment MovementType = "adjustment"
)

// IsValid checks if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment:
		return true
	}
	return false
}

// SourceType identifies what caused a stock movement
type SourceType string

const (
	SourceManual        SourceType = "manual"
	SourceInvoice       SourceType = "invoice"
	SourceInvoiceCancel SourceType = "invoice_cancel"
)

// MovementRef describes the origin of a stock change for the audit trail
type MovementRef struct {
	SourceType SourceType
	SourceID   *uuid.UUID
	Reference  string
	Notes      string
	ActorID    *uuid.UUID
}

// StockMovement is the immutable audit record of one stock change.
// Quantity is the magnitude for in/out and the signed delta for adjustments.
type StockMovement struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	ProductID     uuid.UUID
	Type          MovementType
	Quantity      int64
	BalanceBefore int64
	BalanceAfter  int64
	SourceType    SourceType
	SourceID      *uuid.UUID
	Reference     string
	Notes         string
	CreatedBy     *uuid.UUID
	CreatedAt     time.Time
}

func newStockMovement(p *Product, movementType MovementType, quantity, before, after int64, ref MovementRef) *StockMovement {
	sourceType := ref.SourceType
	if sourceType == "" {
		sourceType = SourceManual
	}
	return &StockMovement{
		ID:            uuid.New(),
		TenantID:      p.TenantID,
		ProductID:     p.ID,
		Type:          movementType,
		Quantity:      quantity,
		BalanceBefore: before,
		BalanceAfter:  after,
		SourceType:    sourceType,
		SourceID:      ref.SourceID,
		Reference:     ref.Reference,
		Notes:         ref.Notes,
		CreatedBy:     ref.ActorID,
		CreatedAt:     time.Now(),
	}
}

// Delta returns the signed change this movement applied to stock
func (m *StockMovement) Delta() int64 {
	return m.BalanceAfter - m.BalanceBefore
}
