package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/billing"
	"github.com/shopbill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	return r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error
}

// FindByInvoice lists the payments of an invoice in the order they were received
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("paid_at ASC").Order("created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	payments := make([]billing.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = paymentModels[i].ToDomain()
	}
	return payments, nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)

// GormInvoiceSequenceRepository implements InvoiceSequenceRepository with one
// counter row per tenant and year
type GormInvoiceSequenceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceSequenceRepository creates a new GormInvoiceSequenceRepository
func NewGormInvoiceSequenceRepository(db *gorm.DB) *GormInvoiceSequenceRepository {
	return &GormInvoiceSequenceRepository{db: db}
}

// Reserve creates the counter row if needed, locks it and advances it to
// max(last, floor) + 1. The lock is held until the caller's transaction ends,
// so concurrent reservations for the same shop and year queue up.
func (r *GormInvoiceSequenceRepository) Reserve(ctx context.Context, tenantID uuid.UUID, year int, floor int64) (int64, error) {
	db := r.db.WithContext(ctx)

	seed := models.InvoiceSequenceModel{TenantID: tenantID, Year: year, UpdatedAt: time.Now()}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, err
	}

	var counter models.InvoiceSequenceModel
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND year = ?", tenantID, year).
		First(&counter).Error; err != nil {
		return 0, err
	}

	next := counter.LastValue
	if floor > next {
		next = floor
	}
	next++

	if err := db.Model(&models.InvoiceSequenceModel{}).
		Where("tenant_id = ? AND year = ?", tenantID, year).
		Updates(map[string]any{"last_value": next, "updated_at": time.Now()}).Error; err != nil {
		return 0, err
	}
	return next, nil
}

// Ensure GormInvoiceSequenceRepository implements InvoiceSequenceRepository
var _ billing.InvoiceSequenceRepository = (*GormInvoiceSequenceRepository)(nil)
