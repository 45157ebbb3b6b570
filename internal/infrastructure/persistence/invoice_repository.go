package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/billing"
	"github.com/shopbill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM.
// Items live in invoice_items and are always written with their invoice.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForTenant finds an invoice with its items
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	return r.find(ctx, r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate locks the invoice row and loads it with its items
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	return r.find(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID, id)
}

// FindAllForTenant lists invoices without their items
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	scoped := func() *gorm.DB {
		return r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("tenant_id = ?", tenantID), filter)
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoiceModels []models.InvoiceModel
	if err := paginate(scoped(), filter.Filter, invoiceSort).Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]billing.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices, total, nil
}

// MaxSequenceForYear returns the largest numeric suffix among the tenant's
// INV-<year>-NNNN numbers. Numbers that do not parse are ignored.
func (r *GormInvoiceRepository) MaxSequenceForYear(ctx context.Context, tenantID uuid.UUID, year int) (int64, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND invoice_number LIKE ?", tenantID, billing.InvoiceNumberPrefix(year)+"%").
		Pluck("invoice_number", &numbers).Error; err != nil {
		return 0, err
	}

	var max int64
	for _, number := range numbers {
		if seq, ok := billing.ParseInvoiceSequence(number, year); ok && seq > max {
			max = seq
		}
	}
	return max, nil
}

// CountByCustomer counts invoices of a customer
func (r *GormInvoiceRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// IsProductReferenced reports whether any invoice line references a product
func (r *GormInvoiceRepository) IsProductReferenced(ctx context.Context, tenantID, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InvoiceItemModel{}).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save upserts the invoice row and makes invoice_items match inv.Items:
// removed lines are deleted, the rest are upserted.
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return writeError(err, "invoice")
		}

		keep := make([]uuid.UUID, len(model.Items))
		for i := range model.Items {
			keep[i] = model.Items[i].ID
		}
		stale := tx.Where("invoice_id = ?", inv.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}

		if len(model.Items) == 0 {
			return nil
		}
		if err := tx.Save(&model.Items).Error; err != nil {
			return writeError(err, "invoice line for product")
		}
		return nil
	})
}

// DeleteForTenant deletes an invoice together with its items and payments
func (r *GormInvoiceRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tenant_id = ? AND invoice_id = ?", tenantID, id).
			Delete(&models.PaymentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ? AND invoice_id = ?", tenantID, id).
			Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.InvoiceModel{}, "tenant_id = ? AND id = ?", tenantID, id)
		return deleteResult(result, "invoice")
	})
}

func (r *GormInvoiceRepository) find(ctx context.Context, query *gorm.DB, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := query.Where("tenant_id = ? AND id = ?", tenantID, id).First(&model).Error; err != nil {
		return nil, findError(err, "invoice")
	}

	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", model.ID).
		Order("created_at ASC").Order("id ASC").
		Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// applyFilter applies search, status, customer and date filters
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("LOWER(invoice_number) LIKE ? OR LOWER(notes) LIKE ?",
			likePattern(filter.Search), likePattern(filter.Search))
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.DateFrom != nil {
		query = query.Where("invoice_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("invoice_date <= ?", *filter.DateTo)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date < ?", *filter.DueBefore)
	}
	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
