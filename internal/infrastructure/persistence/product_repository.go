package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/inventory"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopbill/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GeneratedSKUPrefix prefixes SKUs assigned to products created without one
const GeneratedSKUPrefix = "PRD-"

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByIDForTenant finds a product by ID within a tenant
func (r *GormProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, findError(err, "product")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a product with SELECT ... FOR UPDATE
func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, findError(err, "product")
	}
	return model.ToDomain(), nil
}

// FindByIDsForUpdate locks the given products in ascending ID order.
// Missing IDs are simply absent from the result.
func (r *GormProductRepository) FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*inventory.Product, error) {
	if len(ids) == 0 {
		return []*inventory.Product{}, nil
	}

	var productModels []models.ProductModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Order("id ASC").
		Find(&productModels).Error; err != nil {
		return nil, err
	}

	products := make([]*inventory.Product, len(productModels))
	for i := range productModels {
		products[i] = productModels[i].ToDomain()
	}
	return products, nil
}

// FindAllForTenant lists products with search, category and active filters
func (r *GormProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Product, int64, error) {
	return r.list(ctx, tenantID, filter, false)
}

// FindLowStock lists products whose stock is at or below their threshold
func (r *GormProductRepository) FindLowStock(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.Product, int64, error) {
	return r.list(ctx, tenantID, filter, true)
}

// ExistsBySKU checks if a SKU is taken within a tenant, ignoring excludeID
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("tenant_id = ? AND sku = ?", tenantID, strings.TrimSpace(sku))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextSKU returns PRD-NNNN, one past the highest generated SKU of the tenant
func (r *GormProductRepository) NextSKU(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var skus []string
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("tenant_id = ? AND sku LIKE ?", tenantID, GeneratedSKUPrefix+"%").
		Pluck("sku", &skus).Error; err != nil {
		return "", err
	}

	var max int64
	for _, sku := range skus {
		n, err := strconv.ParseInt(strings.TrimPrefix(sku, GeneratedSKUPrefix), 10, 64)
		if err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%04d", GeneratedSKUPrefix, max+1), nil
}

// CountByCategory counts products in a category
func (r *GormProductRepository) CountByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("tenant_id = ? AND category_id = ?", tenantID, categoryID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *inventory.Product) error {
	model := models.ProductModelFromDomain(product)
	return writeError(r.db.WithContext(ctx).Save(model).Error, "product")
}

// SaveAll updates several products
func (r *GormProductRepository) SaveAll(ctx context.Context, products []*inventory.Product) error {
	for _, p := range products {
		if err := r.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// DeleteForTenant deletes a product within a tenant
func (r *GormProductRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	return deleteResult(result, "product")
}

func (r *GormProductRepository) list(ctx context.Context, tenantID uuid.UUID, filter shared.Filter, lowStock bool) ([]inventory.Product, int64, error) {
	scoped := func() *gorm.DB {
		query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("tenant_id = ?", tenantID), filter)
		if lowStock {
			query = query.Where("stock_quantity <= low_stock_threshold")
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var productModels []models.ProductModel
	if err := paginate(scoped(), filter, productSort).Find(&productModels).Error; err != nil {
		return nil, 0, err
	}

	products := make([]inventory.Product, len(productModels))
	for i := range productModels {
		products[i] = *productModels[i].ToDomain()
	}
	return products, total, nil
}

// applyFilter applies search and the category_id / is_active filters
func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(description) LIKE ?",
			pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "category_id":
			query = query.Where("category_id = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		}
	}
	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ inventory.ProductRepository = (*GormProductRepository)(nil)
