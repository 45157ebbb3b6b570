package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/inventory"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductDefaults are the shop-wide values applied to new products
type ProductDefaults struct {
	TaxRate           decimal.Decimal
	LowStockThreshold int64
}

// ProductService handles product catalog operations
type ProductService struct {
	scope          TransactionScope
	productRepo    inventory.ProductRepository
	categoryRepo   inventory.CategoryRepository
	usageChecker   inventory.ProductUsageChecker
	eventPublisher shared.EventPublisher
	defaults       *ProductDefaults
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	scope TransactionScope,
	productRepo inventory.ProductRepository,
	categoryRepo inventory.CategoryRepository,
	usageChecker inventory.ProductUsageChecker,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		scope:        scope,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		usageChecker: usageChecker,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetDefaults overrides the built-in tax rate and low-stock threshold
func (s *ProductService) SetDefaults(defaults ProductDefaults) {
	s.defaults = &defaults
}

// Create adds a product to the shop catalog. A SKU is generated when none is given.
func (s *ProductService) Create(ctx context.Context, actor shared.Actor, req CreateProductRequest) (*ProductResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, actor.TenantID, req.CategoryID); err != nil {
		return nil, err
	}

	in := inventory.ProductInput{
		Name:              req.Name,
		SKU:               req.SKU,
		Description:       req.Description,
		Unit:              req.Unit,
		CategoryID:        req.CategoryID,
		Price:             req.Price,
		TaxRate:           req.TaxRate,
		LowStockThreshold: req.LowStockThreshold,
	}
	if s.defaults != nil {
		if in.TaxRate == nil {
			rate := s.defaults.TaxRate
			in.TaxRate = &rate
		}
		if in.LowStockThreshold == nil {
			threshold := s.defaults.LowStockThreshold
			in.LowStockThreshold = &threshold
		}
	}

	product, err := inventory.NewProduct(actor, in)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		products := repos.ProductRepo()
		if product.SKU == "" {
			sku, err := products.NextSKU(ctx, actor.TenantID)
			if err != nil {
				return fmt.Errorf("generate sku: %w", err)
			}
			product.AssignSKU(sku)
		} else if err := ensureUniqueSKU(ctx, products, actor.TenantID, product.SKU, nil); err != nil {
			return err
		}
		return products.Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
	)
	s.publish(ctx, product)

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, actor shared.Actor, productID uuid.UUID) (*ProductResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByIDForTenant(ctx, actor.TenantID, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, actor shared.Actor, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if err := actor.Validate(); err != nil {
		return nil, 0, err
	}

	domainFilter := toProductFilter(filter)
	var (
		products []inventory.Product
		total    int64
		err      error
	)
	if filter.LowStock != nil && *filter.LowStock {
		products, total, err = s.productRepo.FindLowStock(ctx, actor.TenantID, domainFilter)
	} else {
		products, total, err = s.productRepo.FindAllForTenant(ctx, actor.TenantID, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// Update changes catalog attributes of a product. Stock is not editable here.
func (s *ProductService) Update(ctx context.Context, actor shared.Actor, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, actor.TenantID, req.CategoryID); err != nil {
		return nil, err
	}

	var product *inventory.Product
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		products := repos.ProductRepo()
		var err error
		product, err = products.FindByIDForUpdate(ctx, actor.TenantID, productID)
		if err != nil {
			return err
		}

		in := mergeProductInput(product, req)
		if in.SKU != "" && in.SKU != product.SKU {
			if err := ensureUniqueSKU(ctx, products, actor.TenantID, in.SKU, &product.ID); err != nil {
				return err
			}
		}
		if err := product.Update(in); err != nil {
			return err
		}
		if req.IsActive != nil {
			if *req.IsActive {
				product.Activate()
			} else {
				product.Deactivate()
			}
		}
		return products.Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product updated",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("product_id", product.ID.String()),
	)
	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product that no invoice line references
func (s *ProductService) Delete(ctx context.Context, actor shared.Actor, productID uuid.UUID) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if _, err := s.productRepo.FindByIDForTenant(ctx, actor.TenantID, productID); err != nil {
		return err
	}

	if s.usageChecker != nil {
		referenced, err := s.usageChecker.IsProductReferenced(ctx, actor.TenantID, productID)
		if err != nil {
			return err
		}
		if referenced {
			return shared.NewDomainError(shared.CodeInvalidState,
				"product is used on invoices and cannot be deleted; deactivate it instead")
		}
	}

	if err := s.productRepo.DeleteForTenant(ctx, actor.TenantID, productID); err != nil {
		return err
	}
	s.logger.Info("product deleted",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("product_id", productID.String()),
	)
	return nil
}

func (s *ProductService) ensureCategory(ctx context.Context, tenantID uuid.UUID, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	_, err := s.categoryRepo.FindByIDForTenant(ctx, tenantID, *categoryID)
	return err
}

func (s *ProductService) publish(ctx context.Context, products ...*inventory.Product) {
	publishEvents(ctx, s.eventPublisher, s.logger, shared.DrainEvents(products...))
}

func ensureUniqueSKU(ctx context.Context, repo inventory.ProductRepository, tenantID uuid.UUID, sku string, excludeID *uuid.UUID) error {
	exists, err := repo.ExistsBySKU(ctx, tenantID, sku, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("product with SKU %s already exists", sku))
	}
	return nil
}

func mergeProductInput(p *inventory.Product, req UpdateProductRequest) inventory.ProductInput {
	in := inventory.ProductInput{
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		Unit:        p.Unit,
		CategoryID:  p.CategoryID,
		Price:       p.Price,
	}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.SKU != nil {
		in.SKU = *req.SKU
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Unit != nil {
		in.Unit = *req.Unit
	}
	if req.CategoryID != nil {
		in.CategoryID = req.CategoryID
	} else if req.ClearCategory {
		in.CategoryID = nil
	}
	if req.Price != nil {
		in.Price = *req.Price
	}
	in.TaxRate = req.TaxRate
	in.LowStockThreshold = req.LowStockThreshold
	return in
}

func toProductFilter(filter ProductListFilter) shared.Filter {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if f.OrderBy == "" {
		f.OrderBy = "name"
		if f.OrderDir == "" {
			f.OrderDir = "asc"
		}
	}
	if filter.CategoryID != nil {
		f.Filters["category_id"] = *filter.CategoryID
	}
	if filter.IsActive != nil {
		f.Filters["is_active"] = *filter.IsActive
	}
	return f.Normalize()
}

// publishEvents publishes events after commit. Publish failures are logged
// and never fail the operation that produced them.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events []shared.DomainEvent) {
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Warn("failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}
