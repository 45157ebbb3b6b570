package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/inventory"
	"github.com/shopbill/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CategoryService handles product category operations
type CategoryService struct {
	categoryRepo inventory.CategoryRepository
	productRepo  inventory.ProductRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo inventory.CategoryRepository, productRepo inventory.ProductRepository, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// Create adds a category
func (s *CategoryService) Create(ctx context.Context, actor shared.Actor, req CreateCategoryRequest) (*CategoryResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	category, err := inventory.NewCategory(actor, req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, actor.TenantID, category.Name, nil); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info("category created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("category_id", category.ID.String()),
	)
	response := ToCategoryResponse(category)
	return &response, nil
}

// GetByID retrieves a category by ID
func (s *CategoryService) GetByID(ctx context.Context, actor shared.Actor, categoryID uuid.UUID) (*CategoryResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.FindByIDForTenant(ctx, actor.TenantID, categoryID)
	if err != nil {
		return nil, err
	}
	response := ToCategoryResponse(category)
	return &response, nil
}

// List retrieves categories ordered by name
func (s *CategoryService) List(ctx context.Context, actor shared.Actor, filter CategoryListFilter) ([]CategoryResponse, int64, error) {
	if err := actor.Validate(); err != nil {
		return nil, 0, err
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "name",
		OrderDir: "asc",
		Search:   filter.Search,
	}.Normalize()

	categories, total, err := s.categoryRepo.FindAllForTenant(ctx, actor.TenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i])
	}
	return responses, total, nil
}

// Update renames or re-describes a category
func (s *CategoryService) Update(ctx context.Context, actor shared.Actor, categoryID uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	category, err := s.categoryRepo.FindByIDForTenant(ctx, actor.TenantID, categoryID)
	if err != nil {
		return nil, err
	}

	name, description := category.Name, category.Description
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if err := category.Update(name, description); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, actor.TenantID, category.Name, &category.ID); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	response := ToCategoryResponse(category)
	return &response, nil
}

// Delete removes a category that has no products
func (s *CategoryService) Delete(ctx context.Context, actor shared.Actor, categoryID uuid.UUID) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if _, err := s.categoryRepo.FindByIDForTenant(ctx, actor.TenantID, categoryID); err != nil {
		return err
	}

	count, err := s.productRepo.CountByCategory(ctx, actor.TenantID, categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("category has %d products and cannot be deleted", count))
	}
	return s.categoryRepo.DeleteForTenant(ctx, actor.TenantID, categoryID)
}

func (s *CategoryService) ensureUniqueName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) error {
	exists, err := s.categoryRepo.ExistsByName(ctx, tenantID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("category %q already exists", name))
	}
	return nil
}
