package inventory

import (
	"strings"

	"github.com/shopbill/backend/internal/domain/shared"
)

// Category groups products of a shop. Names are unique per shop.
type Category struct {
	shared.TenantAggregateRoot
	Name        string
	Description string
}

// NewCategory creates a category
func NewCategory(actor shared.Actor, name, description string) (*Category, error) {
	name, err := validateCategoryName(name)
	if err != nil {
		return nil, err
	}
	return &Category{
		TenantAggregateRoot: shared.NewTenantAggregateRootFor(actor),
		Name:                name,
		Description:         description,
	}, nil
}

// Update renames the category
func (c *Category) Update(name, description string) error {
	name, err := validateCategoryName(name)
	if err != nil {
		return err
	}
	c.Name = name
	c.Description = description
	c.Touch()
	c.IncrementVersion()
	return nil
}

func validateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", shared.NewValidationError("category name cannot be empty")
	}
	if len(name) > 100 {
		return "", shared.NewValidationError("category name cannot exceed 100 characters")
	}
	return name, nil
}
