package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/partner"
)

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	State       string    `json:"state,omitempty"`
	PostalCode  string    `json:"postal_code,omitempty"`
	FullAddress string    `json:"full_address,omitempty"`
	TaxID       string    `json:"tax_id,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int       `json:"version"`
}

// CustomerListFilter represents filter options for customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	City     string `form:"city" binding:"omitempty,max=100"`
	State    string `form:"state" binding:"omitempty,max=100"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=name created_at updated_at"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=200"`
	Email      string `json:"email" binding:"omitempty,email,max=200"`
	Phone      string `json:"phone" binding:"omitempty,max=50"`
	Address    string `json:"address" binding:"omitempty,max=500"`
	City       string `json:"city" binding:"omitempty,max=100"`
	State      string `json:"state" binding:"omitempty,max=100"`
	PostalCode string `json:"postal_code" binding:"omitempty,max=20"`
	TaxID      string `json:"tax_id" binding:"omitempty,max=50"`
	Notes      string `json:"notes"`
}

// UpdateCustomerRequest represents a request to update a customer.
// Nil fields keep their current value.
type UpdateCustomerRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email      *string `json:"email" binding:"omitempty,max=200"`
	Phone      *string `json:"phone" binding:"omitempty,max=50"`
	Address    *string `json:"address" binding:"omitempty,max=500"`
	City       *string `json:"city" binding:"omitempty,max=100"`
	State      *string `json:"state" binding:"omitempty,max=100"`
	PostalCode *string `json:"postal_code" binding:"omitempty,max=20"`
	TaxID      *string `json:"tax_id" binding:"omitempty,max=50"`
	Notes      *string `json:"notes"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          c.ID,
		TenantID:    c.TenantID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		City:        c.City,
		State:       c.State,
		PostalCode:  c.PostalCode,
		FullAddress: c.FullAddress(),
		TaxID:       c.TaxID,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Version:     c.Version,
	}
}

func (r CreateCustomerRequest) toInput() partner.CustomerInput {
	return partner.CustomerInput{
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		TaxID:      r.TaxID,
		Notes:      r.Notes,
	}
}

func (r UpdateCustomerRequest) mergeInto(c *partner.Customer) partner.CustomerInput {
	in := partner.CustomerInput{
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		State:      c.State,
		PostalCode: c.PostalCode,
		TaxID:      c.TaxID,
		Notes:      c.Notes,
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&in.Name, r.Name)
	set(&in.Email, r.Email)
	set(&in.Phone, r.Phone)
	set(&in.Address, r.Address)
	set(&in.City, r.City)
	set(&in.State, r.State)
	set(&in.PostalCode, r.PostalCode)
	set(&in.TaxID, r.TaxID)
	set(&in.Notes, r.Notes)
	return in
}
