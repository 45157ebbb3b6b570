package partner

import (
	"net/mail"
	"strings"

	"github.com/shopbill/backend/internal/domain/shared"
)

// Customer is a buyer invoiced by a shop. Names are unique per shop.
type Customer struct {
	shared.TenantAggregateRoot
	Name       string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	TaxID      string
	Notes      string
}

// CustomerInput carries the editable attributes of a customer
type CustomerInput struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	TaxID      string
	Notes      string
}

// NewCustomer creates a customer
func NewCustomer(actor shared.Actor, in CustomerInput) (*Customer, error) {
	c := &Customer{TenantAggregateRoot: shared.NewTenantAggregateRootFor(actor)}
	if err := c.apply(in); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the customer's details
func (c *Customer) Update(in CustomerInput) error {
	if err := c.apply(in); err != nil {
		return err
	}
	c.Touch()
	c.IncrementVersion()
	return nil
}

func (c *Customer) apply(in CustomerInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.NewValidationError("customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("customer name cannot exceed 200 characters")
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewValidationError("invalid email address %q", email)
		}
	}
	taxID := strings.ToUpper(strings.TrimSpace(in.TaxID))
	if len(taxID) > 50 {
		return shared.NewValidationError("tax ID cannot exceed 50 characters")
	}

	c.Name = name
	c.Email = email
	c.Phone = strings.TrimSpace(in.Phone)
	c.Address = in.Address
	c.City = in.City
	c.State = in.State
	c.PostalCode = in.PostalCode
	c.TaxID = taxID
	c.Notes = in.Notes
	return nil
}

// FullAddress joins the non-empty address parts
func (c *Customer) FullAddress() string {
	var parts []string
	for _, p := range []string{c.Address, c.City, c.State, c.PostalCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
