package models

import (
	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer aggregate root.
type CustomerModel struct {
	AggregateModel
	TenantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_customers_tenant_name,priority:1"`
	Name       string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_customers_tenant_name,priority:2"`
	Email      string    `gorm:"type:varchar(200);index"`
	Phone      string    `gorm:"type:varchar(50);index"`
	Address    string    `gorm:"type:text"`
	City       string    `gorm:"type:varchar(100)"`
	State      string    `gorm:"type:varchar(100)"`
	PostalCode string    `gorm:"type:varchar(20)"`
	TaxID      string    `gorm:"type:varchar(50)"`
	Notes      string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot: m.TenantAggregateRoot(m.TenantID),
		Name:                m.Name,
		Email:               m.Email,
		Phone:               m.Phone,
		Address:             m.Address,
		City:                m.City,
		State:               m.State,
		PostalCode:          m.PostalCode,
		TaxID:               m.TaxID,
		Notes:               m.Notes,
	}
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.TenantID = m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Address = c.Address
	m.City = c.City
	m.State = c.State
	m.PostalCode = c.PostalCode
	m.TaxID = c.TaxID
	m.Notes = c.Notes
	return m
}
