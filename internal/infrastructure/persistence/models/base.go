package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// Tenant-scoped models declare tenant_id themselves so that each table can
// put it first in its own unique indexes.
type AggregateModel struct {
	BaseModel
	Version   int        `gorm:"not null;default:1"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

// FromDomainTenantAggregateRoot populates AggregateModel from a domain
// TenantAggregateRoot and returns the tenant ID for the caller's column
func (m *AggregateModel) FromDomainTenantAggregateRoot(t shared.TenantAggregateRoot) uuid.UUID {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.Version = t.Version
	m.CreatedBy = t.CreatedBy
	return t.TenantID
}

// TenantAggregateRoot rebuilds the domain root from the persisted columns
func (m *AggregateModel) TenantAggregateRoot(tenantID uuid.UUID) shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		TenantID:  tenantID,
		CreatedBy: m.CreatedBy,
	}
}
