package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is a consistency boundary that records the events its
// changes raise until the service publishes them
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot adds an optimistic version counter and the pending event
// list to BaseEntity. Version starts at 1 and is bumped on every change.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

func (a *BaseAggregateRoot) GetVersion() int                  { return a.Version }
func (a *BaseAggregateRoot) IncrementVersion()                { a.Version++ }
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) { a.pending = append(a.pending, event) }
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent   { return a.pending }
func (a *BaseAggregateRoot) ClearDomainEvents()               { a.pending = nil }

// TenantAggregateRoot is an aggregate owned by one shop
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID  uuid.UUID
	CreatedBy *uuid.UUID
}

// NewTenantAggregateRootFor starts an aggregate in the actor's shop, stamped
// with the acting user when there is one
func NewTenantAggregateRootFor(actor Actor) TenantAggregateRoot {
	root := TenantAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), TenantID: actor.TenantID}
	if actor.UserID != uuid.Nil {
		userID := actor.UserID
		root.CreatedBy = &userID
	}
	return root
}

func (t *TenantAggregateRoot) BelongsTo(tenantID uuid.UUID) bool { return t.TenantID == tenantID }

// DrainEvents takes the pending events of the aggregates, in order, leaving
// each aggregate with none
func DrainEvents[T AggregateRoot](aggregates ...T) []DomainEvent {
	var events []DomainEvent
	for _, a := range aggregates {
		events = append(events, a.GetDomainEvents()...)
		a.ClearDomainEvents()
	}
	return events
}
