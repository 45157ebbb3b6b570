package billing

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/billing"
	"github.com/shopbill/backend/internal/domain/inventory"
	"github.com/shopbill/backend/internal/domain/partner"
	"github.com/shopbill/backend/internal/domain/shared"
)

// memoryStore is an in-memory persistence double. Aggregates are stored as
// copies so a test only observes what a service explicitly saved.
type memoryStore struct {
	mu        sync.Mutex
	invoices  map[uuid.UUID]*billing.Invoice
	payments  []billing.Payment
	sequences map[string]int64
	customers map[uuid.UUID]*partner.Customer
	products  map[uuid.UUID]*inventory.Product
	movements []inventory.StockMovement
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		invoices:  make(map[uuid.UUID]*billing.Invoice),
		sequences: make(map[string]int64),
		customers: make(map[uuid.UUID]*partner.Customer),
		products:  make(map[uuid.UUID]*inventory.Product),
	}
}

func (s *memoryStore) scope() *NoOpTransactionScope {
	return NewNoOpTransactionScope(NoOpRepositories{
		Invoices:  &memoryInvoiceRepo{s},
		Payments:  &memoryPaymentRepo{s},
		Sequences: &memorySequenceRepo{s},
		Customers: &memoryCustomerRepo{s},
		Products:  &memoryProductRepo{s},
		Movements: &memoryMovementRepo{s},
	})
}

func (s *memoryStore) product(id uuid.UUID) *inventory.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProduct(s.products[id])
}

func (s *memoryStore) invoice(id uuid.UUID) *billing.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv, ok := s.invoices[id]; ok {
		return cloneInvoice(inv)
	}
	return nil
}

func (s *memoryStore) movementsFor(productID uuid.UUID) []inventory.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []inventory.StockMovement
	for _, m := range s.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

func cloneInvoice(inv *billing.Invoice) *billing.Invoice {
	c := *inv
	c.Items = append([]billing.InvoiceItem(nil), inv.Items...)
	c.ClearDomainEvents()
	return &c
}

func cloneProduct(p *inventory.Product) *inventory.Product {
	if p == nil {
		return nil
	}
	c := *p
	c.ClearDomainEvents()
	return &c
}

type memoryInvoiceRepo struct{ s *memoryStore }

func (r *memoryInvoiceRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, shared.NewNotFoundError("invoice")
	}
	return cloneInvoice(inv), nil
}

func (r *memoryInvoiceRepo) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r *memoryInvoiceRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []billing.Invoice
	for _, inv := range r.s.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, inv.Status) {
			continue
		}
		if filter.CustomerID != nil && inv.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.DueBefore != nil && !inv.DueDate.Before(*filter.DueBefore) {
			continue
		}
		out = append(out, *cloneInvoice(inv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber < out[j].InvoiceNumber })
	return out, int64(len(out)), nil
}

func (r *memoryInvoiceRepo) MaxSequenceForYear(_ context.Context, tenantID uuid.UUID, year int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var max int64
	for _, inv := range r.s.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if seq, ok := billing.ParseInvoiceSequence(inv.InvoiceNumber, year); ok && seq > max {
			max = seq
		}
	}
	return max, nil
}

func (r *memoryInvoiceRepo) CountByCustomer(_ context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, inv := range r.s.invoices {
		if inv.TenantID == tenantID && inv.CustomerID == customerID {
			n++
		}
	}
	return n, nil
}

func (r *memoryInvoiceRepo) IsProductReferenced(_ context.Context, tenantID, productID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if _, ok := inv.RequiredStock()[productID]; ok {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryInvoiceRepo) Save(_ context.Context, inv *billing.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (r *memoryInvoiceRepo) DeleteForTenant(_ context.Context, tenantID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return shared.NewNotFoundError("invoice")
	}
	delete(r.s.invoices, id)
	kept := r.s.payments[:0]
	for _, p := range r.s.payments {
		if p.InvoiceID != id {
			kept = append(kept, p)
		}
	}
	r.s.payments = kept
	return nil
}

type memoryPaymentRepo struct{ s *memoryStore }

func (r *memoryPaymentRepo) Create(_ context.Context, p *billing.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.payments = append(r.s.payments, *p)
	return nil
}

func (r *memoryPaymentRepo) FindByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) ([]billing.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []billing.Payment
	for _, p := range r.s.payments {
		if p.TenantID == tenantID && p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memorySequenceRepo struct{ s *memoryStore }

func (r *memorySequenceRepo) Reserve(_ context.Context, tenantID uuid.UUID, year int, floor int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := tenantID.String() + billing.InvoiceNumberPrefix(year)
	next := r.s.sequences[key]
	if floor > next {
		next = floor
	}
	next++
	r.s.sequences[key] = next
	return next, nil
}

type memoryCustomerRepo struct{ s *memoryStore }

func (r *memoryCustomerRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, shared.NewNotFoundError("customer")
	}
	copied := *c
	return &copied, nil
}

func (r *memoryCustomerRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]partner.Customer, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []partner.Customer
	for _, c := range r.s.customers {
		if c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memoryCustomerRepo) ExistsByName(_ context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if c.TenantID == tenantID && strings.EqualFold(c.Name, name) && (excludeID == nil || c.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryCustomerRepo) Save(_ context.Context, c *partner.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *c
	r.s.customers[c.ID] = &copied
	return nil
}

func (r *memoryCustomerRepo) DeleteForTenant(_ context.Context, _, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.customers, id)
	return nil
}

type memoryProductRepo struct{ s *memoryStore }

func (r *memoryProductRepo) FindByIDForTenant(_ context.Context, tenantID, id uuid.UUID) (*inventory.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, shared.NewNotFoundError("product")
	}
	return cloneProduct(p), nil
}

func (r *memoryProductRepo) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.Product, error) {
	return r.FindByIDForTenant(ctx, tenantID, id)
}

func (r *memoryProductRepo) FindByIDsForUpdate(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*inventory.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*inventory.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok && p.TenantID == tenantID {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (r *memoryProductRepo) FindAllForTenant(context.Context, uuid.UUID, shared.Filter) ([]inventory.Product, int64, error) {
	return nil, 0, nil
}

func (r *memoryProductRepo) FindLowStock(context.Context, uuid.UUID, shared.Filter) ([]inventory.Product, int64, error) {
	return nil, 0, nil
}

func (r *memoryProductRepo) ExistsBySKU(context.Context, uuid.UUID, string, *uuid.UUID) (bool, error) {
	return false, nil
}

func (r *memoryProductRepo) NextSKU(context.Context, uuid.UUID) (string, error) {
	return "SKU-00001", nil
}

func (r *memoryProductRepo) CountByCategory(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *memoryProductRepo) Save(_ context.Context, p *inventory.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = cloneProduct(p)
	return nil
}

func (r *memoryProductRepo) SaveAll(ctx context.Context, products []*inventory.Product) error {
	for _, p := range products {
		if err := r.Save(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryProductRepo) DeleteForTenant(_ context.Context, _, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

type memoryMovementRepo struct{ s *memoryStore }

func (r *memoryMovementRepo) Create(_ context.Context, m *inventory.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *memoryMovementRepo) CreateBatch(ctx context.Context, movements []*inventory.StockMovement) error {
	for _, m := range movements {
		if err := r.Create(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryMovementRepo) FindByProduct(_ context.Context, _, productID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, int64, error) {
	out := r.s.movementsFor(productID)
	return out, int64(len(out)), nil
}

func (r *memoryMovementRepo) FindBySource(_ context.Context, _ uuid.UUID, sourceType inventory.SourceType, sourceID uuid.UUID) ([]inventory.StockMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []inventory.StockMovement
	for _, m := range r.s.movements {
		if m.SourceType == sourceType && m.SourceID != nil && *m.SourceID == sourceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func containsStatus(statuses []billing.InvoiceStatus, s billing.InvoiceStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}
