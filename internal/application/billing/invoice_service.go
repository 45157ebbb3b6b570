package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appinv "github.com/shopbill/backend/internal/application/inventory"
	"github.com/shopbill/backend/internal/domain/billing"
	"github.com/shopbill/backend/internal/domain/inventory"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopbill/backend/internal/domain/shared/valueobject"
	"github.com/shopbill/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// InvoiceService handles the invoice lifecycle: drafting, line items,
// finalization against stock, cancellation and queries.
//
// Every mutating operation runs in one transaction that first locks the
// invoice row. Domain events are published only after the commit.
type InvoiceService struct {
	scope          TransactionScope
	invoiceRepo    billing.InvoiceRepository
	clock          shared.Clock
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	dueDays        int
	manualTaxRate  decimal.Decimal
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(scope TransactionScope, invoiceRepo billing.InvoiceRepository, clock shared.Clock, logger *zap.Logger) *InvoiceService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		scope:         scope,
		invoiceRepo:   invoiceRepo,
		clock:         clock,
		logger:        logger,
		dueDays:       billing.DefaultDueDays,
		manualTaxRate: valueobject.DefaultTaxRate,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetDefaultDueDays sets the payment term used when no due date is given
func (s *InvoiceService) SetDefaultDueDays(days int) {
	if days > 0 {
		s.dueDays = days
	}
}

// SetDefaultTaxRate sets the rate of lines without a product when the
// request names none. Invalid rates are ignored.
func (s *InvoiceService) SetDefaultTaxRate(rate decimal.Decimal) {
	if _, err := valueobject.NewTaxRate(rate); err == nil {
		s.manualTaxRate = rate
	}
}

// Create drafts a new invoice, allocates its number and adds the initial lines
func (s *InvoiceService) Create(ctx context.Context, actor shared.Actor, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	now := s.clock.Now()

	invoiceDate, err := parseDate(req.InvoiceDate, "invoice_date")
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDate(req.DueDate, "due_date")
	if err != nil {
		return nil, err
	}
	if invoiceDate == nil {
		invoiceDate = &now
	}

	var inv *billing.Invoice
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.CustomerRepo().FindByIDForTenant(ctx, actor.TenantID, req.CustomerID); err != nil {
			return err
		}

		var err error
		inv, err = billing.NewInvoice(actor, req.CustomerID, *invoiceDate, dueDate, s.dueDays)
		if err != nil {
			return err
		}
		for _, item := range req.Items {
			if err := s.addItem(ctx, repos, actor.TenantID, inv, item); err != nil {
				return err
			}
		}
		if req.Discount != nil {
			if err := inv.SetDiscount(*req.Discount); err != nil {
				return err
			}
		}
		inv.SetNotes(req.Notes, req.Terms)

		number, err := allocateInvoiceNumber(ctx, repos, actor.TenantID, now.Year())
		if err != nil {
			return err
		}
		if err := inv.AssignNumber(number); err != nil {
			return err
		}
		return repos.InvoiceRepo().Save(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int("item_count", inv.ItemCount()),
		zap.String("total_amount", inv.TotalAmount.StringFixed(2)),
	)
	s.publish(ctx, inv)

	response := ToInvoiceResponse(inv, now)
	return &response, nil
}

// GetByID retrieves an invoice with its lines
func (s *InvoiceService) GetByID(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	inv, err := s.invoiceRepo.FindByIDForTenant(ctx, actor.TenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv, s.clock.Now())
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, actor shared.Actor, filter InvoiceListFilter) ([]InvoiceListItemResponse, int64, error) {
	if err := actor.Validate(); err != nil {
		return nil, 0, err
	}
	now := s.clock.Now()

	domainFilter, err := s.toDomainFilter(filter, now)
	if err != nil {
		return nil, 0, err
	}
	return s.list(ctx, actor.TenantID, domainFilter, now)
}

// ListPending retrieves invoices that still expect money (due or partial)
func (s *InvoiceService) ListPending(ctx context.Context, actor shared.Actor, filter InvoiceListFilter) ([]InvoiceListItemResponse, int64, error) {
	if err := actor.Validate(); err != nil {
		return nil, 0, err
	}
	now := s.clock.Now()

	filter.Status = ""
	domainFilter, err := s.toDomainFilter(filter, now)
	if err != nil {
		return nil, 0, err
	}
	domainFilter.Statuses = billing.PendingStatuses
	return s.list(ctx, actor.TenantID, domainFilter, now)
}

// ListOverdue retrieves pending invoices whose due date has passed
func (s *InvoiceService) ListOverdue(ctx context.Context, actor shared.Actor, filter InvoiceListFilter) ([]InvoiceListItemResponse, int64, error) {
	filter.Status = string(billing.InvoiceStatusOverdue)
	return s.List(ctx, actor, filter)
}

// Update changes header fields. Customer and discount are frozen once stock
// has been applied; notes, terms and due date stay editable.
func (s *InvoiceService) Update(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	var dueDate *time.Time
	if req.DueDate != nil {
		var err error
		if dueDate, err = parseDate(*req.DueDate, "due_date"); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, actor, invoiceID, "invoice updated", func(repos TransactionalRepositories, inv *billing.Invoice) error {
		if req.CustomerID != nil && *req.CustomerID != inv.CustomerID {
			if _, err := repos.CustomerRepo().FindByIDForTenant(ctx, actor.TenantID, *req.CustomerID); err != nil {
				return err
			}
			if err := inv.ChangeCustomer(*req.CustomerID); err != nil {
				return err
			}
		}
		if req.Discount != nil {
			if err := inv.SetDiscount(*req.Discount); err != nil {
				return err
			}
		}
		if dueDate != nil {
			if err := inv.SetDueDate(*dueDate); err != nil {
				return err
			}
		}
		if req.Notes != nil || req.Terms != nil {
			notes, terms := inv.Notes, inv.Terms
			if req.Notes != nil {
				notes = *req.Notes
			}
			if req.Terms != nil {
				terms = *req.Terms
			}
			inv.SetNotes(notes, terms)
		}
		return nil
	})
}

// AddItem adds a line, or increases the quantity of the product's existing line
func (s *InvoiceService) AddItem(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID, req AddItemRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, actor, invoiceID, "invoice item added", func(repos TransactionalRepositories, inv *billing.Invoice) error {
		return s.addItem(ctx, repos, actor.TenantID, inv, req)
	})
}

// UpdateItem changes a line
func (s *InvoiceService) UpdateItem(ctx context.Context, actor shared.Actor, invoiceID, itemID uuid.UUID, req UpdateItemRequest) (*InvoiceResponse, error) {
	return s.mutate(ctx, actor, invoiceID, "invoice item updated", func(_ TransactionalRepositories, inv *billing.Invoice) error {
		_, err := inv.UpdateItem(itemID, req.toUpdate())
		return err
	})
}

// RemoveItem deletes a line
func (s *InvoiceService) RemoveItem(ctx context.Context, actor shared.Actor, invoiceID, itemID uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, actor, invoiceID, "invoice item removed", func(_ TransactionalRepositories, inv *billing.Invoice) error {
		return inv.RemoveItem(itemID)
	})
}

// Send marks a draft as sent to the customer
func (s *InvoiceService) Send(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	return s.mutate(ctx, actor, invoiceID, "invoice sent", func(_ TransactionalRepositories, inv *billing.Invoice) error {
		return inv.Send()
	})
}

// Finalize deducts the stock of every product line and freezes the invoice.
// Either all products are deducted and the invoice is marked stock-applied,
// or the transaction rolls back and nothing changes.
func (s *InvoiceService) Finalize(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID) (_ *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "finalize", invoiceSpanAttrs(actor, invoiceID)...)
	defer func() { telemetry.EndSpan(span, err) }()

	var products []*inventory.Product
	resp, err := s.mutate(ctx, actor, invoiceID, "invoice finalized", func(repos TransactionalRepositories, inv *billing.Invoice) error {
		if err := inv.CanFinalize(); err != nil {
			return err
		}

		var err error
		products, err = appinv.DeductForInvoice(ctx, repos, actor.TenantID, inv.RequiredStock(), inventory.MovementRef{
			SourceType: inventory.SourceInvoice,
			SourceID:   &inv.ID,
			Reference:  inv.InvoiceNumber,
			ActorID:    actor.UserRef(),
		})
		if err != nil {
			return err
		}
		return inv.MarkFinalized()
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String(telemetry.AttrInvoiceNumber, resp.InvoiceNumber))

	publishEvents(ctx, s.eventPublisher, s.logger, shared.DrainEvents(products...))
	return resp, nil
}

// Cancel cancels an invoice without payments. Stock deducted at
// finalization is put back in the same transaction.
func (s *InvoiceService) Cancel(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID) (_ *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "cancel", invoiceSpanAttrs(actor, invoiceID)...)
	defer func() { telemetry.EndSpan(span, err) }()

	var products []*inventory.Product
	resp, err := s.mutate(ctx, actor, invoiceID, "invoice cancelled", func(repos TransactionalRepositories, inv *billing.Invoice) error {
		if err := inv.CanCancel(); err != nil {
			return err
		}

		if inv.StockApplied {
			var err error
			products, err = appinv.RestoreForInvoice(ctx, repos, actor.TenantID, inv.RequiredStock(), inventory.MovementRef{
				SourceType: inventory.SourceInvoiceCancel,
				SourceID:   &inv.ID,
				Reference:  inv.InvoiceNumber,
				ActorID:    actor.UserRef(),
			})
			if err != nil {
				return err
			}
		}
		return inv.Cancel()
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.eventPublisher, s.logger, shared.DrainEvents(products...))
	return resp, nil
}

// Delete removes an invoice with its lines and payments. Stock-applied
// invoices cannot be deleted; cancel them first.
func (s *InvoiceService) Delete(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	var number string
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, actor.TenantID, invoiceID)
		if err != nil {
			return err
		}
		if err := inv.CanDelete(); err != nil {
			return err
		}
		number = inv.InvoiceNumber
		return repos.InvoiceRepo().DeleteForTenant(ctx, actor.TenantID, invoiceID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("invoice deleted",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("invoice_id", invoiceID.String()),
		zap.String("invoice_number", number),
	)
	return nil
}

// mutate runs fn against the locked invoice and saves it in one transaction
func (s *InvoiceService) mutate(
	ctx context.Context,
	actor shared.Actor,
	invoiceID uuid.UUID,
	action string,
	fn func(repos TransactionalRepositories, inv *billing.Invoice) error,
) (*InvoiceResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var inv *billing.Invoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, actor.TenantID, invoiceID)
		if err != nil {
			return err
		}
		if err := fn(repos, inv); err != nil {
			return err
		}
		return repos.InvoiceRepo().Save(ctx, inv)
	})
	if err != nil {
		s.logger.Warn(action+" failed",
			zap.String("tenant_id", actor.TenantID.String()),
			zap.String("invoice_id", invoiceID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info(action,
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("status", string(inv.Status)),
		zap.String("total_amount", inv.TotalAmount.StringFixed(2)),
	)
	s.publish(ctx, inv)

	response := ToInvoiceResponse(inv, s.clock.Now())
	return &response, nil
}

func (s *InvoiceService) list(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter, now time.Time) ([]InvoiceListItemResponse, int64, error) {
	invoices, total, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]InvoiceListItemResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceListItemResponse(&invoices[i], now)
	}
	return responses, total, nil
}

func (s *InvoiceService) toDomainFilter(filter InvoiceListFilter, now time.Time) (billing.InvoiceFilter, error) {
	f := billing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		CustomerID: filter.CustomerID,
	}
	if f.OrderBy == "" {
		f.OrderBy = "invoice_date"
	}
	f.Filter = f.Filter.Normalize()

	var err error
	if f.DateFrom, err = parseDate(filter.DateFrom, "date_from"); err != nil {
		return f, err
	}
	if f.DateTo, err = parseDate(filter.DateTo, "date_to"); err != nil {
		return f, err
	}

	switch status := billing.InvoiceStatus(filter.Status); {
	case status == "":
	case status == billing.InvoiceStatusOverdue:
		today := shared.Today(now)
		f.Statuses = billing.PendingStatuses
		f.DueBefore = &today
	case status.IsStored():
		f.Statuses = []billing.InvoiceStatus{status}
	default:
		return f, shared.NewValidationError("unknown invoice status %q", filter.Status)
	}
	return f, nil
}

func (s *InvoiceService) publish(ctx context.Context, inv *billing.Invoice) {
	publishEvents(ctx, s.eventPublisher, s.logger, shared.DrainEvents(inv))
}

// addItem resolves the product snapshot, if any, and adds the line
func (s *InvoiceService) addItem(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, inv *billing.Invoice, req AddItemRequest) error {
	if req.ProductID == nil && req.TaxRate == nil {
		rate := s.manualTaxRate
		req.TaxRate = &rate
	}
	var snapshot *billing.ProductSnapshot
	if req.ProductID != nil {
		product, err := repos.ProductRepo().FindByIDForTenant(ctx, tenantID, *req.ProductID)
		if err != nil {
			return err
		}
		snapshot = &billing.ProductSnapshot{
			ID:       product.ID,
			Name:     product.Name,
			Price:    product.Price,
			TaxRate:  product.TaxRate,
			IsActive: product.IsActive,
		}
	}
	_, err := inv.AddItem(req.toInput(), snapshot)
	return err
}

// allocateInvoiceNumber reserves the next INV-<year>-NNNN number of the shop.
// The sequence row lock serializes concurrent creators; the scan of issued
// numbers keeps the counter ahead of numbers written by other means.
func allocateInvoiceNumber(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, year int) (string, error) {
	issued, err := repos.InvoiceRepo().MaxSequenceForYear(ctx, tenantID, year)
	if err != nil {
		return "", fmt.Errorf("scan invoice numbers: %w", err)
	}
	seq, err := repos.SequenceRepo().Reserve(ctx, tenantID, year, issued)
	if err != nil {
		return "", fmt.Errorf("reserve invoice number: %w", err)
	}
	return billing.FormatInvoiceNumber(year, seq), nil
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

func invoiceSpanAttrs(actor shared.Actor, invoiceID uuid.UUID) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(telemetry.AttrTenantID, actor.TenantID.String()),
		attribute.String(telemetry.AttrInvoiceID, invoiceID.String()),
	}
}
