package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/billing"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopbill/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PaymentService records money received against invoices
type PaymentService struct {
	scope          TransactionScope
	invoiceRepo    billing.InvoiceRepository
	paymentRepo    billing.PaymentRepository
	clock          shared.Clock
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	scope TransactionScope,
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *PaymentService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		scope:       scope,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		clock:       clock,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RecordPayment stores a payment and applies it to the invoice in one
// transaction. Overpayment is accepted: the invoice's paid amount is capped
// at its total while the payment keeps the amount received.
func (s *PaymentService) RecordPayment(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID, req RecordPaymentRequest) (*PaymentResultResponse, error) {
	return s.record(ctx, actor, invoiceID, func(inv *billing.Invoice) (billing.PaymentInput, error) {
		return billing.PaymentInput{
			Amount:    req.Amount,
			Method:    billing.PaymentMethod(req.Method),
			Reference: req.Reference,
			Notes:     req.Notes,
			PaidAt:    req.PaidAt,
		}, nil
	})
}

// MarkFullyPaid records a payment for the whole remaining balance
func (s *PaymentService) MarkFullyPaid(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID, req MarkPaidRequest) (*PaymentResultResponse, error) {
	return s.record(ctx, actor, invoiceID, func(inv *billing.Invoice) (billing.PaymentInput, error) {
		remaining, err := inv.FullPaymentAmount()
		if err != nil {
			return billing.PaymentInput{}, err
		}
		return billing.PaymentInput{
			Amount:    remaining,
			Method:    billing.PaymentMethod(req.Method),
			Reference: billing.MarkPaidReference,
		}, nil
	})
}

// ListPayments returns the payments of an invoice, oldest first
func (s *PaymentService) ListPayments(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.invoiceRepo.FindByIDForTenant(ctx, actor.TenantID, invoiceID); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.FindByInvoice(ctx, actor.TenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses, nil
}

func (s *PaymentService) record(
	ctx context.Context,
	actor shared.Actor,
	invoiceID uuid.UUID,
	build func(inv *billing.Invoice) (billing.PaymentInput, error),
) (_ *PaymentResultResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record", invoiceSpanAttrs(actor, invoiceID)...)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := actor.Validate(); err != nil {
		return nil, err
	}
	now := s.clock.Now()

	var (
		inv     *billing.Invoice
		payment *billing.Payment
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, actor.TenantID, invoiceID)
		if err != nil {
			return err
		}

		in, err := build(inv)
		if err != nil {
			return err
		}
		payment, err = inv.RecordPayment(actor, in, now)
		if err != nil {
			return err
		}

		if err := repos.PaymentRepo().Create(ctx, payment); err != nil {
			return err
		}
		return repos.InvoiceRepo().Save(ctx, inv)
	})
	if err != nil {
		s.logger.Warn("payment rejected",
			zap.String("tenant_id", actor.TenantID.String()),
			zap.String("invoice_id", invoiceID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("payment_id", payment.ID.String()),
		zap.String("amount", payment.Amount.StringFixed(2)),
		zap.String("paid_amount", inv.PaidAmount.StringFixed(2)),
		zap.String("status", string(inv.Status)),
	)
	publishEvents(ctx, s.eventPublisher, s.logger, shared.DrainEvents(inv))

	return &PaymentResultResponse{
		Payment: ToPaymentResponse(payment),
		Invoice: ToInvoiceResponse(inv, now),
	}, nil
}
