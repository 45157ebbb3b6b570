package billing

import (
	"context"

	appinv "github.com/shopbill/backend/internal/application/inventory"
	"github.com/shopbill/backend/internal/domain/billing"
	"github.com/shopbill/backend/internal/domain/inventory"
	"github.com/shopbill/backend/internal/domain/partner"
)

// TransactionScope provides transactional access to the repositories an
// invoice operation touches. Invoice, payment and stock changes made inside
// one Execute call commit or roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all billing repositories within a transaction.
// It also satisfies the stock ledger's repository contract.
type TransactionalRepositories interface {
	appinv.LedgerRepositories
	InvoiceRepo() billing.InvoiceRepository
	PaymentRepo() billing.PaymentRepository
	SequenceRepo() billing.InvoiceSequenceRepository
	CustomerRepo() partner.CustomerRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	invoiceRepo  billing.InvoiceRepository
	paymentRepo  billing.PaymentRepository
	sequenceRepo billing.InvoiceSequenceRepository
	customerRepo partner.CustomerRepository
	productRepo  inventory.ProductRepository
	movementRepo inventory.StockMovementRepository
}

// NoOpRepositories groups the repositories of a NoOpTransactionScope
type NoOpRepositories struct {
	Invoices  billing.InvoiceRepository
	Payments  billing.PaymentRepository
	Sequences billing.InvoiceSequenceRepository
	Customers partner.CustomerRepository
	Products  inventory.ProductRepository
	Movements inventory.StockMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(repos NoOpRepositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo:  repos.Invoices,
		paymentRepo:  repos.Payments,
		sequenceRepo: repos.Sequences,
		customerRepo: repos.Customers,
		productRepo:  repos.Products,
		movementRepo: repos.Movements,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository { return s.invoiceRepo }
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository { return s.paymentRepo }
func (s *NoOpTransactionScope) SequenceRepo() billing.InvoiceSequenceRepository { return s.sequenceRepo }
func (s *NoOpTransactionScope) CustomerRepo() partner.CustomerRepository { return s.customerRepo }
func (s *NoOpTransactionScope) ProductRepo() inventory.ProductRepository { return s.productRepo }
func (s *NoOpTransactionScope) MovementRepo() inventory.StockMovementRepository { return s.movementRepo }

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
