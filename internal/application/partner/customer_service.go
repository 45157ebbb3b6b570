package partner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/partner"
	"github.com/shopbill/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo   partner.CustomerRepository
	invoiceCounter partner.InvoiceCounter
	logger         *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, invoiceCounter partner.InvoiceCounter, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo:   customerRepo,
		invoiceCounter: invoiceCounter,
		logger:         logger,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, actor shared.Actor, req CreateCustomerRequest) (*CustomerResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	customer, err := partner.NewCustomer(actor, req.toInput())
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, actor.TenantID, customer.Name, nil); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.Info("customer created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("customer_id", customer.ID.String()),
	)
	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, actor shared.Actor, customerID uuid.UUID) (*CustomerResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.FindByIDForTenant(ctx, actor.TenantID, customerID)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with search and pagination
func (s *CustomerService) List(ctx context.Context, actor shared.Actor, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if err := actor.Validate(); err != nil {
		return nil, 0, err
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "name"
		domainFilter.OrderDir = "asc"
	}
	domainFilter = domainFilter.Normalize()
	if filter.City != "" {
		domainFilter.Filters["city"] = filter.City
	}
	if filter.State != "" {
		domainFilter.Filters["state"] = filter.State
	}

	customers, total, err := s.customerRepo.FindAllForTenant(ctx, actor.TenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses, total, nil
}

// Update changes customer details
func (s *CustomerService) Update(ctx context.Context, actor shared.Actor, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.FindByIDForTenant(ctx, actor.TenantID, customerID)
	if err != nil {
		return nil, err
	}

	if err := customer.Update(req.mergeInto(customer)); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, actor.TenantID, customer.Name, &customer.ID); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete removes a customer that has no invoices
func (s *CustomerService) Delete(ctx context.Context, actor shared.Actor, customerID uuid.UUID) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if _, err := s.customerRepo.FindByIDForTenant(ctx, actor.TenantID, customerID); err != nil {
		return err
	}

	count, err := s.invoiceCounter.CountByCustomer(ctx, actor.TenantID, customerID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("customer has %d invoices and cannot be deleted", count))
	}

	if err := s.customerRepo.DeleteForTenant(ctx, actor.TenantID, customerID); err != nil {
		return err
	}
	s.logger.Info("customer deleted",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("customer_id", customerID.String()),
	)
	return nil
}

func (s *CustomerService) ensureUniqueName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) error {
	exists, err := s.customerRepo.ExistsByName(ctx, tenantID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("customer %q already exists", name))
	}
	return nil
}
