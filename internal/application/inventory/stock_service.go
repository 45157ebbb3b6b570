package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopbill/backend/internal/domain/inventory"
	"github.com/shopbill/backend/internal/domain/shared"
	"github.com/shopbill/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// StockService handles manual stock adjustments and stock queries.
// Invoice-driven stock changes go through DeductForInvoice and
// RestoreForInvoice inside the billing transaction instead.
type StockService struct {
	scope          TransactionScope
	productRepo    inventory.ProductRepository
	movementRepo   inventory.StockMovementRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	scope TransactionScope,
	productRepo inventory.ProductRepository,
	movementRepo inventory.StockMovementRepository,
	logger *zap.Logger,
) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		scope:        scope,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AdjustStock increases, decreases or overwrites the stock of one product.
// The product row is locked for the duration of the change.
func (s *StockService) AdjustStock(ctx context.Context, actor shared.Actor, productID uuid.UUID, req AdjustStockRequest) (_ *StockAdjustmentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "adjust",
		attribute.String(telemetry.AttrTenantID, actor.TenantID.String()),
		attribute.String(telemetry.AttrProductID, productID.String()),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := actor.Validate(); err != nil {
		return nil, err
	}

	ref := inventory.MovementRef{
		SourceType: inventory.SourceManual,
		Reference:  req.Reference,
		Notes:      req.Notes,
		ActorID:    actor.UserRef(),
	}

	var (
		product  *inventory.Product
		movement *inventory.StockMovement
	)
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByIDForUpdate(ctx, actor.TenantID, productID)
		if err != nil {
			return err
		}

		switch req.Mode {
		case AdjustModeIncrease:
			movement, err = product.IncreaseStock(req.Quantity, ref)
		case AdjustModeDecrease:
			movement, err = product.DecreaseStock(req.Quantity, ref)
		case AdjustModeSet:
			movement, err = product.SetStock(req.Quantity, ref)
		default:
			return shared.NewValidationError("unknown adjustment mode %q", req.Mode)
		}
		if err != nil {
			return err
		}

		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return err
		}
		return repos.MovementRepo().Create(ctx, movement)
	})
	if err != nil {
		s.logger.Warn("stock adjustment rejected",
			zap.String("tenant_id", actor.TenantID.String()),
			zap.String("product_id", productID.String()),
			zap.String("mode", string(req.Mode)),
			zap.Int64("quantity", req.Quantity),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("stock adjusted",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("product_id", product.ID.String()),
		zap.String("mode", string(req.Mode)),
		zap.Int64("balance_before", movement.BalanceBefore),
		zap.Int64("balance_after", movement.BalanceAfter),
	)
	publishEvents(ctx, s.eventPublisher, s.logger, shared.DrainEvents(product))

	return &StockAdjustmentResponse{
		Product:  ToProductResponse(product),
		Movement: ToStockMovementResponse(movement),
	}, nil
}

// ListMovements returns the movement history of a product, newest first
func (s *StockService) ListMovements(ctx context.Context, actor shared.Actor, productID uuid.UUID, filter MovementListFilter) ([]StockMovementResponse, int64, error) {
	if err := actor.Validate(); err != nil {
		return nil, 0, err
	}
	if _, err := s.productRepo.FindByIDForTenant(ctx, actor.TenantID, productID); err != nil {
		return nil, 0, err
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}.Normalize()
	if filter.SourceType != "" {
		domainFilter.Filters["source_type"] = filter.SourceType
	}

	movements, total, err := s.movementRepo.FindByProduct(ctx, actor.TenantID, productID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]StockMovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToStockMovementResponse(&movements[i])
	}
	return responses, total, nil
}

// ListLowStock returns products at or below their low-stock threshold
func (s *StockService) ListLowStock(ctx context.Context, actor shared.Actor, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if err := actor.Validate(); err != nil {
		return nil, 0, err
	}
	domainFilter := toProductFilter(filter)
	if filter.OrderBy == "" {
		domainFilter.OrderBy = "stock_quantity"
		domainFilter.OrderDir = "asc"
	}
	products, total, err := s.productRepo.FindLowStock(ctx, actor.TenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}
