package ordering

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	rules "github.com/jhoicas/backoffice-core/internal/domain/ordering"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

// CreateOrderInput entrada del caso de uso. Actor se pasa explícito (created_by / changed_by).
type CreateOrderInput struct {
	CustomerID     string
	Items          []rules.DraftItem
	DiscountAmount decimal.Decimal
	ShippingAmount decimal.Decimal
	Notes          string
	Actor          string
}

// CreateOrderUseCase arma y persiste un pedido, reintentando ante colisión del número.
type CreateOrderUseCase struct {
	customers   repository.CustomerRepository
	products    repository.ProductRepository
	builder     *AggregateBuilder
	writer      *Writer
	maxAttempts int
	log         *logger.Logger
}

// NewCreateOrderUseCase construye el caso de uso. maxAttempts < 1 se trata como 1.
func NewCreateOrderUseCase(
	customers repository.CustomerRepository,
	products repository.ProductRepository,
	builder *AggregateBuilder,
	writer *Writer,
	maxAttempts int,
	log *logger.Logger,
) *CreateOrderUseCase {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &CreateOrderUseCase{
		customers:   customers,
		products:    products,
		builder:     builder,
		writer:      writer,
		maxAttempts: maxAttempts,
		log:         log.Named("ordering"),
	}
}

// Execute valida la entrada y las referencias (cliente, productos) sin escribir nada;
// después arma y persiste el agregado con estado inicial pending.
func (uc *CreateOrderUseCase) Execute(ctx context.Context, in CreateOrderInput) (*PersistedOrder, error) {
	draft := rules.Draft{
		CustomerID:     in.CustomerID,
		Items:          in.Items,
		DiscountAmount: in.DiscountAmount,
		ShippingAmount: in.ShippingAmount,
		Notes:          in.Notes,
	}
	// Build vuelve a validar: recibe el borrador crudo, no el normalizado (100 -> 1 sería ambiguo).
	checked := draft
	if err := rules.Validate(&checked); err != nil {
		return nil, err
	}
	if err := uc.checkReferences(ctx, checked); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		agg, err := uc.builder.Build(ctx, draft, in.Actor)
		if err != nil {
			return nil, err
		}
		res, err := uc.writer.CreateOrder(ctx, agg, entity.OrderPending, in.Actor)
		if err == nil {
			uc.log.Info().
				Str("order_id", res.Order.ID).
				Str("order_number", res.Order.OrderNumber).
				Bool("number_degraded", res.Order.NumberDegraded).
				Str("total", res.Order.TotalAmount.String()).
				Int("items", len(res.Items)).
				Msg("pedido creado")
			return res, nil
		}
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) {
			return nil, err
		}
		lastErr = err
		uc.log.Warn().
			Err(err).
			Str("order_number", agg.Order.OrderNumber).
			Int("attempt", attempt).
			Msg("colisión de número de pedido; reintentando")
	}
	return nil, lastErr
}

func (uc *CreateOrderUseCase) checkReferences(ctx context.Context, draft rules.Draft) error {
	customer, err := uc.customers.GetByID(ctx, draft.CustomerID)
	if err != nil {
		return domain.NewStorageError("get customer", err)
	}
	if customer == nil {
		return domain.NewValidationError("customer_id", "cliente inexistente")
	}
	for i, it := range draft.Items {
		p, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return domain.NewStorageError("get product", err)
		}
		if p == nil {
			return domain.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "producto inexistente")
		}
	}
	return nil
}
