package purchasing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/application/numbering"
	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/internal/domain/ordering"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

// PurchaseItemInput línea solicitada al proveedor.
type PurchaseItemInput struct {
	ProductID       string
	QuantityOrdered decimal.Decimal
	UnitCost        decimal.Decimal
}

// CreatePurchaseOrderInput entrada para crear una orden de compra.
type CreatePurchaseOrderInput struct {
	SupplierID           string
	Items                []PurchaseItemInput
	ExpectedDeliveryDate *time.Time
	Notes                string
	Actor                string
}

// PurchaseOrderView orden de compra con sus líneas.
type PurchaseOrderView struct {
	PurchaseOrder *entity.PurchaseOrder
	Items         []*entity.PurchaseOrderItem
}

// CreatePurchaseOrderUseCase crea órdenes de compra en estado pending.
type CreatePurchaseOrderUseCase struct {
	uow         repository.UnitOfWork
	products    repository.ProductRepository
	ids         *numbering.Generator
	maxAttempts int
	log         *logger.Logger
	now         func() time.Time
}

// NewCreatePurchaseOrderUseCase construye el caso de uso.
func NewCreatePurchaseOrderUseCase(
	uow repository.UnitOfWork,
	products repository.ProductRepository,
	ids *numbering.Generator,
	maxAttempts int,
	log *logger.Logger,
) *CreatePurchaseOrderUseCase {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &CreatePurchaseOrderUseCase{
		uow:         uow,
		products:    products,
		ids:         ids,
		maxAttempts: maxAttempts,
		log:         log.Named("purchasing"),
		now:         time.Now,
	}
}

func (in CreatePurchaseOrderInput) validate() error {
	if strings.TrimSpace(in.SupplierID) == "" {
		return domain.NewValidationError("supplier_id", "requerido")
	}
	if len(in.Items) == 0 {
		return domain.NewValidationError("items", "la orden debe tener al menos una línea")
	}
	for i, it := range in.Items {
		field := func(name string) string { return fmt.Sprintf("items[%d].%s", i, name) }
		if strings.TrimSpace(it.ProductID) == "" {
			return domain.NewValidationError(field("product_id"), "requerido")
		}
		if !it.QuantityOrdered.IsPositive() {
			return domain.NewValidationError(field("quantity_ordered"), "debe ser mayor que cero")
		}
		if err := domain.CheckScale(field("quantity_ordered"), it.QuantityOrdered, domain.QuantityScale); err != nil {
			return err
		}
		if it.UnitCost.IsNegative() {
			return domain.NewValidationError(field("unit_cost"), "no puede ser negativo")
		}
		if err := domain.CheckScale(field("unit_cost"), it.UnitCost, domain.CostScale); err != nil {
			return err
		}
	}
	return nil
}

// Execute valida, calcula line_total = quantity_ordered * unit_cost, subtotal, impuesto y total,
// y persiste cabecera y líneas en una unidad de trabajo.
func (uc *CreatePurchaseOrderUseCase) Execute(ctx context.Context, in CreatePurchaseOrderInput) (*PurchaseOrderView, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	for i, it := range in.Items {
		p, err := uc.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, domain.NewStorageError("get product", err)
		}
		if p == nil {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "producto inexistente")
		}
	}

	var lastErr error
	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		view := uc.build(ctx, in)
		err := uc.uow.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
			if err := repos.PurchaseOrders.Create(ctx, view.PurchaseOrder); err != nil {
				return fmt.Errorf("insert purchase order: %w", err)
			}
			if err := repos.PurchaseOrders.CreateItems(ctx, view.Items); err != nil {
				return fmt.Errorf("insert purchase order items: %w", err)
			}
			return nil
		})
		if err == nil {
			uc.log.Info().
				Str("purchase_order_id", view.PurchaseOrder.ID).
				Str("po_number", view.PurchaseOrder.PONumber).
				Bool("number_degraded", view.PurchaseOrder.NumberDegraded).
				Str("total", view.PurchaseOrder.TotalAmount.String()).
				Msg("orden de compra creada")
			return view, nil
		}
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) {
			return nil, err
		}
		lastErr = err
		uc.log.Warn().Err(err).Int("attempt", attempt).Msg("colisión de número de orden de compra; reintentando")
	}
	return nil, lastErr
}

func (uc *CreatePurchaseOrderUseCase) build(ctx context.Context, in CreatePurchaseOrderInput) *PurchaseOrderView {
	now := uc.now()
	number := uc.ids.NextPurchaseOrderNumber(ctx)
	po := &entity.PurchaseOrder{
		ID:                   uuid.New().String(),
		PONumber:             number.Value,
		NumberDegraded:       number.Degraded,
		SupplierID:           in.SupplierID,
		Status:               entity.PurchaseOrderPending,
		Notes:                in.Notes,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		CreatedBy:            in.Actor,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	subtotal := decimal.Zero
	items := make([]*entity.PurchaseOrderItem, len(in.Items))
	for i, it := range in.Items {
		lineTotal := it.QuantityOrdered.Mul(it.UnitCost).Round(2)
		subtotal = subtotal.Add(lineTotal)
		items[i] = &entity.PurchaseOrderItem{
			ID:               uuid.New().String(),
			PurchaseOrderID:  po.ID,
			ProductID:        it.ProductID,
			QuantityOrdered:  it.QuantityOrdered,
			QuantityReceived: decimal.Zero,
			UnitCost:         it.UnitCost,
			LineTotal:        lineTotal,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
	}
	po.Subtotal = subtotal
	po.TaxAmount = ordering.TaxFor(subtotal)
	po.TotalAmount = subtotal.Add(po.TaxAmount)
	return &PurchaseOrderView{PurchaseOrder: po, Items: items}
}
