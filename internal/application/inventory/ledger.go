package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	domaininv "github.com/jhoicas/backoffice-core/internal/domain/inventory"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

// LedgerConfig política del libro de stock.
type LedgerConfig struct {
	// AllowNegativeStock permite saldos negativos para todos los movimientos.
	AllowNegativeStock bool
}

// Ledger libro de movimientos de stock. Cada movimiento bloquea la fila del producto
// (SELECT FOR UPDATE), actualiza stock_quantity y registra el movimiento en la misma
// transacción, de modo que stock_quantity siempre es la suma con signo de sus movimientos.
type Ledger struct {
	uow       repository.UnitOfWork
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	cfg       LedgerConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewLedger construye el caso de uso.
func NewLedger(
	uow repository.UnitOfWork,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	cfg LedgerConfig,
	log *logger.Logger,
) *Ledger {
	return &Ledger{
		uow:       uow,
		products:  products,
		movements: movements,
		cfg:       cfg,
		log:       log.Named("ledger"),
		now:       time.Now,
	}
}

// MovementInput entrada de un movimiento. Actor y At se pasan explícitos; At cero = ahora.
type MovementInput struct {
	ProductID     string
	Direction     string // in | out
	Quantity      decimal.Decimal
	ReferenceType string
	ReferenceID   string
	Notes         string
	Actor         string
	// UnitCost en entradas valorizadas recalcula el costo promedio ponderado.
	UnitCost *decimal.Decimal
	// AllowNegative habilita saldo negativo solo para este movimiento.
	AllowNegative bool
	At            time.Time
}

func (in MovementInput) validate() error {
	if strings.TrimSpace(in.ProductID) == "" {
		return domain.NewValidationError("product_id", "requerido")
	}
	if !entity.IsValidDirection(in.Direction) {
		return domain.NewValidationError("direction", "debe ser in u out")
	}
	if !in.Quantity.IsPositive() {
		return domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if err := domain.CheckScale("quantity", in.Quantity, domain.QuantityScale); err != nil {
		return err
	}
	if strings.TrimSpace(in.ReferenceType) == "" {
		return domain.NewValidationError("reference_type", "requerido")
	}
	if in.UnitCost != nil {
		if in.UnitCost.IsNegative() {
			return domain.NewValidationError("unit_cost", "no puede ser negativo")
		}
		if err := domain.CheckScale("unit_cost", *in.UnitCost, domain.CostScale); err != nil {
			return err
		}
	}
	return nil
}

// ApplyMovement aplica un movimiento en su propia transacción y devuelve el nuevo saldo.
func (l *Ledger) ApplyMovement(ctx context.Context, in MovementInput) (decimal.Decimal, error) {
	if err := in.validate(); err != nil {
		return decimal.Zero, err
	}
	var newQty decimal.Decimal
	err := l.uow.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		q, err := l.ApplyInTx(ctx, repos, in)
		newQty = q
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return newQty, nil
}

// ApplyInTx aplica el movimiento con los repositorios de la transacción del llamador
// (recepción de compras, despacho de pedidos).
func (l *Ledger) ApplyInTx(ctx context.Context, repos repository.TxRepos, in MovementInput) (decimal.Decimal, error) {
	if err := in.validate(); err != nil {
		return decimal.Zero, err
	}
	at := in.At
	if at.IsZero() {
		at = l.now()
	}

	product, err := repos.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("lock product: %w", err)
	}
	if product == nil {
		return decimal.Zero, domain.ErrNotFound
	}

	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     in.ProductID,
		Direction:     in.Direction,
		Quantity:      in.Quantity,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Notes:         in.Notes,
		CreatedBy:     in.Actor,
		CreatedAt:     at,
	}
	newQty := product.StockQuantity.Add(mov.SignedQuantity())
	if newQty.IsNegative() && !in.AllowNegative && !l.cfg.AllowNegativeStock {
		return decimal.Zero, domain.NewStateError("product", "", "",
			fmt.Sprintf("stock insuficiente para %s: disponible %s, solicitado %s",
				product.ID, product.StockQuantity.String(), in.Quantity.String()),
			domain.ErrInsufficientStock)
	}

	if in.Direction == entity.MovementIn && in.UnitCost != nil {
		cost := *in.UnitCost
		mov.UnitCost = &cost
		newCost := domaininv.WeightedAverageCost(product.StockQuantity, product.Cost, in.Quantity, cost)
		if err := repos.Products.UpdateCost(ctx, product.ID, newCost); err != nil {
			return decimal.Zero, fmt.Errorf("update cost: %w", err)
		}
	}
	if err := repos.Products.UpdateStock(ctx, product.ID, newQty, at); err != nil {
		return decimal.Zero, fmt.Errorf("update stock: %w", err)
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return decimal.Zero, fmt.Errorf("insert movement: %w", err)
	}

	l.log.Debug().
		Str("product_id", product.ID).
		Str("direction", in.Direction).
		Str("quantity", in.Quantity.String()).
		Str("new_quantity", newQty.String()).
		Str("reference_type", in.ReferenceType).
		Str("reference_id", in.ReferenceID).
		Msg("movimiento aplicado")
	return newQty, nil
}

// Reconciliation comparación entre el saldo del producto y la suma de sus movimientos.
type Reconciliation struct {
	ProductID     string
	StockQuantity decimal.Decimal
	MovementSum   decimal.Decimal
	Drift         decimal.Decimal // StockQuantity - MovementSum
	Balanced      bool
}

// Reconcile verifica el invariante de conciliación de un producto.
func (l *Ledger) Reconcile(ctx context.Context, productID string) (*Reconciliation, error) {
	product, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return nil, domain.NewStorageError("get product", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	sum, err := l.movements.SumByProduct(ctx, productID)
	if err != nil {
		return nil, domain.NewStorageError("sum movements", err)
	}
	drift := product.StockQuantity.Sub(sum)
	rec := &Reconciliation{
		ProductID:     productID,
		StockQuantity: product.StockQuantity,
		MovementSum:   sum,
		Drift:         drift,
		Balanced:      drift.IsZero(),
	}
	if !rec.Balanced {
		l.log.Error().
			Str("product_id", productID).
			Str("stock_quantity", product.StockQuantity.String()).
			Str("movement_sum", sum.String()).
			Msg("descuadre entre stock y libro de movimientos")
	}
	return rec, nil
}

// History movimientos del producto, del más reciente al más antiguo.
func (l *Ledger) History(ctx context.Context, productID string, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	product, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return nil, domain.NewStorageError("get product", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	movements, err := l.movements.ListByProduct(ctx, productID, filter)
	if err != nil {
		return nil, domain.NewStorageError("list movements", err)
	}
	return movements, nil
}
