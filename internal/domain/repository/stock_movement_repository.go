package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/domain/entity"
)

// MaxMovementHistory tope de filas devueltas por ListByProduct.
const MaxMovementHistory = 500

// MovementFilter filtros opcionales del historial de movimientos.
type MovementFilter struct {
	From          *time.Time
	To            *time.Time
	ReferenceType string
	Limit         int
}

// StockMovementRepository libro de movimientos (append-only: no hay Update ni Delete).
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	// ListByProduct devuelve movimientos del más reciente al más antiguo.
	ListByProduct(ctx context.Context, productID string, filter MovementFilter) ([]*entity.StockMovement, error)
	// SumByProduct suma con signo de todos los movimientos del producto.
	SumByProduct(ctx context.Context, productID string) (decimal.Decimal, error)
}
