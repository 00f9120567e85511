package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const stockMovementsTable = "stock_movements"

// StockMovementRepo libro de movimientos. Solo inserta y lee: no hay UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

type movementRow struct {
	ID            string           `db:"id"`
	ProductID     string           `db:"product_id"`
	Direction     string           `db:"direction"`
	Quantity      decimal.Decimal  `db:"quantity"`
	UnitCost      *decimal.Decimal `db:"unit_cost"`
	ReferenceType string           `db:"reference_type"`
	ReferenceID   *string          `db:"reference_id"`
	Notes         *string          `db:"notes"`
	CreatedBy     *string          `db:"created_by"`
	CreatedAt     time.Time        `db:"created_at"`
}

func (m movementRow) toEntity() *entity.StockMovement {
	return &entity.StockMovement{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Direction:     m.Direction,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		ReferenceType: m.ReferenceType,
		ReferenceID:   derefString(m.ReferenceID),
		Notes:         derefString(m.Notes),
		CreatedBy:     derefString(m.CreatedBy),
		CreatedAt:     m.CreatedAt,
	}
}

// Create inserta un movimiento.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements
			(id, product_id, direction, quantity, unit_cost, reference_type, reference_id, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.ProductID, m.Direction, m.Quantity, m.UnitCost, m.ReferenceType,
		nullIfEmpty(m.ReferenceID), nullIfEmpty(m.Notes), nullIfEmpty(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByProduct historial filtrado, del más reciente al más antiguo; como máximo MaxMovementHistory filas.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	limit := f.Limit
	if limit <= 0 || limit > repository.MaxMovementHistory {
		limit = repository.MaxMovementHistory
	}
	q := psql.Select("id", "product_id", "direction", "quantity", "unit_cost",
		"reference_type", "reference_id", "notes", "created_by", "created_at").
		From(stockMovementsTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("created_at DESC", "seq DESC").
		Limit(uint64(limit))
	if f.ReferenceType != "" {
		q = q.Where(squirrel.Eq{"reference_type": f.ReferenceType})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *f.To})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movement history: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select movement history: %w", err)
	}
	out := make([]*entity.StockMovement, len(rows))
	for i, row := range rows {
		out[i] = row.toEntity()
	}
	return out, nil
}

// SumByProduct suma con signo (in positivo, out negativo) de todos los movimientos del producto.
func (r *StockMovementRepo) SumByProduct(ctx context.Context, productID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN direction = 'in' THEN quantity ELSE -quantity END), 0)
		FROM stock_movements WHERE product_id = $1`, productID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum stock movements: %w", err)
	}
	return sum, nil
}
