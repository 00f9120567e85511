package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, order_number, number_degraded, customer_id, status, subtotal, tax_amount,
	discount_amount, shipping_amount, total_amount, notes, created_by, created_at, updated_at`

// OrderRepo persistencia de pedidos, líneas e historial de estados.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta la cabecera. Un order_number repetido devuelve ConflictError (reintentable).
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	_, err := r.q.Exec(ctx, `INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		o.ID, o.OrderNumber, o.NumberDegraded, o.CustomerID, string(o.Status), o.Subtotal, o.TaxAmount,
		o.DiscountAmount, o.ShippingAmount, o.TotalAmount, nullIfEmpty(o.Notes), nullIfEmpty(o.CreatedBy),
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("order_number", "número de pedido duplicado: "+o.OrderNumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateItems inserta las líneas en un solo batch.
func (r *OrderRepo) CreateItems(ctx context.Context, items []*entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	q := psql.Insert("order_items").Columns(
		"id", "order_id", "product_id", "quantity", "unit_price", "discount_percentage", "total_price", "created_at")
	for _, it := range items {
		q = q.Values(it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.DiscountPercentage, it.TotalPrice, it.CreatedAt)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert order items: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

// AppendStatus agrega una entrada al historial.
func (r *OrderRepo) AppendStatus(ctx context.Context, e *entity.OrderStatusEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO order_status_history (id, order_id, status, notes, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.OrderID, string(e.Status), nullIfEmpty(e.Notes), nullIfEmpty(e.ChangedBy), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order status: %w", err)
	}
	return nil
}

func (r *OrderRepo) getOne(ctx context.Context, op, query, id string) (*entity.Order, error) {
	var (
		o              entity.Order
		status         string
		notes, creator *string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.OrderNumber, &o.NumberDegraded, &o.CustomerID, &status, &o.Subtotal, &o.TaxAmount,
		&o.DiscountAmount, &o.ShippingAmount, &o.TotalAmount, &notes, &creator, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	o.Status = entity.OrderStatus(status)
	o.Notes = derefString(notes)
	o.CreatedBy = derefString(creator)
	return &o, nil
}

// GetByID obtiene la cabecera; (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.getOne(ctx, "get order", `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetForUpdate lee y bloquea la cabecera hasta el fin de la transacción.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.getOne(ctx, "lock order", `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

type orderItemRow struct {
	ID                 string          `db:"id"`
	OrderID            string          `db:"order_id"`
	ProductID          string          `db:"product_id"`
	Quantity           decimal.Decimal `db:"quantity"`
	UnitPrice          decimal.Decimal `db:"unit_price"`
	DiscountPercentage decimal.Decimal `db:"discount_percentage"`
	TotalPrice         decimal.Decimal `db:"total_price"`
	CreatedAt          time.Time       `db:"created_at"`
}

// ListItems líneas del pedido en orden de alta.
func (r *OrderRepo) ListItems(ctx context.Context, orderID string) ([]*entity.OrderItem, error) {
	var rows []orderItemRow
	err := pgxscan.Select(ctx, r.q, &rows, `
		SELECT id, order_id, product_id, quantity, unit_price, discount_percentage, total_price, created_at
		FROM order_items WHERE order_id = $1 ORDER BY seq`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	out := make([]*entity.OrderItem, len(rows))
	for i, row := range rows {
		it := entity.OrderItem(row)
		out[i] = &it
	}
	return out, nil
}

type statusRow struct {
	ID        string    `db:"id"`
	OrderID   string    `db:"order_id"`
	Status    string    `db:"status"`
	Notes     *string   `db:"notes"`
	ChangedBy *string   `db:"changed_by"`
	CreatedAt time.Time `db:"created_at"`
}

// ListStatusHistory historial del pedido en orden cronológico.
func (r *OrderRepo) ListStatusHistory(ctx context.Context, orderID string) ([]*entity.OrderStatusEntry, error) {
	var rows []statusRow
	err := pgxscan.Select(ctx, r.q, &rows, `
		SELECT id, order_id, status, notes, changed_by, created_at
		FROM order_status_history WHERE order_id = $1 ORDER BY seq`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order status history: %w", err)
	}
	out := make([]*entity.OrderStatusEntry, len(rows))
	for i, row := range rows {
		out[i] = &entity.OrderStatusEntry{
			ID:        row.ID,
			OrderID:   row.OrderID,
			Status:    entity.OrderStatus(row.Status),
			Notes:     derefString(row.Notes),
			ChangedBy: derefString(row.ChangedBy),
			CreatedAt: row.CreatedAt,
		}
	}
	return out, nil
}

// UpdateStatus cambia el estado actual del pedido.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), at)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
