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

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const (
	purchaseOrderColumns = `id, po_number, number_degraded, supplier_id, status, subtotal, tax_amount, total_amount,
	notes, expected_delivery_date, actual_delivery_date, created_by, created_at, updated_at`
	purchaseItemColumns = `id, purchase_order_id, product_id, quantity_ordered, quantity_received, unit_cost,
	line_total, received_date, received_by, created_at, updated_at`
)

// PurchaseOrderRepo persistencia de órdenes de compra y sus líneas.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create inserta la cabecera. Un po_number repetido devuelve ConflictError.
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `INSERT INTO purchase_orders (`+purchaseOrderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		po.ID, po.PONumber, po.NumberDegraded, po.SupplierID, po.Status, po.Subtotal, po.TaxAmount, po.TotalAmount,
		nullIfEmpty(po.Notes), po.ExpectedDeliveryDate, po.ActualDeliveryDate, nullIfEmpty(po.CreatedBy),
		po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("po_number", "número de orden de compra duplicado: "+po.PONumber, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return nil
}

// CreateItems inserta las líneas en un solo batch.
func (r *PurchaseOrderRepo) CreateItems(ctx context.Context, items []*entity.PurchaseOrderItem) error {
	if len(items) == 0 {
		return nil
	}
	q := psql.Insert("purchase_order_items").Columns(
		"id", "purchase_order_id", "product_id", "quantity_ordered", "quantity_received",
		"unit_cost", "line_total", "created_at", "updated_at")
	for _, it := range items {
		q = q.Values(it.ID, it.PurchaseOrderID, it.ProductID, it.QuantityOrdered, it.QuantityReceived,
			it.UnitCost, it.LineTotal, it.CreatedAt, it.UpdatedAt)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert purchase order items: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase order items: %w", err)
	}
	return nil
}

func (r *PurchaseOrderRepo) getOne(ctx context.Context, op, query, id string) (*entity.PurchaseOrder, error) {
	var (
		po             entity.PurchaseOrder
		notes, creator *string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&po.ID, &po.PONumber, &po.NumberDegraded, &po.SupplierID, &po.Status, &po.Subtotal, &po.TaxAmount,
		&po.TotalAmount, &notes, &po.ExpectedDeliveryDate, &po.ActualDeliveryDate, &creator,
		&po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	po.Notes = derefString(notes)
	po.CreatedBy = derefString(creator)
	return &po, nil
}

// GetByID obtiene la cabecera; (nil, nil) si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.getOne(ctx, "get purchase order", `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1`, id)
}

// GetForUpdate lee y bloquea la cabecera hasta el fin de la transacción.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.getOne(ctx, "lock purchase order",
		`SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
}

type purchaseItemRow struct {
	ID               string          `db:"id"`
	PurchaseOrderID  string          `db:"purchase_order_id"`
	ProductID        string          `db:"product_id"`
	QuantityOrdered  decimal.Decimal `db:"quantity_ordered"`
	QuantityReceived decimal.Decimal `db:"quantity_received"`
	UnitCost         decimal.Decimal `db:"unit_cost"`
	LineTotal        decimal.Decimal `db:"line_total"`
	ReceivedDate     *time.Time      `db:"received_date"`
	ReceivedBy       *string         `db:"received_by"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (row purchaseItemRow) toEntity() *entity.PurchaseOrderItem {
	return &entity.PurchaseOrderItem{
		ID:               row.ID,
		PurchaseOrderID:  row.PurchaseOrderID,
		ProductID:        row.ProductID,
		QuantityOrdered:  row.QuantityOrdered,
		QuantityReceived: row.QuantityReceived,
		UnitCost:         row.UnitCost,
		LineTotal:        row.LineTotal,
		ReceivedDate:     row.ReceivedDate,
		ReceivedBy:       derefString(row.ReceivedBy),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func (r *PurchaseOrderRepo) getItem(ctx context.Context, op, query, id string) (*entity.PurchaseOrderItem, error) {
	var row purchaseItemRow
	if err := pgxscan.Get(ctx, r.q, &row, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return row.toEntity(), nil
}

// GetItem obtiene una línea sin bloquearla; (nil, nil) si no existe.
func (r *PurchaseOrderRepo) GetItem(ctx context.Context, itemID string) (*entity.PurchaseOrderItem, error) {
	return r.getItem(ctx, "get purchase order item",
		`SELECT `+purchaseItemColumns+` FROM purchase_order_items WHERE id = $1`, itemID)
}

// GetItemForUpdate lee y bloquea la línea. Se llama después de bloquear la cabecera.
func (r *PurchaseOrderRepo) GetItemForUpdate(ctx context.Context, itemID string) (*entity.PurchaseOrderItem, error) {
	return r.getItem(ctx, "lock purchase order item",
		`SELECT `+purchaseItemColumns+` FROM purchase_order_items WHERE id = $1 FOR UPDATE`, itemID)
}

// ListItems líneas de la orden en orden de alta.
func (r *PurchaseOrderRepo) ListItems(ctx context.Context, purchaseOrderID string) ([]*entity.PurchaseOrderItem, error) {
	var rows []purchaseItemRow
	err := pgxscan.Select(ctx, r.q, &rows,
		`SELECT `+purchaseItemColumns+` FROM purchase_order_items WHERE purchase_order_id = $1 ORDER BY seq`,
		purchaseOrderID)
	if err != nil {
		return nil, fmt.Errorf("select purchase order items: %w", err)
	}
	out := make([]*entity.PurchaseOrderItem, len(rows))
	for i, row := range rows {
		out[i] = row.toEntity()
	}
	return out, nil
}

// UpdateItemReceipt persiste la recepción acumulada de la línea.
// El CHECK de la tabla rechaza quantity_received fuera de [0, quantity_ordered].
func (r *PurchaseOrderRepo) UpdateItemReceipt(ctx context.Context, it *entity.PurchaseOrderItem) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchase_order_items
		SET quantity_received = $2, received_date = $3, received_by = $4, updated_at = $5
		WHERE id = $1`,
		it.ID, it.QuantityReceived, it.ReceivedDate, nullIfEmpty(it.ReceivedBy), it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase order item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkReceived pasa la orden a received y fija actual_delivery_date.
func (r *PurchaseOrderRepo) MarkReceived(ctx context.Context, id string, deliveredAt time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchase_orders
		SET status = $2, actual_delivery_date = $3, updated_at = $3
		WHERE id = $1`, id, entity.PurchaseOrderReceived, deliveredAt)
	if err != nil {
		return fmt.Errorf("mark purchase order received: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
