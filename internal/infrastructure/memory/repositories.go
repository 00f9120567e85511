package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
)

var (
	_ repository.CustomerRepository      = (*CustomerRepo)(nil)
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
	_ repository.OrderRepository         = (*OrderRepo)(nil)
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
)

// ──────────────────────────────────────────────────────────────────────────────
// Clientes
// ──────────────────────────────────────────────────────────────────────────────

// CustomerRepo clientes en memoria.
type CustomerRepo struct{ b binding }

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	return r.b.with("customers.create", func(st *state) error {
		if _, ok := st.customers[c.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.customers {
			if c.Code != "" && other.Code == c.Code {
				return domain.NewConflictError("customer_code", "código de cliente duplicado", domain.ErrDuplicate)
			}
		}
		st.customers[c.ID] = *c
		return nil
	})
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.b.with("customers.get", func(st *state) error {
		if c, ok := st.customers[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

// ProductRepo productos en memoria. GetForUpdate equivale a GetByID: la transacción
// ya tiene acceso exclusivo.
type ProductRepo struct{ b binding }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.b.with("products.create", func(st *state) error {
		if err := checkColumns("products.create",
			column{"price", p.Price, domain.MoneyScale},
			column{"cost", p.Cost, domain.CostScale},
			column{"stock_quantity", p.StockQuantity, domain.QuantityScale},
		); err != nil {
			return err
		}
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.products {
			if p.SKU != "" && other.SKU == p.SKU {
				return domain.NewConflictError("sku", "SKU duplicado", domain.ErrDuplicate)
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.b.with("products.get", func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.b.with("products.get_by_sku", func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if err := r.b.store.fail("products.get_for_update"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) UpdateStock(_ context.Context, id string, qty decimal.Decimal, at time.Time) error {
	return r.b.with("products.update_stock", func(st *state) error {
		if err := checkColumns("products.update_stock", column{"stock_quantity", qty, domain.QuantityScale}); err != nil {
			return err
		}
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.StockQuantity = qty
		p.UpdatedAt = at
		st.products[id] = p
		return nil
	})
}

func (r *ProductRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	return r.b.with("products.update_cost", func(st *state) error {
		if err := checkColumns("products.update_cost", column{"cost", cost, domain.CostScale}); err != nil {
			return err
		}
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.Cost = cost
		st.products[id] = p
		return nil
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos de stock
// ──────────────────────────────────────────────────────────────────────────────

// MovementRepo libro de movimientos en memoria (append-only).
type MovementRepo struct{ b binding }

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.b.with("movements.create", func(st *state) error {
		cols := []column{{"quantity", m.Quantity, domain.QuantityScale}}
		if m.UnitCost != nil {
			cols = append(cols, column{"unit_cost", *m.UnitCost, domain.CostScale})
		}
		if err := checkColumns("movements.create", cols...); err != nil {
			return err
		}
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *MovementRepo) ListByProduct(_ context.Context, productID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	limit := f.Limit
	if limit <= 0 || limit > repository.MaxMovementHistory {
		limit = repository.MaxMovementHistory
	}
	var out []*entity.StockMovement
	err := r.b.with("movements.list", func(st *state) error {
		for i := len(st.movements) - 1; i >= 0 && len(out) < limit; i-- {
			m := st.movements[i]
			if m.ProductID != productID {
				continue
			}
			if f.ReferenceType != "" && m.ReferenceType != f.ReferenceType {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			out = append(out, &m)
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) SumByProduct(_ context.Context, productID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.b.with("movements.sum", func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID {
				sum = sum.Add(m.SignedQuantity())
			}
		}
		return nil
	})
	return sum, err
}

// ──────────────────────────────────────────────────────────────────────────────
// Pedidos
// ──────────────────────────────────────────────────────────────────────────────

// OrderRepo pedidos, líneas e historial en memoria.
type OrderRepo struct{ b binding }

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.b.with("orders.create", func(st *state) error {
		if err := checkColumns("orders.create",
			column{"subtotal", o.Subtotal, domain.MoneyScale},
			column{"tax_amount", o.TaxAmount, domain.MoneyScale},
			column{"discount_amount", o.DiscountAmount, domain.MoneyScale},
			column{"shipping_amount", o.ShippingAmount, domain.MoneyScale},
			column{"total_amount", o.TotalAmount, domain.MoneyScale},
		); err != nil {
			return err
		}
		for _, other := range st.orders {
			if other.OrderNumber == o.OrderNumber {
				return domain.NewConflictError("order_number", "número de pedido duplicado: "+o.OrderNumber, domain.ErrDuplicate)
			}
		}
		st.orders[o.ID] = *o
		return nil
	})
}

func (r *OrderRepo) CreateItems(_ context.Context, items []*entity.OrderItem) error {
	return r.b.with("orders.create_items", func(st *state) error {
		for _, it := range items {
			if _, ok := st.orders[it.OrderID]; !ok {
				return domain.ErrNotFound
			}
			if err := checkColumns("orders.create_items",
				column{"quantity", it.Quantity, domain.QuantityScale},
				column{"unit_price", it.UnitPrice, domain.MoneyScale},
				column{"discount_percentage", it.DiscountPercentage, domain.DiscountScale},
				column{"total_price", it.TotalPrice, domain.MoneyScale},
			); err != nil {
				return err
			}
			st.orderItems[it.OrderID] = append(st.orderItems[it.OrderID], *it)
		}
		return nil
	})
}

func (r *OrderRepo) AppendStatus(_ context.Context, e *entity.OrderStatusEntry) error {
	return r.b.with("orders.append_status", func(st *state) error {
		if _, ok := st.orders[e.OrderID]; !ok {
			return domain.ErrNotFound
		}
		st.history[e.OrderID] = append(st.history[e.OrderID], *e)
		return nil
	})
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.b.with("orders.get", func(st *state) error {
		if o, ok := st.orders[id]; ok {
			out = &o
		}
		return nil
	})
	return out, err
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	if err := r.b.store.fail("orders.get_for_update"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) ListItems(_ context.Context, orderID string) ([]*entity.OrderItem, error) {
	var out []*entity.OrderItem
	err := r.b.with("orders.list_items", func(st *state) error {
		for _, it := range st.orderItems[orderID] {
			it := it
			out = append(out, &it)
		}
		return nil
	})
	return out, err
}

func (r *OrderRepo) ListStatusHistory(_ context.Context, orderID string) ([]*entity.OrderStatusEntry, error) {
	var out []*entity.OrderStatusEntry
	err := r.b.with("orders.list_history", func(st *state) error {
		for _, e := range st.history[orderID] {
			e := e
			out = append(out, &e)
		}
		return nil
	})
	return out, err
}

func (r *OrderRepo) UpdateStatus(_ context.Context, id string, status entity.OrderStatus, at time.Time) error {
	return r.b.with("orders.update_status", func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domain.ErrNotFound
		}
		o.Status = status
		o.UpdatedAt = at
		st.orders[id] = o
		return nil
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Órdenes de compra
// ──────────────────────────────────────────────────────────────────────────────

// PurchaseOrderRepo órdenes de compra y líneas en memoria.
type PurchaseOrderRepo struct{ b binding }

func (r *PurchaseOrderRepo) Create(_ context.Context, po *entity.PurchaseOrder) error {
	return r.b.with("purchase_orders.create", func(st *state) error {
		if err := checkColumns("purchase_orders.create",
			column{"subtotal", po.Subtotal, domain.MoneyScale},
			column{"tax_amount", po.TaxAmount, domain.MoneyScale},
			column{"total_amount", po.TotalAmount, domain.MoneyScale},
		); err != nil {
			return err
		}
		for _, other := range st.pos {
			if other.PONumber == po.PONumber {
				return domain.NewConflictError("po_number", "número de orden de compra duplicado: "+po.PONumber, domain.ErrDuplicate)
			}
		}
		st.pos[po.ID] = *po
		return nil
	})
}

func (r *PurchaseOrderRepo) CreateItems(_ context.Context, items []*entity.PurchaseOrderItem) error {
	return r.b.with("purchase_orders.create_items", func(st *state) error {
		for _, it := range items {
			if _, ok := st.pos[it.PurchaseOrderID]; !ok {
				return domain.ErrNotFound
			}
			if err := checkColumns("purchase_orders.create_items",
				column{"quantity_ordered", it.QuantityOrdered, domain.QuantityScale},
				column{"unit_cost", it.UnitCost, domain.CostScale},
				column{"line_total", it.LineTotal, domain.MoneyScale},
			); err != nil {
				return err
			}
			st.poItems[it.ID] = *it
			st.poItemIDs[it.PurchaseOrderID] = append(st.poItemIDs[it.PurchaseOrderID], it.ID)
		}
		return nil
	})
}

func (r *PurchaseOrderRepo) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := r.b.with("purchase_orders.get", func(st *state) error {
		if po, ok := st.pos[id]; ok {
			out = &po
		}
		return nil
	})
	return out, err
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	if err := r.b.store.fail("purchase_orders.get_for_update"); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *PurchaseOrderRepo) GetItem(_ context.Context, itemID string) (*entity.PurchaseOrderItem, error) {
	var out *entity.PurchaseOrderItem
	err := r.b.with("purchase_orders.get_item", func(st *state) error {
		if it, ok := st.poItems[itemID]; ok {
			out = &it
		}
		return nil
	})
	return out, err
}

func (r *PurchaseOrderRepo) GetItemForUpdate(ctx context.Context, itemID string) (*entity.PurchaseOrderItem, error) {
	return r.GetItem(ctx, itemID)
}

func (r *PurchaseOrderRepo) ListItems(_ context.Context, poID string) ([]*entity.PurchaseOrderItem, error) {
	var out []*entity.PurchaseOrderItem
	err := r.b.with("purchase_orders.list_items", func(st *state) error {
		for _, id := range st.poItemIDs[poID] {
			it := st.poItems[id]
			out = append(out, &it)
		}
		return nil
	})
	return out, err
}

func (r *PurchaseOrderRepo) UpdateItemReceipt(_ context.Context, item *entity.PurchaseOrderItem) error {
	return r.b.with("purchase_orders.update_item", func(st *state) error {
		cur, ok := st.poItems[item.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if err := checkColumns("purchase_orders.update_item", column{"quantity_received", item.QuantityReceived, domain.QuantityScale}); err != nil {
			return err
		}
		cur.QuantityReceived = item.QuantityReceived
		cur.ReceivedDate = item.ReceivedDate
		cur.ReceivedBy = item.ReceivedBy
		cur.UpdatedAt = item.UpdatedAt
		st.poItems[item.ID] = cur
		return nil
	})
}

func (r *PurchaseOrderRepo) MarkReceived(_ context.Context, id string, deliveredAt time.Time) error {
	return r.b.with("purchase_orders.mark_received", func(st *state) error {
		po, ok := st.pos[id]
		if !ok {
			return domain.ErrNotFound
		}
		d := deliveredAt
		po.Status = entity.PurchaseOrderReceived
		po.ActualDeliveryDate = &d
		po.UpdatedAt = deliveredAt
		st.pos[id] = po
		return nil
	})
}
