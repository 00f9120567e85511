package repository

import (
	"context"
	"time"

	"github.com/jhoicas/backoffice-core/internal/domain/entity"
)

// PurchaseOrderRepository puerto de persistencia de órdenes de compra y sus líneas.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	CreateItems(ctx context.Context, items []*entity.PurchaseOrderItem) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetItem(ctx context.Context, itemID string) (*entity.PurchaseOrderItem, error)
	GetItemForUpdate(ctx context.Context, itemID string) (*entity.PurchaseOrderItem, error)
	ListItems(ctx context.Context, purchaseOrderID string) ([]*entity.PurchaseOrderItem, error)
	// UpdateItemReceipt persiste quantity_received, received_date y received_by.
	UpdateItemReceipt(ctx context.Context, item *entity.PurchaseOrderItem) error
	// MarkReceived pasa la orden a received y fija actual_delivery_date.
	MarkReceived(ctx context.Context, id string, deliveredAt time.Time) error
}
