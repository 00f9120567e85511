package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
	"github.com/jhoicas/backoffice-core/internal/infrastructure/memory"
)

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestRepos_RechazanValoresFueraDeEscala(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "P1", SKU: "S1", Price: d("10.50")}))

	err := repos.Products.Create(ctx, &entity.Product{ID: "P2", SKU: "S2", Price: d("10.505")})
	require.Error(t, err)
	assert.False(t, domain.IsDomainError(err))
	assert.Contains(t, err.Error(), "price")

	assert.Error(t, repos.Products.UpdateStock(ctx, "P1", d("1.00001"), time.Now()))
	assert.Error(t, repos.Products.UpdateCost(ctx, "P1", d("2.00001")))
	assert.Error(t, repos.Movements.Create(ctx, &entity.StockMovement{ID: "M1", ProductID: "P1", Direction: entity.MovementIn, Quantity: d("0.00001")}))

	p, err := repos.Products.GetByID(ctx, "P1")
	require.NoError(t, err)
	assert.True(t, p.StockQuantity.IsZero())
	assert.True(t, p.Cost.IsZero())
	assert.Zero(t, store.Stats().Movements)
}

func TestRun_ValorFueraDeEscalaEsErrorDeAlmacenamiento(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	err := store.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		require.NoError(t, repos.Orders.Create(ctx, &entity.Order{ID: "O1", OrderNumber: "ORD-1", CustomerID: "C1"}))
		return repos.Orders.CreateItems(ctx, []*entity.OrderItem{{
			ID: "I1", OrderID: "O1", ProductID: "P1",
			Quantity: d("1"), UnitPrice: d("10"), DiscountPercentage: d("0.1234567"), TotalPrice: d("8.77"),
		}})
	})
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.Zero(t, store.Stats().Orders)
}

func TestRun_RecepcionFueraDeEscalaNoSePublica(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		if err := repos.PurchaseOrders.Create(ctx, &entity.PurchaseOrder{ID: "PO1", PONumber: "PO-1", SupplierID: "S"}); err != nil {
			return err
		}
		return repos.PurchaseOrders.CreateItems(ctx, []*entity.PurchaseOrderItem{{
			ID: "L1", PurchaseOrderID: "PO1", ProductID: "P1", QuantityOrdered: d("5"), UnitCost: d("1.2345"), LineTotal: d("6.17"),
		}})
	}))

	err := store.Run(ctx, func(ctx context.Context, repos repository.TxRepos) error {
		return repos.PurchaseOrders.UpdateItemReceipt(ctx, &entity.PurchaseOrderItem{ID: "L1", QuantityReceived: d("1.00001")})
	})
	assert.ErrorIs(t, err, domain.ErrStorage)

	it, err := store.Repos().PurchaseOrders.GetItem(ctx, "L1")
	require.NoError(t, err)
	assert.True(t, it.QuantityReceived.IsZero())
}
