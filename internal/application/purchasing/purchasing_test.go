package purchasing_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-core/internal/application/inventory"
	"github.com/jhoicas/backoffice-core/internal/application/numbering"
	"github.com/jhoicas/backoffice-core/internal/application/purchasing"
	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
	"github.com/jhoicas/backoffice-core/internal/infrastructure/memory"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store   *memory.Store
	ledger  *inventory.Ledger
	create  *purchasing.CreatePurchaseOrderUseCase
	tracker *purchasing.ReceivingTracker
	queries *purchasing.Queries
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	log := logger.Nop()
	store := memory.NewStore()
	repos := store.Repos()

	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "P1", SKU: "SKU-P1", Name: "Producto 1", Price: decimal.NewFromInt(100)}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "P2", SKU: "SKU-P2", Name: "Producto 2", Price: decimal.NewFromInt(50)}))

	ids := numbering.NewGenerator(memory.NewSequence(), log)
	ledger := inventory.NewLedger(store, repos.Products, repos.Movements, inventory.LedgerConfig{}, log)
	return &fixture{
		store:   store,
		ledger:  ledger,
		create:  purchasing.NewCreatePurchaseOrderUseCase(store, repos.Products, ids, 3, log),
		tracker: purchasing.NewReceivingTracker(store, ledger, log),
		queries: purchasing.NewQueries(repos.PurchaseOrders),
	}
}

func d(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func (f *fixture) po(t *testing.T, lines ...purchasing.PurchaseItemInput) *purchasing.PurchaseOrderView {
	t.Helper()
	view, err := f.create.Execute(context.Background(), purchasing.CreatePurchaseOrderInput{
		SupplierID: "SUP-1", Items: lines, Actor: "comprador",
	})
	require.NoError(t, err)
	return view
}

func line(productID string, qty, cost int64) purchasing.PurchaseItemInput {
	return purchasing.PurchaseItemInput{ProductID: productID, QuantityOrdered: decimal.NewFromInt(qty), UnitCost: decimal.NewFromInt(cost)}
}

func (f *fixture) receive(itemID string, qty int64) (*purchasing.ReceiptResult, error) {
	return f.tracker.ReceiveLineItem(context.Background(), purchasing.ReceiveInput{
		ItemID: itemID, Quantity: decimal.NewFromInt(qty), Actor: "bodeguero",
	})
}

func (f *fixture) stockOf(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	rec, err := f.ledger.Reconcile(context.Background(), productID)
	require.NoError(t, err)
	require.True(t, rec.Balanced)
	return rec.StockQuantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────────────────────────────────────

func TestCreatePurchaseOrder_CalculaTotales(t *testing.T) {
	f := newFixture(t)
	view, err := f.create.Execute(context.Background(), purchasing.CreatePurchaseOrderInput{
		SupplierID: "SUP-1",
		Items: []purchasing.PurchaseItemInput{
			{ProductID: "P1", QuantityOrdered: d("3"), UnitCost: d("10.555")},
			line("P2", 2, 40),
		},
		Actor: "comprador",
	})
	require.NoError(t, err)

	po := view.PurchaseOrder
	assert.Equal(t, entity.PurchaseOrderPending, po.Status)
	assert.Regexp(t, `^PO-\d{4}-000001$`, po.PONumber)
	assert.False(t, po.NumberDegraded)
	require.Len(t, view.Items, 2)
	assert.True(t, view.Items[0].LineTotal.Equal(d("31.67")), "line total %s", view.Items[0].LineTotal)
	assert.True(t, view.Items[1].LineTotal.Equal(d("80")))
	assert.True(t, po.Subtotal.Equal(d("111.67")))
	assert.True(t, po.TaxAmount.Equal(d("13.40")), "tax %s", po.TaxAmount)
	assert.True(t, po.TotalAmount.Equal(d("125.07")))

	got, err := f.queries.GetPurchaseOrder(context.Background(), po.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	for _, it := range got.Items {
		assert.True(t, it.QuantityReceived.IsZero())
	}
}

func TestCreatePurchaseOrder_Validaciones(t *testing.T) {
	f := newFixture(t)
	cases := map[string]struct {
		in    purchasing.CreatePurchaseOrderInput
		field string
	}{
		"sin proveedor": {purchasing.CreatePurchaseOrderInput{Items: []purchasing.PurchaseItemInput{line("P1", 1, 1)}}, "supplier_id"},
		"sin líneas":    {purchasing.CreatePurchaseOrderInput{SupplierID: "S"}, "items"},
		"cantidad cero": {purchasing.CreatePurchaseOrderInput{SupplierID: "S", Items: []purchasing.PurchaseItemInput{line("P1", 0, 1)}}, "items[0].quantity_ordered"},
		"costo negativo": {purchasing.CreatePurchaseOrderInput{SupplierID: "S",
			Items: []purchasing.PurchaseItemInput{line("P1", 1, 1), line("P2", 1, -1)}}, "items[1].unit_cost"},
		"cantidad con cinco decimales": {purchasing.CreatePurchaseOrderInput{SupplierID: "S",
			Items: []purchasing.PurchaseItemInput{{ProductID: "P1", QuantityOrdered: d("1.00001"), UnitCost: d("1")}}}, "items[0].quantity_ordered"},
		"costo con cinco decimales": {purchasing.CreatePurchaseOrderInput{SupplierID: "S",
			Items: []purchasing.PurchaseItemInput{{ProductID: "P1", QuantityOrdered: d("1"), UnitCost: d("10.55551")}}}, "items[0].unit_cost"},
		"producto inexistente": {purchasing.CreatePurchaseOrderInput{SupplierID: "S",
			Items: []purchasing.PurchaseItemInput{line("NOPE", 1, 1)}}, "items[0].product_id"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.create.Execute(context.Background(), tc.in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
	assert.Zero(t, f.store.Stats().PurchaseOrders)
}

func TestCreatePurchaseOrder_FallaEnLineasNoDejaCabecera(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("purchase_orders.create_items", errors.New("conexión perdida"))

	_, err := f.create.Execute(context.Background(), purchasing.CreatePurchaseOrderInput{
		SupplierID: "SUP-1", Items: []purchasing.PurchaseItemInput{line("P1", 1, 1)},
	})
	assert.ErrorIs(t, err, domain.ErrStorage)
	st := f.store.Stats()
	assert.Zero(t, st.PurchaseOrders)
	assert.Zero(t, st.PurchaseItems)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recepción
// ──────────────────────────────────────────────────────────────────────────────

func TestReceiveLineItem_ParcialYCompleta(t *testing.T) {
	f := newFixture(t)
	view := f.po(t, line("P1", 10, 5), line("P2", 4, 8))
	first, second := view.Items[0], view.Items[1]

	res, err := f.receive(first.ID, 6)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.True(t, res.Item.QuantityReceived.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, "bodeguero", res.Item.ReceivedBy)
	require.NotNil(t, res.Item.ReceivedDate)
	assert.Equal(t, entity.PurchaseOrderPending, res.PurchaseOrder.Status)
	assert.True(t, f.stockOf(t, "P1").Equal(decimal.NewFromInt(6)))

	// la segunda línea completa, pero la primera sigue pendiente
	res, err = f.receive(second.ID, 4)
	require.NoError(t, err)
	assert.False(t, res.Completed)

	res, err = f.receive(first.ID, 4)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.Equal(t, entity.PurchaseOrderReceived, res.PurchaseOrder.Status)
	require.NotNil(t, res.PurchaseOrder.ActualDeliveryDate)

	got, err := f.queries.GetPurchaseOrder(context.Background(), view.PurchaseOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderReceived, got.PurchaseOrder.Status)
	assert.True(t, f.stockOf(t, "P1").Equal(decimal.NewFromInt(10)))
	assert.True(t, f.stockOf(t, "P2").Equal(decimal.NewFromInt(4)))

	movs, err := f.ledger.History(context.Background(), "P1", repository.MovementFilter{ReferenceType: entity.ReferencePurchaseReceipt})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, view.PurchaseOrder.ID, m.ReferenceID)
		require.NotNil(t, m.UnitCost)
		assert.True(t, m.UnitCost.Equal(decimal.NewFromInt(5)))
	}
}

func TestReceiveLineItem_ExcesoRechazadoSinEscribir(t *testing.T) {
	f := newFixture(t)
	view := f.po(t, line("P1", 10, 5))
	item := view.Items[0]

	_, err := f.receive(item.ID, 8)
	require.NoError(t, err)
	before := f.store.Stats()

	_, err = f.receive(item.ID, 3)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)

	assert.Equal(t, before, f.store.Stats())
	assert.True(t, f.stockOf(t, "P1").Equal(decimal.NewFromInt(8)))
	got, err := f.queries.GetPurchaseOrder(context.Background(), view.PurchaseOrder.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].QuantityReceived.Equal(decimal.NewFromInt(8)))
}

func TestReceiveLineItem_OrdenRecibidaNoAdmiteMas(t *testing.T) {
	f := newFixture(t)
	view := f.po(t, line("P1", 2, 5))
	_, err := f.receive(view.Items[0].ID, 2)
	require.NoError(t, err)

	_, err = f.receive(view.Items[0].ID, 1)
	var se *domain.StateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, entity.PurchaseOrderReceived, se.From)
	assert.True(t, f.stockOf(t, "P1").Equal(decimal.NewFromInt(2)))
}

func TestReceiveLineItem_EntradasInvalidas(t *testing.T) {
	f := newFixture(t)
	view := f.po(t, line("P1", 2, 5))

	_, err := f.receive(view.Items[0].ID, 0)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)

	_, err = f.receive("", 1)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "item_id", ve.Field)

	_, err = f.receive("NOPE", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.tracker.ReceiveLineItem(context.Background(), purchasing.ReceiveInput{
		ItemID: view.Items[0].ID, Quantity: d("0.00005"), Actor: "bodeguero",
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "quantity", ve.Field)
	assert.True(t, f.stockOf(t, "P1").IsZero())
}

func TestReceiveLineItem_FallaRevierteStockYLinea(t *testing.T) {
	f := newFixture(t)
	view := f.po(t, line("P1", 10, 5))
	f.store.FailOn("purchase_orders.update_item", errors.New("timeout"))

	_, err := f.receive(view.Items[0].ID, 5)
	assert.ErrorIs(t, err, domain.ErrStorage)

	f.store.FailOn("purchase_orders.update_item", nil)
	assert.True(t, f.stockOf(t, "P1").IsZero())
	assert.Zero(t, f.store.Stats().Movements)
	got, err := f.queries.GetPurchaseOrder(context.Background(), view.PurchaseOrder.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].QuantityReceived.IsZero())
}

func TestReceiveLineItem_ConcurrentesSeAcumulan(t *testing.T) {
	f := newFixture(t)
	view := f.po(t, line("P1", 10, 5))
	itemID := view.Items[0].ID

	var wg sync.WaitGroup
	for _, qty := range []int64{3, 4} {
		wg.Add(1)
		go func(q int64) {
			defer wg.Done()
			_, err := f.receive(itemID, q)
			assert.NoError(t, err)
		}(qty)
	}
	wg.Wait()

	got, err := f.queries.GetPurchaseOrder(context.Background(), view.PurchaseOrder.ID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].QuantityReceived.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, entity.PurchaseOrderPending, got.PurchaseOrder.Status)
	assert.True(t, f.stockOf(t, "P1").Equal(decimal.NewFromInt(7)))
}

func TestReceiveLineItem_RecibidoNuncaSuperaPedido(t *testing.T) {
	f := newFixture(t)
	view := f.po(t, line("P1", 25, 5), line("P2", 12, 3))
	rnd := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		item := view.Items[rnd.Intn(len(view.Items))]
		_, err := f.receive(item.ID, int64(rnd.Intn(6)+1))
		if err != nil {
			var ve *domain.ValidationError
			var se *domain.StateError
			require.True(t, errors.As(err, &ve) || errors.As(err, &se), "error inesperado: %v", err)
		}
		got, err := f.queries.GetPurchaseOrder(context.Background(), view.PurchaseOrder.ID)
		require.NoError(t, err)
		for _, it := range got.Items {
			require.False(t, it.QuantityReceived.IsNegative())
			require.True(t, it.QuantityReceived.LessThanOrEqual(it.QuantityOrdered), "paso %d", i)
		}
		require.Equal(t, entity.AllItemsReceived(got.Items), got.PurchaseOrder.Status == entity.PurchaseOrderReceived)
	}
}

func TestReceiveLineItem_ActualizaCostoPromedio(t *testing.T) {
	f := newFixture(t)
	first := f.po(t, line("P1", 10, 100))
	second := f.po(t, line("P1", 30, 200))

	_, err := f.receive(first.Items[0].ID, 10)
	require.NoError(t, err)
	_, err = f.receive(second.Items[0].ID, 30)
	require.NoError(t, err)

	p, err := f.store.Repos().Products.GetByID(context.Background(), "P1")
	require.NoError(t, err)
	assert.True(t, p.Cost.Equal(decimal.NewFromInt(175)), "costo %s", p.Cost)
}

func TestReceiveLineItem_FechaExplicita(t *testing.T) {
	f := newFixture(t)
	view := f.po(t, line("P1", 1, 5))
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	res, err := f.tracker.ReceiveLineItem(context.Background(), purchasing.ReceiveInput{
		ItemID: view.Items[0].ID, Quantity: decimal.NewFromInt(1), ReceivedDate: at, Actor: "bodeguero",
	})
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.True(t, res.Item.ReceivedDate.Equal(at))
	assert.True(t, res.PurchaseOrder.ActualDeliveryDate.Equal(at))
}
