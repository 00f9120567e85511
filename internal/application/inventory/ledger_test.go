package inventory_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-core/internal/application/inventory"
	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
	"github.com/jhoicas/backoffice-core/internal/infrastructure/memory"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newLedger(t *testing.T, cfg inventory.LedgerConfig) (*inventory.Ledger, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	require.NoError(t, repos.Products.Create(context.Background(), &entity.Product{
		ID: "P1", SKU: "SKU-1", Name: "Tornillo", Price: decimal.NewFromInt(10), Cost: decimal.Zero,
	}))
	return inventory.NewLedger(store, repos.Products, repos.Movements, cfg, logger.Nop()), store
}

func mv(direction string, qty int64) inventory.MovementInput {
	return inventory.MovementInput{
		ProductID:     "P1",
		Direction:     direction,
		Quantity:      decimal.NewFromInt(qty),
		ReferenceType: entity.ReferenceAdjustment,
		Actor:         "user-1",
	}
}

func assertBalanced(t *testing.T, l *inventory.Ledger, want int64) {
	t.Helper()
	rec, err := l.Reconcile(context.Background(), "P1")
	require.NoError(t, err)
	assert.True(t, rec.Balanced, "stock %s vs movimientos %s", rec.StockQuantity, rec.MovementSum)
	assert.True(t, rec.StockQuantity.Equal(decimal.NewFromInt(want)), "stock %s want %d", rec.StockQuantity, want)
}

// ──────────────────────────────────────────────────────────────────────────────
// ApplyMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyMovement_EntradaYSalida(t *testing.T) {
	l, _ := newLedger(t, inventory.LedgerConfig{})
	ctx := context.Background()

	q, err := l.ApplyMovement(ctx, mv(entity.MovementIn, 10))
	require.NoError(t, err)
	assert.True(t, q.Equal(decimal.NewFromInt(10)))

	q, err = l.ApplyMovement(ctx, mv(entity.MovementOut, 4))
	require.NoError(t, err)
	assert.True(t, q.Equal(decimal.NewFromInt(6)))

	assertBalanced(t, l, 6)
}

func TestApplyMovement_RechazaStockNegativo(t *testing.T) {
	l, _ := newLedger(t, inventory.LedgerConfig{})
	ctx := context.Background()
	_, err := l.ApplyMovement(ctx, mv(entity.MovementIn, 3))
	require.NoError(t, err)

	_, err = l.ApplyMovement(ctx, mv(entity.MovementOut, 5))
	require.Error(t, err)
	var se *domain.StateError
	assert.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// nada se escribió: saldo y libro siguen en 3
	assertBalanced(t, l, 3)
}

func TestApplyMovement_NegativoPermitido(t *testing.T) {
	t.Run("por movimiento", func(t *testing.T) {
		l, _ := newLedger(t, inventory.LedgerConfig{})
		in := mv(entity.MovementOut, 2)
		in.AllowNegative = true
		q, err := l.ApplyMovement(context.Background(), in)
		require.NoError(t, err)
		assert.True(t, q.Equal(decimal.NewFromInt(-2)))
		assertBalanced(t, l, -2)
	})
	t.Run("por configuración", func(t *testing.T) {
		l, _ := newLedger(t, inventory.LedgerConfig{AllowNegativeStock: true})
		_, err := l.ApplyMovement(context.Background(), mv(entity.MovementOut, 1))
		require.NoError(t, err)
		assertBalanced(t, l, -1)
	})
}

func TestApplyMovement_Validaciones(t *testing.T) {
	l, _ := newLedger(t, inventory.LedgerConfig{})
	cases := map[string]struct {
		in    inventory.MovementInput
		field string
	}{
		"cantidad cero":      {mv(entity.MovementIn, 0), "quantity"},
		"cantidad negativa":  {mv(entity.MovementIn, -1), "quantity"},
		"dirección inválida": {mv("sideways", 1), "direction"},
		"sin referencia":     {func() inventory.MovementInput { m := mv(entity.MovementIn, 1); m.ReferenceType = ""; return m }(), "reference_type"},
		"sin producto":       {func() inventory.MovementInput { m := mv(entity.MovementIn, 1); m.ProductID = ""; return m }(), "product_id"},
		"cantidad con cinco decimales": {func() inventory.MovementInput {
			m := mv(entity.MovementIn, 1)
			m.Quantity = decimal.RequireFromString("0.00001")
			return m
		}(), "quantity"},
		"costo con cinco decimales": {func() inventory.MovementInput {
			m := mv(entity.MovementIn, 1)
			c := decimal.RequireFromString("1.23456")
			m.UnitCost = &c
			return m
		}(), "unit_cost"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := l.ApplyMovement(context.Background(), tc.in)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
	assertBalanced(t, l, 0)
}

func TestApplyMovement_ProductoInexistente(t *testing.T) {
	l, _ := newLedger(t, inventory.LedgerConfig{})
	in := mv(entity.MovementIn, 1)
	in.ProductID = "NOPE"
	_, err := l.ApplyMovement(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyMovement_FallaDeAlmacenamientoRevierteTodo(t *testing.T) {
	l, store := newLedger(t, inventory.LedgerConfig{})
	ctx := context.Background()
	_, err := l.ApplyMovement(ctx, mv(entity.MovementIn, 5))
	require.NoError(t, err)

	store.FailOn("movements.create", errors.New("disco lleno"))
	_, err = l.ApplyMovement(ctx, mv(entity.MovementIn, 7))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorage)

	store.FailOn("movements.create", nil)
	assertBalanced(t, l, 5)
}

func TestApplyMovement_ContextoCancelado(t *testing.T) {
	l, _ := newLedger(t, inventory.LedgerConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.ApplyMovement(ctx, mv(entity.MovementIn, 5))
	assert.ErrorIs(t, err, domain.ErrStorage)
	assertBalanced(t, l, 0)
}

func TestApplyMovement_CostoPromedioPonderado(t *testing.T) {
	l, store := newLedger(t, inventory.LedgerConfig{})
	ctx := context.Background()

	in := mv(entity.MovementIn, 10)
	c1 := decimal.NewFromInt(100)
	in.UnitCost = &c1
	_, err := l.ApplyMovement(ctx, in)
	require.NoError(t, err)

	in = mv(entity.MovementIn, 10)
	c2 := decimal.NewFromInt(200)
	in.UnitCost = &c2
	_, err = l.ApplyMovement(ctx, in)
	require.NoError(t, err)

	p, err := store.Repos().Products.GetByID(ctx, "P1")
	require.NoError(t, err)
	assert.True(t, p.Cost.Equal(decimal.NewFromInt(150)), "costo %s", p.Cost)
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariante de conciliación
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_ConciliacionTrasSecuenciaAleatoria(t *testing.T) {
	l, _ := newLedger(t, inventory.LedgerConfig{})
	ctx := context.Background()
	rnd := rand.New(rand.NewSource(42))

	var expected int64
	for i := 0; i < 300; i++ {
		qty := int64(rnd.Intn(9) + 1)
		dir := entity.MovementIn
		if rnd.Intn(2) == 0 {
			dir = entity.MovementOut
		}
		_, err := l.ApplyMovement(ctx, mv(dir, qty))
		switch {
		case err == nil && dir == entity.MovementIn:
			expected += qty
		case err == nil:
			expected -= qty
		default:
			require.ErrorIs(t, err, domain.ErrInsufficientStock)
			require.Less(t, expected, qty)
		}
		rec, err := l.Reconcile(ctx, "P1")
		require.NoError(t, err)
		require.True(t, rec.Balanced, "paso %d", i)
	}
	assertBalanced(t, l, expected)
}

func TestLedger_MovimientosConcurrentesSinPerdidas(t *testing.T) {
	l, _ := newLedger(t, inventory.LedgerConfig{})
	const workers = 40

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.ApplyMovement(context.Background(), mv(entity.MovementIn, 2))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assertBalanced(t, l, 2*workers)
}

func TestLedger_HistorialFiltraPorReferencia(t *testing.T) {
	l, _ := newLedger(t, inventory.LedgerConfig{})
	ctx := context.Background()
	_, err := l.ApplyMovement(ctx, mv(entity.MovementIn, 5))
	require.NoError(t, err)
	sale := mv(entity.MovementOut, 2)
	sale.ReferenceType = entity.ReferenceSalesOrder
	sale.ReferenceID = "ORDER-1"
	_, err = l.ApplyMovement(ctx, sale)
	require.NoError(t, err)

	all, err := l.History(ctx, "P1", repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, entity.MovementOut, all[0].Direction, "más reciente primero")

	sales, err := l.History(ctx, "P1", repository.MovementFilter{ReferenceType: entity.ReferenceSalesOrder})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "ORDER-1", sales[0].ReferenceID)

	_, err = l.History(ctx, "NOPE", repository.MovementFilter{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
