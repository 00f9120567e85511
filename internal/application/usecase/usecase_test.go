package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-core/internal/application/dto"
	"github.com/jhoicas/backoffice-core/internal/application/numbering"
	"github.com/jhoicas/backoffice-core/internal/application/usecase"
	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/infrastructure/memory"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

func TestProductUseCase_CreaConStockCero(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore().Repos().Products)
	ctx := context.Background()

	p, err := uc.Create(ctx, dto.CreateProductRequest{SKU: " SKU-1 ", Name: "Tornillo", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", p.SKU)
	assert.True(t, p.StockQuantity.IsZero())
	assert.True(t, p.Cost.IsZero())

	got, err := uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "SKU-1", Name: "Otro"})
	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "sku", ce.Resource)

	_, err = uc.GetByID(ctx, "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUseCase_Validacion(t *testing.T) {
	uc := usecase.NewProductUseCase(memory.NewStore().Repos().Products)
	_, err := uc.Create(context.Background(), dto.CreateProductRequest{SKU: "X", Name: "Y", Price: decimal.NewFromInt(-1)})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "price", ve.Field)

	_, err = uc.Create(context.Background(), dto.CreateProductRequest{SKU: "X", Name: "Y", Price: decimal.RequireFromString("9.999")})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "price", ve.Field)
}

func TestCustomerUseCase_GeneraCodigos(t *testing.T) {
	seq := memory.NewSequence()
	ids := numbering.NewGenerator(seq, logger.Nop())
	uc := usecase.NewCustomerUseCase(memory.NewStore().Repos().Customers, ids, 3, logger.Nop())
	ctx := context.Background()

	a, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: "Ana"})
	require.NoError(t, err)
	b, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: "Beto"})
	require.NoError(t, err)
	assert.Equal(t, "CUS-000001", a.Code)
	assert.Equal(t, "CUS-000002", b.Code)

	// la secuencia retrocede: colisión con CUS-000002 y reintento con CUS-000003
	seq.Seed("CUS", 1)
	c, err := uc.Create(ctx, dto.CreateCustomerRequest{Name: "Carla"})
	require.NoError(t, err)
	assert.Equal(t, "CUS-000003", c.Code)

	got, err := uc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Carla", got.Name)
}

func TestCustomerUseCase_Validacion(t *testing.T) {
	ids := numbering.NewGenerator(memory.NewSequence(), logger.Nop())
	uc := usecase.NewCustomerUseCase(memory.NewStore().Repos().Customers, ids, 1, logger.Nop())

	_, err := uc.Create(context.Background(), dto.CreateCustomerRequest{Name: "  "})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)

	_, err = uc.Create(context.Background(), dto.CreateCustomerRequest{Name: "Ana", Email: "no-es-correo"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)
}
