package validator_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/pkg/validator"
)

type line struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
}

type request struct {
	CustomerID string `json:"customer_id" validate:"required,uuid_required"`
	Items      []line `json:"items" validate:"min=1,dive"`
}

const validUUID = "7f1c2a8e-9a51-4f0e-8f3b-1f5d0c7b2a11"

func TestValidateStruct_OK(t *testing.T) {
	err := validator.ValidateStruct(request{
		CustomerID: validUUID,
		Items:      []line{{ProductID: "P1", Quantity: decimal.NewFromInt(2)}},
	})
	assert.NoError(t, err)
}

func TestValidateStruct_CampoAnidadoConNombreJSON(t *testing.T) {
	err := validator.ValidateStruct(request{
		CustomerID: validUUID,
		Items: []line{
			{ProductID: "P1", Quantity: decimal.NewFromInt(1)},
			{ProductID: "P2", Quantity: decimal.Zero},
		},
	})
	require.Error(t, err)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items[1].quantity", ve.Field)
}

func TestValidateStruct_UUIDInvalido(t *testing.T) {
	err := validator.ValidateStruct(request{
		CustomerID: "no-es-uuid",
		Items:      []line{{ProductID: "P1", Quantity: decimal.NewFromInt(1)}},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "customer_id", ve.Field)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestValidateStruct_SinLineas(t *testing.T) {
	err := validator.ValidateStruct(request{CustomerID: validUUID})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "items", ve.Field)
}
