package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/backoffice-core/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestWeightedAverageCost(t *testing.T) {
	cases := []struct {
		name                          string
		qty, cost, inQty, inCost, out string
	}{
		{"promedia ambas entradas", "10", "100", "10", "200", "150"},
		{"sin stock toma el costo de la entrada", "0", "80", "5", "120", "120"},
		{"stock negativo toma el costo de la entrada", "-3", "80", "5", "120", "120"},
		{"entrada a costo cero baja el promedio", "4", "10", "4", "0", "5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := inventory.WeightedAverageCost(d(tc.qty), d(tc.cost), d(tc.inQty), d(tc.inCost))
			assert.True(t, got.Equal(d(tc.out)), "got %s want %s", got, tc.out)
		})
	}
}
