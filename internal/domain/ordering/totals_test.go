package ordering_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/ordering"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompute_EjemploDosLineas(t *testing.T) {
	d := ordering.Draft{
		CustomerID: "C1",
		Items: []ordering.DraftItem{
			{ProductID: "P1", Quantity: dec("2"), UnitPrice: dec("100")},
			{ProductID: "P2", Quantity: dec("1"), UnitPrice: dec("50")},
		},
	}
	require.NoError(t, ordering.Validate(&d))

	tot := ordering.Compute(d)
	assert.True(t, tot.Subtotal.Equal(dec("250")), "subtotal %s", tot.Subtotal)
	assert.True(t, tot.Tax.Equal(dec("30")), "tax %s", tot.Tax)
	assert.True(t, tot.Total.Equal(dec("280")), "total %s", tot.Total)
}

func TestCompute_InvarianteDeTotales(t *testing.T) {
	drafts := []ordering.Draft{
		{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("3"), UnitPrice: dec("19.99"), DiscountPercentage: dec("0.1")}}, ShippingAmount: dec("5")},
		{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("7"), UnitPrice: dec("0.33")}, {ProductID: "Q", Quantity: dec("1"), UnitPrice: dec("1000"), DiscountPercentage: dec("15")}}, DiscountAmount: dec("12.5")},
		{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("1.5"), UnitPrice: dec("2.2"), DiscountPercentage: dec("100")}}},
	}
	for i := range drafts {
		d := drafts[i]
		require.NoError(t, ordering.Validate(&d))
		tot := ordering.Compute(d)

		sum := decimal.Zero
		for _, lt := range tot.LineTotals {
			sum = sum.Add(lt)
		}
		assert.True(t, tot.Subtotal.Equal(sum))
		want := sum.Sub(d.DiscountAmount).Add(tot.Tax).Add(d.ShippingAmount)
		assert.True(t, tot.Total.Equal(want), "draft %d: total %s want %s", i, tot.Total, want)
	}
}

func TestValidate_DescuentoEnPorcentajeEntero(t *testing.T) {
	d := ordering.Draft{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("1"), UnitPrice: dec("100"), DiscountPercentage: dec("15")}}}
	require.NoError(t, ordering.Validate(&d))
	assert.True(t, d.Items[0].DiscountPercentage.Equal(dec("0.15")))
	assert.True(t, ordering.Compute(d).Subtotal.Equal(dec("85")))
}

func TestValidate_NoModificaLasLineasDelLlamador(t *testing.T) {
	items := []ordering.DraftItem{{ProductID: "P", Quantity: dec("1"), UnitPrice: dec("100"), DiscountPercentage: dec("50")}}
	d := ordering.Draft{CustomerID: "C", Items: items}
	require.NoError(t, ordering.Validate(&d))

	assert.True(t, d.Items[0].DiscountPercentage.Equal(dec("0.5")))
	assert.True(t, items[0].DiscountPercentage.Equal(dec("50")), "el llamador ve %s", items[0].DiscountPercentage)

	// revalidar la misma entrada da el mismo resultado
	again := ordering.Draft{CustomerID: "C", Items: items}
	require.NoError(t, ordering.Validate(&again))
	assert.True(t, ordering.Compute(again).Subtotal.Equal(dec("50")))
}

func TestValidate_NombraElCampoOfensor(t *testing.T) {
	cases := []struct {
		name  string
		draft ordering.Draft
		field string
	}{
		{"sin cliente", ordering.Draft{Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("1"), UnitPrice: dec("1")}}}, "customer_id"},
		{"sin líneas", ordering.Draft{CustomerID: "C"}, "items"},
		{"sin producto", ordering.Draft{CustomerID: "C", Items: []ordering.DraftItem{{Quantity: dec("1"), UnitPrice: dec("1")}}}, "items[0].product_id"},
		{"cantidad cero en segunda línea", ordering.Draft{CustomerID: "C", Items: []ordering.DraftItem{
			{ProductID: "P", Quantity: dec("1"), UnitPrice: dec("1")},
			{ProductID: "Q", Quantity: dec("0"), UnitPrice: dec("1")},
		}}, "items[1].quantity"},
		{"precio negativo", ordering.Draft{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("1"), UnitPrice: dec("-1")}}}, "items[0].unit_price"},
		{"descuento > 100", ordering.Draft{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("1"), UnitPrice: dec("1"), DiscountPercentage: dec("150")}}}, "items[0].discount_percentage"},
		{"descuento exactamente 1 es ambiguo", ordering.Draft{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("1"), UnitPrice: dec("1"), DiscountPercentage: dec("1")}}}, "items[0].discount_percentage"},
		{"precio con tres decimales", ordering.Draft{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("1"), UnitPrice: dec("10.005")}}}, "items[0].unit_price"},
		{"cantidad con cinco decimales", ordering.Draft{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("0.00001"), UnitPrice: dec("1")}}}, "items[0].quantity"},
		{"descuento con siete decimales", ordering.Draft{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("1"), UnitPrice: dec("1"), DiscountPercentage: dec("0.1234567")}}}, "items[0].discount_percentage"},
		{"descuento porcentual que normaliza a siete decimales", ordering.Draft{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("1"), UnitPrice: dec("1"), DiscountPercentage: dec("12.34567")}}}, "items[0].discount_percentage"},
		{"envío con tres decimales", ordering.Draft{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("1"), UnitPrice: dec("1")}}, ShippingAmount: dec("0.001")}, "shipping_amount"},
		{"descuento de cabecera con tres decimales", ordering.Draft{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("1"), UnitPrice: dec("10")}}, DiscountAmount: dec("0.125")}, "discount_amount"},
		{"envío negativo", ordering.Draft{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("1"), UnitPrice: dec("1")}}, ShippingAmount: dec("-1")}, "shipping_amount"},
		{"descuento mayor al total", ordering.Draft{CustomerID: "C", Items: []ordering.DraftItem{{ProductID: "P", Quantity: dec("1"), UnitPrice: dec("10")}}, DiscountAmount: dec("50")}, "discount_amount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := tc.draft
			err := ordering.Validate(&d)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestNormalizeDiscount_Fronteras(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0", "0", true},
		{"0.99", "0.99", true},
		{"1", "", false},
		{"1.5", "0.015", true},
		{"100", "1", true},
		{"100.01", "", false},
		{"-0.1", "", false},
	}
	for _, tc := range cases {
		got, ok := ordering.NormalizeDiscount(dec(tc.in))
		require.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.True(t, got.Equal(dec(tc.want)), "%s -> %s", tc.in, got)
		}
	}
}

func TestValidate_AceptaEscalasDeColumna(t *testing.T) {
	d := ordering.Draft{
		CustomerID:     "C",
		Items:          []ordering.DraftItem{{ProductID: "P", Quantity: dec("1.2345"), UnitPrice: dec("10.50"), DiscountPercentage: dec("0.125")}},
		DiscountAmount: dec("0.01"),
		ShippingAmount: dec("3.10"),
	}
	require.NoError(t, ordering.Validate(&d))
}
