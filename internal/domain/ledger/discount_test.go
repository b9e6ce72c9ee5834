package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
	"github.com/mfuentesp/cajapos-api/internal/domain/ledger"
)

// ──────────────────────────────────────────────────────────────────────────────
// ComputeDiscount es el único punto donde se calcula un monto de descuento;
// estos tests fijan su contrato: porcentual proporcional con redondeo a 2
// decimales mitad hacia arriba, fijo acotado por la base, y cero para
// descriptores vacíos o valores no positivos.
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeDiscount_Porcentual(t *testing.T) {
	cases := []struct {
		base     string
		value    string
		expected string
	}{
		{"200", "10", "20"},        // 10% de 200
		{"180", "50", "90"},        // 50% de 180
		{"67.5", "15", "10.13"},    // 10.125 redondea hacia arriba
		{"333", "3.5", "11.66"},    // 11.655 redondea hacia arriba
		{"100", "100", "100"},      // 100% consume toda la base
		{"0", "25", "0"},           // base cero
		{"19.99", "33.33", "6.66"}, // 6.662667 redondea hacia abajo
	}
	for _, tc := range cases {
		got := ledger.ComputeDiscount(dec(tc.base), entity.DiscountTypePercentage, dec(tc.value))
		assert.True(t, dec(tc.expected).Equal(got),
			"porcentual %s%% de %s: esperaba %s, obtuve %s", tc.value, tc.base, tc.expected, got)
	}
}

func TestComputeDiscount_FijoAcotadoPorLaBase(t *testing.T) {
	// Un descuento fijo nunca supera la base sobre la que aplica.
	got := ledger.ComputeDiscount(dec("80"), entity.DiscountTypeFixed, dec("150"))
	assert.True(t, dec("80").Equal(got), "fijo 150 sobre base 80 debe acotarse a 80, obtuve %s", got)

	got = ledger.ComputeDiscount(dec("80"), entity.DiscountTypeFixed, dec("30"))
	assert.True(t, dec("30").Equal(got), "fijo 30 sobre base 80 debe quedar en 30, obtuve %s", got)
}

func TestComputeDiscount_CeroParaDescriptoresVacios(t *testing.T) {
	base := dec("500")

	assert.True(t, ledger.ComputeDiscount(base, entity.DiscountTypeNone, dec("50")).IsZero(),
		"tipo none siempre produce cero")
	assert.True(t, ledger.ComputeDiscount(base, entity.DiscountTypePercentage, decimal.Zero).IsZero(),
		"valor cero produce cero")
	assert.True(t, ledger.ComputeDiscount(base, entity.DiscountTypeFixed, dec("-10")).IsZero(),
		"valor negativo produce cero")
	assert.True(t, ledger.ComputeDiscount(base, "otro", dec("10")).IsZero(),
		"tipo desconocido produce cero")
}

// TestComputeDiscount_ProporcionalDentroDeUnCentavo verifica que el monto
// porcentual se mantiene dentro de ±0.01 del valor exacto base×pct/100.
func TestComputeDiscount_ProporcionalDentroDeUnCentavo(t *testing.T) {
	bases := []string{"0.01", "1", "99.99", "123.45", "10000", "333.33"}
	pcts := []string{"1", "7.5", "12.34", "50", "99", "100"}

	tolerance := dec("0.01")
	for _, b := range bases {
		for _, p := range pcts {
			exact := dec(b).Mul(dec(p)).Div(decimal.NewFromInt(100))
			got := ledger.ComputeDiscount(dec(b), entity.DiscountTypePercentage, dec(p))
			diff := got.Sub(exact).Abs()
			require.True(t, diff.LessThanOrEqual(tolerance),
				"base %s pct %s: diferencia %s excede un centavo", b, p, diff)
		}
	}
}

// ── helper ────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
