package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
)

// ComputeDiscount calcula el monto de descuento sobre una base (servicio de dominio).
// percentage: round2(base × valor / 100); fixed: min(valor, base), nunca supera la base.
// El motor no acota el valor porcentual; esa validación ocurre en el caso de uso.
func ComputeDiscount(base decimal.Decimal, typ string, value decimal.Decimal) decimal.Decimal {
	if typ == entity.DiscountTypeNone || value.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	switch typ {
	case entity.DiscountTypePercentage:
		return round2(base.Mul(value).Div(decimal.NewFromInt(100)))
	case entity.DiscountTypeFixed:
		if value.GreaterThan(base) {
			return round2(base)
		}
		return round2(value)
	}
	return decimal.Zero
}

// round2 redondea a 2 decimales, mitad hacia arriba. Se aplica en cada
// cálculo intermedio, no solo en el total final.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
