package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
)

// RecalculateLine recalcula el descuento y el total de una línea a partir
// de cantidad × precio y su descriptor de descuento. Idempotente.
func RecalculateLine(item *entity.InvoiceItem) {
	gross := decimal.NewFromInt(item.Quantity).Mul(item.UnitPriceAmount)
	item.DiscountAmount = ComputeDiscount(gross, item.DiscountType, item.DiscountValue)
	item.DiscountPercent = derivePercent(item.DiscountType, item.DiscountValue, item.DiscountAmount, gross)

	total := round2(gross.Sub(item.DiscountAmount))
	if total.IsNegative() {
		total = decimal.Zero
	}
	item.LineTotalAmount = total
}

// Recalculate recalcula todos los montos derivados de la factura desde
// sus líneas vigentes. Es pura respecto a la entrada: solo escribe campos
// derivados, nunca líneas ni pagos. Idempotente; cada caso de uso mutador
// la invoca dentro de su unidad de trabajo antes de persistir.
func Recalculate(inv *entity.Invoice, items []*entity.InvoiceItem) {
	subtotal := decimal.Zero
	totalCost := decimal.Zero
	for _, it := range items {
		if it.VoidedAt != nil {
			continue
		}
		subtotal = subtotal.Add(it.LineTotalAmount)
		totalCost = totalCost.Add(decimal.NewFromInt(it.Quantity).Mul(it.UnitCostAmount))
	}
	subtotal = round2(subtotal)
	totalCost = round2(totalCost)

	inv.SubtotalAmount = subtotal
	inv.DiscountAmount = ComputeDiscount(subtotal, inv.DiscountType, inv.DiscountValue)
	inv.DiscountPercent = derivePercent(inv.DiscountType, inv.DiscountValue, inv.DiscountAmount, subtotal)

	inv.TotalAmount = round2(subtotal.Sub(inv.DiscountAmount))
	inv.TotalCostAmount = totalCost
	inv.TotalProfitAmount = round2(inv.TotalAmount.Sub(totalCost))

	if inv.TotalAmount.IsPositive() {
		margin := round2(inv.TotalProfitAmount.Div(inv.TotalAmount).Mul(decimal.NewFromInt(100)))
		inv.MarginPercent = &margin
	} else {
		inv.MarginPercent = nil
	}

	inv.BalanceDue = round2(inv.TotalAmount.Sub(inv.AmountPaid))
}

// SumPayments suma las transacciones no anuladas: PAYMENT suma, REFUND
// resta. Es la resumación completa que reconstruye el monto cobrado tras
// anular una transacción.
func SumPayments(txs []*entity.Transaction) decimal.Decimal {
	paid := decimal.Zero
	for _, tx := range txs {
		if tx.VoidedAt != nil {
			continue
		}
		switch tx.Type {
		case entity.TransactionTypePayment:
			paid = paid.Add(tx.Amount)
		case entity.TransactionTypeRefund:
			paid = paid.Sub(tx.Amount)
		}
	}
	return round2(paid)
}

// derivePercent fija el porcentaje mostrado: literal cuando el descuento
// es porcentual, retro-derivado (monto/base×100) cuando es fijo.
func derivePercent(typ string, value, amount, base decimal.Decimal) decimal.Decimal {
	switch typ {
	case entity.DiscountTypePercentage:
		if value.IsNegative() {
			return decimal.Zero
		}
		return value
	case entity.DiscountTypeFixed:
		if base.IsPositive() {
			return round2(amount.Div(base).Mul(decimal.NewFromInt(100)))
		}
	}
	return decimal.Zero
}
