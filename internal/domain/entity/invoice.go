package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la factura. El estado se deriva de los pagos netos,
// excepto CANCELLED que solo se alcanza por anulación explícita.
const (
	InvoiceStatusUnpaid        = "UNPAID"         // sin pagos netos
	InvoiceStatusPartiallyPaid = "PARTIALLY_PAID" // pagos netos entre cero y el total
	InvoiceStatusPaid          = "PAID"           // pagos netos cubren el total
	InvoiceStatusCancelled     = "CANCELLED"      // anulada; terminal, no admite mutaciones
)

// Tipos de descuento, aplicables tanto a una línea como a la factura.
const (
	DiscountTypeNone       = "none"
	DiscountTypePercentage = "percentage" // valor en [0,100], porcentaje sobre la base
	DiscountTypeFixed      = "fixed"      // monto fijo, acotado por la base al calcular
)

// Invoice representa la cabecera de una factura.
//
// Los campos derivados (Subtotal, Total, DiscountAmount, BalanceDue,
// TotalCost, TotalProfit, MarginPercent) se recalculan siempre desde las
// líneas y transacciones vigentes; ningún caller los escribe a mano.
type Invoice struct {
	ID         string
	Number     string // consecutivo legible, ej. FAC-000042
	CustomerID string // vacío = venta de mostrador, sin cliente asociado
	Currency   string
	IssuedAt   time.Time

	// Descriptor de descuento a nivel factura.
	DiscountType    string
	DiscountValue   decimal.Decimal
	DiscountPercent decimal.Decimal // derivado; literal si percentage, retro-derivado si fixed
	DiscountAmount  decimal.Decimal // derivado

	// Montos derivados del recálculo.
	SubtotalAmount    decimal.Decimal
	TotalAmount       decimal.Decimal
	AmountPaid        decimal.Decimal
	BalanceDue        decimal.Decimal
	TotalCostAmount   decimal.Decimal
	TotalProfitAmount decimal.Decimal
	MarginPercent     *decimal.Decimal // nil = margen indefinido (total en cero)

	Status string

	// Metadatos de anulación de la factura completa.
	CancelledAt  *time.Time
	CancelledBy  string
	CancelReason string

	// Borrado lógico: la factura deja de listarse y rechaza mutaciones.
	DeletedAt *time.Time
	DeletedBy string

	// Version se incrementa en cada mutación persistida; el store en
	// memoria la usa para detectar escrituras perdidas.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
