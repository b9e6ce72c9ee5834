package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItem representa una línea de una factura.
//
// Una línea anulada (VoidedAt != nil) se conserva como rastro de
// auditoría y queda excluida de todos los totales. La anulación parcial
// divide la línea: la cantidad restante sigue viva y la cantidad anulada
// pasa a una línea nueva que nace ya anulada.
type InvoiceItem struct {
	ID          string
	InvoiceID   string
	AssetID     string // vacío = línea de texto libre, sin unidad de inventario
	Description string

	Quantity        int64
	UnitPriceAmount decimal.Decimal
	UnitCostAmount  decimal.Decimal

	// Descriptor de descuento de línea.
	DiscountType    string
	DiscountValue   decimal.Decimal
	DiscountPercent decimal.Decimal // derivado
	DiscountAmount  decimal.Decimal // derivado

	// LineTotalAmount = max(0, cantidad×precio − descuento de línea).
	LineTotalAmount decimal.Decimal

	VoidedAt   *time.Time
	VoidReason string
	VoidedBy   string

	CreatedAt time.Time
	UpdatedAt time.Time
}
