package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del libro de pagos.
const (
	TransactionTypePayment = "PAYMENT" // suma al monto cobrado
	TransactionTypeRefund  = "REFUND"  // resta del monto cobrado
)

// Medios de pago.
const (
	PaymentMethodCash     = "CASH"
	PaymentMethodCard     = "CARD"
	PaymentMethodTransfer = "TRANSFER"
	PaymentMethodOther    = "OTHER" // requiere MethodOther con el detalle
)

// Transaction representa un evento de pago o devolución sobre una factura.
//
// El monto es siempre positivo; el signo lo da el tipo. Una transacción
// anulada se conserva con sus metadatos y deja de contar en la suma de
// pagos, que se recalcula por resumación completa.
type Transaction struct {
	ID        string
	InvoiceID string
	Type      string
	Amount    decimal.Decimal

	Method      string
	MethodOther string // obligatorio cuando Method == OTHER
	Comment     string // obligatorio siempre

	ReceivedBy string // identificador del actor que registró el evento
	ReceivedAt time.Time

	VoidedAt   *time.Time
	VoidReason string
	VoidedBy   string

	CreatedAt time.Time
}
