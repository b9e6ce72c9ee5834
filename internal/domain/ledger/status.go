package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mfuentesp/cajapos-api/internal/domain"
	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
)

// DeriveStatus deriva el estado de pago de la factura a partir del monto
// cobrado neto y el total. CANCELLED es pegajoso: el recálculo de pagos
// jamás saca una factura de ese estado ni la mete en él.
func DeriveStatus(current string, amountPaid, total decimal.Decimal) string {
	if current == entity.InvoiceStatusCancelled {
		return entity.InvoiceStatusCancelled
	}
	if amountPaid.LessThanOrEqual(decimal.Zero) {
		return entity.InvoiceStatusUnpaid
	}
	if amountPaid.GreaterThanOrEqual(total) {
		return entity.InvoiceStatusPaid
	}
	return entity.InvoiceStatusPartiallyPaid
}

// CanMutate verifica que la factura admita mutaciones: una factura
// borrada se trata como inexistente y una anulada es terminal.
func CanMutate(inv *entity.Invoice) error {
	if inv.DeletedAt != nil {
		return domain.ErrNotFound
	}
	if inv.Status == entity.InvoiceStatusCancelled {
		return domain.ErrInvoiceCancelled
	}
	return nil
}
