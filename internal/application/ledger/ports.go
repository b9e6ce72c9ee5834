package ledger

import (
	"context"

	"github.com/mfuentesp/cajapos-api/internal/domain/repository"
)

// LedgerTxRunner ejecuta una función dentro de la unidad de trabajo del
// libro: una transacción por operación, con Commit/Rollback a cargo del
// runner. Las mutaciones sobre una misma factura se serializan ahí.
type LedgerTxRunner interface {
	RunLedger(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		customerRepo repository.CustomerRepository,
	) error) error
}

// InventoryService define el puerto hacia el servicio externo que
// administra las unidades de inventario. El libro solo pide reservar y
// liberar; la asignación concreta de unidades no es asunto suyo.
// Si una llamada falla, la operación del libro que la disparó se aborta
// completa (rollback), nunca hay commit parcial.
type InventoryService interface {
	Reserve(ctx context.Context, assetID string, quantity int64) error
	Release(ctx context.Context, assetID string, quantity int64) error
}
