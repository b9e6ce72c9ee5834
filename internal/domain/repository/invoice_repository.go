package repository

import "github.com/mfuentesp/cajapos-api/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia para la factura,
// sus líneas y sus transacciones. Las implementaciones se atan a un pool
// o a una transacción según las construya el runner.
//
// Los Get devuelven (nil, nil) cuando el recurso no existe; el caso de
// uso decide el error de dominio.
type InvoiceRepository interface {
	Create(inv *entity.Invoice) error
	GetByID(id string) (*entity.Invoice, error)
	// GetForUpdate carga la factura tomando el bloqueo de escritura que
	// serializa las mutaciones sobre ella hasta el fin de la unidad de
	// trabajo.
	GetForUpdate(id string) (*entity.Invoice, error)
	// Update persiste la cabecera completa (derivados incluidos) e
	// incrementa Version. Una Version obsoleta produce domain.ErrConflict.
	Update(inv *entity.Invoice) error
	// List pagina las facturas no borradas, de la más reciente a la más
	// antigua.
	List(limit, offset int) ([]*entity.Invoice, error)
	// NextSequence devuelve el siguiente consecutivo del comercio.
	NextSequence() (int64, error)

	CreateItem(item *entity.InvoiceItem) error
	UpdateItem(item *entity.InvoiceItem) error
	// DeleteItem elimina físicamente una línea. Solo lo usa la corrección
	// en borrador; la anulación marca, nunca borra.
	DeleteItem(id string) error
	// ListItemsByInvoiceID devuelve todas las líneas, anuladas incluidas,
	// en orden de creación.
	ListItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error)

	CreateTransaction(tx *entity.Transaction) error
	UpdateTransaction(tx *entity.Transaction) error
	// ListTransactionsByInvoiceID devuelve todas las transacciones,
	// anuladas incluidas, en orden de creación.
	ListTransactionsByInvoiceID(invoiceID string) ([]*entity.Transaction, error)
}
