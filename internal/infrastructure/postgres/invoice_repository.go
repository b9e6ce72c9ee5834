package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mfuentesp/cajapos-api/internal/domain"
	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
	"github.com/mfuentesp/cajapos-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, customer_id, currency, number, issued_at, status,
	discount_type, discount_value, discount_percent, discount_amount,
	subtotal_amount, total_amount, amount_paid, balance_due,
	total_cost_amount, total_profit_amount, margin_percent,
	cancelled_at, cancelled_by, cancel_reason,
	deleted_at, deleted_by,
	version, created_at, updated_at`

// Create persiste la cabecera de la factura.
func (r *InvoiceRepo) Create(inv *entity.Invoice) error {
	const q = `
		INSERT INTO invoices
			(id, customer_id, currency, number, issued_at, status,
			 discount_type, discount_value, discount_percent, discount_amount,
			 subtotal_amount, total_amount, amount_paid, balance_due,
			 total_cost_amount, total_profit_amount, margin_percent,
			 cancelled_at, cancelled_by, cancel_reason,
			 deleted_at, deleted_by,
			 version, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			 $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	_, err := r.q.Exec(context.Background(), q,
		inv.ID, nullIfEmpty(inv.CustomerID), inv.Currency, inv.Number, inv.IssuedAt, inv.Status,
		inv.DiscountType, inv.DiscountValue, inv.DiscountPercent, inv.DiscountAmount,
		inv.SubtotalAmount, inv.TotalAmount, inv.AmountPaid, inv.BalanceDue,
		inv.TotalCostAmount, inv.TotalProfitAmount, inv.MarginPercent,
		inv.CancelledAt, nullIfEmpty(inv.CancelledBy), nullIfEmpty(inv.CancelReason),
		inv.DeletedAt, nullIfEmpty(inv.DeletedBy),
		inv.Version, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByID obtiene la cabecera de una factura.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetForUpdate bloquea la fila de la factura hasta el fin de la
// transacción; las demás facturas no se ven afectadas.
func (r *InvoiceRepo) GetForUpdate(id string) (*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 FOR UPDATE`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice for update: %w", err)
	}
	return inv, nil
}

// Update persiste la cabecera completa con guarda de versión: la fila
// solo se escribe si la versión en base coincide con la leída, y la
// nueva versión queda reflejada en la entidad.
func (r *InvoiceRepo) Update(inv *entity.Invoice) error {
	const q = `
		UPDATE invoices
		SET customer_id = $2, currency = $3, status = $4,
		    discount_type = $5, discount_value = $6, discount_percent = $7, discount_amount = $8,
		    subtotal_amount = $9, total_amount = $10, amount_paid = $11, balance_due = $12,
		    total_cost_amount = $13, total_profit_amount = $14, margin_percent = $15,
		    cancelled_at = $16, cancelled_by = $17, cancel_reason = $18,
		    deleted_at = $19, deleted_by = $20,
		    version = version + 1, updated_at = $21
		WHERE id = $1 AND version = $22
		RETURNING version`
	err := r.q.QueryRow(context.Background(), q,
		inv.ID, nullIfEmpty(inv.CustomerID), inv.Currency, inv.Status,
		inv.DiscountType, inv.DiscountValue, inv.DiscountPercent, inv.DiscountAmount,
		inv.SubtotalAmount, inv.TotalAmount, inv.AmountPaid, inv.BalanceDue,
		inv.TotalCostAmount, inv.TotalProfitAmount, inv.MarginPercent,
		inv.CancelledAt, nullIfEmpty(inv.CancelledBy), nullIfEmpty(inv.CancelReason),
		inv.DeletedAt, nullIfEmpty(inv.DeletedBy),
		inv.UpdatedAt, inv.Version,
	).Scan(&inv.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.updateMissError(inv.ID)
		}
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// updateMissError distingue factura inexistente de versión obsoleta.
func (r *InvoiceRepo) updateMissError(id string) error {
	var one int
	err := r.q.QueryRow(context.Background(), `SELECT 1 FROM invoices WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check invoice: %w", err)
	}
	return domain.ErrConflict
}

// List pagina las facturas no borradas. El consecutivo es de ancho
// fijo, así que ordenar por número descendente equivale a ordenar de la
// más reciente a la más antigua.
func (r *InvoiceRepo) List(limit, offset int) ([]*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE deleted_at IS NULL
		ORDER BY number DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// NextSequence consume el consecutivo del comercio. La secuencia avanza
// aunque la transacción se revierta: un hueco en la numeración es
// preferible a un número repetido.
func (r *InvoiceRepo) NextSequence() (int64, error) {
	var seq int64
	err := r.q.QueryRow(context.Background(), `SELECT nextval('invoice_number_seq')`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next invoice sequence: %w", err)
	}
	return seq, nil
}

// ── Líneas ────────────────────────────────────────────────────────────────────

const itemColumns = `
	id, invoice_id, asset_id, description,
	quantity, unit_price_amount, unit_cost_amount,
	discount_type, discount_value, discount_percent, discount_amount,
	line_total_amount,
	voided_at, void_reason, voided_by,
	created_at, updated_at`

// CreateItem persiste una línea de la factura.
func (r *InvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	const q = `
		INSERT INTO invoice_items
			(id, invoice_id, asset_id, description,
			 quantity, unit_price_amount, unit_cost_amount,
			 discount_type, discount_value, discount_percent, discount_amount,
			 line_total_amount,
			 voided_at, void_reason, voided_by,
			 created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), q,
		item.ID, item.InvoiceID, nullIfEmpty(item.AssetID), item.Description,
		item.Quantity, item.UnitPriceAmount, item.UnitCostAmount,
		item.DiscountType, item.DiscountValue, item.DiscountPercent, item.DiscountAmount,
		item.LineTotalAmount,
		item.VoidedAt, nullIfEmpty(item.VoidReason), nullIfEmpty(item.VoidedBy),
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	return nil
}

// UpdateItem persiste los campos mutables de una línea.
func (r *InvoiceRepo) UpdateItem(item *entity.InvoiceItem) error {
	const q = `
		UPDATE invoice_items
		SET quantity = $2, unit_price_amount = $3,
		    discount_type = $4, discount_value = $5, discount_percent = $6, discount_amount = $7,
		    line_total_amount = $8,
		    voided_at = $9, void_reason = $10, voided_by = $11,
		    updated_at = $12
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), q,
		item.ID, item.Quantity, item.UnitPriceAmount,
		item.DiscountType, item.DiscountValue, item.DiscountPercent, item.DiscountAmount,
		item.LineTotalAmount,
		item.VoidedAt, nullIfEmpty(item.VoidReason), nullIfEmpty(item.VoidedBy),
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteItem elimina físicamente una línea (corrección de borrador).
func (r *InvoiceRepo) DeleteItem(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM invoice_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListItemsByInvoiceID devuelve todas las líneas, anuladas incluidas,
// en orden de creación.
func (r *InvoiceRepo) ListItemsByInvoiceID(invoiceID string) ([]*entity.InvoiceItem, error) {
	q := `SELECT ` + itemColumns + `
		FROM invoice_items WHERE invoice_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), q, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.InvoiceItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// ── Transacciones ─────────────────────────────────────────────────────────────

const transactionColumns = `
	id, invoice_id, type, amount,
	method, method_other, comment,
	received_by, received_at,
	voided_at, void_reason, voided_by,
	created_at`

// CreateTransaction persiste un pago o devolución.
func (r *InvoiceRepo) CreateTransaction(tx *entity.Transaction) error {
	const q = `
		INSERT INTO invoice_transactions
			(id, invoice_id, type, amount,
			 method, method_other, comment,
			 received_by, received_at,
			 voided_at, void_reason, voided_by,
			 created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(context.Background(), q,
		tx.ID, tx.InvoiceID, tx.Type, tx.Amount,
		tx.Method, nullIfEmpty(tx.MethodOther), tx.Comment,
		tx.ReceivedBy, tx.ReceivedAt,
		tx.VoidedAt, nullIfEmpty(tx.VoidReason), nullIfEmpty(tx.VoidedBy),
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice transaction: %w", err)
	}
	return nil
}

// UpdateTransaction persiste la anulación de una transacción; el resto
// de sus campos es inmutable.
func (r *InvoiceRepo) UpdateTransaction(tx *entity.Transaction) error {
	const q = `
		UPDATE invoice_transactions
		SET voided_at = $2, void_reason = $3, voided_by = $4
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), q,
		tx.ID, tx.VoidedAt, nullIfEmpty(tx.VoidReason), nullIfEmpty(tx.VoidedBy),
	)
	if err != nil {
		return fmt.Errorf("update invoice transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListTransactionsByInvoiceID devuelve todas las transacciones,
// anuladas incluidas, en orden de creación.
func (r *InvoiceRepo) ListTransactionsByInvoiceID(invoiceID string) ([]*entity.Transaction, error) {
	q := `SELECT ` + transactionColumns + `
		FROM invoice_transactions WHERE invoice_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(context.Background(), q, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice transactions: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice transaction: %w", err)
		}
		list = append(list, tx)
	}
	return list, rows.Err()
}

// ── scan helpers ──────────────────────────────────────────────────────────────

func scanInvoice(row pgxScanner) (*entity.Invoice, error) {
	var inv entity.Invoice
	var customerID, cancelledBy, cancelReason, deletedBy *string
	err := row.Scan(
		&inv.ID, &customerID, &inv.Currency, &inv.Number, &inv.IssuedAt, &inv.Status,
		&inv.DiscountType, &inv.DiscountValue, &inv.DiscountPercent, &inv.DiscountAmount,
		&inv.SubtotalAmount, &inv.TotalAmount, &inv.AmountPaid, &inv.BalanceDue,
		&inv.TotalCostAmount, &inv.TotalProfitAmount, &inv.MarginPercent,
		&inv.CancelledAt, &cancelledBy, &cancelReason,
		&inv.DeletedAt, &deletedBy,
		&inv.Version, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.CustomerID = derefStr(customerID)
	inv.CancelledBy = derefStr(cancelledBy)
	inv.CancelReason = derefStr(cancelReason)
	inv.DeletedBy = derefStr(deletedBy)
	return &inv, nil
}

func scanItem(row pgxScanner) (*entity.InvoiceItem, error) {
	var item entity.InvoiceItem
	var assetID, voidReason, voidedBy *string
	err := row.Scan(
		&item.ID, &item.InvoiceID, &assetID, &item.Description,
		&item.Quantity, &item.UnitPriceAmount, &item.UnitCostAmount,
		&item.DiscountType, &item.DiscountValue, &item.DiscountPercent, &item.DiscountAmount,
		&item.LineTotalAmount,
		&item.VoidedAt, &voidReason, &voidedBy,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.AssetID = derefStr(assetID)
	item.VoidReason = derefStr(voidReason)
	item.VoidedBy = derefStr(voidedBy)
	return &item, nil
}

func scanTransaction(row pgxScanner) (*entity.Transaction, error) {
	var tx entity.Transaction
	var methodOther, voidReason, voidedBy *string
	err := row.Scan(
		&tx.ID, &tx.InvoiceID, &tx.Type, &tx.Amount,
		&tx.Method, &methodOther, &tx.Comment,
		&tx.ReceivedBy, &tx.ReceivedAt,
		&tx.VoidedAt, &voidReason, &voidedBy,
		&tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.MethodOther = derefStr(methodOther)
	tx.VoidReason = derefStr(voidReason)
	tx.VoidedBy = derefStr(voidedBy)
	return &tx, nil
}
