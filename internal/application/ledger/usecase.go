package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfuentesp/cajapos-api/internal/application/dto"
	"github.com/mfuentesp/cajapos-api/internal/domain"
	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
	"github.com/mfuentesp/cajapos-api/internal/domain/ledger"
	"github.com/mfuentesp/cajapos-api/internal/domain/repository"
)

// Config parámetros del caso de uso de facturas.
type Config struct {
	// NumberPrefix prefijo del consecutivo legible, ej. "FAC".
	NumberPrefix string
	// BaseCurrency moneda usada cuando la petición no trae una.
	BaseCurrency string
	// Currencies conjunto cerrado de monedas aceptadas para facturar.
	Currencies []string
}

// InvoiceUseCase implementa todas las operaciones mutadoras y de lectura
// del libro de factura. Cada mutación corre dentro de una unidad de
// trabajo: carga la factura con bloqueo de escritura, valida, muta,
// recalcula los derivados completos y persiste atómicamente.
type InvoiceUseCase struct {
	txRunner     LedgerTxRunner
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	inventory    InventoryService
	cfg          Config
}

// NewInvoiceUseCase construye el caso de uso. invoiceRepo y customerRepo
// son los repos atados al pool para lecturas fuera de transacción.
func NewInvoiceUseCase(
	txRunner LedgerTxRunner,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	inventory InventoryService,
	cfg Config,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:     txRunner,
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		inventory:    inventory,
		cfg:          cfg,
	}
}

// lockForMutation carga la factura con bloqueo de escritura y verifica
// que admita mutaciones.
func (uc *InvoiceUseCase) lockForMutation(repo repository.InvoiceRepository, id string) (*entity.Invoice, error) {
	inv, err := repo.GetForUpdate(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if err := ledger.CanMutate(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// settle es el cierre de toda mutación: resuma los pagos, recalcula los
// derivados desde las líneas vigentes, deriva el estado y persiste la
// cabecera. Ningún caso de uso escribe un campo derivado por fuera de
// este camino.
func (uc *InvoiceUseCase) settle(
	repo repository.InvoiceRepository,
	inv *entity.Invoice,
	items []*entity.InvoiceItem,
	txs []*entity.Transaction,
	now time.Time,
) (*dto.InvoiceResponse, error) {
	inv.AmountPaid = ledger.SumPayments(txs)
	ledger.Recalculate(inv, items)
	inv.Status = ledger.DeriveStatus(inv.Status, inv.AmountPaid, inv.TotalAmount)
	inv.UpdatedAt = now
	if err := repo.Update(inv); err != nil {
		return nil, err
	}
	return toResponse(inv, items, txs), nil
}

// loadRows trae las líneas y transacciones completas de la factura.
func loadRows(repo repository.InvoiceRepository, invoiceID string) ([]*entity.InvoiceItem, []*entity.Transaction, error) {
	items, err := repo.ListItemsByInvoiceID(invoiceID)
	if err != nil {
		return nil, nil, err
	}
	txs, err := repo.ListTransactionsByInvoiceID(invoiceID)
	if err != nil {
		return nil, nil, err
	}
	return items, txs, nil
}

func (uc *InvoiceUseCase) supportsCurrency(code string) bool {
	for _, c := range uc.cfg.Currencies {
		if c == code {
			return true
		}
	}
	return false
}

// ── Validaciones compartidas ──────────────────────────────────────────────────

// normalizeDiscountType trata el descriptor vacío como none.
func normalizeDiscountType(typ string) string {
	if typ == "" {
		return entity.DiscountTypeNone
	}
	return typ
}

// validateDiscount acota el descriptor en la frontera de la operación:
// porcentual en [0,100], fijo no negativo. El motor de cálculo no acota;
// aquí se rechaza lo que nunca debe llegarle.
func validateDiscount(d dto.DiscountRequest) error {
	switch normalizeDiscountType(d.Type) {
	case entity.DiscountTypeNone:
		return nil
	case entity.DiscountTypePercentage:
		if d.Value.IsNegative() || d.Value.GreaterThan(decimal.NewFromInt(100)) {
			return domain.ErrDiscountOutOfRange
		}
		return nil
	case entity.DiscountTypeFixed:
		if d.Value.IsNegative() {
			return domain.ErrInvalidInput
		}
		return nil
	}
	return domain.ErrInvalidInput
}

func validateMethod(method, methodOther string) error {
	switch method {
	case entity.PaymentMethodCash, entity.PaymentMethodCard, entity.PaymentMethodTransfer:
		return nil
	case entity.PaymentMethodOther:
		if strings.TrimSpace(methodOther) == "" {
			return domain.ErrInvalidInput
		}
		return nil
	}
	return domain.ErrInvalidInput
}

// ── Mapeo a DTO ───────────────────────────────────────────────────────────────

func toResponse(inv *entity.Invoice, items []*entity.InvoiceItem, txs []*entity.Transaction) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		CustomerID: inv.CustomerID,
		Currency:   inv.Currency,
		IssuedAt:   inv.IssuedAt.Format(time.RFC3339),
		Status:     inv.Status,

		DiscountType:    inv.DiscountType,
		DiscountValue:   inv.DiscountValue,
		DiscountPercent: inv.DiscountPercent,
		DiscountAmount:  inv.DiscountAmount,

		Subtotal:      inv.SubtotalAmount,
		Total:         inv.TotalAmount,
		AmountPaid:    inv.AmountPaid,
		BalanceDue:    inv.BalanceDue,
		TotalCost:     inv.TotalCostAmount,
		TotalProfit:   inv.TotalProfitAmount,
		MarginPercent: inv.MarginPercent,

		CancelledAt:  formatTimePtr(inv.CancelledAt),
		CancelledBy:  inv.CancelledBy,
		CancelReason: inv.CancelReason,

		Version: inv.Version,

		Items:        make([]dto.InvoiceItemResponse, 0, len(items)),
		Transactions: make([]dto.TransactionResponse, 0, len(txs)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:          it.ID,
			AssetID:     it.AssetID,
			Description: it.Description,

			Quantity:  it.Quantity,
			UnitPrice: it.UnitPriceAmount,
			UnitCost:  it.UnitCostAmount,

			DiscountType:    it.DiscountType,
			DiscountValue:   it.DiscountValue,
			DiscountPercent: it.DiscountPercent,
			DiscountAmount:  it.DiscountAmount,

			LineTotal: it.LineTotalAmount,

			VoidedAt:   formatTimePtr(it.VoidedAt),
			VoidReason: it.VoidReason,
			VoidedBy:   it.VoidedBy,
		})
	}
	for _, tx := range txs {
		resp.Transactions = append(resp.Transactions, dto.TransactionResponse{
			ID:          tx.ID,
			Type:        tx.Type,
			Amount:      tx.Amount,
			Method:      tx.Method,
			MethodOther: tx.MethodOther,
			Comment:     tx.Comment,
			ReceivedBy:  tx.ReceivedBy,
			ReceivedAt:  tx.ReceivedAt.Format(time.RFC3339),

			VoidedAt:   formatTimePtr(tx.VoidedAt),
			VoidReason: tx.VoidReason,
			VoidedBy:   tx.VoidedBy,
		})
	}
	return resp
}

func toSummary(inv *entity.Invoice) *dto.InvoiceSummaryResponse {
	return &dto.InvoiceSummaryResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		CustomerID: inv.CustomerID,
		Currency:   inv.Currency,
		IssuedAt:   inv.IssuedAt.Format(time.RFC3339),
		Status:     inv.Status,
		Total:      inv.TotalAmount,
		AmountPaid: inv.AmountPaid,
		BalanceDue: inv.BalanceDue,
	}
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
