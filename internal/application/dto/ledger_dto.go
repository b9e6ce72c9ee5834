package dto

import "github.com/shopspring/decimal"

// DiscountRequest descriptor de descuento, igual para línea y factura.
type DiscountRequest struct {
	Type  string          `json:"type"` // none|percentage|fixed
	Value decimal.Decimal `json:"value"`
}

// CreateInvoiceRequest body para POST /api/invoices.
type CreateInvoiceRequest struct {
	CustomerID string `json:"customer_id,omitempty"` // vacío = venta de mostrador
	Currency   string `json:"currency,omitempty"`    // vacío = moneda base del comercio
	IssuedAt   string `json:"issued_at,omitempty"`   // RFC 3339; vacío = ahora
}

// AddItemRequest body para POST /api/invoices/:id/items.
// AssetID vacío produce una línea de texto libre (solo Description).
type AddItemRequest struct {
	AssetID     string          `json:"asset_id,omitempty"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Discount    DiscountRequest `json:"discount"`
}

// UpdateItemRequest body para PUT /api/invoices/:id/items/:itemID.
type UpdateItemRequest struct {
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  DiscountRequest `json:"discount"`
}

// AddTransactionRequest body para POST /api/invoices/:id/payments y /refunds.
type AddTransactionRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`                 // CASH|CARD|TRANSFER|OTHER
	MethodOther string          `json:"method_other,omitempty"` // detalle obligatorio con OTHER
	Comment     string          `json:"comment"`
	ReceivedAt  string          `json:"received_at,omitempty"` // RFC 3339; vacío = ahora
}

// VoidTransactionRequest body para anular una transacción.
type VoidTransactionRequest struct {
	Reason string `json:"reason"`
}

// VoidItemRequest body para anular una línea.
// Quantity en [1, cantidad) anula parcialmente dividiendo la línea;
// cero o la cantidad completa anulan toda la línea.
type VoidItemRequest struct {
	Reason   string `json:"reason"`
	Quantity int64  `json:"quantity,omitempty"`
}

// CancelInvoiceRequest body para anular la factura completa.
type CancelInvoiceRequest struct {
	Reason string `json:"reason"`
}

// InvoiceResponse factura completa con líneas y transacciones para
// GET /api/invoices/:id y como respuesta de toda operación mutadora.
type InvoiceResponse struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	CustomerID string `json:"customer_id,omitempty"`
	Currency   string `json:"currency"`
	IssuedAt   string `json:"issued_at"`
	Status     string `json:"status"` // UNPAID|PARTIALLY_PAID|PAID|CANCELLED

	DiscountType    string          `json:"discount_type"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`

	Subtotal      decimal.Decimal  `json:"subtotal"`
	Total         decimal.Decimal  `json:"total"`
	AmountPaid    decimal.Decimal  `json:"amount_paid"`
	BalanceDue    decimal.Decimal  `json:"balance_due"`
	TotalCost     decimal.Decimal  `json:"total_cost"`
	TotalProfit   decimal.Decimal  `json:"total_profit"`
	MarginPercent *decimal.Decimal `json:"margin_percent,omitempty"` // ausente con total en cero

	CancelledAt  string `json:"cancelled_at,omitempty"`
	CancelledBy  string `json:"cancelled_by,omitempty"`
	CancelReason string `json:"cancel_reason,omitempty"`

	Version int64 `json:"version"`

	Items        []InvoiceItemResponse `json:"items"`
	Transactions []TransactionResponse `json:"transactions"`
}

// InvoiceSummaryResponse cabecera de factura para listados.
type InvoiceSummaryResponse struct {
	ID         string          `json:"id"`
	Number     string          `json:"number"`
	CustomerID string          `json:"customer_id,omitempty"`
	Currency   string          `json:"currency"`
	IssuedAt   string          `json:"issued_at"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	BalanceDue decimal.Decimal `json:"balance_due"`
}

// InvoiceItemResponse línea en la respuesta, con metadatos de anulación.
type InvoiceItemResponse struct {
	ID          string `json:"id"`
	AssetID     string `json:"asset_id,omitempty"`
	Description string `json:"description"`

	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`

	DiscountType    string          `json:"discount_type"`
	DiscountValue   decimal.Decimal `json:"discount_value"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`

	LineTotal decimal.Decimal `json:"line_total"`

	VoidedAt   string `json:"voided_at,omitempty"`
	VoidReason string `json:"void_reason,omitempty"`
	VoidedBy   string `json:"voided_by,omitempty"`
}

// TransactionResponse pago o devolución en la respuesta.
type TransactionResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"` // PAYMENT|REFUND
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	MethodOther string          `json:"method_other,omitempty"`
	Comment     string          `json:"comment"`
	ReceivedBy  string          `json:"received_by"`
	ReceivedAt  string          `json:"received_at"`

	VoidedAt   string `json:"voided_at,omitempty"`
	VoidReason string `json:"void_reason,omitempty"`
	VoidedBy   string `json:"voided_by,omitempty"`
}
