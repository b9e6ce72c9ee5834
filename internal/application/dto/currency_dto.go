package dto

import "github.com/shopspring/decimal"

// RateResponse respuesta de GET /api/rates?base=&quote=.
type RateResponse struct {
	Base  string          `json:"base"`
	Quote string          `json:"quote"`
	Rate  decimal.Decimal `json:"rate"`
}

// ConversionResponse monto convertido para despliegue.
type ConversionResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Formatted string          `json:"formatted"` // ej. "USD 1,234.50"
}

// ProfitDisplayResponse ganancia estimada de una factura con el costo
// convertido a la moneda de venta. Solo despliegue: nunca toca los
// montos registrados en el libro.
type ProfitDisplayResponse struct {
	SellingAmount   decimal.Decimal  `json:"selling_amount"`
	SellingCurrency string           `json:"selling_currency"`
	CostAmount      decimal.Decimal  `json:"cost_amount"`
	CostCurrency    string           `json:"cost_currency"`
	CostConverted   decimal.Decimal  `json:"cost_converted"`
	Profit          decimal.Decimal  `json:"profit"`
	MarkupPercent   *decimal.Decimal `json:"markup_percent,omitempty"` // ausente con costo convertido en cero
	Formatted       string           `json:"formatted"`                // ganancia formateada en la moneda de venta
}
