package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// ErrConflict indica una escritura perdida detectada (versión obsoleta).
	// El caller puede reintentar la operación completa.
	ErrConflict = errors.New("conflicto con el estado actual, reintente la operación")
)

// Errores del libro de factura. Las cotas calculadas se adjuntan con
// fmt.Errorf("%w: máximo permitido X") en el caso de uso, de modo que
// errors.Is siga funcionando y el mensaje incluya el monto límite.
var (
	ErrInvoiceCancelled       = errors.New("la factura está anulada, no admite mutaciones")
	ErrPaymentExceedsBalance  = errors.New("el pago excede el saldo pendiente")
	ErrRefundExceedsPaid      = errors.New("la devolución excede el monto cobrado")
	ErrCancelRequiresZeroPaid = errors.New("solo se puede anular una factura con pagos netos en cero")
	ErrAlreadyVoided          = errors.New("el registro ya fue anulado")
	ErrCommentRequired        = errors.New("el comentario es obligatorio")
	ErrReasonRequired         = errors.New("el motivo es obligatorio")
	ErrDiscountOutOfRange     = errors.New("descuento porcentual fuera de rango (0 a 100)")
	ErrUnsupportedCurrency    = errors.New("moneda no soportada")
	ErrQuantityOutOfRange     = errors.New("cantidad fuera de rango")
	ErrInsufficientStock      = errors.New("stock insuficiente")
)
