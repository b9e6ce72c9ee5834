package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/mfuentesp/cajapos-api/internal/application/dto"
	"github.com/mfuentesp/cajapos-api/internal/domain"
)

// errorRule asocia un error centinela del dominio con su estado HTTP y
// código de respuesta.
type errorRule struct {
	sentinel error
	status   int
	code     string
}

// La tabla se consulta en orden; los centinelas más específicos van
// antes que los genéricos.
var errorRules = []errorRule{
	{domain.ErrCommentRequired, fiber.StatusBadRequest, "COMMENT_REQUIRED"},
	{domain.ErrReasonRequired, fiber.StatusBadRequest, "REASON_REQUIRED"},
	{domain.ErrDiscountOutOfRange, fiber.StatusBadRequest, "DISCOUNT_OUT_OF_RANGE"},
	{domain.ErrQuantityOutOfRange, fiber.StatusBadRequest, "QUANTITY_OUT_OF_RANGE"},
	{domain.ErrUnsupportedCurrency, fiber.StatusBadRequest, "UNSUPPORTED_CURRENCY"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInvoiceCancelled, fiber.StatusConflict, "INVOICE_CANCELLED"},
	{domain.ErrAlreadyVoided, fiber.StatusConflict, "ALREADY_VOIDED"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrPaymentExceedsBalance, fiber.StatusUnprocessableEntity, "PAYMENT_EXCEEDS_BALANCE"},
	{domain.ErrRefundExceedsPaid, fiber.StatusUnprocessableEntity, "REFUND_EXCEEDS_PAID"},
	{domain.ErrCancelRequiresZeroPaid, fiber.StatusUnprocessableEntity, "CANCEL_REQUIRES_ZERO_PAID"},
}

// respondError traduce un error de dominio a la respuesta HTTP.
// El mensaje conserva la cota calculada que el caso de uso adjunta con
// %w (máximo permitido, cobrado neto actual, etc.).
func respondError(c *fiber.Ctx, err error) error {
	for _, r := range errorRules {
		if errors.Is(err, r.sentinel) {
			return c.Status(r.status).JSON(dto.ErrorResponse{Code: r.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
