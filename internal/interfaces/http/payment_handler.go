package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mfuentesp/cajapos-api/internal/application/dto"
	"github.com/mfuentesp/cajapos-api/internal/application/ledger"
)

// PaymentHandler maneja pagos, devoluciones y anulaciones de
// transacciones (protegido).
type PaymentHandler struct {
	uc *ledger.InvoiceUseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *ledger.InvoiceUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// AddPayment godoc
// @Summary      Registrar un pago
// @Description  Rechaza pagos que excedan el saldo pendiente; el mensaje nombra el máximo permitido.
// @Tags         payments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la factura"
// @Param        body  body  dto.AddTransactionRequest  true  "Datos del pago"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/payments [post]
func (h *PaymentHandler) AddPayment(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.AddTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.AddPayment(c.Context(), GetActor(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddRefund godoc
// @Summary      Registrar una devolución
// @Description  Acotada por el monto cobrado neto; el mensaje nombra el máximo devolvible.
// @Tags         payments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la factura"
// @Param        body  body  dto.AddTransactionRequest  true  "Datos de la devolución"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/refunds [post]
func (h *PaymentHandler) AddRefund(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.AddTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.AddRefund(c.Context(), GetActor(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// VoidTransaction godoc
// @Summary      Anular un pago o devolución
// @Description  Exclusión auditable e irreversible; el saldo se recalcula resumando lo no anulado.
// @Tags         payments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la factura"
// @Param        txID  path  string  true  "ID de la transacción"
// @Param        body  body  dto.VoidTransactionRequest  true  "Motivo de anulación"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/transactions/{txID}/void [post]
func (h *PaymentHandler) VoidTransaction(c *fiber.Ctx) error {
	id, txID := c.Params("id"), c.Params("txID")
	if id == "" || txID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id y txID son requeridos"})
	}
	var in dto.VoidTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.VoidTransaction(c.Context(), GetActor(c), id, txID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
