package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mfuentesp/cajapos-api/internal/application/dto"
	"github.com/mfuentesp/cajapos-api/internal/application/ledger"
)

// ItemHandler maneja las líneas de factura (protegido).
type ItemHandler struct {
	uc *ledger.InvoiceUseCase
}

// NewItemHandler construye el handler.
func NewItemHandler(uc *ledger.InvoiceUseCase) *ItemHandler {
	return &ItemHandler{uc: uc}
}

// Add godoc
// @Summary      Agregar línea a la factura
// @Description  Con asset_id reserva existencias; sin asset_id es línea de texto libre.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la factura"
// @Param        body  body  dto.AddItemRequest  true  "Datos de la línea"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/items [post]
func (h *ItemHandler) Add(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.AddItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if !discountWithinCap(c, in.Discount) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el descuento excede el tope del actor"})
	}
	out, err := h.uc.AddItem(c.Context(), GetActor(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar cantidad, precio o descuento de una línea
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string  true  "ID de la factura"
// @Param        itemID  path  string  true  "ID de la línea"
// @Param        body    body  dto.UpdateItemRequest  true  "Datos a actualizar"
// @Success      200     {object}  dto.InvoiceResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/items/{itemID} [put]
func (h *ItemHandler) Update(c *fiber.Ctx) error {
	id, itemID := c.Params("id"), c.Params("itemID")
	if id == "" || itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id e itemID son requeridos"})
	}
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if !discountWithinCap(c, in.Discount) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el descuento excede el tope del actor"})
	}
	out, err := h.uc.UpdateItem(c.Context(), GetActor(c), id, itemID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Remove godoc
// @Summary      Retirar una línea no anulada (corrección en borrador)
// @Description  Libera la reserva de existencias; para exclusión auditable usar void.
// @Tags         items
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID de la factura"
// @Param        itemID  path  string  true  "ID de la línea"
// @Success      200     {object}  dto.InvoiceResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/items/{itemID} [delete]
func (h *ItemHandler) Remove(c *fiber.Ctx) error {
	id, itemID := c.Params("id"), c.Params("itemID")
	if id == "" || itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id e itemID son requeridos"})
	}
	out, err := h.uc.RemoveItem(c.Context(), GetActor(c), id, itemID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Void godoc
// @Summary      Anular una línea total o parcialmente
// @Description  Con quantity menor a la cantidad de la línea se divide: la parte viva conserva el resto y la anulada queda como rastro de auditoría.
// @Tags         items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string  true  "ID de la factura"
// @Param        itemID  path  string  true  "ID de la línea"
// @Param        body    body  dto.VoidItemRequest  true  "Motivo y cantidad a anular"
// @Success      200     {object}  dto.InvoiceResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/items/{itemID}/void [post]
func (h *ItemHandler) Void(c *fiber.Ctx) error {
	id, itemID := c.Params("id"), c.Params("itemID")
	if id == "" || itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id e itemID son requeridos"})
	}
	var in dto.VoidItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.VoidItem(c.Context(), GetActor(c), id, itemID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
