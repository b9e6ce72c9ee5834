package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/mfuentesp/cajapos-api/internal/application/currency"
	"github.com/mfuentesp/cajapos-api/internal/application/dto"
)

// RatesHandler expone la conversión de monedas de solo lectura (protegido).
type RatesHandler struct {
	svc *currency.Service
}

// NewRatesHandler construye el handler.
func NewRatesHandler(svc *currency.Service) *RatesHandler {
	return &RatesHandler{svc: svc}
}

// GetRate godoc
// @Summary      Tasa de cambio con margen aplicado
// @Description  El margen solo se suma al convertir hacia la moneda base del comercio.
// @Tags         rates
// @Security     Bearer
// @Produce      json
// @Param        base   query  string  true  "Moneda origen"
// @Param        quote  query  string  true  "Moneda destino"
// @Success      200    {object}  dto.RateResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/rates [get]
func (h *RatesHandler) GetRate(c *fiber.Ctx) error {
	base, quote := c.Query("base"), c.Query("quote")
	if base == "" || quote == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "base y quote son requeridos"})
	}
	rate, err := h.svc.GetRate(c.Context(), base, quote)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.RateResponse{Base: base, Quote: quote, Rate: rate})
}

// Convert godoc
// @Summary      Convertir un monto entre monedas para despliegue
// @Tags         rates
// @Security     Bearer
// @Produce      json
// @Param        amount  query  string  true  "Monto decimal, ej. 1234.50"
// @Param        from    query  string  true  "Moneda origen"
// @Param        to      query  string  true  "Moneda destino"
// @Success      200     {object}  dto.ConversionResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/rates/convert [get]
func (h *RatesHandler) Convert(c *fiber.Ctx) error {
	from, to := c.Query("from"), c.Query("to")
	if from == "" || to == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from y to son requeridos"})
	}
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "amount debe ser un decimal válido"})
	}
	converted, err := h.svc.Convert(c.Context(), amount, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ConversionResponse{
		Amount:    converted,
		Currency:  to,
		Formatted: currency.FormatAmount(to, converted),
	})
}
