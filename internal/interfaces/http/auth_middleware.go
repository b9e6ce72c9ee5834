package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/mfuentesp/cajapos-api/internal/application/dto"
	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
	"github.com/mfuentesp/cajapos-api/pkg/jwt"
)

// Locals keys para el actor y sus capacidades en Fiber.
const (
	LocalUserID      = "user_id"
	LocalUserName    = "user_name"
	LocalCanVoid     = "can_void"
	LocalCanCancel   = "can_cancel"
	LocalMaxDiscount = "max_discount_percent"
)

// AuthMiddleware valida el Bearer Token JWT y carga a c.Locals el actor
// y las capacidades que la puerta de acceso emitió en los claims.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if claims.UserID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_SUBJECT", Message: "token sin identidad de actor"})
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUserName, claims.Name)
		c.Locals(LocalCanVoid, claims.CanVoid)
		c.Locals(LocalCanCancel, claims.CanCancel)
		c.Locals(LocalMaxDiscount, claims.MaxDiscountPercent)
		return c.Next()
	}
}

// GetActor devuelve el actor autenticado (después del middleware de auth).
func GetActor(c *fiber.Ctx) entity.Actor {
	id, _ := c.Locals(LocalUserID).(string)
	name, _ := c.Locals(LocalUserName).(string)
	return entity.Actor{ID: id, Name: name}
}

// GetCapabilities devuelve las capacidades del actor autenticado.
// Fuera del middleware todo queda en el valor cero: sin permisos.
func GetCapabilities(c *fiber.Ctx) entity.Capabilities {
	canVoid, _ := c.Locals(LocalCanVoid).(bool)
	canCancel, _ := c.Locals(LocalCanCancel).(bool)
	maxDiscount, _ := c.Locals(LocalMaxDiscount).(decimal.Decimal)
	return entity.Capabilities{
		MaxDiscountPercent: maxDiscount,
		CanVoid:            canVoid,
		CanCancel:          canCancel,
	}
}

// RequireVoid corta con 403 si el actor no puede anular líneas ni
// transacciones. Debe usarse DESPUÉS de AuthMiddleware.
func RequireVoid() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !GetCapabilities(c).CanVoid {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "el actor no tiene la capacidad de anular registros",
			})
		}
		return c.Next()
	}
}

// RequireCancel corta con 403 si el actor no puede anular facturas
// completas. Debe usarse DESPUÉS de AuthMiddleware.
func RequireCancel() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !GetCapabilities(c).CanCancel {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "FORBIDDEN",
				Message: "el actor no tiene la capacidad de anular facturas",
			})
		}
		return c.Next()
	}
}

// discountWithinCap verifica el tope porcentual del actor sobre un
// descuento solicitado. Solo aplica a descuentos porcentuales; los
// montos fijos no pasan por la puerta, el caso de uso los acota contra
// la base al calcular.
func discountWithinCap(c *fiber.Ctx, d dto.DiscountRequest) bool {
	if d.Type != entity.DiscountTypePercentage {
		return true
	}
	return d.Value.LessThanOrEqual(GetCapabilities(c).MaxDiscountPercent)
}
