package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// Se añaden las capacidades del actor para que el middleware pueda tomar
// decisiones sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID             string          `json:"user_id"`
	Name               string          `json:"name"`
	CanVoid            bool            `json:"can_void"`
	CanCancel          bool            `json:"can_cancel"`
	MaxDiscountPercent decimal.Decimal `json:"max_discount_percent"`
}

// Grant describe al actor y sus capacidades al emitir un token.
type Grant struct {
	UserID             string
	Name               string
	CanVoid            bool
	CanCancel          bool
	MaxDiscountPercent decimal.Decimal
}

// Generate genera un token JWT firmado con la identidad y capacidades del actor.
func Generate(secret, issuer string, expMinutes int, g Grant) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   g.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:             g.UserID,
		Name:               g.Name,
		CanVoid:            g.CanVoid,
		CanCancel:          g.CanCancel,
		MaxDiscountPercent: g.MaxDiscountPercent,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve los claims del actor.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	return claims, nil
}
