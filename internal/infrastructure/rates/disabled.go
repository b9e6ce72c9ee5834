package rates

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mfuentesp/cajapos-api/internal/application/currency"
)

var _ currency.RateSource = Disabled{}

// Disabled es la fuente nula para instalaciones sin proveedor de tasas:
// siempre falla, de modo que el servicio resuelva con la tabla estática.
type Disabled struct{}

// Fetch reporta que no hay proveedor configurado.
func (Disabled) Fetch(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("rates: proveedor no configurado")
}
