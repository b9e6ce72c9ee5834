package currency

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/mfuentesp/cajapos-api/internal/domain"
)

// RateSource define el puerto de salida hacia el proveedor de tasas.
// La implementación concreta usa HTTP; para tests se inyecta un stub.
type RateSource interface {
	Fetch(ctx context.Context, base, quote string) (decimal.Decimal, error)
}

// Config parámetros del servicio de conversión.
type Config struct {
	// BaseCurrency es la moneda en la que opera el comercio. El margen
	// solo se aplica al convertir HACIA ella, nunca al salir de ella.
	BaseCurrency string
	// Supported es el conjunto cerrado de monedas aceptadas.
	Supported []string
	// MarkupSpread margen aditivo fijo sobre la tasa del proveedor.
	MarkupSpread decimal.Decimal
	// StaticRates tabla de respaldo "BASE_QUOTE" → tasa, usada cuando el
	// proveedor falla.
	StaticRates map[string]decimal.Decimal
}

// Service resuelve tasas de cambio para despliegue y estimación de
// ganancia. Jamás participa en los montos registrados del libro: esos se
// guardan en la moneda de la factura y no se reconvierten.
type Service struct {
	source RateSource
	cache  *RateCache
	cfg    Config
}

// NewService construye el servicio con su fuente, caché y configuración.
func NewService(source RateSource, cache *RateCache, cfg Config) *Service {
	return &Service{source: source, cache: cache, cfg: cfg}
}

// GetRate devuelve la tasa base→quote con margen aplicado cuando
// corresponde. Orden de resolución: identidad, caché, proveedor, tabla
// estática. El resultado del respaldo también se cachea para no golpear
// al proveedor caído en cada consulta.
func (s *Service) GetRate(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	if !s.supports(base) || !s.supports(quote) {
		return decimal.Zero, domain.ErrUnsupportedCurrency
	}
	if base == quote {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := s.cache.Get(base, quote); ok {
		return rate, nil
	}

	rate, err := s.source.Fetch(ctx, base, quote)
	if err != nil {
		log.Warn().Err(err).
			Str("base", base).
			Str("quote", quote).
			Msg("proveedor de tasas no disponible, usando tabla estática")
		rate = s.staticRate(base, quote)
	}

	rate = s.applyMarkup(rate, quote)
	s.cache.Put(base, quote, rate)
	return rate, nil
}

// Convert convierte un monto entre monedas con redondeo a 2 decimales.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	rate, err := s.GetRate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate).Round(2), nil
}

// ProfitResult ganancia estimada con el costo convertido a la moneda de
// venta. MarkupPercent es nil cuando el costo convertido es cero.
type ProfitResult struct {
	CostConverted decimal.Decimal
	Profit        decimal.Decimal
	MarkupPercent *decimal.Decimal
}

// ProfitDisplay estima la ganancia de una venta cuyo costo está en otra
// moneda. Solo para despliegue; el libro nunca guarda estos valores.
func (s *Service) ProfitDisplay(ctx context.Context, sellingAmount decimal.Decimal, sellingCurrency string, costAmount decimal.Decimal, costCurrency string) (*ProfitResult, error) {
	costConverted, err := s.Convert(ctx, costAmount, costCurrency, sellingCurrency)
	if err != nil {
		return nil, err
	}
	profit := sellingAmount.Sub(costConverted).Round(2)

	res := &ProfitResult{CostConverted: costConverted, Profit: profit}
	if costConverted.IsPositive() {
		pct := profit.Div(costConverted).Mul(decimal.NewFromInt(100)).Round(2)
		res.MarkupPercent = &pct
	}
	return res, nil
}

// BaseCurrency expone la moneda base configurada del comercio.
func (s *Service) BaseCurrency() string {
	return s.cfg.BaseCurrency
}

// Supports indica si la moneda pertenece al conjunto configurado.
func (s *Service) Supports(code string) bool {
	return s.supports(code)
}

func (s *Service) supports(code string) bool {
	for _, c := range s.cfg.Supported {
		if c == code {
			return true
		}
	}
	return false
}

// applyMarkup suma el margen solo al convertir hacia la moneda base del
// comercio; la dirección contraria se entrega sin recargo.
func (s *Service) applyMarkup(rate decimal.Decimal, quote string) decimal.Decimal {
	if quote != s.cfg.BaseCurrency || s.cfg.MarkupSpread.LessThanOrEqual(decimal.Zero) {
		return rate
	}
	return rate.Add(s.cfg.MarkupSpread)
}

// staticRate resuelve la tasa de respaldo: ruta directa, recíproca de la
// inversa, o 1 como último recurso.
func (s *Service) staticRate(base, quote string) decimal.Decimal {
	if r, ok := s.cfg.StaticRates[rateKey(base, quote)]; ok && r.IsPositive() {
		return r
	}
	if r, ok := s.cfg.StaticRates[rateKey(quote, base)]; ok && r.IsPositive() {
		return decimal.NewFromInt(1).Div(r)
	}
	return decimal.NewFromInt(1)
}
