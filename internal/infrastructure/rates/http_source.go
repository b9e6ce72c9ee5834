package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfuentesp/cajapos-api/internal/application/currency"
)

var _ currency.RateSource = (*HTTPSource)(nil)

// HTTPSource implementa currency.RateSource contra un proveedor HTTP de
// tasas de cambio. El contrato es un GET simple:
//
//	GET {baseURL}/rate?base=USD&quote=COP
//	200 → {"base":"USD","quote":"COP","rate":"4050.25"}
//
// La tasa viaja como cadena decimal para no perder precisión en el
// camino. Cualquier otra respuesta es un error; el servicio de monedas
// decide el respaldo.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPSource construye el cliente del proveedor. El timeout corto es
// deliberado: una tasa vieja del respaldo vale más que una caja bloqueada.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type ratePayload struct {
	Base  string          `json:"base"`
	Quote string          `json:"quote"`
	Rate  decimal.Decimal `json:"rate"`
}

// Fetch consulta la tasa base→quote al proveedor.
func (s *HTTPSource) Fetch(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/rate?base=%s&quote=%s",
		s.baseURL, url.QueryEscape(base), url.QueryEscape(quote))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rates: crear request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return decimal.Zero, fmt.Errorf("rates: timeout o cancelación: %w", ctx.Err())
		}
		return decimal.Zero, fmt.Errorf("rates: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rates: el proveedor respondió %d", resp.StatusCode)
	}

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return decimal.Zero, fmt.Errorf("rates: leer respuesta: %w", err)
	}

	var payload ratePayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("rates: respuesta inválida del proveedor: %w", err)
	}
	if !payload.Rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("rates: tasa no positiva %s para %s_%s", payload.Rate, base, quote)
	}
	return payload.Rate, nil
}
