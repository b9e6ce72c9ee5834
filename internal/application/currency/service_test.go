package currency_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfuentesp/cajapos-api/internal/application/currency"
	"github.com/mfuentesp/cajapos-api/internal/domain"
	"github.com/mfuentesp/cajapos-api/pkg/logger"
)

// TestMain apaga el logger global durante las pruebas del paquete.
func TestMain(m *testing.M) {
	log.Logger = logger.Nop().Zerolog()
	os.Exit(m.Run())
}

// ──────────────────────────────────────────────────────────────────────────────
// El servicio de conversión resuelve en orden: identidad, caché, proveedor,
// tabla estática. Estos tests fijan ese orden, el TTL con reloj inyectado y
// la regla de margen unidireccional (solo al convertir hacia la moneda base).
// ──────────────────────────────────────────────────────────────────────────────

func TestGetRate_IdentidadSinConsultarProveedor(t *testing.T) {
	source := &stubSource{rate: dec("4000")}
	svc := buildService(source, newManualClock())

	rate, err := svc.GetRate(context.Background(), "USD", "USD")

	require.NoError(t, err)
	assert.True(t, dec("1").Equal(rate), "misma moneda siempre es tasa 1")
	assert.Equal(t, 0, source.calls, "la identidad no consulta al proveedor")
}

func TestGetRate_MargenSoloHaciaLaMonedaBase(t *testing.T) {
	clock := newManualClock()

	// Hacia la moneda base (USD→COP): tasa del proveedor más el margen.
	source := &stubSource{rate: dec("4000")}
	svc := buildService(source, clock)
	rate, err := svc.GetRate(context.Background(), "USD", "COP")
	require.NoError(t, err)
	assert.True(t, dec("4050").Equal(rate), "4000 + margen 50, obtuve %s", rate)

	// Saliendo de la moneda base (COP→USD): la tasa va sin recargo.
	source = &stubSource{rate: dec("0.00025")}
	svc = buildService(source, clock)
	rate, err = svc.GetRate(context.Background(), "COP", "USD")
	require.NoError(t, err)
	assert.True(t, dec("0.00025").Equal(rate), "sin margen al salir de la base, obtuve %s", rate)
}

func TestGetRate_CacheEvitaSegundaConsulta(t *testing.T) {
	source := &stubSource{rate: dec("4000")}
	svc := buildService(source, newManualClock())

	_, err := svc.GetRate(context.Background(), "USD", "COP")
	require.NoError(t, err)
	rate, err := svc.GetRate(context.Background(), "USD", "COP")
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls, "la segunda consulta sale de la caché")
	assert.True(t, dec("4050").Equal(rate))
}

func TestGetRate_TTLExpiraConElReloj(t *testing.T) {
	clock := newManualClock()
	source := &stubSource{rate: dec("4000")}
	svc := buildService(source, clock)

	_, err := svc.GetRate(context.Background(), "USD", "COP")
	require.NoError(t, err)

	clock.Advance(61 * time.Minute) // TTL de la caché es 1 h

	source.rate = dec("4200")
	rate, err := svc.GetRate(context.Background(), "USD", "COP")
	require.NoError(t, err)

	assert.Equal(t, 2, source.calls, "tras expirar el TTL se vuelve al proveedor")
	assert.True(t, dec("4250").Equal(rate), "tasa fresca 4200 + margen, obtuve %s", rate)
}

// ── Respaldo estático ─────────────────────────────────────────────────────────

func TestGetRate_RespaldoDirecto(t *testing.T) {
	source := &stubSource{err: errors.New("proveedor caído")}
	svc := buildService(source, newManualClock())

	rate, err := svc.GetRate(context.Background(), "USD", "COP")

	require.NoError(t, err, "la falla del proveedor degrada, no propaga")
	assert.True(t, dec("4050").Equal(rate), "tabla estática 4000 + margen, obtuve %s", rate)
}

func TestGetRate_RespaldoReciproco(t *testing.T) {
	// La tabla solo trae USD→COP; COP→USD se resuelve como su recíproco.
	source := &stubSource{err: errors.New("proveedor caído")}
	svc := buildService(source, newManualClock())

	rate, err := svc.GetRate(context.Background(), "COP", "USD")

	require.NoError(t, err)
	assert.True(t, dec("0.00025").Equal(rate), "recíproco de 4000, obtuve %s", rate)
}

func TestGetRate_RespaldoPorDefectoUno(t *testing.T) {
	// Sin ruta directa ni inversa en la tabla queda la tasa neutra 1.
	source := &stubSource{err: errors.New("proveedor caído")}
	svc := buildService(source, newManualClock())

	rate, err := svc.GetRate(context.Background(), "EUR", "USD")

	require.NoError(t, err)
	assert.True(t, dec("1").Equal(rate), "sin ruta la tasa es 1, obtuve %s", rate)
}

func TestGetRate_RespaldoTambienSeCachea(t *testing.T) {
	// Un proveedor intermitente no debe golpearse en cada consulta: el
	// resultado del respaldo queda cacheado su TTL completo.
	source := &stubSource{err: errors.New("proveedor caído")}
	svc := buildService(source, newManualClock())

	_, err := svc.GetRate(context.Background(), "USD", "COP")
	require.NoError(t, err)

	source.err = nil
	source.rate = dec("9999")
	rate, err := svc.GetRate(context.Background(), "USD", "COP")
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls, "mientras el respaldo esté vigente no se reconsulta")
	assert.True(t, dec("4050").Equal(rate))
}

func TestGetRate_RecuperaProveedorTrasExpirar(t *testing.T) {
	clock := newManualClock()
	source := &stubSource{err: errors.New("proveedor caído")}
	svc := buildService(source, clock)

	rate, err := svc.GetRate(context.Background(), "USD", "COP")
	require.NoError(t, err)
	require.True(t, dec("4050").Equal(rate), "primera consulta sale del respaldo")

	clock.Advance(2 * time.Hour)
	source.err = nil
	source.rate = dec("4100")

	rate, err = svc.GetRate(context.Background(), "USD", "COP")
	require.NoError(t, err)
	assert.True(t, dec("4150").Equal(rate), "el proveedor recuperado reemplaza al respaldo, obtuve %s", rate)
}

func TestGetRate_MonedaNoSoportada(t *testing.T) {
	svc := buildService(&stubSource{rate: dec("1")}, newManualClock())

	_, err := svc.GetRate(context.Background(), "USD", "XXX")
	assert.ErrorIs(t, err, domain.ErrUnsupportedCurrency)

	_, err = svc.GetRate(context.Background(), "XXX", "USD")
	assert.ErrorIs(t, err, domain.ErrUnsupportedCurrency)
}

// ── Convert y ProfitDisplay ───────────────────────────────────────────────────

func TestConvert_RedondeaADosDecimales(t *testing.T) {
	source := &stubSource{rate: dec("0.000247")}
	svc := buildService(source, newManualClock())

	got, err := svc.Convert(context.Background(), dec("100000"), "COP", "USD")

	require.NoError(t, err)
	assert.True(t, dec("24.70").Equal(got), "100000 × 0.000247 = 24.70, obtuve %s", got)
}

func TestProfitDisplay_ConvierteElCostoYEstimaMargen(t *testing.T) {
	// Venta en COP con costo en USD: el costo se convierte con margen
	// (USD→COP va hacia la moneda base) y la ganancia sale en COP.
	source := &stubSource{rate: dec("4000")}
	svc := buildService(source, newManualClock())

	res, err := svc.ProfitDisplay(context.Background(), dec("500000"), "COP", dec("100"), "USD")

	require.NoError(t, err)
	assert.True(t, dec("405000").Equal(res.CostConverted), "costo 100 × 4050, obtuve %s", res.CostConverted)
	assert.True(t, dec("95000").Equal(res.Profit), "ganancia 500000 − 405000, obtuve %s", res.Profit)
	require.NotNil(t, res.MarkupPercent)
	assert.True(t, dec("23.46").Equal(*res.MarkupPercent),
		"margen 95000/405000 = 23.46%%, obtuve %s", res.MarkupPercent)
}

func TestProfitDisplay_MargenIndefinidoConCostoCero(t *testing.T) {
	source := &stubSource{rate: dec("4000")}
	svc := buildService(source, newManualClock())

	res, err := svc.ProfitDisplay(context.Background(), dec("500000"), "COP", decimal.Zero, "USD")

	require.NoError(t, err)
	assert.True(t, res.CostConverted.IsZero())
	assert.Nil(t, res.MarkupPercent, "sin costo convertido no hay porcentaje de margen")
}

// ── helpers ───────────────────────────────────────────────────────────────────

type stubSource struct {
	rate  decimal.Decimal
	err   error
	calls int
}

func (s *stubSource) Fetch(ctx context.Context, base, quote string) (decimal.Decimal, error) {
	s.calls++
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.rate, nil
}

type manualClock struct {
	t time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (m *manualClock) Now() time.Time          { return m.t }
func (m *manualClock) Advance(d time.Duration) { m.t = m.t.Add(d) }

func buildService(source *stubSource, clock *manualClock) *currency.Service {
	cache := currency.NewRateCache(time.Hour, clock.Now)
	return currency.NewService(source, cache, currency.Config{
		BaseCurrency: "COP",
		Supported:    []string{"COP", "USD", "EUR"},
		MarkupSpread: dec("50"),
		StaticRates: map[string]decimal.Decimal{
			"USD_COP": dec("4000"),
		},
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
