package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfuentesp/cajapos-api/internal/application/currency"
	"github.com/mfuentesp/cajapos-api/internal/application/dto"
	"github.com/mfuentesp/cajapos-api/internal/application/ledger"
	"github.com/mfuentesp/cajapos-api/internal/infrastructure/inventory"
	"github.com/mfuentesp/cajapos-api/internal/infrastructure/memory"
	apphttp "github.com/mfuentesp/cajapos-api/internal/interfaces/http"
	"github.com/mfuentesp/cajapos-api/pkg/logger"
)

// TestMain apaga el logger global durante las pruebas del paquete.
func TestMain(m *testing.M) {
	log.Logger = logger.Nop().Zerolog()
	os.Exit(m.Run())
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: API completa sobre el almacén en memoria
// ──────────────────────────────────────────────────────────────────────────────

// failingSource simula un proveedor de tasas caído; el servicio debe
// responder con la tabla estática.
type failingSource struct{}

func (failingSource) Fetch(context.Context, string, string) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("proveedor caído")
}

func newAPIFixture() *fiber.App {
	store := memory.NewStore()
	invoiceUC := ledger.NewInvoiceUseCase(
		memory.NewTxRunner(store),
		memory.NewInvoiceRepository(store),
		memory.NewCustomerRepository(store),
		inventory.NewLocal(),
		ledger.Config{NumberPrefix: "FAC", BaseCurrency: "COP", Currencies: []string{"COP", "USD"}},
	)
	customerUC := ledger.NewCustomerUseCase(memory.NewCustomerRepository(store))
	rates := currency.NewService(
		failingSource{},
		currency.NewRateCache(time.Hour, time.Now),
		currency.Config{
			BaseCurrency: "COP",
			Supported:    []string{"COP", "USD"},
			StaticRates:  map[string]decimal.Decimal{"USD_COP": decimal.NewFromInt(4000)},
		},
	)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		InvoiceUC:  invoiceUC,
		CustomerUC: customerUC,
		Rates:      rates,
		JWTSecret:  testJWTSecret,
	})
	return app
}

// doJSON lanza una petición con cuerpo JSON opcional y decodifica la
// respuesta en out (si out no es nil).
func doJSON(t *testing.T, app *fiber.App, method, target, token string, body, out interface{}) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out),
			"la respuesta debe ser JSON decodificable")
	}
	return resp.StatusCode
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo completo de cobro por HTTP
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_FlujoCompletoDeCobro(t *testing.T) {
	app := newAPIFixture()
	token := tokenFor(t, cajeroGrant(true, true))

	// 1) Cliente
	var customer dto.CustomerResponse
	status := doJSON(t, app, http.MethodPost, "/api/customers", token,
		dto.CreateCustomerRequest{Name: "Comercial El Roble", TaxID: "900123456-7"}, &customer)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, customer.ID)

	// 2) Factura nueva
	var inv dto.InvoiceResponse
	status = doJSON(t, app, http.MethodPost, "/api/invoices", token,
		dto.CreateInvoiceRequest{CustomerID: customer.ID, Currency: "COP"}, &inv)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "FAC-000001", inv.Number, "el consecutivo inicia en 1 con ancho fijo")
	assert.Equal(t, "UNPAID", inv.Status)

	// 3) Línea de dos unidades a 100
	status = doJSON(t, app, http.MethodPost, "/api/invoices/"+inv.ID+"/items", token,
		dto.AddItemRequest{
			Description: "Servicio técnico",
			Quantity:    2,
			UnitPrice:   amt("100"),
			UnitCost:    amt("60"),
			Discount:    dto.DiscountRequest{Type: "none"},
		}, &inv)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, amt("200").Equal(inv.Subtotal), "subtotal esperado 200, fue %s", inv.Subtotal)

	// 4) Descuento de factura del 10%
	status = doJSON(t, app, http.MethodPut, "/api/invoices/"+inv.ID+"/discount", token,
		dto.DiscountRequest{Type: "percentage", Value: amt("10")}, &inv)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, amt("180").Equal(inv.Total), "total esperado 180, fue %s", inv.Total)
	assert.True(t, amt("20").Equal(inv.DiscountAmount))

	// 5) Pago completo
	status = doJSON(t, app, http.MethodPost, "/api/invoices/"+inv.ID+"/payments", token,
		dto.AddTransactionRequest{Amount: amt("180"), Method: "CASH", Comment: "cash"}, &inv)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "PAID", inv.Status)
	assert.True(t, inv.BalanceDue.IsZero(), "saldo esperado 0, fue %s", inv.BalanceDue)

	// 6) Lectura y listado
	var read dto.InvoiceResponse
	status = doJSON(t, app, http.MethodGet, "/api/invoices/"+inv.ID, token, nil, &read)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, inv.Number, read.Number)
	assert.Len(t, read.Items, 1)
	assert.Len(t, read.Transactions, 1)

	var list []dto.InvoiceSummaryResponse
	status = doJSON(t, app, http.MethodGet, "/api/invoices", token, nil, &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)
	assert.Equal(t, "PAID", list[0].Status)
}

func TestAPI_PagoExcesivoDevuelve422ConElMaximo(t *testing.T) {
	app := newAPIFixture()
	token := tokenFor(t, cajeroGrant(true, true))

	var inv dto.InvoiceResponse
	require.Equal(t, http.StatusCreated,
		doJSON(t, app, http.MethodPost, "/api/invoices", token, dto.CreateInvoiceRequest{}, &inv))
	require.Equal(t, http.StatusOK,
		doJSON(t, app, http.MethodPost, "/api/invoices/"+inv.ID+"/items", token,
			dto.AddItemRequest{Description: "Servicio técnico", Quantity: 2, UnitPrice: amt("100"), Discount: dto.DiscountRequest{Type: "none"}}, &inv))
	require.Equal(t, http.StatusOK,
		doJSON(t, app, http.MethodPut, "/api/invoices/"+inv.ID+"/discount", token,
			dto.DiscountRequest{Type: "percentage", Value: amt("10")}, &inv))

	var out dto.ErrorResponse
	status := doJSON(t, app, http.MethodPost, "/api/invoices/"+inv.ID+"/payments", token,
		dto.AddTransactionRequest{Amount: amt("200"), Method: "CASH", Comment: "pago completo"}, &out)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "PAYMENT_EXCEEDS_BALANCE", out.Code)
	assert.Contains(t, out.Message, "180.00", "el mensaje debe nombrar el máximo permitido")
}

func TestAPI_AnularSinCapacidadDevuelve403(t *testing.T) {
	app := newAPIFixture()
	admin := tokenFor(t, cajeroGrant(true, true))
	sinPermiso := tokenFor(t, cajeroGrant(false, false))

	var inv dto.InvoiceResponse
	require.Equal(t, http.StatusCreated,
		doJSON(t, app, http.MethodPost, "/api/invoices", admin, dto.CreateInvoiceRequest{}, &inv))
	require.Equal(t, http.StatusOK,
		doJSON(t, app, http.MethodPost, "/api/invoices/"+inv.ID+"/items", admin,
			dto.AddItemRequest{Description: "Servicio técnico", Quantity: 1, UnitPrice: amt("100"), Discount: dto.DiscountRequest{Type: "none"}}, &inv))

	var out dto.ErrorResponse
	status := doJSON(t, app, http.MethodPost,
		"/api/invoices/"+inv.ID+"/items/"+inv.Items[0].ID+"/void", sinPermiso,
		dto.VoidItemRequest{Reason: "defect"}, &out)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", out.Code)

	// La línea sigue viva: la puerta corta antes del caso de uso.
	var read dto.InvoiceResponse
	require.Equal(t, http.StatusOK,
		doJSON(t, app, http.MethodGet, "/api/invoices/"+inv.ID, admin, nil, &read))
	assert.Empty(t, read.Items[0].VoidedAt, "la línea no debe haberse anulado")
}

func TestAPI_DescuentoSobreElTopeDelActorDevuelve403(t *testing.T) {
	app := newAPIFixture()
	admin := tokenFor(t, cajeroGrant(true, true))
	g := cajeroGrant(false, false)
	g.MaxDiscountPercent = amt("10")
	limitado := tokenFor(t, g)

	var inv dto.InvoiceResponse
	require.Equal(t, http.StatusCreated,
		doJSON(t, app, http.MethodPost, "/api/invoices", admin, dto.CreateInvoiceRequest{}, &inv))

	var out dto.ErrorResponse
	status := doJSON(t, app, http.MethodPut, "/api/invoices/"+inv.ID+"/discount", limitado,
		dto.DiscountRequest{Type: "percentage", Value: amt("50")}, &out)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", out.Code)

	// Dentro del tope sí pasa.
	status = doJSON(t, app, http.MethodPut, "/api/invoices/"+inv.ID+"/discount", limitado,
		dto.DiscountRequest{Type: "percentage", Value: amt("10")}, &inv)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_FacturaInexistenteDevuelve404(t *testing.T) {
	app := newAPIFixture()
	token := tokenFor(t, cajeroGrant(true, true))

	var out dto.ErrorResponse
	status := doJSON(t, app, http.MethodGet, "/api/invoices/no-existe", token, nil, &out)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", out.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tasas y despliegue de ganancia
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_TasasConProveedorCaidoUsaLaTablaEstatica(t *testing.T) {
	app := newAPIFixture()
	token := tokenFor(t, cajeroGrant(false, false))

	var rate dto.RateResponse
	status := doJSON(t, app, http.MethodGet, "/api/rates?base=USD&quote=COP", token, nil, &rate)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, amt("4000").Equal(rate.Rate), "tasa esperada 4000, fue %s", rate.Rate)

	var conv dto.ConversionResponse
	status = doJSON(t, app, http.MethodGet, "/api/rates/convert?amount=10&from=USD&to=COP", token, nil, &conv)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, amt("40000").Equal(conv.Amount), "conversión esperada 40000, fue %s", conv.Amount)
	assert.Equal(t, "COP", conv.Currency)
	assert.NotEmpty(t, conv.Formatted)
}

func TestAPI_RatesMonedaNoSoportadaDevuelve400(t *testing.T) {
	app := newAPIFixture()
	token := tokenFor(t, cajeroGrant(false, false))

	var out dto.ErrorResponse
	status := doJSON(t, app, http.MethodGet, "/api/rates?base=XXX&quote=COP", token, nil, &out)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "UNSUPPORTED_CURRENCY", out.Code)
}

func TestAPI_ProfitDisplayConCostoEnLaMonedaDeVenta(t *testing.T) {
	app := newAPIFixture()
	token := tokenFor(t, cajeroGrant(true, true))

	var inv dto.InvoiceResponse
	require.Equal(t, http.StatusCreated,
		doJSON(t, app, http.MethodPost, "/api/invoices", token, dto.CreateInvoiceRequest{}, &inv))
	require.Equal(t, http.StatusOK,
		doJSON(t, app, http.MethodPost, "/api/invoices/"+inv.ID+"/items", token,
			dto.AddItemRequest{Description: "Servicio técnico", Quantity: 2, UnitPrice: amt("100"), UnitCost: amt("60"), Discount: dto.DiscountRequest{Type: "none"}}, &inv))

	// Costo en la misma moneda de venta: conversión identidad.
	var out dto.ProfitDisplayResponse
	status := doJSON(t, app, http.MethodGet,
		"/api/invoices/"+inv.ID+"/profit-display?cost_currency=COP", token, nil, &out)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, amt("120").Equal(out.CostConverted), "costo convertido esperado 120, fue %s", out.CostConverted)
	assert.True(t, amt("80").Equal(out.Profit), "ganancia esperada 80, fue %s", out.Profit)
	require.NotNil(t, out.MarkupPercent)
	assert.True(t, amt("66.67").Equal(*out.MarkupPercent), "markup esperado 66.67, fue %s", out.MarkupPercent)
	assert.NotEmpty(t, out.Formatted)
}
