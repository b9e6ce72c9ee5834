package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/mfuentesp/cajapos-api/internal/interfaces/http"
	pkgjwt "github.com/mfuentesp/cajapos-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testUserName  = "Cajero de Prueba"
	testIssuer    = "cajapos-test"
	testExpMin    = 60
)

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - La puerta de capacidad indicada
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(gate fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		// Silenciar errores internos en los tests
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Post("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		gate,
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":    true,
				"actor": apphttp.GetActor(c).ID,
			})
		},
	)
	return app
}

// cajeroGrant arma el grant base del actor de pruebas.
func cajeroGrant(canVoid, canCancel bool) pkgjwt.Grant {
	return pkgjwt.Grant{
		UserID:             testUserID,
		Name:               testUserName,
		CanVoid:            canVoid,
		CanCancel:          canCancel,
		MaxDiscountPercent: decimal.NewFromInt(50),
	}
}

// tokenFor genera un JWT con el grant indicado.
func tokenFor(t *testing.T, g pkgjwt.Grant) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, testExpMin, g)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición POST /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireVoid / RequireCancel
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: El actor tiene la capacidad de anular registros → debe pasar (HTTP 200).
func TestRequireVoid_ActorConCapacidadPasa(t *testing.T) {
	app := buildTestApp(apphttp.RequireVoid())
	resp := doRequest(t, app, tokenFor(t, cajeroGrant(true, false)))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"un actor con can_void debe poder llegar al handler")

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"], "la respuesta debe incluir ok:true")
	assert.Equal(t, testUserID, body["actor"], "el actor debe ser el del token")
}

// Caso 2: El actor no tiene la capacidad → HTTP 403 Forbidden.
func TestRequireVoid_ActorSinCapacidadBloqueado(t *testing.T) {
	app := buildTestApp(apphttp.RequireVoid())
	resp := doRequest(t, app, tokenFor(t, cajeroGrant(false, true)))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode,
		"sin can_void la anulación debe quedar bloqueada")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN",
		"la respuesta de error debe incluir el código FORBIDDEN")
}

// Caso 3: Anular facturas exige su propia capacidad, independiente de can_void.
func TestRequireCancel_ActorConCapacidadPasa(t *testing.T) {
	app := buildTestApp(apphttp.RequireCancel())
	resp := doRequest(t, app, tokenFor(t, cajeroGrant(false, true)))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireCancel_ActorSinCapacidadBloqueado(t *testing.T) {
	app := buildTestApp(apphttp.RequireCancel())
	resp := doRequest(t, app, tokenFor(t, cajeroGrant(true, false)))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode,
		"can_void no implica can_cancel")
}

// Caso 4: Sin header Authorization → HTTP 401 MISSING_TOKEN.
func TestAuthMiddleware_SinAuthHeaderRetorna401(t *testing.T) {
	app := buildTestApp(apphttp.RequireVoid())
	resp := doRequest(t, app, "") // sin header
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Caso 5: Token inválido / malformado → HTTP 401 INVALID_TOKEN.
func TestAuthMiddleware_TokenInvalidoRetorna401(t *testing.T) {
	app := buildTestApp(apphttp.RequireVoid())
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Caso 6: Token sin identidad de actor → HTTP 401 MISSING_SUBJECT.
func TestAuthMiddleware_TokenSinActorRetorna401(t *testing.T) {
	app := buildTestApp(apphttp.RequireVoid())
	g := cajeroGrant(true, true)
	g.UserID = ""
	resp := doRequest(t, app, tokenFor(t, g))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode,
		"un token sin user_id no identifica a nadie")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_SUBJECT")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware — extracción de actor y capacidades
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtraeActorYCapacidades(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		actor := apphttp.GetActor(c)
		caps := apphttp.GetCapabilities(c)
		return c.JSON(fiber.Map{
			"user_id":      actor.ID,
			"name":         actor.Name,
			"can_void":     caps.CanVoid,
			"can_cancel":   caps.CanCancel,
			"max_discount": caps.MaxDiscountPercent,
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenFor(t, cajeroGrant(true, true)))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testUserName, body["name"])
	assert.Equal(t, true, body["can_void"])
	assert.Equal(t, true, body["can_cancel"])
	assert.Equal(t, "50", body["max_discount"], "el tope de descuento viaja como decimal")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests JWT pkg — integridad del generate/parse con capacidades
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse_ConCapacidades(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, testExpMin, cajeroGrant(true, false))
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)

	assert.Equal(t, testUserID, claims.UserID)
	assert.Equal(t, testUserName, claims.Name)
	assert.True(t, claims.CanVoid)
	assert.False(t, claims.CanCancel)
	assert.True(t, decimal.NewFromInt(50).Equal(claims.MaxDiscountPercent),
		"el tope de descuento debe sobrevivir el viaje por el token")
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	// Token con expiración -1 minuto (ya expirado)
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, -1, cajeroGrant(true, true))
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testJWTSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testIssuer, testExpMin, cajeroGrant(true, true))
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}
