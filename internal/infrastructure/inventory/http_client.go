package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mfuentesp/cajapos-api/internal/application/ledger"
)

var _ ledger.InventoryService = (*HTTPClient)(nil)

// HTTPClient implementa el puerto de inventario contra el servicio
// externo de existencias:
//
//	POST {baseURL}/reserve  {"asset_id":"...","quantity":2}
//	POST {baseURL}/release  {"asset_id":"...","quantity":2}
//
// Cualquier respuesta fuera de 2xx es un error; la operación del libro
// que disparó la llamada se revierte completa.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient construye el cliente del servicio de inventario.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type movePayload struct {
	AssetID  string `json:"asset_id"`
	Quantity int64  `json:"quantity"`
}

// Reserve aparta unidades de un activo.
func (c *HTTPClient) Reserve(ctx context.Context, assetID string, quantity int64) error {
	return c.post(ctx, "/reserve", assetID, quantity)
}

// Release devuelve unidades previamente apartadas.
func (c *HTTPClient) Release(ctx context.Context, assetID string, quantity int64) error {
	return c.post(ctx, "/release", assetID, quantity)
}

func (c *HTTPClient) post(ctx context.Context, path, assetID string, quantity int64) error {
	body, err := json.Marshal(movePayload{AssetID: assetID, Quantity: quantity})
	if err != nil {
		return fmt.Errorf("inventario: serializar petición: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("inventario: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("inventario: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("inventario: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("inventario: %s respondió %d: %s",
			path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
