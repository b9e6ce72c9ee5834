package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mfuentesp/cajapos-api/internal/application/currency"
	"github.com/mfuentesp/cajapos-api/internal/application/ledger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InvoiceUC  *ledger.InvoiceUseCase
	CustomerUC *ledger.CustomerUseCase
	Rates      *currency.Service
	JWTSecret  string
}

// Router registra las rutas de la API. Toda la API exige Bearer Token;
// las anulaciones pasan además por la capacidad correspondiente.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Clientes
	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	// Facturas
	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.Rates)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Post("/:id/cancel", RequireCancel(), invoiceHandler.Cancel)
	invoices.Put("/:id/discount", invoiceHandler.SetDiscount)
	invoices.Get("/:id/profit-display", invoiceHandler.ProfitDisplay)

	// Líneas de factura
	itemHandler := NewItemHandler(deps.InvoiceUC)
	invoices.Post("/:id/items", itemHandler.Add)
	invoices.Put("/:id/items/:itemID", itemHandler.Update)
	invoices.Delete("/:id/items/:itemID", itemHandler.Remove)
	invoices.Post("/:id/items/:itemID/void", RequireVoid(), itemHandler.Void)

	// Pagos y devoluciones
	paymentHandler := NewPaymentHandler(deps.InvoiceUC)
	invoices.Post("/:id/payments", paymentHandler.AddPayment)
	invoices.Post("/:id/refunds", paymentHandler.AddRefund)
	invoices.Post("/:id/transactions/:txID/void", RequireVoid(), paymentHandler.VoidTransaction)

	// Tasas de cambio (solo lectura)
	rates := api.Group("/rates")
	ratesHandler := NewRatesHandler(deps.Rates)
	rates.Get("/", ratesHandler.GetRate)
	rates.Get("/convert", ratesHandler.Convert)
}
