// seed_demo emite un token de pruebas y, si hay base de datos
// configurada, puebla el libro con datos de demostración pasando por
// los casos de uso (nunca con INSERT directo).
//
// Uso: go run ./cmd/seed_demo
// Requiere JWT_SECRET; DATABASE_URL o DB_HOST son opcionales.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mfuentesp/cajapos-api/internal/application/dto"
	"github.com/mfuentesp/cajapos-api/internal/application/ledger"
	"github.com/mfuentesp/cajapos-api/internal/domain"
	"github.com/mfuentesp/cajapos-api/internal/domain/entity"
	"github.com/mfuentesp/cajapos-api/internal/infrastructure/inventory"
	"github.com/mfuentesp/cajapos-api/internal/infrastructure/postgres"
	"github.com/mfuentesp/cajapos-api/pkg/config"
	"github.com/mfuentesp/cajapos-api/pkg/jwt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("Cargar configuración", err)
	}

	// Token con todas las capacidades para probar la API a mano.
	token, err := jwt.Generate(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration, jwt.Grant{
		UserID:             uuid.NewString(),
		Name:               "Cajero Demo",
		CanVoid:            true,
		CanCancel:          true,
		MaxDiscountPercent: decimal.NewFromInt(100),
	})
	if err != nil {
		fail("Emitir token (defina JWT_SECRET)", err)
	}
	fmt.Println("Token de pruebas:")
	fmt.Printf("  Authorization: Bearer %s\n\n", token)

	if cfg.DB.InMemory() {
		fmt.Println("Sin base de datos configurada: solo se emitió el token.")
		return
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fail("Conexión a PostgreSQL", err)
	}
	defer pool.Close()

	invoiceUC := ledger.NewInvoiceUseCase(
		postgres.NewTxRunner(pool),
		postgres.NewInvoiceRepository(pool),
		postgres.NewCustomerRepository(pool),
		inventory.NewLocal(),
		ledger.Config{
			NumberPrefix: cfg.Invoice.NumberPrefix,
			BaseCurrency: cfg.Currency.BaseCurrency,
			Currencies:   cfg.Currency.Supported,
		},
	)
	customerUC := ledger.NewCustomerUseCase(postgres.NewCustomerRepository(pool))
	actor := entity.Actor{ID: "seed-demo", Name: "Cajero Demo"}

	customerID := ""
	customer, err := customerUC.Create(dto.CreateCustomerRequest{
		Name:  "Comercial El Roble",
		TaxID: "900123456-7",
		Email: "compras@elroble.example",
		Phone: "+57 300 000 0000",
	})
	switch {
	case err == nil:
		customerID = customer.ID
		fmt.Printf("Cliente demo: %s (%s)\n", customer.Name, customer.ID)
	case errors.Is(err, domain.ErrDuplicate):
		fmt.Println("Cliente demo ya existe, las facturas quedan de mostrador")
	default:
		fail("Crear cliente demo", err)
	}

	// Factura pagada completa: línea doble, 10% de descuento y pago.
	paid, err := invoiceUC.CreateInvoice(ctx, actor, dto.CreateInvoiceRequest{CustomerID: customerID})
	if err != nil {
		fail("Crear factura demo", err)
	}
	mustStep(invoiceUC.AddItem(ctx, actor, paid.ID, dto.AddItemRequest{
		Description: "Servicio técnico",
		Quantity:    2,
		UnitPrice:   dec("100"),
		UnitCost:    dec("60"),
		Discount:    dto.DiscountRequest{Type: entity.DiscountTypeNone},
	}))
	mustStep(invoiceUC.SetInvoiceDiscount(ctx, actor, paid.ID, dto.DiscountRequest{
		Type:  entity.DiscountTypePercentage,
		Value: dec("10"),
	}))
	out := mustStep(invoiceUC.AddPayment(ctx, actor, paid.ID, dto.AddTransactionRequest{
		Amount:  dec("180"),
		Method:  entity.PaymentMethodCash,
		Comment: "pago de demostración",
	}))
	fmt.Printf("Factura %s: %s, saldo %s\n", out.Number, out.Status, out.BalanceDue.StringFixed(2))

	// Factura con pago parcial para ver PARTIALLY_PAID en el listado.
	partial, err := invoiceUC.CreateInvoice(ctx, actor, dto.CreateInvoiceRequest{})
	if err != nil {
		fail("Crear factura demo parcial", err)
	}
	mustStep(invoiceUC.AddItem(ctx, actor, partial.ID, dto.AddItemRequest{
		Description: "Mantenimiento preventivo",
		Quantity:    1,
		UnitPrice:   dec("250"),
		UnitCost:    dec("90"),
		Discount:    dto.DiscountRequest{Type: entity.DiscountTypeNone},
	}))
	out = mustStep(invoiceUC.AddPayment(ctx, actor, partial.ID, dto.AddTransactionRequest{
		Amount:  dec("100"),
		Method:  entity.PaymentMethodTransfer,
		Comment: "anticipo de demostración",
	}))
	fmt.Printf("Factura %s: %s, saldo %s\n", out.Number, out.Status, out.BalanceDue.StringFixed(2))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustStep(out *dto.InvoiceResponse, err error) *dto.InvoiceResponse {
	if err != nil {
		fail("Operación de demo", err)
	}
	return out
}

func fail(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
