package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/mfuentesp/cajapos-api/internal/application/currency"
	"github.com/mfuentesp/cajapos-api/internal/application/ledger"
	"github.com/mfuentesp/cajapos-api/internal/domain/repository"
	"github.com/mfuentesp/cajapos-api/internal/infrastructure/inventory"
	"github.com/mfuentesp/cajapos-api/internal/infrastructure/memory"
	"github.com/mfuentesp/cajapos-api/internal/infrastructure/postgres"
	"github.com/mfuentesp/cajapos-api/internal/infrastructure/rates"
	httpRouter "github.com/mfuentesp/cajapos-api/internal/interfaces/http"
	"github.com/mfuentesp/cajapos-api/pkg/config"
	"github.com/mfuentesp/cajapos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: ninguna petición autenticada va a pasar")
	}

	ctx := context.Background()

	// Almacenamiento: PostgreSQL si hay configuración de DB, si no el
	// almacén en memoria (modo desarrollo, se pierde al apagar).
	var (
		txRunner     ledger.LedgerTxRunner
		invoiceRepo  repository.InvoiceRepository
		customerRepo repository.CustomerRepository
	)
	if cfg.DB.InMemory() {
		log.Warn().Msg("sin DATABASE_URL ni DB_HOST, usando almacén en memoria")
		store := memory.NewStore()
		txRunner = memory.NewTxRunner(store)
		invoiceRepo = memory.NewInvoiceRepository(store)
		customerRepo = memory.NewCustomerRepository(store)
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		invoiceRepo = postgres.NewInvoiceRepository(pool)
		customerRepo = postgres.NewCustomerRepository(pool)
	}

	// Existencias: servicio HTTP externo o adaptador local en proceso.
	var stock ledger.InventoryService
	if cfg.Inventory.BaseURL != "" {
		stock = inventory.NewHTTPClient(cfg.Inventory.BaseURL, time.Duration(cfg.Inventory.TimeoutSeconds)*time.Second)
	} else {
		log.Warn().Msg("sin INVENTORY_BASE_URL, reservas con el adaptador local sin tope")
		stock = inventory.NewLocal()
	}

	// Tasas de cambio: proveedor HTTP con respaldo en tabla estática.
	var rateSource currency.RateSource = rates.Disabled{}
	if cfg.Currency.SourceURL != "" {
		rateSource = rates.NewHTTPSource(cfg.Currency.SourceURL, time.Duration(cfg.Currency.SourceTimeoutSeconds)*time.Second)
	}
	rateCache := currency.NewRateCache(time.Duration(cfg.Currency.CacheTTLMinutes)*time.Minute, time.Now)
	ratesSvc := currency.NewService(rateSource, rateCache, currency.Config{
		BaseCurrency: cfg.Currency.BaseCurrency,
		Supported:    cfg.Currency.Supported,
		MarkupSpread: cfg.Currency.MarkupSpread,
		StaticRates:  cfg.Currency.StaticRates,
	})

	invoiceUC := ledger.NewInvoiceUseCase(txRunner, invoiceRepo, customerRepo, stock, ledger.Config{
		NumberPrefix: cfg.Invoice.NumberPrefix,
		BaseCurrency: cfg.Currency.BaseCurrency,
		Currencies:   cfg.Currency.Supported,
	})
	customerUC := ledger.NewCustomerUseCase(customerRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "CajaPOS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		InvoiceUC:  invoiceUC,
		CustomerUC: customerUC,
		Rates:      ratesSvc,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
