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

	"github.com/jhoicas/backoffice-core/internal/application/inventory"
	"github.com/jhoicas/backoffice-core/internal/application/numbering"
	"github.com/jhoicas/backoffice-core/internal/application/ordering"
	"github.com/jhoicas/backoffice-core/internal/application/purchasing"
	"github.com/jhoicas/backoffice-core/internal/application/usecase"
	"github.com/jhoicas/backoffice-core/internal/bootstrap"
	httpRouter "github.com/jhoicas/backoffice-core/internal/interfaces/http"
	"github.com/jhoicas/backoffice-core/pkg/config"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	storage, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer storage.Close()

	repos := storage.Repos
	ids := numbering.NewGenerator(storage.Sequence, log)
	ledger := inventory.NewLedger(storage.UnitOfWork, repos.Products, repos.Movements,
		inventory.LedgerConfig{AllowNegativeStock: cfg.Inventory.AllowNegativeStock}, log)

	createOrder := ordering.NewCreateOrderUseCase(repos.Customers, repos.Products,
		ordering.NewAggregateBuilder(ids), ordering.NewWriter(storage.UnitOfWork),
		cfg.Orders.MaxCreateAttempts, log)
	statusMachine := ordering.NewStatusMachine(storage.UnitOfWork, ledger, log)
	createPO := purchasing.NewCreatePurchaseOrderUseCase(storage.UnitOfWork, repos.Products, ids,
		cfg.Orders.MaxCreateAttempts, log)
	receiving := purchasing.NewReceivingTracker(storage.UnitOfWork, ledger, log)

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
		Title:    "Backoffice Core API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateOrder:         createOrder,
		StatusMachine:       statusMachine,
		OrderQueries:        ordering.NewQueries(repos.Orders),
		CreatePurchaseOrder: createPO,
		Receiving:           receiving,
		PurchaseQueries:     purchasing.NewQueries(repos.PurchaseOrders),
		Ledger:              ledger,
		CustomerUC:          usecase.NewCustomerUseCase(repos.Customers, ids, cfg.Orders.MaxCreateAttempts, log),
		ProductUC:           usecase.NewProductUseCase(repos.Products),
		Numbering:           ids,
		StoragePing:         storage.Ping,
		RequestTimeout:      cfg.HTTP.RequestTimeout,
		JWTSecret:           cfg.JWT.Secret,
		JWTIssuer:           cfg.JWT.Issuer,
		Log:                 log,
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
