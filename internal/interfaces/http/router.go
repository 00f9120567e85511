package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-core/internal/application/dto"
	"github.com/jhoicas/backoffice-core/internal/application/inventory"
	"github.com/jhoicas/backoffice-core/internal/application/numbering"
	"github.com/jhoicas/backoffice-core/internal/application/ordering"
	"github.com/jhoicas/backoffice-core/internal/application/purchasing"
	"github.com/jhoicas/backoffice-core/internal/application/usecase"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateOrder   *ordering.CreateOrderUseCase
	StatusMachine *ordering.StatusMachine
	OrderQueries  *ordering.Queries

	CreatePurchaseOrder *purchasing.CreatePurchaseOrderUseCase
	Receiving           *purchasing.ReceivingTracker
	PurchaseQueries     *purchasing.Queries

	Ledger     *inventory.Ledger
	CustomerUC *usecase.CustomerUseCase
	ProductUC  *usecase.ProductUseCase
	Numbering  *numbering.Generator

	// StoragePing comprueba el almacenamiento para /health; nil = siempre disponible.
	StoragePing func(ctx context.Context) error

	// RequestTimeout plazo de cada petición /api; 0 = sin plazo.
	RequestTimeout time.Duration

	JWTSecret string
	JWTIssuer string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}

	// Health (público)
	app.Get("/health", healthHandler(deps))

	guards := []fiber.Handler{}
	if deps.RequestTimeout > 0 {
		guards = append(guards, RequestDeadline(deps.RequestTimeout))
	}
	guards = append(guards, AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	api := app.Group("/api", guards...)
	stockRoles := RequireRole(RoleAdmin, RoleBodeguero)

	// Orders
	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.CreateOrder, deps.StatusMachine, deps.OrderQueries, log.Named("orders"))
	orders.Post("/", orderHandler.Create)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/history", orderHandler.History)
	orders.Post("/:id/status", orderHandler.TransitionStatus)

	// Purchase orders
	pos := api.Group("/purchase-orders")
	poHandler := NewPurchaseOrderHandler(deps.CreatePurchaseOrder, deps.Receiving, deps.PurchaseQueries, log.Named("purchasing"))
	pos.Post("/", stockRoles, poHandler.Create)
	pos.Post("/items/:itemId/receive", stockRoles, poHandler.Receive)
	pos.Get("/:id", poHandler.GetByID)

	// Inventory
	inv := api.Group("/inventory")
	invHandler := NewInventoryHandler(deps.Ledger, log.Named("inventory"))
	inv.Post("/movements", stockRoles, invHandler.RegisterMovement)
	inv.Get("/products/:id/movements", invHandler.History)
	inv.Get("/products/:id/reconciliation", invHandler.Reconcile)

	// Customers
	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC, log.Named("customers"))
	customers.Post("/", customerHandler.Create)
	customers.Get("/:id", customerHandler.GetByID)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, log.Named("products"))
	products.Post("/", stockRoles, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
}

// healthHandler GET /health: 200 con el almacenamiento disponible, 503 si el ping falla.
func healthHandler(deps RouterDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := dto.HealthResponse{Status: "ok", Storage: "ok"}
		if deps.Numbering != nil {
			res.DegradedNumbers = deps.Numbering.DegradedCount()
		}
		if deps.StoragePing != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := deps.StoragePing(ctx); err != nil {
				res.Status, res.Storage = "degraded", err.Error()
				return c.Status(fiber.StatusServiceUnavailable).JSON(res)
			}
		}
		return c.JSON(res)
	}
}
