package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-core/internal/application/dto"
	"github.com/jhoicas/backoffice-core/internal/application/inventory"
	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
	"github.com/jhoicas/backoffice-core/pkg/logger"
	"github.com/jhoicas/backoffice-core/pkg/validator"
)

// InventoryHandler maneja movimientos, historial y conciliación de stock (protegido).
type InventoryHandler struct {
	ledger *inventory.Ledger
	log    *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.Ledger, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, log: log}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RegisterMovementRequest  true  "product_id, direction, quantity, reference_type, unit_cost (entradas)"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validator.ValidateStruct(in); err != nil {
		return respondError(c, h.log, err)
	}
	qty, err := h.ledger.ApplyMovement(c.UserContext(), inventory.MovementInput{
		ProductID:     in.ProductID,
		Direction:     in.Direction,
		Quantity:      in.Quantity,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Notes:         in.Notes,
		Actor:         GetUserID(c),
		UnitCost:      in.UnitCost,
		AllowNegative: in.AllowNegative && GetRole(c) == RoleAdmin,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementResultResponse{ProductID: in.ProductID, StockQuantity: qty})
}

// History godoc
// @Summary      Historial de movimientos de un producto
// @Description  Del más reciente al más antiguo, máximo 500 filas.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id              path   string  true   "ID del producto"
// @Param        from            query  string  false  "RFC3339"
// @Param        to              query  string  false  "RFC3339"
// @Param        reference_type  query  string  false  "purchase_order | sales_order | sales_order_cancel | adjustment | opening_balance"
// @Param        limit           query  int     false  "1..500"
// @Success      200  {object}  dto.MovementHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		ReferenceType: c.Query("reference_type"),
		Limit:         c.QueryInt("limit", 0),
	}
	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return respondError(c, h.log, domain.NewValidationError(name, "fecha RFC3339 inválida"))
		}
		*dst = &t
	}
	productID := c.Params("id")
	movs, err := h.ledger.History(c.UserContext(), productID, filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewMovementHistoryResponse(productID, movs))
}

// Reconcile godoc
// @Summary      Conciliación de stock
// @Description  Compara stock_quantity con la suma con signo de los movimientos del producto.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/reconciliation [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	rec, err := h.ledger.Reconcile(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ReconciliationResponse{
		ProductID:     rec.ProductID,
		StockQuantity: rec.StockQuantity,
		MovementSum:   rec.MovementSum,
		Drift:         rec.Drift,
		Balanced:      rec.Balanced,
	})
}
