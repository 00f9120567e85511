package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-core/internal/application/dto"
	"github.com/jhoicas/backoffice-core/internal/application/ordering"
	rules "github.com/jhoicas/backoffice-core/internal/domain/ordering"
	"github.com/jhoicas/backoffice-core/pkg/logger"
	"github.com/jhoicas/backoffice-core/pkg/validator"
)

// OrderHandler maneja las peticiones HTTP de pedidos de venta (protegido).
type OrderHandler struct {
	create  *ordering.CreateOrderUseCase
	machine *ordering.StatusMachine
	queries *ordering.Queries
	log     *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(create *ordering.CreateOrderUseCase, machine *ordering.StatusMachine, queries *ordering.Queries, log *logger.Logger) *OrderHandler {
	return &OrderHandler{create: create, machine: machine, queries: queries, log: log}
}

// Create godoc
// @Summary      Crear pedido
// @Description  Valida líneas, calcula totales (IVA 12 %), asigna número ORD-YYYY-NNNNNN y persiste
//
//	cabecera, líneas y la primera entrada del historial en una sola transacción.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateOrderRequest  true  "customer_id, items, discount_amount, shipping_amount"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validator.ValidateStruct(in); err != nil {
		return respondError(c, h.log, err)
	}
	items := make([]rules.DraftItem, len(in.Items))
	for i, it := range in.Items {
		items[i] = rules.DraftItem{
			ProductID:          it.ProductID,
			Quantity:           it.Quantity,
			UnitPrice:          it.UnitPrice,
			DiscountPercentage: it.DiscountPercentage,
		}
	}
	res, err := h.create.Execute(c.UserContext(), ordering.CreateOrderInput{
		CustomerID:     in.CustomerID,
		Items:          items,
		DiscountAmount: in.DiscountAmount,
		ShippingAmount: in.ShippingAmount,
		Notes:          in.Notes,
		Actor:          GetUserID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(res.Order, res.Items, res.History))
}

// GetByID godoc
// @Summary      Obtener pedido con líneas e historial
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	res, err := h.queries.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewOrderResponse(res.Order, res.Items, res.History))
}

// History godoc
// @Summary      Historial de estados del pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del pedido"
// @Success      200  {array}   dto.StatusEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/history [get]
func (h *OrderHandler) History(c *fiber.Ctx) error {
	history, err := h.queries.StatusHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewStatusHistoryResponse(history))
}

// TransitionStatus godoc
// @Summary      Cambiar estado del pedido
// @Description  Aplica la tabla de transiciones. Pasar a shipped descuenta stock; cancelar un pedido
//
//	despachado lo devuelve.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                       true  "ID del pedido"
// @Param        body  body      dto.TransitionStatusRequest  true  "status, notes"
// @Success      200   {object}  dto.StatusEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [post]
func (h *OrderHandler) TransitionStatus(c *fiber.Ctx) error {
	var in dto.TransitionStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validator.ValidateStruct(in); err != nil {
		return respondError(c, h.log, err)
	}
	entry, err := h.machine.TransitionStatus(c.UserContext(), c.Params("id"), in.Status, in.Notes, GetUserID(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewStatusEntryResponse(entry))
}
