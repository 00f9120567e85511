package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/backoffice-core/internal/application/dto"
	"github.com/jhoicas/backoffice-core/internal/application/purchasing"
	"github.com/jhoicas/backoffice-core/pkg/logger"
	"github.com/jhoicas/backoffice-core/pkg/validator"
)

// PurchaseOrderHandler maneja órdenes de compra y recepciones (protegido).
type PurchaseOrderHandler struct {
	create  *purchasing.CreatePurchaseOrderUseCase
	tracker *purchasing.ReceivingTracker
	queries *purchasing.Queries
	log     *logger.Logger
}

// NewPurchaseOrderHandler construye el handler.
func NewPurchaseOrderHandler(create *purchasing.CreatePurchaseOrderUseCase, tracker *purchasing.ReceivingTracker, queries *purchasing.Queries, log *logger.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{create: create, tracker: tracker, queries: queries, log: log}
}

// Create godoc
// @Summary      Crear orden de compra
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreatePurchaseOrderRequest  true  "supplier_id, items, expected_delivery_date"
// @Success      201   {object}  dto.PurchaseOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/purchase-orders [post]
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validator.ValidateStruct(in); err != nil {
		return respondError(c, h.log, err)
	}
	items := make([]purchasing.PurchaseItemInput, len(in.Items))
	for i, it := range in.Items {
		items[i] = purchasing.PurchaseItemInput{ProductID: it.ProductID, QuantityOrdered: it.QuantityOrdered, UnitCost: it.UnitCost}
	}
	view, err := h.create.Execute(c.UserContext(), purchasing.CreatePurchaseOrderInput{
		SupplierID:           in.SupplierID,
		Items:                items,
		ExpectedDeliveryDate: in.ExpectedDeliveryDate,
		Notes:                in.Notes,
		Actor:                GetUserID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPurchaseOrderResponse(view.PurchaseOrder, view.Items))
}

// GetByID godoc
// @Summary      Obtener orden de compra con sus líneas
// @Tags         purchase-orders
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID de la orden de compra"
// @Success      200  {object}  dto.PurchaseOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *fiber.Ctx) error {
	view, err := h.queries.GetPurchaseOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.NewPurchaseOrderResponse(view.PurchaseOrder, view.Items))
}

// Receive godoc
// @Summary      Registrar recepción de una línea
// @Description  Suma la cantidad recibida, registra la entrada de stock al costo de la línea y cierra
//
//	la orden cuando todas las líneas quedan completas.
//
// @Tags         purchase-orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        itemId  path      string                  true  "ID de la línea"
// @Param        body    body      dto.ReceiveItemRequest  true  "quantity, received_date"
// @Success      200     {object}  dto.ReceiptResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/purchase-orders/items/{itemId}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := validator.ValidateStruct(in); err != nil {
		return respondError(c, h.log, err)
	}
	var receivedAt time.Time
	if in.ReceivedDate != nil {
		receivedAt = *in.ReceivedDate
	}
	res, err := h.tracker.ReceiveLineItem(c.UserContext(), purchasing.ReceiveInput{
		ItemID:       c.Params("itemId"),
		Quantity:     in.Quantity,
		ReceivedDate: receivedAt,
		Actor:        GetUserID(c),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ReceiptResponse{
		Item:          dto.NewPurchaseItemResponse(res.Item),
		PurchaseOrder: dto.NewPurchaseOrderResponse(res.PurchaseOrder, nil),
		Completed:     res.Completed,
	})
}
