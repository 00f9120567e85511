package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/inventory/movements (ajustes manuales).
type RegisterMovementRequest struct {
	ProductID     string           `json:"product_id" validate:"required"`
	Direction     string           `json:"direction" validate:"required,oneof=in out"`
	Quantity      decimal.Decimal  `json:"quantity" validate:"gt=0"`
	ReferenceType string           `json:"reference_type" validate:"required,max=50"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	Notes         string           `json:"notes,omitempty" validate:"max=1000"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	AllowNegative bool             `json:"allow_negative,omitempty"`
}

// MovementResultResponse nuevo saldo tras el movimiento.
type MovementResultResponse struct {
	ProductID     string          `json:"product_id"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
}

// MovementResponse movimiento del libro.
type MovementResponse struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"product_id"`
	Direction     string           `json:"direction"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType string           `json:"reference_type"`
	ReferenceID   string           `json:"reference_id,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CreatedBy     string           `json:"created_by,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// MovementHistoryResponse historial de un producto.
type MovementHistoryResponse struct {
	ProductID string             `json:"product_id"`
	Total     int                `json:"total"`
	Movements []MovementResponse `json:"movements"`
}

// ReconciliationResponse saldo del producto frente a la suma de sus movimientos.
type ReconciliationResponse struct {
	ProductID     string          `json:"product_id"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	MovementSum   decimal.Decimal `json:"movement_sum"`
	Drift         decimal.Decimal `json:"drift"`
	Balanced      bool            `json:"balanced"`
}

// NewMovementHistoryResponse mapea la lista de movimientos.
func NewMovementHistoryResponse(productID string, movs []*entity.StockMovement) *MovementHistoryResponse {
	res := &MovementHistoryResponse{
		ProductID: productID,
		Total:     len(movs),
		Movements: make([]MovementResponse, len(movs)),
	}
	for i, m := range movs {
		res.Movements[i] = MovementResponse{
			ID:            m.ID,
			ProductID:     m.ProductID,
			Direction:     m.Direction,
			Quantity:      m.Quantity,
			UnitCost:      m.UnitCost,
			ReferenceType: m.ReferenceType,
			ReferenceID:   m.ReferenceID,
			Notes:         m.Notes,
			CreatedBy:     m.CreatedBy,
			CreatedAt:     m.CreatedAt,
		}
	}
	return res
}
