package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto. Stock y costo nacen en 0 y solo
// cambian vía movimientos.
type CreateProductRequest struct {
	SKU   string          `json:"sku" validate:"required,min=1,max=100"`
	Name  string          `json:"name" validate:"required,min=1,max=200"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewProductResponse mapea la entidad.
func NewProductResponse(p *entity.Product) *ProductResponse {
	return &ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Price:         p.Price,
		Cost:          p.Cost,
		StockQuantity: p.StockQuantity,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
