package dto

import (
	"time"

	"github.com/jhoicas/backoffice-core/internal/domain/entity"
)

// CreateCustomerRequest body para POST /api/customers. El código CUS-NNNNNN se genera.
type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCustomerResponse mapea la entidad.
func NewCustomerResponse(c *entity.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:        c.ID,
		Code:      c.Code,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
	}
}
