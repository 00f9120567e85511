package repository

import (
	"context"

	"github.com/jhoicas/backoffice-core/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
// El núcleo solo consulta existencia; Create sirve a la carga inicial.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}
