package repository

import "context"

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Customers      CustomerRepository
	Products       ProductRepository
	Movements      StockMovementRepository
	Orders         OrderRepository
	PurchaseOrders PurchaseOrderRepository
}

// UnitOfWork ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en
// cualquier otro caso (incluida la cancelación de ctx). Los errores de almacenamiento salen
// clasificados como *domain.ConflictError o *domain.StorageError.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}
