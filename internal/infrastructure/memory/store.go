// Package memory implementa los repositorios y la unidad de trabajo en memoria.
// Una transacción trabaja sobre una copia del estado y la publica en el Commit;
// las transacciones se serializan con un único mutex, equivalente a bloquear todas las filas.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
)

var _ repository.UnitOfWork = (*Store)(nil)

type state struct {
	customers  map[string]entity.Customer
	products   map[string]entity.Product
	movements  []entity.StockMovement
	orders     map[string]entity.Order
	orderItems map[string][]entity.OrderItem
	history    map[string][]entity.OrderStatusEntry
	pos        map[string]entity.PurchaseOrder
	poItems    map[string]entity.PurchaseOrderItem
	poItemIDs  map[string][]string // purchase_order_id -> item ids en orden de alta
}

func newState() *state {
	return &state{
		customers:  map[string]entity.Customer{},
		products:   map[string]entity.Product{},
		orders:     map[string]entity.Order{},
		orderItems: map[string][]entity.OrderItem{},
		history:    map[string][]entity.OrderStatusEntry{},
		pos:        map[string]entity.PurchaseOrder{},
		poItems:    map[string]entity.PurchaseOrderItem{},
		poItemIDs:  map[string][]string{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	c.movements = append([]entity.StockMovement(nil), s.movements...)
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.orderItems {
		c.orderItems[k] = append([]entity.OrderItem(nil), v...)
	}
	for k, v := range s.history {
		c.history[k] = append([]entity.OrderStatusEntry(nil), v...)
	}
	for k, v := range s.pos {
		c.pos[k] = v
	}
	for k, v := range s.poItems {
		c.poItems[k] = v
	}
	for k, v := range s.poItemIDs {
		c.poItemIDs[k] = append([]string(nil), v...)
	}
	return c
}

// Store estado en memoria con semántica transaccional.
type Store struct {
	mu    sync.Mutex
	state *state

	fmu      sync.Mutex
	failures map[string]error
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{state: newState(), failures: map[string]error{}}
}

// FailOn hace que la operación op (ej. "orders.create_items") devuelva err.
// Con err nil se elimina la falla inyectada.
func (s *Store) FailOn(op string, err error) {
	s.fmu.Lock()
	defer s.fmu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) fail(op string) error {
	s.fmu.Lock()
	defer s.fmu.Unlock()
	return s.failures[op]
}

// Run ejecuta fn sobre una copia del estado; la publica solo si fn y ctx terminan sin error.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("begin transaction", err)
	}
	work := s.state.clone()
	if err := fn(ctx, reposFor(s, work)); err != nil {
		return classify(err)
	}
	if err := ctx.Err(); err != nil {
		return domain.NewStorageError("commit transaction", err)
	}
	if err := s.fail("commit"); err != nil {
		return domain.NewStorageError("commit transaction", err)
	}
	s.state = work
	return nil
}

// Repos repositorios de lectura/escritura fuera de transacción (cada llamada es atómica).
func (s *Store) Repos() repository.TxRepos {
	return reposFor(s, nil)
}

func reposFor(s *Store, tx *state) repository.TxRepos {
	b := binding{store: s, tx: tx}
	return repository.TxRepos{
		Customers:      &CustomerRepo{b},
		Products:       &ProductRepo{b},
		Movements:      &MovementRepo{b},
		Orders:         &OrderRepo{b},
		PurchaseOrders: &PurchaseOrderRepo{b},
	}
}

// binding ata un repositorio al estado de una transacción o al estado publicado.
type binding struct {
	store *Store
	tx    *state
}

func (b binding) with(op string, fn func(st *state) error) error {
	if err := b.store.fail(op); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return fn(b.store.state)
}

// column valor destinado a una columna NUMERIC con places decimales.
type column struct {
	name   string
	value  decimal.Decimal
	places int32
}

// checkColumns rechaza valores más finos que su columna. PostgreSQL los redondearía
// sin avisar; aquí fallan como error de almacenamiento para que el hueco se vea en pruebas.
func checkColumns(op string, cols ...column) error {
	for _, c := range cols {
		if !domain.FitsScale(c.value, c.places) {
			return fmt.Errorf("%s: %s=%s excede la escala NUMERIC(_,%d)", op, c.name, c.value, c.places)
		}
	}
	return nil
}

// classify deja pasar errores de dominio y envuelve el resto como StorageError.
func classify(err error) error {
	if domain.IsDomainError(err) {
		return err
	}
	return domain.NewStorageError("transaction", err)
}

// Stats conteo de filas publicadas por tabla.
type Stats struct {
	Customers      int
	Products       int
	Movements      int
	Orders         int
	OrderItems     int
	StatusEntries  int
	PurchaseOrders int
	PurchaseItems  int
}

// Stats devuelve el conteo actual del estado publicado.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{
		Customers:      len(s.state.customers),
		Products:       len(s.state.products),
		Movements:      len(s.state.movements),
		Orders:         len(s.state.orders),
		PurchaseOrders: len(s.state.pos),
		PurchaseItems:  len(s.state.poItems),
	}
	for _, items := range s.state.orderItems {
		st.OrderItems += len(items)
	}
	for _, h := range s.state.history {
		st.StatusEntries += len(h)
	}
	return st
}
