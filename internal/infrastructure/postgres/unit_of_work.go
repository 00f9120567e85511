package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
)

var tracer = otel.Tracer("backoffice-core/postgres")

var _ repository.UnitOfWork = (*UnitOfWork)(nil)

// DefaultStatementTimeout tope por sentencia dentro de una unidad de trabajo.
const DefaultStatementTimeout = 30 * time.Second

// UnitOfWork ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED más
// bloqueos de fila explícitos en los repositorios).
type UnitOfWork struct {
	pool             *pgxpool.Pool
	statementTimeout time.Duration
}

// NewUnitOfWork construye la unidad de trabajo con el pool.
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool, statementTimeout: DefaultStatementTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Errores de dominio salen tal cual; el resto sale como ConflictError o StorageError.
func (u *UnitOfWork) Run(ctx context.Context, fn func(ctx context.Context, repos repository.TxRepos) error) (err error) {
	ctx, span := tracer.Start(ctx, "unit_of_work",
		trace.WithAttributes(attribute.String("db.isolation", string(pgx.ReadCommitted))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return domain.NewStorageError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if u.statementTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = '%dms'", u.statementTimeout.Milliseconds())); err != nil {
			return domain.NewStorageError("set statement_timeout", err)
		}
	}

	if err := fn(ctx, reposFor(tx)); err != nil {
		return classify("transaction", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classify("commit transaction", err)
	}
	return nil
}

// Repos repositorios sobre el pool, fuera de cualquier transacción.
func Repos(pool *pgxpool.Pool) repository.TxRepos {
	return reposFor(pool)
}

func reposFor(q Querier) repository.TxRepos {
	return repository.TxRepos{
		Customers:      NewCustomerRepository(q),
		Products:       NewProductRepository(q),
		Movements:      NewStockMovementRepository(q),
		Orders:         NewOrderRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
	}
}

func classify(op string, err error) error {
	if domain.IsDomainError(err) {
		return err
	}
	if isRetryable(err) {
		return domain.NewConflictError("transaction", "conflicto de concurrencia; reintentar", err)
	}
	if isUniqueViolation(err) {
		_, constraint := pgErrorCode(err)
		return domain.NewConflictError(constraint, "valor duplicado", errors.Join(domain.ErrDuplicate, err))
	}
	return domain.NewStorageError(op, err)
}
