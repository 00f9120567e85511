package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/backoffice-core/internal/application/dto"
	"github.com/jhoicas/backoffice-core/internal/application/numbering"
	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
	"github.com/jhoicas/backoffice-core/pkg/logger"
	"github.com/jhoicas/backoffice-core/pkg/validator"
)

// CustomerUseCase alta y consulta de clientes.
type CustomerUseCase struct {
	repo        repository.CustomerRepository
	ids         *numbering.Generator
	maxAttempts int
	log         *logger.Logger
	now         func() time.Time
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository, ids *numbering.Generator, maxAttempts int, log *logger.Logger) *CustomerUseCase {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &CustomerUseCase{repo: repo, ids: ids, maxAttempts: maxAttempts, log: log.Named("customers"), now: time.Now}
}

// Create crea un cliente con código CUS-NNNNNN. Ante colisión de código reintenta con uno nuevo.
func (uc *CustomerUseCase) Create(ctx context.Context, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validator.ValidateStruct(in); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= uc.maxAttempts; attempt++ {
		code := uc.ids.NextCustomerCode(ctx)
		now := uc.now()
		customer := &entity.Customer{
			ID:        uuid.New().String(),
			Code:      code.Value,
			Name:      in.Name,
			Email:     in.Email,
			Phone:     in.Phone,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err := uc.repo.Create(ctx, customer)
		if err == nil {
			uc.log.Info().Str("customer_id", customer.ID).Str("code", customer.Code).
				Bool("code_degraded", code.Degraded).Msg("cliente creado")
			return dto.NewCustomerResponse(customer), nil
		}
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) {
			if domain.IsDomainError(err) {
				return nil, err
			}
			return nil, domain.NewStorageError("create customer", err)
		}
		lastErr = err
		uc.log.Warn().Err(err).Int("attempt", attempt).Msg("colisión de código de cliente; reintentando")
	}
	return nil, lastErr
}

// GetByID obtiene un cliente o domain.ErrNotFound.
func (uc *CustomerUseCase) GetByID(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewStorageError("get customer", err)
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewCustomerResponse(c), nil
}
