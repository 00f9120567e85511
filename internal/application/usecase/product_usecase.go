package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/backoffice-core/internal/application/dto"
	"github.com/jhoicas/backoffice-core/internal/domain"
	"github.com/jhoicas/backoffice-core/internal/domain/entity"
	"github.com/jhoicas/backoffice-core/internal/domain/repository"
	"github.com/jhoicas/backoffice-core/pkg/validator"
)

// ProductUseCase alta y consulta de productos. Cost y Stock se manejan vía movimientos.
type ProductUseCase struct {
	repo repository.ProductRepository
	now  func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, now: time.Now}
}

// Create crea un nuevo producto con stock y costo en 0. Un SKU repetido devuelve ConflictError.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if err := validator.ValidateStruct(in); err != nil {
		return nil, err
	}
	if err := domain.CheckScale("price", in.Price, domain.MoneyScale); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, domain.NewStorageError("get product by sku", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError("sku", "ya existe un producto con ese SKU", domain.ErrDuplicate)
	}
	now := uc.now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		SKU:           in.SKU,
		Name:          in.Name,
		Price:         in.Price,
		Cost:          decimal.Zero,
		StockQuantity: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		if domain.IsDomainError(err) {
			return nil, err
		}
		return nil, domain.NewStorageError("create product", err)
	}
	return dto.NewProductResponse(product), nil
}

// GetByID obtiene un producto por ID o domain.ErrNotFound.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewStorageError("get product", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return dto.NewProductResponse(product), nil
}

// GetBySKU obtiene un producto por SKU; (nil, nil) si no existe.
func (uc *ProductUseCase) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	product, err := uc.repo.GetBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		return nil, domain.NewStorageError("get product by sku", err)
	}
	return product, nil
}
