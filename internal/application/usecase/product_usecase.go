package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Pos-api/internal/application/dto"
	"github.com/jhoicas/Pos-api/internal/domain"
	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD del catálogo y sus variantes. Las
// cantidades no se tocan por aquí: viven en el libro de inventario.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un producto con sus variantes iniciales. El SKU es único.
func (uc *ProductUseCase) Create(ctx context.Context, in *dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in == nil || strings.TrimSpace(in.SKU) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.BasePrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	for _, v := range in.Variants {
		if strings.TrimSpace(v.Name) == "" || v.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}
	existing, err := uc.repo.GetBySKU(in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	trackStock := true
	if in.TrackStock != nil {
		trackStock = *in.TrackStock
	}
	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		BasePrice:   in.BasePrice,
		TaxExempt:   in.TaxExempt,
		IsActive:    true,
		TrackStock:  trackStock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	for _, v := range in.Variants {
		variant := entity.ProductVariant{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Name:      v.Name,
			Price:     v.Price,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.repo.CreateVariant(&variant); err != nil {
			return nil, err
		}
		product.Variants = append(product.Variants, variant)
	}
	return toProductResponse(product), nil
}

// Get obtiene un producto con sus variantes.
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.repo.GetWithVariants(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return toProductResponse(product), nil
}

// GetBySKU busca un producto por su código (lectura de código de barras).
func (uc *ProductUseCase) GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.repo.GetBySKU(sku)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	return toProductResponse(product), nil
}

// Update parcha los campos enviados. Desactivar un producto lo saca de la
// venta sin borrar su historial.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in *dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if id == "" || in == nil {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.repo.GetWithVariants(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.BasePrice != nil {
		if in.BasePrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.BasePrice = *in.BasePrice
	}
	if in.TaxExempt != nil {
		product.TaxExempt = *in.TaxExempt
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	if in.TrackStock != nil {
		product.TrackStock = *in.TrackStock
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista el catálogo paginado.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina un producto del catálogo.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}
	return uc.repo.Delete(id)
}

// AddVariant agrega una presentación al producto.
func (uc *ProductUseCase) AddVariant(ctx context.Context, productID string, in *dto.ProductVariantRequest) (*dto.ProductVariantResponse, error) {
	if productID == "" || in == nil || strings.TrimSpace(in.Name) == "" || in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.repo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	now := time.Now()
	variant := &entity.ProductVariant{
		ID:        uuid.New().String(),
		ProductID: productID,
		Name:      in.Name,
		Price:     in.Price,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.CreateVariant(variant); err != nil {
		return nil, err
	}
	return toVariantResponse(variant), nil
}

// UpdateVariant parcha una presentación.
func (uc *ProductUseCase) UpdateVariant(ctx context.Context, variantID string, in *dto.UpdateProductVariantRequest) (*dto.ProductVariantResponse, error) {
	if variantID == "" || in == nil {
		return nil, domain.ErrInvalidInput
	}
	variant, err := uc.repo.GetVariantByID(variantID)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		variant.Name = *in.Name
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		variant.Price = *in.Price
	}
	if in.IsActive != nil {
		variant.IsActive = *in.IsActive
	}
	variant.UpdatedAt = time.Now()
	if err := uc.repo.UpdateVariant(variant); err != nil {
		return nil, err
	}
	return toVariantResponse(variant), nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		BasePrice:   p.BasePrice,
		TaxExempt:   p.TaxExempt,
		IsActive:    p.IsActive,
		TrackStock:  p.TrackStock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for i := range p.Variants {
		resp.Variants = append(resp.Variants, *toVariantResponse(&p.Variants[i]))
	}
	return resp
}

func toVariantResponse(v *entity.ProductVariant) *dto.ProductVariantResponse {
	return &dto.ProductVariantResponse{
		ID:       v.ID,
		Name:     v.Name,
		Price:    v.Price,
		IsActive: v.IsActive,
	}
}
