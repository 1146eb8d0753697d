package repository

import "github.com/jhoicas/Pos-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product y sus
// variantes (un solo agregado).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	// GetWithVariants carga el producto con sus variantes activas.
	GetWithVariants(id string) (*entity.Product, error)
	Update(product *entity.Product) error
	List(limit, offset int) ([]*entity.Product, error)
	Delete(id string) error

	CreateVariant(variant *entity.ProductVariant) error
	GetVariantByID(id string) (*entity.ProductVariant, error)
	UpdateVariant(variant *entity.ProductVariant) error
	ListVariants(productID string) ([]*entity.ProductVariant, error)
}
